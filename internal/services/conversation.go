package services

import (
	"context"
	"log/slog"

	"daptic-backend/internal/models"
	"daptic-backend/internal/repository"
)

// ConversationLog is the append-only record of chat turns.
type ConversationLog struct {
	repo   repository.ConversationRepository
	logger *slog.Logger
}

func NewConversationLog(repo repository.ConversationRepository) *ConversationLog {
	return &ConversationLog{
		repo:   repo,
		logger: slog.Default().With("component", "conversation"),
	}
}

// Append stores one turn. The storage error is returned for the caller to
// observe; the relay logs it and carries on.
func (c *ConversationLog) Append(ctx context.Context, username string, role models.Role, text string) error {
	return c.repo.Append(ctx, &models.ConversationTurn{
		Username: username,
		Role:     role,
		Message:  text,
	})
}

// History returns the user's turns oldest first. A read failure is logged and
// reported as an empty history.
func (c *ConversationLog) History(ctx context.Context, username string) []models.ConversationTurn {
	turns, err := c.repo.ListByUsername(ctx, username)
	if err != nil {
		c.logger.Error("failed to load history", "username", username, "error", err)
		return []models.ConversationTurn{}
	}
	if turns == nil {
		return []models.ConversationTurn{}
	}
	return turns
}
