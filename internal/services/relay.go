package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"daptic-backend/internal/models"
)

// ContentGenerator returns the decoded JSON body of a successful upstream
// generation call.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, text string) (interface{}, error)
}

type ConversationRecorder interface {
	Append(ctx context.Context, username string, role models.Role, text string) error
}

type InstructionSource interface {
	Load() string
}

type GenerateInput struct {
	Prompt           string
	SessionUsername  string
	ProvidedUsername string
}

type GenerateResult struct {
	Reply    string
	Username string
}

// ChatRelay validates a prompt, forwards it upstream, and records both sides
// of the exchange. Recording is best-effort.
type ChatRelay struct {
	generator    ContentGenerator
	recorder     ConversationRecorder
	instructions InstructionSource
	maxPrompt    int
	logger       *slog.Logger
}

func NewChatRelay(generator ContentGenerator, recorder ConversationRecorder, instructions InstructionSource, maxPrompt int) *ChatRelay {
	return &ChatRelay{
		generator:    generator,
		recorder:     recorder,
		instructions: instructions,
		maxPrompt:    maxPrompt,
		logger:       slog.Default().With("component", "relay"),
	}
}

// ResolveUsername picks the session user, then the caller-supplied name, then
// the anonymous fallback.
func ResolveUsername(sessionUsername, providedUsername string) string {
	if u := strings.TrimSpace(sessionUsername); u != "" {
		return u
	}
	if u := strings.TrimSpace(providedUsername); u != "" {
		return u
	}
	return models.AnonymousUsername
}

func (r *ChatRelay) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return GenerateResult{}, ErrPromptMissing
	}
	if utf8.RuneCountInString(prompt) > r.maxPrompt {
		return GenerateResult{}, &PromptTooLongError{Max: r.maxPrompt}
	}

	username := ResolveUsername(in.SessionUsername, in.ProvidedUsername)

	// Once issued, the upstream call runs to completion or timeout even if
	// the client goes away.
	ctx = context.WithoutCancel(ctx)

	r.record(ctx, username, models.RoleUser, prompt)

	body, err := r.generator.GenerateContent(ctx, composePrompt(r.instructions.Load(), prompt))
	if err != nil {
		return GenerateResult{Username: username}, err
	}

	reply := replyText(body)
	if reply == NoResponseReply {
		r.logger.Warn("upstream answer had no usable text", "username", username)
	}

	r.record(ctx, username, models.RoleBot, reply)

	return GenerateResult{Reply: reply, Username: username}, nil
}

func (r *ChatRelay) record(ctx context.Context, username string, role models.Role, text string) {
	if err := r.recorder.Append(ctx, username, role, text); err != nil {
		r.logger.Warn("failed to record conversation turn", "username", username, "role", role, "error", err)
	}
}
