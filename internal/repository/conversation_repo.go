package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"daptic-backend/internal/models"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Append(ctx context.Context, turn *models.ConversationTurn) error {
	query := `
		INSERT INTO conversations (username, role, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, turn.Username, string(turn.Role), turn.Message).
		Scan(&turn.ID, &turn.CreatedAt)
}

func (r *ConversationRepo) ListByUsername(ctx context.Context, username string) ([]models.ConversationTurn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, role, message, created_at
		FROM conversations
		WHERE username = $1
		ORDER BY id ASC
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]models.ConversationTurn, 0)
	for rows.Next() {
		var t models.ConversationTurn
		var role string
		if err := rows.Scan(&t.ID, &t.Username, &role, &t.Message, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Role = models.Role(role)
		turns = append(turns, t)
	}

	return turns, rows.Err()
}
