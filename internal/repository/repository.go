package repository

import (
	"context"
	"errors"

	"daptic-backend/internal/database"
	"daptic-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// AccountRepository persists Account rows. Create fails with ErrDuplicate
// when the email or username is already taken.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

// ConversationRepository persists ConversationTurn rows.
type ConversationRepository interface {
	Append(ctx context.Context, turn *models.ConversationTurn) error
	ListByUsername(ctx context.Context, username string) ([]models.ConversationTurn, error)
}

type Repositories struct {
	Accounts      AccountRepository
	Conversations ConversationRepository
}

// New builds the repositories matching the driver of db.
func New(db *database.DB) *Repositories {
	if db.Driver == database.DriverPostgres {
		return &Repositories{
			Accounts:      NewAccountRepo(db.Pool),
			Conversations: NewConversationRepo(db.Pool),
		}
	}
	return &Repositories{
		Accounts:      NewSQLiteAccountRepo(db.SQL),
		Conversations: NewSQLiteConversationRepo(db.SQL),
	}
}
