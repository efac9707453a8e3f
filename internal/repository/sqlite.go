package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"daptic-backend/internal/models"
)

// sqliteTimeLayout matches the strftime default in the sqlite migrations.
const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Extended codes disabled: fall back to the message.
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

type SQLiteAccountRepo struct {
	db *sql.DB
}

func NewSQLiteAccountRepo(db *sql.DB) *SQLiteAccountRepo {
	return &SQLiteAccountRepo{db: db}
}

func (r *SQLiteAccountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO users (fullname, email, username, password_hash)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`

	var createdAt string
	err := r.db.QueryRowContext(ctx, query,
		account.FullName, account.Email, account.Username, account.PasswordHash,
	).Scan(&account.ID, &createdAt)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	account.CreatedAt, err = parseSQLiteTime(createdAt)
	return err
}

func (r *SQLiteAccountRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT id, fullname, email, username, password_hash, created_at
		FROM users WHERE username = ?`

	var createdAt string
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID, &account.FullName, &account.Email, &account.Username,
		&account.PasswordHash, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	account.CreatedAt, err = parseSQLiteTime(createdAt)
	if err != nil {
		return nil, err
	}
	return account, nil
}

type SQLiteConversationRepo struct {
	db *sql.DB
}

func NewSQLiteConversationRepo(db *sql.DB) *SQLiteConversationRepo {
	return &SQLiteConversationRepo{db: db}
}

func (r *SQLiteConversationRepo) Append(ctx context.Context, turn *models.ConversationTurn) error {
	query := `
		INSERT INTO conversations (username, role, message)
		VALUES (?, ?, ?)
		RETURNING id, created_at`

	var createdAt string
	if err := r.db.QueryRowContext(ctx, query, turn.Username, string(turn.Role), turn.Message).
		Scan(&turn.ID, &createdAt); err != nil {
		return err
	}

	var err error
	turn.CreatedAt, err = parseSQLiteTime(createdAt)
	return err
}

func (r *SQLiteConversationRepo) ListByUsername(ctx context.Context, username string) ([]models.ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, role, message, created_at
		FROM conversations
		WHERE username = ?
		ORDER BY id ASC
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]models.ConversationTurn, 0)
	for rows.Next() {
		var t models.ConversationTurn
		var role, createdAt string
		if err := rows.Scan(&t.ID, &t.Username, &role, &t.Message, &createdAt); err != nil {
			return nil, err
		}
		t.Role = models.Role(role)
		if t.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}

	return turns, rows.Err()
}
