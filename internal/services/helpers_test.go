package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"daptic-backend/internal/database"
	"daptic-backend/internal/repository"
)

// newTestRepos opens a migrated in-memory SQLite database.
func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.RunMigrations(ctx, db))
	return repository.New(db)
}
