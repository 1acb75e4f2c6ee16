package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
	"github.com/taplistapp/taplist-server/internal/store/sqlite"
)

func setupHistoryService(t *testing.T) *HistoryService {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	testStore, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testStore.Close() })

	return NewHistoryService(testStore, logger)
}

func TestHistoryServiceRecordAndTop(t *testing.T) {
	svc := setupHistoryService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "Brewery", "Often", domain.BeverageMetadata{}))
	require.NoError(t, svc.Record(ctx, "Brewery", "Often", domain.BeverageMetadata{}))
	require.NoError(t, svc.Record(ctx, "Brewery", "Rarely", domain.BeverageMetadata{}))

	entries, err := svc.Top(ctx, 0) // default limit
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Often", entries[0].Name)
	assert.Equal(t, 2, entries[0].UsageCount)
}

func TestHistoryServiceSearchAndDelete(t *testing.T) {
	svc := setupHistoryService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "Mikkeller", "Beer Geek", domain.BeverageMetadata{}))
	require.NoError(t, svc.Record(ctx, "Lervig", "Lucky Jack", domain.BeverageMetadata{}))

	entries, err := svc.Search(ctx, "geek", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, svc.Delete(ctx, entries[0].ID))
	_, err = svc.Get(ctx, entries[0].ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	deleted, err := svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
