package service

import (
	"context"
	"log/slog"

	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/store"
)

// defaultHistoryLimit caps listings when the caller does not say otherwise.
const defaultHistoryLimit = 10

// HistoryService orchestrates the frequency-ranked usage history.
type HistoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewHistoryService creates a new history service.
func NewHistoryService(store store.Store, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		store:  store,
		logger: logger,
	}
}

// Top returns the most-used entries, most recent first among ties.
func (s *HistoryService) Top(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.TopHistory(ctx, limit)
}

// Search returns entries whose brewery or name contains term.
func (s *HistoryService) Search(ctx context.Context, term string, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.SearchHistory(ctx, term, limit)
}

// Get returns one entry by ID.
func (s *HistoryService) Get(ctx context.Context, id int64) (*domain.HistoryEntry, error) {
	return s.store.GetHistoryEntry(ctx, id)
}

// Record counts one use of a beverage and refreshes its cached metadata.
func (s *HistoryService) Record(ctx context.Context, brewery, name string, meta domain.BeverageMetadata) error {
	return s.store.RecordUsage(ctx, brewery, name, meta)
}

// Delete removes one entry.
func (s *HistoryService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteHistoryEntry(ctx, id); err != nil {
		return err
	}
	s.logger.Info("history entry deleted", "id", id)
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (s *HistoryService) Clear(ctx context.Context) (int, error) {
	return s.store.DeleteAllHistory(ctx)
}
