// Package store defines the persistence interface for the taplist server.
package store

import (
	"context"

	"github.com/taplistapp/taplist-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Tap operations enforce the registry invariant that at most one assignment
// exists per position: CreateTap is an atomic check-and-insert, and a
// concurrent create racing for the same position gets exactly one success
// and one DuplicatePosition failure.
type Store interface {
	// Lifecycle
	Close() error

	// Tap registry
	CreateTap(ctx context.Context, tap *domain.TapAssignment) error
	GetTap(ctx context.Context, position int) (*domain.TapAssignment, error)
	ListTaps(ctx context.Context) ([]*domain.TapAssignment, error)
	UpdateTapField(ctx context.Context, position int, field domain.Field, value any) error
	DeleteTap(ctx context.Context, position int) error

	// Beverage history cache
	RecordUsage(ctx context.Context, brewery, name string, meta domain.BeverageMetadata) error
	TopHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)
	SearchHistory(ctx context.Context, term string, limit int) ([]*domain.HistoryEntry, error)
	GetHistoryEntry(ctx context.Context, id int64) (*domain.HistoryEntry, error)
	DeleteHistoryEntry(ctx context.Context, id int64) error
	DeleteAllHistory(ctx context.Context) (int, error)
}
