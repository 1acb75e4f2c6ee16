// Package service provides the business logic layer over the tap registry,
// the usage history and the external beverage catalog.
package service

import (
	"context"
	"log/slog"

	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
	"github.com/taplistapp/taplist-server/internal/store"
	"github.com/taplistapp/taplist-server/internal/validation"
)

// TapService orchestrates tap registry operations.
type TapService struct {
	store     store.Store
	tapCount  int
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTapService creates a new tap service. tapCount is the number of
// physical taps; valid positions are 1 through tapCount.
func NewTapService(store store.Store, tapCount int, logger *slog.Logger) *TapService {
	return &TapService{
		store:     store,
		tapCount:  tapCount,
		validator: validation.New(),
		logger:    logger,
	}
}

// TapCount returns the number of physical taps.
func (s *TapService) TapCount() int {
	return s.tapCount
}

// checkPosition rejects positions outside the physical range. Used on the
// create path, where naming a nonexistent tap is operator input to correct.
func (s *TapService) checkPosition(position int) error {
	if position < 1 || position > s.tapCount {
		return errors.Validationf("tap position must be between 1 and %d, got %d", s.tapCount, position)
	}
	return nil
}

// checkAssigned maps out-of-range positions to NotFound: a tap the venue does
// not have is indistinguishable from an unassigned one on the read, update
// and delete paths.
func (s *TapService) checkAssigned(position int) error {
	if position < 1 || position > s.tapCount {
		return errors.NotFoundf("tap %d is not assigned", position)
	}
	return nil
}

// List returns all assignments ordered by position.
func (s *TapService) List(ctx context.Context) ([]*domain.TapAssignment, error) {
	return s.store.ListTaps(ctx)
}

// Get returns the assignment at a position.
func (s *TapService) Get(ctx context.Context, position int) (*domain.TapAssignment, error) {
	if err := s.checkAssigned(position); err != nil {
		return nil, err
	}
	return s.store.GetTap(ctx, position)
}

// Create assigns a beverage to a free tap.
func (s *TapService) Create(ctx context.Context, tap *domain.TapAssignment) error {
	if err := s.checkPosition(tap.Position); err != nil {
		return err
	}
	if err := s.validator.Validate(tap); err != nil {
		return err
	}
	if err := s.store.CreateTap(ctx, tap); err != nil {
		return err
	}

	s.logger.Info("tap assigned",
		"position", tap.Position,
		"brewery", tap.Brewery,
		"name", tap.Name,
	)
	return nil
}

// UpdateField applies exactly one field change to an existing assignment.
func (s *TapService) UpdateField(ctx context.Context, position int, field domain.Field, value any) error {
	if err := s.checkAssigned(position); err != nil {
		return err
	}
	if err := s.store.UpdateTapField(ctx, position, field, value); err != nil {
		return err
	}

	s.logger.Info("tap field updated", "position", position, "field", string(field))
	return nil
}

// Delete frees a tap.
func (s *TapService) Delete(ctx context.Context, position int) error {
	if err := s.checkAssigned(position); err != nil {
		return err
	}
	if err := s.store.DeleteTap(ctx, position); err != nil {
		return err
	}

	s.logger.Info("tap freed", "position", position)
	return nil
}

// FreePositions returns the unassigned positions in ascending order.
func (s *TapService) FreePositions(ctx context.Context) ([]int, error) {
	occupied, err := s.occupiedSet(ctx)
	if err != nil {
		return nil, err
	}

	free := make([]int, 0, s.tapCount-len(occupied))
	for pos := 1; pos <= s.tapCount; pos++ {
		if !occupied[pos] {
			free = append(free, pos)
		}
	}
	return free, nil
}

// OccupiedPositions returns the assigned positions in ascending order.
func (s *TapService) OccupiedPositions(ctx context.Context) ([]int, error) {
	occupied, err := s.occupiedSet(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]int, 0, len(occupied))
	for pos := 1; pos <= s.tapCount; pos++ {
		if occupied[pos] {
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

func (s *TapService) occupiedSet(ctx context.Context) (map[int]bool, error) {
	taps, err := s.store.ListTaps(ctx)
	if err != nil {
		return nil, err
	}

	occupied := make(map[int]bool, len(taps))
	for _, tap := range taps {
		occupied[tap.Position] = true
	}
	return occupied, nil
}
