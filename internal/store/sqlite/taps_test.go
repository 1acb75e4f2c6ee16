package sqlite

import (
	"context"
	"sync"
	"testing"

	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
)

// makeTestTap creates a domain.TapAssignment with sensible defaults for testing.
func makeTestTap(position int, brewery, name string) *domain.TapAssignment {
	return &domain.TapAssignment{
		Position:      position,
		Brewery:       brewery,
		Name:          name,
		Style:         "IPA",
		PricePerLiter: 250,
		ServingCosts: []domain.ServingCost{
			{Volume: "400ml", Price: 120},
			{Volume: "250ml", Price: 80},
		},
		Description: "hop forward",
	}
}

func TestCreateAndGetTap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tap := makeTestTap(5, "Sierra Nevada", "Pale Ale")
	abv := 5.6
	ibu := 38.0
	tap.ABV = &abv
	tap.IBU = &ibu
	tap.CatalogURL = "https://untappd.com/b/sierra-nevada-pale-ale/1234"

	if err := s.CreateTap(ctx, tap); err != nil {
		t.Fatalf("CreateTap: %v", err)
	}

	got, err := s.GetTap(ctx, 5)
	if err != nil {
		t.Fatalf("GetTap: %v", err)
	}
	if got.Brewery != "Sierra Nevada" || got.Name != "Pale Ale" || got.Style != "IPA" {
		t.Errorf("unexpected tap: %+v", got)
	}
	if got.PricePerLiter != 250 {
		t.Errorf("expected price 250, got %g", got.PricePerLiter)
	}
	if got.ABV == nil || *got.ABV != 5.6 {
		t.Errorf("expected abv 5.6, got %v", got.ABV)
	}
	if got.IBU == nil || *got.IBU != 38 {
		t.Errorf("expected ibu 38, got %v", got.IBU)
	}
	if len(got.ServingCosts) != 2 {
		t.Fatalf("expected 2 serving costs, got %d", len(got.ServingCosts))
	}
	// Serving costs come back in prompt order.
	if got.ServingCosts[0].Volume != "400ml" || got.ServingCosts[0].Price != 120 {
		t.Errorf("unexpected first serving cost: %+v", got.ServingCosts[0])
	}
	if got.ServingCosts[1].Volume != "250ml" || got.ServingCosts[1].Price != 80 {
		t.Errorf("unexpected second serving cost: %+v", got.ServingCosts[1])
	}
}

func TestCreateTapDuplicatePosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := makeTestTap(3, "Guinness", "Draught")
	if err := s.CreateTap(ctx, first); err != nil {
		t.Fatalf("CreateTap: %v", err)
	}

	second := makeTestTap(3, "Pilsner Urquell", "Original")
	err := s.CreateTap(ctx, second)
	if !errors.Is(err, errors.ErrDuplicatePosition) {
		t.Fatalf("expected DuplicatePosition, got %v", err)
	}

	// The original occupant survives untouched.
	got, err := s.GetTap(ctx, 3)
	if err != nil {
		t.Fatalf("GetTap: %v", err)
	}
	if got.Brewery != "Guinness" {
		t.Errorf("expected Guinness to survive, got %s", got.Brewery)
	}
}

func TestCreateTapConcurrentRace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := range racers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tap := makeTestTap(7, "Racing Brewery", "Lager")
			tap.Description = string(rune('a' + i))
			results <- s.CreateTap(ctx, tap)
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, duplicates int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, errors.ErrDuplicatePosition):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if duplicates != racers-1 {
		t.Errorf("expected %d duplicates, got %d", racers-1, duplicates)
	}
}

func TestCreateTapRejectsInvalidValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.TapAssignment)
	}{
		{"zero position", func(tap *domain.TapAssignment) { tap.Position = 0 }},
		{"empty brewery", func(tap *domain.TapAssignment) { tap.Brewery = "" }},
		{"empty name", func(tap *domain.TapAssignment) { tap.Name = "" }},
		{"empty style", func(tap *domain.TapAssignment) { tap.Style = "" }},
		{"negative price", func(tap *domain.TapAssignment) { tap.PricePerLiter = -1 }},
		{"negative serving cost", func(tap *domain.TapAssignment) { tap.ServingCosts[0].Price = -5 }},
		{"negative abv", func(tap *domain.TapAssignment) { abv := -1.0; tap.ABV = &abv }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tap := makeTestTap(9, "Brewery", "Beer")
			tt.mutate(tap)
			err := s.CreateTap(ctx, tap)
			if !errors.Is(err, errors.ErrValidation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestGetTapNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTap(context.Background(), 99)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestListTapsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, pos := range []int{8, 2, 5} {
		if err := s.CreateTap(ctx, makeTestTap(pos, "Brewery", "Beer")); err != nil {
			t.Fatalf("CreateTap(%d): %v", pos, err)
		}
	}

	taps, err := s.ListTaps(ctx)
	if err != nil {
		t.Fatalf("ListTaps: %v", err)
	}
	if len(taps) != 3 {
		t.Fatalf("expected 3 taps, got %d", len(taps))
	}
	for i, want := range []int{2, 5, 8} {
		if taps[i].Position != want {
			t.Errorf("taps[%d].Position = %d, want %d", i, taps[i].Position, want)
		}
	}
}

func TestUpdateTapField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTap(ctx, makeTestTap(5, "Sierra Nevada", "Pale Ale")); err != nil {
		t.Fatalf("CreateTap: %v", err)
	}

	if err := s.UpdateTapField(ctx, 5, domain.FieldPrice, 270.0); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if err := s.UpdateTapField(ctx, 5, domain.FieldStyle, "APA"); err != nil {
		t.Fatalf("update style: %v", err)
	}
	if err := s.UpdateTapField(ctx, 5, domain.ServingCostField("400ml"), 130.0); err != nil {
		t.Fatalf("update serving cost: %v", err)
	}

	got, err := s.GetTap(ctx, 5)
	if err != nil {
		t.Fatalf("GetTap: %v", err)
	}
	if got.PricePerLiter != 270 {
		t.Errorf("expected price 270, got %g", got.PricePerLiter)
	}
	if got.Style != "APA" {
		t.Errorf("expected style APA, got %s", got.Style)
	}
	if price, ok := got.ServingCost("400ml"); !ok || price != 130 {
		t.Errorf("expected 400ml cost 130, got %g (ok=%v)", price, ok)
	}
	// The other serving cost is untouched.
	if price, ok := got.ServingCost("250ml"); !ok || price != 80 {
		t.Errorf("expected 250ml cost 80, got %g (ok=%v)", price, ok)
	}
}

func TestUpdateTapFieldErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTap(ctx, makeTestTap(5, "Sierra Nevada", "Pale Ale")); err != nil {
		t.Fatalf("CreateTap: %v", err)
	}

	if err := s.UpdateTapField(ctx, 5, domain.Field("tap_position"), 6); !errors.Is(err, errors.ErrInvalidField) {
		t.Errorf("expected InvalidField, got %v", err)
	}
	if err := s.UpdateTapField(ctx, 5, domain.FieldPrice, -10.0); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ValidationError for negative price, got %v", err)
	}
	if err := s.UpdateTapField(ctx, 5, domain.FieldBrewery, ""); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ValidationError for empty brewery, got %v", err)
	}
	if err := s.UpdateTapField(ctx, 99, domain.FieldPrice, 100.0); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
	if err := s.UpdateTapField(ctx, 99, domain.ServingCostField("400ml"), 100.0); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound for serving cost on empty tap, got %v", err)
	}

	// Failed updates leave the row intact.
	got, err := s.GetTap(ctx, 5)
	if err != nil {
		t.Fatalf("GetTap: %v", err)
	}
	if got.PricePerLiter != 250 || got.Brewery != "Sierra Nevada" {
		t.Errorf("tap mutated by failed updates: %+v", got)
	}
}

func TestDeleteTap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTap(ctx, makeTestTap(4, "Brewery", "Beer")); err != nil {
		t.Fatalf("CreateTap: %v", err)
	}
	if err := s.DeleteTap(ctx, 4); err != nil {
		t.Fatalf("DeleteTap: %v", err)
	}
	if _, err := s.GetTap(ctx, 4); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}

	// Serving costs cascade with the tap.
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tap_serving_costs WHERE position = 4").Scan(&count); err != nil {
		t.Fatalf("count serving costs: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascaded serving costs, got %d rows", count)
	}

	if err := s.DeleteTap(ctx, 99); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound for missing tap, got %v", err)
	}
}

func TestDeleteTapFreesPositionForReuse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Several delete-then-reassign cycles; a leftover serving-cost row would
	// collide with the (position, volume) primary key on the re-add.
	for i := range 3 {
		if err := s.CreateTap(ctx, makeTestTap(4, "Brewery", "Beer")); err != nil {
			t.Fatalf("cycle %d CreateTap: %v", i, err)
		}
		if err := s.DeleteTap(ctx, 4); err != nil {
			t.Fatalf("cycle %d DeleteTap: %v", i, err)
		}
	}

	tap := makeTestTap(4, "New Brewery", "New Beer")
	tap.ServingCosts = []domain.ServingCost{
		{Volume: "400ml", Price: 140},
		{Volume: "250ml", Price: 95},
	}
	if err := s.CreateTap(ctx, tap); err != nil {
		t.Fatalf("reassign after delete: %v", err)
	}

	got, err := s.GetTap(ctx, 4)
	if err != nil {
		t.Fatalf("GetTap: %v", err)
	}
	if got.Brewery != "New Brewery" {
		t.Errorf("expected reassigned tap, got %s", got.Brewery)
	}
	if price, ok := got.ServingCost("400ml"); !ok || price != 140 {
		t.Errorf("expected fresh 400ml cost 140, got %g (ok=%v)", price, ok)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tap_serving_costs WHERE position = 4").Scan(&count); err != nil {
		t.Fatalf("count serving costs: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 serving-cost rows, got %d", count)
	}
}
