package workflow

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taplistapp/taplist-server/internal/catalog/untappd"
	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
	"github.com/taplistapp/taplist-server/internal/service"
	"github.com/taplistapp/taplist-server/internal/store/sqlite"
)

// fakeCatalog scripts the external catalog for tests.
type fakeCatalog struct {
	candidates []untappd.Candidate
	details    *untappd.Details
	searchErr  error
	detailsErr error
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]untappd.Candidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakeCatalog) Details(ctx context.Context, pageURL string) (*untappd.Details, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

// setupEngine builds an engine over a temp database and a scripted catalog.
func setupEngine(t *testing.T, cat *fakeCatalog) (*Engine, *service.TapService, *service.HistoryService) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	testStore, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testStore.Close() })

	taps := service.NewTapService(testStore, 21, logger)
	history := service.NewHistoryService(testStore, logger)
	catalog := service.NewCatalogService(cat, logger)

	engine := NewEngine(Config{ServingVolumes: []string{"400ml", "250ml"}}, taps, history, catalog, logger)
	t.Cleanup(engine.Close)

	return engine, taps, history
}

// advance delivers one event and requires the engine to accept it.
func advance(t *testing.T, e *Engine, sessionID string, event Event) *Response {
	t.Helper()
	resp, err := e.Advance(context.Background(), sessionID, event)
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func TestAddWorkflowFullScenario(t *testing.T) {
	abv := 5.6
	cat := &fakeCatalog{
		candidates: []untappd.Candidate{{
			DisplayName: "Sierra Nevada Pale Ale",
			Slug:        "sierra-nevada-pale-ale",
			URL:         "https://untappd.com/b/sierra-nevada-pale-ale/1234",
		}},
		details: &untappd.Details{
			Name:        "Pale Ale",
			Style:       "American Pale Ale",
			Description: "A classic.",
			ABV:         &abv,
		},
	}
	engine, taps, history := setupEngine(t, cat)
	ctx := context.Background()

	resp, err := engine.StartAdd(ctx, 5)
	require.NoError(t, err)
	// Empty history: the source choice is skipped.
	assert.Equal(t, StateEnterBreweryName, resp.State)
	sid := resp.SessionID

	resp = advance(t, engine, sid, TextEvent{Text: "Sierra Nevada, Pale Ale"})
	require.Equal(t, StateChooseCandidate, resp.State)
	require.Len(t, resp.Options, 2) // one candidate plus manual entry
	assert.Equal(t, "Sierra Nevada Pale Ale", resp.Options[0].Label)

	resp = advance(t, engine, sid, ChooseCandidateEvent{Index: 0})
	// Name and style were entered or enriched, so pricing is next.
	require.Equal(t, StateEnterPrice, resp.State)

	resp = advance(t, engine, sid, TextEvent{Text: "250"})
	require.Equal(t, StateEnterServingCost, resp.State)
	assert.Contains(t, resp.Prompt, "400ml")

	resp = advance(t, engine, sid, TextEvent{Text: "120"})
	require.Equal(t, StateEnterServingCost, resp.State)
	assert.Contains(t, resp.Prompt, "250ml")

	resp = advance(t, engine, sid, TextEvent{Text: "80"})
	require.Equal(t, StateEnterDescription, resp.State)

	resp = advance(t, engine, sid, TextEvent{Text: "-"})
	require.True(t, resp.Done)
	require.NotNil(t, resp.Result)

	tap, err := taps.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Sierra Nevada", tap.Brewery)
	assert.Equal(t, "Pale Ale", tap.Name)
	assert.Equal(t, "American Pale Ale", tap.Style)
	assert.Equal(t, 250.0, tap.PricePerLiter)
	assert.Equal(t, "https://untappd.com/b/sierra-nevada-pale-ale/1234", tap.CatalogURL)
	require.NotNil(t, tap.ABV)
	assert.Equal(t, 5.6, *tap.ABV)
	if price, ok := tap.ServingCost("400ml"); assert.True(t, ok) {
		assert.Equal(t, 120.0, price)
	}
	if price, ok := tap.ServingCost("250ml"); assert.True(t, ok) {
		assert.Equal(t, 80.0, price)
	}
	// Skipped description stays empty.
	assert.Empty(t, tap.Description)

	entries, err := history.Search(ctx, "pale ale", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].UsageCount)
}

func TestAddWorkflowNoCandidates(t *testing.T) {
	// Catalog down entirely: the dialogue must not stall.
	engine, taps, _ := setupEngine(t, &fakeCatalog{searchErr: untappd.ErrServer})
	ctx := context.Background()

	resp, err := engine.StartAdd(ctx, 2)
	require.NoError(t, err)
	sid := resp.SessionID

	// No comma: everything is the brewery, the name is still missing.
	resp = advance(t, engine, sid, TextEvent{Text: "Brewdog"})
	require.Equal(t, StateEnterName, resp.State)

	resp = advance(t, engine, sid, TextEvent{Text: "Punk IPA"})
	require.Equal(t, StateEnterStyle, resp.State)

	resp = advance(t, engine, sid, TextEvent{Text: "IPA"})
	require.Equal(t, StateEnterPrice, resp.State)

	advance(t, engine, sid, TextEvent{Text: "300"})
	advance(t, engine, sid, TextEvent{Text: "150"})
	advance(t, engine, sid, TextEvent{Text: "100"})
	resp = advance(t, engine, sid, TextEvent{Text: "Hoppy and bold"})
	require.True(t, resp.Done)

	tap, err := taps.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Brewdog", tap.Brewery)
	assert.Equal(t, "Punk IPA", tap.Name)
	assert.Equal(t, "Hoppy and bold", tap.Description)
	assert.Empty(t, tap.CatalogURL)
}

func TestAddWorkflowManualEntryDespiteCandidates(t *testing.T) {
	cat := &fakeCatalog{
		candidates: []untappd.Candidate{{DisplayName: "Wrong Beer", URL: "https://untappd.com/b/wrong/1"}},
	}
	engine, taps, _ := setupEngine(t, cat)
	ctx := context.Background()

	resp, err := engine.StartAdd(ctx, 4)
	require.NoError(t, err)
	sid := resp.SessionID

	resp = advance(t, engine, sid, TextEvent{Text: "Local, Seasonal"})
	require.Equal(t, StateChooseCandidate, resp.State)

	resp = advance(t, engine, sid, ManualEvent{})
	require.Equal(t, StateEnterStyle, resp.State) // name already entered

	advance(t, engine, sid, TextEvent{Text: "Saison"})
	advance(t, engine, sid, TextEvent{Text: "280"})
	advance(t, engine, sid, TextEvent{Text: "140"})
	advance(t, engine, sid, TextEvent{Text: "90"})
	resp = advance(t, engine, sid, TextEvent{Text: "-"})
	require.True(t, resp.Done)

	tap, err := taps.Get(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, tap.CatalogURL, "declined candidates leave no catalog link")
}

func TestAddFromHistory(t *testing.T) {
	engine, taps, history := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	abv := 4.5
	require.NoError(t, history.Record(ctx, "Guinness", "Draught", domain.BeverageMetadata{
		Style: "Irish Dry Stout",
		ABV:   &abv,
	}))

	resp, err := engine.StartAdd(ctx, 8)
	require.NoError(t, err)
	// History is non-empty, so the source choice is offered.
	require.Equal(t, StateChooseSource, resp.State)
	sid := resp.SessionID

	resp = advance(t, engine, sid, ChooseSourceEvent{Source: SourceHistory})
	require.Equal(t, StateBrowseHistory, resp.State)
	require.Len(t, resp.Options, 1)

	entryID, err := strconv.ParseInt(resp.Options[0].Value, 10, 64)
	require.NoError(t, err)

	resp = advance(t, engine, sid, ChooseHistoryEvent{ID: entryID})
	// History selection short-circuits straight to pricing.
	require.Equal(t, StateEnterPrice, resp.State)

	advance(t, engine, sid, TextEvent{Text: "260"})
	advance(t, engine, sid, TextEvent{Text: "130"})
	advance(t, engine, sid, TextEvent{Text: "85"})
	resp = advance(t, engine, sid, TextEvent{Text: "-"})
	require.True(t, resp.Done)

	tap, err := taps.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "Guinness", tap.Brewery)
	assert.Equal(t, "Draught", tap.Name)
	assert.Equal(t, "Irish Dry Stout", tap.Style)
	require.NotNil(t, tap.ABV)
	assert.Equal(t, 4.5, *tap.ABV)

	entries, err := history.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].UsageCount, "commit counts the reuse")
}

func TestHistorySelectionThenCancelLeavesCountUntouched(t *testing.T) {
	engine, taps, history := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, history.Record(ctx, "Guinness", "Draught", domain.BeverageMetadata{}))

	resp, err := engine.StartAdd(ctx, 8)
	require.NoError(t, err)
	sid := resp.SessionID

	resp = advance(t, engine, sid, ChooseSourceEvent{Source: SourceHistory})
	entryID, err := strconv.ParseInt(resp.Options[0].Value, 10, 64)
	require.NoError(t, err)
	advance(t, engine, sid, ChooseHistoryEvent{ID: entryID})

	cancelResp, err := engine.Cancel(ctx, sid)
	require.NoError(t, err)
	assert.True(t, cancelResp.Done)

	// Count unchanged, tap never created, session gone.
	entries, err := history.Top(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, entries[0].UsageCount)

	_, err = taps.Get(ctx, 8)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = engine.Advance(ctx, sid, TextEvent{Text: "260"})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestAddDuplicatePositionAtCommit(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	resp, err := engine.StartAdd(ctx, 3)
	require.NoError(t, err)
	sid := resp.SessionID

	advance(t, engine, sid, TextEvent{Text: "Slow, Beer"})
	advance(t, engine, sid, TextEvent{Text: "Lager"})
	advance(t, engine, sid, TextEvent{Text: "200"})
	advance(t, engine, sid, TextEvent{Text: "100"})
	advance(t, engine, sid, TextEvent{Text: "70"})

	// Another path assigns the tap while the dialogue is still open.
	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 3, Brewery: "Fast", Name: "Beer", Style: "Pilsner",
	}))

	_, err = engine.Advance(ctx, sid, TextEvent{Text: "-"})
	require.ErrorIs(t, err, errors.ErrDuplicatePosition)

	// The winner's row is intact and the losing session is discarded.
	tap, err := taps.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Fast", tap.Brewery)

	_, err = engine.Advance(ctx, sid, TextEvent{Text: "-"})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestStartAddRejectsOutOfRangePosition(t *testing.T) {
	engine, _, _ := setupEngine(t, &fakeCatalog{})

	_, err := engine.StartAdd(context.Background(), 99)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestStartAddRejectsOccupiedTap(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 6, Brewery: "B", Name: "N", Style: "S",
	}))

	_, err := engine.StartAdd(ctx, 6)
	assert.ErrorIs(t, err, errors.ErrDuplicatePosition)
}

func TestAddPriceValidationRepromptsSameState(t *testing.T) {
	engine, _, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	resp, err := engine.StartAdd(ctx, 1)
	require.NoError(t, err)
	sid := resp.SessionID

	advance(t, engine, sid, TextEvent{Text: "Brewery, Beer"})
	advance(t, engine, sid, TextEvent{Text: "Ale"})

	resp = advance(t, engine, sid, TextEvent{Text: "abc"})
	assert.Equal(t, StateEnterPrice, resp.State)
	assert.NotEmpty(t, resp.Error)

	resp = advance(t, engine, sid, TextEvent{Text: "-5"})
	assert.Equal(t, StateEnterPrice, resp.State)
	assert.NotEmpty(t, resp.Error)

	resp = advance(t, engine, sid, TextEvent{Text: "240"})
	assert.Equal(t, StateEnterServingCost, resp.State)
	assert.Empty(t, resp.Error)
}

func TestAddRepromptsOnWrongEventType(t *testing.T) {
	engine, _, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	resp, err := engine.StartAdd(ctx, 1)
	require.NoError(t, err)
	sid := resp.SessionID

	resp = advance(t, engine, sid, ConfirmEvent{Confirmed: true})
	assert.Equal(t, StateEnterBreweryName, resp.State)
	assert.NotEmpty(t, resp.Error)
}

func TestEditWorkflow(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 5, Brewery: "Sierra Nevada", Name: "Pale Ale", Style: "APA",
		PricePerLiter: 250,
	}))

	resp, err := engine.StartEdit(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, StateSelectField, resp.State)
	sid := resp.SessionID

	// The field menu covers the plain fields and both pour sizes.
	values := make([]string, 0, len(resp.Options))
	for _, o := range resp.Options {
		values = append(values, o.Value)
	}
	assert.Contains(t, values, "price_per_liter")
	assert.Contains(t, values, "cost:400ml")
	assert.Contains(t, values, "cost:250ml")

	resp = advance(t, engine, sid, SelectFieldEvent{Field: domain.FieldPrice})
	require.Equal(t, StateEnterValue, resp.State)

	// Malformed number: re-prompt, nothing written.
	resp = advance(t, engine, sid, TextEvent{Text: "abc"})
	assert.Equal(t, StateEnterValue, resp.State)
	assert.NotEmpty(t, resp.Error)

	tap, err := taps.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 250.0, tap.PricePerLiter)

	// Retry with a valid value succeeds.
	resp = advance(t, engine, sid, TextEvent{Text: "270.00"})
	require.True(t, resp.Done)

	tap, err = taps.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 270.0, tap.PricePerLiter)
}

func TestEditRejectsUnknownField(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 5, Brewery: "B", Name: "N", Style: "S",
	}))

	resp, err := engine.StartEdit(ctx, 5)
	require.NoError(t, err)
	sid := resp.SessionID

	resp = advance(t, engine, sid, SelectFieldEvent{Field: domain.Field("position")})
	assert.Equal(t, StateSelectField, resp.State)
	assert.NotEmpty(t, resp.Error)

	resp = advance(t, engine, sid, SelectFieldEvent{Field: domain.Field("cost:1000ml")})
	assert.Equal(t, StateSelectField, resp.State)
	assert.NotEmpty(t, resp.Error)
}

func TestEditAbortsWhenTargetVanishes(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 5, Brewery: "B", Name: "N", Style: "S",
	}))

	resp, err := engine.StartEdit(ctx, 5)
	require.NoError(t, err)
	sid := resp.SessionID

	advance(t, engine, sid, SelectFieldEvent{Field: domain.FieldStyle})
	require.NoError(t, taps.Delete(ctx, 5))

	_, err = engine.Advance(ctx, sid, TextEvent{Text: "Pilsner"})
	require.ErrorIs(t, err, errors.ErrNotFound)

	// The session died with the target.
	_, err = engine.Advance(ctx, sid, TextEvent{Text: "Pilsner"})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDeleteWorkflow(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 7, Brewery: "B", Name: "N", Style: "S",
	}))

	resp, err := engine.StartDelete(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, StateConfirmDelete, resp.State)
	sid := resp.SessionID

	resp = advance(t, engine, sid, ConfirmEvent{Confirmed: true})
	require.True(t, resp.Done)

	_, err = taps.Get(ctx, 7)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDeleteWorkflowDeclined(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 7, Brewery: "B", Name: "N", Style: "S",
	}))

	resp, err := engine.StartDelete(ctx, 7)
	require.NoError(t, err)

	resp = advance(t, engine, resp.SessionID, ConfirmEvent{Confirmed: false})
	require.True(t, resp.Done)

	// Declining keeps the assignment.
	_, err = taps.Get(ctx, 7)
	assert.NoError(t, err)
}

func TestStartDeleteUnassignedTap(t *testing.T) {
	engine, _, _ := setupEngine(t, &fakeCatalog{})

	_, err := engine.StartDelete(context.Background(), 9)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	// A position the venue does not even have reads the same way.
	_, err = engine.StartDelete(context.Background(), 99)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = engine.StartEdit(context.Background(), 99)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestFreeAndOccupiedPositions(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	require.NoError(t, taps.Create(ctx, &domain.TapAssignment{
		Position: 1, Brewery: "B", Name: "N", Style: "S",
	}))

	free, err := engine.FreePositions(ctx)
	require.NoError(t, err)
	assert.Len(t, free, 20)
	assert.NotContains(t, free, 1)

	occupied, err := engine.OccupiedPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, occupied)
}

func TestConcurrentAddSessionsRaceForSamePosition(t *testing.T) {
	engine, taps, _ := setupEngine(t, &fakeCatalog{})
	ctx := context.Background()

	// Two dialogues target tap 2; both reach commit; exactly one wins.
	startA, err := engine.StartAdd(ctx, 2)
	require.NoError(t, err)
	startB, err := engine.StartAdd(ctx, 2)
	require.NoError(t, err)

	for _, sid := range []string{startA.SessionID, startB.SessionID} {
		advance(t, engine, sid, TextEvent{Text: "Brewery, Beer"})
		advance(t, engine, sid, TextEvent{Text: "Ale"})
		advance(t, engine, sid, TextEvent{Text: "200"})
		advance(t, engine, sid, TextEvent{Text: "100"})
		advance(t, engine, sid, TextEvent{Text: "70"})
	}

	respA, errA := engine.Advance(ctx, startA.SessionID, TextEvent{Text: "-"})
	respB, errB := engine.Advance(ctx, startB.SessionID, TextEvent{Text: "-"})

	if errA == nil {
		require.True(t, respA.Done)
		require.ErrorIs(t, errB, errors.ErrDuplicatePosition)
		_ = respB
	} else {
		require.ErrorIs(t, errA, errors.ErrDuplicatePosition)
		require.True(t, respB.Done)
	}

	_, err = taps.Get(ctx, 2)
	assert.NoError(t, err)
}
