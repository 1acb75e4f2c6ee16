package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/taplistapp/taplist-server/internal/catalog/untappd"
	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
)

// StartAdd opens an add dialogue for a free tap. The history branch is
// offered only when the history cache has something to offer.
func (e *Engine) StartAdd(ctx context.Context, position int) (*Response, error) {
	if count := e.taps.TapCount(); position < 1 || position > count {
		return nil, errors.Validationf("tap position must be between 1 and %d, got %d", count, position)
	}
	if _, err := e.taps.Get(ctx, position); err == nil {
		return nil, errors.DuplicatePositionf("tap %d is already assigned", position)
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	top, err := e.history.Top(ctx, 1)
	if err != nil {
		return nil, err
	}

	sess := e.sessions.create(KindAdd, position)
	sess.Draft.Position = position
	if len(top) > 0 {
		sess.State = StateChooseSource
	} else {
		sess.State = StateEnterBreweryName
	}

	e.logger.Info("add workflow started", "session_id", sess.ID, "position", position)
	return e.respond(sess), nil
}

func (e *Engine) advanceAdd(ctx context.Context, sess *Session, event Event) (*Response, error) {
	switch sess.State {
	case StateChooseSource:
		return e.addChooseSource(ctx, sess, event)
	case StateBrowseHistory:
		return e.addBrowseHistory(sess, event)
	case StateEnterBreweryName:
		return e.addEnterBreweryName(ctx, sess, event)
	case StateChooseCandidate:
		return e.addChooseCandidate(ctx, sess, event)
	case StateEnterName:
		return e.addEnterName(sess, event)
	case StateEnterStyle:
		return e.addEnterStyle(sess, event)
	case StateEnterPrice:
		return e.addEnterPrice(sess, event)
	case StateEnterServingCost:
		return e.addEnterServingCost(sess, event)
	case StateEnterDescription:
		return e.addEnterDescription(ctx, sess, event)
	default:
		return nil, errors.Internalf("add workflow in unexpected state %q", sess.State)
	}
}

func (e *Engine) addChooseSource(ctx context.Context, sess *Session, event Event) (*Response, error) {
	ev, ok := event.(ChooseSourceEvent)
	if !ok {
		return e.reprompt(sess, "choose one of the offered options"), nil
	}

	switch ev.Source {
	case SourceHistory:
		entries, err := e.history.Top(ctx, historyChoiceLimit)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			// History emptied since the dialogue started.
			sess.State = StateEnterBreweryName
			return e.respond(sess), nil
		}
		sess.HistoryChoices = entries
		sess.State = StateBrowseHistory
		return e.respond(sess), nil
	case SourceNew:
		sess.State = StateEnterBreweryName
		return e.respond(sess), nil
	default:
		return e.reprompt(sess, fmt.Sprintf("unknown source %q", ev.Source)), nil
	}
}

func (e *Engine) addBrowseHistory(sess *Session, event Event) (*Response, error) {
	ev, ok := event.(ChooseHistoryEvent)
	if !ok {
		return e.reprompt(sess, "pick one of the offered entries"), nil
	}

	var chosen *domain.HistoryEntry
	for _, entry := range sess.HistoryChoices {
		if entry.ID == ev.ID {
			chosen = entry
			break
		}
	}
	if chosen == nil {
		return e.reprompt(sess, "pick one of the offered entries"), nil
	}

	// Copy everything except the price fields, which are entered per tap.
	// The usage count moves only at commit; cancelling now changes nothing.
	sess.Draft.Brewery = chosen.Brewery
	sess.Draft.Name = chosen.Name
	sess.Draft.Style = chosen.Style
	sess.Draft.Description = chosen.Description
	sess.Draft.CatalogURL = chosen.CatalogURL
	sess.Draft.ABV = chosen.ABV
	sess.Draft.IBU = chosen.IBU

	sess.State = StateEnterPrice
	return e.respond(sess), nil
}

func (e *Engine) addEnterBreweryName(ctx context.Context, sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter brewery and beverage name as text"), nil
	}

	brewery, name := splitBreweryName(ev.Text)
	if brewery == "" {
		return e.reprompt(sess, "brewery must not be empty"), nil
	}
	sess.Draft.Brewery = brewery
	sess.Draft.Name = name

	query := brewery
	if name != "" {
		query = brewery + " " + name
	}
	candidates := e.catalog.Lookup(ctx, query)
	if len(candidates) > 0 {
		sess.Candidates = candidates
		sess.State = StateChooseCandidate
		return e.respond(sess), nil
	}

	// No candidates: straight on to manual entry, the dialogue never stalls.
	e.nextAddEntryState(sess)
	return e.respond(sess), nil
}

func (e *Engine) addChooseCandidate(ctx context.Context, sess *Session, event Event) (*Response, error) {
	switch ev := event.(type) {
	case ManualEvent:
		e.nextAddEntryState(sess)
		return e.respond(sess), nil
	case ChooseCandidateEvent:
		if ev.Index < 0 || ev.Index >= len(sess.Candidates) {
			return e.reprompt(sess, "pick one of the offered candidates"), nil
		}
		candidate := sess.Candidates[ev.Index]
		sess.Draft.CatalogURL = candidate.URL

		// Enrichment is best effort; an unreachable page costs nothing
		// but the details it would have filled in.
		mergeDetails(&sess.Draft, candidate, e.catalog.Describe(ctx, candidate.URL))

		e.nextAddEntryState(sess)
		return e.respond(sess), nil
	default:
		return e.reprompt(sess, "pick a candidate or choose manual entry"), nil
	}
}

func (e *Engine) addEnterName(sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter the beverage name as text"), nil
	}
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.reprompt(sess, "name must not be empty"), nil
	}
	sess.Draft.Name = name

	e.nextAddEntryState(sess)
	return e.respond(sess), nil
}

func (e *Engine) addEnterStyle(sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter the beverage style as text"), nil
	}
	style := strings.TrimSpace(ev.Text)
	if style == "" {
		return e.reprompt(sess, "style must not be empty"), nil
	}
	sess.Draft.Style = style

	sess.State = StateEnterPrice
	return e.respond(sess), nil
}

func (e *Engine) addEnterPrice(sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter the price as a number"), nil
	}
	price, err := parseDecimal(ev.Text)
	if err != nil {
		return e.reprompt(sess, err.Error()), nil
	}
	sess.Draft.PricePerLiter = price

	if len(e.volumes) > 0 {
		sess.costIndex = 0
		sess.State = StateEnterServingCost
	} else {
		sess.State = StateEnterDescription
	}
	return e.respond(sess), nil
}

func (e *Engine) addEnterServingCost(sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter the pour price as a number"), nil
	}
	price, err := parseDecimal(ev.Text)
	if err != nil {
		return e.reprompt(sess, err.Error()), nil
	}
	sess.Draft.SetServingCost(e.volumes[sess.costIndex], price)

	sess.costIndex++
	if sess.costIndex < len(e.volumes) {
		return e.respond(sess), nil
	}
	sess.State = StateEnterDescription
	return e.respond(sess), nil
}

func (e *Engine) addEnterDescription(ctx context.Context, sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter a description or \"-\" to skip"), nil
	}
	text := strings.TrimSpace(ev.Text)
	if text == "-" {
		text = ""
	}
	sess.Draft.Description = text

	return e.commitAdd(ctx, sess)
}

// commitAdd writes the draft: first the registry insert, then the history
// usage record. The insert is the atomicity point; a losing race surfaces
// as DuplicatePosition and nothing is written.
func (e *Engine) commitAdd(ctx context.Context, sess *Session) (*Response, error) {
	tap := sess.Draft
	if err := e.taps.Create(ctx, &tap); err != nil {
		if errors.Is(err, errors.ErrStoreUnavailable) {
			// Transient: keep the session so the transition can be retried.
			return nil, err
		}
		return e.abort(sess, err)
	}

	if err := e.history.Record(ctx, tap.Brewery, tap.Name, domain.BeverageMetadata{
		Style:       tap.Style,
		Description: tap.Description,
		CatalogURL:  tap.CatalogURL,
		ABV:         tap.ABV,
		IBU:         tap.IBU,
	}); err != nil {
		// The tap is already assigned; losing one usage count is better
		// than reporting failure for a committed assignment.
		e.logger.Error("recording usage after tap commit failed",
			"position", tap.Position,
			"brewery", tap.Brewery,
			"name", tap.Name,
			"error", err,
		)
	}

	resp := e.finish(sess, fmt.Sprintf("Tap %d now pours %s %s.", tap.Position, tap.Brewery, tap.Name))
	resp.Result = &tap
	return resp, nil
}

// nextAddEntryState advances to the first entry step whose field is still
// missing: name, then style, then price.
func (e *Engine) nextAddEntryState(sess *Session) {
	switch {
	case sess.Draft.Name == "":
		sess.State = StateEnterName
	case sess.Draft.Style == "":
		sess.State = StateEnterStyle
	default:
		sess.State = StateEnterPrice
	}
}

// splitBreweryName splits operator text at the first comma. Without a comma
// the whole text is the brewery and the name stays empty.
func splitBreweryName(text string) (brewery, name string) {
	brewery, name, _ = strings.Cut(text, ",")
	return strings.TrimSpace(brewery), strings.TrimSpace(name)
}

// mergeDetails fills draft gaps from a chosen candidate and its page details.
// Operator-entered values always win; details only fill what is empty.
func mergeDetails(draft *domain.TapAssignment, candidate untappd.Candidate, details *untappd.Details) {
	if draft.Name == "" {
		draft.Name = candidate.DisplayName
	}
	if details == nil {
		return
	}
	if draft.Name == candidate.DisplayName && details.Name != "" {
		// The page name beats the slug-derived display name.
		draft.Name = details.Name
	}
	if draft.Style == "" {
		draft.Style = details.Style
	}
	if draft.Description == "" {
		draft.Description = details.Description
	}
	if draft.ABV == nil {
		draft.ABV = details.ABV
	}
	if draft.IBU == nil {
		draft.IBU = details.IBU
	}
}
