// Package workflow implements the guided dialogues that walk an operator
// through assigning, editing and freeing taps. Each dialogue is a session
// holding a state machine; the engine advances sessions one typed event at a
// time and touches the registry only at commit.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taplistapp/taplist-server/internal/errors"
	"github.com/taplistapp/taplist-server/internal/service"
)

// historyChoiceLimit caps how many history entries a browse prompt offers.
const historyChoiceLimit = 10

// Config tunes the engine.
type Config struct {
	// ServingVolumes are the pour sizes priced during an add workflow,
	// in prompt order.
	ServingVolumes []string
	// SessionTTL is how long idle sessions survive. Zero picks the default.
	SessionTTL time.Duration
}

// Engine runs workflow sessions. Sessions are independent and advance
// concurrently; the engine itself spawns no per-session goroutines.
type Engine struct {
	taps     *service.TapService
	history  *service.HistoryService
	catalog  *service.CatalogService
	sessions *sessionStore
	volumes  []string
	logger   *slog.Logger
}

// NewEngine creates a workflow engine.
func NewEngine(cfg Config, taps *service.TapService, history *service.HistoryService, catalog *service.CatalogService, logger *slog.Logger) *Engine {
	return &Engine{
		taps:     taps,
		history:  history,
		catalog:  catalog,
		sessions: newSessionStore(cfg.SessionTTL, logger),
		volumes:  cfg.ServingVolumes,
		logger:   logger,
	}
}

// Close stops the session pruner.
func (e *Engine) Close() {
	e.sessions.stop()
}

// FreePositions lists taps an add workflow may target.
func (e *Engine) FreePositions(ctx context.Context) ([]int, error) {
	return e.taps.FreePositions(ctx)
}

// OccupiedPositions lists taps an edit or delete workflow may target.
func (e *Engine) OccupiedPositions(ctx context.Context) ([]int, error) {
	return e.taps.OccupiedPositions(ctx)
}

// Advance delivers one operator event to a session and returns the next
// prompt, or the final result when the dialogue completes. Validation
// problems re-enter the same state with an error indication; aborting
// domain errors discard the session and surface to the caller.
func (e *Engine) Advance(ctx context.Context, sessionID string, event Event) (*Response, error) {
	sess, err := e.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	e.sessions.touch(sess)

	switch sess.Kind {
	case KindAdd:
		return e.advanceAdd(ctx, sess, event)
	case KindEdit:
		return e.advanceEdit(ctx, sess, event)
	case KindDelete:
		return e.advanceDelete(ctx, sess, event)
	default:
		return nil, errors.Internalf("unknown workflow kind %q", sess.Kind)
	}
}

// Cancel discards a session. Valid from every non-terminal state; nothing
// the session accumulated is written anywhere.
func (e *Engine) Cancel(ctx context.Context, sessionID string) (*Response, error) {
	sess, err := e.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	e.sessions.remove(sessionID)

	e.logger.Info("workflow cancelled",
		"session_id", sessionID,
		"kind", sess.Kind,
		"state", sess.State,
	)
	return &Response{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		State:     StateDone,
		Prompt:    "Cancelled. Nothing was changed.",
		Done:      true,
	}, nil
}

// respond builds the envelope for a session's current state.
func (e *Engine) respond(sess *Session) *Response {
	prompt, options := e.promptFor(sess)
	return &Response{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		State:     sess.State,
		Prompt:    prompt,
		Options:   options,
	}
}

// reprompt re-enters the current state with an error indication. The session
// is left exactly as it was.
func (e *Engine) reprompt(sess *Session, msg string) *Response {
	resp := e.respond(sess)
	resp.Error = msg
	return resp
}

// finish removes the session and builds the terminal envelope.
func (e *Engine) finish(sess *Session, prompt string) *Response {
	e.sessions.remove(sess.ID)
	sess.State = StateDone
	return &Response{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		State:     StateDone,
		Prompt:    prompt,
		Done:      true,
	}
}

// abort removes the session and surfaces the error that killed it.
func (e *Engine) abort(sess *Session, err error) (*Response, error) {
	e.sessions.remove(sess.ID)
	e.logger.Warn("workflow aborted",
		"session_id", sess.ID,
		"kind", sess.Kind,
		"state", sess.State,
		"error", err,
	)
	return nil, err
}

// promptFor derives the prompt and options for a session's current state.
// Everything needed is on the session, so re-prompts never repeat IO.
func (e *Engine) promptFor(sess *Session) (string, []Option) {
	switch sess.State {
	case StateChooseSource:
		return "Add from history or enter a new beverage?", []Option{
			{Value: string(SourceHistory), Label: "Choose from history"},
			{Value: string(SourceNew), Label: "Enter a new beverage"},
		}
	case StateBrowseHistory:
		options := make([]Option, 0, len(sess.HistoryChoices))
		for _, entry := range sess.HistoryChoices {
			options = append(options, Option{
				Value: strconv.FormatInt(entry.ID, 10),
				Label: fmt.Sprintf("%s %s (used %d times)", entry.Brewery, entry.Name, entry.UsageCount),
			})
		}
		return "Choose a beverage from history", options
	case StateEnterBreweryName:
		return `Enter brewery and beverage name separated by a comma (e.g. "Sierra Nevada, Pale Ale")`, nil
	case StateChooseCandidate:
		options := make([]Option, 0, len(sess.Candidates)+1)
		for i, c := range sess.Candidates {
			options = append(options, Option{
				Value: strconv.Itoa(i),
				Label: c.DisplayName,
			})
		}
		options = append(options, Option{Value: "manual", Label: "Enter details manually"})
		return "Select a catalog match or enter details manually", options
	case StateEnterName:
		return "Enter the beverage name", nil
	case StateEnterStyle:
		return "Enter the beverage style", nil
	case StateEnterPrice:
		return "Enter the price per liter", nil
	case StateEnterServingCost:
		return fmt.Sprintf("Enter the price of a %s pour", e.volumes[sess.costIndex]), nil
	case StateEnterDescription:
		return `Enter a description, or "-" to skip`, nil
	case StateSelectField:
		fields := editableFieldOptions(e.volumes)
		return "Which field should change?", fields
	case StateEnterValue:
		return fmt.Sprintf("Enter the new value for %s", fieldLabel(sess.Field)), nil
	case StateConfirmDelete:
		return fmt.Sprintf("Free tap %d (%s %s)?", sess.Position, sess.Draft.Brewery, sess.Draft.Name), []Option{
			{Value: "yes", Label: "Yes, free the tap"},
			{Value: "no", Label: "No, keep it"},
		}
	default:
		return "", nil
	}
}

// parseDecimal parses a non-negative decimal from operator text.
func parseDecimal(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errors.Validationf("%q is not a number", strings.TrimSpace(text))
	}
	if v < 0 {
		return 0, errors.Validationf("value must not be negative, got %g", v)
	}
	return v, nil
}
