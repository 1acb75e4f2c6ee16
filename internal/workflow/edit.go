package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
)

// StartEdit opens an edit dialogue for an assigned tap.
func (e *Engine) StartEdit(ctx context.Context, position int) (*Response, error) {
	tap, err := e.taps.Get(ctx, position)
	if err != nil {
		return nil, err
	}

	sess := e.sessions.create(KindEdit, position)
	sess.Draft = *tap
	sess.State = StateSelectField

	e.logger.Info("edit workflow started", "session_id", sess.ID, "position", position)
	return e.respond(sess), nil
}

func (e *Engine) advanceEdit(ctx context.Context, sess *Session, event Event) (*Response, error) {
	switch sess.State {
	case StateSelectField:
		return e.editSelectField(sess, event)
	case StateEnterValue:
		return e.editEnterValue(ctx, sess, event)
	default:
		return nil, errors.Internalf("edit workflow in unexpected state %q", sess.State)
	}
}

func (e *Engine) editSelectField(sess *Session, event Event) (*Response, error) {
	ev, ok := event.(SelectFieldEvent)
	if !ok {
		return e.reprompt(sess, "pick one of the offered fields"), nil
	}
	if !ev.Field.Valid(e.volumes) {
		return e.reprompt(sess, fmt.Sprintf("unrecognized field %q", string(ev.Field))), nil
	}

	sess.Field = ev.Field
	sess.State = StateEnterValue
	return e.respond(sess), nil
}

func (e *Engine) editEnterValue(ctx context.Context, sess *Session, event Event) (*Response, error) {
	ev, ok := event.(TextEvent)
	if !ok {
		return e.reprompt(sess, "enter the new value as text"), nil
	}

	// Numeric fields are reparsed here; a bad parse re-prompts this state
	// and the registry row stays untouched.
	var value any
	if sess.Field.Numeric() {
		parsed, err := parseDecimal(ev.Text)
		if err != nil {
			return e.reprompt(sess, err.Error()), nil
		}
		value = parsed
	} else {
		value = strings.TrimSpace(ev.Text)
	}

	err := e.taps.UpdateField(ctx, sess.Position, sess.Field, value)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrValidation):
		return e.reprompt(sess, err.Error()), nil
	case errors.Is(err, errors.ErrStoreUnavailable):
		return nil, err
	default:
		// The target vanished or the field went stale underneath us.
		return e.abort(sess, err)
	}

	tap, err := e.taps.Get(ctx, sess.Position)
	if err != nil {
		return e.abort(sess, err)
	}

	resp := e.finish(sess, fmt.Sprintf("Tap %d updated: %s changed.", sess.Position, fieldLabel(sess.Field)))
	resp.Result = tap
	return resp, nil
}

// editableFieldOptions builds the field menu for the configured volumes.
func editableFieldOptions(volumes []string) []Option {
	fields := domain.EditableFields(volumes)
	options := make([]Option, 0, len(fields))
	for _, f := range fields {
		options = append(options, Option{
			Value: string(f),
			Label: fieldLabel(f),
		})
	}
	return options
}

// fieldLabel renders a field for prompts.
func fieldLabel(f domain.Field) string {
	if volume, ok := f.ServingVolume(); ok {
		return fmt.Sprintf("%s pour price", volume)
	}
	switch f {
	case domain.FieldPrice:
		return "price per liter"
	default:
		return string(f)
	}
}
