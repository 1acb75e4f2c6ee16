package workflow

import (
	"context"
	"fmt"

	"github.com/taplistapp/taplist-server/internal/errors"
)

// StartDelete opens a delete confirmation for an assigned tap. An unassigned
// position fails here and no session is created.
func (e *Engine) StartDelete(ctx context.Context, position int) (*Response, error) {
	tap, err := e.taps.Get(ctx, position)
	if err != nil {
		return nil, err
	}

	sess := e.sessions.create(KindDelete, position)
	sess.Draft = *tap
	sess.State = StateConfirmDelete

	e.logger.Info("delete workflow started", "session_id", sess.ID, "position", position)
	return e.respond(sess), nil
}

func (e *Engine) advanceDelete(ctx context.Context, sess *Session, event Event) (*Response, error) {
	if sess.State != StateConfirmDelete {
		return nil, errors.Internalf("delete workflow in unexpected state %q", sess.State)
	}

	ev, ok := event.(ConfirmEvent)
	if !ok {
		return e.reprompt(sess, "answer yes or no"), nil
	}

	if !ev.Confirmed {
		return e.finish(sess, fmt.Sprintf("Tap %d kept.", sess.Position)), nil
	}

	if err := e.taps.Delete(ctx, sess.Position); err != nil {
		if errors.Is(err, errors.ErrStoreUnavailable) {
			return nil, err
		}
		return e.abort(sess, err)
	}
	return e.finish(sess, fmt.Sprintf("Tap %d is now free.", sess.Position)), nil
}
