package workflow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/taplistapp/taplist-server/internal/catalog/untappd"
	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
	"github.com/taplistapp/taplist-server/internal/id"
)

// defaultSessionTTL is how long an idle session survives before pruning.
// Guided dialogues are short; an abandoned one should not pin a tap choice.
const defaultSessionTTL = 30 * time.Minute

// Session is the ephemeral state of one guided dialogue. Sessions are never
// persisted and do not survive a restart.
type Session struct {
	ID       string
	Kind     Kind
	State    State
	Position int

	// Draft accumulates the assignment an add workflow is building.
	Draft domain.TapAssignment

	// Candidates are the catalog hits offered in StateChooseCandidate.
	Candidates []untappd.Candidate

	// HistoryChoices are the entries offered in StateBrowseHistory.
	HistoryChoices []*domain.HistoryEntry

	// Field is the edit target chosen in StateSelectField.
	Field domain.Field

	// costIndex tracks which configured serving volume is being priced.
	costIndex int

	UpdatedAt time.Time

	// mu serializes transitions on this session. Distinct sessions advance
	// concurrently; a single session advances one event at a time.
	mu sync.Mutex
}

// Option is one selectable answer offered with a prompt.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Response is the engine's answer to a start, advance or cancel call.
type Response struct {
	SessionID string                `json:"session_id"`
	Kind      Kind                  `json:"kind"`
	State     State                 `json:"state"`
	Prompt    string                `json:"prompt,omitempty"`
	Options   []Option              `json:"options,omitempty"`
	Error     string                `json:"error,omitempty"`
	Result    *domain.TapAssignment `json:"result,omitempty"`
	Done      bool                  `json:"done"`
}

// sessionStore is a mutex-guarded in-memory session map with idle pruning.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger
	done     chan struct{}
	stopOnce sync.Once
}

func newSessionStore(ttl time.Duration, logger *slog.Logger) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	s := &sessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go s.pruneLoop()
	return s
}

// create registers a new session of the given kind.
func (s *sessionStore) create(kind Kind, position int) *Session {
	sess := &Session{
		ID:        id.MustGenerate("wf"),
		Kind:      kind,
		Position:  position,
		UpdatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// get returns a live session or NotFound.
func (s *sessionStore) get(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.NotFoundf("workflow session %s not found", sessionID)
	}
	return sess, nil
}

// remove discards a session. Removing an unknown ID is a no-op.
func (s *sessionStore) remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// touch refreshes a session's idle timer. UpdatedAt is read by the prune
// loop under the store mutex, so the write takes it too; callers hold the
// session mutex, never the store mutex.
func (s *sessionStore) touch(sess *Session) {
	s.mu.Lock()
	sess.UpdatedAt = time.Now()
	s.mu.Unlock()
}

func (s *sessionStore) pruneLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.prune(time.Now())
		}
	}
}

// prune drops sessions idle longer than the TTL.
func (s *sessionStore) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sid, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, sid)
			s.logger.Debug("pruned idle workflow session", "session_id", sid, "kind", sess.Kind)
		}
	}
}

// stop terminates the prune loop.
func (s *sessionStore) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}
