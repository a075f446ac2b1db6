package ledger

import (
	"sync"
	"time"

	"github.com/calriss/corsair/internal/models"
)

// FlowState is the position of an in-flight report in the staged flow.
type FlowState string

const (
	StateIdle         FlowState = "idle"
	StateCargoChosen  FlowState = "cargo_chosen"
	StateCrewChosen   FlowState = "crew_chosen"
	StateSellerChosen FlowState = "seller_chosen"
	StateCommitted    FlowState = "committed"
)

func (s FlowState) String() string { return string(s) }

// Session is one in-flight report, keyed by the reporting user. Sessions
// are ephemeral: they live only as long as the process and expire after
// the store TTL.
type Session struct {
	UserID       string
	GuildID      string
	State        FlowState
	Cargo        models.Commodity
	Boxes        int
	Price        float64
	SellLocation string
	UnitsPerBox  int
	Crew         map[string]models.CrewRole
	SellerID     string
	UpdatedAt    time.Time
}

// SessionStore holds in-flight report sessions keyed by user ID, with TTL
// expiry and single-writer-per-key semantics: a second flow trigger for a
// key with a live session is rejected.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionStore creates a session store with the given TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Start creates a fresh session for the user. Returns ErrFlowInProgress if
// a live session already exists.
func (s *SessionStore) Start(userID, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[userID]; ok && !s.expired(existing) {
		return ErrFlowInProgress
	}

	s.sessions[userID] = &Session{
		UserID:    userID,
		GuildID:   guildID,
		State:     StateIdle,
		UpdatedAt: time.Now(),
	}
	return nil
}

// Update runs fn against the user's session under the store lock. Expired
// or missing sessions surface ErrNoFlow. The session's UpdatedAt is bumped
// when fn succeeds.
func (s *SessionStore) Update(userID string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || s.expired(sess) {
		delete(s.sessions, userID)
		return ErrNoFlow
	}

	if err := fn(sess); err != nil {
		return err
	}
	sess.UpdatedAt = time.Now()
	return nil
}

// Take removes and returns the user's session if it is live and in the
// expected state. Used by commit so the session is consumed exactly once.
func (s *SessionStore) Take(userID string, expected FlowState) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || s.expired(sess) {
		delete(s.sessions, userID)
		return nil, ErrNoFlow
	}
	if sess.State != expected {
		return nil, &FlowStateError{Expected: expected, Actual: sess.State}
	}

	delete(s.sessions, userID)
	return sess, nil
}

// Abandon discards the user's session, if any. Abandoned state is never
// committed.
func (s *SessionStore) Abandon(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of live sessions, sweeping expired ones.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, key)
		}
	}
	return len(s.sessions)
}

func (s *SessionStore) expired(sess *Session) bool {
	return time.Since(sess.UpdatedAt) >= s.ttl
}
