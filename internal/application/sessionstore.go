package application

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionIdleTimeout is how long an untouched session is kept.
const DefaultSessionIdleTimeout = 24 * time.Hour

// Session is a snapshot of one player's session.
type Session struct {
	ID        string
	State     SessionState
	UpdatedAt time.Time
}

type sessionEntry struct {
	mu        sync.Mutex
	state     SessionState
	updatedAt time.Time
}

// SessionStore holds quiz sessions in memory keyed by random UUID. The map is
// guarded by an RWMutex and each session by its own mutex, so a slow update
// on one session does not block the others. Idle sessions are pruned when new
// ones are created.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessionStore creates an empty store. idleTimeout <= 0 uses DefaultSessionIdleTimeout.
func NewSessionStore(idleTimeout time.Duration, now func() time.Time) *SessionStore {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions:    make(map[string]*sessionEntry),
		idleTimeout: idleTimeout,
		now:         now,
	}
}

// Create starts a new session in the NoUsername state.
func (st *SessionStore) Create() Session {
	now := st.now()
	id := uuid.NewString()

	st.mu.Lock()
	defer st.mu.Unlock()

	for sid, e := range st.sessions {
		if e.idleSince(now) > st.idleTimeout {
			delete(st.sessions, sid)
		}
	}
	st.sessions[id] = &sessionEntry{state: NoUsername{}, updatedAt: now}

	return Session{ID: id, State: NoUsername{}, UpdatedAt: now}
}

// Get returns the session with the given id.
func (st *SessionStore) Get(id string) (Session, error) {
	e, err := st.entry(id)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return Session{ID: id, State: e.state, UpdatedAt: e.updatedAt}, nil
}

// Update applies fn to the session's state while holding the session lock.
// The new state is stored only when fn succeeds.
func (st *SessionStore) Update(id string, fn func(SessionState) (SessionState, error)) (Session, error) {
	e, err := st.entry(id)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.state)
	if err != nil {
		return Session{ID: id, State: e.state, UpdatedAt: e.updatedAt}, err
	}
	e.state = next
	e.updatedAt = st.now()
	return Session{ID: id, State: e.state, UpdatedAt: e.updatedAt}, nil
}

// Delete removes a session, or returns ErrSessionNotFound.
func (st *SessionStore) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrSessionNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) entry(id string) (*sessionEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (e *sessionEntry) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.updatedAt)
}
