package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// DefaultCenter is where a fresh session's map starts: Los Mochis, Sinaloa.
var DefaultCenter = models.Location{Latitude: 25.7690852, Longitude: -108.9888047}

// Store keeps live sessions by id and drops the ones idle for longer than ttl.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty Store.
func NewStore(deps Deps, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session with a random id.
func (st *Store) Create() *Session {
	sess := New(uuid.NewString(), DefaultCenter, st.deps)

	st.mu.Lock()
	sess.lastSeen = st.now()
	st.sessions[sess.ID] = sess
	count := len(st.sessions)
	st.mu.Unlock()

	st.deps.Metrics.ActiveSessions.Set(float64(count))

	return sess
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = st.now()

	return sess, nil
}

// GetOrCreate returns the session for id, creating a new one when it is unknown.
// The second return value reports whether a session was created.
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	if sess, err := st.Get(id); err == nil {
		return sess, false
	}

	return st.Create(), true
}

// Sweep removes sessions idle since before now minus ttl and returns how many were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	removed := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.lastSeen) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	count := len(st.sessions)
	st.mu.Unlock()

	st.deps.Metrics.ActiveSessions.Set(float64(count))

	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

// MinSweepInterval is the shortest interval Run sweeps at.
const MinSweepInterval = time.Second

// Run sweeps expired sessions every interval until ctx is canceled.
// Intervals below MinSweepInterval are raised to it.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval < MinSweepInterval {
		interval = MinSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	st.deps.Log.InfoContext(ctx, "Session sweeper started...")

	for {
		select {
		case <-ctx.Done():
			st.deps.Log.InfoContext(ctx, "Session sweeper stopped.")
			return
		case now := <-ticker.C:
			if removed := st.Sweep(now); removed > 0 {
				st.deps.Log.InfoContext(ctx, "Expired sessions removed", "removed", removed)
			}
		}
	}
}
