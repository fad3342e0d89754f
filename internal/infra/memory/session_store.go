package memory

import (
	"context"
	"sync"
	"time"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps conversation histories in process memory, bounded by a
// session capacity and a TTL instead of growing for the process lifetime.
// A map-level RWMutex guards session creation; a per-session mutex serializes
// appends so different keys never block each other.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	capacity int
	ttl      time.Duration
}

type entry struct {
	mu       sync.Mutex
	sess     *model.Session
	lastSeen time.Time
}

// NewSessionStore creates a store evicting the least-recently-used session
// beyond capacity and everything idle longer than ttl (zero values disable
// the respective bound).
func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entry),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, key string) (*model.Session, error) {
	e := s.lockedEntry(key)
	defer e.mu.Unlock()
	e.lastSeen = time.Now()
	return copySession(e.sess), nil
}

func (s *SessionStore) Append(ctx context.Context, key string, turns ...model.Turn) error {
	e := s.lockedEntry(key)
	defer e.mu.Unlock()
	for _, t := range turns {
		if t.Timestamp.IsZero() {
			t.Timestamp = time.Now()
		}
		e.sess.Turns = append(e.sess.Turns, t)
	}
	e.sess.UpdatedAt = time.Now()
	e.lastSeen = e.sess.UpdatedAt
	return nil
}

func (s *SessionStore) Recent(ctx context.Context, key string, n int) ([]model.Turn, error) {
	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	recent := e.sess.Recent(n)
	out := make([]model.Turn, len(recent))
	copy(out, recent)
	return out, nil
}

func (s *SessionStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Sweep drops sessions idle longer than the TTL. Returns the eviction count.
// Run it periodically (see sched.SessionSweeper).
func (s *SessionStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for key, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, key)
			evicted++
		}
	}
	return evicted
}

// lockedEntry returns the current entry for key with its mutex held. An
// eviction can detach the entry between lookup and lock, which would make the
// caller write into a session the map no longer sees; re-resolve until the
// locked entry is still the one in the map.
func (s *SessionStore) lockedEntry(key string) *entry {
	for {
		e := s.entryFor(key)
		e.mu.Lock()
		s.mu.RLock()
		cur := s.sessions[key]
		s.mu.RUnlock()
		if cur == e {
			return e
		}
		e.mu.Unlock()
	}
}

// entryFor returns the live entry for key, creating it once even under
// concurrent first-requests. Creation may evict the least-recently-used
// session when the capacity bound is hit.
func (s *SessionStore) entryFor(key string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[key]; ok {
		return e
	}
	if s.capacity > 0 && len(s.sessions) >= s.capacity {
		s.evictOldestLocked()
	}
	e = &entry{sess: model.NewSession(key), lastSeen: time.Now()}
	s.sessions[key] = e
	return e
}

func (s *SessionStore) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range s.sessions {
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = key, e.lastSeen
		}
	}
	if oldestKey != "" {
		delete(s.sessions, oldestKey)
	}
}

func copySession(src *model.Session) *model.Session {
	cp := *src
	cp.Turns = make([]model.Turn, len(src.Turns))
	copy(cp.Turns, src.Turns)
	return &cp
}
