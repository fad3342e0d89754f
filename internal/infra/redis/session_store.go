package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

const sessionKeyPrefix = "assistant_session:"

var _ repository.SessionStore = (*SessionStore)(nil)

// lockStripes bounds the in-process keyed mutexes: keys hash onto a fixed
// stripe instead of allocating one mutex per key for the process lifetime.
const lockStripes = 64

// SessionStore keeps conversation histories in redis with TTL-based
// expiration, for deployments where memory-local sessions would be lost on
// restart. Read-modify-write per key is serialized through a striped mutex;
// the store assumes a single writer instance per key (one engine process),
// like the rest of the engine does.
type SessionStore struct {
	client Client
	ttl    time.Duration

	locks [lockStripes]sync.Mutex
}

func NewSessionStore(client Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, key string) (*model.Session, error) {
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = model.NewSession(key)
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (s *SessionStore) Append(ctx context.Context, key string, turns ...model.Turn) error {
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	if sess == nil {
		sess = model.NewSession(key)
	}
	for _, t := range turns {
		if t.Timestamp.IsZero() {
			t.Timestamp = time.Now()
		}
		sess.Turns = append(sess.Turns, t)
	}
	sess.UpdatedAt = time.Now()
	return s.save(ctx, sess)
}

func (s *SessionStore) Recent(ctx context.Context, key string, n int) ([]model.Turn, error) {
	sess, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	recent := sess.Recent(n)
	out := make([]model.Turn, len(recent))
	copy(out, recent)
	return out, nil
}

func (s *SessionStore) Len(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *SessionStore) load(ctx context.Context, key string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+key)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) save(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sess.Key, data, s.ttl)
}

func (s *SessionStore) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.locks[h.Sum32()%lockStripes]
}
