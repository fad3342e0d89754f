package redis

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"cjk-assistant/internal/domain/model"
)

// fakeClient is a map-backed stand-in for redis, good enough for the session
// store's Get/Set/Keys usage. TTLs are recorded, not enforced.
type fakeClient struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

var _ Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeClient) Ping(_ context.Context) error { return nil }

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return nil
}

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeClient) Expire(_ context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = expiration
	return nil
}

func (f *fakeClient) Keys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeClient) Close() error { return nil }

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "k1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if sess.Key != "k1" || len(sess.Turns) != 0 {
		t.Fatalf("unexpected session: %+v", sess)
	}

	err = store.Append(ctx, "k1",
		model.Turn{Role: model.RoleUser, Content: "question"},
		model.Turn{Role: model.RoleAssistant, Content: "réponse"},
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	turns, err := store.Recent(ctx, "k1", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != 2 || turns[0].Content != "question" || turns[1].Content != "réponse" {
		t.Errorf("turns = %+v", turns)
	}
	for _, turn := range turns {
		if turn.Timestamp.IsZero() {
			t.Error("Append must fill zero timestamps")
		}
	}
}

func TestRedisSessionStoreAppendCreatesSession(t *testing.T) {
	store := NewSessionStore(newFakeClient(), time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "fresh", model.Turn{Role: model.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	turns, _ := store.Recent(ctx, "fresh", 0)
	if len(turns) != 1 {
		t.Errorf("turns = %+v", turns)
	}
}

func TestRedisSessionStoreRecentUnknownKey(t *testing.T) {
	store := NewSessionStore(newFakeClient(), time.Hour)
	if turns, err := store.Recent(context.Background(), "nope", 5); err != nil || turns != nil {
		t.Errorf("Recent = (%+v, %v), want (nil, nil)", turns, err)
	}
}

func TestRedisSessionStoreLen(t *testing.T) {
	store := NewSessionStore(newFakeClient(), time.Hour)
	ctx := context.Background()

	_, _ = store.GetOrCreate(ctx, "a")
	_, _ = store.GetOrCreate(ctx, "b")
	if n, err := store.Len(ctx); err != nil || n != 2 {
		t.Errorf("Len = (%d, %v), want 2", n, err)
	}
}

func TestRedisSessionStoreLockStripesBounded(t *testing.T) {
	store := NewSessionStore(newFakeClient(), time.Hour)

	// The same key must always map to the same mutex.
	if store.lockFor("stable") != store.lockFor("stable") {
		t.Error("lockFor not stable for a fixed key")
	}

	// Arbitrarily many keys must share a fixed set of mutexes.
	seen := make(map[*sync.Mutex]struct{})
	for i := 0; i < 10_000; i++ {
		seen[store.lockFor(strconv.Itoa(i))] = struct{}{}
	}
	if len(seen) > lockStripes {
		t.Errorf("got %d distinct locks, want at most %d", len(seen), lockStripes)
	}
}

func TestRedisSessionStoreSetsTTL(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, 30*time.Minute)
	_, _ = store.GetOrCreate(context.Background(), "k")

	client.mu.Lock()
	defer client.mu.Unlock()
	if got := client.ttls[sessionKeyPrefix+"k"]; got != 30*time.Minute {
		t.Errorf("ttl = %v, want 30m", got)
	}
}
