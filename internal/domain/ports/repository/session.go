package repository

import (
	"context"

	"cjk-assistant/internal/domain/model"
)

// SessionStore owns conversation histories keyed by opaque, caller-supplied
// session keys. Implementations must guarantee:
//   - GetOrCreate is idempotent: concurrent first calls for one key settle on
//     a single session, and later calls never discard prior turns.
//   - One Append call is atomic; appends to the same key are serialized, so a
//     user/assistant pair passed together can never interleave with another
//     exchange for that key.
//   - Operations on different keys do not block each other.
type SessionStore interface {
	GetOrCreate(ctx context.Context, key string) (*model.Session, error)

	// Append adds turns to the session's history in the given order, creating
	// the session when absent.
	Append(ctx context.Context, key string, turns ...model.Turn) error

	// Recent returns the last n turns for key (empty when the session is
	// unknown), as a copy safe to read without synchronization.
	Recent(ctx context.Context, key string, n int) ([]model.Turn, error)

	// Len reports the number of live sessions.
	Len(ctx context.Context) (int, error)
}
