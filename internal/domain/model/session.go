package model

import (
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation, tagged with its author role.
type Turn struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the ordered, append-only turn history for one caller-supplied
// session key. Turns always arrive in user/assistant pairs.
type Session struct {
	Key       string    `json:"key"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(key string) *Session {
	now := time.Now()
	return &Session{
		Key:       key,
		Turns:     make([]Turn, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Append(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, Timestamp: time.Now()})
	s.UpdatedAt = time.Now()
}

// Recent returns the last n turns (all of them when n <= 0 or fewer exist).
func (s *Session) Recent(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
