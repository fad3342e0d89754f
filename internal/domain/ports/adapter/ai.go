package adapter

import "context"

// Message is one (role, text) pair of bounded conversation history handed to
// the generation backend.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionRequest carries everything one generation call needs. History is
// already truncated by the caller; the adapter never grows it.
type CompletionRequest struct {
	Prompt      string
	Preamble    string // system instruction / persona
	History     []Message
	Temperature float64
	MaxTokens   int
}

// GenerationClient is the port for the external text-generation dependency.
// It is treated as an unreliable remote: every failure maps to
// domain.ErrGenerationUnavailable and degrades one exchange only.
type GenerationClient interface {
	// Complete returns the generated text for the request.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// CountTokens returns a best-effort prompt token count
	// (provider-specific counting; used for logging and metrics only).
	CountTokens(ctx context.Context, text string) (int, error)
}
