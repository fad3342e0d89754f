package ai

import (
	"context"
	"time"

	"cjk-assistant/internal/domain/ports/adapter"
)

var _ adapter.GenerationClient = (*NoopClient)(nil)

// NoopClient implements the generation port for local/dev runs without any
// provider key. It answers with a fixed line after a small simulated delay.
type NoopClient struct {
	Reply string
}

func NewNoopClient() *NoopClient {
	return &NoopClient{Reply: "Ceci est une réponse de test."}
}

func (n *NoopClient) Complete(ctx context.Context, req adapter.CompletionRequest) (string, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return n.Reply, nil
}

func (n *NoopClient) CountTokens(_ context.Context, text string) (int, error) {
	// rough whitespace estimate is plenty for a noop
	return len(text) / 4, nil
}
