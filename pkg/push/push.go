package push

import (
	"context"
)

// Payload is the notification content delivered to every token in a batch.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BatchResult reports per-batch delivery counts. Individual token failures
// (stale or unregistered tokens) are counted, not retried.
type BatchResult struct {
	SuccessCount int
	FailureCount int
}

// Gateway delivers a payload to a set of opaque device tokens, best-effort.
type Gateway interface {
	Send(ctx context.Context, tokens []string, payload Payload) (*BatchResult, error)
}
