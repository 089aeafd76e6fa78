// Package llm defines the conversational model capability consumed by the
// chat service, plus its OpenAI-backed implementation. The service layer
// depends only on the Chat interface, so tests substitute fakes and the
// provider can be swapped without touching business logic.
package llm

import (
	"context"
	"errors"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ErrRateLimited indicates the provider rejected the call due to quota or
// throughput limits. Callers surface a distinct user-facing fallback for it.
var ErrRateLimited = errors.New("llm: rate limited")

// Turn is a single prior exchange in a conversation, in chronological order.
type Turn struct {
	Role    domain.Role
	Content string
}

// Request carries everything needed to produce the next assistant reply.
type Request struct {
	// Instructions is the topic's system prompt.
	Instructions string
	// Turns is the full conversation history, oldest first.
	Turns []Turn
	// Model is the provider model identifier chosen by the routing policy.
	Model string
	// PreviousResponseID is the provider continuation token from the last
	// assistant reply, when one exists. The chat completions implementation
	// ignores it: context comes from resending Turns in full. It is carried
	// so a Responses-API implementation can chain server-side state instead.
	PreviousResponseID string
}

// Reply is the assistant's next utterance.
type Reply struct {
	Content string
	// ResponseID is the provider's identifier for this reply. Persisted so
	// the next request can reference it.
	ResponseID string
}

// Chat produces assistant replies for tutoring conversations.
type Chat interface {
	Complete(ctx context.Context, req Request) (Reply, error)
}
