package chat

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/domain/session"
)

// Retriever ranks the corpus against a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]corpus.Match, error)
}

// Generator produces a completion for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}

// SessionStore is the bounded per-session conversation memory.
type SessionStore interface {
	History(sessionID string) []session.Message
	Append(sessionID string, messages ...session.Message)
}
