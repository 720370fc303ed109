// Package gemini provides embedding and generation transports backed by the
// Google Gemini API via google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

func newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// withTimeout narrows the context when a call timeout is configured.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// classify maps a transport failure to the domain error taxonomy: deadline
// overruns become provider timeouts, everything else wraps the given sentinel.
func classify(err error, sentinel error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini request timed out: %w", domain.ErrProviderTimeout)
	}
	return fmt.Errorf("gemini request failed: %v: %w", err, sentinel)
}
