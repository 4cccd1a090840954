// Package llm provides a bounded-retry decorator shared by the LLM
// service adapters.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Retrying implements the interface.
var _ driven.LLMService = (*Retrying)(nil)

// RetryConfig configures retry behaviour for generation calls.
type RetryConfig struct {
	MaxRetries int           // retry attempts after the first call
	Delay      time.Duration // initial delay, doubled each attempt
}

// DefaultRetryConfig allows at most two retries with a short backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		Delay:      500 * time.Millisecond,
	}
}

// Retrying wraps an LLM service with bounded retry for transient
// failures only. A timeout from the caller's own deadline is never
// retried: the caller asked for the call to stop.
type Retrying struct {
	inner driven.LLMService
	cfg   RetryConfig
}

// NewRetrying wraps a service with retry behaviour.
func NewRetrying(inner driven.LLMService, cfg RetryConfig) *Retrying {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 500 * time.Millisecond
	}
	return &Retrying{inner: inner, cfg: cfg}
}

// Generate retries transient failures with exponential backoff.
func (r *Retrying) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var lastErr error

	for i := 0; i <= r.cfg.MaxRetries; i++ {
		if i > 0 {
			delay := r.cfg.Delay << (i - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := r.inner.Generate(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			return "", err
		}
		if ctx.Err() != nil {
			// The caller's deadline expired; surface the last failure.
			return "", lastErr
		}
	}

	return "", fmt.Errorf("retries exhausted: %w", lastErr)
}

// ModelName returns the underlying model name.
func (r *Retrying) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without retry.
func (r *Retrying) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the underlying service.
func (r *Retrying) Close() error {
	return r.inner.Close()
}
