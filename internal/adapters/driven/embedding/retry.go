package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Retrying implements the interface.
var _ driven.EmbeddingService = (*Retrying)(nil)

// RetryConfig configures retry behaviour for embedding calls.
type RetryConfig struct {
	MaxRetries int           // retry attempts after the first call
	Delay      time.Duration // initial delay, doubled each attempt
}

// DefaultRetryConfig bounds transient-failure retries the way the
// pipeline expects: at most two retries with a short backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		Delay:      500 * time.Millisecond,
	}
}

// Retrying wraps an embedding service with bounded retry for transient
// failures. Deterministic errors pass through untouched.
type Retrying struct {
	inner driven.EmbeddingService
	cfg   RetryConfig
}

// NewRetrying wraps a service with retry behaviour.
func NewRetrying(inner driven.EmbeddingService, cfg RetryConfig) *Retrying {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 500 * time.Millisecond
	}
	return &Retrying{inner: inner, cfg: cfg}
}

// Embed retries transient failures with exponential backoff.
func (r *Retrying) Embed(ctx context.Context, text string) ([]float32, error) {
	var result []float32
	err := r.attempt(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = r.inner.Embed(ctx, text)
		return callErr
	})
	return result, err
}

// EmbedBatch retries transient failures with exponential backoff. The
// whole batch is retried: partial results are never kept, so an
// un-embedded fragment can never slip through with a placeholder.
func (r *Retrying) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32
	err := r.attempt(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = r.inner.EmbedBatch(ctx, texts)
		return callErr
	})
	return result, err
}

// attempt runs fn up to 1+MaxRetries times, backing off between
// transient failures.
func (r *Retrying) attempt(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for i := 0; i <= r.cfg.MaxRetries; i++ {
		if i > 0 {
			delay := r.cfg.Delay << (i - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("retries exhausted: %w", lastErr)
}

// Dimensions returns the underlying vector size.
func (r *Retrying) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the underlying model name.
func (r *Retrying) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without retry; startup checks report immediately.
func (r *Retrying) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the underlying service.
func (r *Retrying) Close() error {
	return r.inner.Close()
}
