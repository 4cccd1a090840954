// Package embedding provides decorators shared by the embedding
// service adapters: request rate limiting and bounded retry.
package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimited paces requests to the underlying embedding service so
// batch ingestion does not saturate a local inference server.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimited wraps a service with a requests-per-second cap.
// Burst equals the cap so short batches are not throttled.
func NewRateLimited(inner driven.EmbeddingService, rps float64) *RateLimited {
	if rps <= 0 {
		rps = 10
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a limiter token, then delegates.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}

// EmbedBatch reserves one token per text, then delegates. The inner
// adapter decides whether the batch is one request or many.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for range texts {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return r.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the underlying vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the underlying model name.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without consuming a token.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the underlying service.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
