package embedding

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// flakyService fails a set number of times before succeeding.
type flakyService struct {
	failures int
	calls    int
	err      error
}

func (f *flakyService) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func (f *flakyService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vec, err := f.Embed(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = vec
	}
	return out, nil
}

func (f *flakyService) Dimensions() int              { return 2 }
func (f *flakyService) ModelName() string            { return "flaky" }
func (f *flakyService) Ping(_ context.Context) error { return nil }
func (f *flakyService) Close() error                 { return nil }

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, Delay: time.Millisecond}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	inner := &flakyService{failures: 2, err: domain.ErrEmbeddingUnavailable}
	svc := NewRetrying(inner, fastRetry(2))

	vec, err := svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryExhausted(t *testing.T) {
	inner := &flakyService{failures: 10, err: domain.ErrEmbeddingUnavailable}
	svc := NewRetrying(inner, fastRetry(2))

	_, err := svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 3, inner.calls, "one call plus two retries")
}

func TestRetrySkipsDeterministicErrors(t *testing.T) {
	inner := &flakyService{
		failures: 10,
		err:      fmt.Errorf("%w: 768 vs 1536", domain.ErrVectorDimensionMismatch),
	}
	svc := NewRetrying(inner, fastRetry(2))

	_, err := svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrVectorDimensionMismatch)
	assert.Equal(t, 1, inner.calls, "deterministic errors must not be retried")
}

func TestRetryBatchNeverPartial(t *testing.T) {
	inner := &flakyService{failures: 1, err: domain.ErrEmbeddingUnavailable}
	svc := NewRetrying(inner, fastRetry(1))

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.NotEmpty(t, v)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	inner := &flakyService{failures: 10, err: domain.ErrEmbeddingUnavailable}
	svc := NewRetrying(inner, RetryConfig{MaxRetries: 5, Delay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitedDelegates(t *testing.T) {
	inner := &flakyService{}
	svc := NewRateLimited(inner, 100)

	vec, err := svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "flaky", svc.ModelName())
}

func TestRateLimitedPacesRequests(t *testing.T) {
	inner := &flakyService{}
	// 50 rps with burst 50; 3 calls should still pass quickly.
	svc := NewRateLimited(inner, 50)

	start := time.Now()
	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
