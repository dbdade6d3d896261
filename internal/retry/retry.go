package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

// PageFetcher is a decorator that retries transient page-request failures
// with exponential backoff and jitter before delegating to the wrapped
// fetcher. Normalization passes straight through.
type PageFetcher struct {
	inner      model.PageFetcher
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewPageFetcher wraps a fetcher with retry logic. maxRetries is the number
// of additional attempts after the first failure, baseDelay the delay before
// the first retry, doubled on each subsequent one.
func NewPageFetcher(inner model.PageFetcher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *PageFetcher {
	return &PageFetcher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Normalize delegates to the wrapped fetcher.
func (f *PageFetcher) Normalize(raw model.RawListing) (model.Job, error) {
	return f.inner.Normalize(raw)
}

// FetchPage attempts to fetch a page, retrying on transient errors.
func (f *PageFetcher) FetchPage(ctx context.Context, page int) (model.Page, error) {
	result, err := f.inner.FetchPage(ctx, page)
	if err == nil {
		return result, nil
	}
	if !isRetryable(err) {
		return model.Page{}, err
	}

	lastErr := err
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		delay := f.backoffDelay(attempt, lastErr)

		f.logger.Warn("retrying page after transient error",
			"page", page,
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return model.Page{}, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		result, err = f.inner.FetchPage(ctx, page)
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) {
			return model.Page{}, err
		}
		lastErr = err
	}

	return model.Page{}, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (f *PageFetcher) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := f.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		return false
	}

	// Non-HTTP errors (network, DNS, etc.) are worth one more try.
	return true
}
