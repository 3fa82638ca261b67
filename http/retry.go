package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/tweetexport"
)

// Ensure RetryFetcher implements tweetexport.Fetcher at compile time.
var _ tweetexport.Fetcher = (*RetryFetcher)(nil)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryFetcher retries failed fetches with backoff. Errors that a retry
// cannot fix (a missing page, an invalid URL, a cancelled context) are
// returned at once.
type RetryFetcher struct {
	next   tweetexport.Fetcher
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryFetcher wraps next. It makes len(delays)+1 attempts, waiting
// delays[i] before retry i+1. A nil logger discards retry logs.
func NewRetryFetcher(next tweetexport.Fetcher, delays []time.Duration, logger *slog.Logger) *RetryFetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// Fetch calls the wrapped fetcher until it succeeds, fails permanently, or
// the attempts run out. The last error is returned.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(f.delays); attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if !retryable(err) || attempt == len(f.delays) {
			break
		}

		f.logger.Warn("retry fetch", "url", url, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}

	return "", lastErr
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch tweetexport.ErrorCode(err) {
	case tweetexport.ENOTFOUND, tweetexport.EINVALID:
		return false
	}
	return true
}
