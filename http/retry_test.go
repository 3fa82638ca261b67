package http_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/tweetexport"
	tweethttp "github.com/fwojciec/tweetexport/http"
	"github.com/fwojciec/tweetexport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryFetcher_Fetch(t *testing.T) {
	t.Parallel()

	noDelay := []time.Duration{0, 0, 0}

	t.Run("retries until success", func(t *testing.T) {
		t.Parallel()

		var calls int
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				calls++
				if calls < 3 {
					return "", errors.New("connection reset")
				}
				return "<html></html>", nil
			},
		}

		html, err := tweethttp.NewRetryFetcher(inner, noDelay, nil).Fetch(context.Background(), "https://x.com/gopher")

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error after all attempts", func(t *testing.T) {
		t.Parallel()

		var calls int
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				calls++
				return "", errors.New("HTTP 503")
			},
		}

		_, err := tweethttp.NewRetryFetcher(inner, noDelay, nil).Fetch(context.Background(), "https://x.com/gopher")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		var calls int
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				calls++
				return "", tweetexport.Errorf(tweetexport.ENOTFOUND, "HTTP 404")
			},
		}

		_, err := tweethttp.NewRetryFetcher(inner, noDelay, nil).Fetch(context.Background(), "https://x.com/gopher")

		assert.Equal(t, tweetexport.ENOTFOUND, tweetexport.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context ends", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				cancel()
				return "", errors.New("connection reset")
			},
		}

		_, err := tweethttp.NewRetryFetcher(inner, []time.Duration{time.Hour}, nil).Fetch(ctx, "https://x.com/gopher")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("close delegates", func(t *testing.T) {
		t.Parallel()

		closed := false
		inner := &mock.Fetcher{CloseFn: func() error { closed = true; return nil }}

		require.NoError(t, tweethttp.NewRetryFetcher(inner, nil, nil).Close())
		assert.True(t, closed)
	})
}
