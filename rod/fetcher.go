package rod

import (
	"context"
	"time"

	"github.com/fwojciec/tweetexport"
)

// Ensure Fetcher implements tweetexport.Fetcher at compile time.
var _ tweetexport.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered timeline HTML using Chrome.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser *Browser
	settle  time.Duration
	owned   bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchSettle sets how long to wait after the load event before the
// HTML is captured, giving the timeline time to populate.
func WithFetchSettle(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// NewFetcher creates a Fetcher that opens pages in browser. The caller
// keeps ownership of browser.
func NewFetcher(browser *Browser, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{browser: browser, settle: DefaultSettleDelay}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewHeadlessFetcher launches its own headless browser. Close releases it.
func NewHeadlessFetcher(opts ...FetcherOption) (*Fetcher, error) {
	browser, err := NewBrowser()
	if err != nil {
		return nil, err
	}
	f := NewFetcher(browser, opts...)
	f.owned = true
	return f, nil
}

// Fetch navigates to url and returns the rendered HTML once the page has
// settled.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.browser.Open(ctx, url)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := sleep(ctx, f.settle); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close releases the browser if the Fetcher launched it.
func (f *Fetcher) Close() error {
	if !f.owned {
		return nil
	}
	return f.browser.Close()
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
