// Package rod drives a live timeline page in Chrome: it renders pages,
// streams their markup to the scanner, bridges clicks and scrolls.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// Browser manages a Chrome instance. Chrome accumulates memory across pages,
// so after maxPages pages have been opened the next page is opened in a
// fresh browser. Pages still open in the old browser are closed with it.
//
// Browser is safe for concurrent use.
type Browser struct {
	browser     *rod.Browser
	launcher    *launcher.Launcher
	pageCount   int64
	maxPages    int64
	headless    bool
	userDataDir string
	mu          sync.Mutex
	closed      atomic.Bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithMaxPages sets the number of pages opened before the browser is recycled.
func WithMaxPages(n int64) BrowserOption {
	return func(b *Browser) {
		b.maxPages = n
	}
}

// WithHeadless controls whether Chrome runs without a window. Defaults to true.
func WithHeadless(headless bool) BrowserOption {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithUserDataDir runs Chrome with the given profile directory, which lets
// a session reuse a logged-in profile.
func WithUserDataDir(dir string) BrowserOption {
	return func(b *Browser) {
		b.userDataDir = dir
	}
}

// NewBrowser launches Chrome. Close must be called when the Browser is no
// longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewBrowser(opts ...BrowserOption) (*Browser, error) {
	b := &Browser{
		maxPages: DefaultMaxPages,
		headless: true,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.launch(); err != nil {
		return nil, err
	}

	return b, nil
}

// Open creates a page bound to ctx, navigates to url and waits for the
// load event.
func (b *Browser) Open(ctx context.Context, url string) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := b.current().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	atomic.AddInt64(&b.pageCount, 1)

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("waiting for %s: %w", url, err)
	}
	return page, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.shutdown()
}

// LauncherPID returns the process ID of the browser launcher.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

// current returns the browser to open the next page in, recycling it first
// if the page budget is spent.
func (b *Browser) current() *rod.Browser {
	b.mu.Lock()
	defer b.mu.Unlock()

	if atomic.LoadInt64(&b.pageCount) >= b.maxPages {
		b.recycle()
	}

	return b.browser
}

// launch starts a new browser instance with stability flags.
func (b *Browser) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(b.headless)
	if b.userDataDir != "" {
		l = l.UserDataDir(b.userDataDir)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.browser = browser
	b.launcher = l
	return nil
}

// shutdown closes the current browser and launcher.
// Must be called with mu held.
func (b *Browser) shutdown() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// recycle starts a fresh browser and closes the old one. If the new launch
// fails the old browser is kept. Must be called with mu held.
func (b *Browser) recycle() {
	oldBrowser := b.browser
	oldLauncher := b.launcher
	b.browser = nil
	b.launcher = nil

	if err := b.launch(); err != nil {
		b.browser = oldBrowser
		b.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&b.pageCount, 0)
}
