package rod

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"golang.org/x/time/rate"
)

// DefaultMaxIdleScrolls is the number of consecutive scrolls that add no
// tweets before the scroller assumes the timeline is exhausted.
const DefaultMaxIdleScrolls = 5

// Scroller advances a timeline at a fixed pace until enough tweets are
// indexed. Scrolling is paced with a token bucket, one scroll per interval.
type Scroller struct {
	step    func(context.Context) error
	limiter *rate.Limiter
	maxIdle int
}

// ScrollerOption configures a Scroller.
type ScrollerOption func(*Scroller)

// WithMaxIdleScrolls sets how many scrolls in a row may add no tweets
// before Run gives up.
func WithMaxIdleScrolls(n int) ScrollerOption {
	return func(s *Scroller) {
		s.maxIdle = n
	}
}

// NewScroller creates a Scroller calling step at most once per interval.
func NewScroller(step func(context.Context) error, interval time.Duration, opts ...ScrollerOption) *Scroller {
	s := &Scroller{
		step:    step,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		maxIdle: DefaultMaxIdleScrolls,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scrolls until count reports at least target tweets, the timeline stops
// growing for the idle budget, or ctx ends. Context cancellation is not an
// error.
func (s *Scroller) Run(ctx context.Context, count func() int, target int) error {
	last := -1
	idle := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}

		n := count()
		if n >= target {
			return nil
		}
		if n > last {
			idle = 0
		} else {
			idle++
		}
		if idle >= s.maxIdle {
			return nil
		}
		last = n

		if err := s.step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// PageScroll returns a scroll step that moves page down by one viewport.
func PageScroll(page *rod.Page) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := page.Context(ctx).Eval(`() => window.scrollBy(0, window.innerHeight)`)
		return err
	}
}
