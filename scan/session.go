package scan

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/tweetexport"
)

// Session owns the state of one scanning session: the tweet index and the
// bulk selection. It implements the operations exposed to the host page.
// Session is safe for concurrent use.
type Session struct {
	index   tweetexport.TweetIndex
	scanner tweetexport.Scanner
	sink    tweetexport.ExportSink
	now     func() time.Time

	mu        sync.Mutex
	selection tweetexport.Selection
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNow sets the clock used to stamp exports.
func WithNow(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithSelectionListener registers fn to be called with the selection count
// after every selection change. fn runs while the session is locked and
// must not call back into it.
func WithSelectionListener(fn func(count int)) SessionOption {
	return func(s *Session) {
		s.selection.OnChange = fn
	}
}

// NewSession creates a Session over index. The scanner is used to resolve
// clicked elements; sink receives every export.
func NewSession(index tweetexport.TweetIndex, scanner tweetexport.Scanner, sink tweetexport.ExportSink, opts ...SessionOption) *Session {
	s := &Session{
		index:   index,
		scanner: scanner,
		sink:    sink,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns the session's tweet index.
func (s *Session) Index() tweetexport.TweetIndex {
	return s.index
}

// FetchTweets returns the indexed tweets matching criteria, in index order.
func (s *Session) FetchTweets(criteria tweetexport.FilterCriteria) []*tweetexport.Tweet {
	return tweetexport.Filter(tweetexport.Collect(s.index), criteria)
}

// PageTweets returns every indexed tweet, in index order.
func (s *Session) PageTweets() []*tweetexport.Tweet {
	return tweetexport.Collect(s.index)
}

// ExportTweet exports the single tweet with the given ID.
// It returns ENOTFOUND if the tweet is not indexed.
func (s *Session) ExportTweet(ctx context.Context, id string) (*tweetexport.Export, error) {
	t, ok := s.index.Get(id)
	if !ok {
		return nil, tweetexport.Errorf(tweetexport.ENOTFOUND, "tweet %q not found", id)
	}
	return s.ExportTweets(ctx, []*tweetexport.Tweet{t})
}

// ExportTweets builds an export of tweets, in the given order, and delivers it.
func (s *Session) ExportTweets(ctx context.Context, tweets []*tweetexport.Tweet) (*tweetexport.Export, error) {
	exp, err := tweetexport.BuildExport(tweets, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sink.Deliver(ctx, exp); err != nil {
		if tweetexport.ErrorCode(err) == tweetexport.EEXPORT {
			return nil, err
		}
		return nil, tweetexport.Errorf(tweetexport.EEXPORT, "failed to deliver %s: %v", exp.Filename, err)
	}
	return exp, nil
}

// StartSelection begins a bulk-selection session with an empty selection.
func (s *Session) StartSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Start()
}

// StopSelection ends the bulk-selection session and clears the selection.
func (s *Session) StopSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Stop()
}

// Selecting reports whether a bulk-selection session is active.
func (s *Session) Selecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Selecting()
}

// SelectedIDs returns the selected IDs in selection order.
func (s *Session) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// Click handles a click routed from the host page. While selecting, a click
// on a candidate scans it, toggles the ID of the clicked (outermost)
// candidate and suppresses the default action. Other clicks are ignored.
// It reports whether the click toggled a tweet.
func (s *Session) Click(ctx context.Context, ev *tweetexport.ClickEvent) (bool, error) {
	if ev.Candidate == "" || !s.Selecting() {
		return false, nil
	}

	result, err := s.scanner.Scan(ctx, ev.Markup())
	if err != nil {
		return false, err
	}
	if result.Root == "" {
		if len(result.Failures) > 0 {
			return false, result.Failures[0]
		}
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selection.Selecting() {
		return false, nil
	}
	ev.PreventDefault()
	s.selection.Toggle(result.Root)
	return true, nil
}

// SelectAll adds every indexed ID to the selection. It has no effect
// outside a bulk-selection session.
func (s *Session) SelectAll() {
	ids := make([]string, 0, s.index.Len())
	for t := range s.index.All() {
		ids = append(ids, t.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Add(ids...)
}

// ExportSelected exports the selected tweets in selection order and ends
// the session. It returns a nil export when nothing is selected. If the
// export fails the selection is left untouched.
func (s *Session) ExportSelected(ctx context.Context) (*tweetexport.Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selection.Count() == 0 {
		return nil, nil
	}

	ids := s.selection.IDs()
	tweets := make([]*tweetexport.Tweet, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.index.Get(id); ok {
			tweets = append(tweets, t)
		}
	}

	exp, err := s.ExportTweets(ctx, tweets)
	if err != nil {
		return nil, err
	}
	s.selection.Stop()
	return exp, nil
}
