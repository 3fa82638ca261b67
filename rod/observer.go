package rod

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/goquery"
	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// DefaultSettleDelay is how long a page is given to populate its timeline
// after the load event before the cold-start snapshot is taken.
const DefaultSettleDelay = time.Second

// Names of the page functions bridging into Go.
const (
	mutationBinding = "tweetexportMutation"
	clickBinding    = "tweetexportClick"
)

// installScript starts a MutationObserver posting the outer HTML of every
// inserted element, and a capturing click listener that, while selection is
// on, suppresses clicks inside a candidate and posts the candidate's HTML.
// Each post carries the tweet ID attribute of the element's nearest ancestor,
// which the element's own markup does not include.
const installScript = `(candidates, idAttr, mutationFn, clickFn) => {
  if (window.__tweetexportObserver) return;
  const ancestorID = (el) => {
    const holder = el.parentElement && el.parentElement.closest('[' + idAttr + ']');
    return holder ? holder.getAttribute(idAttr) || '' : '';
  };
  const send = (name, el) => {
    const fn = window[name];
    if (fn) fn({html: el.outerHTML, ancestorID: ancestorID(el)}).catch(() => {});
  };
  const observer = new MutationObserver((records) => {
    for (const record of records) {
      for (const node of record.addedNodes) {
        if (node.nodeType === Node.ELEMENT_NODE) send(mutationFn, node);
      }
    }
  });
  observer.observe(document.body, { childList: true, subtree: true });
  window.__tweetexportObserver = observer;
  document.addEventListener('click', (e) => {
    if (!window.__tweetexportSelecting) return;
    const el = e.target.closest(candidates);
    if (!el) return;
    e.preventDefault();
    e.stopPropagation();
    send(clickFn, el);
  }, true);
}`

const selectingScript = `(on) => { window.__tweetexportSelecting = on; }`

// Observer streams the markup of a live page as scanner batches: one
// cold-start snapshot once the page has settled, then one batch per
// inserted element. It also routes clicks made in selection mode.
type Observer struct {
	page    *rod.Page
	settle  time.Duration
	logger  *slog.Logger
	onClick func(ctx context.Context, ev *tweetexport.ClickEvent)
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithSettleDelay sets the wait before the cold-start snapshot.
func WithSettleDelay(d time.Duration) ObserverOption {
	return func(o *Observer) {
		o.settle = d
	}
}

// WithObserverLogger sets the logger for bridge failures.
func WithObserverLogger(logger *slog.Logger) ObserverOption {
	return func(o *Observer) {
		o.logger = logger
	}
}

// WithClickHandler sets the function receiving clicks made while selection
// mode is on. The page has already suppressed their default action.
func WithClickHandler(fn func(ctx context.Context, ev *tweetexport.ClickEvent)) ObserverOption {
	return func(o *Observer) {
		o.onClick = fn
	}
}

// NewObserver creates an Observer for a loaded page.
func NewObserver(page *rod.Page, opts ...ObserverOption) *Observer {
	o := &Observer{
		page:   page,
		settle: DefaultSettleDelay,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run installs the page observer, waits for the page to settle, emits the
// cold-start snapshot and then emits mutation batches until ctx ends.
// emit is typically scan.Queue.Enqueue.
func (o *Observer) Run(ctx context.Context, emit func(context.Context, tweetexport.Batch) error) error {
	stopMutations, err := o.page.Expose(mutationBinding, func(j gson.JSON) (interface{}, error) {
		batch := tweetexport.Batch{
			Kind:       tweetexport.BatchMutation,
			HTML:       j.Get("html").Str(),
			AncestorID: j.Get("ancestorID").Str(),
		}
		if err := emit(ctx, batch); err != nil {
			o.logger.Debug("drop mutation batch", "err", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = stopMutations() }()

	stopClicks, err := o.page.Expose(clickBinding, func(j gson.JSON) (interface{}, error) {
		if o.onClick != nil {
			ev := &tweetexport.ClickEvent{
				Candidate:  j.Get("html").Str(),
				AncestorID: j.Get("ancestorID").Str(),
			}
			ev.PreventDefault()
			o.onClick(ctx, ev)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = stopClicks() }()

	candidates := strings.Join(goquery.CandidateSelectors, ", ")
	if _, err := o.page.Eval(installScript, candidates, tweetexport.TweetIDAttribute, mutationBinding, clickBinding); err != nil {
		return err
	}

	if err := sleep(ctx, o.settle); err != nil {
		return nil
	}

	html, err := o.page.HTML()
	if err != nil {
		return err
	}
	if err := emit(ctx, tweetexport.Batch{Kind: tweetexport.BatchColdStart, HTML: html}); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// SetSelecting turns selection mode on or off in the page.
func (o *Observer) SetSelecting(on bool) error {
	_, err := o.page.Eval(selectingScript, on)
	return err
}
