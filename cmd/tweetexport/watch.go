package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/bloom"
	"github.com/fwojciec/tweetexport/fs"
	"github.com/fwojciec/tweetexport/memory"
	teprom "github.com/fwojciec/tweetexport/prometheus"
	"github.com/fwojciec/tweetexport/rod"
	"github.com/fwojciec/tweetexport/scan"
	"golang.org/x/sync/errgroup"
)

// Run executes the watch command: the page is observed until the user
// quits, the input ends, or the context is cancelled.
func (c *WatchCmd) Run(deps *Dependencies) error {
	criteria, err := c.Criteria(deps.Settings)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tweetexport.ErrorMessage(err))
		return err
	}

	files, sink, err := exportSink(deps, c.Out, c.Archive)
	if err != nil {
		return err
	}

	index := memory.NewIndex()
	scanner, err := newScanner(deps, index, c.IDStrategy, c.BaseURL)
	if err != nil {
		return err
	}

	var metrics *teprom.Metrics
	if c.MetricsAddr != "" {
		metrics = teprom.NewMetrics(index)
		scanner = teprom.NewMetricsScanner(scanner, metrics)
		sink = teprom.NewMetricsSink(sink, "watch", metrics)
	}

	session := scan.NewSession(index, scanner, sink,
		scan.WithSelectionListener(func(n int) {
			fmt.Fprintf(deps.Stderr, "%d selected\n", n)
		}),
	)

	fragments := bloom.NewFilter(scan.DefaultExpectedFragments, scan.DefaultFragmentFalseRate)
	queue := scan.NewQueue(scanner,
		scan.WithQueueLogger(deps.Logger),
		scan.WithFragmentFilter(fragments),
	)
	queue.OnScan = ColdStartReporter(deps.Stderr, index)
	if metrics != nil {
		queue.OnDrop = metrics.ObserveDrop
		metrics.ObserveFragments(fragments)
	}

	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	page, err := deps.Browser.Open(ctx, c.URL)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		return err
	}
	defer page.Close()

	observer := rod.NewObserver(page,
		rod.WithSettleDelay(c.Settle),
		rod.WithObserverLogger(deps.Logger),
		rod.WithClickHandler(func(ctx context.Context, ev *tweetexport.ClickEvent) {
			if _, err := session.Click(ctx, ev); err != nil {
				deps.Logger.Warn("click", slog.Any("err", err))
			}
		}),
	)

	con := &Console{
		Session:  session,
		Page:     observer,
		Files:    files,
		Criteria: criteria,
		In:       deps.Stdin,
		Out:      deps.Stdout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(queue.Run(gctx))
	})
	g.Go(func() error {
		return ignoreCanceled(observer.Run(gctx, queue.Enqueue))
	})
	if c.Scroll {
		scroller := rod.NewScroller(rod.PageScroll(page), deps.Settings.Delay())
		g.Go(func() error {
			return scroller.Run(gctx, index.Len, deps.Settings.MaxTweets)
		})
	}
	if metrics != nil {
		server := &http.Server{Addr: c.MetricsAddr, Handler: metrics.Handler()}
		g.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return server.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		defer cancel()
		return con.Run(gctx)
	})

	fmt.Fprintf(deps.Stderr, "Watching %s. Type 'help' for commands.\n", c.URL)
	return g.Wait()
}

// ColdStartReporter returns a scan.Queue OnScan hook that reports how many
// tweets the loaded page yielded once its cold-start snapshot is scanned.
func ColdStartReporter(w io.Writer, index tweetexport.TweetIndex) func(tweetexport.Batch, *tweetexport.ScanResult) {
	return func(batch tweetexport.Batch, result *tweetexport.ScanResult) {
		if batch.Kind != tweetexport.BatchColdStart {
			return
		}
		fmt.Fprintf(w, "Page loaded: %d tweets indexed", index.Len())
		if result.Failed > 0 {
			fmt.Fprintf(w, ", %d skipped", result.Failed)
		}
		fmt.Fprintln(w)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SelectionMode switches click selection on and off in the page.
type SelectionMode interface {
	SetSelecting(on bool) error
}

// Console reads line commands driving a watch session.
type Console struct {
	Session  *scan.Session
	Page     SelectionMode // optional
	Files    *fs.Sink
	Criteria tweetexport.FilterCriteria
	In       io.Reader
	Out      io.Writer
}

const consoleHelp = `Commands:
  select       start selecting tweets by clicking them
  all          select every indexed tweet
  stop         stop selecting and clear the selection
  export [ID]  export the selection, one tweet, or the filtered timeline
  count        show indexed and selected counts
  quit         stop watching`

// Run processes commands until quit, end of input, or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle executes one command line and reports whether the session should end.
func (c *Console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "select":
		c.Session.StartSelection()
		c.setSelecting(true)
		fmt.Fprintln(c.Out, "Selection mode on. Click tweets to select them.")
	case "all":
		if !c.Session.Selecting() {
			fmt.Fprintln(c.Out, "Not selecting. Type 'select' first.")
			return false
		}
		c.Session.SelectAll()
	case "stop":
		c.Session.StopSelection()
		c.setSelecting(false)
		fmt.Fprintln(c.Out, "Selection mode off.")
	case "export":
		c.export(ctx, fields[1:])
	case "count":
		fmt.Fprintf(c.Out, "%d indexed, %d selected\n", c.Session.Index().Len(), len(c.Session.SelectedIDs()))
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(c.Out, consoleHelp)
	default:
		fmt.Fprintf(c.Out, "Unknown command %q. Type 'help' for commands.\n", fields[0])
	}
	return false
}

func (c *Console) export(ctx context.Context, args []string) {
	var exp *tweetexport.Export
	var err error

	switch {
	case len(args) > 0:
		exp, err = c.Session.ExportTweet(ctx, args[0])
	case c.Session.Selecting():
		exp, err = c.Session.ExportSelected(ctx)
		if err == nil && exp == nil {
			fmt.Fprintln(c.Out, "Nothing selected.")
			return
		}
		if err == nil {
			c.setSelecting(false)
		}
	default:
		exp, err = c.Session.ExportTweets(ctx, c.Session.FetchTweets(c.Criteria))
	}

	if err != nil {
		fmt.Fprintf(c.Out, "Export failed: %s\n", describe(err))
		return
	}
	fmt.Fprintf(c.Out, "Exported %d tweets to %s\n", exp.Envelope.TweetCount, c.Files.Path(exp.Filename))
}

func (c *Console) setSelecting(on bool) {
	if c.Page == nil {
		return
	}
	if err := c.Page.SetSelecting(on); err != nil {
		fmt.Fprintf(c.Out, "Could not update page: %s\n", err)
	}
}
