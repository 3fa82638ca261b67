// Package scan wires scanning, indexing, selection and export into the
// operations a host page drives.
package scan

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/bloom"
	"github.com/fwojciec/tweetexport/xxhash"
)

// Queue defaults.
const (
	DefaultQueueSize         = 64
	DefaultExpectedFragments = 100000
	DefaultFragmentFalseRate = 0.001
)

// Queue is the ingestion queue between a page observer and the scanner.
// Observers enqueue batches from any goroutine; a single Run loop drains
// them, so every batch is scanned to completion before the next starts.
//
// A batch whose markup is byte-identical to one already scanned is dropped.
// Markup is recorded only once it has been scanned without error, so a
// failed batch can be retried.
type Queue struct {
	scanner tweetexport.Scanner
	batches chan tweetexport.Batch
	seen    *bloom.Filter
	logger  *slog.Logger

	closeOnce sync.Once
	done      chan struct{}

	// OnScan, if set, is called by Run after each batch is scanned.
	OnScan func(batch tweetexport.Batch, result *tweetexport.ScanResult)

	// OnDrop, if set, is called by Run for each repeated batch it drops.
	OnDrop func(batch tweetexport.Batch)
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueSize sets the number of batches buffered before Enqueue blocks.
func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		q.batches = make(chan tweetexport.Batch, n)
	}
}

// WithFragmentFilter sets the filter used to drop repeated fragments.
func WithFragmentFilter(f *bloom.Filter) QueueOption {
	return func(q *Queue) {
		q.seen = f
	}
}

// WithQueueLogger sets the logger for batch-level events.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// NewQueue creates a Queue feeding scanner.
func NewQueue(scanner tweetexport.Scanner, opts ...QueueOption) *Queue {
	q := &Queue{
		scanner: scanner,
		batches: make(chan tweetexport.Batch, DefaultQueueSize),
		seen:    bloom.NewFilter(DefaultExpectedFragments, DefaultFragmentFalseRate),
		logger:  slog.New(slog.DiscardHandler),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue adds a batch, blocking while the queue is full. It fails if the
// queue is closed or ctx ends first.
func (q *Queue) Enqueue(ctx context.Context, batch tweetexport.Batch) error {
	select {
	case <-q.done:
		return tweetexport.Errorf(tweetexport.ECONFLICT, "queue closed")
	default:
	}

	select {
	case q.batches <- batch:
		return nil
	case <-q.done:
		return tweetexport.Errorf(tweetexport.ECONFLICT, "queue closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting batches. Run returns once the batches already
// queued are drained. Close is safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Run scans queued batches one at a time until the queue is closed and
// drained, or ctx ends.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case batch := <-q.batches:
			q.scan(ctx, batch)
		case <-q.done:
			for {
				select {
				case batch := <-q.batches:
					q.scan(ctx, batch)
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue) scan(ctx context.Context, batch tweetexport.Batch) {
	markup := batch.Markup()
	fp := xxhash.Fingerprint(markup)
	if q.seen.Test(fp) {
		q.logger.Debug("drop repeated batch", "kind", batch.Kind, "bytes", len(batch.HTML))
		if q.OnDrop != nil {
			q.OnDrop(batch)
		}
		return
	}

	result, err := q.scanner.Scan(ctx, markup)
	if err != nil {
		q.logger.Error("scan batch", "kind", batch.Kind, "bytes", len(batch.HTML), "err", err)
		return
	}
	q.seen.Add(fp)
	if q.OnScan != nil {
		q.OnScan(batch, result)
	}
}
