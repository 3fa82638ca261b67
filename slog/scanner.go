package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/tweetexport"
)

// Ensure LoggingScanner implements tweetexport.Scanner.
var _ tweetexport.Scanner = (*LoggingScanner)(nil)

// LoggingScanner wraps a Scanner with debug logging. Live pages produce a
// batch per mutation, so scans are logged at DEBUG.
type LoggingScanner struct {
	next   tweetexport.Scanner
	logger *slog.Logger
}

// NewLoggingScanner creates a new LoggingScanner.
func NewLoggingScanner(next tweetexport.Scanner, logger *slog.Logger) *LoggingScanner {
	return &LoggingScanner{next: next, logger: logger}
}

// Scan delegates to the wrapped scanner and logs the batch outcome.
func (s *LoggingScanner) Scan(ctx context.Context, root string) (result *tweetexport.ScanResult, err error) {
	defer func(begin time.Time) {
		var candidates, upserted, failed int
		if result != nil {
			candidates, upserted, failed = result.Candidates, result.Upserted, result.Failed
		}
		s.logger.Debug("scan",
			"bytes", len(root),
			"candidates", candidates,
			"upserted", upserted,
			"failed", failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Scan(ctx, root)
}
