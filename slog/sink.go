package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/tweetexport"
)

// Ensure LoggingSink implements tweetexport.ExportSink.
var _ tweetexport.ExportSink = (*LoggingSink)(nil)

// LoggingSink wraps an ExportSink with logging.
type LoggingSink struct {
	next   tweetexport.ExportSink
	name   string
	logger *slog.Logger
}

// NewLoggingSink creates a new LoggingSink. name identifies the wrapped
// sink in log records.
func NewLoggingSink(next tweetexport.ExportSink, name string, logger *slog.Logger) *LoggingSink {
	return &LoggingSink{next: next, name: name, logger: logger}
}

// Deliver delegates to the wrapped sink and logs the export.
func (s *LoggingSink) Deliver(ctx context.Context, export *tweetexport.Export) (err error) {
	defer func(begin time.Time) {
		tweets := 0
		if export.Envelope != nil {
			tweets = export.Envelope.TweetCount
		}
		s.logger.Info("export",
			"sink", s.name,
			"filename", export.Filename,
			"tweets", tweets,
			"bytes", len(export.Payload),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Deliver(ctx, export)
}
