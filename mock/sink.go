package mock

import (
	"context"

	"github.com/fwojciec/tweetexport"
)

var _ tweetexport.ExportSink = (*ExportSink)(nil)

// ExportSink is a mock implementation of tweetexport.ExportSink.
type ExportSink struct {
	DeliverFn func(ctx context.Context, export *tweetexport.Export) error
}

func (s *ExportSink) Deliver(ctx context.Context, export *tweetexport.Export) error {
	return s.DeliverFn(ctx, export)
}
