package mock

import (
	"context"

	"github.com/fwojciec/tweetexport"
)

var _ tweetexport.ExportArchive = (*ExportArchive)(nil)

// ExportArchive is a mock implementation of tweetexport.ExportArchive.
type ExportArchive struct {
	DeliverFn          func(ctx context.Context, export *tweetexport.Export) error
	FindExportsFn      func(ctx context.Context, filter tweetexport.ExportFilter) ([]*tweetexport.ArchivedExport, error)
	FindExportTweetsFn func(ctx context.Context, exportID string) ([]*tweetexport.Tweet, error)
	DeleteExportFn     func(ctx context.Context, id string) error
}

func (a *ExportArchive) Deliver(ctx context.Context, export *tweetexport.Export) error {
	return a.DeliverFn(ctx, export)
}

func (a *ExportArchive) FindExports(ctx context.Context, filter tweetexport.ExportFilter) ([]*tweetexport.ArchivedExport, error) {
	return a.FindExportsFn(ctx, filter)
}

func (a *ExportArchive) FindExportTweets(ctx context.Context, exportID string) ([]*tweetexport.Tweet, error) {
	return a.FindExportTweetsFn(ctx, exportID)
}

func (a *ExportArchive) DeleteExport(ctx context.Context, id string) error {
	return a.DeleteExportFn(ctx, id)
}
