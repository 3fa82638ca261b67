package mock

import (
	"context"
	"time"

	"github.com/fwojciec/tweetexport"
)

var _ tweetexport.Scanner = (*Scanner)(nil)

// Scanner is a mock implementation of tweetexport.Scanner.
type Scanner struct {
	ScanFn func(ctx context.Context, root string) (*tweetexport.ScanResult, error)
}

func (s *Scanner) Scan(ctx context.Context, root string) (*tweetexport.ScanResult, error) {
	return s.ScanFn(ctx, root)
}

var _ tweetexport.IDGenerator = (*IDGenerator)(nil)

// IDGenerator is a mock implementation of tweetexport.IDGenerator.
type IDGenerator struct {
	GenerateIDFn func(text string, now time.Time) string
}

func (g *IDGenerator) GenerateID(text string, now time.Time) string {
	return g.GenerateIDFn(text, now)
}
