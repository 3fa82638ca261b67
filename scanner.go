package tweetexport

import (
	"context"
	"fmt"
	"html"
	"time"
	"unicode/utf16"
)

// BatchKind identifies where a batch of markup came from.
type BatchKind int

const (
	// BatchColdStart is a full-document snapshot taken once the page settles.
	BatchColdStart BatchKind = iota

	// BatchMutation is a subtree inserted into the document after load.
	BatchMutation
)

// String returns the batch kind name used in logs.
func (k BatchKind) String() string {
	switch k {
	case BatchColdStart:
		return "cold-start"
	case BatchMutation:
		return "mutation"
	default:
		return fmt.Sprintf("BatchKind(%d)", int(k))
	}
}

// TweetIDAttribute is the element attribute that carries a tweet ID on the
// tweet element or one of its ancestors.
const TweetIDAttribute = "data-tweet-id"

// Batch is one unit of markup handed to the scanner.
type Batch struct {
	Kind BatchKind
	HTML string

	// AncestorID is the tweet ID attribute of the nearest ancestor of an
	// inserted subtree, if it has one. Cold-start batches leave it empty.
	AncestorID string
}

// Markup returns the HTML to scan, nested under AncestorID when one is set.
func (b Batch) Markup() string {
	return WithAncestorID(b.HTML, b.AncestorID)
}

// WithAncestorID nests fragment in an element carrying the tweet ID
// attribute id, so that an ID lookup on the fragment resolves as it would
// in the page. An empty id leaves fragment unchanged.
func WithAncestorID(fragment, id string) string {
	if id == "" {
		return fragment
	}
	return `<div ` + TweetIDAttribute + `="` + html.EscapeString(id) + `">` + fragment + `</div>`
}

// ScanResult summarizes one scanner pass over a root element.
type ScanResult struct {
	// Candidates is the number of distinct candidate elements found.
	Candidates int

	// Upserted is the number of records written to the index.
	Upserted int

	// Failed is the number of candidates skipped because of an error.
	Failed int

	// IDs lists the IDs of the upserted records in candidate order.
	IDs []string

	// Root is the ID of the outermost candidate, the element a clicked
	// fragment stands for. It is empty when there is no candidate or the
	// outermost one failed.
	Root string

	// Failures holds the per-candidate errors, one per failed candidate.
	Failures []error
}

// Scanner finds candidate elements in markup and upserts the records
// extracted from them into an index.
type Scanner interface {
	// Scan processes every candidate under root, which is the markup of a
	// whole document or of a newly inserted subtree. Scanning the same
	// element again updates its record in place.
	//
	// A failure on one candidate is recorded in the result and does not stop
	// the remaining candidates. An error is returned only when root cannot be
	// parsed or ctx is already done before the batch starts.
	Scan(ctx context.Context, root string) (*ScanResult, error)
}

// IDGenerator synthesizes an ID for an element that carries no structural
// identifier.
//
// Synthetic IDs are not stable: the same item scanned at different times
// receives different IDs, so a later scan of an item without a status link
// may add a second record for it.
type IDGenerator interface {
	GenerateID(text string, now time.Time) string
}

var _ IDGenerator = (*HashIDGenerator)(nil)

// HashIDGenerator derives IDs from a 32-bit rolling hash (h = h*31 + c over
// UTF-16 code units) of the element text, followed by the last six digits of
// the current Unix time in milliseconds.
type HashIDGenerator struct{}

// GenerateID returns the decimal synthetic ID for text at time now.
func (HashIDGenerator) GenerateID(text string, now time.Time) string {
	var h int32
	for _, c := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%d%s", abs, TimeSuffix(now))
}

// TimeSuffix returns the last six digits of the Unix millisecond time,
// zero padded. It is the time component of every synthetic ID.
func TimeSuffix(now time.Time) string {
	return fmt.Sprintf("%06d", now.UnixMilli()%1000000)
}

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML found at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
