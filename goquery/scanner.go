package goquery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/tweetexport"
	"golang.org/x/net/html"
)

var _ tweetexport.Scanner = (*Scanner)(nil)

// Scanner finds candidate elements in HTML and upserts the record extracted
// from each one into an index. Cold-start snapshots and inserted subtrees go
// through the same path.
type Scanner struct {
	index     tweetexport.TweetIndex
	extractor *Extractor
	logger    *slog.Logger
}

// NewScanner creates a Scanner writing into index. A nil logger discards
// per-candidate failure logs.
func NewScanner(index tweetexport.TweetIndex, extractor *Extractor, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		index:     index,
		extractor: extractor,
		logger:    logger,
	}
}

// Scan processes every candidate in root. Each candidate is handled to
// completion; a failing candidate is logged and counted and the rest of the
// batch continues.
func (s *Scanner) Scan(ctx context.Context, root string) (*tweetexport.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(root))
	if err != nil {
		return nil, tweetexport.Errorf(tweetexport.EINVALID, "failed to parse HTML: %v", err)
	}

	candidates := Candidates(doc.Selection)
	result := &tweetexport.ScanResult{Candidates: len(candidates)}
	rootIdx := outermost(candidates)

	for i, c := range candidates {
		id, err := s.process(c)
		if err != nil {
			err = tweetexport.Errorf(tweetexport.EEXTRACT, "candidate %d: %s", i, describe(err))
			s.logger.Warn("skip candidate", "index", i, "err", err)
			result.Failed++
			result.Failures = append(result.Failures, err)
			continue
		}
		result.Upserted++
		result.IDs = append(result.IDs, id)
		if i == rootIdx {
			result.Root = id
		}
	}

	return result, nil
}

// process extracts and upserts one candidate. Panics raised while walking
// malformed markup are turned into errors so they stay local to the candidate.
func (s *Scanner) process(c *goquery.Selection) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	t, err := s.extractor.Extract(c)
	if err != nil {
		return "", err
	}
	if err := s.index.Upsert(t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// Candidates returns the distinct element nodes under root matched by any
// of CandidateSelectors, in matcher order then document order.
func Candidates(root *goquery.Selection) []*goquery.Selection {
	seen := make(map[*html.Node]struct{})
	var out []*goquery.Selection

	for _, selector := range CandidateSelectors {
		root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			n := sel.Get(0)
			if n == nil || n.Type != html.ElementNode {
				return
			}
			if _, ok := seen[n]; ok {
				return
			}
			seen[n] = struct{}{}
			out = append(out, sel)
		})
	}

	return out
}

// outermost returns the index of the candidate nearest the document root,
// the first one in match order on a tie, or -1 if there are none.
func outermost(candidates []*goquery.Selection) int {
	best, bestDepth := -1, 0
	for i, c := range candidates {
		d := depth(c.Get(0))
		if best < 0 || d < bestDepth {
			best, bestDepth = i, d
		}
	}
	return best
}

func depth(n *html.Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// describe returns the message of an application error or the text of any
// other error.
func describe(err error) string {
	if tweetexport.ErrorCode(err) == tweetexport.EINTERNAL {
		return err.Error()
	}
	return tweetexport.ErrorMessage(err)
}
