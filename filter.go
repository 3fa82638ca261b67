package tweetexport

import (
	"strings"
	"time"
)

// DateLayout is the layout of a calendar-date filter bound.
const DateLayout = "2006-01-02"

// FilterCriteria selects tweets from an index snapshot.
type FilterCriteria struct {
	// DateFrom and DateTo are inclusive bounds, either calendar dates
	// (2006-01-02) compared by UTC day or RFC 3339 times compared to the
	// second. Empty means unbounded.
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`

	IncludeReplies  bool `json:"includeReplies"`
	IncludeRetweets bool `json:"includeRetweets"`

	// IncludeMedia does not filter; it only controls media extraction.
	IncludeMedia bool `json:"includeMedia"`
}

// Validate returns an error if a date bound cannot be parsed.
func (c *FilterCriteria) Validate() error {
	if c.DateFrom != "" {
		if _, ok := parseBound(c.DateFrom); !ok {
			return Errorf(EINVALID, "invalid dateFrom %q: want YYYY-MM-DD or RFC 3339", c.DateFrom)
		}
	}
	if c.DateTo != "" {
		if _, ok := parseBound(c.DateTo); !ok {
			return Errorf(EINVALID, "invalid dateTo %q: want YYYY-MM-DD or RFC 3339", c.DateTo)
		}
	}
	return nil
}

// Filter returns the tweets that satisfy criteria, in their original order.
//
// Tweets whose timestamp cannot be parsed pass the date filter. Bounds that
// cannot be parsed are ignored.
func Filter(tweets []*Tweet, criteria FilterCriteria) []*Tweet {
	from, hasFrom := parseBound(criteria.DateFrom)
	to, hasTo := parseBound(criteria.DateTo)

	result := make([]*Tweet, 0, len(tweets))
	for _, t := range tweets {
		if (hasFrom || hasTo) && !withinDates(t, from, to, hasFrom, hasTo) {
			continue
		}
		if !criteria.IncludeReplies && IsReply(t) {
			continue
		}
		if !criteria.IncludeRetweets && IsRetweet(t) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// IsReply reports whether the tweet text looks like a reply: it starts with
// "@" or contains "Replying to". Ordinary text matching either pattern is
// misclassified; the heuristic is kept as is.
func IsReply(t *Tweet) bool {
	return strings.HasPrefix(t.Text, "@") || strings.Contains(t.Text, "Replying to")
}

// IsRetweet reports whether the tweet text looks like a retweet: it contains
// "RT @" or starts with "Retweeted". Like IsReply, this is a literal
// substring match.
func IsRetweet(t *Tweet) bool {
	return strings.Contains(t.Text, "RT @") || strings.HasPrefix(t.Text, "Retweeted")
}

// bound is a parsed date bound.
type bound struct {
	t       time.Time
	dayOnly bool
}

func parseBound(s string) (bound, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return bound{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return bound{t: t, dayOnly: true}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return bound{t: t.Truncate(time.Second)}, true
	}
	return bound{}, false
}

func withinDates(t *Tweet, from, to bound, hasFrom, hasTo bool) bool {
	ts, err := time.Parse(time.RFC3339, t.Timestamp)
	if err != nil {
		return true
	}
	if hasFrom && compareToBound(ts, from) < 0 {
		return false
	}
	if hasTo && compareToBound(ts, to) > 0 {
		return false
	}
	return true
}

// compareToBound compares ts to b at the bound's granularity.
func compareToBound(ts time.Time, b bound) int {
	ts = ts.UTC()
	if b.dayOnly {
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		return day.Compare(b.t)
	}
	return ts.Truncate(time.Second).Compare(b.t)
}
