package goquery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy resolves one field from a candidate element. It reports false
// when it finds nothing usable, letting the next strategy run.
type Strategy[T any] func(sel *goquery.Selection) (T, bool)

// First runs strategies in order and returns the first result that succeeds.
func First[T any](sel *goquery.Selection, strategies ...Strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(sel); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// TextOf returns a strategy yielding the trimmed text of the first
// descendant matching selector.
func TextOf(selector string) Strategy[string] {
	return func(sel *goquery.Selection) (string, bool) {
		match := sel.Find(selector).First()
		if match.Length() == 0 {
			return "", false
		}
		text := strings.TrimSpace(match.Text())
		return text, text != ""
	}
}

// AttrOf returns a strategy yielding attribute attr of the first descendant
// matching selector.
func AttrOf(selector, attr string) Strategy[string] {
	return func(sel *goquery.Selection) (string, bool) {
		v, ok := sel.Find(selector).First().Attr(attr)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
}

// TextsOf builds one TextOf strategy per selector.
func TextsOf(selectors ...string) []Strategy[string] {
	out := make([]Strategy[string], 0, len(selectors))
	for _, s := range selectors {
		out = append(out, TextOf(s))
	}
	return out
}

var statusIDPattern = regexp.MustCompile(`/status/(\d+)`)

// StatusID finds the numeric identifier embedded in the first status link
// that carries one.
func StatusID(sel *goquery.Selection) (string, bool) {
	var id string
	sel.Find(StatusLink).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := statusIDPattern.FindStringSubmatch(href); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	return id, id != ""
}

// AttrID reads the tweet ID attribute from the element itself or its
// closest ancestor carrying one.
func AttrID(sel *goquery.Selection) (string, bool) {
	v, ok := sel.Closest(TweetIDSelector).Attr(TweetIDAttr)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// HandleLink finds the author link whose text is an @handle.
func HandleLink(sel *goquery.Selection) (string, bool) {
	var handle string
	sel.Find(userName + ` a`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if strings.HasPrefix(text, "@") && len(text) > 1 {
			handle = text
			return false
		}
		return true
	})
	return handle, handle != ""
}

// NormalizeUsername returns name with exactly one leading "@".
// Empty input stays empty.
func NormalizeUsername(name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "@")
	if name == "" {
		return ""
	}
	return "@" + name
}

// Counter returns a strategy that locates the first descendant matching
// selector and parses its count. Finding the element is success even when
// its text holds no digits.
func Counter(selector string) Strategy[int] {
	return func(sel *goquery.Selection) (int, bool) {
		match := sel.Find(selector).First()
		if match.Length() == 0 {
			return 0, false
		}
		text := strings.TrimSpace(match.Text())
		if text == "" {
			text, _ = match.Attr("aria-label")
		}
		return ParseCount(text), true
	}
}

// Counters builds one Counter strategy per selector.
func Counters(selectors ...string) []Strategy[int] {
	out := make([]Strategy[int], 0, len(selectors))
	for _, s := range selectors {
		out = append(out, Counter(s))
	}
	return out
}

var countPattern = regexp.MustCompile(`\d[\d,]*`)

// ParseCount extracts the first run of digits (with thousands separators)
// from text. Abbreviated forms are not expanded: "1.2K" parses as 1.
// Text without digits parses as 0.
func ParseCount(text string) int {
	run := countPattern.FindString(text)
	if run == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(run, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
