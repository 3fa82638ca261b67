// Package goquery extracts tweet records from timeline markup using goquery
// selections: ordered per-field strategies and a candidate scanner.
package goquery

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/tweetexport"
)

// DefaultBaseURL is the origin relative status links are resolved against.
const DefaultBaseURL = "https://twitter.com"

// MaxFallbackText is the number of characters kept when a tweet has no
// dedicated text container and the whole element's text is used instead.
const MaxFallbackText = 280

// Extractor builds a tweet record from one candidate element. Each field is
// resolved independently by an ordered list of strategies.
type Extractor struct {
	base           *url.URL
	idGenerator    tweetexport.IDGenerator
	now            func() time.Time
	includeMedia   bool
	includeMetrics bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*extractorConfig)

type extractorConfig struct {
	baseURL        string
	idGenerator    tweetexport.IDGenerator
	now            func() time.Time
	includeMedia   bool
	includeMetrics bool
}

// WithBaseURL sets the origin used to build absolute tweet URLs.
func WithBaseURL(u string) ExtractorOption {
	return func(c *extractorConfig) {
		c.baseURL = u
	}
}

// WithIDGenerator sets the synthetic ID strategy.
func WithIDGenerator(g tweetexport.IDGenerator) ExtractorOption {
	return func(c *extractorConfig) {
		c.idGenerator = g
	}
}

// WithClock sets the time source used for synthetic IDs and missing timestamps.
func WithClock(now func() time.Time) ExtractorOption {
	return func(c *extractorConfig) {
		c.now = now
	}
}

// WithMedia controls whether attached media is extracted.
func WithMedia(include bool) ExtractorOption {
	return func(c *extractorConfig) {
		c.includeMedia = include
	}
}

// WithMetrics controls whether engagement counts are extracted.
func WithMetrics(include bool) ExtractorOption {
	return func(c *extractorConfig) {
		c.includeMetrics = include
	}
}

// NewExtractor creates an Extractor. By default it resolves links against
// DefaultBaseURL, uses tweetexport.HashIDGenerator, and extracts media and
// metrics.
func NewExtractor(opts ...ExtractorOption) (*Extractor, error) {
	cfg := extractorConfig{
		baseURL:        DefaultBaseURL,
		idGenerator:    tweetexport.HashIDGenerator{},
		now:            time.Now,
		includeMedia:   true,
		includeMetrics: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	base, err := url.Parse(cfg.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, tweetexport.Errorf(tweetexport.EINVALID, "invalid base URL: %q", cfg.baseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	return &Extractor{
		base:           base,
		idGenerator:    cfg.idGenerator,
		now:            cfg.now,
		includeMedia:   cfg.includeMedia,
		includeMetrics: cfg.includeMetrics,
	}, nil
}

// Extract builds a record from the candidate element sel.
//
// A synthetic ID is generated whenever no structural ID is found, so the
// EEXTRACT error for a missing ID is only reachable with an IDGenerator
// that returns an empty string.
func (e *Extractor) Extract(sel *goquery.Selection) (*tweetexport.Tweet, error) {
	now := e.now()

	t := &tweetexport.Tweet{
		ID:        e.extractID(sel, now),
		Text:      e.extractText(sel),
		Author:    e.extractAuthor(sel),
		Timestamp: e.extractTimestamp(sel, now),
		Media:     tweetexport.NewMedia(),
	}
	if t.ID == "" {
		return nil, tweetexport.Errorf(tweetexport.EEXTRACT, "no tweet ID could be determined")
	}
	if e.includeMetrics {
		t.Metrics = e.extractMetrics(sel)
	}
	if e.includeMedia {
		t.Media = e.extractMedia(sel)
	}
	t.URL = e.extractURL(sel, t.ID, t.Author.Username)
	return t, nil
}

func (e *Extractor) extractID(sel *goquery.Selection, now time.Time) string {
	if id, ok := First[string](sel, StatusID, AttrID); ok {
		return id
	}
	return e.idGenerator.GenerateID(sel.Text(), now)
}

func (e *Extractor) extractText(sel *goquery.Selection) string {
	if text, ok := First(sel, TextsOf(textSelectors...)...); ok {
		return text
	}
	return truncate(strings.TrimSpace(sel.Text()), MaxFallbackText)
}

func (e *Extractor) extractAuthor(sel *goquery.Selection) tweetexport.Author {
	var a tweetexport.Author
	a.Name, _ = First(sel, TextsOf(nameSelectors...)...)

	username, _ := First(sel, append([]Strategy[string]{HandleLink}, TextsOf(usernameSelectors...)...)...)
	a.Username = NormalizeUsername(username)

	strategies := make([]Strategy[string], 0, len(profileImageSelectors))
	for _, s := range profileImageSelectors {
		strategies = append(strategies, AttrOf(s, "src"))
	}
	if src, ok := First(sel, strategies...); ok {
		a.ProfileImage = e.resolve(src)
	}
	return a
}

func (e *Extractor) extractTimestamp(sel *goquery.Selection, now time.Time) string {
	for _, s := range timeSelectors {
		match := sel.Find(s).First()
		if match.Length() == 0 {
			continue
		}
		if dt, ok := match.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return normalizeTimestamp(strings.TrimSpace(dt))
		}
		if text := strings.TrimSpace(match.Text()); text != "" {
			return text
		}
	}
	return tweetexport.FormatTimestamp(now)
}

func (e *Extractor) extractMetrics(sel *goquery.Selection) tweetexport.Metrics {
	var m tweetexport.Metrics
	m.Replies, _ = First(sel, Counters(replySelectors...)...)
	m.Retweets, _ = First(sel, Counters(retweetSelectors...)...)
	m.Likes, _ = First(sel, Counters(likeSelectors...)...)
	m.Views, _ = First(sel, Counters(viewSelectors...)...)
	return m
}

func (e *Extractor) extractMedia(sel *goquery.Selection) tweetexport.Media {
	media := tweetexport.NewMedia()

	sel.Find(MediaImage).Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if !strings.Contains(src, "media") || strings.Contains(src, "profile") {
			return
		}
		alt, _ := img.Attr("alt")
		media.Images = append(media.Images, tweetexport.Image{URL: e.resolve(src), Alt: alt})
	})

	sel.Find(MediaVideo).Each(func(_ int, video *goquery.Selection) {
		src, _ := video.Attr("src")
		if src == "" {
			src, _ = video.Find(VideoSource).First().Attr("src")
		}
		poster, _ := video.Attr("poster")
		media.Videos = append(media.Videos, tweetexport.Video{URL: e.resolve(src), Poster: e.resolve(poster)})
	})

	return media
}

func (e *Extractor) extractURL(sel *goquery.Selection, id, username string) string {
	if href, ok := AttrOf(StatusLink, "href")(sel); ok {
		return e.resolve(href)
	}
	if id != "" && username != "" {
		return e.base.String() + "/" + strings.TrimPrefix(username, "@") + "/status/" + id
	}
	return ""
}

// resolve makes href absolute against the base URL. Empty and unparsable
// references are returned unchanged.
func (e *Extractor) resolve(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.base.ResolveReference(ref).String()
}

func normalizeTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return tweetexport.FormatTimestamp(t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
