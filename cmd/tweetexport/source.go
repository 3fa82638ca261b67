package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/goquery"
	"github.com/fwojciec/tweetexport/memory"
	"github.com/fwojciec/tweetexport/scan"
	teslog "github.com/fwojciec/tweetexport/slog"
	"github.com/fwojciec/tweetexport/xxhash"
)

// idGenerator returns the synthetic ID strategy named by strategy.
func idGenerator(strategy string) tweetexport.IDGenerator {
	if strategy == "xxhash" {
		return xxhash.IDGenerator{}
	}
	return tweetexport.HashIDGenerator{}
}

// newScanner builds the scanner writing into index, configured from settings.
func newScanner(deps *Dependencies, index tweetexport.TweetIndex, strategy, baseURL string) (tweetexport.Scanner, error) {
	opts := []goquery.ExtractorOption{
		goquery.WithIDGenerator(idGenerator(strategy)),
		goquery.WithMedia(deps.Settings.IncludeMedia),
		goquery.WithMetrics(deps.Settings.IncludeMetrics),
	}
	if baseURL != "" {
		opts = append(opts, goquery.WithBaseURL(baseURL))
	}
	if deps.Now != nil {
		opts = append(opts, goquery.WithClock(deps.Now))
	}

	extractor, err := goquery.NewExtractor(opts...)
	if err != nil {
		return nil, err
	}
	scanner := goquery.NewScanner(index, extractor, deps.Logger)
	return teslog.NewLoggingScanner(scanner, deps.Logger), nil
}

// isURL reports whether source names an http(s) resource.
func isURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// readSource returns the HTML of a file, a URL, or stdin ("-").
func readSource(deps *Dependencies, source string, render bool) (string, error) {
	switch {
	case source == "-":
		b, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	case isURL(source):
		fetcher := deps.Fetcher
		if render {
			fetcher = deps.Renderer
		}
		if fetcher == nil {
			return "", fmt.Errorf("no fetcher configured for %s", source)
		}
		return fetcher.Fetch(deps.Ctx, source)
	default:
		b, err := os.ReadFile(source)
		if err != nil {
			if os.IsNotExist(err) {
				return "", tweetexport.Errorf(tweetexport.ENOTFOUND, "file %s not found", source)
			}
			return "", err
		}
		return string(b), nil
	}
}

// loadSession scans every source, as cold-start snapshots, into a new
// session. Sources are scanned in order so the index keeps their order.
func loadSession(deps *Dependencies, src SourceFlags, sink tweetexport.ExportSink) (*scan.Session, error) {
	index := memory.NewIndex()
	scanner, err := newScanner(deps, index, src.IDStrategy, src.BaseURL)
	if err != nil {
		return nil, err
	}

	for _, source := range src.Sources {
		html, err := readSource(deps, source, src.Render)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		result, err := scanner.Scan(deps.Ctx, html)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		deps.Logger.Info("scanned source",
			slog.String("source", source),
			slog.Int("candidates", result.Candidates),
			slog.Int("upserted", result.Upserted),
			slog.Int("failed", result.Failed),
		)
	}

	var opts []scan.SessionOption
	if deps.Now != nil {
		opts = append(opts, scan.WithNow(deps.Now))
	}
	return scan.NewSession(index, scanner, sink, opts...), nil
}
