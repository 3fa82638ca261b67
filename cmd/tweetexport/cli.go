package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/rod"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Settings *tweetexport.Settings
	Now      func() time.Time

	// Fetcher loads URLs without running scripts. Renderer loads them in
	// Chrome and is only wired for commands that ask for it.
	Fetcher  tweetexport.Fetcher
	Renderer tweetexport.Fetcher

	// Archive is only wired for commands that read or write history.
	Archive tweetexport.ExportArchive

	// Browser is only wired for the watch command.
	Browser *rod.Browser
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Debug  bool   `help:"Enable debug logging"`
	Config string `type:"path" env:"TWEETEXPORT_CONFIG" help:"Settings file (YAML or JSON)"`
	DB     string `name:"db" type:"path" env:"TWEETEXPORT_DB" help:"Export archive database"`

	Scan    ScanCmd    `cmd:"" help:"Scan saved or live timeline pages and print the tweets found"`
	Export  ExportCmd  `cmd:"" help:"Scan timeline pages and export tweets to a JSON file"`
	Watch   WatchCmd   `cmd:"" help:"Watch a live timeline in Chrome and export tweets on demand"`
	History HistoryCmd `cmd:"" help:"List archived exports"`
}

// FilterFlags are the filter options shared by commands that select tweets.
// Unset flags fall back to the settings file.
type FilterFlags struct {
	From       string `help:"Earliest tweet date (YYYY-MM-DD or RFC 3339)"`
	To         string `help:"Latest tweet date (YYYY-MM-DD or RFC 3339)"`
	Replies    bool   `xor:"replies" help:"Include replies"`
	NoReplies  bool   `xor:"replies" help:"Exclude replies"`
	Retweets   bool   `xor:"retweets" help:"Include retweets"`
	NoRetweets bool   `xor:"retweets" help:"Exclude retweets"`
}

// Active reports whether any filter flag was given.
func (f *FilterFlags) Active() bool {
	return f.From != "" || f.To != "" || f.Replies || f.NoReplies || f.Retweets || f.NoRetweets
}

// Criteria returns the filter criteria from settings overridden by the flags.
func (f *FilterFlags) Criteria(settings *tweetexport.Settings) (tweetexport.FilterCriteria, error) {
	c := settings.Criteria(f.From, f.To)
	switch {
	case f.Replies:
		c.IncludeReplies = true
	case f.NoReplies:
		c.IncludeReplies = false
	}
	switch {
	case f.Retweets:
		c.IncludeRetweets = true
	case f.NoRetweets:
		c.IncludeRetweets = false
	}
	if err := c.Validate(); err != nil {
		return tweetexport.FilterCriteria{}, err
	}
	return c, nil
}

// SourceFlags are the options shared by commands that scan pages.
type SourceFlags struct {
	Sources    []string `arg:"" name:"source" help:"HTML files, URLs, or - for stdin"`
	Render     bool     `short:"r" help:"Render URLs in Chrome before scanning"`
	IDStrategy string   `name:"id-strategy" enum:"hash,xxhash" default:"hash" help:"Synthetic ID strategy for tweets without a status link (hash, xxhash)"`
	BaseURL    string   `name:"base-url" default:"https://twitter.com" help:"Base URL for relative links"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	SourceFlags `embed:""`
	FilterFlags `embed:""`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	SourceFlags `embed:""`
	FilterFlags `embed:""`

	ID      string `help:"Export only the tweet with this ID"`
	Out     string `short:"o" type:"path" default:"." help:"Output directory"`
	Archive bool   `short:"a" help:"Record the export in the archive database"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	FilterFlags `embed:""`

	URL         string        `arg:"" help:"Timeline URL"`
	Headed      bool          `help:"Show the browser window"`
	UserDataDir string        `name:"user-data-dir" type:"path" help:"Chrome profile directory (reuse a logged-in session)"`
	Scroll      bool          `help:"Scroll the timeline until maxTweets are indexed"`
	Settle      time.Duration `default:"1s" help:"Wait after page load before the first scan"`
	IDStrategy  string        `name:"id-strategy" enum:"hash,xxhash" default:"hash" help:"Synthetic ID strategy (hash, xxhash)"`
	BaseURL     string        `name:"base-url" default:"https://twitter.com" help:"Base URL for relative links"`
	Out         string        `short:"o" type:"path" default:"." help:"Output directory"`
	Archive     bool          `short:"a" help:"Record exports in the archive database"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Tweet  string `help:"Only exports containing this tweet ID"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of exports to list"`
	Show   string `help:"Print the tweets of the export with this ID"`
	Delete string `help:"Delete the export with this ID"`
	Dir    string `type:"path" help:"Read export files in this directory instead of the archive"`
}
