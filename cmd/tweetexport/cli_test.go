package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/tweetexport"
	main "github.com/fwojciec/tweetexport/cmd/tweetexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeline is a saved timeline with an original tweet, a reply and a retweet.
const timeline = `<html><body><main>
<article data-testid="tweet" role="article">
  <div data-testid="User-Name"><a href="/gopher"><span>Gopher</span></a><a href="/gopher">@gopher</a></div>
  <a href="/gopher/status/100"><time datetime="2024-01-10T09:00:00.000Z">Jan 10</time></a>
  <div data-testid="tweetText">Go 1.22 is out</div>
  <div data-testid="like">12</div>
</article>
<article data-testid="tweet" role="article">
  <div data-testid="User-Name"><a href="/rustacean"><span>Crab</span></a><a href="/rustacean">@rustacean</a></div>
  <a href="/rustacean/status/200"><time datetime="2024-01-12T09:00:00.000Z">Jan 12</time></a>
  <div data-testid="tweetText">@gopher congrats</div>
</article>
<article data-testid="tweet" role="article">
  <div data-testid="User-Name"><a href="/fan"><span>Fan</span></a><a href="/fan">@fan</a></div>
  <a href="/fan/status/300"><time datetime="2024-01-14T09:00:00.000Z">Jan 14</time></a>
  <div data-testid="tweetText">RT @gopher Go 1.22 is out</div>
</article>
</main></body></html>`

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func writeTimeline(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.html")
	require.NoError(t, os.WriteFile(path, []byte(timeline), 0644))
	return path
}

func newDeps(stdout, stderr io.Writer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdin:    strings.NewReader(""),
		Stdout:   stdout,
		Stderr:   stderr,
		Logger:   slog.New(slog.DiscardHandler),
		Settings: tweetexport.DefaultSettings(),
		Now:      func() time.Time { return fixedNow },
	}
}

func sources(paths ...string) main.SourceFlags {
	return main.SourceFlags{Sources: paths, IDStrategy: "hash", BaseURL: "https://twitter.com"}
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// Use kong.Exit to prevent os.Exit from being called during tests
	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"scan", "export", "watch", "history"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_ParsesExportFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}), kong.Writers(io.Discard, io.Discard))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"export", "a.html", "b.html", "--from", "2024-01-01", "--no-replies", "--retweets", "--archive", "--id-strategy", "xxhash"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html"}, cli.Export.Sources)
	assert.Equal(t, "2024-01-01", cli.Export.From)
	assert.True(t, cli.Export.NoReplies)
	assert.True(t, cli.Export.Retweets)
	assert.True(t, cli.Export.Archive)
	assert.Equal(t, "xxhash", cli.Export.IDStrategy)
}

func TestCLI_RejectsConflictingFilterFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}), kong.Writers(io.Discard, io.Discard))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"scan", "a.html", "--replies", "--no-replies"})

	require.Error(t, err)
}

func TestFilterFlags_Criteria(t *testing.T) {
	t.Parallel()

	settings := tweetexport.DefaultSettings()

	tests := []struct {
		name  string
		flags main.FilterFlags
		want  tweetexport.FilterCriteria
	}{
		{
			name:  "settings when no flags",
			flags: main.FilterFlags{},
			want:  tweetexport.FilterCriteria{IncludeReplies: true, IncludeRetweets: false, IncludeMedia: true},
		},
		{
			name:  "flags override settings",
			flags: main.FilterFlags{NoReplies: true, Retweets: true, From: "2024-01-01", To: "2024-01-31"},
			want:  tweetexport.FilterCriteria{DateFrom: "2024-01-01", DateTo: "2024-01-31", IncludeReplies: false, IncludeRetweets: true, IncludeMedia: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.flags.Criteria(settings)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid date is rejected", func(t *testing.T) {
		t.Parallel()

		flags := main.FilterFlags{From: "last tuesday"}

		_, err := flags.Criteria(settings)

		assert.Equal(t, tweetexport.EINVALID, tweetexport.ErrorCode(err))
	})
}

func TestFilterFlags_Active(t *testing.T) {
	t.Parallel()

	assert.False(t, (&main.FilterFlags{}).Active())
	assert.True(t, (&main.FilterFlags{To: "2024-01-01"}).Active())
	assert.True(t, (&main.FilterFlags{NoRetweets: true}).Active())
}
