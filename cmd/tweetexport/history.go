package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/fs"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.Dir != "" {
		return c.runFiles(deps)
	}

	switch {
	case c.Delete != "":
		if err := deps.Archive.DeleteExport(deps.Ctx, c.Delete); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Deleted export %s\n", c.Delete)
		return nil

	case c.Show != "":
		tweets, err := deps.Archive.FindExportTweets(deps.Ctx, c.Show)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
			return err
		}
		return printTweets(deps, tweets)
	}

	filter := tweetexport.ExportFilter{Limit: c.Limit}
	if c.Tweet != "" {
		filter.TweetID = &c.Tweet
	}

	exports, err := deps.Archive.FindExports(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	if len(exports) == 0 {
		fmt.Fprintln(deps.Stdout, "No exports found. Use 'tweetexport export --archive' to record one.")
		return nil
	}

	for _, e := range exports {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d tweets  %s\n", e.ID, e.ExportDate, e.TweetCount, e.Filename)
	}

	return nil
}

// runFiles lists or shows the export files in c.Dir, newest first.
func (c *HistoryCmd) runFiles(deps *Dependencies) error {
	if c.Delete != "" {
		err := tweetexport.Errorf(tweetexport.EINVALID, "--delete works on the archive only")
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	if c.Show != "" {
		env, err := fs.ReadExport(filepath.Join(c.Dir, filepath.Base(c.Show)))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
			return err
		}
		return printTweets(deps, env.Tweets)
	}

	paths, err := fs.ListExports(c.Dir)
	if err != nil {
		return err
	}
	slices.Reverse(paths)

	var listed int
	for _, path := range paths {
		if c.Limit > 0 && listed == c.Limit {
			break
		}
		env, err := fs.ReadExport(path)
		if err != nil {
			deps.Logger.Warn("skip export file", "path", path, "err", err)
			continue
		}
		if c.Tweet != "" && !slices.ContainsFunc(env.Tweets, func(t *tweetexport.Tweet) bool { return t.ID == c.Tweet }) {
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %d tweets  %s\n", env.ExportDate, env.TweetCount, filepath.Base(path))
		listed++
	}

	if listed == 0 {
		fmt.Fprintf(deps.Stdout, "No exports found in %s.\n", c.Dir)
	}
	return nil
}

func printTweets(deps *Dependencies, tweets []*tweetexport.Tweet) error {
	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tweets)
}
