package main

import (
	"fmt"
	"log/slog"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/fs"
	teslog "github.com/fwojciec/tweetexport/slog"
)

// exportSink builds the sink exports are delivered to: the output directory
// and, when archive is set, the archive database.
func exportSink(deps *Dependencies, out string, archive bool) (*fs.Sink, tweetexport.ExportSink, error) {
	files := fs.NewSink(out)
	sinks := []tweetexport.ExportSink{teslog.NewLoggingSink(files, "fs", deps.Logger)}
	if archive {
		if deps.Archive == nil {
			return nil, nil, fmt.Errorf("archive is not available")
		}
		sinks = append(sinks, teslog.NewLoggingSink(deps.Archive, "archive", deps.Logger))
	}
	return files, tweetexport.MultiSink(sinks...), nil
}

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	criteria, err := c.Criteria(deps.Settings)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tweetexport.ErrorMessage(err))
		return err
	}

	files, sink, err := exportSink(deps, c.Out, c.Archive)
	if err != nil {
		return err
	}

	session, err := loadSession(deps, c.SourceFlags, sink)
	if err != nil {
		return err
	}

	var exp *tweetexport.Export
	if c.ID != "" {
		exp, err = session.ExportTweet(deps.Ctx, c.ID)
	} else {
		exp, err = session.ExportTweets(deps.Ctx, session.FetchTweets(criteria))
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	deps.Logger.Debug("export complete", slog.String("filename", exp.Filename))
	fmt.Fprintf(deps.Stdout, "Exported %d tweets to %s\n", exp.Envelope.TweetCount, files.Path(exp.Filename))
	return nil
}

// describe returns a message suitable for the user.
func describe(err error) string {
	if tweetexport.ErrorCode(err) == tweetexport.EINTERNAL {
		return err.Error()
	}
	return tweetexport.ErrorMessage(err)
}
