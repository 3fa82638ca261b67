package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/tweetexport"
)

// Run executes the scan command. It prints the page snapshot as JSON, or
// the filtered tweets when a filter flag is given.
func (c *ScanCmd) Run(deps *Dependencies) error {
	criteria, err := c.Criteria(deps.Settings)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tweetexport.ErrorMessage(err))
		return err
	}

	session, err := loadSession(deps, c.SourceFlags, nil)
	if err != nil {
		return err
	}

	tweets := session.PageTweets()
	if c.Active() {
		tweets = session.FetchTweets(criteria)
	}
	if tweets == nil {
		tweets = []*tweetexport.Tweet{}
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tweets); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stderr, "%d of %d indexed tweets\n", len(tweets), session.Index().Len())
	return nil
}
