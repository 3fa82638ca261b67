package tweetexport

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Envelope is the JSON document delivered to an export sink.
type Envelope struct {
	ExportDate string   `json:"exportDate"`
	TweetCount int      `json:"tweetCount"`
	Tweets     []*Tweet `json:"tweets"`
}

// Export is a serialized envelope ready for delivery.
type Export struct {
	Filename string
	Envelope *Envelope
	Payload  []byte
}

// ExportSink delivers a finished export (writes a file, records it in an
// archive, triggers a download). Implementations must not modify the export.
type ExportSink interface {
	Deliver(ctx context.Context, export *Export) error
}

// NewEnvelope wraps tweets, in the given order, in an envelope generated at now.
func NewEnvelope(tweets []*Tweet, now time.Time) *Envelope {
	if tweets == nil {
		tweets = []*Tweet{}
	}
	return &Envelope{
		ExportDate: FormatTimestamp(now),
		TweetCount: len(tweets),
		Tweets:     tweets,
	}
}

// ExportFilename returns the suggested filename for an export generated at
// now: tweets_export_YYYY-MM-DDTHH-MM-SS.json.
func ExportFilename(now time.Time) string {
	stamp := FormatTimestamp(now)[:len("2006-01-02T15:04:05")]
	return "tweets_export_" + strings.ReplaceAll(stamp, ":", "-") + ".json"
}

// BuildExport serializes tweets into an export generated at now.
// The result depends only on its arguments.
func BuildExport(tweets []*Tweet, now time.Time) (*Export, error) {
	env := NewEnvelope(tweets, now)
	payload, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, Errorf(EEXPORT, "failed to encode export: %v", err)
	}
	return &Export{
		Filename: ExportFilename(now),
		Envelope: env,
		Payload:  payload,
	}, nil
}

// MultiSink returns a sink that delivers to each sink in order, stopping
// at the first failure.
func MultiSink(sinks ...ExportSink) ExportSink {
	return multiSink(sinks)
}

type multiSink []ExportSink

func (m multiSink) Deliver(ctx context.Context, export *Export) error {
	for _, s := range m {
		if err := s.Deliver(ctx, export); err != nil {
			return err
		}
	}
	return nil
}

// ArchivedExport describes an export recorded in an archive.
type ArchivedExport struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ExportDate  string    `json:"exportDate"`
	TweetCount  int       `json:"tweetCount"`
	PayloadHash string    `json:"payloadHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExportFilter represents a filter for ExportArchive.FindExports.
type ExportFilter struct {
	ID      *string
	TweetID *string // exports containing this tweet

	Offset int
	Limit  int
}

// ExportArchive records every delivered export and answers history queries.
type ExportArchive interface {
	ExportSink

	// FindExports retrieves archived exports, newest first.
	FindExports(ctx context.Context, filter ExportFilter) ([]*ArchivedExport, error)

	// FindExportTweets returns the tweets of an archived export in export
	// order. Returns ENOTFOUND if the export does not exist.
	FindExportTweets(ctx context.Context, exportID string) ([]*Tweet, error)

	// DeleteExport removes an archived export and its tweets.
	// Returns ENOTFOUND if the export does not exist.
	DeleteExport(ctx context.Context, id string) error
}
