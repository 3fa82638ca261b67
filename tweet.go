package tweetexport

import (
	"iter"
	"slices"
	"time"
)

// TimestampLayout formats times the way the export format expects them:
// UTC with millisecond precision and a literal Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp formats t using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Tweet is the structured record extracted from one timeline item.
// ID is the only required field and the sole index key.
type Tweet struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Author    Author  `json:"author"`
	Timestamp string  `json:"timestamp"`
	Metrics   Metrics `json:"metrics"`
	Media     Media   `json:"media"`
	URL       string  `json:"url"`
}

// Author describes who posted a tweet. Username always starts with "@"
// when it is not empty.
type Author struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// Metrics holds engagement counts. Missing counts are zero.
type Metrics struct {
	Replies  int `json:"replies"`
	Retweets int `json:"retweets"`
	Likes    int `json:"likes"`
	Views    int `json:"views"`
}

// Media lists the images and videos attached to a tweet. Gifs is always
// empty: animated images are rendered as videos and reported there.
type Media struct {
	Images []Image `json:"images"`
	Videos []Video `json:"videos"`
	Gifs   []Image `json:"gifs"`
}

// NewMedia returns a Media with empty, non-nil lists.
func NewMedia() Media {
	return Media{Images: []Image{}, Videos: []Video{}, Gifs: []Image{}}
}

// Image is an attached image.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Video is an attached video.
type Video struct {
	URL    string `json:"url"`
	Poster string `json:"poster"`
}

// Validate returns an error if the tweet contains invalid fields.
func (t *Tweet) Validate() error {
	if t.ID == "" {
		return Errorf(EINVALID, "tweet ID required")
	}
	return nil
}

// Clone returns a deep copy of the tweet.
func (t *Tweet) Clone() *Tweet {
	other := *t
	other.Media.Images = slices.Clone(t.Media.Images)
	other.Media.Videos = slices.Clone(t.Media.Videos)
	return &other
}

// TweetIndex is a deduplicated store of tweets keyed by ID.
// Implementations must make Upsert atomic with respect to concurrent readers
// and writers.
type TweetIndex interface {
	// Upsert stores the tweet, replacing any tweet with the same ID.
	// Records are replaced whole, never merged.
	Upsert(tweet *Tweet) error

	// Get returns the tweet with the given ID.
	// The bool result is false if no such tweet exists.
	Get(id string) (*Tweet, bool)

	// All returns a sequence over a snapshot of every stored tweet, in the
	// order their IDs were first inserted. Each call takes a fresh snapshot.
	All() iter.Seq[*Tweet]

	// Len returns the number of stored tweets.
	Len() int
}

// Collect drains an index snapshot into a slice.
func Collect(index TweetIndex) []*Tweet {
	tweets := make([]*Tweet, 0, index.Len())
	for t := range index.All() {
		tweets = append(tweets, t)
	}
	return tweets
}
