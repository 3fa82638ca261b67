package tweetexport_test

import (
	"testing"

	"github.com/fwojciec/tweetexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tweets []*tweetexport.Tweet) []string {
	out := make([]string, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter_Dates(t *testing.T) {
	t.Parallel()

	tweets := []*tweetexport.Tweet{
		{ID: "dec", Timestamp: "2023-12-31T23:59:59.000Z"},
		{ID: "first", Timestamp: "2024-01-01T00:00:00.000Z"},
		{ID: "mid", Timestamp: "2024-01-15T00:00:00Z"},
		{ID: "last-day", Timestamp: "2024-01-31T18:30:00.000Z"},
		{ID: "feb", Timestamp: "2024-02-01T00:00:00Z"},
		{ID: "relative", Timestamp: "3h"},
	}

	t.Run("date-only bounds are inclusive by day", func(t *testing.T) {
		t.Parallel()

		got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{
			DateFrom:        "2024-01-01",
			DateTo:          "2024-01-31",
			IncludeReplies:  true,
			IncludeRetweets: true,
		})

		assert.Equal(t, []string{"first", "mid", "last-day", "relative"}, ids(got))
	})

	t.Run("RFC 3339 bounds compare to the second", func(t *testing.T) {
		t.Parallel()

		got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{
			DateFrom:        "2024-01-01T00:00:00Z",
			DateTo:          "2024-01-31T12:00:00Z",
			IncludeReplies:  true,
			IncludeRetweets: true,
		})

		assert.Equal(t, []string{"first", "mid", "relative"}, ids(got))
	})

	t.Run("unparsable timestamps pass", func(t *testing.T) {
		t.Parallel()

		got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{
			DateFrom:        "2030-01-01",
			IncludeReplies:  true,
			IncludeRetweets: true,
		})

		assert.Equal(t, []string{"relative"}, ids(got))
	})

	t.Run("unparsable bounds are ignored", func(t *testing.T) {
		t.Parallel()

		got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{
			DateFrom:        "last tuesday",
			IncludeReplies:  true,
			IncludeRetweets: true,
		})

		assert.Len(t, got, len(tweets))
	})
}

func TestFilter_Replies(t *testing.T) {
	t.Parallel()

	tweets := []*tweetexport.Tweet{
		{ID: "1", Text: "@alice thanks!"},
		{ID: "2", Text: "Replying to @bob\nsure"},
		{ID: "3", Text: "email me at me@example.com"},
		{ID: "4", Text: "plain tweet"},
		{ID: "5", Text: "RT @carol: hello"},
	}

	got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{IncludeReplies: false, IncludeRetweets: true})

	assert.Equal(t, []string{"3", "4", "5"}, ids(got))
}

func TestFilter_Retweets(t *testing.T) {
	t.Parallel()

	tweets := []*tweetexport.Tweet{
		{ID: "1", Text: "RT @carol: hello"},
		{ID: "2", Text: "Retweeted by dave"},
		{ID: "3", Text: "I Retweeted this"},
		{ID: "4", Text: "ART @museum"},
		{ID: "5", Text: "@alice reply"},
	}

	got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{IncludeReplies: true, IncludeRetweets: false})

	// "ART @museum" contains "RT @" and is misclassified as a retweet.
	assert.Equal(t, []string{"3", "5"}, ids(got))
}

func TestFilter_PreservesOrder(t *testing.T) {
	t.Parallel()

	tweets := []*tweetexport.Tweet{{ID: "c"}, {ID: "a"}, {ID: "b"}}

	got := tweetexport.Filter(tweets, tweetexport.FilterCriteria{})

	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestFilterCriteria_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		criteria tweetexport.FilterCriteria
		wantErr  bool
	}{
		{name: "empty", criteria: tweetexport.FilterCriteria{}},
		{name: "dates", criteria: tweetexport.FilterCriteria{DateFrom: "2024-01-01", DateTo: "2024-01-31"}},
		{name: "rfc3339", criteria: tweetexport.FilterCriteria{DateTo: "2024-01-31T10:00:00+02:00"}},
		{name: "bad from", criteria: tweetexport.FilterCriteria{DateFrom: "01/02/2024"}, wantErr: true},
		{name: "bad to", criteria: tweetexport.FilterCriteria{DateTo: "yesterday"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.criteria.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tweetexport.EINVALID, tweetexport.ErrorCode(err))
				return
			}
			require.NoError(t, err)
		})
	}
}
