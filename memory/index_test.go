package memory_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("last write wins in place", func(t *testing.T) {
		t.Parallel()

		idx := memory.NewIndex()
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "1", Text: "one"}))
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "2", Text: "two"}))
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "1", Text: "uno"}))

		got := tweetexport.Collect(idx)

		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "uno", got[0].Text)
		assert.Equal(t, "2", got[1].ID)
	})

	t.Run("records are replaced whole", func(t *testing.T) {
		t.Parallel()

		idx := memory.NewIndex()
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "1", Text: "one", URL: "https://twitter.com/a/status/1"}))
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "1", Text: "one"}))

		got, ok := idx.Get("1")

		require.True(t, ok)
		assert.Empty(t, got.URL)
	})

	t.Run("rejects missing id", func(t *testing.T) {
		t.Parallel()

		idx := memory.NewIndex()

		err := idx.Upsert(&tweetexport.Tweet{Text: "anonymous"})

		assert.Equal(t, tweetexport.EINVALID, tweetexport.ErrorCode(err))
		assert.Equal(t, 0, idx.Len())
	})

	t.Run("stored record is isolated from the caller", func(t *testing.T) {
		t.Parallel()

		idx := memory.NewIndex()
		tweet := &tweetexport.Tweet{ID: "1", Text: "original"}
		require.NoError(t, idx.Upsert(tweet))

		tweet.Text = "mutated"

		got, _ := idx.Get("1")
		assert.Equal(t, "original", got.Text)
	})
}

func TestIndex_Get(t *testing.T) {
	t.Parallel()

	idx := memory.NewIndex()

	_, ok := idx.Get("missing")

	assert.False(t, ok)
}

func TestIndex_All(t *testing.T) {
	t.Parallel()

	t.Run("is restartable", func(t *testing.T) {
		t.Parallel()

		idx := memory.NewIndex()
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "1"}))
		seq := idx.All()

		var first, second int
		for range seq {
			first++
		}
		require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: "2"}))
		for range seq {
			second++
		}

		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
	})

	t.Run("stops early", func(t *testing.T) {
		t.Parallel()

		idx := memory.NewIndex()
		for i := range 5 {
			require.NoError(t, idx.Upsert(&tweetexport.Tweet{ID: fmt.Sprint(i)}))
		}

		var seen []string
		for tweet := range idx.All() {
			seen = append(seen, tweet.ID)
			if len(seen) == 2 {
				break
			}
		}

		assert.Equal(t, []string{"0", "1"}, seen)
	})
}

func TestIndex_ConcurrentUpsertsKeepIDsUnique(t *testing.T) {
	t.Parallel()

	idx := memory.NewIndex()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				_ = idx.Upsert(&tweetexport.Tweet{ID: fmt.Sprint(i), Text: fmt.Sprint(w)})
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for tweet := range idx.All() {
		assert.False(t, seen[tweet.ID], "duplicate id %s", tweet.ID)
		seen[tweet.ID] = true
	}
	assert.Equal(t, 100, idx.Len())
}
