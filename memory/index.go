// Package memory provides an in-process tweet index that lives for one
// scanning session.
package memory

import (
	"iter"
	"sync"

	"github.com/fwojciec/tweetexport"
)

var _ tweetexport.TweetIndex = (*Index)(nil)

// Index is a tweetexport.TweetIndex backed by a map. It remembers the order
// in which IDs were first inserted so snapshots are deterministic.
// Index is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	tweets map[string]*tweetexport.Tweet
	order  []string
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{tweets: make(map[string]*tweetexport.Tweet)}
}

// Upsert stores a copy of tweet, replacing any record with the same ID.
// A replaced record keeps its original position.
func (i *Index) Upsert(tweet *tweetexport.Tweet) error {
	if tweet == nil {
		return tweetexport.Errorf(tweetexport.EINVALID, "tweet required")
	}
	if err := tweet.Validate(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.tweets[tweet.ID]; !ok {
		i.order = append(i.order, tweet.ID)
	}
	i.tweets[tweet.ID] = tweet.Clone()
	return nil
}

// Get returns a copy of the record with the given ID.
func (i *Index) Get(id string) (*tweetexport.Tweet, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	t, ok := i.tweets[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// All returns a sequence over a snapshot taken when iteration starts.
// Upserts made during iteration are not visible to it.
func (i *Index) All() iter.Seq[*tweetexport.Tweet] {
	return func(yield func(*tweetexport.Tweet) bool) {
		for _, t := range i.snapshot() {
			if !yield(t) {
				return
			}
		}
	}
}

// Len returns the number of records.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.tweets)
}

func (i *Index) snapshot() []*tweetexport.Tweet {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]*tweetexport.Tweet, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.tweets[id].Clone())
	}
	return out
}
