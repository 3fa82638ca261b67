package mock

import (
	"iter"

	"github.com/fwojciec/tweetexport"
)

var _ tweetexport.TweetIndex = (*TweetIndex)(nil)

// TweetIndex is a mock implementation of tweetexport.TweetIndex.
type TweetIndex struct {
	UpsertFn func(tweet *tweetexport.Tweet) error
	GetFn    func(id string) (*tweetexport.Tweet, bool)
	AllFn    func() iter.Seq[*tweetexport.Tweet]
	LenFn    func() int
}

func (i *TweetIndex) Upsert(tweet *tweetexport.Tweet) error {
	return i.UpsertFn(tweet)
}

func (i *TweetIndex) Get(id string) (*tweetexport.Tweet, bool) {
	return i.GetFn(id)
}

func (i *TweetIndex) All() iter.Seq[*tweetexport.Tweet] {
	return i.AllFn()
}

func (i *TweetIndex) Len() int {
	return i.LenFn()
}
