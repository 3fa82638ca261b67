package rod_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/tweetexport/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScroller_StopsAtTarget(t *testing.T) {
	t.Parallel()

	var tweets, steps int
	s := rod.NewScroller(func(context.Context) error {
		steps++
		tweets += 10
		return nil
	}, time.Millisecond)

	err := s.Run(context.Background(), func() int { return tweets }, 25)

	require.NoError(t, err)
	assert.Equal(t, 30, tweets)
	assert.Equal(t, 3, steps)
}

func TestScroller_StopsWhenTimelineIsExhausted(t *testing.T) {
	t.Parallel()

	var steps int
	s := rod.NewScroller(func(context.Context) error {
		steps++
		return nil
	}, time.Millisecond, rod.WithMaxIdleScrolls(3))

	err := s.Run(context.Background(), func() int { return 4 }, 100)

	require.NoError(t, err)
	assert.Equal(t, 3, steps)
}

func TestScroller_IsPaced(t *testing.T) {
	t.Parallel()

	var tweets int
	s := rod.NewScroller(func(context.Context) error {
		tweets++
		return nil
	}, 20*time.Millisecond)

	begin := time.Now()
	err := s.Run(context.Background(), func() int { return tweets }, 4)

	require.NoError(t, err)
	// The first scroll is immediate, the next three each wait one interval.
	assert.GreaterOrEqual(t, time.Since(begin), 60*time.Millisecond)
}

func TestScroller_StepError(t *testing.T) {
	t.Parallel()

	s := rod.NewScroller(func(context.Context) error {
		return errors.New("target closed")
	}, time.Millisecond)

	err := s.Run(context.Background(), func() int { return 0 }, 10)

	assert.EqualError(t, err, "target closed")
}

func TestScroller_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := rod.NewScroller(func(context.Context) error {
		t.Fatal("step must not run")
		return nil
	}, time.Hour)

	err := s.Run(ctx, func() int { return 0 }, 10)

	assert.NoError(t, err)
}
