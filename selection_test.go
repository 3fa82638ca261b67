package tweetexport_test

import (
	"testing"

	"github.com/fwojciec/tweetexport"
	"github.com/stretchr/testify/assert"
)

func TestSelection_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("starts idle", func(t *testing.T) {
		t.Parallel()

		var s tweetexport.Selection

		assert.Equal(t, tweetexport.SelectionIdle, s.State())
		assert.Equal(t, 0, s.Count())
	})

	t.Run("start enters selecting with an empty set", func(t *testing.T) {
		t.Parallel()

		var s tweetexport.Selection
		s.Start()

		assert.Equal(t, tweetexport.SelectionSelecting, s.State())
		assert.Empty(t, s.IDs())
	})

	t.Run("stop returns to idle and clears", func(t *testing.T) {
		t.Parallel()

		var s tweetexport.Selection
		s.Start()
		s.Toggle("1")
		s.Stop()

		assert.Equal(t, tweetexport.SelectionIdle, s.State())
		assert.Equal(t, 0, s.Count())
		assert.False(t, s.Has("1"))
	})
}

func TestSelection_Toggle(t *testing.T) {
	t.Parallel()

	t.Run("toggling twice restores the prior set", func(t *testing.T) {
		t.Parallel()

		var s tweetexport.Selection
		s.Start()
		s.Toggle("a")
		s.Toggle("b")
		before := s.IDs()

		assert.True(t, s.Toggle("c"))
		assert.False(t, s.Toggle("c"))

		assert.Equal(t, before, s.IDs())
	})

	t.Run("removing keeps the order of the rest", func(t *testing.T) {
		t.Parallel()

		var s tweetexport.Selection
		s.Start()
		s.Toggle("a")
		s.Toggle("b")
		s.Toggle("c")
		s.Toggle("b")

		assert.Equal(t, []string{"a", "c"}, s.IDs())
	})

	t.Run("ignored while idle", func(t *testing.T) {
		t.Parallel()

		var s tweetexport.Selection

		assert.False(t, s.Toggle("a"))
		assert.Equal(t, 0, s.Count())
	})
}

func TestSelection_Add(t *testing.T) {
	t.Parallel()

	var s tweetexport.Selection
	s.Start()
	s.Toggle("b")
	s.Add("a", "b", "c", "")

	assert.Equal(t, []string{"b", "a", "c"}, s.IDs())
	assert.Equal(t, tweetexport.SelectionSelecting, s.State())
}

func TestSelection_OnChange(t *testing.T) {
	t.Parallel()

	var counts []int
	s := tweetexport.Selection{OnChange: func(n int) { counts = append(counts, n) }}

	s.Start()
	s.Toggle("a")
	s.Add("b", "c")
	s.Toggle("a")
	s.Stop()

	assert.Equal(t, []int{0, 1, 3, 2, 0}, counts)
}

func TestClickEvent_PreventDefault(t *testing.T) {
	t.Parallel()

	ev := &tweetexport.ClickEvent{Candidate: "<article></article>"}
	assert.False(t, ev.DefaultPrevented())

	ev.PreventDefault()

	assert.True(t, ev.DefaultPrevented())
}

func TestClickEvent_Markup(t *testing.T) {
	t.Parallel()

	ev := &tweetexport.ClickEvent{Candidate: `<article>a</article>`, AncestorID: "7"}

	assert.Equal(t, `<div data-tweet-id="7"><article>a</article></div>`, ev.Markup())
	assert.Equal(t, `<article>a</article>`, (&tweetexport.ClickEvent{Candidate: `<article>a</article>`}).Markup())
}
