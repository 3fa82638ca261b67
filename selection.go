package tweetexport

import "slices"

// SelectionState is the state of a bulk-selection session.
type SelectionState int

const (
	SelectionIdle SelectionState = iota
	SelectionSelecting
)

// String returns the state name.
func (s SelectionState) String() string {
	if s == SelectionSelecting {
		return "selecting"
	}
	return "idle"
}

// Selection tracks the IDs marked during a bulk-selection session.
// IDs keep the order in which they were selected.
//
// Selection is not safe for concurrent use; callers serialize access.
type Selection struct {
	state SelectionState
	ids   []string
	set   map[string]struct{}

	// OnChange, if set, is called synchronously with the selection count
	// after every transition, toggle and bulk add.
	OnChange func(count int)
}

// State returns the current state.
func (s *Selection) State() SelectionState {
	return s.state
}

// Selecting reports whether a session is active.
func (s *Selection) Selecting() bool {
	return s.state == SelectionSelecting
}

// Start begins a session with an empty selection. Starting an active
// session clears it.
func (s *Selection) Start() {
	s.state = SelectionSelecting
	s.ids = nil
	s.set = make(map[string]struct{})
	s.notify()
}

// Stop ends the session and clears the selection.
func (s *Selection) Stop() {
	s.state = SelectionIdle
	s.ids = nil
	s.set = nil
	s.notify()
}

// Toggle flips the membership of id and reports whether it is now selected.
// It has no effect outside a session.
func (s *Selection) Toggle(id string) bool {
	if !s.Selecting() || id == "" {
		return false
	}
	if _, ok := s.set[id]; ok {
		delete(s.set, id)
		s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == id })
		s.notify()
		return false
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
	s.notify()
	return true
}

// Add selects every ID not already selected, without changing state.
// It has no effect outside a session.
func (s *Selection) Add(ids ...string) {
	if !s.Selecting() {
		return
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.set[id]; ok {
			continue
		}
		s.set[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	s.notify()
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.set[id]
	return ok
}

// IDs returns the selected IDs in selection order.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

// Count returns the number of selected IDs.
func (s *Selection) Count() int {
	return len(s.ids)
}

func (s *Selection) notify() {
	if s.OnChange != nil {
		s.OnChange(len(s.ids))
	}
}

// ClickEvent is a user click routed from the host page.
type ClickEvent struct {
	// Candidate is the outer HTML of the closest candidate element enclosing
	// the click target, or empty if the click landed outside any candidate.
	Candidate string

	// AncestorID is the tweet ID attribute of the nearest ancestor of the
	// candidate element, if it has one.
	AncestorID string

	prevented bool
}

// Markup returns the candidate HTML to scan, nested under AncestorID when
// one is set.
func (e *ClickEvent) Markup() string {
	return WithAncestorID(e.Candidate, e.AncestorID)
}

// PreventDefault marks the click's default action (navigation) as suppressed.
func (e *ClickEvent) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *ClickEvent) DefaultPrevented() bool {
	return e.prevented
}
