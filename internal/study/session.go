// Package study implements the study-session controller: the ordered view
// of a list's cards, navigation through it, and optimistic learned marks.
//
// A Session is not safe for concurrent use. It is driven from a single
// event loop; store calls run elsewhere and report back through
// ApplyFetch and Settle.
package study

import (
	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/google/uuid"
)

// State is the read-only view of a session handed to the presentation layer.
type State struct {
	OrderedCards []flashcard.Flashcard
	Current      *flashcard.Flashcard // nil unless browsing
	Phase        Phase
	Index        int
	Total        int
	IsFlipped    bool
	IsFinished   bool
	IsShuffled   bool
	IsLoading    bool
	IsError      bool
	IsMarking    bool
	Err          error
}

// Summary counts learned cards for the finished screen.
type Summary struct {
	Total      int
	Learned    int
	NotLearned int
}

// Session holds the transient state of studying one list.
type Session struct {
	id     string
	listID int64
	rng    Rand

	cards    []flashcard.Flashcard
	ordered  []flashcard.Flashcard
	shuffled bool
	order    []int64
	nav      Navigator

	loading  bool
	fetchErr error

	// marks are the mutations made since the last time nothing was in
	// flight, in the order they were made. gen counts applied fetches.
	marks []*Mutation
	seq   uint64
	gen   uint64
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for shuffle orders.
func WithRand(r Rand) Option {
	return func(s *Session) { s.rng = r }
}

// NewSession creates a session for listID in the loading state.
func NewSession(listID int64, opts ...Option) *Session {
	s := &Session{rng: globalRand{}}
	for _, opt := range opts {
		opt(s)
	}
	s.Open(listID)
	return s
}

// Open starts studying listID. All position, flip, finish and shuffle state
// is discarded immediately and a new session id is issued, so results still
// in flight for the previous list are ignored when they arrive.
func (s *Session) Open(listID int64) {
	s.id = uuid.NewString()
	s.listID = listID
	s.cards = nil
	s.ordered = nil
	s.shuffled = false
	s.order = nil
	s.nav = Navigator{}
	s.loading = true
	s.fetchErr = nil
	s.marks = nil
}

// ID returns the identifier of the current session. Asynchronous results
// must carry it back to ApplyFetch and Settle.
func (s *Session) ID() string { return s.id }

// ListID returns the list being studied.
func (s *Session) ListID() int64 { return s.listID }

// Reload enters the loading state again, keeping the cached cards and
// position. The caller issues the fetch. A refetch of a list that is already
// shown needs no Reload: its result goes straight to ApplyFetch and the
// session stays usable meanwhile.
func (s *Session) Reload() {
	s.loading = true
	s.fetchErr = nil
}

// ApplyFetch installs the result of a card fetch. It reports false when the
// result belongs to another session.
//
// Marks still in flight, and marks settled while others are, are applied
// again on top of the fetched cards. A failed refetch of cards already shown
// keeps them and leaves the session usable; only a failed load enters the
// error state.
func (s *Session) ApplyFetch(sessionID string, cards []flashcard.Flashcard, err error) bool {
	if sessionID != s.id {
		return false
	}
	refresh := !s.loading && s.fetchErr == nil
	s.loading = false
	if err != nil {
		if !refresh {
			s.fetchErr = &FetchError{ListID: s.listID, Err: err}
		}
		return true
	}
	s.fetchErr = nil
	s.gen++
	s.cards = append([]flashcard.Flashcard(nil), cards...)
	s.replay(0)
	s.rederive()
	return true
}

// ToggleShuffle switches between natural and shuffled order. Enabling draws
// a fresh permutation and restarts at the first card. Disabling keeps the
// numeric position, clamped to the deck.
func (s *Session) ToggleShuffle() {
	s.shuffled = !s.shuffled
	if s.shuffled {
		s.order = NewShuffleOrder(s.cards, s.rng)
		s.rederive()
		s.nav.Restart()
		return
	}
	s.order = nil
	s.rederive()
	s.nav.Unfinish()
}

// Reshuffle draws a new permutation and restarts. It does nothing when
// shuffle is off.
func (s *Session) Reshuffle() {
	if !s.shuffled {
		return
	}
	s.order = NewShuffleOrder(s.cards, s.rng)
	s.rederive()
	s.nav.Restart()
}

// ResetSession returns to the first card, reshuffling when shuffled.
func (s *Session) ResetSession() {
	if s.shuffled {
		s.order = NewShuffleOrder(s.cards, s.rng)
		s.rederive()
	}
	s.nav.Restart()
}

func (s *Session) Next() { s.nav.Next() }
func (s *Session) Prev() { s.nav.Prev() }
func (s *Session) ToggleFlip() { s.nav.ToggleFlip() }

// State returns a snapshot of the session for rendering.
func (s *Session) State() State {
	st := State{
		OrderedCards: append([]flashcard.Flashcard(nil), s.ordered...),
		Phase:        s.nav.Phase(),
		Index:        s.nav.Index(),
		Total:        s.nav.Total(),
		IsFlipped:    s.nav.IsFlipped(),
		IsFinished:   s.nav.IsFinished(),
		IsShuffled:   s.shuffled,
		IsLoading:    s.loading,
		IsError:      s.fetchErr != nil,
		IsMarking:    s.pending() > 0,
		Err:          s.fetchErr,
	}
	if c := s.current(); c != nil {
		cp := *c
		st.Current = &cp
	}
	return st
}

// Summary counts learned and unlearned cards in the ordered view.
func (s *Session) Summary() Summary {
	sum := Summary{Total: len(s.ordered)}
	for _, c := range s.ordered {
		if c.IsMemorized {
			sum.Learned++
		}
	}
	sum.NotLearned = sum.Total - sum.Learned
	return sum
}

func (s *Session) current() *flashcard.Flashcard {
	if s.nav.Phase() != PhaseBrowsing {
		return nil
	}
	i := s.nav.Index()
	if i < 0 || i >= len(s.ordered) {
		return nil
	}
	return &s.ordered[i]
}

func (s *Session) ready() bool {
	return !s.loading && s.fetchErr == nil
}

func (s *Session) rederive() {
	s.ordered = DeriveOrder(s.cards, s.shuffled, s.order)
	s.nav.Resize(len(s.ordered))
}
