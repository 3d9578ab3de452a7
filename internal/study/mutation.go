package study

import (
	"context"

	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// Mutation is a learned mark that has been applied locally and still needs
// to be persisted. It carries the card cache as it was just before the mark
// so a failure restores exactly that state.
type Mutation struct {
	SessionID string
	ListID    int64
	CardID    int64
	Learned   bool
	Note      string

	seq      uint64
	gen      uint64
	snapshot []flashcard.Flashcard

	settled bool
	result  *flashcard.Flashcard
}

// Persist sends the mark to the store. It is safe to call off the event
// loop; the result goes back to Session.Settle.
func (m *Mutation) Persist(ctx context.Context, store CardStore) (*flashcard.Flashcard, error) {
	return store.PersistLearned(ctx, m.CardID, m.Learned, m.Note)
}

// MarkLearned sets the learned flag of cardID in the local cache and returns
// the mutation to persist. The ordered view keeps its membership and order.
func (s *Session) MarkLearned(cardID int64, learned bool) (*Mutation, error) {
	return s.mark("mark", cardID, func(c flashcard.Flashcard) (bool, string) {
		return learned, c.Note
	})
}

// EditNote replaces the note of cardID in the local cache, keeping its
// learned flag, and returns the mutation to persist.
func (s *Session) EditNote(cardID int64, note string) (*Mutation, error) {
	if err := flashcard.ValidateNote(note); err != nil {
		return nil, &CallerError{Op: "note", CardID: cardID, Err: err}
	}
	return s.mark("note", cardID, func(c flashcard.Flashcard) (bool, string) {
		return c.IsMemorized, note
	})
}

func (s *Session) mark(op string, cardID int64, change func(flashcard.Flashcard) (bool, string)) (*Mutation, error) {
	if !s.ready() {
		return nil, &CallerError{Op: op, CardID: cardID, Err: ErrNotReady}
	}
	i := indexOfCard(s.cards, cardID)
	if i < 0 || !containsCard(s.ordered, cardID) {
		return nil, &CallerError{Op: op, CardID: cardID, Err: ErrUnknownCard}
	}

	s.seq++
	m := &Mutation{
		SessionID: s.id,
		ListID:    s.listID,
		CardID:    cardID,
		seq:       s.seq,
		gen:       s.gen,
		snapshot:  append([]flashcard.Flashcard(nil), s.cards...),
	}
	m.Learned, m.Note = change(s.cards[i])
	m.apply(s.cards)
	s.marks = append(s.marks, m)
	s.rederive()
	return m, nil
}

// Settle applies the outcome of persisting m. On success the stored card
// replaces the cached one; a nil card keeps the optimistic value. On failure
// m's snapshot is restored and a *PersistError is returned. Navigation state
// is not touched. Settle reports false, and does nothing, when m belongs to
// a session that has since been replaced.
//
// The restore keeps every other mark made in the meantime, settled or not.
// When a fetch has replaced the cache since m was made, only m's card is
// restored so cards missing from that fetch stay gone.
func (s *Session) Settle(m *Mutation, updated *flashcard.Flashcard, err error) (bool, error) {
	if m == nil || m.SessionID != s.id || m.settled {
		return false, nil
	}

	if err != nil {
		s.dropMark(m)
		if m.gen == s.gen {
			s.cards = append([]flashcard.Flashcard(nil), m.snapshot...)
		} else if i, j := indexOfCard(s.cards, m.CardID), indexOfCard(m.snapshot, m.CardID); i >= 0 && j >= 0 {
			s.cards[i] = m.snapshot[j]
		}
		s.replay(m.seq)
		s.pruneMarks()
		s.rederive()
		return true, &PersistError{CardID: m.CardID, Learned: m.Learned, Err: err}
	}

	m.settled = true
	if updated != nil {
		u := *updated
		m.result = &u
		m.apply(s.cards)
		// Later marks on the same card keep precedence.
		s.replay(m.seq)
		s.rederive()
	}
	s.pruneMarks()
	return true, nil
}

// apply writes m's outcome into cards: the stored card once settled,
// otherwise the optimistic flag and note.
func (m *Mutation) apply(cards []flashcard.Flashcard) {
	i := indexOfCard(cards, m.CardID)
	if i < 0 {
		return
	}
	if m.result != nil {
		cards[i] = *m.result
		return
	}
	cards[i].IsMemorized = m.Learned
	cards[i].Note = m.Note
}

// replay reapplies, in order, the marks made after seq.
func (s *Session) replay(after uint64) {
	for _, m := range s.marks {
		if m.seq > after {
			m.apply(s.cards)
		}
	}
}

func (s *Session) dropMark(m *Mutation) {
	for i, x := range s.marks {
		if x == m {
			s.marks = append(s.marks[:i], s.marks[i+1:]...)
			return
		}
	}
}

// pruneMarks forgets settled marks once nothing is in flight: any later
// snapshot already contains them.
func (s *Session) pruneMarks() {
	if s.pending() == 0 {
		s.marks = nil
	}
}

func (s *Session) pending() int {
	n := 0
	for _, m := range s.marks {
		if !m.settled {
			n++
		}
	}
	return n
}

func indexOfCard(cards []flashcard.Flashcard, id int64) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func containsCard(cards []flashcard.Flashcard, id int64) bool {
	return indexOfCard(cards, id) >= 0
}
