package study

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore answers PersistLearned with the stored card or a fixed error.
type fakeStore struct {
	cards map[int64]flashcard.Flashcard
	err   error
	calls []persistCall
}

type persistCall struct {
	CardID  int64
	Learned bool
	Note    string
}

func newFakeStore(cards []flashcard.Flashcard) *fakeStore {
	f := &fakeStore{cards: map[int64]flashcard.Flashcard{}}
	for _, c := range cards {
		f.cards[c.ID] = c
	}
	return f
}

func (f *fakeStore) FetchCards(_ context.Context, listID int64) ([]flashcard.Flashcard, error) {
	var out []flashcard.Flashcard
	for _, c := range f.cards {
		if c.ListID == listID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b flashcard.Flashcard) int { return int(a.ID - b.ID) })
	return out, f.err
}

func (f *fakeStore) PersistLearned(_ context.Context, cardID int64, learned bool, note string) (*flashcard.Flashcard, error) {
	f.calls = append(f.calls, persistCall{cardID, learned, note})
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.cards[cardID]
	if !ok {
		return nil, flashcard.ErrNotFound
	}
	c.IsMemorized = learned
	c.Note = note
	f.cards[cardID] = c
	return &c, nil
}

func loaded(t *testing.T, cards []flashcard.Flashcard, opts ...Option) *Session {
	t.Helper()
	s := NewSession(1, opts...)
	require.True(t, s.ApplyFetch(s.ID(), cards, nil))
	return s
}

func TestNewSessionIndexBounds(t *testing.T) {
	for n := 0; n <= 6; n++ {
		ids := make([]int64, n)
		for i := range ids {
			ids[i] = int64(i + 1)
		}
		st := loaded(t, deck(ids...)).State()
		assert.Equal(t, n, st.Total)
		assert.GreaterOrEqual(t, st.Index, 0)
		assert.LessOrEqual(t, st.Index, max(n-1, 0))
		assert.False(t, st.IsFinished)
		if n == 0 {
			assert.Equal(t, PhaseEmpty, st.Phase)
			assert.Nil(t, st.Current)
		} else {
			assert.Equal(t, PhaseBrowsing, st.Phase)
			require.NotNil(t, st.Current)
			assert.Equal(t, int64(1), st.Current.ID)
		}
	}
}

func TestSessionLoadingAndFetchError(t *testing.T) {
	s := NewSession(7)
	st := s.State()
	assert.True(t, st.IsLoading)
	assert.Equal(t, PhaseEmpty, st.Phase)

	boom := &flashcard.NetworkError{Err: errors.New("connection refused")}
	require.True(t, s.ApplyFetch(s.ID(), nil, boom))
	st = s.State()
	assert.False(t, st.IsLoading)
	assert.True(t, st.IsError)

	var fe *FetchError
	require.ErrorAs(t, st.Err, &fe)
	assert.Equal(t, int64(7), fe.ListID)
	assert.ErrorIs(t, st.Err, boom)

	s.Reload()
	assert.True(t, s.State().IsLoading)
	require.True(t, s.ApplyFetch(s.ID(), deck(1), nil))
	assert.False(t, s.State().IsError)
	assert.Equal(t, 1, s.State().Total)
}

func TestSessionABCScenario(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))

	var visited []int64
	for i := 0; i < 3; i++ {
		st := s.State()
		require.NotNil(t, st.Current)
		visited = append(visited, st.Current.ID)
		s.Next()
	}
	assert.Equal(t, []int64{1, 2, 3}, visited)
	assert.True(t, s.State().IsFinished)

	s.Prev()
	st := s.State()
	assert.False(t, st.IsFinished)
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, int64(3), st.Current.ID)
}

func TestSessionPrevAtStartIsNoop(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.ToggleFlip()
	before := s.State()
	s.Prev()
	assert.Equal(t, before, s.State())
}

func TestSessionShuffleTwiceIsBijection(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	for i := 0; i < 2; i++ {
		s.ToggleShuffle()
		st := s.State()
		require.True(t, st.IsShuffled)
		assert.ElementsMatch(t, []int64{1, 2, 3}, idsOf(st.OrderedCards))
		assert.Equal(t, 0, st.Index)
		assert.False(t, st.IsFlipped)
		assert.False(t, st.IsFinished)
		s.ToggleShuffle()
	}
}

func TestSessionShuffleStableAcrossRefresh(t *testing.T) {
	s := loaded(t, deck(1, 2, 3, 4), WithRand(rand.New(rand.NewPCG(1, 2))))
	s.ToggleShuffle()
	order := idsOf(s.State().OrderedCards)

	// Card 2 is deleted, card 9 is added.
	require.True(t, s.ApplyFetch(s.ID(), deck(1, 3, 4, 9), nil))

	want := slices.DeleteFunc(slices.Clone(order), func(id int64) bool { return id == 2 })
	want = append(want, 9)
	assert.Equal(t, want, idsOf(s.State().OrderedCards))
}

func TestSessionDisableShuffleKeepsIndex(t *testing.T) {
	s := loaded(t, deck(1, 2, 3, 4))
	s.ToggleShuffle()
	s.Next()
	s.Next()
	s.ToggleFlip()

	s.ToggleShuffle()
	st := s.State()
	assert.False(t, st.IsShuffled)
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, int64(3), st.Current.ID)
	assert.False(t, st.IsFlipped)
	assert.Equal(t, []int64{1, 2, 3, 4}, idsOf(st.OrderedCards))
}

func TestSessionDisableShuffleWhenFinished(t *testing.T) {
	s := loaded(t, deck(1, 2))
	s.ToggleShuffle()
	s.Next()
	s.Next()
	require.True(t, s.State().IsFinished)

	s.ToggleShuffle()
	st := s.State()
	assert.False(t, st.IsFinished)
	assert.Equal(t, 1, st.Index)
}

func TestSessionResetSession(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.Next()
	s.Next()
	s.Next()
	s.ResetSession()
	st := s.State()
	assert.Equal(t, 0, st.Index)
	assert.False(t, st.IsFinished)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(st.OrderedCards))
}

func TestSessionResetReshufflesWhenShuffled(t *testing.T) {
	s := loaded(t, deck(1, 2, 3, 4, 5, 6, 7, 8), WithRand(rand.New(rand.NewPCG(3, 4))))
	s.ToggleShuffle()
	first := idsOf(s.State().OrderedCards)

	changed := false
	for i := 0; i < 10 && !changed; i++ {
		s.Next()
		s.ResetSession()
		st := s.State()
		assert.Equal(t, 0, st.Index)
		assert.ElementsMatch(t, first, idsOf(st.OrderedCards))
		changed = !slices.Equal(first, idsOf(st.OrderedCards))
	}
	assert.True(t, changed, "reset draws a new permutation")
}

func TestSessionReshuffleRequiresShuffle(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.Next()
	s.Reshuffle()
	assert.Equal(t, 1, s.State().Index)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(s.State().OrderedCards))
}

func TestSessionRefreshShrinkClamps(t *testing.T) {
	s := loaded(t, deck(1, 2, 3, 4, 5))
	for i := 0; i < 4; i++ {
		s.Next()
	}
	require.Equal(t, 4, s.State().Index)

	require.True(t, s.ApplyFetch(s.ID(), deck(1, 2, 3), nil))
	st := s.State()
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, 3, st.Total)
	require.NotNil(t, st.Current)
	assert.Equal(t, int64(3), st.Current.ID)
}

func TestSessionRefreshSameCountKeepsState(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.Next()
	s.ToggleFlip()

	require.True(t, s.ApplyFetch(s.ID(), deck(1, 2, 3), nil))
	st := s.State()
	assert.Equal(t, 1, st.Index)
	assert.True(t, st.IsFlipped)
}

func TestSessionOpenResetsImmediately(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	oldID := s.ID()
	s.ToggleShuffle()
	s.Next()
	s.ToggleFlip()

	s.Open(2)
	st := s.State()
	assert.NotEqual(t, oldID, s.ID())
	assert.Equal(t, int64(2), s.ListID())
	assert.True(t, st.IsLoading)
	assert.False(t, st.IsShuffled)
	assert.False(t, st.IsFlipped)
	assert.Equal(t, 0, st.Index)
	assert.Empty(t, st.OrderedCards)

	assert.False(t, s.ApplyFetch(oldID, deck(1, 2, 3), nil), "stale fetch is ignored")
	assert.True(t, s.State().IsLoading)
}

func TestMarkLearnedSuccess(t *testing.T) {
	cards := deck(1, 2, 3)
	cards[1].Note = "remember the radical"
	store := newFakeStore(cards)
	s := loaded(t, cards)
	s.Next()
	before := idsOf(s.State().OrderedCards)

	m, err := s.MarkLearned(2, true)
	require.NoError(t, err)
	assert.Equal(t, "remember the radical", m.Note)

	// Visible before the store answers.
	st := s.State()
	assert.True(t, st.IsMarking)
	assert.True(t, st.OrderedCards[1].IsMemorized)

	updated, perr := m.Persist(context.Background(), store)
	applied, err := s.Settle(m, updated, perr)
	require.True(t, applied)
	require.NoError(t, err)

	st = s.State()
	assert.False(t, st.IsMarking)
	assert.Equal(t, before, idsOf(st.OrderedCards))
	for _, c := range st.OrderedCards {
		assert.Equal(t, c.ID == 2, c.IsMemorized, "card %d", c.ID)
	}
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, []persistCall{{2, true, "remember the radical"}}, store.calls)
}

func TestMarkLearnedSettleWithoutResponseKeepsOptimisticValue(t *testing.T) {
	s := loaded(t, deck(1, 2))
	m, err := s.MarkLearned(1, true)
	require.NoError(t, err)

	_, err = s.Settle(m, nil, nil)
	require.NoError(t, err)
	assert.True(t, s.State().OrderedCards[0].IsMemorized)
}

func TestMarkLearnedFailureRestoresSnapshot(t *testing.T) {
	cards := deck(1, 2, 3)
	cards[2].IsMemorized = true
	s := loaded(t, cards)
	s.Next()
	s.ToggleFlip()
	before := s.State()

	m, err := s.MarkLearned(1, true)
	require.NoError(t, err)
	s.Next()
	afterNav := s.State()

	store := newFakeStore(cards)
	store.err = &flashcard.NetworkError{Err: errors.New("timeout")}
	updated, perr := m.Persist(context.Background(), store)
	applied, err := s.Settle(m, updated, perr)
	require.True(t, applied)

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(1), pe.CardID)

	st := s.State()
	assert.Equal(t, before.OrderedCards, st.OrderedCards)
	assert.Equal(t, afterNav.Index, st.Index, "rollback leaves navigation alone")
	assert.Equal(t, afterNav.IsFlipped, st.IsFlipped)
	assert.Equal(t, afterNav.IsFinished, st.IsFinished)
	assert.False(t, st.IsMarking)
}

func TestMarkLearnedFailureKeepsPosition(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.ToggleFlip()
	before := s.State()

	m, err := s.MarkLearned(1, true)
	require.NoError(t, err)
	_, err = s.Settle(m, nil, errors.New("rejected"))
	require.Error(t, err)

	st := s.State()
	assert.False(t, st.Current.IsMemorized)
	assert.Equal(t, before.Index, st.Index)
	assert.Equal(t, before.IsFlipped, st.IsFlipped)
	assert.Equal(t, before.IsFinished, st.IsFinished)
}

func TestOverlappingMarksRollBackIndependently(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))

	m1, err := s.MarkLearned(1, true)
	require.NoError(t, err)
	m2, err := s.MarkLearned(2, true)
	require.NoError(t, err)
	assert.True(t, s.State().IsMarking)

	// The second mark fails first: it restores the state it started from,
	// which already includes the first mark.
	_, err = s.Settle(m2, nil, errors.New("rejected"))
	require.Error(t, err)
	st := s.State()
	assert.True(t, st.OrderedCards[0].IsMemorized)
	assert.False(t, st.OrderedCards[1].IsMemorized)
	assert.True(t, st.IsMarking)

	_, err = s.Settle(m1, nil, nil)
	require.NoError(t, err)
	st = s.State()
	assert.True(t, st.OrderedCards[0].IsMemorized)
	assert.False(t, st.OrderedCards[1].IsMemorized)
	assert.False(t, st.IsMarking)
}

func TestMarkLearnedSuccessDoesNotClobberOtherCards(t *testing.T) {
	store := newFakeStore(deck(1, 2))
	s := loaded(t, deck(1, 2))

	m1, _ := s.MarkLearned(1, true)
	m2, _ := s.MarkLearned(2, true)

	u1, err1 := m1.Persist(context.Background(), store)
	_, err := s.Settle(m1, u1, err1)
	require.NoError(t, err)
	assert.True(t, s.State().OrderedCards[1].IsMemorized, "card 2 keeps its optimistic value")

	u2, err2 := m2.Persist(context.Background(), store)
	_, err = s.Settle(m2, u2, err2)
	require.NoError(t, err)
	assert.True(t, s.State().OrderedCards[0].IsMemorized)
}

func TestMarkLearnedCallerErrors(t *testing.T) {
	s := NewSession(1)
	_, err := s.MarkLearned(1, true)
	assert.ErrorIs(t, err, ErrNotReady)

	require.True(t, s.ApplyFetch(s.ID(), deck(1, 2), nil))
	_, err = s.MarkLearned(42, true)
	var ce *CallerError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrUnknownCard)
	assert.Equal(t, int64(42), ce.CardID)
	assert.False(t, s.State().IsMarking)
}

func TestSettleAfterSessionReplacedIsNoop(t *testing.T) {
	s := loaded(t, deck(1, 2))
	m, err := s.MarkLearned(1, true)
	require.NoError(t, err)

	s.Open(2)
	require.True(t, s.ApplyFetch(s.ID(), deck(5, 6), nil))
	before := s.State()

	applied, err := s.Settle(m, nil, errors.New("late failure"))
	assert.False(t, applied)
	assert.NoError(t, err)
	assert.Equal(t, before, s.State())
}

func TestSummary(t *testing.T) {
	cards := deck(1, 2, 3, 4)
	cards[0].IsMemorized = true
	cards[3].IsMemorized = true
	s := loaded(t, cards)
	assert.Equal(t, Summary{Total: 4, Learned: 2, NotLearned: 2}, s.Summary())
}

func learnedByID(cards []flashcard.Flashcard) map[int64]bool {
	out := make(map[int64]bool, len(cards))
	for _, c := range cards {
		out[c.ID] = c.IsMemorized
	}
	return out
}

func TestMarkFailureKeepsLaterSettledMark(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))

	a, err := s.MarkLearned(1, true)
	require.NoError(t, err)
	b, err := s.MarkLearned(2, true)
	require.NoError(t, err)

	stored := deck(2)[0]
	stored.IsMemorized = true
	_, err = s.Settle(b, &stored, nil)
	require.NoError(t, err)
	_, err = s.Settle(a, nil, errors.New("rejected"))
	require.Error(t, err)

	assert.Equal(t, map[int64]bool{1: false, 2: true, 3: false}, learnedByID(s.State().OrderedCards))
	assert.False(t, s.State().IsMarking)
}

func TestMarkFailureKeepsLaterPendingMark(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))

	a, _ := s.MarkLearned(1, true)
	b, _ := s.MarkLearned(2, true)

	_, err := s.Settle(a, nil, errors.New("rejected"))
	require.Error(t, err)
	assert.Equal(t, map[int64]bool{1: false, 2: true, 3: false}, learnedByID(s.State().OrderedCards))
	assert.True(t, s.State().IsMarking)

	_, err = s.Settle(b, nil, nil)
	require.NoError(t, err)
	assert.False(t, s.State().IsMarking)
}

func TestMarkLearnedFailureAfterRefreshKeepsFetchedSet(t *testing.T) {
	s := loaded(t, deck(1, 2, 3, 4, 5))
	m, err := s.MarkLearned(1, true)
	require.NoError(t, err)

	refreshed := deck(1, 2, 3)
	refreshed[1].IsMemorized = true
	require.True(t, s.ApplyFetch(s.ID(), refreshed, nil))
	assert.True(t, s.State().OrderedCards[0].IsMemorized, "the pending mark survives the refresh")

	_, err = s.Settle(m, nil, errors.New("rejected"))
	require.Error(t, err)

	st := s.State()
	assert.Equal(t, []int64{1, 2, 3}, idsOf(st.OrderedCards))
	assert.Equal(t, map[int64]bool{1: false, 2: true, 3: false}, learnedByID(st.OrderedCards))
}

func TestMarkLearnedFailureAfterCardRemoved(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	m, _ := s.MarkLearned(3, true)

	require.True(t, s.ApplyFetch(s.ID(), deck(1, 2), nil))
	_, err := s.Settle(m, nil, flashcard.ErrNotFound)
	assert.ErrorIs(t, err, flashcard.ErrNotFound)
	assert.Equal(t, []int64{1, 2}, idsOf(s.State().OrderedCards))
}

func TestRefreshDuringMarkKeepsOptimisticValue(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.Next()
	m, err := s.MarkLearned(2, true)
	require.NoError(t, err)

	// The refetch was issued before the mark and still has the old flag.
	require.True(t, s.ApplyFetch(s.ID(), deck(1, 2, 3), nil))
	st := s.State()
	assert.True(t, st.Current.IsMemorized)
	assert.True(t, st.IsMarking)
	assert.Equal(t, 1, st.Index)

	stored := deck(2)[0]
	stored.IsMemorized = true
	_, err = s.Settle(m, &stored, nil)
	require.NoError(t, err)

	// The refetch after the settle agrees with the store.
	require.True(t, s.ApplyFetch(s.ID(), []flashcard.Flashcard{deck(1)[0], stored, deck(3)[0]}, nil))
	assert.Equal(t, map[int64]bool{1: false, 2: true, 3: false}, learnedByID(s.State().OrderedCards))
	assert.False(t, s.State().IsMarking)
}

func TestFailedRefreshKeepsCards(t *testing.T) {
	s := loaded(t, deck(1, 2, 3))
	s.Next()

	require.True(t, s.ApplyFetch(s.ID(), nil, errors.New("timeout")))
	st := s.State()
	assert.False(t, st.IsError)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Index)

	_, err := s.MarkLearned(2, true)
	assert.NoError(t, err, "a refresh never blocks marks")
}

func TestSettleTwiceIsNoop(t *testing.T) {
	s := loaded(t, deck(1, 2))
	m, _ := s.MarkLearned(1, true)

	applied, err := s.Settle(m, nil, nil)
	require.True(t, applied)
	require.NoError(t, err)

	applied, err = s.Settle(m, nil, errors.New("late"))
	assert.False(t, applied)
	assert.NoError(t, err)
	assert.True(t, s.State().OrderedCards[0].IsMemorized)
}

func TestEditNote(t *testing.T) {
	cards := deck(1, 2)
	cards[0].IsMemorized = true
	s := loaded(t, cards)

	m, err := s.EditNote(1, "ねこ舌")
	require.NoError(t, err)
	assert.True(t, m.Learned, "a note edit keeps the flag")
	assert.Equal(t, "ねこ舌", m.Note)
	assert.Equal(t, "ねこ舌", s.State().Current.Note)

	_, err = s.Settle(m, nil, errors.New("rejected"))
	require.Error(t, err)
	assert.Empty(t, s.State().Current.Note)

	_, err = s.EditNote(1, strings.Repeat("あ", flashcard.MaxNoteLen+1))
	var ce *CallerError
	assert.ErrorAs(t, err, &ce)
	assert.False(t, s.State().IsMarking)
}
