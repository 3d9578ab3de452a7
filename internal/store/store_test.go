package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })

	// A clock that advances one second per call keeps created_at ordering
	// deterministic.
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	return s
}

var testWords = []flashcard.Word{
	{ID: "1000", Kanji: "猫", Kana: "ねこ", IsCommon: true, Senses: []flashcard.Sense{{PartsOfSpeech: []string{"n"}, Glosses: []string{"cat"}}}},
	{ID: "1001", Kanji: "子猫", Kana: "こねこ", Senses: []flashcard.Sense{{PartsOfSpeech: []string{"n"}, Glosses: []string{"kitten"}}}},
	{ID: "1002", Kana: "ねこぜ", Senses: []flashcard.Sense{{Glosses: []string{"stoop", "hunchback"}}}},
	{ID: "1003", Kanji: "犬", Kana: "いぬ", IsCommon: true, Senses: []flashcard.Sense{{PartsOfSpeech: []string{"n"}, Glosses: []string{"dog"}}}},
	{ID: "1004", Kanji: "猫舌", Kana: "ねこじた", Senses: []flashcard.Sense{{Glosses: []string{"cat's tongue", "dislike of hot food"}}}},
}

func seed(t *testing.T, s *Store) *flashcard.List {
	t.Helper()
	ctx := context.Background()
	_, _, err := s.UpsertEntries(ctx, testWords)
	require.NoError(t, err)
	l, err := s.CreateList(ctx, "Animals")
	require.NoError(t, err)
	return l
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	var fk string
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, "1", fk)

	var sync string
	require.NoError(t, s.DB().QueryRow("PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, "1", sync) // NORMAL
}

func TestListsCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.CreateList(ctx, "  JLPT N5 ")
	require.NoError(t, err)
	assert.Equal(t, "JLPT N5", a.Name)
	b, err := s.CreateList(ctx, "Food")
	require.NoError(t, err)

	lists, err := s.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, b.ID, lists[0].ID, "newest first")
	assert.Equal(t, 0, lists[0].Count)

	updated, err := s.UpdateList(ctx, a.ID, "N5", "beginner words")
	require.NoError(t, err)
	assert.Equal(t, "N5", updated.Name)
	assert.Equal(t, "beginner words", updated.Description)

	_, err = s.UpdateList(ctx, 999, "x", "")
	assert.ErrorIs(t, err, flashcard.ErrNotFound)

	require.NoError(t, s.DeleteList(ctx, b.ID))
	assert.ErrorIs(t, s.DeleteList(ctx, b.ID), flashcard.ErrNotFound)
}

func TestCreateListValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateList(ctx, "   ")
	var inv *flashcard.InvalidError
	assert.ErrorAs(t, err, &inv)

	long := make([]rune, flashcard.MaxListNameLen+1)
	for i := range long {
		long[i] = 'あ'
	}
	_, err = s.CreateList(ctx, string(long))
	assert.ErrorAs(t, err, &inv)

	_, err = s.CreateList(ctx, string(long[:flashcard.MaxListNameLen]))
	assert.NoError(t, err)
}

func TestFetchCards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seed(t, s)

	cards, err := s.FetchCards(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.NotNil(t, cards)

	_, err = s.FetchCards(ctx, 404)
	assert.ErrorIs(t, err, flashcard.ErrNotFound)

	_, err = s.AddCard(ctx, l.ID, "1000", "")
	require.NoError(t, err)
	_, err = s.AddCard(ctx, l.ID, "1003", "woof")
	require.NoError(t, err)

	cards, err = s.FetchCards(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "1003", cards[0].EntryID, "newest first")
	assert.Equal(t, "woof", cards[0].Note)
	assert.Equal(t, "犬", cards[0].Word.Kanji)
	assert.Equal(t, []string{"dog"}, cards[0].Word.Senses[0].Glosses)
	assert.Equal(t, l.ID, cards[1].ListID)

	lists, err := s.Lists(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, lists[0].Count)
}

func TestFetchCardsSkipsUndecodableWord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seed(t, s)

	_, err := s.AddCard(ctx, l.ID, "1000", "")
	require.NoError(t, err)
	bad, err := s.AddCard(ctx, l.ID, "1003", "")
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx, "UPDATE entries SET word = ? WHERE id = ?", "{not json", "1003")
	require.NoError(t, err)

	cards, err := s.FetchCards(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "1000", cards[0].EntryID)

	_, err = s.Card(ctx, bad.ID)
	assert.ErrorIs(t, err, errBadWord)
}

type failingResult struct{}

func (failingResult) LastInsertId() (int64, error) { return 0, nil }
func (failingResult) RowsAffected() (int64, error) { return 0, errors.New("driver gone") }

func TestAffectedReportsDriverError(t *testing.T) {
	_, err := affected(failingResult{}, "delete card 7")
	assert.EqualError(t, err, "delete card 7: rows affected: driver gone")
}

func TestAddCardErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seed(t, s)

	_, err := s.AddCard(ctx, l.ID, "1000", "")
	require.NoError(t, err)

	_, err = s.AddCard(ctx, l.ID, "1000", "")
	assert.ErrorIs(t, err, flashcard.ErrDuplicate)

	_, err = s.AddCard(ctx, l.ID, "9999", "")
	assert.ErrorIs(t, err, flashcard.ErrNotFound)

	_, err = s.AddCard(ctx, 404, "1000", "")
	assert.ErrorIs(t, err, flashcard.ErrNotFound)

	_, err = s.AddCard(ctx, l.ID, "", "")
	var inv *flashcard.InvalidError
	assert.ErrorAs(t, err, &inv)
}

func TestPersistLearned(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seed(t, s)
	c, err := s.AddCard(ctx, l.ID, "1000", "old note")
	require.NoError(t, err)
	assert.False(t, c.IsMemorized)

	updated, err := s.PersistLearned(ctx, c.ID, true, "new note")
	require.NoError(t, err)
	assert.True(t, updated.IsMemorized)
	assert.Equal(t, "new note", updated.Note)
	assert.Equal(t, "猫", updated.Word.Kanji)

	_, err = s.PersistLearned(ctx, c.ID, false, "new note")
	require.NoError(t, err)

	_, err = s.PersistLearned(ctx, 404, true, "")
	assert.ErrorIs(t, err, flashcard.ErrNotFound)

	logs, err := s.StudyLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2024-03-10", logs[0].Date)
	assert.Equal(t, 2, logs[0].Count, "failed update is not counted")
}

func TestDeleteCardAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seed(t, s)
	a, err := s.AddCard(ctx, l.ID, "1000", "")
	require.NoError(t, err)
	b, err := s.AddCard(ctx, l.ID, "1001", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteCard(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteCard(ctx, a.ID), flashcard.ErrNotFound)

	require.NoError(t, s.DeleteList(ctx, l.ID))
	_, err = s.Card(ctx, b.ID)
	assert.ErrorIs(t, err, flashcard.ErrNotFound)
}

func TestResetListAndMastered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seed(t, s)
	for _, id := range []string{"1000", "1001", "1003"} {
		c, err := s.AddCard(ctx, l.ID, id, "")
		require.NoError(t, err)
		if id != "1001" {
			_, err = s.PersistLearned(ctx, c.ID, true, "")
			require.NoError(t, err)
		}
	}

	n, err := s.MasteredCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	changed, err := s.ResetList(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	n, err = s.MasteredCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.ResetList(ctx, 404)
	assert.ErrorIs(t, err, flashcard.ErrNotFound)
}

func TestUpsertEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, updated, err := s.UpsertEntries(ctx, testWords[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Zero(t, updated)

	changed := testWords[0]
	changed.Senses = []flashcard.Sense{{Glosses: []string{"cat", "geisha"}}}
	created, updated, err = s.UpsertEntries(ctx, []flashcard.Word{changed, testWords[2]})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, updated)

	w, err := s.Entry(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "geisha"}, w.Senses[0].Glosses)

	_, err = s.Entry(ctx, "nope")
	assert.ErrorIs(t, err, flashcard.ErrNotFound)
}

func TestSearchEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s)

	ids := func(words []flashcard.Word) []string {
		var out []string
		for _, w := range words {
			out = append(out, w.ID)
		}
		return out
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{"猫", []string{"1000", "1004"}},
		{"ねこ", []string{"1000", "1002", "1004"}},
		{"猫舌です", []string{"1000", "1004"}},
		{"dog", []string{"1003"}},
		{"Cat", []string{"1000", "1004"}},
		{"   ", nil},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, err := s.SearchEntries(ctx, tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"explain", "explain", "other"} {
		require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  10,
			OutputTokens: 20,
			LatencyMs:    5,
			Success:      true,
			RequestBody:  "[user]\nhello",
			ResponseBody: `{"ok":true}`,
		}))
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "other", events[0].Purpose, "newest first")

	events, err = repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "explain", Limit: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"ok":true}`, e.ResponseBody)
	assert.Equal(t, 20, e.OutputTokens)
	assert.False(t, e.Timestamp.IsZero())

	missing, err := repo.GetLLMEvent(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	usage, err := repo.LLMUsage(ctx, UsageByPurpose)
	require.NoError(t, err)
	assert.Empty(t, usage)

	for i, ev := range []LLMRequestEventData{
		{Model: "m1", Purpose: "explain", InputTokens: 100, OutputTokens: 50, LatencyMs: 10, Success: true},
		{Model: "m1", Purpose: "explain", InputTokens: 100, OutputTokens: 50, LatencyMs: 30, Success: false},
		{Model: "m2", Purpose: "other", InputTokens: 1, OutputTokens: 1, LatencyMs: 7, Success: true},
	} {
		ev.Provider = "mock"
		require.NoError(t, repo.AppendLLMRequest(ctx, ev), "event %d", i)
	}

	usage, err = repo.LLMUsage(ctx, UsageByPurpose)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, LLMUsageStats{
		Key: "explain", Calls: 2, Failures: 1, InputTokens: 200, OutputTokens: 100, AvgLatencyMs: 20,
	}, usage[0])
	assert.Equal(t, "other", usage[1].Key)

	usage, err = repo.LLMUsage(ctx, UsageByModel)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "m1", usage[0].Key)

	_, err = repo.LLMUsage(ctx, "provider")
	assert.Error(t, err)
}
