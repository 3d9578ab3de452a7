package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/server"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newClient(t *testing.T, token string, opts ...Option) *Client {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, _, err = st.UpsertEntries(context.Background(), []flashcard.Word{
		{ID: "2000", Kanji: "水", Kana: "みず", Senses: []flashcard.Sense{{Glosses: []string{"water"}}}},
		{ID: "2001", Kanji: "火", Kana: "ひ", Senses: []flashcard.Sense{{Glosses: []string{"fire"}}}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(server.New(st, stats.NewService(st), server.Options{Token: token, Quiet: true}).Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, opts...)
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, "")

	l, err := c.CreateList(ctx, "Elements")
	require.NoError(t, err)
	assert.Equal(t, "Elements", l.Name)

	_, err = c.CreateList(ctx, "Elements")
	assert.ErrorIs(t, err, flashcard.ErrDuplicate)

	card, err := c.AddCard(ctx, l.ID, "2000", "")
	require.NoError(t, err)
	assert.Equal(t, "水", card.Word.Kanji)

	_, err = c.AddCard(ctx, l.ID, "9999", "")
	var invalid *flashcard.InvalidError
	assert.ErrorAs(t, err, &invalid)

	cards, err := c.FetchCards(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	updated, err := c.PersistLearned(ctx, card.ID, true, "flows")
	require.NoError(t, err)
	assert.True(t, updated.IsMemorized)
	assert.Equal(t, "flows", updated.Note)

	renamed, err := c.UpdateList(ctx, l.ID, "五行", "")
	require.NoError(t, err)
	assert.Equal(t, "五行", renamed.Name)

	lists, err := c.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 1, lists[0].Count)

	words, err := c.SearchEntries(ctx, "fire")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "2001", words[0].ID)

	require.NoError(t, c.DeleteCard(ctx, card.ID))
	assert.ErrorIs(t, c.DeleteCard(ctx, card.ID), flashcard.ErrNotFound)
	require.NoError(t, c.DeleteList(ctx, l.ID))
}

func TestClientEmptyListIsNotNil(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, "")
	l, err := c.CreateList(ctx, "empty")
	require.NoError(t, err)

	cards, err := c.FetchCards(ctx, l.ID)
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestClientNotFound(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, "")

	_, err := c.FetchCards(ctx, 404)
	assert.ErrorIs(t, err, flashcard.ErrNotFound)

	_, err = c.PersistLearned(ctx, 404, true, "")
	assert.ErrorIs(t, err, flashcard.ErrNotFound)
}

func TestClientStats(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, "")

	ov, err := c.Overview(ctx)
	require.NoError(t, err)
	assert.Zero(t, ov.TotalReviews)

	days, err := c.Heatmap(ctx)
	require.NoError(t, err)
	assert.Len(t, days, stats.HeatmapDays)
}

func TestClientToken(t *testing.T) {
	ctx := context.Background()

	_, err := newClient(t, "tok").Lists(ctx)
	var netErr *flashcard.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusUnauthorized, netErr.StatusCode)

	_, err = newClient(t, "tok", WithToken("tok")).Lists(ctx)
	assert.NoError(t, err)
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Lists(context.Background())
	var netErr *flashcard.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestClientCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := New(srv.URL, 5*time.Second).Lists(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestStatusErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream down</html>"))
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, time.Second).Lists(context.Background())
	var netErr *flashcard.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
	assert.Contains(t, netErr.Error(), "Bad Gateway")
}
