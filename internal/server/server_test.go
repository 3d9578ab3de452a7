package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var words = []flashcard.Word{
	{ID: "1000", Kanji: "猫", Kana: "ねこ", IsCommon: true, Senses: []flashcard.Sense{{PartsOfSpeech: []string{"n"}, Glosses: []string{"cat"}}}},
	{ID: "1001", Kanji: "犬", Kana: "いぬ", Senses: []flashcard.Sense{{Glosses: []string{"dog"}}}},
}

func newTestServer(t *testing.T, opts Options) (http.Handler, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, _, err = st.UpsertEntries(context.Background(), words)
	require.NoError(t, err)

	opts.Quiet = true
	return New(st, stats.NewService(st), opts).Handler(), st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, Options{})
	rr := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestListRoutes(t *testing.T) {
	h, _ := newTestServer(t, Options{})

	rr := do(t, h, http.MethodPost, "/api/lists", map[string]string{"name": "JLPT N5"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	created := decode[flashcard.List](t, rr)
	assert.Equal(t, "JLPT N5", created.Name)

	rr = do(t, h, http.MethodPost, "/api/lists", map[string]string{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/lists", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	lists := decode[[]flashcard.List](t, rr)
	require.Len(t, lists, 1)
	assert.Equal(t, 0, lists[0].Count)

	rr = do(t, h, http.MethodPatch, "/api/lists/1", map[string]string{"name": "N5", "description": "basics"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "basics", decode[flashcard.List](t, rr).Description)

	rr = do(t, h, http.MethodPatch, "/api/lists/99", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail":"List not found"}`, rr.Body.String())

	rr = do(t, h, http.MethodPatch, "/api/lists/abc", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/lists/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":true}`, rr.Body.String())

	rr = do(t, h, http.MethodDelete, "/api/lists/1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFlashcardRoutes(t *testing.T) {
	h, _ := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/lists", map[string]string{"name": "Animals"}).Code)

	rr := do(t, h, http.MethodPost, "/api/flashcards", map[string]any{"list_id": 1, "entry_id": "1000", "note": "meow"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	card := decode[flashcard.Flashcard](t, rr)
	assert.Equal(t, "猫", card.Word.Kanji)
	assert.False(t, card.IsMemorized)

	rr = do(t, h, http.MethodPost, "/api/flashcards", map[string]any{"list_id": 1, "entry_id": "1000"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/flashcards", map[string]any{"list_id": 1, "entry_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/flashcards", map[string]any{"list_id": 0, "entry_id": "1000"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPatch, "/api/flashcards/1", map[string]any{"is_memorized": true})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[flashcard.Flashcard](t, rr)
	assert.True(t, updated.IsMemorized)
	assert.Empty(t, updated.Note, "an omitted note clears it")

	rr = do(t, h, http.MethodPatch, "/api/flashcards/1", map[string]any{"note": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "is_memorized is required")

	rr = do(t, h, http.MethodPatch, "/api/flashcards/42", map[string]any{"is_memorized": false})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail":"Flashcard not found"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/lists/1/flashcards", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]flashcard.Flashcard](t, rr), 1)

	rr = do(t, h, http.MethodGet, "/api/lists/7/flashcards", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/flashcards/1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodDelete, "/api/flashcards/1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearchAndStats(t *testing.T) {
	h, _ := newTestServer(t, Options{})

	rr := do(t, h, http.MethodGet, "/api/search?keyword=dog", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found := decode[[]flashcard.Word](t, rr)
	require.Len(t, found, 1)
	assert.Equal(t, "1001", found[0].ID)

	rr = do(t, h, http.MethodGet, "/api/search?keyword=zzz", nil)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/stats/heatmap", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]stats.DayCount](t, rr), stats.HeatmapDays)

	rr = do(t, h, http.MethodGet, "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total_reviews":0,"mastered_words":0,"current_streak":0,"longest_streak":0}`, rr.Body.String())
}

func TestBearerToken(t *testing.T) {
	h, _ := newTestServer(t, Options{Token: "s3cret"})

	rr := do(t, h, http.MethodGet, "/api/lists", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/lists", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code, "health is public")
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/lists", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/lists", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

type brokenStore struct{ CardStore }

func (brokenStore) Lists(context.Context) ([]flashcard.List, error) {
	return nil, errors.New("disk I/O error")
}

func TestDatabaseErrorIs503(t *testing.T) {
	h := New(brokenStore{}, nil, Options{Quiet: true}).Handler()
	rr := do(t, h, http.MethodGet, "/api/lists", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"detail":"Database connection error"}`, rr.Body.String())
}
