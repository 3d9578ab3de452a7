// Package api is the HTTP client for a remote gakuroku server. It serves the
// same interfaces as the local store so the TUI can study against either.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/study"
)

// Client talks to the REST API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

var (
	_ study.CardStore = (*Client)(nil)
	_ stats.Provider  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		base: baseURL,
		http: &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchCards returns every card on a list.
func (c *Client) FetchCards(ctx context.Context, listID int64) ([]flashcard.Flashcard, error) {
	var cards []flashcard.Flashcard
	if err := c.do(ctx, http.MethodGet, "/api/lists/"+itoa(listID)+"/flashcards", nil, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []flashcard.Flashcard{}
	}
	return cards, nil
}

// PersistLearned updates a card's memorized flag and note.
func (c *Client) PersistLearned(ctx context.Context, cardID int64, learned bool, note string) (*flashcard.Flashcard, error) {
	body := map[string]any{"is_memorized": learned, "note": note}
	var card flashcard.Flashcard
	if err := c.do(ctx, http.MethodPatch, "/api/flashcards/"+itoa(cardID), body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Lists returns every list.
func (c *Client) Lists(ctx context.Context) ([]flashcard.List, error) {
	var lists []flashcard.List
	if err := c.do(ctx, http.MethodGet, "/api/lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateList creates an empty list.
func (c *Client) CreateList(ctx context.Context, name string) (*flashcard.List, error) {
	var l flashcard.List
	if err := c.do(ctx, http.MethodPost, "/api/lists", map[string]string{"name": name}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateList renames a list.
func (c *Client) UpdateList(ctx context.Context, id int64, name, description string) (*flashcard.List, error) {
	body := map[string]string{"name": name, "description": description}
	var l flashcard.List
	if err := c.do(ctx, http.MethodPatch, "/api/lists/"+itoa(id), body, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteList removes a list and its cards.
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/lists/"+itoa(id), nil, nil)
}

// AddCard puts an entry on a list.
func (c *Client) AddCard(ctx context.Context, listID int64, entryID, note string) (*flashcard.Flashcard, error) {
	body := map[string]any{"list_id": listID, "entry_id": entryID, "note": note}
	var card flashcard.Flashcard
	if err := c.do(ctx, http.MethodPost, "/api/flashcards", body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard removes a card.
func (c *Client) DeleteCard(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/flashcards/"+itoa(id), nil, nil)
}

// SearchEntries runs a dictionary search.
func (c *Client) SearchEntries(ctx context.Context, keyword string) ([]flashcard.Word, error) {
	var words []flashcard.Word
	path := "/api/search?" + url.Values{"keyword": {keyword}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// Overview returns study totals and streaks.
func (c *Client) Overview(ctx context.Context) (*stats.Overview, error) {
	var ov stats.Overview
	if err := c.do(ctx, http.MethodGet, "/api/stats/overview", nil, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

// Heatmap returns daily review counts for the last year.
func (c *Client) Heatmap(ctx context.Context) ([]stats.DayCount, error) {
	var days []stats.DayCount
	if err := c.do(ctx, http.MethodGet, "/api/stats/heatmap", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &flashcard.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &flashcard.NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return nil
}

// statusError converts an error response into the flashcard error types.
func statusError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &payload) != nil || payload.Detail == "" {
		payload.Detail = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", payload.Detail, flashcard.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", payload.Detail, flashcard.ErrDuplicate)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &flashcard.InvalidError{Field: "request", Reason: payload.Detail}
	}
	return &flashcard.NetworkError{StatusCode: resp.StatusCode, Err: errors.New(payload.Detail)}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
