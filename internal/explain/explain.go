// Package explain asks a language model for example sentences and a
// mnemonic for a dictionary word.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/llm"
	"golang.org/x/sync/singleflight"
)

// Purpose labels explain requests in the LLM request log.
const Purpose = "explain"

// Sentence is an example sentence with its translation.
type Sentence struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

// Note is the generated study aid for one word.
type Note struct {
	EntryID   string     `json:"-"`
	Sentences []Sentence `json:"sentences"`
	Mnemonic  string     `json:"mnemonic"`
}

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	Sentences   int // example sentences to ask for
}

// DefaultConfig returns the generation settings used by the TUI.
func DefaultConfig() Config {
	return Config{MaxTokens: 600, Temperature: 0.4, Sentences: 2}
}

// ErrNoProvider is returned by a Service built without a provider.
var ErrNoProvider = errors.New("no LLM provider configured")

// Service generates notes and caches them per entry id. Concurrent requests
// for the same entry share one model call.
type Service struct {
	provider llm.Provider
	cfg      Config

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*Note
}

// NewService creates a Service. provider may be nil, in which case Explain
// always fails with ErrNoProvider.
func NewService(provider llm.Provider, cfg Config) *Service {
	if cfg.Sentences <= 0 {
		cfg.Sentences = DefaultConfig().Sentences
	}
	return &Service{provider: provider, cfg: cfg, cache: map[string]*Note{}}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Cached returns a previously generated note.
func (s *Service) Cached(entryID string) (*Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.cache[entryID]
	return n, ok
}

// Explain returns the note for w, generating it on first use.
func (s *Service) Explain(ctx context.Context, w flashcard.Word) (*Note, error) {
	if !s.Enabled() {
		return nil, ErrNoProvider
	}
	if n, ok := s.Cached(w.ID); ok {
		return n, nil
	}

	v, err, _ := s.group.Do(w.ID, func() (any, error) {
		n, err := s.generate(ctx, w)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[w.ID] = n
		s.mu.Unlock()
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Note), nil
}

// Forget drops a cached note so the next Explain regenerates it.
func (s *Service) Forget(entryID string) {
	s.mu.Lock()
	delete(s.cache, entryID)
	s.mu.Unlock()
}

func (s *Service) generate(ctx context.Context, w flashcard.Word) (*Note, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.UserPrompt(systemPrompt, buildPrompt(w, s.cfg.Sentences))
	req.Schema = NoteSchema
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("explain %s: %w", w.Headword(), err)
	}

	var n Note
	if err := json.Unmarshal(resp.Content, &n); err != nil {
		return nil, fmt.Errorf("parse explanation: %w", err)
	}
	n.EntryID = w.ID
	n.Mnemonic = strings.TrimSpace(n.Mnemonic)
	return &n, nil
}
