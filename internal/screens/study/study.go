// Package study is the flashcard study screen. It drives a study.Session
// from key presses and runs store and LLM calls as commands.
package study

import (
	"context"
	"errors"
	"fmt"
	"log"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/gakuroku/gakuroku/internal/explain"
	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/screen"
	core "github.com/gakuroku/gakuroku/internal/study"
	"github.com/gakuroku/gakuroku/internal/ui/components"
	"github.com/gakuroku/gakuroku/internal/ui/layout"
	"github.com/gakuroku/gakuroku/internal/ui/theme"
)

// StudyScreen implements screen.Screen for one list.
type StudyScreen struct {
	list      flashcard.List
	store     core.CardStore
	explainer *explain.Service
	session   *core.Session

	keys    keyMap
	note    components.TextInput
	spinner spinner.Model

	// fetches counts issued card fetches; applied is the newest one whose
	// result was installed. Older results arriving late are dropped.
	fetches uint64
	applied uint64

	// status is the last transient message, e.g. a failed save.
	status     string
	statusErr  bool
	explaining bool
	explainErr string
}

var (
	_ screen.Screen          = (*StudyScreen)(nil)
	_ screen.KeyHintProvider = (*StudyScreen)(nil)
	_ screen.InputCapturer   = (*StudyScreen)(nil)
	_ screen.StatusProvider  = (*StudyScreen)(nil)
)

// New creates a study screen for list. explainer may be nil.
func New(list flashcard.List, store core.CardStore, explainer *explain.Service, opts ...core.Option) *StudyScreen {
	return &StudyScreen{
		list:      list,
		store:     store,
		explainer: explainer,
		session:   core.NewSession(list.ID, opts...),
		keys:      defaultKeys(),
		note:      components.NewTextInput("Add a note…", flashcard.MaxNoteLen, 60),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Reading)),
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return tea.Batch(s.fetch(), s.spinner.Tick)
}

func (s *StudyScreen) Title() string {
	return s.list.Name
}

// Status shows the position and shuffle state in the header.
func (s *StudyScreen) Status() string {
	st := s.session.State()
	if st.IsLoading || st.IsError || st.Total == 0 {
		return ""
	}
	pos := fmt.Sprintf("%d/%d", min(st.Index+1, st.Total), st.Total)
	if st.IsShuffled {
		pos = "⇄ " + pos
	}
	return pos
}

func (s *StudyScreen) CapturingInput() bool {
	return s.note.Focused()
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	st := s.session.State()
	switch {
	case s.note.Focused():
		return hints(s.keys.Save, s.keys.Cancel)
	case st.IsError:
		return append(hints(s.keys.Retry), layout.KeyHint{Key: "Esc", Description: "Back"})
	case st.IsLoading:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case st.IsFinished:
		return append(hints(s.keys.Restart), layout.KeyHint{Key: "Esc", Description: "Back"})
	case st.Total == 0:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	h := hints(s.keys.Prev, s.keys.Flip, s.keys.Next, s.keys.NotLearned, s.keys.Learned, s.keys.Shuffle, s.keys.Note)
	if s.explainer.Enabled() {
		h = append(h, hints(s.keys.Explain)...)
	}
	return h
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsLoadedMsg:
		return s.handleLoaded(msg)

	case persistedMsg:
		return s.handlePersisted(msg)

	case explainedMsg:
		s.explaining = false
		if msg.Err != nil {
			s.explainErr = explainMessage(msg.Err)
		}
		return s, nil

	case spinner.TickMsg:
		if !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.note.Focused() {
		var cmd tea.Cmd
		s.note, cmd = s.note.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.note.Focused() {
		switch {
		case key.Matches(msg, s.keys.Save):
			return s, s.saveNote(s.note.Done())
		case key.Matches(msg, s.keys.Cancel):
			s.note.Done()
			return s, nil
		}
		var cmd tea.Cmd
		s.note, cmd = s.note.Update(msg)
		return s, cmd
	}

	st := s.session.State()
	switch {
	case st.IsError && key.Matches(msg, s.keys.Retry):
		s.session.Reload()
		return s, tea.Batch(s.fetch(), s.spinner.Tick)
	case st.Current != nil && key.Matches(msg, s.keys.Note):
		return s, s.note.Edit(st.Current.Note)
	case st.Current != nil && key.Matches(msg, s.keys.Explain):
		return s, s.explain(st.Current.Word)
	case key.Matches(msg, s.keys.Reshuffle):
		s.session.Reshuffle()
		return s, nil
	}

	sig := s.keys.signal(msg)
	if sig == core.SignalNone {
		return s, nil
	}
	s.explainErr = ""
	m, err := s.session.Dispatch(core.Input{
		Signal:       sig,
		FromKeyboard: true,
		TextFocused:  s.note.Focused(),
	})
	if err != nil {
		s.setStatus(err.Error(), true)
		return s, nil
	}
	if m == nil {
		return s, nil
	}
	s.status = ""
	return s, s.persist(m, false)
}

func (s *StudyScreen) handleLoaded(msg cardsLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.SessionID == s.session.ID() && msg.Seq < s.applied {
		return s, nil
	}
	if !s.session.ApplyFetch(msg.SessionID, msg.Cards, msg.Err) {
		return s, nil
	}
	s.applied = msg.Seq
	if msg.Err != nil {
		log.Printf("study: list %d: %v", s.list.ID, msg.Err)
		if !s.session.State().IsError {
			s.setStatus("Couldn't refresh cards", true)
		}
	}
	return s, nil
}

// handlePersisted settles a mark and refetches the list so the cache
// converges on what the store holds, whatever the outcome.
func (s *StudyScreen) handlePersisted(msg persistedMsg) (screen.Screen, tea.Cmd) {
	applied, err := s.session.Settle(msg.Mutation, msg.Card, msg.Err)
	if !applied {
		return s, nil
	}
	if err != nil {
		log.Printf("study: %v", err)
		s.setStatus(persistMessage(err), true)
	} else if msg.NoteEdit {
		s.setStatus("Note saved", false)
	}
	return s, s.fetch()
}

// saveNote persists a note edit for the current card through the same
// optimistic path as a learned mark.
func (s *StudyScreen) saveNote(note string) tea.Cmd {
	st := s.session.State()
	if st.Current == nil {
		return nil
	}
	m, err := s.session.EditNote(st.Current.ID, note)
	if err != nil {
		s.setStatus(err.Error(), true)
		return nil
	}
	return s.persist(m, true)
}

func (s *StudyScreen) fetch() tea.Cmd {
	s.fetches++
	id, seq, listID, store := s.session.ID(), s.fetches, s.session.ListID(), s.store
	return func() tea.Msg {
		cards, err := store.FetchCards(context.Background(), listID)
		return cardsLoadedMsg{SessionID: id, Seq: seq, Cards: cards, Err: err}
	}
}

func (s *StudyScreen) persist(m *core.Mutation, noteEdit bool) tea.Cmd {
	store := s.store
	return func() tea.Msg {
		card, err := m.Persist(context.Background(), store)
		return persistedMsg{Mutation: m, Card: card, Err: err, NoteEdit: noteEdit}
	}
}

func (s *StudyScreen) explain(w flashcard.Word) tea.Cmd {
	if !s.explainer.Enabled() {
		s.explainErr = "No LLM provider configured"
		return nil
	}
	if _, ok := s.explainer.Cached(w.ID); ok || s.explaining {
		return nil
	}
	s.explaining = true
	s.explainErr = ""
	explainer := s.explainer
	return tea.Batch(func() tea.Msg {
		note, err := explainer.Explain(context.Background(), w)
		return explainedMsg{EntryID: w.ID, Note: note, Err: err}
	}, s.spinner.Tick)
}

func (s *StudyScreen) busy() bool {
	return s.explaining || s.session.State().IsLoading
}

func (s *StudyScreen) setStatus(msg string, isErr bool) {
	s.status = msg
	s.statusErr = isErr
}

func persistMessage(err error) string {
	var pe *core.PersistError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	if errors.Is(err, flashcard.ErrNotFound) {
		return "Couldn't save: the card was deleted"
	}
	return fmt.Sprintf("Couldn't save: %v", errors.Unwrap(pe))
}

func explainMessage(err error) string {
	if errors.Is(err, explain.ErrNoProvider) {
		return "No LLM provider configured"
	}
	return fmt.Sprintf("Explanation failed: %v", err)
}
