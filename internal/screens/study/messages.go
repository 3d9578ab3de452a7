package study

import (
	"github.com/gakuroku/gakuroku/internal/explain"
	"github.com/gakuroku/gakuroku/internal/flashcard"
	core "github.com/gakuroku/gakuroku/internal/study"
)

// cardsLoadedMsg carries the result of fetching the list's cards.
type cardsLoadedMsg struct {
	SessionID string
	Seq       uint64
	Cards     []flashcard.Flashcard
	Err       error
}

// persistedMsg carries the store's answer to a learned mark or note edit.
type persistedMsg struct {
	Mutation *core.Mutation
	Card     *flashcard.Flashcard
	Err      error
	// NoteEdit is set when the mutation only changed the note.
	NoteEdit bool
}

// explainedMsg carries a generated study note.
type explainedMsg struct {
	EntryID string
	Note    *explain.Note
	Err     error
}
