// Package flashcard defines the vocabulary domain shared by the card store,
// the REST API and the study session.
package flashcard

import "strings"

// Sense is one meaning of a dictionary word.
type Sense struct {
	PartsOfSpeech []string `json:"parts_of_speech"`
	Glosses       []string `json:"glosses"`
}

// Word is the dictionary payload embedded in every flashcard.
type Word struct {
	ID       string  `json:"id"`
	Kanji    string  `json:"kanji,omitempty"`
	Kana     string  `json:"kana"`
	IsCommon bool    `json:"is_common"`
	Senses   []Sense `json:"senses"`
}

// Headword returns the written form shown on the card front: the first
// kanji spelling, or the kana reading for kana-only words.
func (w Word) Headword() string {
	if w.Kanji != "" {
		return w.Kanji
	}
	return w.Kana
}

// GlossText joins every gloss into a single searchable string.
func (w Word) GlossText() string {
	var parts []string
	for _, s := range w.Senses {
		parts = append(parts, s.Glosses...)
	}
	return strings.Join(parts, "; ")
}

// Flashcard is one list-scoped study unit.
type Flashcard struct {
	ID          int64  `json:"id"`
	ListID      int64  `json:"list_id"`
	EntryID     string `json:"entry_id"`
	Note        string `json:"note,omitempty"`
	IsMemorized bool   `json:"is_memorized"`
	Word        Word   `json:"word_data"`
}

// List is a named vocabulary list.
type List struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
}

// Field limits enforced by the store and the REST API.
const (
	MaxListNameLen = 100
	MaxEntryIDLen  = 20
	MaxNoteLen     = 2000
)

// ValidateListName checks a list name against the length limits.
func ValidateListName(name string) error {
	n := len([]rune(strings.TrimSpace(name)))
	if n == 0 || n > MaxListNameLen {
		return &InvalidError{Field: "name", Reason: "must be 1-100 characters"}
	}
	return nil
}

// ValidateNote checks a note against the length limit.
func ValidateNote(note string) error {
	if len([]rune(note)) > MaxNoteLen {
		return &InvalidError{Field: "note", Reason: "must be at most 2000 characters"}
	}
	return nil
}

// ValidateEntryID checks a dictionary entry reference.
func ValidateEntryID(id string) error {
	n := len(id)
	if n == 0 || n > MaxEntryIDLen {
		return &InvalidError{Field: "entry_id", Reason: "must be 1-20 characters"}
	}
	return nil
}
