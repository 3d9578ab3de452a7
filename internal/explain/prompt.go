package explain

import (
	"fmt"
	"strings"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/llm"
)

const systemPrompt = `You are a friendly Japanese tutor helping an English-speaking learner memorise vocabulary from flashcards. Keep sentences short and natural, at a level a beginner to intermediate learner can follow.`

// NoteSchema is the shape of a generated note.
var NoteSchema = &llm.Schema{
	Name:        "word-note",
	Description: "Example sentences and a memory aid for one Japanese word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentences": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"japanese": map[string]any{
							"type":        "string",
							"description": "Example sentence in Japanese using the word",
						},
						"english": map[string]any{
							"type":        "string",
							"description": "Natural English translation",
						},
					},
					"required":             []any{"japanese", "english"},
					"additionalProperties": false,
				},
				"minItems": 1,
			},
			"mnemonic": map[string]any{
				"type":        "string",
				"description": "One or two sentences linking the sound or shape of the word to its meaning",
			},
		},
		"required":             []any{"sentences", "mnemonic"},
		"additionalProperties": false,
	},
}

func buildPrompt(w flashcard.Word, sentences int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Word: %s\n", w.Headword())
	if w.Kanji != "" {
		fmt.Fprintf(&b, "Reading: %s\n", w.Kana)
	}
	if w.IsCommon {
		b.WriteString("Frequency: common\n")
	}
	b.WriteString("\nMeanings:\n")
	for i, s := range w.Senses {
		pos := ""
		if len(s.PartsOfSpeech) > 0 {
			pos = " (" + strings.Join(s.PartsOfSpeech, ", ") + ")"
		}
		fmt.Fprintf(&b, "%d.%s %s\n", i+1, pos, strings.Join(s.Glosses, "; "))
	}

	fmt.Fprintf(&b, `
Instructions:
1. Write %d example sentences that use the word in its first meaning, each with an English translation.
2. Write a short mnemonic that helps remember the word.
3. Do not include romaji or furigana in brackets.`, sentences)

	return b.String()
}
