package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// jmdictWord mirrors one entry of the JMdict-simplified JSON distribution.
type jmdictWord struct {
	ID    string `json:"id"`
	Kanji []struct {
		Common bool   `json:"common"`
		Text   string `json:"text"`
	} `json:"kanji"`
	Kana []struct {
		Common bool   `json:"common"`
		Text   string `json:"text"`
	} `json:"kana"`
	Sense []struct {
		PartOfSpeech []string `json:"partOfSpeech"`
		Gloss        []struct {
			Lang string `json:"lang"`
			Text string `json:"text"`
		} `json:"gloss"`
	} `json:"sense"`
}

// toWord keeps the first spelling and reading, marks the word common when
// any form is common, and keeps English glosses only.
func (j jmdictWord) toWord() flashcard.Word {
	w := flashcard.Word{ID: j.ID, Senses: []flashcard.Sense{}}
	if len(j.Kanji) > 0 {
		w.Kanji = j.Kanji[0].Text
	}
	if len(j.Kana) > 0 {
		w.Kana = j.Kana[0].Text
	}
	for _, k := range j.Kanji {
		w.IsCommon = w.IsCommon || k.Common
	}
	for _, k := range j.Kana {
		w.IsCommon = w.IsCommon || k.Common
	}
	for _, s := range j.Sense {
		sense := flashcard.Sense{PartsOfSpeech: []string{}, Glosses: []string{}}
		for _, p := range s.PartOfSpeech {
			if p != "" {
				sense.PartsOfSpeech = append(sense.PartsOfSpeech, p)
			}
		}
		for _, g := range s.Gloss {
			if g.Lang != "" && g.Lang != "eng" {
				continue
			}
			if g.Text != "" {
				sense.Glosses = append(sense.Glosses, g.Text)
			}
		}
		w.Senses = append(w.Senses, sense)
	}
	return w
}

func (im *Importer) importJSONFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return im.ImportJMdict(ctx, f)
}

// ImportJMdict streams the "words" array of a JMdict-simplified document
// into the store.
func (im *Importer) ImportJMdict(ctx context.Context, r io.Reader) (*Result, error) {
	dec := json.NewDecoder(r)
	if err := seekArray(dec, "words"); err != nil {
		return nil, err
	}

	b := im.newBatch()
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return b.result, err
		}
		var jw jmdictWord
		if err := dec.Decode(&jw); err != nil {
			return b.result, fmt.Errorf("decode word %d: %w", b.result.TotalProcessed+1, err)
		}
		b.result.TotalProcessed++

		w := jw.toWord()
		if w.Kana == "" && w.Kanji == "" {
			b.result.Skipped++
			b.result.Errors = append(b.result.Errors, fmt.Sprintf("word %s: no written form", jw.ID))
			continue
		}
		if err := flashcard.ValidateEntryID(w.ID); err != nil {
			b.result.Skipped++
			b.result.Errors = append(b.result.Errors, fmt.Sprintf("word %q: %v", jw.ID, err))
			continue
		}
		if err := b.add(ctx, w, ""); err != nil {
			return b.result, err
		}
	}
	if err := b.flush(ctx); err != nil {
		return b.result, err
	}
	return b.result, nil
}

// seekArray advances dec to just inside the top-level array stored under key.
func seekArray(dec *json.Decoder, key string) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read dictionary: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("dictionary must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read dictionary: %w", err)
		}
		name, _ := tok.(string)
		if name != key {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("skip %q: %w", name, err)
			}
			continue
		}
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("read %q: %w", key, err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return fmt.Errorf("%q must be an array", key)
		}
		return nil
	}
	return fmt.Errorf("dictionary has no %q array", key)
}
