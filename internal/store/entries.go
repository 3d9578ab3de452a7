package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// SearchLimit caps the number of search results.
const SearchLimit = 10

// searchCandidates bounds the rows ranked in memory per search.
const searchCandidates = 200

// UpsertEntries inserts or replaces dictionary entries and reports how many
// were created and how many updated.
func (s *Store) UpsertEntries(ctx context.Context, words []flashcard.Word) (created, updated int, err error) {
	err = s.withTx(ctx, func(tx dialect.Tx) error {
		for _, w := range words {
			if err := flashcard.ValidateEntryID(w.ID); err != nil {
				return fmt.Errorf("entry %q: %w", w.ID, err)
			}
			raw, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("encode entry %s: %w", w.ID, err)
			}

			found, err := exists(ctx, tx, entriesTable.Name, "id", w.ID)
			if err != nil {
				return fmt.Errorf("lookup entry %s: %w", w.ID, err)
			}

			var q entsql.Querier
			if found {
				q = builder().Update(entriesTable.Name).
					Set("headword", w.Headword()).
					Set("reading", w.Kana).
					Set("gloss_text", w.GlossText()).
					Set("is_common", w.IsCommon).
					Set("word", string(raw)).
					Where(entsql.EQ("id", w.ID))
				updated++
			} else {
				q = builder().Insert(entriesTable.Name).
					Columns("id", "headword", "reading", "gloss_text", "is_common", "word").
					Values(w.ID, w.Headword(), w.Kana, w.GlossText(), w.IsCommon, string(raw))
				created++
			}
			if _, err := exec(ctx, tx, q); err != nil {
				return fmt.Errorf("save entry %s: %w", w.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

// Entry returns one dictionary entry.
func (s *Store) Entry(ctx context.Context, id string) (*flashcard.Word, error) {
	q := builder().Select("word").From(entsql.Table(entriesTable.Name)).Where(entsql.EQ("id", id))

	var word *flashcard.Word
	err := query(ctx, s.drv, q, func(rows *entsql.Rows) error {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		word = &flashcard.Word{}
		return json.Unmarshal([]byte(raw), word)
	})
	if err != nil {
		return nil, fmt.Errorf("query entry %s: %w", id, err)
	}
	if word == nil {
		return nil, fmt.Errorf("entry %s: %w", id, flashcard.ErrNotFound)
	}
	return word, nil
}

type candidate struct {
	word     flashcard.Word
	headword string
	reading  string
	gloss    string
}

// SearchEntries looks up entries by headword, reading or English gloss and
// returns the best SearchLimit matches.
func (s *Store) SearchEntries(ctx context.Context, keyword string) ([]flashcard.Word, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []flashcard.Word{}, nil
	}

	q := builder().Select("headword", "reading", "gloss_text", "word").
		From(entsql.Table(entriesTable.Name)).
		Where(entsql.Or(
			entsql.EQ("headword", keyword),
			entsql.HasPrefix("headword", keyword),
			entsql.EQ("reading", keyword),
			entsql.HasPrefix("reading", keyword),
			entsql.ExprP("? LIKE headword || '%'", keyword),
			entsql.ExprP("? LIKE reading || '%'", keyword),
			entsql.Contains("gloss_text", keyword),
		)).
		Limit(searchCandidates)

	var cands []candidate
	err := query(ctx, s.drv, q, func(rows *entsql.Rows) error {
		var c candidate
		var raw string
		if err := rows.Scan(&c.headword, &c.reading, &c.gloss, &raw); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &c.word); err != nil {
			return nil
		}
		cands = append(cands, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	rankCandidates(keyword, cands)
	out := make([]flashcard.Word, 0, min(len(cands), SearchLimit))
	for i := 0; i < len(cands) && i < SearchLimit; i++ {
		out = append(out, cands[i].word)
	}
	return out, nil
}

// rankCandidates orders search hits: exact headword, exact reading, entry
// that prefixes the keyword, headword prefix, reading prefix, common words,
// whole-word gloss, gloss prefix, then shorter headwords.
func rankCandidates(keyword string, cands []candidate) {
	lower := strings.ToLower(keyword)
	wholeWord := regexp.MustCompile(`(^|[^0-9a-z])` + regexp.QuoteMeta(lower) + `([^0-9a-z]|$)`)

	score := func(c candidate) []bool {
		gloss := strings.ToLower(c.gloss)
		return []bool{
			c.headword == keyword,
			c.reading == keyword,
			c.headword != "" && strings.HasPrefix(keyword, c.headword),
			c.reading != "" && strings.HasPrefix(keyword, c.reading),
			strings.HasPrefix(c.headword, keyword),
			strings.HasPrefix(c.reading, keyword),
			c.word.IsCommon,
			wholeWord.MatchString(gloss),
			strings.HasPrefix(gloss, lower),
		}
	}

	scores := make(map[string][]bool, len(cands))
	for _, c := range cands {
		scores[c.word.ID] = score(c)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := scores[cands[i].word.ID], scores[cands[j].word.ID]
		for k := range a {
			if a[k] != b[k] {
				return a[k]
			}
		}
		la, lb := utf8.RuneCountInString(cands[i].headword), utf8.RuneCountInString(cands[j].headword)
		if la != lb {
			return la < lb
		}
		return cands[i].headword < cands[j].headword
	})
}
