package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// errBadWord marks a card whose stored dictionary entry cannot be decoded.
var errBadWord = errors.New("undecodable word")

// cardSelector selects flashcards joined with their dictionary entries.
func cardSelector() (*entsql.Selector, *entsql.SelectTable) {
	f := entsql.Table(flashcardsTable.Name)
	e := entsql.Table(entriesTable.Name)
	sel := builder().
		Select(f.C("id"), f.C("list_id"), f.C("entry_id"), f.C("note"), f.C("is_memorized"), e.C("word")).
		From(f).
		Join(e).On(f.C("entry_id"), e.C("id"))
	return sel, f
}

func scanCard(rows *entsql.Rows) (flashcard.Flashcard, error) {
	var (
		c    flashcard.Flashcard
		word string
	)
	if err := rows.Scan(&c.ID, &c.ListID, &c.EntryID, &c.Note, &c.IsMemorized, &word); err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(word), &c.Word); err != nil {
		return c, fmt.Errorf("card %d: %w: %v", c.ID, errBadWord, err)
	}
	if c.Word.ID == "" {
		c.Word.ID = c.EntryID
	}
	return c, nil
}

// FetchCards returns the cards of a list, newest first. A missing list is
// reported as flashcard.ErrNotFound; an existing empty list yields an empty
// slice. Cards whose dictionary entry cannot be decoded are logged and left
// out.
func (s *Store) FetchCards(ctx context.Context, listID int64) ([]flashcard.Flashcard, error) {
	if err := s.requireList(ctx, s.drv, listID); err != nil {
		return nil, err
	}

	sel, f := cardSelector()
	sel.Where(entsql.EQ(f.C("list_id"), listID)).
		OrderBy(entsql.Desc(f.C("created_at")), entsql.Desc(f.C("id")))

	cards := []flashcard.Flashcard{}
	err := query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		c, err := scanCard(rows)
		if errors.Is(err, errBadWord) {
			log.Printf("store: list %d: skipping %v", listID, err)
			return nil
		}
		if err != nil {
			return err
		}
		cards = append(cards, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query cards for list %d: %w", listID, err)
	}
	return cards, nil
}

// Card returns a single flashcard.
func (s *Store) Card(ctx context.Context, id int64) (*flashcard.Flashcard, error) {
	return getCard(ctx, s.drv, id)
}

func getCard(ctx context.Context, conn execQuerier, id int64) (*flashcard.Flashcard, error) {
	sel, f := cardSelector()
	sel.Where(entsql.EQ(f.C("id"), id))

	var card *flashcard.Flashcard
	err := query(ctx, conn, sel, func(rows *entsql.Rows) error {
		c, err := scanCard(rows)
		if err != nil {
			return err
		}
		card = &c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query card %d: %w", id, err)
	}
	if card == nil {
		return nil, fmt.Errorf("card %d: %w", id, flashcard.ErrNotFound)
	}
	return card, nil
}

// AddCard puts a dictionary entry on a list.
func (s *Store) AddCard(ctx context.Context, listID int64, entryID, note string) (*flashcard.Flashcard, error) {
	if err := flashcard.ValidateEntryID(entryID); err != nil {
		return nil, err
	}
	if err := flashcard.ValidateNote(note); err != nil {
		return nil, err
	}

	var card *flashcard.Flashcard
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		if err := s.requireList(ctx, tx, listID); err != nil {
			return err
		}
		ok, err := exists(ctx, tx, entriesTable.Name, "id", entryID)
		if err != nil {
			return fmt.Errorf("lookup entry %s: %w", entryID, err)
		}
		if !ok {
			return fmt.Errorf("entry %s: %w", entryID, flashcard.ErrNotFound)
		}

		dup := builder().Select(entsql.Count("*")).From(entsql.Table(flashcardsTable.Name)).
			Where(entsql.And(entsql.EQ("list_id", listID), entsql.EQ("entry_id", entryID)))
		var n int
		if err := query(ctx, tx, dup, func(rows *entsql.Rows) error { return rows.Scan(&n) }); err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if n > 0 {
			return flashcard.ErrDuplicate
		}

		ins := builder().Insert(flashcardsTable.Name).
			Columns("list_id", "entry_id", "note", "is_memorized", "created_at").
			Values(listID, entryID, note, false, s.now().UTC())
		res, err := exec(ctx, tx, ins)
		if err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
		card, err = getCard(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// PersistLearned sets a card's memorized flag and note and counts one review
// for today.
func (s *Store) PersistLearned(ctx context.Context, cardID int64, learned bool, note string) (*flashcard.Flashcard, error) {
	if err := flashcard.ValidateNote(note); err != nil {
		return nil, err
	}

	var card *flashcard.Flashcard
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		q := builder().Update(flashcardsTable.Name).
			Set("is_memorized", learned).
			Set("note", note).
			Where(entsql.EQ("id", cardID))
		res, err := exec(ctx, tx, q)
		if err != nil {
			return fmt.Errorf("update card %d: %w", cardID, err)
		}
		n, err := affected(res, fmt.Sprintf("update card %d", cardID))
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("card %d: %w", cardID, flashcard.ErrNotFound)
		}
		if err := s.logReview(ctx, tx); err != nil {
			return err
		}
		card, err = getCard(ctx, tx, cardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes a card from its list.
func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	q := builder().Delete(flashcardsTable.Name).Where(entsql.EQ("id", id))
	res, err := exec(ctx, s.drv, q)
	if err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	n, err := affected(res, fmt.Sprintf("delete card %d", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("card %d: %w", id, flashcard.ErrNotFound)
	}
	return nil
}
