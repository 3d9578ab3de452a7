package store

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// Lists returns every list with its card count, newest first.
func (s *Store) Lists(ctx context.Context) ([]flashcard.List, error) {
	l := entsql.Table(listsTable.Name)
	f := entsql.Table(flashcardsTable.Name)
	q := builder().
		Select(l.C("id"), l.C("name"), l.C("description"), entsql.As(entsql.Count(f.C("id")), "count")).
		From(l).
		LeftJoin(f).On(l.C("id"), f.C("list_id")).
		GroupBy(l.C("id"), l.C("name"), l.C("description")).
		OrderBy(entsql.Desc(l.C("created_at")), entsql.Desc(l.C("id")))

	lists := []flashcard.List{}
	err := query(ctx, s.drv, q, func(rows *entsql.Rows) error {
		var item flashcard.List
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Count); err != nil {
			return err
		}
		lists = append(lists, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	return lists, nil
}

// List returns one list with its card count.
func (s *Store) List(ctx context.Context, id int64) (*flashcard.List, error) {
	lists, err := s.Lists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if lists[i].ID == id {
			return &lists[i], nil
		}
	}
	return nil, fmt.Errorf("list %d: %w", id, flashcard.ErrNotFound)
}

// CreateList adds an empty list.
func (s *Store) CreateList(ctx context.Context, name string) (*flashcard.List, error) {
	name = strings.TrimSpace(name)
	if err := flashcard.ValidateListName(name); err != nil {
		return nil, err
	}

	q := builder().Insert(listsTable.Name).
		Columns("name", "description", "created_at").
		Values(name, "", s.now().UTC())
	res, err := exec(ctx, s.drv, q)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	return &flashcard.List{ID: id, Name: name}, nil
}

// UpdateList renames a list and replaces its description.
func (s *Store) UpdateList(ctx context.Context, id int64, name, description string) (*flashcard.List, error) {
	name = strings.TrimSpace(name)
	if err := flashcard.ValidateListName(name); err != nil {
		return nil, err
	}

	q := builder().Update(listsTable.Name).
		Set("name", name).
		Set("description", description).
		Where(entsql.EQ("id", id))
	res, err := exec(ctx, s.drv, q)
	if err != nil {
		return nil, fmt.Errorf("update list %d: %w", id, err)
	}
	n, err := affected(res, fmt.Sprintf("update list %d", id))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("list %d: %w", id, flashcard.ErrNotFound)
	}
	return s.List(ctx, id)
}

// DeleteList removes a list and, by cascade, its cards.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	q := builder().Delete(listsTable.Name).Where(entsql.EQ("id", id))
	res, err := exec(ctx, s.drv, q)
	if err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	n, err := affected(res, fmt.Sprintf("delete list %d", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("list %d: %w", id, flashcard.ErrNotFound)
	}
	return nil
}

// ResetList clears the memorized flag of every card on the list and returns
// how many cards changed.
func (s *Store) ResetList(ctx context.Context, id int64) (int64, error) {
	if err := s.requireList(ctx, s.drv, id); err != nil {
		return 0, err
	}
	q := builder().Update(flashcardsTable.Name).
		Set("is_memorized", false).
		Where(entsql.And(entsql.EQ("list_id", id), entsql.EQ("is_memorized", true)))
	res, err := exec(ctx, s.drv, q)
	if err != nil {
		return 0, fmt.Errorf("reset list %d: %w", id, err)
	}
	return affected(res, fmt.Sprintf("reset list %d", id))
}

func (s *Store) requireList(ctx context.Context, conn execQuerier, id int64) error {
	ok, err := exists(ctx, conn, listsTable.Name, "id", id)
	if err != nil {
		return fmt.Errorf("lookup list %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("list %d: %w", id, flashcard.ErrNotFound)
	}
	return nil
}
