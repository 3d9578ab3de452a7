package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/gakuroku/gakuroku/internal/stats"
)

// logReview increments today's review counter.
func (s *Store) logReview(ctx context.Context, conn execQuerier) error {
	const upsert = `INSERT INTO study_logs (date, count) VALUES (?, 1)
		ON CONFLICT(date) DO UPDATE SET count = count + 1`
	if err := conn.Exec(ctx, upsert, []any{s.today()}, nil); err != nil {
		return fmt.Errorf("log review: %w", err)
	}
	return nil
}

// StudyLogs returns every day with at least one review, oldest first.
func (s *Store) StudyLogs(ctx context.Context) ([]stats.DayCount, error) {
	q := builder().Select("date", "count").
		From(entsql.Table(studyLogsTable.Name)).
		Where(entsql.GT("count", 0)).
		OrderBy("date")

	days := []stats.DayCount{}
	err := query(ctx, s.drv, q, func(rows *entsql.Rows) error {
		var d stats.DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return err
		}
		days = append(days, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query study logs: %w", err)
	}
	return days, nil
}

// MasteredCount returns how many cards, across all lists, are memorized.
func (s *Store) MasteredCount(ctx context.Context) (int, error) {
	q := builder().Select(entsql.Count("*")).
		From(entsql.Table(flashcardsTable.Name)).
		Where(entsql.EQ("is_memorized", true))
	var n int
	err := query(ctx, s.drv, q, func(rows *entsql.Rows) error { return rows.Scan(&n) })
	if err != nil {
		return 0, fmt.Errorf("count mastered cards: %w", err)
	}
	return n, nil
}
