// Package stats derives study statistics from the daily review log.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// HeatmapDays is the length of the activity heatmap, today included.
const HeatmapDays = 365

const dateLayout = "2006-01-02"

// DayCount is the number of reviews on one calendar day (YYYY-MM-DD).
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Overview summarizes study activity.
type Overview struct {
	TotalReviews  int `json:"total_reviews"`
	MasteredWords int `json:"mastered_words"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Provider serves statistics to the UI and the REST API.
type Provider interface {
	Overview(ctx context.Context) (*Overview, error)
	Heatmap(ctx context.Context) ([]DayCount, error)
}

// Source is the raw data statistics are computed from.
type Source interface {
	StudyLogs(ctx context.Context) ([]DayCount, error)
	MasteredCount(ctx context.Context) (int, error)
}

// Service computes statistics from a Source.
type Service struct {
	src Source
	now func() time.Time
}

// NewService creates a Service reading from src.
func NewService(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

var _ Provider = (*Service)(nil)

// Overview returns review totals and streaks.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	logs, err := s.src.StudyLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load study logs: %w", err)
	}
	mastered, err := s.src.MasteredCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count mastered: %w", err)
	}

	ov := &Overview{MasteredWords: mastered}
	var days []time.Time
	for _, l := range logs {
		ov.TotalReviews += l.Count
		if l.Count <= 0 {
			continue
		}
		d, err := time.Parse(dateLayout, l.Date)
		if err != nil {
			return nil, fmt.Errorf("parse study date %q: %w", l.Date, err)
		}
		days = append(days, d)
	}
	ov.CurrentStreak, ov.LongestStreak = Streaks(days, s.now())
	return ov, nil
}

// Heatmap returns review counts for the last HeatmapDays days.
func (s *Service) Heatmap(ctx context.Context) ([]DayCount, error) {
	logs, err := s.src.StudyLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load study logs: %w", err)
	}
	return Heatmap(logs, s.now()), nil
}

// Streaks returns the current and longest run of consecutive study days.
// The current streak counts back from today when today has reviews, else
// from yesterday; otherwise it is zero.
func Streaks(days []time.Time, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	set := make(map[string]bool, len(days))
	var unique []time.Time
	for _, d := range days {
		d = truncateDay(d)
		key := d.Format(dateLayout)
		if set[key] {
			continue
		}
		set[key] = true
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Before(unique[j]) })

	today = truncateDay(today)
	start := today
	if !set[start.Format(dateLayout)] {
		start = today.AddDate(0, 0, -1)
	}
	for d := start; set[d.Format(dateLayout)]; d = d.AddDate(0, 0, -1) {
		current++
	}

	longest, run := 1, 1
	for i := 1; i < len(unique); i++ {
		if unique[i-1].AddDate(0, 0, 1).Equal(unique[i]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return current, longest
}

// Heatmap returns one entry per day for the HeatmapDays days ending today,
// oldest first. Days without reviews have a zero count.
func Heatmap(logs []DayCount, today time.Time) []DayCount {
	counts := make(map[string]int, len(logs))
	for _, l := range logs {
		counts[l.Date] += l.Count
	}

	today = truncateDay(today)
	out := make([]DayCount, HeatmapDays)
	for i := range out {
		d := today.AddDate(0, 0, i-(HeatmapDays-1)).Format(dateLayout)
		out[i] = DayCount{Date: d, Count: counts[d]}
	}
	return out
}

// NextMilestone returns the next streak length worth celebrating above
// current.
func NextMilestone(current int) int {
	milestones := []int{3, 7, 14, 30}
	for _, m := range milestones {
		if m > current {
			return m
		}
	}
	// Beyond a month, every 30 days.
	return ((current / 30) + 1) * 30
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
