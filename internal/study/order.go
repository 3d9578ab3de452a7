package study

import (
	"math/rand/v2"

	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// Rand is the random source used to generate shuffle orders.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DeriveOrder computes the sequence of cards the learner sees.
//
// Without shuffling, or before a shuffle order exists, the natural order of
// cards is returned. Otherwise the order is walked and each id resolved
// against cards: ids that no longer resolve are skipped, and cards the order
// never mentions are appended in their natural relative order. The result is
// always a permutation of cards.
func DeriveOrder(cards []flashcard.Flashcard, isShuffled bool, shuffleOrder []int64) []flashcard.Flashcard {
	out := make([]flashcard.Flashcard, 0, len(cards))
	if !isShuffled || len(shuffleOrder) == 0 {
		return append(out, cards...)
	}

	byID := make(map[int64]int, len(cards))
	for i, c := range cards {
		byID[c.ID] = i
	}

	used := make(map[int64]bool, len(cards))
	for _, id := range shuffleOrder {
		i, ok := byID[id]
		if !ok || used[id] {
			continue
		}
		used[id] = true
		out = append(out, cards[i])
	}
	for _, c := range cards {
		if !used[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// NewShuffleOrder returns a uniformly random permutation of the card ids
// using the Fisher-Yates shuffle.
func NewShuffleOrder(cards []flashcard.Flashcard, rng Rand) []int64 {
	if rng == nil {
		rng = globalRand{}
	}
	ids := make([]int64, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}
