package study

import (
	"context"

	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// CardStore is the persistence boundary of a study session. FetchCards
// returns the list's cards in natural order and fails with
// flashcard.ErrNotFound for a missing list; PersistLearned fails with
// flashcard.ErrNotFound when the card was deleted concurrently. Transport
// failures surface as *flashcard.NetworkError.
type CardStore interface {
	FetchCards(ctx context.Context, listID int64) ([]flashcard.Flashcard, error)
	PersistLearned(ctx context.Context, cardID int64, learned bool, note string) (*flashcard.Flashcard, error)
}
