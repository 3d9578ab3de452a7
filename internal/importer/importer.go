// Package importer loads dictionary entries into the card store from
// JMdict-simplified JSON, Excel workbooks and CSV files.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gakuroku/gakuroku/internal/flashcard"
)

// EntrySink stores dictionary entries.
type EntrySink interface {
	UpsertEntries(ctx context.Context, words []flashcard.Word) (created, updated int, err error)
}

// CardSink puts entries on a list.
type CardSink interface {
	AddCard(ctx context.Context, listID int64, entryID, note string) (*flashcard.Flashcard, error)
}

// Config controls an import.
type Config struct {
	BatchSize int    // entries per store transaction
	ListID    int64  // when non-zero, every imported entry is added to this list
	SheetName string // workbook sheet; empty means the first sheet
	StartRow  int    // first data row of a sheet or CSV (1-based)
}

// DefaultConfig returns the default import configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize: 500,
		StartRow:  2, // skip the header row
	}
}

// Result holds the result of an import operation.
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	CardsAdded     int
	Skipped        int
	Errors         []string
}

// Importer writes parsed entries to the store.
type Importer struct {
	entries EntrySink
	cards   CardSink
	cfg     Config
}

// New creates an Importer. cards may be nil when cfg.ListID is zero.
func New(entries EntrySink, cards CardSink, cfg Config) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.StartRow <= 0 {
		cfg.StartRow = 1
	}
	return &Importer{entries: entries, cards: cards, cfg: cfg}
}

// ImportFile picks the format from the file extension.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return im.importJSONFile(ctx, path)
	case ".xlsx", ".xlsm":
		return im.ImportSheet(ctx, path)
	case ".csv":
		return im.importCSVFile(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported import format %q", ext)
	}
}

// batch accumulates parsed words and flushes them to the store.
type batch struct {
	im     *Importer
	words  []flashcard.Word
	notes  map[string]string
	result *Result
}

func (im *Importer) newBatch() *batch {
	return &batch{im: im, notes: map[string]string{}, result: &Result{Errors: []string{}}}
}

func (b *batch) add(ctx context.Context, w flashcard.Word, note string) error {
	b.words = append(b.words, w)
	if note != "" {
		b.notes[w.ID] = note
	}
	if len(b.words) >= b.im.cfg.BatchSize {
		return b.flush(ctx)
	}
	return nil
}

func (b *batch) flush(ctx context.Context) error {
	if len(b.words) == 0 {
		return nil
	}
	created, updated, err := b.im.entries.UpsertEntries(ctx, b.words)
	if err != nil {
		return fmt.Errorf("store entries: %w", err)
	}
	b.result.Created += created
	b.result.Updated += updated

	if b.im.cfg.ListID != 0 && b.im.cards != nil {
		for _, w := range b.words {
			_, err := b.im.cards.AddCard(ctx, b.im.cfg.ListID, w.ID, b.notes[w.ID])
			switch {
			case err == nil:
				b.result.CardsAdded++
			case isDuplicate(err):
				b.result.Skipped++
			default:
				b.result.Errors = append(b.result.Errors, fmt.Sprintf("add %s to list: %v", w.ID, err))
			}
		}
	}

	b.words = b.words[:0]
	clear(b.notes)
	return nil
}
