package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/xuri/excelize/v2"
)

// Sheet and CSV column layout: entry id, kanji, kana, glosses separated by
// ";", parts of speech separated by ",", common flag, note.
const (
	colID = iota
	colKanji
	colKana
	colGlosses
	colPOS
	colCommon
	colNote
)

// ImportSheet imports entries from an Excel workbook.
func (im *Importer) ImportSheet(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := im.cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	b := im.newBatch()
	for i, row := range rows {
		if i < im.cfg.StartRow-1 {
			continue
		}
		if err := im.processRow(ctx, b, row, i+1); err != nil {
			return b.result, err
		}
	}
	if err := b.flush(ctx); err != nil {
		return b.result, err
	}
	return b.result, nil
}

func (im *Importer) importCSVFile(ctx context.Context, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()
	return im.ImportCSV(ctx, file)
}

// ImportCSV imports entries from CSV with the sheet column layout.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	b := im.newBatch()
	rowNum := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return b.result, fmt.Errorf("read CSV row %d: %w", rowNum+1, err)
		}
		rowNum++
		if rowNum < im.cfg.StartRow {
			continue
		}
		if err := im.processRow(ctx, b, row, rowNum); err != nil {
			return b.result, err
		}
	}
	if err := b.flush(ctx); err != nil {
		return b.result, err
	}
	return b.result, nil
}

// processRow parses one row into the batch. Bad rows are recorded and
// skipped; only store failures are returned.
func (im *Importer) processRow(ctx context.Context, b *batch, row []string, rowNum int) error {
	if blank(row) {
		return nil
	}
	b.result.TotalProcessed++

	w, note, err := parseRow(row)
	if err != nil {
		b.result.Skipped++
		b.result.Errors = append(b.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return nil
	}
	return b.add(ctx, w, note)
}

func parseRow(row []string) (flashcard.Word, string, error) {
	w := flashcard.Word{
		ID:     cell(row, colID),
		Kanji:  cell(row, colKanji),
		Kana:   cell(row, colKana),
		Senses: []flashcard.Sense{},
	}
	if err := flashcard.ValidateEntryID(w.ID); err != nil {
		return w, "", err
	}
	if w.Kana == "" {
		return w, "", errors.New("missing kana")
	}

	glosses := splitList(cell(row, colGlosses), ";")
	if len(glosses) == 0 {
		return w, "", errors.New("missing glosses")
	}
	w.Senses = append(w.Senses, flashcard.Sense{
		PartsOfSpeech: splitList(cell(row, colPOS), ","),
		Glosses:       glosses,
	})

	switch strings.ToLower(cell(row, colCommon)) {
	case "1", "true", "yes", "y", "common":
		w.IsCommon = true
	}

	note := cell(row, colNote)
	if err := flashcard.ValidateNote(note); err != nil {
		return w, "", err
	}
	return w, note, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isDuplicate(err error) bool {
	return errors.Is(err, flashcard.ErrDuplicate)
}
