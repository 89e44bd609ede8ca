package importers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/booklibrary/internal/normalize"
	"github.com/mrlokans/booklibrary/internal/services"
)

// SkipReason explains why a row was not imported.
type SkipReason string

const (
	SkipReasonDuplicate       SkipReason = "duplicate"
	SkipReasonMissingRequired SkipReason = "missing required field"
)

// SkippedRow identifies a row that was not imported. Row is the line number
// in the source document.
type SkippedRow struct {
	Row    int        `json:"row"`
	Title  string     `json:"title"`
	Author string     `json:"author,omitempty"`
	Reason SkipReason `json:"reason"`
}

// ImportOutcome summarises one import run. Entirely blank rows count toward
// Total but appear neither in Imported nor in Skipped.
type ImportOutcome struct {
	RunID    string       `json:"run_id,omitempty"`
	Imported int          `json:"imported"`
	Total    int          `json:"total"`
	Skipped  []SkippedRow `json:"skipped"`
	DryRun   bool         `json:"dry_run,omitempty"`
}

// SkippedTitles returns the titles of skipped rows in source order.
func (o *ImportOutcome) SkippedTitles() []string {
	titles := make([]string, len(o.Skipped))
	for i, s := range o.Skipped {
		titles[i] = s.Title
	}
	return titles
}

// CountSkipped returns how many rows were skipped for reason.
func (o *ImportOutcome) CountSkipped(reason SkipReason) int {
	n := 0
	for _, s := range o.Skipped {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

// Importer turns CSV text into books and writes them to a store, one row at
// a time in document order. It keeps no state between calls.
type Importer struct {
	store services.LibraryStore
	now   func() time.Time
}

// NewImporter creates an importer backed by store.
func NewImporter(store services.LibraryStore) *Importer {
	return &Importer{store: store, now: time.Now}
}

// SetClock overrides the clock used for default "date added" values.
func (i *Importer) SetClock(now func() time.Time) {
	i.now = now
}

// Import reads csvText with mapping and persists every row that is neither a
// duplicate nor missing a title or author.
//
// A *ValidationError or *ParseError is returned before anything is written.
// A store failure or a cancelled ctx stops the run; rows already written stay
// written and the partial outcome is returned with the error.
func (i *Importer) Import(ctx context.Context, csvText string, mapping ColumnMapping) (*ImportOutcome, error) {
	return i.run(ctx, csvText, mapping, true)
}

// DryRun behaves like Import but never writes to the store.
func (i *Importer) DryRun(ctx context.Context, csvText string, mapping ColumnMapping) (*ImportOutcome, error) {
	return i.run(ctx, csvText, mapping, false)
}

func (i *Importer) run(ctx context.Context, csvText string, mapping ColumnMapping, persist bool) (*ImportOutcome, error) {
	mapping = mapping.Normalize()
	if missing := mapping.MissingRequired(); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	doc, err := parseCSV(csvText)
	if err != nil {
		return nil, err
	}

	columns, err := resolveColumns(doc, mapping)
	if err != nil {
		return nil, err
	}

	outcome := &ImportOutcome{
		Total:   len(doc.rows),
		Skipped: []SkippedRow{},
		DryRun:  !persist,
	}
	today := i.now().Format(normalize.DateLayout)
	seen := make(map[string]bool)

	for n, record := range doc.rows {
		if err := ctx.Err(); err != nil {
			return outcome, fmt.Errorf("import interrupted after %d rows: %w", n, err)
		}
		if isBlank(record) {
			continue
		}

		cell := func(f Field) string {
			idx, ok := columns[f]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		book, shelves := buildBook(cell, today)
		line := doc.lines[n]

		if book.Title == "" || book.Author == "" {
			outcome.Skipped = append(outcome.Skipped, SkippedRow{
				Row: line, Title: book.Title, Author: book.Author, Reason: SkipReasonMissingRequired,
			})
			continue
		}

		key := normalize.DedupeKey(book.Title, book.Author)
		duplicate := seen[key]
		if !duplicate {
			existing, err := i.store.FindByTitleAuthor(book.Title, book.Author)
			if err != nil {
				return outcome, fmt.Errorf("failed to check for duplicate of %q: %w", book.Title, err)
			}
			duplicate = existing != nil
		}
		if duplicate {
			outcome.Skipped = append(outcome.Skipped, SkippedRow{
				Row: line, Title: book.Title, Author: book.Author, Reason: SkipReasonDuplicate,
			})
			continue
		}

		if persist {
			book.NewShelves = shelves
			if err := i.store.CreateBook(&book); err != nil {
				return outcome, fmt.Errorf("failed to save %q: %w", book.Title, err)
			}
		}

		seen[key] = true
		outcome.Imported++
	}

	log.Printf("[IMPORT] Processed %d rows: %d imported, %d duplicates, %d missing title or author",
		outcome.Total, outcome.Imported,
		outcome.CountSkipped(SkipReasonDuplicate), outcome.CountSkipped(SkipReasonMissingRequired))

	return outcome, nil
}

// resolveColumns maps each field to a column index. Required fields whose
// header is not in the document fail validation; other unknown headers are
// treated as unmapped.
func resolveColumns(doc *table, mapping ColumnMapping) (map[Field]int, error) {
	columns := make(map[Field]int, len(mapping))
	for field, header := range mapping {
		if idx, ok := doc.columnIndex(header); ok {
			columns[field] = idx
		}
	}

	var missing []Field
	for _, f := range RequiredFields() {
		if _, ok := columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	return columns, nil
}
