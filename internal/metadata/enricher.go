package metadata

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/booklibrary/internal/entities"
)

const sourceOpenLibrary = "openlibrary"

// MetadataProvider defines the interface for fetching book metadata.
type MetadataProvider interface {
	LookupByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookUpdater defines the interface for updating books in the database.
type BookUpdater interface {
	GetBookByID(id uint) (*entities.Book, error)
	UpdateBookMetadata(id uint, fields BookUpdateFields) error
	GetBooksMissingMetadata() ([]entities.Book, error)
}

// CoverInvalidator defines the interface for invalidating cached covers.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// ProgressReporter reports sync progress updates.
type ProgressReporter interface {
	StartSync(totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	CompleteSync(succeeded bool, errorMsg string) error
	IsSyncRunning() (bool, error)
}

// BookUpdateFields contains the fields that can be updated via enrichment.
// Nil fields are left untouched.
type BookUpdateFields struct {
	ISBN           *string
	ISBN13         *string
	CoverURL       *string
	Publisher      *string
	Pages          *int
	YearPublished  *int
	OpenLibraryKey *string
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
	SearchMethod  string         `json:"search_method"` // "isbn" or "title"
}

// Enricher fills missing book metadata from an external provider.
type Enricher struct {
	provider         MetadataProvider
	db               BookUpdater
	coverInvalidator CoverInvalidator
	progressReporter ProgressReporter
}

// NewEnricher creates a new Enricher with the given metadata provider and database.
func NewEnricher(provider MetadataProvider, db BookUpdater) *Enricher {
	return &Enricher{
		provider: provider,
		db:       db,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// SetProgressReporter sets the progress reporter for bulk operations (optional).
func (e *Enricher) SetProgressReporter(reporter ProgressReporter) {
	e.progressReporter = reporter
}

// EnrichBook fetches metadata for a book and fills the fields it is missing.
// It looks up the ISBN-13, then the ISBN-10, then falls back to a title and
// author search.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var md *BookMetadata
	var searchMethod string

	for _, isbn := range []string{book.ISBN13, book.ISBN} {
		if isbn == "" {
			continue
		}
		if md, err = e.provider.LookupByISBN(ctx, isbn); err == nil {
			searchMethod = "isbn"
			break
		}
		md = nil
	}

	if md == nil {
		md, err = e.provider.SearchByTitle(ctx, book.Title, book.Author)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
		searchMethod = "title"
	}

	return e.apply(book, md, searchMethod, nil)
}

// EnrichBookWithISBN looks the given ISBN up and stores it on the book when
// the lookup succeeds. If it fails, it falls back to title+author search and
// leaves the book's ISBN alone.
func (e *Enricher) EnrichBookWithISBN(ctx context.Context, bookID uint, isbn string) (*EnrichmentResult, error) {
	book, err := e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var searchMethod string
	var forced *BookUpdateFields

	md, err := e.provider.LookupByISBN(ctx, isbn)
	if err == nil && md != nil {
		searchMethod = "isbn"
		normalized := normalizeISBN(isbn)
		forced = &BookUpdateFields{}
		if len(normalized) == 13 && book.ISBN13 != normalized {
			forced.ISBN13 = &normalized
		} else if len(normalized) == 10 && book.ISBN != normalized {
			forced.ISBN = &normalized
		}
	} else {
		md, err = e.provider.SearchByTitle(ctx, book.Title, book.Author)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
		searchMethod = "title"
	}

	return e.apply(book, md, searchMethod, forced)
}

func (e *Enricher) apply(book *entities.Book, md *BookMetadata, searchMethod string, forced *BookUpdateFields) (*EnrichmentResult, error) {
	updates, fieldsUpdated := buildUpdates(book, md)

	if forced != nil {
		if forced.ISBN != nil {
			updates.ISBN = forced.ISBN
			fieldsUpdated = appendUnique(fieldsUpdated, "isbn")
		}
		if forced.ISBN13 != nil {
			updates.ISBN13 = forced.ISBN13
			fieldsUpdated = appendUnique(fieldsUpdated, "isbn13")
		}
	}

	if len(fieldsUpdated) > 0 {
		if updates.CoverURL != nil && e.coverInvalidator != nil {
			_ = e.coverInvalidator.InvalidateCover(book.ID)
		}

		if err := e.db.UpdateBookMetadata(book.ID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}

		refreshed, err := e.db.GetBookByID(book.ID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
		book = refreshed
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        sourceOpenLibrary,
		SearchMethod:  searchMethod,
	}, nil
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}

// BulkEnrichmentResult contains the summary of a bulk enrichment operation.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// EnrichAllMissing enriches every book with an ISBN that is missing a
// publisher, page count, publication year or cover.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	if e.progressReporter != nil {
		running, err := e.progressReporter.IsSyncRunning()
		if err != nil {
			return nil, fmt.Errorf("check sync status: %w", err)
		}
		if running {
			return nil, fmt.Errorf("metadata sync is already in progress")
		}
	}

	books, err := e.db.GetBooksMissingMetadata()
	if err != nil {
		return nil, fmt.Errorf("get books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{
		TotalBooks: len(books),
	}

	if e.progressReporter != nil {
		if err := e.progressReporter.StartSync(len(books)); err != nil {
			return nil, fmt.Errorf("start sync progress: %w", err)
		}
	}

	for i, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			if e.progressReporter != nil {
				_ = e.progressReporter.CompleteSync(false, "operation cancelled")
			}
			return result, ctx.Err()
		default:
		}

		if e.progressReporter != nil {
			_ = e.progressReporter.UpdateProgress(i, result.Enriched, result.Failed, result.Skipped, book.Title)
		}

		enrichResult, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	if e.progressReporter != nil {
		_ = e.progressReporter.UpdateProgress(len(books), result.Enriched, result.Failed, result.Skipped, "")
		errorMsg := ""
		if len(result.Errors) > 0 {
			errorMsg = fmt.Sprintf("%d errors occurred", len(result.Errors))
		}
		_ = e.progressReporter.CompleteSync(result.Failed == 0, errorMsg)
	}

	log.Printf("[METADATA] Enrichment finished: %d enriched, %d skipped, %d failed of %d",
		result.Enriched, result.Skipped, result.Failed, result.TotalBooks)

	return result, nil
}

// buildUpdates returns only the fields the book is missing and the metadata
// can supply.
func buildUpdates(book *entities.Book, md *BookMetadata) (BookUpdateFields, []string) {
	var updates BookUpdateFields
	var fieldsUpdated []string

	if book.ISBN == "" && book.ISBN13 == "" && md.ISBN != "" {
		isbn := md.ISBN
		if len(isbn) == 13 {
			updates.ISBN13 = &isbn
			fieldsUpdated = append(fieldsUpdated, "isbn13")
		} else {
			updates.ISBN = &isbn
			fieldsUpdated = append(fieldsUpdated, "isbn")
		}
	}

	if book.CoverURL == "" && md.CoverURL != "" {
		updates.CoverURL = &md.CoverURL
		fieldsUpdated = append(fieldsUpdated, "cover_url")
	}

	if book.Publisher == "" && md.Publisher != "" {
		updates.Publisher = &md.Publisher
		fieldsUpdated = append(fieldsUpdated, "publisher")
	}

	if book.PageCount() == 0 && md.PageCount > 0 {
		updates.Pages = &md.PageCount
		fieldsUpdated = append(fieldsUpdated, "pages")
	}

	if book.YearPublished == nil && md.PublicationYear > 0 {
		updates.YearPublished = &md.PublicationYear
		fieldsUpdated = append(fieldsUpdated, "year_published")
	}

	if book.OpenLibraryKey == "" && md.OpenLibraryKey != "" {
		updates.OpenLibraryKey = &md.OpenLibraryKey
		fieldsUpdated = append(fieldsUpdated, "open_library_key")
	}

	return updates, fieldsUpdated
}
