package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklibrary/internal/metadata"
)

// BookEnricher fills missing metadata of a single book.
type BookEnricher interface {
	EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error)
	EnrichBookWithISBN(ctx context.Context, bookID uint, isbn string) (*metadata.EnrichmentResult, error)
}

// EnrichmentAuditor records enrichment runs.
type EnrichmentAuditor interface {
	LogMetadataEnrich(description string, bookID uint, err error)
}

// EnrichBookTask enriches one book. When ISBN is set it is looked up instead
// of the ISBN stored on the book.
type EnrichBookTask struct {
	BookID uint   `json:"book_id"`
	ISBN   string `json:"isbn,omitempty"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention:   keepFailures(),
	}
}

// EnrichBookProcessor returns the processor for EnrichBookTask. auditor may
// be nil.
func EnrichBookProcessor(enricher BookEnricher, auditor EnrichmentAuditor) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		var result *metadata.EnrichmentResult
		var err error
		if task.ISBN != "" {
			result, err = enricher.EnrichBookWithISBN(ctx, task.BookID, task.ISBN)
		} else {
			result, err = enricher.EnrichBook(ctx, task.BookID)
		}

		if err != nil {
			if auditor != nil {
				auditor.LogMetadataEnrich(fmt.Sprintf("Enrichment of book %d failed", task.BookID), task.BookID, err)
			}
			return fmt.Errorf("enrich book %d: %w", task.BookID, err)
		}

		if len(result.FieldsUpdated) == 0 {
			log.Printf("[TASK] Book %d (%s): no metadata updates needed", task.BookID, result.Book.Title)
			return nil
		}

		log.Printf("[TASK] Enriched book %d (%s): updated %v via %s",
			task.BookID, result.Book.Title, result.FieldsUpdated, result.SearchMethod)
		if auditor != nil {
			auditor.LogMetadataEnrich(
				fmt.Sprintf("Enriched %s: %v", result.Book.Title, result.FieldsUpdated), task.BookID, nil)
		}
		return nil
	}
}

// NewEnrichBookQueue creates the backlite queue for book enrichment tasks.
func NewEnrichBookQueue(enricher BookEnricher, auditor EnrichmentAuditor) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher, auditor))
}
