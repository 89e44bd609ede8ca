package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklibrary/internal/metadata"
)

// LibraryEnricher fills missing metadata across the library.
type LibraryEnricher interface {
	EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error)
}

// EnrichAllBooksTask enriches every book with an ISBN and missing metadata.
// Trigger names what started the run, e.g. "manual" or "schedule".
type EnrichAllBooksTask struct {
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for bulk enrichment tasks.
func (t EnrichAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_all_books",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention:   keepFailures(),
	}
}

// EnrichAllBooksProcessor returns the processor for EnrichAllBooksTask.
func EnrichAllBooksProcessor(enricher LibraryEnricher, auditor EnrichmentAuditor) backlite.QueueProcessor[EnrichAllBooksTask] {
	return func(ctx context.Context, task EnrichAllBooksTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx)
		if auditor != nil {
			description := "Library enrichment failed"
			if result != nil {
				description = fmt.Sprintf("Enriched %d of %d books (%d skipped, %d failed)",
					result.Enriched, result.TotalBooks, result.Skipped, result.Failed)
			}
			auditor.LogMetadataEnrich(description, 0, err)
		}
		if err != nil {
			return fmt.Errorf("enrich all books: %w", err)
		}

		log.Printf("[TASK] Enrichment (%s) complete: %d total, %d enriched, %d skipped, %d failed",
			triggerName(task.Trigger), result.TotalBooks, result.Enriched, result.Skipped, result.Failed)
		return nil
	}
}

// NewEnrichAllBooksQueue creates the backlite queue for bulk enrichment tasks.
func NewEnrichAllBooksQueue(enricher LibraryEnricher, auditor EnrichmentAuditor) backlite.Queue {
	return backlite.NewQueue(EnrichAllBooksProcessor(enricher, auditor))
}

func triggerName(trigger string) string {
	if trigger == "" {
		return "manual"
	}
	return trigger
}
