package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OrphanShelvesCleaner deletes shelves no book is on.
type OrphanShelvesCleaner interface {
	DeleteOrphanShelves() (int64, error)
}

// CleanupOrphanShelvesTask removes shelves left empty by deletions and edits.
type CleanupOrphanShelvesTask struct{}

// Config returns the queue configuration for shelf cleanup tasks.
func (t CleanupOrphanShelvesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphan_shelves",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention:   keepFailures(),
	}
}

// CleanupOrphanShelvesProcessor returns the processor for CleanupOrphanShelvesTask.
func CleanupOrphanShelvesProcessor(cleaner OrphanShelvesCleaner) backlite.QueueProcessor[CleanupOrphanShelvesTask] {
	return func(ctx context.Context, task CleanupOrphanShelvesTask) error {
		if cleaner == nil {
			return fmt.Errorf("shelf cleaner not configured")
		}

		deleted, err := cleaner.DeleteOrphanShelves()
		if err != nil {
			return fmt.Errorf("cleanup orphan shelves: %w", err)
		}

		log.Printf("[TASK] Removed %d empty shelves", deleted)
		return nil
	}
}

// NewCleanupOrphanShelvesQueue creates the backlite queue for shelf cleanup tasks.
func NewCleanupOrphanShelvesQueue(cleaner OrphanShelvesCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanShelvesProcessor(cleaner))
}
