package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklibrary/internal/covers"
)

// CoverFixer re-resolves missing or broken covers.
type CoverFixer interface {
	FixCovers(ctx context.Context) (*covers.FixCoversResult, error)
}

// CoverFixAuditor records cover fix runs.
type CoverFixAuditor interface {
	LogCoverFix(checked, fixed int, err error)
}

// FixCoversTask looks for better covers for books without one or with an
// Open Library placeholder.
type FixCoversTask struct {
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for cover fix tasks.
func (t FixCoversTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "fix_covers",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention:   keepFailures(),
	}
}

// FixCoversProcessor returns the processor for FixCoversTask.
func FixCoversProcessor(fixer CoverFixer, auditor CoverFixAuditor) backlite.QueueProcessor[FixCoversTask] {
	return func(ctx context.Context, task FixCoversTask) error {
		if fixer == nil {
			return fmt.Errorf("cover resolver not configured")
		}

		result, err := fixer.FixCovers(ctx)
		if auditor != nil {
			checked, fixed := 0, 0
			if result != nil {
				checked, fixed = result.Checked, result.Fixed
			}
			auditor.LogCoverFix(checked, fixed, err)
		}
		if err != nil {
			return fmt.Errorf("fix covers: %w", err)
		}

		log.Printf("[TASK] Cover fix (%s) complete: %d checked, %d fixed",
			triggerName(task.Trigger), result.Checked, result.Fixed)
		return nil
	}
}

// NewFixCoversQueue creates the backlite queue for cover fix tasks.
func NewFixCoversQueue(fixer CoverFixer, auditor CoverFixAuditor) backlite.Queue {
	return backlite.NewQueue(FixCoversProcessor(fixer, auditor))
}
