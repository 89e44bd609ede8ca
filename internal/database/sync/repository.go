// Package sync tracks the progress of long-running library jobs such as
// bulk metadata enrichment and cover repair.
//
// Each Repository is bound to one sync type, so the enrichment run and the
// cover run report independently.
//
//	var _ metadata.ProgressReporter = (*Repository)(nil)
//
//	repo := sync.NewRepository(db, entities.SyncTypeCovers)
//	err := repo.StartSync(len(books))
package sync

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/entities"
)

// DefaultStaleAfter is how long a running sync may go without an update
// before it is considered interrupted.
const DefaultStaleAfter = 10 * time.Minute

type Repository struct {
	db         *gorm.DB
	syncType   entities.SyncType
	staleAfter time.Duration
}

func NewRepository(db *gorm.DB, syncType entities.SyncType) *Repository {
	return &Repository{db: db, syncType: syncType, staleAfter: DefaultStaleAfter}
}

// SetStaleAfter overrides DefaultStaleAfter.
func (r *Repository) SetStaleAfter(d time.Duration) {
	r.staleAfter = d
}

// SyncType returns the sync type this repository reports for.
func (r *Repository) SyncType() entities.SyncType {
	return r.syncType
}

// GetSyncProgress retrieves the progress record for this sync type.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates the progress record or resets the existing one.
func (r *Repository) StartSync(totalItems int) error {
	now := time.Now()

	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = entities.SyncProgress{
			SyncType:   r.syncType,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&progress).Error
	}
	if err != nil {
		return err
	}

	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Succeeded = 0
	progress.Failed = 0
	progress.Skipped = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress records the counters of an ongoing sync.
func (r *Repository) UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteSync marks the sync as completed or failed.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(updates).Error
}

// IsSyncRunning reports whether a sync of this type is in progress. A running
// sync that has not been updated within the stale window is marked failed.
func (r *Repository) IsSyncRunning() (bool, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ? AND status = ?", r.syncType, entities.SyncStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-r.staleAfter)) {
		_ = r.CompleteSync(false, "sync was interrupted")
		return false, nil
	}

	return true, nil
}

// ListProgress returns the progress records of every sync type.
func ListProgress(db *gorm.DB) ([]entities.SyncProgress, error) {
	var all []entities.SyncProgress
	err := db.Order("sync_type ASC").Find(&all).Error
	return all, err
}
