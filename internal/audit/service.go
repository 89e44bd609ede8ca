package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/booklibrary/internal/database/audit"
	"github.com/mrlokans/booklibrary/internal/entities"
)

const maxMessageLen = 500

// Service records library events in the audit trail.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an event in the background. Call Wait to flush pending
// writes before shutting down.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogImport records a CSV import run.
func (s *Service) LogImport(runID, source, description string, imported, skipped, total int, err error) {
	event := &entities.AuditEvent{
		RunID:       runID,
		EventType:   entities.AuditEventImport,
		Action:      source + "_import",
		Description: truncate(description, maxMessageLen),
		EntityType:  "book",
		Status:      entities.AuditStatusSuccess,
		Metadata: encodeMetadata(map[string]any{
			"imported": imported,
			"skipped":  skipped,
			"total":    total,
		}),
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// LogDelete records the deletion of a single entity.
func (s *Service) LogDelete(entityType string, entityID uint, entityName string) {
	s.LogAsync(&entities.AuditEvent{
		RunID:       uuid.NewString(),
		EventType:   entities.AuditEventDelete,
		Action:      entityType + "_delete",
		Description: truncate(fmt.Sprintf("Deleted %s: %s", entityType, entityName), maxMessageLen),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogClear records the removal of the whole library.
func (s *Service) LogClear(booksDeleted int64, err error) {
	event := &entities.AuditEvent{
		RunID:       uuid.NewString(),
		EventType:   entities.AuditEventDelete,
		Action:      "library_clear",
		Description: fmt.Sprintf("Cleared library (%d books)", booksDeleted),
		EntityType:  "library",
		Status:      entities.AuditStatusSuccess,
		Metadata:    encodeMetadata(map[string]any{"books_deleted": booksDeleted}),
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// LogMetadataEnrich records a metadata enrichment of one book, or of the
// whole library when bookID is 0.
func (s *Service) LogMetadataEnrich(description string, bookID uint, err error) {
	event := &entities.AuditEvent{
		RunID:       uuid.NewString(),
		EventType:   entities.AuditEventMetadataEnrich,
		Action:      "book_enrich",
		Description: truncate(description, maxMessageLen),
		EntityType:  "book",
		Status:      entities.AuditStatusSuccess,
	}
	if bookID != 0 {
		event.EntityID = &bookID
	} else {
		event.Action = "library_enrich"
		event.EntityType = "library"
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// LogCoverFix records a cover fix run.
func (s *Service) LogCoverFix(checked, fixed int, err error) {
	event := &entities.AuditEvent{
		RunID:       uuid.NewString(),
		EventType:   entities.AuditEventCovers,
		Action:      "covers_fix",
		Description: fmt.Sprintf("Fixed %d of %d covers", fixed, checked),
		EntityType:  "library",
		Status:      entities.AuditStatusSuccess,
		Metadata:    encodeMetadata(map[string]any{"checked": checked, "fixed": fixed}),
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// LogSettings records a settings change.
func (s *Service) LogSettings(action, description string) {
	s.LogAsync(&entities.AuditEvent{
		RunID:       uuid.NewString(),
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: truncate(description, maxMessageLen),
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events matching filter.
func (s *Service) GetEvents(filter audit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

func markFailed(event *entities.AuditEvent, err error) {
	if err == nil {
		return
	}
	event.Status = entities.AuditStatusFailed
	event.ErrorMsg = truncate(err.Error(), maxMessageLen)
}

func encodeMetadata(md map[string]any) string {
	data, err := json.Marshal(md)
	if err != nil {
		return ""
	}
	return string(data)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
