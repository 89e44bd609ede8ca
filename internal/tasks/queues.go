package tasks

import "github.com/mikestefanello/backlite"

// Dependencies are the services the library queues run against. Nil
// services make the matching tasks fail with a "not configured" error.
type Dependencies struct {
	Enricher interface {
		BookEnricher
		LibraryEnricher
	}
	Covers  CoverFixer
	Shelves OrphanShelvesCleaner
	Audit   interface {
		AuditEventCleaner
		EnrichmentAuditor
		CoverFixAuditor
	}
}

// TaskType describes a task that can be triggered through the API.
type TaskType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// TaskTypes lists the library tasks in the order they are documented.
var TaskTypes = []TaskType{
	{Type: "enrich_book", Description: "Fill missing metadata of one book from Open Library"},
	{Type: "enrich_all_books", Description: "Fill missing metadata of every book with an ISBN"},
	{Type: "fix_covers", Description: "Find covers for books without one or with a placeholder"},
	{Type: "cleanup_orphan_shelves", Description: "Delete shelves no book is on"},
	{Type: "cleanup_audit_events", Description: "Delete audit events past the retention period"},
}

// RegisterLibraryQueues registers every library queue with the client.
func (c *Client) RegisterLibraryQueues(deps Dependencies) {
	c.Register(
		NewEnrichBookQueue(deps.Enricher, deps.Audit),
		NewEnrichAllBooksQueue(deps.Enricher, deps.Audit),
		NewFixCoversQueue(deps.Covers, deps.Audit),
		NewCleanupOrphanShelvesQueue(deps.Shelves),
		NewCleanupAuditEventsQueue(deps.Audit, c.config.AuditRetentionDays),
	)
}

// NewTask builds a task by type name. bookID and isbn are only used by
// enrich_book, which requires a non-zero bookID.
func NewTask(taskType string, bookID uint, isbn string) (backlite.Task, error) {
	switch taskType {
	case "enrich_book":
		if bookID == 0 {
			return nil, errBookIDRequired
		}
		return EnrichBookTask{BookID: bookID, ISBN: isbn}, nil
	case "enrich_all_books":
		return EnrichAllBooksTask{Trigger: "manual"}, nil
	case "fix_covers":
		return FixCoversTask{Trigger: "manual"}, nil
	case "cleanup_orphan_shelves":
		return CleanupOrphanShelvesTask{}, nil
	case "cleanup_audit_events":
		return CleanupAuditEventsTask{}, nil
	default:
		return nil, &UnknownTaskError{Type: taskType}
	}
}
