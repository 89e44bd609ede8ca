package http

import (
	"context"

	"github.com/mrlokans/booklibrary/internal/database"
	"github.com/mrlokans/booklibrary/internal/entities"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. Optional dependencies left nil disable the routes that
// need them; never assign a typed nil pointer to an interface field.
type RouterConfig struct {
	// Context bounds background work started by handlers, such as a
	// rescheduled maintenance job. Defaults to context.Background().
	Context context.Context

	// Application info
	Version  string
	Database *database.Database

	// Core library
	Books   LibraryBooks
	Shelves LibraryShelves
	Stats   StatsProvider

	// CSV import
	Importer       CSVImporter
	MaxUploadBytes int64

	// Metadata enrichment (optional)
	Lookup       MetadataLookup
	Enricher     BookEnricher
	SyncProgress map[entities.SyncType]SyncProgressReader

	// Covers (optional)
	CoverCache LibraryCoverCache
	CoverFixer CoverFixer

	// Audit log (optional)
	Audit LibraryAudit

	// Task queue (optional)
	Tasks TaskQueue

	// Scheduled maintenance (optional). MaintenanceRunner is nil when the
	// task queue is disabled.
	MaintenanceSettings MaintenanceSettingsStore
	MaintenanceRunner   MaintenanceRunner
}
