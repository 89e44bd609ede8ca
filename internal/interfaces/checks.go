package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/booklibrary/internal/audit"
	"github.com/mrlokans/booklibrary/internal/covers"
	"github.com/mrlokans/booklibrary/internal/database"
	"github.com/mrlokans/booklibrary/internal/database/books"
	"github.com/mrlokans/booklibrary/internal/database/settings"
	"github.com/mrlokans/booklibrary/internal/database/shelves"
	"github.com/mrlokans/booklibrary/internal/database/sync"
	"github.com/mrlokans/booklibrary/internal/http"
	"github.com/mrlokans/booklibrary/internal/importers"
	"github.com/mrlokans/booklibrary/internal/metadata"
	"github.com/mrlokans/booklibrary/internal/scheduler"
	"github.com/mrlokans/booklibrary/internal/services"
	"github.com/mrlokans/booklibrary/internal/settingsstore"
	"github.com/mrlokans/booklibrary/internal/stats"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Book repository
var _ services.BookReader = (*books.Repository)(nil)
var _ services.BookWriter = (*books.Repository)(nil)
var _ services.LibraryStore = (*books.Repository)(nil)
var _ http.LibraryBooks = (*books.Repository)(nil)
var _ stats.BookLister = (*books.Repository)(nil)
var _ covers.BookStore = (*books.Repository)(nil)

// Shelf repository
var _ http.LibraryShelves = (*shelves.Repository)(nil)
var _ tasks.OrphanShelvesCleaner = (*shelves.Repository)(nil)

// Settings
var _ importers.SettingsStore = (*settings.Repository)(nil)
var _ settingsstore.Repository = (*settings.Repository)(nil)
var _ http.MaintenanceSettingsStore = (*settingsstore.SettingsStore)(nil)
var _ scheduler.MaintenanceSettings = (*settingsstore.SettingsStore)(nil)

// Metadata adapter
var _ metadata.BookUpdater = (*database.MetadataUpdater)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ http.CSVImporter = (*importers.Service)(nil)
var _ importers.RunArchiver = (*audit.Auditor)(nil)
var _ importers.AuditLogger = (*audit.Service)(nil)

// =============================================================================
// External Services
// =============================================================================

// MetadataProvider implementations
var _ metadata.MetadataProvider = (*metadata.OpenLibraryClient)(nil)
var _ http.MetadataLookup = (*metadata.OpenLibraryClient)(nil)

// Cover sources
var _ covers.ThumbnailSource = (*metadata.GoogleBooksClient)(nil)
var _ covers.CoverURLBuilder = (*metadata.OpenLibraryClient)(nil)

// =============================================================================
// Enrichment, Covers and Statistics
// =============================================================================

var _ http.BookEnricher = (*metadata.Enricher)(nil)
var _ http.CoverFixer = (*covers.Resolver)(nil)
var _ http.LibraryCoverCache = (*covers.Cache)(nil)
var _ metadata.CoverInvalidator = (*covers.Cache)(nil)
var _ covers.CoverInvalidator = (*covers.Cache)(nil)
var _ http.StatsProvider = (*stats.Service)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

// ProgressReporter implementations
var _ metadata.ProgressReporter = (*sync.Repository)(nil)
var _ covers.ProgressReporter = (*sync.Repository)(nil)
var _ http.SyncProgressReader = (*sync.Repository)(nil)

// =============================================================================
// Audit
// =============================================================================

var _ http.LibraryAudit = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.EnrichmentAuditor = (*audit.Service)(nil)
var _ tasks.CoverFixAuditor = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ http.MaintenanceRunner = (*scheduler.MaintenanceScheduler)(nil)
