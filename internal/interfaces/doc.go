// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces are declared by the package that consumes them, next to the code
// that calls them. This package only holds the compile-time checks that tie
// each concrete type to every interface it is expected to satisfy.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookReader, BookWriter: the importer's view of the library
//     (internal/services/interfaces.go)
//   - BookStore, ShelfStore, BookCounter: the API's view of the library
//     (internal/http/books.go, shelves.go, health.go)
//   - BookLister: input of the statistics service (internal/stats/service.go)
//   - BookUpdater: enrichment writes (internal/metadata/enricher.go)
//   - covers.BookStore: cover candidates and updates (internal/covers/resolver.go)
//
// ## Import Pipeline Interfaces
//
//   - CSVImporter: preview, detect, import, dry run and saved mappings
//     (internal/http/import.go)
//   - AuditLogger, RunArchiver, SettingsStore: optional importer
//     collaborators (internal/importers/service.go)
//
// ## External Service Interfaces
//
//   - MetadataProvider: Book metadata from external APIs (internal/metadata/enricher.go)
//   - ThumbnailSource, CoverURLBuilder: cover sources (internal/covers/resolver.go)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: Sync progress reporting (internal/metadata/enricher.go,
//     internal/covers/resolver.go)
//   - SyncProgressReader: progress polling from the API (internal/http/metadata.go)
//
// ## Background Work Interfaces
//
//   - TaskEnqueuer, TaskQueue: the backlite client as seen by the API and the
//     scheduler (internal/http/tasks.go, internal/scheduler/maintenance.go)
//   - MaintenanceRunner: the cron scheduler as seen by the API
//     (internal/http/maintenance.go)
//
// # Adding a New Import Source
//
// CSV exports from another tracker usually only need new header aliases:
//
//  1. Add the aliases to the matching FieldSpec in internal/importers/fields.go
//
//     {Key: FieldMyRating, Label: "My Rating", Aliases: []string{"Rating", "Stars", "Score"}},
//
//  2. Add a detection case to internal/importers/mapper_test.go
//
// # Adding a New Metadata Provider
//
// To add a new source of book metadata:
//
//  1. Implement MetadataProvider in internal/metadata/
//
//     func (c *WorldCatClient) LookupByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
//     func (c *WorldCatClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
//
//  2. Add a check to checks.go:
//
//     var _ metadata.MetadataProvider = (*metadata.WorldCatClient)(nil)
//
//  3. Pass it to metadata.NewEnricher in internal/entrypoint/app.go
//
// # Adding a New Background Task
//
//  1. Define the task type and its processor in internal/tasks/
//
//  2. Register the queue in (*tasks.Client).RegisterLibraryQueues and add the
//     type to tasks.TaskTypes and tasks.NewTask
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
