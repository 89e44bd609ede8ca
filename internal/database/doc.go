// Package database provides the data access layer for the library.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Book CRUD, listing, dedupe lookup, metadata updates
//	├── shelves/         # Free-form shelves and their book associations
//	├── sync/            # Progress of long-running enrichment runs
//	├── settings/        # Key/value application settings
//	└── audit/           # Audit trail of imports, deletes and maintenance
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./library.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	shelvesRepo := shelves.NewRepository(db.DB)
//
//	page, err := booksRepo.ListBooks(entities.BookFilter{Search: "dune"})
//	counts, err := shelvesRepo.GetShelvesWithCounts()
//
// # Interface Implementations
//
//   - books.Repository: implements services.LibraryStore for the importer
//     and covers.BookStore; it creates named shelves inside the book's own
//     transaction through shelves.EnsureInTx
//   - database.MetadataUpdater: adapts books.Repository to metadata.BookUpdater
//   - shelves.Repository: implements http.ShelfStore
//   - sync.Repository: implements metadata.ProgressReporter and covers.ProgressReporter
//   - settings.Repository: implements importers.SettingsStore
//   - audit.Repository: is wrapped by the audit.Service
package database
