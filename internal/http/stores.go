package http

// Each controller declares the narrow store interface it needs next to its
// handlers. The composites below are what the router asks for, so a single
// repository can be handed to every controller that uses it.

// LibraryBooks is everything the API does with the book repository.
type LibraryBooks interface {
	BookStore
	BookCounter
}

// LibraryShelves is everything the API does with the shelf repository.
type LibraryShelves interface {
	ShelfStore
}

// LibraryAudit records and lists audit events.
type LibraryAudit interface {
	DeleteAuditor
	SettingsAuditor
	AuditReader
}

// LibraryCoverCache serves and drops cached cover images.
type LibraryCoverCache interface {
	CoverFetcher
	CoverCache
}
