package database

import (
	"github.com/mrlokans/booklibrary/internal/database/books"
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/metadata"
)

// MetadataUpdater adapts the books repository to metadata.BookUpdater.
type MetadataUpdater struct {
	books *books.Repository
}

// NewMetadataUpdater creates a MetadataUpdater over the given repository.
func NewMetadataUpdater(repo *books.Repository) *MetadataUpdater {
	return &MetadataUpdater{books: repo}
}

// GetBookByID delegates to the repository.
func (m *MetadataUpdater) GetBookByID(id uint) (*entities.Book, error) {
	return m.books.GetBookByID(id)
}

// UpdateBookMetadata converts BookUpdateFields to a column map and updates the book.
func (m *MetadataUpdater) UpdateBookMetadata(id uint, fields metadata.BookUpdateFields) error {
	return m.books.UpdateBookMetadata(id, UpdateColumns(fields))
}

// GetBooksMissingMetadata delegates to the repository.
func (m *MetadataUpdater) GetBooksMissingMetadata() ([]entities.Book, error) {
	return m.books.GetBooksMissingMetadata()
}

// UpdateColumns maps the non-nil enrichment fields to their column names.
func UpdateColumns(fields metadata.BookUpdateFields) map[string]any {
	updates := make(map[string]any)

	if fields.ISBN != nil {
		updates["isbn"] = *fields.ISBN
	}
	if fields.ISBN13 != nil {
		updates["isbn13"] = *fields.ISBN13
	}
	if fields.CoverURL != nil {
		updates["cover_url"] = *fields.CoverURL
	}
	if fields.Publisher != nil {
		updates["publisher"] = *fields.Publisher
	}
	if fields.Pages != nil {
		updates["pages"] = *fields.Pages
	}
	if fields.YearPublished != nil {
		updates["year_published"] = *fields.YearPublished
	}
	if fields.OpenLibraryKey != nil {
		updates["open_library_key"] = *fields.OpenLibraryKey
	}

	return updates
}
