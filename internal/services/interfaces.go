package services

import "github.com/mrlokans/booklibrary/internal/entities"

// BookReader provides read-only access to the library.
// Use this interface when you only need to query books.
type BookReader interface {
	ListAllBooks() ([]entities.Book, error)
	// FindByTitleAuthor matches title and author case-insensitively after
	// trimming whitespace. It returns nil and no error when nothing matches.
	FindByTitleAuthor(title, author string) (*entities.Book, error)
}

// BookWriter persists new books. CreateBook assigns the book's ID, links the
// shelves listed in ShelfIDs and creates the ones named in NewShelves. A
// failed CreateBook leaves no shelves behind.
type BookWriter interface {
	CreateBook(book *entities.Book) error
}

// LibraryStore is the store contract consumed by the CSV importer.
type LibraryStore interface {
	BookReader
	BookWriter
}
