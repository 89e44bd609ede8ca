// Package books provides database operations for the book library.
//
// This package implements the BookReader and BookWriter interfaces defined in
// internal/services/interfaces.go, plus the listing and metadata operations
// used by the HTTP layer and the enrichment tasks.
//
// # Interface Implementation
//
//	var _ services.BookReader = (*Repository)(nil)
//	var _ services.BookWriter = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	page, err := repo.ListBooks(entities.BookFilter{Search: "herbert"})
package books

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/database/shelves"
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/normalize"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// beqExpr computes a book's Book Equivalent on the fly: its pages divided by
// the average page count of read books of the same type.
const beqExpr = "CASE WHEN books.pages > 0 THEN ROUND(books.pages * 1.0 / NULLIF((" +
	"SELECT AVG(b2.pages) FROM books b2 WHERE b2.book_type = books.book_type " +
	"AND b2.exclusive_shelf = 'read' AND b2.pages > 0), 0), 2) ELSE NULL END"

var sortColumns = map[string]string{
	entities.SortTitle:         "LOWER(books.title)",
	entities.SortAuthor:        "LOWER(COALESCE(NULLIF(books.author_sort, ''), books.author))",
	entities.SortMyRating:      "books.my_rating",
	entities.SortPages:         "books.pages",
	entities.SortBEq:           "beq",
	entities.SortDateRead:      "books.date_read",
	entities.SortYearPublished: "books.year_published",
	entities.SortAverageRating: "books.average_rating",
	entities.SortDateAdded:     "books.date_added",
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) withBEq() *gorm.DB {
	return r.db.Model(&entities.Book{}).Select("books.*, " + beqExpr + " AS beq").Preload("Shelves")
}

// ListAllBooks returns every book with its shelves, in insertion order.
func (r *Repository) ListAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Shelves").Order("id ASC").Find(&books).Error
	return books, err
}

// FindByTitleAuthor looks up a book by title and author, ignoring case and
// surrounding whitespace. Matching uses the stored dedupe key, which folds
// case for every script. It returns nil, nil when there is no match.
func (r *Repository) FindByTitleAuthor(title, author string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("dedupe_key = ?", normalize.DedupeKey(title, author)).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts the book and links it to the shelves in book.ShelfIDs
// and book.NewShelves. Shelves created here roll back when the insert fails.
func (r *Repository) CreateBook(book *entities.Book) error {
	book.DedupeKey = normalize.DedupeKey(book.Title, book.Author)
	return r.db.Transaction(func(tx *gorm.DB) error {
		shelfIDs, err := resolveShelves(tx, book)
		if err != nil {
			return err
		}
		if err := tx.Omit("Shelves").Create(book).Error; err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		return linkShelves(tx, book.ID, shelfIDs)
	})
}

// BackfillDedupeKeys fills the dedupe key of books stored before the column
// existed. It returns the number of books updated.
func (r *Repository) BackfillDedupeKeys() (int, error) {
	var stale []entities.Book
	err := r.db.Select("id", "title", "author").
		Where("dedupe_key IS NULL OR dedupe_key = ''").
		Find(&stale).Error
	if err != nil {
		return 0, fmt.Errorf("find books without dedupe key: %w", err)
	}
	for _, b := range stale {
		err := r.db.Model(&entities.Book{}).Where("id = ?", b.ID).
			UpdateColumn("dedupe_key", normalize.DedupeKey(b.Title, b.Author)).Error
		if err != nil {
			return 0, fmt.Errorf("backfill dedupe key of book %d: %w", b.ID, err)
		}
	}
	return len(stale), nil
}

// GetBookByID retrieves a book with its shelves and computed BEq.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.withBEq().Where("books.id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns one page of books matching the filter, sorted as
// requested, each with its computed BEq.
func (r *Repository) ListBooks(filter entities.BookFilter) (*entities.BookPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(filter.Search); s != "" {
			pattern := "%" + s + "%"
			db = db.Where(
				"(LOWER(books.title) LIKE LOWER(?) OR LOWER(books.author) LIKE LOWER(?) OR books.isbn LIKE ? OR books.isbn13 LIKE ?)",
				pattern, pattern, pattern, pattern,
			)
		}
		if es := filter.ExclusiveShelf; es != "" && es != "all" {
			db = db.Where("books.exclusive_shelf = ?", es)
		}
		if shelf := filter.Shelf; shelf != "" && shelf != "all" {
			db = db.Where(
				"books.id IN (SELECT bs.book_id FROM book_shelves bs JOIN shelves s ON bs.shelf_id = s.id WHERE s.name = ?)",
				shelf,
			)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&entities.Book{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[entities.SortDateAdded]
	}
	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}

	var books []entities.Book
	err := r.withBEq().Scopes(scope).
		Order(fmt.Sprintf("%s %s, books.id %s", column, dir, dir)).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return &entities.BookPage{Books: books, Total: total, Page: page, Limit: limit}, nil
}

// UpdateBook overwrites every editable column of an existing book and
// replaces its shelf links with book.ShelfIDs and book.NewShelves.
func (r *Repository) UpdateBook(id uint, book *entities.Book) error {
	book.DedupeKey = normalize.DedupeKey(book.Title, book.Author)
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}

		book.ID = id
		book.CreatedAt = existing.CreatedAt
		err := tx.Model(&existing).Select("*").Omit("id", "created_at", "Shelves").Updates(book).Error
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}

		if err := tx.Exec("DELETE FROM book_shelves WHERE book_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink shelves: %w", err)
		}
		shelfIDs, err := resolveShelves(tx, book)
		if err != nil {
			return err
		}
		return linkShelves(tx, id, shelfIDs)
	})
}

// DeleteBook removes a book and its shelf links.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_shelves WHERE book_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink shelves: %w", err)
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ClearAll deletes every book, shelf and shelf link. It returns the number
// of books removed.
func (r *Repository) ClearAll() (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_shelves").Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&entities.Shelf{}).Error; err != nil {
			return err
		}
		result := tx.Where("1 = 1").Delete(&entities.Book{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// CountBooks returns the number of books in the library.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// UpdateBookMetadata updates specific metadata columns.
func (r *Repository) UpdateBookMetadata(id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// GetBooksMissingMetadata returns books with an ISBN that still lack a
// publisher, page count, publication year or cover.
func (r *Repository) GetBooksMissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("(isbn <> '' OR isbn13 <> '')").
		Where("(publisher = '' OR publisher IS NULL OR pages IS NULL OR pages = 0 OR year_published IS NULL OR cover_url = '' OR cover_url IS NULL)").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// GetCoverCandidates returns books whose cover needs checking: those without
// a cover URL and those pointing at Open Library, which serves a blank
// placeholder for unknown ISBNs.
func (r *Repository) GetCoverCandidates() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("cover_url = '' OR cover_url IS NULL OR cover_url LIKE ?", "%openlibrary%").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// UpdateCoverURL sets the cover URL of a book.
func (r *Repository) UpdateCoverURL(id uint, coverURL string) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Update("cover_url", coverURL).Error
}

func resolveShelves(tx *gorm.DB, book *entities.Book) ([]uint, error) {
	if len(book.NewShelves) == 0 {
		return book.ShelfIDs, nil
	}
	ids, err := shelves.EnsureInTx(tx, book.NewShelves)
	if err != nil {
		return nil, fmt.Errorf("resolve shelves: %w", err)
	}
	return append(append([]uint(nil), book.ShelfIDs...), ids...), nil
}

func linkShelves(tx *gorm.DB, bookID uint, shelfIDs []uint) error {
	for _, shelfID := range shelfIDs {
		err := tx.Exec("INSERT OR IGNORE INTO book_shelves (book_id, shelf_id) VALUES (?, ?)", bookID, shelfID).Error
		if err != nil {
			return fmt.Errorf("link shelf %d: %w", shelfID, err)
		}
	}
	return nil
}
