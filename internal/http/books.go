package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/validation"
)

// BookStore defines the book operations used by BooksController.
type BookStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	ListBooks(filter entities.BookFilter) (*entities.BookPage, error)
	FindByTitleAuthor(title, author string) (*entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(id uint, book *entities.Book) error
	DeleteBook(id uint) error
	ClearAll() (int64, error)
}

// DeleteAuditor records deletions.
type DeleteAuditor interface {
	LogDelete(entityType string, entityID uint, entityName string)
	LogClear(booksDeleted int64, err error)
}

// CoverCache drops cached cover images.
type CoverCache interface {
	InvalidateCover(bookID uint) error
	Clear() error
}

type BooksController struct {
	store     BookStore
	validator *validation.Validator
	auditor   DeleteAuditor
	covers    CoverCache
	now       func() time.Time
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{
		store:     store,
		validator: validation.New(),
		now:       time.Now,
	}
}

// SetAuditor enables audit events for deletions.
func (bc *BooksController) SetAuditor(auditor DeleteAuditor) {
	bc.auditor = auditor
}

// SetCoverCache keeps the cover cache in step with book changes.
func (bc *BooksController) SetCoverCache(cache CoverCache) {
	bc.covers = cache
}

// ListBooks handles GET /api/books
// Query: search, shelf, exclusive_shelf, sort, order (asc|desc), page, limit.
func (bc *BooksController) ListBooks(c *gin.Context) {
	filter := entities.BookFilter{
		Search:         strings.TrimSpace(c.Query("search")),
		Shelf:          c.Query("shelf"),
		ExclusiveShelf: c.Query("exclusive_shelf"),
		Sort:           c.Query("sort"),
		Ascending:      strings.EqualFold(c.Query("order"), "asc"),
		Page:           parseIntQuery(c, "page", 1),
		Limit:          parseIntQuery(c, "limit", 0),
	}

	page, err := bc.store.ListBooks(filter)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(page.Books, page.Total, page.Page, page.Limit))
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		respondStoreError(c, err, "book", "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /api/books
// A book with the same title and author as an existing one is rejected with
// 409, the same rule the CSV importer uses to skip duplicates.
func (bc *BooksController) CreateBook(c *gin.Context) {
	book, shelfNames, ok := bc.bindBook(c)
	if !ok {
		return
	}

	existing, err := bc.store.FindByTitleAuthor(book.Title, book.Author)
	if err != nil {
		respondInternalError(c, err, "check duplicate")
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "a book with this title and author already exists",
			Code:    CodeConflict,
			Details: gin.H{"id": existing.ID},
		})
		return
	}

	book.NewShelves = shelfNames
	if err := bc.store.CreateBook(&book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	created, err := bc.store.GetBookByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload book")
		return
	}
	respondCreated(c, created)
}

// UpdateBook handles PUT /api/books/:id
// The payload replaces every editable field and the shelf list.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	current, err := bc.store.GetBookByID(id)
	if err != nil {
		respondStoreError(c, err, "book", "get book")
		return
	}

	book, shelfNames, ok := bc.bindBook(c)
	if !ok {
		return
	}

	existing, err := bc.store.FindByTitleAuthor(book.Title, book.Author)
	if err != nil {
		respondInternalError(c, err, "check duplicate")
		return
	}
	if existing != nil && existing.ID != id {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "another book with this title and author already exists",
			Code:    CodeConflict,
			Details: gin.H{"id": existing.ID},
		})
		return
	}

	book.NewShelves = shelfNames
	if err := bc.store.UpdateBook(id, &book); err != nil {
		respondStoreError(c, err, "book", "update book")
		return
	}
	if bc.covers != nil && current.CoverURL != book.CoverURL {
		_ = bc.covers.InvalidateCover(id)
	}

	updated, err := bc.store.GetBookByID(id)
	if err != nil {
		respondInternalError(c, err, "reload book")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteBook handles DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		respondStoreError(c, err, "book", "get book")
		return
	}

	if err := bc.store.DeleteBook(id); err != nil {
		respondStoreError(c, err, "book", "delete book")
		return
	}
	if bc.covers != nil {
		_ = bc.covers.InvalidateCover(id)
	}
	if bc.auditor != nil {
		bc.auditor.LogDelete("book", id, book.Title)
	}

	respondSuccess(c, "Book deleted")
}

// ClearLibrary handles DELETE /api/books?confirm=true
// It removes every book and shelf.
func (bc *BooksController) ClearLibrary(c *gin.Context) {
	if c.Query("confirm") != "true" {
		respondBadRequest(c, "confirm=true is required to clear the library")
		return
	}

	deleted, err := bc.store.ClearAll()
	if bc.auditor != nil {
		bc.auditor.LogClear(deleted, err)
	}
	if err != nil {
		respondInternalError(c, err, "clear library")
		return
	}
	if bc.covers != nil {
		_ = bc.covers.Clear()
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (bc *BooksController) bindBook(c *gin.Context) (entities.Book, []string, bool) {
	var input BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid JSON body: "+err.Error())
		return entities.Book{}, nil, false
	}

	if err := bc.validator.Validate(input); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respondValidationError(c, verr)
		} else {
			respondInternalError(c, err, "validate book")
		}
		return entities.Book{}, nil, false
	}

	return input.ToBook(bc.now()), input.ShelfNames(), true
}
