package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/database/shelves"
	"github.com/mrlokans/booklibrary/internal/entities"
)

// ShelfStore defines database operations for shelf management.
type ShelfStore interface {
	CreateShelf(name string) (*entities.Shelf, error)
	GetShelfByID(id uint) (*entities.Shelf, error)
	GetShelvesWithCounts() ([]entities.ShelfWithCount, error)
	RenameShelf(id uint, name string) error
	DeleteShelf(id uint) error
	DeleteOrphanShelves() (int64, error)
	ExclusiveShelfCounts() ([]entities.ExclusiveShelfCount, error)
}

type ShelvesController struct {
	store   ShelfStore
	auditor DeleteAuditor
}

func NewShelvesController(store ShelfStore) *ShelvesController {
	return &ShelvesController{store: store}
}

// SetAuditor enables audit events for shelf deletions.
func (sc *ShelvesController) SetAuditor(auditor DeleteAuditor) {
	sc.auditor = auditor
}

type shelfRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetAllShelves returns all shelves with their book counts
// GET /api/shelves
func (sc *ShelvesController) GetAllShelves(c *gin.Context) {
	list, err := sc.store.GetShelvesWithCounts()
	if err != nil {
		respondInternalError(c, err, "get shelves")
		return
	}
	if list == nil {
		list = []entities.ShelfWithCount{}
	}
	c.JSON(http.StatusOK, list)
}

// GetExclusiveShelfCounts returns the number of books per reading status
// GET /api/shelves/exclusive
func (sc *ShelvesController) GetExclusiveShelfCounts(c *gin.Context) {
	counts, err := sc.store.ExclusiveShelfCounts()
	if err != nil {
		respondInternalError(c, err, "count exclusive shelves")
		return
	}
	if counts == nil {
		counts = []entities.ExclusiveShelfCount{}
	}
	c.JSON(http.StatusOK, counts)
}

// CreateShelf creates a new, empty shelf
// POST /api/shelves
func (sc *ShelvesController) CreateShelf(c *gin.Context) {
	var req shelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	shelf, err := sc.store.CreateShelf(req.Name)
	if err != nil {
		sc.respondWriteError(c, err, "create shelf")
		return
	}

	respondCreated(c, shelf)
}

// RenameShelf changes a shelf's name
// PUT /api/shelves/:id
func (sc *ShelvesController) RenameShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req shelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	if err := sc.store.RenameShelf(id, req.Name); err != nil {
		sc.respondWriteError(c, err, "rename shelf")
		return
	}

	shelf, err := sc.store.GetShelfByID(id)
	if err != nil {
		respondStoreError(c, err, "shelf", "get shelf")
		return
	}
	c.JSON(http.StatusOK, shelf)
}

// DeleteShelf removes a shelf and detaches it from its books
// DELETE /api/shelves/:id
func (sc *ShelvesController) DeleteShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shelf, err := sc.store.GetShelfByID(id)
	if err != nil {
		respondStoreError(c, err, "shelf", "get shelf")
		return
	}

	if err := sc.store.DeleteShelf(id); err != nil {
		respondStoreError(c, err, "shelf", "delete shelf")
		return
	}
	if sc.auditor != nil {
		sc.auditor.LogDelete("shelf", id, shelf.Name)
	}

	respondSuccess(c, "shelf deleted")
}

// CleanupOrphanShelves removes shelves that no book uses
// POST /api/shelves/cleanup
func (sc *ShelvesController) CleanupOrphanShelves(c *gin.Context) {
	deleted, err := sc.store.DeleteOrphanShelves()
	if err != nil {
		respondInternalError(c, err, "cleanup orphan shelves")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (sc *ShelvesController) respondWriteError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, shelves.ErrEmptyName):
		respondBadRequest(c, "name is required")
	case isUniqueViolation(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "a shelf with this name already exists", Code: CodeConflict})
	default:
		respondStoreError(c, err, "shelf", context)
	}
}

// isUniqueViolation reports whether err comes from a SQLite unique index.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
