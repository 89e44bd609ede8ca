package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/covers"
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

// BookReader loads a single book.
type BookReader interface {
	GetBookByID(id uint) (*entities.Book, error)
}

// CoverFetcher returns the local path of a cached cover.
type CoverFetcher interface {
	GetCover(ctx context.Context, bookID uint, coverURL string) (string, error)
}

// CoverFixer re-resolves broken or missing covers.
type CoverFixer interface {
	FixCovers(ctx context.Context) (*covers.FixCoversResult, error)
}

// CoversController handles book cover requests.
type CoversController struct {
	books BookReader
	cache CoverFetcher
	fixer CoverFixer
	queue TaskEnqueuer
}

// NewCoversController creates a new CoversController. cache and fixer may
// be nil.
func NewCoversController(books BookReader, cache CoverFetcher, fixer CoverFixer) *CoversController {
	return &CoversController{books: books, cache: cache, fixer: fixer}
}

// SetTaskQueue makes cover fixing run in the background.
func (cc *CoversController) SetTaskQueue(queue TaskEnqueuer) {
	cc.queue = queue
}

// GetCover handles GET /api/books/:id/cover
// Serves the cached image, or redirects to the cover URL when it cannot be
// cached.
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.GetBookByID(id)
	if err != nil {
		respondStoreError(c, err, "book", "get book")
		return
	}
	if book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	if cc.cache == nil {
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	cachePath, err := cc.cache.GetCover(c.Request.Context(), id, book.CoverURL)
	if err != nil || cachePath == "" {
		if err != nil {
			log.Printf("[COVERS] Failed to cache cover of book %d: %v", id, err)
		}
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	c.File(cachePath)
}

// FixCovers handles POST /api/covers/fix
func (cc *CoversController) FixCovers(c *gin.Context) {
	if cc.queue != nil {
		id, err := cc.queue.Enqueue(c.Request.Context(), tasks.FixCoversTask{Trigger: "api"})
		if err != nil {
			respondInternalError(c, err, "enqueue cover fix")
			return
		}
		respondAccepted(c, "cover fix started", gin.H{"task_id": id})
		return
	}

	if cc.fixer == nil {
		respondError(c, http.StatusServiceUnavailable, "cover fixing is not configured")
		return
	}

	result, err := cc.fixer.FixCovers(c.Request.Context())
	if err != nil {
		respondInternalErrorWithDetails(c, err, "fix covers", result)
		return
	}
	c.JSON(http.StatusOK, result)
}
