package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/metadata"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

const enrichTimeout = 30 * time.Second

// MetadataLookup fetches metadata by ISBN without touching the library.
type MetadataLookup interface {
	LookupByISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// BookEnricher fills missing book metadata.
type BookEnricher interface {
	EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error)
	EnrichBookWithISBN(ctx context.Context, bookID uint, isbn string) (*metadata.EnrichmentResult, error)
	EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error)
}

// SyncProgressReader reads the persisted progress of a bulk operation.
type SyncProgressReader interface {
	GetSyncProgress() (*entities.SyncProgress, error)
	IsSyncRunning() (bool, error)
}

// MetadataController handles book metadata lookup and enrichment endpoints.
type MetadataController struct {
	lookup   MetadataLookup
	enricher BookEnricher
	progress map[entities.SyncType]SyncProgressReader
	queue    TaskEnqueuer
}

// NewMetadataController creates a new MetadataController.
func NewMetadataController(lookup MetadataLookup, enricher BookEnricher) *MetadataController {
	return &MetadataController{
		lookup:   lookup,
		enricher: enricher,
		progress: make(map[entities.SyncType]SyncProgressReader),
	}
}

// SetTaskQueue makes bulk enrichment run in the background.
func (mc *MetadataController) SetTaskQueue(queue TaskEnqueuer) {
	mc.queue = queue
}

// SetSyncProgress registers the progress reader of a sync type.
func (mc *MetadataController) SetSyncProgress(syncType entities.SyncType, reader SyncProgressReader) {
	mc.progress[syncType] = reader
}

// LookupISBN handles GET /api/lookup/:isbn
func (mc *MetadataController) LookupISBN(c *gin.Context) {
	isbn := strings.TrimSpace(c.Param("isbn"))
	if isbn == "" {
		respondBadRequest(c, "isbn is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), enrichTimeout)
	defer cancel()

	md, err := mc.lookup.LookupByISBN(ctx, isbn)
	if err != nil {
		respondMetadataError(c, err)
		return
	}
	c.JSON(http.StatusOK, md)
}

// EnrichBookRequest is the optional body of an enrichment request.
type EnrichBookRequest struct {
	ISBN string `json:"isbn,omitempty"`
}

// EnrichBook handles POST /api/books/:id/enrich
// An ISBN in the body is looked up first and stored on the book when found.
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req EnrichBookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), enrichTimeout)
	defer cancel()

	var result *metadata.EnrichmentResult
	var err error
	if isbn := strings.TrimSpace(req.ISBN); isbn != "" {
		result, err = mc.enricher.EnrichBookWithISBN(ctx, id, isbn)
	} else {
		result, err = mc.enricher.EnrichBook(ctx, id)
	}
	if err != nil {
		respondMetadataError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EnrichAllMissing handles POST /api/books/enrich-all
// With a task queue the run is enqueued and 202 is returned; otherwise the
// books are enriched before responding.
func (mc *MetadataController) EnrichAllMissing(c *gin.Context) {
	if reader, ok := mc.progress[entities.SyncTypeMetadata]; ok {
		if running, err := reader.IsSyncRunning(); err == nil && running {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "metadata sync is already in progress", Code: CodeConflict})
			return
		}
	}

	if mc.queue != nil {
		id, err := mc.queue.Enqueue(c.Request.Context(), tasks.EnrichAllBooksTask{Trigger: "api"})
		if err != nil {
			respondInternalError(c, err, "enqueue enrichment")
			return
		}
		log.Printf("[METADATA] Enqueued bulk enrichment task %s", id)
		respondAccepted(c, "metadata sync started", gin.H{"task_id": id})
		return
	}

	result, err := mc.enricher.EnrichAllMissing(c.Request.Context())
	if err != nil {
		respondInternalErrorWithDetails(c, err, "enrich all", result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncStatusResponse is the progress of a bulk operation.
type SyncStatusResponse struct {
	SyncType    entities.SyncType `json:"sync_type"`
	Running     bool              `json:"running"`
	Status      string            `json:"status,omitempty"`
	TotalItems  int               `json:"total_items"`
	Processed   int               `json:"processed"`
	Succeeded   int               `json:"succeeded"`
	Failed      int               `json:"failed"`
	Skipped     int               `json:"skipped"`
	CurrentItem string            `json:"current_item,omitempty"`
	Error       string            `json:"error,omitempty"`
	Progress    float64           `json:"progress"` // 0-100
}

// GetSyncStatus handles GET /api/sync/:type/status
// type is "metadata" or "covers". A type that never ran reports idle.
func (mc *MetadataController) GetSyncStatus(c *gin.Context) {
	syncType := entities.SyncType(c.Param("type"))
	reader, ok := mc.progress[syncType]
	if !ok {
		respondNotFound(c, "sync type")
		return
	}

	resp := SyncStatusResponse{SyncType: syncType}
	progress, err := reader.GetSyncProgress()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, resp)
		return
	}
	if err != nil {
		respondInternalError(c, err, "get sync progress")
		return
	}

	resp.Running = progress.Status == entities.SyncStatusRunning
	resp.Status = string(progress.Status)
	resp.TotalItems = progress.TotalItems
	resp.Processed = progress.Processed
	resp.Succeeded = progress.Succeeded
	resp.Failed = progress.Failed
	resp.Skipped = progress.Skipped
	resp.CurrentItem = progress.CurrentItem
	resp.Error = progress.Error
	if progress.TotalItems > 0 {
		resp.Progress = float64(progress.Processed) / float64(progress.TotalItems) * 100
	}

	c.JSON(http.StatusOK, resp)
}

// respondMetadataError maps lookup and enrichment failures to statuses.
func respondMetadataError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, metadata.ErrNotFound):
		respondNotFound(c, "metadata")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "metadata provider timed out")
	default:
		log.Printf("[METADATA] Provider error: %v", err)
		respondError(c, http.StatusBadGateway, "metadata provider error")
	}
}
