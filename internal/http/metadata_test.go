package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/database/sync"
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/metadata"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

type mockLookup struct {
	books map[string]*metadata.BookMetadata
	err   error
}

func (m *mockLookup) LookupByISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	if md, ok := m.books[isbn]; ok {
		return md, nil
	}
	return nil, metadata.ErrNotFound
}

type mockEnricher struct {
	calls   []string
	err     error
	bulk    *metadata.BulkEnrichmentResult
	bulkErr error
}

func (m *mockEnricher) EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error) {
	m.calls = append(m.calls, fmt.Sprintf("book:%d", bookID))
	if m.err != nil {
		return nil, m.err
	}
	return &metadata.EnrichmentResult{
		Book:          &entities.Book{ID: bookID, Title: "Dune"},
		FieldsUpdated: []string{"publisher"},
		Source:        "openlibrary",
		SearchMethod:  "title",
	}, nil
}

func (m *mockEnricher) EnrichBookWithISBN(ctx context.Context, bookID uint, isbn string) (*metadata.EnrichmentResult, error) {
	m.calls = append(m.calls, fmt.Sprintf("isbn:%d:%s", bookID, isbn))
	if m.err != nil {
		return nil, m.err
	}
	return &metadata.EnrichmentResult{
		Book:          &entities.Book{ID: bookID, Title: "Dune", ISBN13: isbn},
		FieldsUpdated: []string{"isbn13"},
		Source:        "openlibrary",
		SearchMethod:  "isbn",
	}, nil
}

func (m *mockEnricher) EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error) {
	m.calls = append(m.calls, "all")
	return m.bulk, m.bulkErr
}

func newMetadataRouter(controller *MetadataController) *gin.Engine {
	router := gin.New()
	router.GET("/api/lookup/:isbn", controller.LookupISBN)
	router.POST("/api/books/:id/enrich", controller.EnrichBook)
	router.POST("/api/books/enrich-all", controller.EnrichAllMissing)
	router.GET("/api/sync/:type/status", controller.GetSyncStatus)
	return router
}

func TestMetadataController_LookupISBN(t *testing.T) {
	lookup := &mockLookup{books: map[string]*metadata.BookMetadata{
		"9780441013593": {Title: "Dune", Publisher: "Ace", PageCount: 412},
	}}
	router := newMetadataRouter(NewMetadataController(lookup, &mockEnricher{}))

	w := doJSON(router, "GET", "/api/lookup/9780441013593", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var md metadata.BookMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &md))
	assert.Equal(t, "Ace", md.Publisher)

	w = doJSON(router, "GET", "/api/lookup/0000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	lookup.err = errors.New("connection refused")
	w = doJSON(router, "GET", "/api/lookup/9780441013593", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMetadataController_EnrichBook(t *testing.T) {
	t.Run("without isbn", func(t *testing.T) {
		enricher := &mockEnricher{}
		router := newMetadataRouter(NewMetadataController(&mockLookup{}, enricher))

		w := doJSON(router, "POST", "/api/books/3/enrich", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"book:3"}, enricher.calls)

		var result metadata.EnrichmentResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, []string{"publisher"}, result.FieldsUpdated)
	})

	t.Run("with isbn", func(t *testing.T) {
		enricher := &mockEnricher{}
		router := newMetadataRouter(NewMetadataController(&mockLookup{}, enricher))

		w := doJSON(router, "POST", "/api/books/3/enrich", gin.H{"isbn": " 9780441013593 "})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"isbn:3:9780441013593"}, enricher.calls)
	})

	t.Run("book not found", func(t *testing.T) {
		enricher := &mockEnricher{err: fmt.Errorf("get book: %w", gorm.ErrRecordNotFound)}
		router := newMetadataRouter(NewMetadataController(&mockLookup{}, enricher))

		w := doJSON(router, "POST", "/api/books/3/enrich", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newMetadataRouter(NewMetadataController(&mockLookup{}, &mockEnricher{}))

		w := doJSON(router, "POST", "/api/books/abc/enrich", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetadataController_EnrichAllMissing(t *testing.T) {
	t.Run("enqueues when a queue is set", func(t *testing.T) {
		queue := &mockQueue{}
		enricher := &mockEnricher{}
		controller := NewMetadataController(&mockLookup{}, enricher)
		controller.SetTaskQueue(queue)
		router := newMetadataRouter(controller)

		w := doJSON(router, "POST", "/api/books/enrich-all", nil)
		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []backlite.Task{tasks.EnrichAllBooksTask{Trigger: "api"}}, queue.enqueued)
		assert.Empty(t, enricher.calls)
	})

	t.Run("runs inline without a queue", func(t *testing.T) {
		enricher := &mockEnricher{bulk: &metadata.BulkEnrichmentResult{TotalBooks: 2, Enriched: 1, Skipped: 1}}
		router := newMetadataRouter(NewMetadataController(&mockLookup{}, enricher))

		w := doJSON(router, "POST", "/api/books/enrich-all", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"enriched":1`)
	})

	t.Run("conflict while a sync runs", func(t *testing.T) {
		lib := setupTestDB(t, "metadata")
		progress := sync.NewRepository(lib.db.DB, entities.SyncTypeMetadata)
		require.NoError(t, progress.StartSync(10))

		queue := &mockQueue{}
		controller := NewMetadataController(&mockLookup{}, &mockEnricher{})
		controller.SetTaskQueue(queue)
		controller.SetSyncProgress(entities.SyncTypeMetadata, progress)
		router := newMetadataRouter(controller)

		w := doJSON(router, "POST", "/api/books/enrich-all", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, queue.enqueued)
	})
}

func TestMetadataController_GetSyncStatus(t *testing.T) {
	lib := setupTestDB(t, "metadata")
	metadataProgress := sync.NewRepository(lib.db.DB, entities.SyncTypeMetadata)
	coversProgress := sync.NewRepository(lib.db.DB, entities.SyncTypeCovers)

	controller := NewMetadataController(&mockLookup{}, &mockEnricher{})
	controller.SetSyncProgress(entities.SyncTypeMetadata, metadataProgress)
	controller.SetSyncProgress(entities.SyncTypeCovers, coversProgress)
	router := newMetadataRouter(controller)

	w := doJSON(router, "GET", "/api/sync/covers/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var idle SyncStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &idle))
	assert.False(t, idle.Running)
	assert.Zero(t, idle.TotalItems)

	require.NoError(t, metadataProgress.StartSync(4))
	require.NoError(t, metadataProgress.UpdateProgress(1, 1, 0, 0, "Dune"))

	w = doJSON(router, "GET", "/api/sync/metadata/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var running SyncStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &running))
	assert.True(t, running.Running)
	assert.Equal(t, 4, running.TotalItems)
	assert.Equal(t, "Dune", running.CurrentItem)
	assert.InDelta(t, 25.0, running.Progress, 0.001)

	w = doJSON(router, "GET", "/api/sync/unknown/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
