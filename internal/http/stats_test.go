package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/stats"
)

type failingLister struct{}

func (failingLister) ListAllBooks() ([]entities.Book, error) {
	return nil, errors.New("database is locked")
}

func newStatsRouter(provider StatsProvider) *gin.Engine {
	controller := NewStatsController(provider)
	router := gin.New()
	router.GET("/api/stats", controller.GetStats)
	router.GET("/api/stats/baselines", controller.GetBaselines)
	return router
}

func TestStatsController_GetStats(t *testing.T) {
	lib := setupTestDB(t, "stats")
	read := entities.ExclusiveShelfRead
	lib.addBook(t, entities.Book{Title: "Dune", Author: "Frank Herbert", Pages: intPtr(300), MyRating: 5, ExclusiveShelf: read})
	lib.addBook(t, entities.Book{Title: "Emma", Author: "Jane Austen", Pages: intPtr(100), MyRating: 4, ExclusiveShelf: read})
	lib.addBook(t, entities.Book{Title: "Maus", Author: "Art Spiegelman", Pages: intPtr(50), ExclusiveShelf: read, BookType: entities.BookTypeGraphicNovel})
	lib.addBook(t, entities.Book{Title: "Hyperion", Author: "Dan Simmons", Pages: intPtr(482)})

	router := newStatsRouter(stats.NewService(lib.books))

	w := doJSON(router, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot stats.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, 4, snapshot.TotalBooks)
	assert.Equal(t, 3, snapshot.TotalRead)
	assert.InDelta(t, 3.0, snapshot.TotalBEq, 0.01)
	assert.InDelta(t, 200.0, snapshot.AvgPagesTraditional, 0.01)
	assert.InDelta(t, 50.0, snapshot.AvgPagesGraphicNovel, 0.01)
	assert.InDelta(t, 4.5, snapshot.AvgRating, 0.01)

	w = doJSON(router, "GET", "/api/stats/baselines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"avg_pages":{"traditional":200,"graphic_novel":50}}`, w.Body.String())
}

func TestStatsController_Errors(t *testing.T) {
	router := newStatsRouter(stats.NewService(failingLister{}))

	w := doJSON(router, "GET", "/api/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(router, "GET", "/api/stats/baselines", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
