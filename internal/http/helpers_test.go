package http

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/importers"
	"github.com/mrlokans/booklibrary/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

func TestParseIDParam_Negative(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}

	_, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseIntQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=abc", nil)

	assert.Equal(t, 3, parseIntQuery(c, "page", 1))
	assert.Equal(t, 50, parseIntQuery(c, "limit", 50))
	assert.Equal(t, 7, parseIntQuery(c, "missing", 7))
}

func TestRespondStoreError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondStoreError(c, gorm.ErrRecordNotFound, "book", "get book")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "book not found")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondStoreError(c, errors.New("disk on fire"), "book", "get book")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestRespondValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondValidationError(c, &validation.Error{Fields: map[string]string{"title": "is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"validation_error"`)
	assert.Contains(t, w.Body.String(), `"title":"is required"`)
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := newPaginatedResponse(nil, 101, 2, 50)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasMore)

	resp = newPaginatedResponse(nil, 0, 1, 50)
	assert.Equal(t, 1, resp.TotalPages)
	assert.False(t, resp.HasMore)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestRespondInternalErrorWithDetails(t *testing.T) {
	logs := captureLog(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	outcome := &importers.ImportOutcome{Imported: 2, Total: 5, Skipped: []importers.SkippedRow{}}
	respondInternalErrorWithDetails(c, errors.New("disk full"), "import csv", outcome)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":2`)
	assert.NotContains(t, w.Body.String(), "disk full")
	assert.Contains(t, logs.String(), "Internal error (import csv): disk full")
}

func TestRespondInternalErrorWithDetails_NilDetails(t *testing.T) {
	logs := captureLog(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var outcome *importers.ImportOutcome
	respondInternalErrorWithDetails(c, errors.New("locked"), "import csv", outcome)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "details")
	assert.Contains(t, logs.String(), "Internal error (import csv): locked")
}
