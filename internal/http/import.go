package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/importers"
)

// DefaultMaxUploadBytes caps an uploaded CSV document.
const DefaultMaxUploadBytes int64 = 10 << 20

// CSVImporter defines the import operations used by ImportController.
type CSVImporter interface {
	PreviewHeaders(csvText string) ([]string, error)
	AutoDetectColumns(headers []string) importers.Detection
	ImportCSV(ctx context.Context, csvText string, mapping importers.ColumnMapping, source string) (*importers.ImportOutcome, error)
	DryRunCSV(ctx context.Context, csvText string, mapping importers.ColumnMapping) (*importers.ImportOutcome, error)
	SavedMapping() (importers.ColumnMapping, error)
	SaveMapping(mapping importers.ColumnMapping) error
}

type ImportController struct {
	importer       CSVImporter
	maxUploadBytes int64
}

func NewImportController(importer CSVImporter, maxUploadBytes int64) *ImportController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ImportController{importer: importer, maxUploadBytes: maxUploadBytes}
}

// PreviewResponse lists the headers of an uploaded document and the mapping
// proposed for them.
type PreviewResponse struct {
	Headers   []string              `json:"headers"`
	Detection importers.Detection   `json:"detection"`
	Fields    []importers.FieldSpec `json:"fields"`
}

// Preview handles POST /api/import/preview
// Accepts a multipart "file" or a text/csv body.
func (ic *ImportController) Preview(c *gin.Context) {
	csvText, ok := ic.readCSV(c)
	if !ok {
		return
	}

	headers, err := ic.importer.PreviewHeaders(csvText)
	if err != nil {
		respondImportError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{
		Headers:   headers,
		Detection: ic.importer.AutoDetectColumns(headers),
		Fields:    importers.Fields,
	})
}

// Detect handles POST /api/import/detect
// Proposes a mapping for a list of headers: {"headers": [...]}.
func (ic *ImportController) Detect(c *gin.Context) {
	var req struct {
		Headers []string `json:"headers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "headers are required")
		return
	}
	c.JSON(http.StatusOK, ic.importer.AutoDetectColumns(req.Headers))
}

// Import handles POST /api/import/csv
// Form fields: file, mapping (JSON object of field to header),
// use_saved_mapping, save_mapping, source.
func (ic *ImportController) Import(c *gin.Context) {
	ic.run(c, false)
}

// DryRun handles POST /api/import/dry-run
// Same input as Import; nothing is written.
func (ic *ImportController) DryRun(c *gin.Context) {
	ic.run(c, true)
}

func (ic *ImportController) run(c *gin.Context, dryRun bool) {
	csvText, ok := ic.readCSV(c)
	if !ok {
		return
	}

	mapping, ok := ic.resolveMapping(c)
	if !ok {
		return
	}

	var outcome *importers.ImportOutcome
	var err error
	if dryRun {
		outcome, err = ic.importer.DryRunCSV(c.Request.Context(), csvText, mapping)
	} else {
		source := formValue(c, "source")
		if source == "" {
			source = "csv"
		}
		outcome, err = ic.importer.ImportCSV(c.Request.Context(), csvText, mapping, source)
	}
	if err != nil {
		respondImportError(c, err, outcome)
		return
	}

	if !dryRun && formValue(c, "save_mapping") == "true" {
		if err := ic.importer.SaveMapping(mapping); err != nil {
			respondInternalError(c, err, "save mapping")
			return
		}
	}

	c.JSON(http.StatusOK, outcome)
}

// GetMapping handles GET /api/import/mapping
func (ic *ImportController) GetMapping(c *gin.Context) {
	mapping, err := ic.importer.SavedMapping()
	if err != nil {
		respondInternalError(c, err, "load mapping")
		return
	}
	if mapping == nil {
		respondNotFound(c, "saved mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

// SaveMapping handles PUT /api/import/mapping
// Body: {"mapping": {"title": "Title", ...}}.
func (ic *ImportController) SaveMapping(c *gin.Context) {
	var req struct {
		Mapping importers.ColumnMapping `json:"mapping" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "mapping is required")
		return
	}

	mapping := req.Mapping.Normalize()
	if missing := mapping.MissingRequired(); len(missing) > 0 {
		respondImportError(c, &importers.ValidationError{Missing: missing}, nil)
		return
	}

	if err := ic.importer.SaveMapping(mapping); err != nil {
		respondInternalError(c, err, "save mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

// readCSV returns the uploaded document, from a multipart "file" field or
// the raw request body.
func (ic *ImportController) readCSV(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes)

	var reader io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			ic.respondUploadError(c, err, "CSV file is required")
			return "", false
		}
		f, err := file.Open()
		if err != nil {
			respondInternalError(c, err, "open upload")
			return "", false
		}
		defer f.Close()
		reader = f
	} else {
		reader = c.Request.Body
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		ic.respondUploadError(c, err, "failed to read CSV")
		return "", false
	}
	if len(data) == 0 {
		respondBadRequest(c, "CSV file is empty")
		return "", false
	}
	return string(data), true
}

func (ic *ImportController) respondUploadError(c *gin.Context, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("CSV file exceeds %d bytes", ic.maxUploadBytes))
		return
	}
	respondBadRequest(c, message)
}

// resolveMapping reads the confirmed mapping from the "mapping" field, or
// the saved one when use_saved_mapping is set. Explicit fields override the
// saved ones.
func (ic *ImportController) resolveMapping(c *gin.Context) (importers.ColumnMapping, bool) {
	mapping := importers.ColumnMapping{}

	if formValue(c, "use_saved_mapping") == "true" {
		saved, err := ic.importer.SavedMapping()
		if err != nil {
			respondInternalError(c, err, "load mapping")
			return nil, false
		}
		if saved == nil {
			respondBadRequest(c, "no saved mapping")
			return nil, false
		}
		mapping = saved
	}

	if raw := formValue(c, "mapping"); raw != "" {
		var explicit importers.ColumnMapping
		if err := json.Unmarshal([]byte(raw), &explicit); err != nil {
			respondBadRequest(c, "mapping must be a JSON object of field to header")
			return nil, false
		}
		mapping = mapping.Apply(explicit)
	}

	if len(mapping) == 0 {
		respondBadRequest(c, "mapping is required; use /api/import/preview to get a proposal")
		return nil, false
	}
	return mapping.Normalize(), true
}

// respondImportError maps the import error taxonomy onto HTTP statuses.
// outcome, when present, describes the rows written before a store failure.
func respondImportError(c *gin.Context, err error, outcome *importers.ImportOutcome) {
	var parseErr *importers.ParseError
	var validationErr *importers.ValidationError

	switch {
	case errors.As(err, &parseErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   parseErr.Error(),
			Code:    CodeParse,
			Details: gin.H{"line": parseErr.Line},
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validationErr.Error(),
			Code:    CodeValidation,
			Details: gin.H{"missing": validationErr.Missing},
		})
	default:
		respondInternalErrorWithDetails(c, err, "import csv", outcome)
	}
}

// formValue reads a multipart/form field, falling back to the query string.
func formValue(c *gin.Context, name string) string {
	if v := c.PostForm(name); v != "" {
		return v
	}
	return c.Query(name)
}
