package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Books   *int64            `json:"books,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// BookCounter reports the size of the library.
type BookCounter interface {
	CountBooks() (int64, error)
}

type HealthController struct {
	db      *database.Database
	books   BookCounter
	version string
	queue   bool
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// SetBookCounter adds the library size to the health report.
func (h *HealthController) SetBookCounter(books BookCounter) {
	h.books = books
}

// SetTaskQueueEnabled records whether background tasks are running.
func (h *HealthController) SetTaskQueueEnabled(enabled bool) {
	h.queue = enabled
}

// Status handles GET /health
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.queue {
		checks["tasks"] = "enabled"
	} else {
		checks["tasks"] = "disabled"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	if h.books != nil && status == "healthy" {
		if count, err := h.books.CountBooks(); err == nil {
			health.Books = &count
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
