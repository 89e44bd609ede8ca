package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/database/audit"
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/normalize"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 100
)

// AuditReader lists recorded audit events.
type AuditReader interface {
	GetEvents(filter audit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// GetAuditEvents handles GET /api/audit
// Query: type, run_id, since (YYYY-MM-DD), page, limit.
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := parseIntQuery(c, "limit", defaultAuditLimit)
	if limit < 1 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}

	filter := audit.EventFilter{
		EventType: entities.AuditEventType(c.Query("type")),
		RunID:     c.Query("run_id"),
	}
	if since := c.Query("since"); since != "" {
		date := normalize.Date(since)
		if date == nil {
			respondBadRequest(c, "since must be a date in the form YYYY-MM-DD")
			return
		}
		t, err := time.Parse(normalize.DateLayout, *date)
		if err != nil {
			respondBadRequest(c, "since must be a date in the form YYYY-MM-DD")
			return
		}
		filter.Since = t
	}

	events, total, err := ac.reader.GetEvents(filter, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, page, limit))
}
