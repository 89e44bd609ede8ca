package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/stats"
)

// StatsProvider computes library statistics.
type StatsProvider interface {
	GetStats() (*stats.Snapshot, error)
	Baselines() (stats.Baselines, error)
}

type StatsController struct {
	provider StatsProvider
}

func NewStatsController(provider StatsProvider) *StatsController {
	return &StatsController{provider: provider}
}

// GetStats handles GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	snapshot, err := sc.provider.GetStats()
	if err != nil {
		respondInternalError(c, err, "compute stats")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetBaselines handles GET /api/stats/baselines
// Returns the average page count of read books per book type.
func (sc *StatsController) GetBaselines(c *gin.Context) {
	baselines, err := sc.provider.Baselines()
	if err != nil {
		respondInternalError(c, err, "compute baselines")
		return
	}

	out := make(map[string]float64, len(baselines))
	for bookType, avg := range baselines {
		out[string(bookType)] = stats.Round(avg)
	}
	c.JSON(http.StatusOK, gin.H{"avg_pages": out})
}
