package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklibrary/internal/settingsstore"
)

// MaintenanceSettingsStore reads and writes the maintenance configuration.
type MaintenanceSettingsStore interface {
	GetMaintenanceConfig() settingsstore.MaintenanceConfig
	GetMaintenanceConfigInfo() settingsstore.MaintenanceConfigInfo
	SetMaintenanceConfig(cfg settingsstore.MaintenanceConfig) error
	ClearMaintenanceConfig() error
	GetMaintenanceStatus() settingsstore.MaintenanceStatus
}

// MaintenanceRunner controls the maintenance schedule.
type MaintenanceRunner interface {
	Reschedule(ctx context.Context) error
	RunNow(ctx context.Context) ([]string, error)
	IsRunning() bool
	GetNextRunTime() *time.Time
}

// SettingsAuditor records settings changes.
type SettingsAuditor interface {
	LogSettings(action, description string)
}

// MaintenanceController exposes the scheduled maintenance settings.
type MaintenanceController struct {
	settings  MaintenanceSettingsStore
	runner    MaintenanceRunner
	auditor   SettingsAuditor
	scheduler context.Context
}

// NewMaintenanceController creates a new MaintenanceController. runner may be
// nil when the task queue is disabled. ctx bounds the lifetime of the
// schedule started on changes, so it must outlive a single request.
func NewMaintenanceController(ctx context.Context, settings MaintenanceSettingsStore, runner MaintenanceRunner) *MaintenanceController {
	return &MaintenanceController{settings: settings, runner: runner, scheduler: ctx}
}

// SetAuditor enables audit events for settings changes.
func (mc *MaintenanceController) SetAuditor(auditor SettingsAuditor) {
	mc.auditor = auditor
}

// MaintenanceResponse describes the schedule and its last outcome.
type MaintenanceResponse struct {
	Config    settingsstore.MaintenanceConfigInfo `json:"config"`
	LastRun   settingsstore.MaintenanceStatus     `json:"last_run"`
	Scheduled bool                                `json:"scheduled"`
	NextRunAt *time.Time                          `json:"next_run_at,omitempty"`
}

// GetMaintenance handles GET /api/maintenance
func (mc *MaintenanceController) GetMaintenance(c *gin.Context) {
	c.JSON(http.StatusOK, mc.response())
}

// UpdateMaintenanceRequest changes the schedule. Omitted fields keep their
// effective value.
type UpdateMaintenanceRequest struct {
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule"`
}

// UpdateMaintenance handles PUT /api/maintenance
func (mc *MaintenanceController) UpdateMaintenance(c *gin.Context) {
	var req UpdateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	cfg := mc.settings.GetMaintenanceConfig()
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.Schedule != nil {
		cfg.Schedule = strings.TrimSpace(*req.Schedule)
	}
	if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Code:    CodeValidation,
			Details: gin.H{"schedule": cfg.Schedule},
		})
		return
	}

	if err := mc.settings.SetMaintenanceConfig(cfg); err != nil {
		respondInternalError(c, err, "save maintenance settings")
		return
	}
	if !mc.reschedule(c) {
		return
	}
	mc.audit("maintenance_update", fmt.Sprintf("Maintenance enabled=%t schedule=%q", cfg.Enabled, cfg.Schedule))

	c.JSON(http.StatusOK, mc.response())
}

// ResetMaintenance handles DELETE /api/maintenance
// Drops stored overrides so configuration defaults apply again.
func (mc *MaintenanceController) ResetMaintenance(c *gin.Context) {
	if err := mc.settings.ClearMaintenanceConfig(); err != nil {
		respondInternalError(c, err, "reset maintenance settings")
		return
	}
	if !mc.reschedule(c) {
		return
	}
	mc.audit("maintenance_reset", "Maintenance settings reset to defaults")

	c.JSON(http.StatusOK, mc.response())
}

// RunMaintenance handles POST /api/maintenance/run
// Enqueues the maintenance tasks immediately.
func (mc *MaintenanceController) RunMaintenance(c *gin.Context) {
	if mc.runner == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is not enabled")
		return
	}

	ids, err := mc.runner.RunNow(c.Request.Context())
	if err != nil {
		respondInternalErrorWithDetails(c, err, "run maintenance", gin.H{"task_ids": ids})
		return
	}
	respondAccepted(c, fmt.Sprintf("queued %d tasks", len(ids)), gin.H{"task_ids": ids})
}

func (mc *MaintenanceController) reschedule(c *gin.Context) bool {
	if mc.runner == nil {
		return true
	}
	if err := mc.runner.Reschedule(mc.scheduler); err != nil {
		respondInternalError(c, err, "reschedule maintenance")
		return false
	}
	return true
}

func (mc *MaintenanceController) audit(action, description string) {
	if mc.auditor != nil {
		mc.auditor.LogSettings(action, description)
	}
}

func (mc *MaintenanceController) response() MaintenanceResponse {
	resp := MaintenanceResponse{
		Config:  mc.settings.GetMaintenanceConfigInfo(),
		LastRun: mc.settings.GetMaintenanceStatus(),
	}
	if mc.runner != nil {
		resp.Scheduled = mc.runner.IsRunning()
		resp.NextRunAt = mc.runner.GetNextRunTime()
	}
	return resp
}
