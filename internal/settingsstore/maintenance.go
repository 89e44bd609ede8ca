package settingsstore

import (
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/booklibrary/internal/entities"
)

// DefaultMaintenanceSchedule runs library maintenance nightly at 03:00.
const DefaultMaintenanceSchedule = "0 3 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// MaintenanceConfig is the effective configuration of scheduled maintenance.
type MaintenanceConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// MaintenanceConfigInfo adds where each value came from.
type MaintenanceConfigInfo struct {
	Enabled        bool   `json:"enabled"`
	EnabledSource  string `json:"enabled_source"`
	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
	Description    string `json:"description"`
}

// MaintenanceStatus is the outcome of the last maintenance run.
type MaintenanceStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"` // "success", "failed" or ""
	Message   string     `json:"message,omitempty"`
}

// GetMaintenanceConfig returns the effective maintenance configuration.
func (s *SettingsStore) GetMaintenanceConfig() MaintenanceConfig {
	enabled, _ := s.maintenanceEnabled()
	schedule, _ := s.maintenanceSchedule()
	return MaintenanceConfig{Enabled: enabled, Schedule: schedule}
}

// GetMaintenanceConfigInfo returns the effective configuration with sources.
func (s *SettingsStore) GetMaintenanceConfigInfo() MaintenanceConfigInfo {
	enabled, enabledSource := s.maintenanceEnabled()
	schedule, scheduleSource := s.maintenanceSchedule()
	return MaintenanceConfigInfo{
		Enabled:        enabled,
		EnabledSource:  enabledSource,
		Schedule:       schedule,
		ScheduleSource: scheduleSource,
		Description:    GetCronDescription(schedule),
	}
}

func (s *SettingsStore) maintenanceEnabled() (bool, string) {
	if v := s.lookup(entities.SettingKeyMaintenanceEnabled); v != "" {
		return v == "true" || v == "1", SourceDatabase
	}
	if s.defaults.Enabled {
		return true, SourceConfig
	}
	return false, SourceDefault
}

func (s *SettingsStore) maintenanceSchedule() (string, string) {
	if v := s.lookup(entities.SettingKeyMaintenanceSchedule); v != "" {
		return v, SourceDatabase
	}
	if s.defaults.Schedule != "" {
		return s.defaults.Schedule, SourceConfig
	}
	return DefaultMaintenanceSchedule, SourceDefault
}

// SetMaintenanceConfig stores overrides for both settings. The schedule is
// validated first.
func (s *SettingsStore) SetMaintenanceConfig(cfg MaintenanceConfig) error {
	if err := ValidateCronSchedule(cfg.Schedule); err != nil {
		return err
	}
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyMaintenanceEnabled:  strconv.FormatBool(cfg.Enabled),
		entities.SettingKeyMaintenanceSchedule: cfg.Schedule,
	})
}

// ClearMaintenanceConfig removes the overrides, reverting to config/default.
func (s *SettingsStore) ClearMaintenanceConfig() error {
	return s.clear(entities.SettingKeyMaintenanceEnabled, entities.SettingKeyMaintenanceSchedule)
}

// GetMaintenanceStatus returns the outcome of the last run.
func (s *SettingsStore) GetMaintenanceStatus() MaintenanceStatus {
	var status MaintenanceStatus
	if v := s.lookup(entities.SettingKeyMaintenanceLastAt); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			status.LastRunAt = &t
		}
	}
	status.Status = s.lookup(entities.SettingKeyMaintenanceLastStatus)
	status.Message = s.lookup(entities.SettingKeyMaintenanceLastMessage)
	return status
}

// SetMaintenanceStatus records the outcome of a run, stamped with the
// current time.
func (s *SettingsStore) SetMaintenanceStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyMaintenanceLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyMaintenanceLastStatus:  status,
		entities.SettingKeyMaintenanceLastMessage: message,
	})
}

// ValidateCronSchedule validates a five-field cron schedule.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// ParseCronSchedule parses a five-field cron schedule.
func ParseCronSchedule(schedule string) (cron.Schedule, error) {
	return cronParser.Parse(schedule)
}

// GetCronDescription returns a human-readable description of a cron schedule.
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case DefaultMaintenanceSchedule:
		return "Daily at 03:00"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime returns when schedule fires next after now.
func GetNextRunTime(schedule string, now time.Time) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(now)
	return &next, nil
}
