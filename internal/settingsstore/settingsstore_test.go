package settingsstore

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklibrary/internal/database"
	"github.com/mrlokans/booklibrary/internal/database/settings"
	"github.com/mrlokans/booklibrary/internal/entities"
)

func setupTestRepo(t *testing.T) *settings.Repository {
	t.Helper()
	dbPath := "./test_settings_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewQuietDatabase(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return settings.NewRepository(db.DB)
}

func TestMaintenanceConfig_Defaults(t *testing.T) {
	store := New(setupTestRepo(t), MaintenanceConfig{})

	info := store.GetMaintenanceConfigInfo()
	assert.False(t, info.Enabled)
	assert.Equal(t, SourceDefault, info.EnabledSource)
	assert.Equal(t, DefaultMaintenanceSchedule, info.Schedule)
	assert.Equal(t, SourceDefault, info.ScheduleSource)
	assert.Equal(t, "Daily at 03:00", info.Description)
}

func TestMaintenanceConfig_FromConfig(t *testing.T) {
	store := New(setupTestRepo(t), MaintenanceConfig{Enabled: true, Schedule: "0 */6 * * *"})

	info := store.GetMaintenanceConfigInfo()
	assert.True(t, info.Enabled)
	assert.Equal(t, SourceConfig, info.EnabledSource)
	assert.Equal(t, "0 */6 * * *", info.Schedule)
	assert.Equal(t, SourceConfig, info.ScheduleSource)
}

func TestMaintenanceConfig_DatabaseOverrides(t *testing.T) {
	repo := setupTestRepo(t)
	store := New(repo, MaintenanceConfig{Enabled: true, Schedule: "0 */6 * * *"})

	require.NoError(t, store.SetMaintenanceConfig(MaintenanceConfig{Enabled: false, Schedule: "0 0 * * 0"}))

	cfg := store.GetMaintenanceConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "0 0 * * 0", cfg.Schedule)
	assert.Equal(t, SourceDatabase, store.GetMaintenanceConfigInfo().EnabledSource)

	require.NoError(t, store.ClearMaintenanceConfig())
	cfg = store.GetMaintenanceConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "0 */6 * * *", cfg.Schedule)

	require.NoError(t, store.ClearMaintenanceConfig(), "clearing twice is not an error")
}

func TestSetMaintenanceConfig_RejectsBadSchedule(t *testing.T) {
	repo := setupTestRepo(t)
	store := New(repo, MaintenanceConfig{})

	assert.Error(t, store.SetMaintenanceConfig(MaintenanceConfig{Enabled: true, Schedule: "whenever"}))

	_, err := repo.GetSetting(entities.SettingKeyMaintenanceEnabled)
	assert.Error(t, err, "nothing should be stored for an invalid schedule")
}

func TestMaintenanceStatus(t *testing.T) {
	store := New(setupTestRepo(t), MaintenanceConfig{})

	assert.Equal(t, MaintenanceStatus{}, store.GetMaintenanceStatus())

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.SetMaintenanceStatus("success", "Queued 4 tasks"))

	status := store.GetMaintenanceStatus()
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, "Queued 4 tasks", status.Message)
	require.NotNil(t, status.LastRunAt)
	assert.True(t, status.LastRunAt.After(before))
}

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 3 * * *", true},
		{"0 0 * * 0", true},
		{"invalid", false},
		{"* * * *", false},
		{"60 * * * *", false},
		{"0 25 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetCronDescription(t *testing.T) {
	assert.Equal(t, "Every hour at :00", GetCronDescription("0 * * * *"))
	assert.Equal(t, "Daily at 03:00", GetCronDescription("0 3 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))
}

func TestGetNextRunTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	next, err := GetNextRunTime("0 3 * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), *next)

	_, err = GetNextRunTime("invalid", now)
	assert.Error(t, err)
}
