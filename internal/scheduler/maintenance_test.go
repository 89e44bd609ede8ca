package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklibrary/internal/settingsstore"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

type mockSettings struct {
	mu      sync.Mutex
	config  settingsstore.MaintenanceConfig
	status  string
	message string
}

func (m *mockSettings) GetMaintenanceConfig() settingsstore.MaintenanceConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

func (m *mockSettings) SetMaintenanceStatus(status, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.message = message
	return nil
}

type mockQueue struct {
	mu      sync.Mutex
	queued  []backlite.Task
	failFor string
}

func (m *mockQueue) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.Config().Name == m.failFor {
		return "", errors.New("queue unavailable")
	}
	m.queued = append(m.queued, task)
	return fmt.Sprintf("task-%d", len(m.queued)), nil
}

func TestStart_Disabled(t *testing.T) {
	s := NewMaintenanceScheduler(&mockSettings{}, &mockQueue{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestStart_InvalidSchedule(t *testing.T) {
	settings := &mockSettings{config: settingsstore.MaintenanceConfig{Enabled: true, Schedule: "nope"}}
	s := NewMaintenanceScheduler(settings, &mockQueue{})

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	settings := &mockSettings{config: settingsstore.MaintenanceConfig{Enabled: true, Schedule: "0 3 * * *"}}
	s := NewMaintenanceScheduler(settings, &mockQueue{})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())

	s.Stop()
}

func TestReschedule(t *testing.T) {
	settings := &mockSettings{config: settingsstore.MaintenanceConfig{Enabled: true, Schedule: "0 3 * * *"}}
	s := NewMaintenanceScheduler(settings, &mockQueue{})
	require.NoError(t, s.Start(context.Background()))

	settings.mu.Lock()
	settings.config.Schedule = "30 4 * * *"
	settings.mu.Unlock()

	require.NoError(t, s.Reschedule(context.Background()))
	defer s.Stop()

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 4, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.Len(t, s.cron.Entries(), 1)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	settings := &mockSettings{config: settingsstore.MaintenanceConfig{Enabled: true, Schedule: "0 3 * * *"}}
	s := NewMaintenanceScheduler(settings, &mockQueue{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestRunNow(t *testing.T) {
	settings := &mockSettings{}
	queue := &mockQueue{}
	s := NewMaintenanceScheduler(settings, queue)

	ids, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1", "task-2", "task-3", "task-4"}, ids)

	require.Len(t, queue.queued, 4)
	assert.Equal(t, tasks.FixCoversTask{Trigger: "schedule"}, queue.queued[0])
	assert.Equal(t, tasks.EnrichAllBooksTask{Trigger: "schedule"}, queue.queued[1])
	assert.IsType(t, tasks.CleanupOrphanShelvesTask{}, queue.queued[2])
	assert.IsType(t, tasks.CleanupAuditEventsTask{}, queue.queued[3])

	assert.Equal(t, "success", settings.status)
	assert.Equal(t, "Queued 4 tasks", settings.message)
}

func TestRunNow_PartialFailure(t *testing.T) {
	settings := &mockSettings{}
	queue := &mockQueue{failFor: tasks.FixCoversTask{}.Config().Name}
	s := NewMaintenanceScheduler(settings, queue)

	ids, err := s.RunNow(context.Background())
	assert.Error(t, err)
	assert.Len(t, ids, 3)
	assert.Equal(t, "failed", settings.status)
	assert.Contains(t, settings.message, "queue unavailable")
}
