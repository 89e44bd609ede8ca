// Package scheduler runs periodic library maintenance.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/booklibrary/internal/settingsstore"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

const triggerSchedule = "schedule"

// TaskEnqueuer puts a task on the background queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// MaintenanceSettings provides the effective schedule and stores run outcomes.
type MaintenanceSettings interface {
	GetMaintenanceConfig() settingsstore.MaintenanceConfig
	SetMaintenanceStatus(status, message string) error
}

// MaintenanceScheduler enqueues the library maintenance tasks on a cron
// schedule: cover repair, bulk enrichment, orphan shelf cleanup and audit
// retention.
type MaintenanceScheduler struct {
	settings MaintenanceSettings
	queue    TaskEnqueuer

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	isQueuing bool
}

func NewMaintenanceScheduler(settings MaintenanceSettings, queue TaskEnqueuer) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		settings: settings,
		queue:    queue,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if maintenance is enabled. It stops when ctx is
// cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settings.GetMaintenanceConfig()
	if !config.Enabled {
		log.Printf("[SCHEDULER] Maintenance disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runMaintenance(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule, time.Now())
	log.Printf("[SCHEDULER] Maintenance started with schedule '%s' (%s). Next run: %v",
		config.Schedule, settingsstore.GetCronDescription(config.Schedule), nextRun)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and removes the schedule.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	entryID := s.entryID
	s.mu.Unlock()

	// The job takes the lock itself, so wait for it without holding it.
	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)

	log.Printf("[SCHEDULER] Maintenance stopped")
}

// Reschedule restarts the scheduler with the current settings.
func (s *MaintenanceScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow enqueues the maintenance tasks immediately and returns their IDs.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) ([]string, error) {
	return s.runMaintenance(ctx)
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when maintenance runs next, or nil when stopped.
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// maintenanceTasks is the batch queued on every run.
func maintenanceTasks() []backlite.Task {
	return []backlite.Task{
		tasks.FixCoversTask{Trigger: triggerSchedule},
		tasks.EnrichAllBooksTask{Trigger: triggerSchedule},
		tasks.CleanupOrphanShelvesTask{},
		tasks.CleanupAuditEventsTask{},
	}
}

func (s *MaintenanceScheduler) runMaintenance(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if s.isQueuing {
		s.mu.Unlock()
		log.Printf("[SCHEDULER] Maintenance skipped (already queuing)")
		return nil, fmt.Errorf("maintenance is already being queued")
	}
	s.isQueuing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isQueuing = false
		s.mu.Unlock()
	}()

	var ids []string
	var failures []string
	for _, task := range maintenanceTasks() {
		id, err := s.queue.Enqueue(ctx, task)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", task.Config().Name, err))
			continue
		}
		ids = append(ids, id)
	}

	status, message := "success", fmt.Sprintf("Queued %d tasks", len(ids))
	var runErr error
	if len(failures) > 0 {
		status = "failed"
		message = fmt.Sprintf("Queued %d tasks, %d failed: %s", len(ids), len(failures), strings.Join(failures, "; "))
		runErr = fmt.Errorf("enqueue maintenance tasks: %s", strings.Join(failures, "; "))
	}

	if err := s.settings.SetMaintenanceStatus(status, message); err != nil {
		log.Printf("[SCHEDULER] Failed to record maintenance status: %v", err)
	}
	log.Printf("[SCHEDULER] %s", message)

	return ids, runErr
}
