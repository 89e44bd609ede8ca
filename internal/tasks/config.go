package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"
)

// Config holds configuration for the background task queue.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to the queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks are purged. Default: 1h
	CleanupInterval time.Duration

	// AuditRetentionDays is how long audit events are kept when a cleanup
	// task does not name its own retention. Default: 90
	AuditRetentionDays int
}

// DefaultAuditRetentionDays is used when neither the task nor the config sets
// a retention.
const DefaultAuditRetentionDays = 90

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:            2,
		ReleaseAfter:       15 * time.Minute,
		CleanupInterval:    time.Hour,
		AuditRetentionDays: DefaultAuditRetentionDays,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.AuditRetentionDays <= 0 {
		c.AuditRetentionDays = d.AuditRetentionDays
	}
	return c
}

// keepFailures retains finished tasks for a day and keeps the payload only
// of failed ones.
func keepFailures() *backlite.Retention {
	return &backlite.Retention{
		Duration:   24 * time.Hour,
		OnlyFailed: false,
		Data:       &backlite.RetainData{OnlyFailed: true},
	}
}
