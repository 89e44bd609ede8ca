package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Metadata
		Covers
		Import
		Tasks
		Scheduler
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Metadata struct {
		OpenLibraryURL    string
		CoversURL         string
		GoogleBooksURL    string
		RequestsPerSecond float64 // <= 0 disables rate limiting
		Timeout           time.Duration
	}
	Covers struct {
		CacheDir string
	}
	Import struct {
		MaxUploadBytes int64
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Scheduler struct {
		MaintenanceEnabled  bool
		MaintenanceSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Audit struct {
		Dir           string
		RetentionDays int // Days to keep audit events (default: 90)
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// NewConfig reads the configuration from the environment.
func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Metadata providers
	v.SetDefault("openlibrary_base_url", "https://openlibrary.org")
	v.SetDefault("openlibrary_covers_url", "https://covers.openlibrary.org")
	v.SetDefault("google_books_base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("metadata_requests_per_second", 1.0)
	v.SetDefault("metadata_timeout", "10s")

	v.SetDefault("covers_cache_dir", DefaultCoversCacheDir)
	v.SetDefault("import_max_upload_bytes", 10<<20)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_enabled", false)
	v.SetDefault("maintenance_schedule", "0 3 * * *")

	v.SetDefault("audit_dir", DefaultAuditDir)
	v.SetDefault("audit_retention_days", 90)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Metadata: Metadata{
			OpenLibraryURL:    v.GetString("OPENLIBRARY_BASE_URL"),
			CoversURL:         v.GetString("OPENLIBRARY_COVERS_URL"),
			GoogleBooksURL:    v.GetString("GOOGLE_BOOKS_BASE_URL"),
			RequestsPerSecond: v.GetFloat64("METADATA_REQUESTS_PER_SECOND"),
			Timeout:           v.GetDuration("METADATA_TIMEOUT"),
		},
		Covers: Covers{
			CacheDir: v.GetString("COVERS_CACHE_DIR"),
		},
		Import: Import{
			MaxUploadBytes: v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Scheduler: Scheduler{
			MaintenanceEnabled:  v.GetBool("MAINTENANCE_ENABLED"),
			MaintenanceSchedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// ShutdownTimeout is the grace period given to in-flight requests and
// workers on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Global.ShutdownTimeoutInSeconds) * time.Second
}
