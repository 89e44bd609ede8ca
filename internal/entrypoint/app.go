package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/booklibrary/internal/audit"
	"github.com/mrlokans/booklibrary/internal/config"
	"github.com/mrlokans/booklibrary/internal/covers"
	"github.com/mrlokans/booklibrary/internal/database"
	"github.com/mrlokans/booklibrary/internal/database/books"
	dbaudit "github.com/mrlokans/booklibrary/internal/database/audit"
	"github.com/mrlokans/booklibrary/internal/database/settings"
	"github.com/mrlokans/booklibrary/internal/database/shelves"
	"github.com/mrlokans/booklibrary/internal/database/sync"
	"github.com/mrlokans/booklibrary/internal/entities"
	http_controllers "github.com/mrlokans/booklibrary/internal/http"
	"github.com/mrlokans/booklibrary/internal/importers"
	"github.com/mrlokans/booklibrary/internal/metadata"
	"github.com/mrlokans/booklibrary/internal/settingsstore"
	"github.com/mrlokans/booklibrary/internal/stats"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

// App holds the library services shared by the API server and the CLI
// commands.
type App struct {
	Config *config.Config
	DB     *database.Database

	Books    *books.Repository
	Shelves  *shelves.Repository
	Settings *settingsstore.SettingsStore
	Audit    *audit.Service

	Importer *importers.Service
	Stats    *stats.Service

	OpenLibrary *metadata.OpenLibraryClient
	Enricher    *metadata.Enricher
	Covers      *covers.Resolver
	// CoverCache is nil when the cache directory could not be created.
	CoverCache *covers.Cache

	MetadataSync *sync.Repository
	CoversSync   *sync.Repository
}

// NewApp opens the library database and wires every service on top of it.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return newApp(cfg, db), nil
}

// NewQuietApp is NewApp without SQL logging, for commands whose output is
// read by scripts.
func NewQuietApp(cfg *config.Config) (*App, error) {
	db, err := database.NewQuietDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return newApp(cfg, db), nil
}

func newApp(cfg *config.Config, db *database.Database) *App {
	app := &App{
		Config:       cfg,
		DB:           db,
		Books:        books.NewRepository(db.DB),
		Shelves:      shelves.NewRepository(db.DB),
		Audit:        audit.NewService(dbaudit.NewRepository(db.DB)),
		MetadataSync: sync.NewRepository(db.DB, entities.SyncTypeMetadata),
		CoversSync:   sync.NewRepository(db.DB, entities.SyncTypeCovers),
	}

	settingsRepo := settings.NewRepository(db.DB)
	app.Settings = settingsstore.New(settingsRepo, settingsstore.MaintenanceConfig{
		Enabled:  cfg.Scheduler.MaintenanceEnabled,
		Schedule: cfg.Scheduler.MaintenanceSchedule,
	})

	app.Importer = importers.NewService(app.Books)
	app.Importer.SetAuditLogger(app.Audit)
	app.Importer.SetRunArchiver(audit.NewAuditor(cfg.Audit.Dir))
	app.Importer.SetSettingsStore(settingsRepo)

	app.Stats = stats.NewService(app.Books)

	app.OpenLibrary = metadata.NewOpenLibraryClient(metadata.ClientOptions{
		BaseURL:           cfg.Metadata.OpenLibraryURL,
		CoversURL:         cfg.Metadata.CoversURL,
		RequestsPerSecond: cfg.Metadata.RequestsPerSecond,
		Timeout:           cfg.Metadata.Timeout,
	})
	google := metadata.NewGoogleBooksClient(metadata.ClientOptions{
		BaseURL:           cfg.Metadata.GoogleBooksURL,
		RequestsPerSecond: cfg.Metadata.RequestsPerSecond,
		Timeout:           cfg.Metadata.Timeout,
	})

	app.Enricher = metadata.NewEnricher(app.OpenLibrary, database.NewMetadataUpdater(app.Books))
	app.Enricher.SetProgressReporter(app.MetadataSync)

	app.Covers = covers.NewResolver(google, app.OpenLibrary, app.Books)
	app.Covers.SetProgressReporter(app.CoversSync)

	coverCache, err := covers.NewCache(cfg.Covers.CacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", cfg.Covers.CacheDir)
		app.CoverCache = coverCache
		app.Enricher.SetCoverInvalidator(coverCache)
		app.Covers.SetCoverInvalidator(coverCache)
	}

	return app
}

// NewTaskClient opens the task queue next to the library database and
// registers the library queues.
func (a *App) NewTaskClient() (*tasks.Client, error) {
	client, err := tasks.NewClient(a.Config.Database.Path, tasks.Config{
		Workers:            a.Config.Tasks.Workers,
		ReleaseAfter:       a.Config.Tasks.ReleaseAfter,
		CleanupInterval:    a.Config.Tasks.CleanupInterval,
		AuditRetentionDays: a.Config.Audit.RetentionDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}

	client.RegisterLibraryQueues(tasks.Dependencies{
		Enricher: a.Enricher,
		Covers:   a.Covers,
		Shelves:  a.Shelves,
		Audit:    a.Audit,
	})
	return client, nil
}

// RouterConfig returns the router dependencies without a task queue. Run
// adds the queue and the maintenance runner when tasks are enabled.
func (a *App) RouterConfig(ctx context.Context, version string) http_controllers.RouterConfig {
	cfg := http_controllers.RouterConfig{
		Context:        ctx,
		Version:        version,
		Database:       a.DB,
		Books:          a.Books,
		Shelves:        a.Shelves,
		Stats:          a.Stats,
		Importer:       a.Importer,
		MaxUploadBytes: a.Config.Import.MaxUploadBytes,
		Lookup:         a.OpenLibrary,
		Enricher:       a.Enricher,
		SyncProgress: map[entities.SyncType]http_controllers.SyncProgressReader{
			entities.SyncTypeMetadata: a.MetadataSync,
			entities.SyncTypeCovers:   a.CoversSync,
		},
		CoverFixer:          a.Covers,
		Audit:               a.Audit,
		MaintenanceSettings: a.Settings,
	}
	if a.CoverCache != nil {
		cfg.CoverCache = a.CoverCache
	}
	return cfg
}

// Close waits for pending audit writes and closes the database.
func (a *App) Close() {
	a.Audit.Wait()
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
