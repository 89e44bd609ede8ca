package http

import (
	"context"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.Context == nil {
		cfg.Context = context.Background()
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	if cfg.Books != nil {
		health.SetBookCounter(cfg.Books)
	}
	health.SetTaskQueueEnabled(cfg.Tasks != nil)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Books and shelves
	if cfg.Books != nil && cfg.Shelves != nil {
		booksController := NewBooksController(cfg.Books)
		shelvesController := NewShelvesController(cfg.Shelves)
		if cfg.Audit != nil {
			booksController.SetAuditor(cfg.Audit)
			shelvesController.SetAuditor(cfg.Audit)
		}
		if cfg.CoverCache != nil {
			booksController.SetCoverCache(cfg.CoverCache)
		}

		api.GET("/books", booksController.ListBooks)
		api.POST("/books", booksController.CreateBook)
		api.DELETE("/books", booksController.ClearLibrary)
		api.GET("/books/:id", booksController.GetBook)
		api.PUT("/books/:id", booksController.UpdateBook)
		api.DELETE("/books/:id", booksController.DeleteBook)

		api.GET("/shelves", shelvesController.GetAllShelves)
		api.GET("/shelves/exclusive", shelvesController.GetExclusiveShelfCounts)
		api.POST("/shelves", shelvesController.CreateShelf)
		api.POST("/shelves/cleanup", shelvesController.CleanupOrphanShelves)
		api.PUT("/shelves/:id", shelvesController.RenameShelf)
		api.DELETE("/shelves/:id", shelvesController.DeleteShelf)
	}

	// Statistics
	if cfg.Stats != nil {
		statsController := NewStatsController(cfg.Stats)
		api.GET("/stats", statsController.GetStats)
		api.GET("/stats/baselines", statsController.GetBaselines)
	}

	// CSV import
	if cfg.Importer != nil {
		importController := NewImportController(cfg.Importer, cfg.MaxUploadBytes)
		api.POST("/import/preview", importController.Preview)
		api.POST("/import/detect", importController.Detect)
		api.POST("/import/csv", importController.Import)
		api.POST("/import/dry-run", importController.DryRun)
		api.GET("/import/mapping", importController.GetMapping)
		api.PUT("/import/mapping", importController.SaveMapping)
	}

	// Metadata enrichment
	if cfg.Lookup != nil && cfg.Enricher != nil {
		metadataController := NewMetadataController(cfg.Lookup, cfg.Enricher)
		if cfg.Tasks != nil {
			metadataController.SetTaskQueue(cfg.Tasks)
		}
		for syncType, reader := range cfg.SyncProgress {
			metadataController.SetSyncProgress(syncType, reader)
		}
		api.GET("/lookup/:isbn", metadataController.LookupISBN)
		api.POST("/books/:id/enrich", metadataController.EnrichBook)
		api.POST("/books/enrich-all", metadataController.EnrichAllMissing)
		api.GET("/sync/:type/status", metadataController.GetSyncStatus)
	}

	// Covers
	if cfg.Books != nil {
		var cache CoverFetcher
		if cfg.CoverCache != nil {
			cache = cfg.CoverCache
		}
		coversController := NewCoversController(cfg.Books, cache, cfg.CoverFixer)
		if cfg.Tasks != nil {
			coversController.SetTaskQueue(cfg.Tasks)
		}
		api.GET("/books/:id/cover", coversController.GetCover)
		api.POST("/covers/fix", coversController.FixCovers)
	}

	// Audit log
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Task management
	if cfg.Tasks != nil {
		tasksController := NewTasksController(cfg.Tasks)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	// Scheduled maintenance
	if cfg.MaintenanceSettings != nil {
		maintenanceController := NewMaintenanceController(cfg.Context, cfg.MaintenanceSettings, cfg.MaintenanceRunner)
		if cfg.Audit != nil {
			maintenanceController.SetAuditor(cfg.Audit)
		}
		api.GET("/maintenance", maintenanceController.GetMaintenance)
		api.PUT("/maintenance", maintenanceController.UpdateMaintenance)
		api.DELETE("/maintenance", maintenanceController.ResetMaintenance)
		api.POST("/maintenance/run", maintenanceController.RunMaintenance)
	}

	return router
}
