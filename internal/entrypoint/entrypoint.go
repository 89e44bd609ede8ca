package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/mrlokans/booklibrary/internal/config"
	http_controllers "github.com/mrlokans/booklibrary/internal/http"
	"github.com/mrlokans/booklibrary/internal/scheduler"
	"github.com/mrlokans/booklibrary/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout. onShutdown runs before the server stops
// accepting requests.
func Serve(ctx context.Context, router http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout()
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run starts the library API and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	log.Printf("Starting Book Library v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var taskClient *tasks.Client
	var maintenance *scheduler.MaintenanceScheduler
	taskCtx, taskCancel := context.WithCancel(ctx)
	defer taskCancel()

	if cfg.Tasks.Enabled {
		taskClient, err = app.NewTaskClient()
		if err != nil {
			return err
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()
		taskClient.Start(taskCtx)

		maintenance = scheduler.NewMaintenanceScheduler(app.Settings, taskClient)
		if err := maintenance.Start(taskCtx); err != nil {
			log.Printf("WARNING: maintenance scheduler not started: %v", err)
		}
	} else {
		log.Printf("Task queue disabled, bulk enrichment and cover repair run inline")
	}

	routerCfg := app.RouterConfig(taskCtx, version)
	if taskClient != nil {
		routerCfg.Tasks = taskClient
		routerCfg.MaintenanceRunner = maintenance
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCancel()
	}

	return Serve(ctx, router, cfg, onShutdown)
}
