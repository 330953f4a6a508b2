// Package app bootstraps and wires the application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/netscenehq/netscene/internal/adapters/controller"
	"github.com/netscenehq/netscene/internal/adapters/oui"
	"github.com/netscenehq/netscene/internal/adapters/storage"
	"github.com/netscenehq/netscene/internal/adapters/visual"
	"github.com/netscenehq/netscene/internal/adapters/web"
	"github.com/netscenehq/netscene/internal/config"
	"github.com/netscenehq/netscene/internal/core/ports"
	"github.com/netscenehq/netscene/internal/core/services/classify"
	"github.com/netscenehq/netscene/internal/core/services/scenecache"
	"github.com/netscenehq/netscene/internal/core/services/workflow"
	"github.com/netscenehq/netscene/internal/telemetry"
)

// Application is the facade over the wired system: the discovery pipeline,
// its cache and the HTTP surface.
type Application struct {
	Config    *config.Config
	Service   *TopologyService
	WebServer *web.Server
	Store     *storage.SQLiteStore // nil when persistence is disabled
	Logger    *slog.Logger

	lookupChain *oui.Chain
	shutdownTel func(context.Context) error
}

// New creates an Application and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}
	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	app.initLogging()
	telemetry.InitMetrics()

	shutdown, err := telemetry.InitTracer()
	if err != nil {
		app.Logger.Warn("tracing disabled", "error", err)
	} else {
		app.shutdownTel = shutdown
	}

	if err := app.initStorage(); err != nil {
		return err
	}

	collector := app.initCollector()
	resolver := app.initResolver()
	visuals, err := app.initVisuals()
	if err != nil {
		return err
	}

	var store ports.SceneStore
	if app.Store != nil {
		store = app.Store
	}

	wsManager := web.NewWSManager()
	orchestrator := workflow.New(
		collector,
		resolver,
		classify.New(nil),
		visuals,
		store,
		wsManager,
		workflow.Config{
			ConnectRetries:    app.Config.ConnectRetries,
			EnrichConcurrency: app.Config.EnrichConcurrency,
		},
	)

	cache := scenecache.New(app.Config.CacheTTL)
	app.Service = NewTopologyService(orchestrator, cache,
		app.Config.ControllerURL, app.Config.ControllerSite)

	var reports web.ReportStore
	if app.Store != nil {
		reports = app.Store
	}
	app.WebServer = web.NewServer(app.Config.Addr, app.Service, reports, wsManager, app.Logger)

	return nil
}

func (app *Application) initLogging() {
	level := slog.LevelInfo
	if app.Config.Debug {
		level = slog.LevelDebug
	}
	app.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(app.Logger)
}

func (app *Application) initStorage() error {
	if !app.Config.Persist {
		app.Logger.Info("run persistence disabled")
		return nil
	}
	store, err := storage.NewSQLiteStore(app.Config.SnapshotDBPath)
	if err != nil {
		return fmt.Errorf("init snapshot storage: %w", err)
	}
	app.Store = store
	return nil
}

func (app *Application) initCollector() ports.TopologyCollector {
	if app.Config.MockMode {
		app.Logger.Info("mock mode active, using synthetic topology")
		return controller.NewMockCollector(1, 0)
	}
	return controller.NewClient(controller.Config{
		BaseURL:            app.Config.ControllerURL,
		APIKey:             app.Config.ControllerAPIKey,
		Site:               app.Config.ControllerSite,
		Timeout:            app.Config.ControllerTimeout,
		InsecureSkipVerify: app.Config.InsecureSkipVerify,
	}, app.Logger)
}

func (app *Application) initResolver() ports.VendorResolver {
	app.lookupChain = oui.NewResolver(oui.ResolverConfig{
		DBPath:      app.Config.OUIDBPath,
		APIKey:      app.Config.LookupAPIKey,
		TierTimeout: app.Config.LookupTimeout,
	})
	return NewChainResolver(app.lookupChain)
}

func (app *Application) initVisuals() (ports.VisualProvider, error) {
	if app.Config.VisualCatalogPath == "" {
		return visual.NewCatalog(), nil
	}
	catalog, err := visual.LoadCatalog(app.Config.VisualCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load visual catalog: %w", err)
	}
	return catalog, nil
}

// Run serves HTTP until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	defer app.Close()
	return app.WebServer.Run(ctx)
}

// Close releases adapters holding external resources.
func (app *Application) Close() {
	if app.lookupChain != nil {
		if err := app.lookupChain.Close(); err != nil {
			app.Logger.Warn("closing lookup chain", "error", err)
		}
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			app.Logger.Warn("closing snapshot store", "error", err)
		}
	}
	if app.shutdownTel != nil {
		if err := app.shutdownTel(context.Background()); err != nil {
			app.Logger.Warn("flushing traces", "error", err)
		}
	}
}
