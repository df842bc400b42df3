package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"sim-epsp/internal/config"
	"sim-epsp/internal/render"
	"sim-epsp/internal/service"
	"sim-epsp/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives the human-readable summaries.
	Out io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newRenderer() (render.Renderer, error) {
	return render.New(a.Config.Plot.Backend)
}

// newService wires the renderer and, when withCatalog is set, the optional
// catalog into the pipeline. A catalog that cannot be opened is logged and
// skipped. The returned closer is never nil.
func (a *App) newService(ctx context.Context, withPlot, withCatalog bool) (*service.Service, func(), error) {
	var renderer render.Renderer
	if withPlot {
		r, err := a.newRenderer()
		if err != nil {
			return nil, nil, err
		}
		renderer = r
	}

	closer := func() {}
	var catalog storage.StimulusStore
	if withCatalog {
		store, closeStore, err := a.openStore(ctx)
		switch {
		case err != nil:
			a.Logger.Warn().Err(err).Msg("catalog unavailable; continuing without it")
		case store == nil:
			a.Logger.Debug().Msg("database.dsn not configured; catalog disabled")
		default:
			catalog = store
			closer = closeStore
		}
	}

	return service.New(a.Config, renderer, catalog, a.Logger), closer, nil
}

// CompareOptions configure the compare command.
type CompareOptions struct {
	PNGPath  string
	WindowMS float64
}

// InspectOptions configure the inspect command.
type InspectOptions struct {
	Path string
	Rows int
}

// HistoryOptions configure the history command.
type HistoryOptions struct {
	Limit int
}
