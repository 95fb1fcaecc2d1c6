// Package app assembles the stores, services and front-ends from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"family-planner/internal/config"
	"family-planner/internal/database"
	"family-planner/internal/httpapi"
	"family-planner/internal/identity"
	"family-planner/internal/metrics"
	"family-planner/internal/planner"
	"family-planner/internal/recipe"
	"family-planner/internal/shopping"
	"family-planner/internal/shopping/docstore"
	"family-planner/internal/shopping/mongostore"
	"family-planner/internal/shopping/sqlstore"
	"family-planner/internal/telegram"
)

// App holds the application's dependencies.
type App struct {
	Config   *config.Config
	DB       *database.DB
	Recipes  *recipe.Repository
	Plans    *planner.PlanRepository
	Planner  *planner.Service
	Shopping *shopping.Service
	Metrics  *metrics.Store
	Resolver *identity.JWTResolver
	Registry *prometheus.Registry

	// Primary is the SQLite item store, kept for week summaries.
	Primary *sqlstore.Store

	logger  *slog.Logger
	closers []func(ctx context.Context) error
	probes  map[string]metrics.Probe
}

// New opens the database and the secondary store and wires the services.
// The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a := &App{
		Config:   cfg,
		DB:       db,
		Recipes:  recipe.NewRepository(db.SQL, logger),
		Plans:    planner.NewPlanRepository(db.SQL),
		Metrics:  metrics.NewStore(db.SQL),
		Primary:  sqlstore.New(db.SQL),
		Registry: prometheus.NewRegistry(),
		logger:   logger,
		probes: map[string]metrics.Probe{
			"database": func(ctx context.Context) error { return db.SQL.PingContext(ctx) },
		},
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })

	a.Resolver, err = identity.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shoppingMetrics, err := metrics.NewShoppingMetrics(a.Registry)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	secondary, err := a.openSecondary(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	store := shopping.NewFallbackStore(a.Primary, secondary, shoppingMetrics, logger)

	a.Planner = planner.NewService(a.Plans, nil, logger)
	a.Shopping = shopping.NewService(store, a.Plans, a.Recipes, shopping.Options{
		DuplicateWindow: cfg.Shopping.DuplicateWindow,
		Observer:        metrics.NewRecorder(shoppingMetrics, a.Metrics, logger),
		Logger:          logger,
	})
	a.Planner.SetSyncer(a.Shopping)

	return a, nil
}

// openSecondary returns the configured fallback store, or nil for "none".
func (a *App) openSecondary(ctx context.Context) (shopping.Store, error) {
	sc := a.Config.Secondary
	switch sc.Type {
	case config.SecondaryFile:
		s, err := docstore.New(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		a.logger.Info("secondary store ready", "type", sc.Type, "path", sc.Path)
		return s, nil
	case config.SecondaryMongo:
		connectCtx, cancel := context.WithTimeout(ctx, sc.Timeout)
		defer cancel()
		s, err := mongostore.Connect(connectCtx, sc.MongoURI, sc.MongoDatabase, sc.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		a.probes["secondary"] = s.Ping
		a.logger.Info("secondary store ready", "type", sc.Type, "database", sc.MongoDatabase)
		return s, nil
	default:
		a.logger.Warn("no secondary store configured, shopping writes fail with the database")
		return nil, nil
	}
}

// Logger returns the process logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Health runs the dependency probes.
func (a *App) Health(ctx context.Context) metrics.Health {
	return metrics.CheckHealth(ctx, a.dataPath(), a.probes)
}

func (a *App) dataPath() string {
	return filepath.Dir(a.Config.Database.Path)
}

// Router builds the HTTP API, with the Telegram webhook mounted when a bot
// token is configured.
func (a *App) Router() (http.Handler, error) {
	opts := httpapi.HandlerOptions{
		Gatherer: a.Registry,
		Health:   a.Health,
		Logger:   a.logger,
	}
	if a.Config.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(a.Config.Telegram, a.Shopping, telegram.Options{
			History:  a.Metrics,
			DataPath: a.dataPath(),
			Logger:   a.logger,
		})
		if err != nil {
			return nil, err
		}
		opts.Webhook = bot
	}
	handler := httpapi.NewHandler(a.Shopping, a.Planner, opts)
	return httpapi.SetupRouter(a.Config, handler, a.Resolver, a.logger), nil
}

// Close releases the stores in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
