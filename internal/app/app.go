package app

import (
	"context"
	"fmt"
	"net/http"

	"bandly-go/internal/config"
	"bandly-go/internal/domain/dashboard"
	"bandly-go/internal/domain/roster"
	"bandly-go/internal/metrics"
	"bandly-go/internal/transport/httpserver"
	"bandly-go/internal/transport/httpserver/handler"
	"bandly-go/pkg/logger"
)

type App struct {
	cfg          config.Config
	log          logger.Logger
	store        *roster.Store
	dashboard    *dashboard.Service
	metrics      *metrics.Metrics
	httpServer   *http.Server
	closeStorage func() error
}

// New opens storage, loads the snapshot and wires the HTTP stack.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: opening storage", "driver", cfg.Storage.Driver)
	storage, closeStorage, err := openStorage(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	location, err := cfg.Dashboard.Location()
	if err != nil {
		_ = closeStorage()
		return nil, err
	}

	var m *metrics.Metrics
	var observer roster.Observer
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer = m
	}

	store := roster.NewStoreWithConfig(storage, log, roster.Config{
		DataKey:  cfg.Storage.DataKey,
		UserKey:  cfg.Storage.UserKey,
		Observer: observer,
		Location: location,
	})

	log.Info("app: loading data")
	if err := store.Load(ctx); err != nil {
		_ = closeStorage()
		return nil, fmt.Errorf("load store: %w", err)
	}
	if warning := store.LoadWarning(); warning != nil {
		log.Warn("app: started with empty data", "warning", warning.Error())
	}

	dashboardService := dashboard.NewServiceWithConfig(store, dashboard.Config{
		UpcomingLimit:   cfg.Dashboard.UpcomingLimit,
		TopMembersLimit: cfg.Dashboard.TopMembersLimit,
		Location:        location,
	})

	log.Info("app: initializing router")
	handlers := handler.New(store, dashboardService, log)
	router := httpserver.NewRouter(cfg, handlers, m)

	return &App{
		cfg:          cfg,
		log:          log,
		store:        store,
		dashboard:    dashboardService,
		metrics:      m,
		httpServer:   httpserver.New(cfg, router),
		closeStorage: closeStorage,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Store() *roster.Store {
	return a.store
}

func (a *App) Dashboard() *dashboard.Service {
	return a.dashboard
}

func (a *App) Close() error {
	if a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}
