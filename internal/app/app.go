// Package app assembles the person service: one store, owned by this App and
// injected downward, so several instances can coexist in one process.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	personHandler "usermgmt/internal/person/handler"
	personMetrics "usermgmt/internal/person/metrics"
	"usermgmt/internal/person/service"
	"usermgmt/internal/person/store"
	"usermgmt/internal/platform/config"
	"usermgmt/internal/platform/httpserver"
	"usermgmt/internal/platform/metrics"
	httptransport "usermgmt/internal/transport/http"
)

// App owns the store, the API server and the optional metrics server.
type App struct {
	cfg        config.Server
	logger     *slog.Logger
	Store      *store.InMemory
	Metrics    *metrics.Metrics
	handler    http.Handler
	api        *httpserver.Server
	metricsSrv *httpserver.Server
}

// New wires every component from cfg. Nothing is bound until Start.
func New(cfg config.Server, logger *slog.Logger) (*App, error) {
	m := metrics.New()
	st := store.NewInMemory()

	svc, err := service.New(st,
		service.WithLogger(logger),
		service.WithMetrics(personMetrics.New(m.Registerer())),
		service.WithStrictValidation(cfg.StrictValidation),
	)
	if err != nil {
		return nil, err
	}
	h := personHandler.New(svc, logger, personHandler.WithMaxBodyBytes(cfg.MaxBodyBytes))
	router := httptransport.NewRouter(h, logger, m)

	a := &App{
		cfg:     cfg,
		logger:  logger,
		Store:   st,
		Metrics: m,
		handler: router,
		api: httpserver.New(router,
			httpserver.WithLogger(logger.With("server", "api")),
			httpserver.WithMaxConnections(cfg.MaxConnections),
		),
	}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		a.metricsSrv = httpserver.New(mux, httpserver.WithLogger(logger.With("server", "metrics")))
	}
	return a, nil
}

// Handler exposes the API router, for in-process tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Start binds the API (and metrics) listeners and returns immediately.
func (a *App) Start() error {
	if err := a.api.Start(a.cfg.Addr); err != nil {
		return err
	}
	if a.metricsSrv != nil {
		if err := a.metricsSrv.Start(a.cfg.MetricsAddr); err != nil {
			stopErr := a.api.Stop(context.Background())
			return errors.Join(err, stopErr)
		}
	}
	return nil
}

// Stop shuts both servers down concurrently, each waiting for its in-flight
// requests until ctx expires.
func (a *App) Stop(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return a.api.Stop(ctx) })
	if a.metricsSrv != nil {
		g.Go(func() error { return a.metricsSrv.Stop(ctx) })
	}
	return g.Wait()
}

// Addr is the bound API address.
func (a *App) Addr() string {
	return a.api.Addr()
}

// MetricsAddr is the bound metrics address, or "" when disabled.
func (a *App) MetricsAddr() string {
	if a.metricsSrv == nil {
		return ""
	}
	return a.metricsSrv.Addr()
}

// IsRunning reports whether the API server is accepting connections.
func (a *App) IsRunning() bool {
	return a.api.IsRunning()
}
