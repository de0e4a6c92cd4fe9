package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/docker/go-units"

	"github.com/thushan/redis-watcher/internal/app/middleware"
)

const (
	ContentTypeJSON   = "application/json"
	ContentTypeText   = "text/plain"
	ContentTypeHeader = "Content-Type"
)

// Handler builds the routed handler, separate from Start so tests can drive
// it with httptest
func (a *Application) Handler() http.Handler {
	a.registerRoutes()

	mux := http.NewServeMux()
	a.routeRegistry.WireUp(mux, middleware.LoggingMiddleware(a.logger))
	return mux
}

// Start binds the listener before returning so a port clash fails startup
// instead of surfacing later on the error channel
func (a *Application) Start(ctx context.Context) error {
	configServer := a.Config

	a.logger.Info("Starting status server...", "host", configServer.Host, "port", configServer.Port,
		"read_timeout", units.HumanDuration(configServer.ReadTimeout),
		"write_timeout", units.HumanDuration(configServer.WriteTimeout))

	a.server = &http.Server{
		Addr:         configServer.GetAddress(),
		Handler:      a.Handler(),
		ReadTimeout:  configServer.ReadTimeout,
		WriteTimeout: configServer.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("unable to bind status server on %s: %w", a.server.Addr, err)
	}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", "error", err)
			a.errCh <- err
		}
	}()

	a.logger.Info("Started status server", "bind", ln.Addr().String())
	return nil
}

func (a *Application) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

func (a *Application) registerRoutes() {
	a.routeRegistry.Register("/internal/health", a.healthHandler, "Watcher health")
	a.routeRegistry.Register("/internal/status", a.statusHandler, "Outage state and restart outcomes")
	a.routeRegistry.Register("/version", a.versionHandler, "Version information")
	if a.metrics != nil {
		a.routeRegistry.RegisterHandler("/metrics", a.metrics, "Prometheus metrics", http.MethodGet)
	}
}
