package handlers

import (
	"net/http"
	"time"

	"github.com/thushan/redis-watcher/internal/adapter/health"
	"github.com/thushan/redis-watcher/internal/adapter/status"
	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/internal/logger"
	"github.com/thushan/redis-watcher/internal/router"
)

// WatchdogView is the read side of the watchdog the status endpoint needs
type WatchdogView interface {
	Stats() health.WatchdogStats
	Target() string
}

// Application holds all the dependencies needed for the HTTP handlers
type Application struct {
	Config        *config.ServerConfig
	logger        logger.StyledLogger
	watchdog      WatchdogView
	store         *status.Store
	metrics       http.Handler
	routeRegistry *router.RouteRegistry
	server        *http.Server
	errCh         chan error
	StartTime     time.Time
}

// NewApplication wires the status server. metrics may be nil, in which case
// /metrics is not registered.
func NewApplication(
	cfg *config.ServerConfig,
	watchdog WatchdogView,
	store *status.Store,
	metrics http.Handler,
	logger logger.StyledLogger,
) *Application {
	return &Application{
		Config:        cfg,
		logger:        logger,
		watchdog:      watchdog,
		store:         store,
		metrics:       metrics,
		routeRegistry: router.NewRouteRegistry(logger),
		errCh:         make(chan error, 1),
		StartTime:     time.Now(),
	}
}

// Errors reports a server that failed after it started listening
func (a *Application) Errors() <-chan error {
	return a.errCh
}
