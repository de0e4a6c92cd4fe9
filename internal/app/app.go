package app

import (
	"context"
	"fmt"

	"github.com/thushan/redis-watcher/internal/app/services"
	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/internal/logger"
)

// Application is the running watcher: the event consumers, the watchdog and,
// when enabled, the status server, started and stopped as one
type Application struct {
	config  *config.Config
	logger  logger.StyledLogger
	manager *services.ServiceManager
	http    *services.HTTPService
}

func New(cfg *config.Config, logger logger.StyledLogger) (*Application, error) {
	manager := services.NewServiceManager(logger)
	registry := manager.GetRegistry()

	a := &Application{
		config:  cfg,
		logger:  logger,
		manager: manager,
	}

	toRegister := []services.ManagedService{
		services.NewEventsService(logger),
		services.NewWatchdogService(cfg, registry, logger),
	}
	if cfg.Server.Enabled {
		a.http = services.NewHTTPService(&cfg.Server, registry, logger)
		toRegister = append(toRegister, a.http)
	}

	for _, service := range toRegister {
		if err := manager.Register(service); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", service.Name(), err)
		}
	}
	return a, nil
}

func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	a.logger.InfoWithCount("Redis watcher started, restarting on recovery", len(a.config.Services.Targets))
	return nil
}

func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.config.Server.ShutdownTimeout)
	defer cancel()
	return a.manager.Stop(shutdownCtx)
}

// Errors carries runtime failures of the status server, nil when it is disabled
func (a *Application) Errors() <-chan error {
	if a.http == nil {
		return nil
	}
	return a.http.Errors()
}
