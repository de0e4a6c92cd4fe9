package services

import (
	"context"

	"github.com/thushan/redis-watcher/internal/app/handlers"
	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/internal/logger"
)

const HTTPServiceName = "http"

// HTTPService runs the optional status server. It starts last so the
// watchdog and event consumers exist before the first request arrives.
type HTTPService struct {
	config      *config.ServerConfig
	registry    *ServiceRegistry
	logger      logger.StyledLogger
	application *handlers.Application
}

func NewHTTPService(cfg *config.ServerConfig, registry *ServiceRegistry, logger logger.StyledLogger) *HTTPService {
	return &HTTPService{
		config:   cfg,
		registry: registry,
		logger:   logger,
	}
}

func (s *HTTPService) Name() string {
	return HTTPServiceName
}

func (s *HTTPService) Start(ctx context.Context) error {
	events, err := s.registry.GetEvents()
	if err != nil {
		return err
	}
	watchdog, err := s.registry.GetWatchdog()
	if err != nil {
		return err
	}

	s.application = handlers.NewApplication(
		s.config,
		watchdog.Watchdog(),
		events.Store(),
		events.Recorder().Handler(),
		s.logger,
	)
	return s.application.Start(ctx)
}

func (s *HTTPService) Stop(ctx context.Context) error {
	if s.application == nil {
		return nil
	}
	if err := s.application.Stop(ctx); err != nil {
		return err
	}
	s.logger.InfoWithStatus("Stopping status server", "OK")
	return nil
}

func (s *HTTPService) Dependencies() []string {
	return []string{EventsServiceName, WatchdogServiceName}
}

// Errors reports failures of a server that had already started
func (s *HTTPService) Errors() <-chan error {
	if s.application == nil {
		return nil
	}
	return s.application.Errors()
}
