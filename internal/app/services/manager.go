package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/thushan/redis-watcher/internal/logger"
)

// ManagedService is one long running part of the watcher. Start and Stop
// must tolerate being called once each, in that order, and a service names
// the services it needs started before it.
type ManagedService interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Dependencies() []string
}

// ServiceManager starts services in dependency order and stops them in the
// reverse. A failed start stops whatever already came up.
type ServiceManager struct {
	services   map[string]ManagedService
	registry   *ServiceRegistry
	logger     logger.StyledLogger
	startOrder []string
	mu         sync.RWMutex
}

func NewServiceManager(logger logger.StyledLogger) *ServiceManager {
	return &ServiceManager{
		services: make(map[string]ManagedService),
		registry: NewServiceRegistry(),
		logger:   logger,
	}
}

func (sm *ServiceManager) Register(service ManagedService) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	name := service.Name()
	if _, exists := sm.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	sm.services[name] = service
	sm.registry.Register(name, service)
	sm.logger.Debug("Service registered", "name", name)
	return nil
}

// resolveDependencies is Kahn's algorithm over "depends on" edges. Ready
// services are taken in name order so the start order is stable between runs.
func (sm *ServiceManager) resolveDependencies() ([]string, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	pending := make(map[string]int, len(sm.services))
	dependants := make(map[string][]string, len(sm.services))

	for name, service := range sm.services {
		deps := service.Dependencies()
		pending[name] = len(deps)
		for _, dep := range deps {
			if _, exists := sm.services[dep]; !exists {
				return nil, fmt.Errorf("service %s depends on %s which is not registered", name, dep)
			}
			dependants[dep] = append(dependants[dep], name)
		}
	}

	var ready []string
	for name, count := range pending {
		if count == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(sm.services))
	for len(ready) > 0 {
		slices.Sort(ready)
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		for _, dependant := range dependants[current] {
			pending[dependant]--
			if pending[dependant] == 0 {
				ready = append(ready, dependant)
			}
		}
	}

	if len(order) != len(sm.services) {
		return nil, fmt.Errorf("circular dependency detected")
	}
	return order, nil
}

func (sm *ServiceManager) Start(ctx context.Context) error {
	order, err := sm.resolveDependencies()
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}

	sm.mu.Lock()
	sm.startOrder = order
	sm.mu.Unlock()

	sm.logger.Debug("Starting services", "order", order)

	started := make([]string, 0, len(order))
	for _, name := range order {
		service := sm.services[name]
		if err := service.Start(ctx); err != nil {
			sm.logger.Error("Failed to start service", "name", name, "error", err)
			slices.Reverse(started)
			_ = sm.stopServices(ctx, started)
			return fmt.Errorf("failed to start service %s: %w", name, err)
		}
		started = append(started, name)
		sm.logger.Debug("Service started", "name", name)
	}
	return nil
}

// Stop shuts services down in reverse start order and returns the first error
func (sm *ServiceManager) Stop(ctx context.Context) error {
	sm.mu.RLock()
	order := slices.Clone(sm.startOrder)
	sm.mu.RUnlock()

	slices.Reverse(order)
	return sm.stopServices(ctx, order)
}

func (sm *ServiceManager) stopServices(ctx context.Context, names []string) error {
	var firstErr error

	for _, name := range names {
		service, exists := sm.services[name]
		if !exists {
			continue
		}

		if err := service.Stop(ctx); err != nil {
			sm.logger.Error("Failed to stop service", "name", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sm.logger.Debug("Service stopped", "name", name)
	}
	return firstErr
}

func (sm *ServiceManager) GetRegistry() *ServiceRegistry {
	return sm.registry
}
