package services

import (
	"fmt"
)

// ServiceRegistry lets a service find the ones it depends on once they
// have started
type ServiceRegistry struct {
	services map[string]ManagedService
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]ManagedService),
	}
}

func (r *ServiceRegistry) Register(name string, service ManagedService) {
	r.services[name] = service
}

func (r *ServiceRegistry) Get(name string) (ManagedService, error) {
	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}
	return service, nil
}

func (r *ServiceRegistry) GetEvents() (*EventsService, error) {
	return lookup[*EventsService](r, EventsServiceName)
}

func (r *ServiceRegistry) GetWatchdog() (*WatchdogService, error) {
	return lookup[*WatchdogService](r, WatchdogServiceName)
}

func lookup[T ManagedService](r *ServiceRegistry, name string) (T, error) {
	var zero T
	service, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s is a %T", name, service)
	}
	return typed, nil
}
