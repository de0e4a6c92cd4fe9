package services

import (
	"context"
	"sync"

	"github.com/thushan/redis-watcher/internal/adapter/metrics"
	"github.com/thushan/redis-watcher/internal/adapter/status"
	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/logger"
	"github.com/thushan/redis-watcher/pkg/eventbus"
)

const EventsServiceName = "events"

// EventsService owns the watch event bus and the two consumers that turn
// events into the status snapshot and Prometheus series
type EventsService struct {
	bus      *eventbus.EventBus[domain.WatchEvent]
	store    *status.Store
	recorder *metrics.Recorder
	logger   logger.StyledLogger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewEventsService(logger logger.StyledLogger) *EventsService {
	return &EventsService{
		bus:      eventbus.New[domain.WatchEvent](),
		store:    status.NewStore(),
		recorder: metrics.NewRecorder(),
		logger:   logger,
	}
}

func (s *EventsService) Name() string {
	return EventsServiceName
}

func (s *EventsService) Start(ctx context.Context) error {
	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	storeEvents, _ := s.bus.Subscribe(consumeCtx)
	metricEvents, _ := s.bus.Subscribe(consumeCtx)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.store.Consume(consumeCtx, storeEvents)
	}()
	go func() {
		defer s.wg.Done()
		s.recorder.Consume(consumeCtx, metricEvents)
	}()

	s.logger.Debug("Event consumers started", "subscribers", s.bus.Stats().Subscribers)
	return nil
}

// Stop closes the bus, consumers drain what is buffered and exit
func (s *EventsService) Stop(ctx context.Context) error {
	dropped := s.bus.Stats().Dropped
	s.bus.Shutdown()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if s.cancel != nil {
			s.cancel()
		}
		return ctx.Err()
	}

	if s.cancel != nil {
		s.cancel()
	}
	if dropped > 0 {
		s.logger.Warn("Watch events were dropped by slow consumers", "dropped", dropped)
	}
	return nil
}

func (s *EventsService) Dependencies() []string {
	return nil
}

func (s *EventsService) Bus() *eventbus.EventBus[domain.WatchEvent] {
	return s.bus
}

func (s *EventsService) Store() *status.Store {
	return s.store
}

func (s *EventsService) Recorder() *metrics.Recorder {
	return s.recorder
}
