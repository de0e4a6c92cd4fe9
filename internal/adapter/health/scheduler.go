package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSchedulerRunning = errors.New("scheduler already started")

// TickScheduler calls tick once per interval. The next tick is armed only
// after the previous one returns, so ticks never overlap and a slow tick
// pushes the schedule back rather than queueing work behind it. The first
// tick fires one interval after Start.
type TickScheduler struct {
	tick     func(ctx context.Context)
	cancel   context.CancelFunc
	doneCh   chan struct{}
	interval time.Duration
	mu       sync.Mutex
	started  bool
}

func NewTickScheduler(interval time.Duration, tick func(ctx context.Context)) *TickScheduler {
	return &TickScheduler{
		interval: interval,
		tick:     tick,
	}
}

func (s *TickScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrSchedulerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.doneCh = make(chan struct{})
	s.started = true

	go s.loop(loopCtx, s.doneCh)
	return nil
}

// Stop cancels the loop, including any tick in flight, and waits for it to
// exit or for ctx to expire
func (s *TickScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.doneCh
	s.started = false
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TickScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick(ctx)
			if ctx.Err() != nil {
				return
			}
			timer.Reset(s.interval)
		}
	}
}
