// Package eventbus is a small generic pub/sub used to fan watchdog events out
// to observers (status, metrics) without ever blocking the publisher.
package eventbus

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

const DefaultBufferSize = 64

// EventBus delivers each published event to every subscriber that has room
// for it. Slow subscribers lose events, they never slow the publisher down.
type EventBus[T any] struct {
	subscribers *xsync.Map[string, *subscriber[T]]
	bufferSize  int
	seq         atomic.Uint64
	shutdown    atomic.Bool
}

type subscriber[T any] struct {
	ch      chan T
	dropped atomic.Uint64
	mu      sync.RWMutex
	closed  bool
}

type Stats struct {
	Subscribers int
	Dropped     uint64
	IsShutdown  bool
}

func New[T any]() *EventBus[T] {
	return NewWithBuffer[T](DefaultBufferSize)
}

func NewWithBuffer[T any](bufferSize int) *EventBus[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &EventBus[T]{
		subscribers: xsync.NewMap[string, *subscriber[T]](),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns a channel of events and a func to unsubscribe. The
// subscription also ends when ctx is done, either way the channel is closed.
func (eb *EventBus[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	if eb.shutdown.Load() {
		ch := make(chan T)
		close(ch)
		return ch, func() {}
	}

	id := "sub_" + strconv.FormatUint(eb.seq.Add(1), 10)
	sub := &subscriber[T]{ch: make(chan T, eb.bufferSize)}
	eb.subscribers.Store(id, sub)

	stop := context.AfterFunc(ctx, func() {
		eb.unsubscribe(id)
	})

	return sub.ch, func() {
		stop()
		eb.unsubscribe(id)
	}
}

// Publish returns how many subscribers received the event
func (eb *EventBus[T]) Publish(event T) int {
	if eb.shutdown.Load() {
		return 0
	}

	delivered := 0
	eb.subscribers.Range(func(_ string, sub *subscriber[T]) bool {
		if sub.offer(event) {
			delivered++
		}
		return true
	})
	return delivered
}

func (eb *EventBus[T]) Shutdown() {
	if !eb.shutdown.CompareAndSwap(false, true) {
		return
	}
	eb.subscribers.Range(func(id string, _ *subscriber[T]) bool {
		eb.unsubscribe(id)
		return true
	})
}

func (eb *EventBus[T]) Stats() Stats {
	stats := Stats{IsShutdown: eb.shutdown.Load()}
	eb.subscribers.Range(func(_ string, sub *subscriber[T]) bool {
		stats.Subscribers++
		stats.Dropped += sub.dropped.Load()
		return true
	})
	return stats
}

func (eb *EventBus[T]) unsubscribe(id string) {
	if sub, ok := eb.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

func (s *subscriber[T]) offer(event T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
