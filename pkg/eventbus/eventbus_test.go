package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	Message string
	ID      int
}

func TestEventBus_BasicPubSub(t *testing.T) {
	bus := New[testEvent]()
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := bus.Subscribe(ctx)
	defer cleanup()

	if delivered := bus.Publish(testEvent{ID: 1, Message: "outage"}); delivered != 1 {
		t.Errorf("expected 1 delivery, got %d", delivered)
	}

	select {
	case got := <-events:
		if got.ID != 1 || got.Message != "outage" {
			t.Errorf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := New[testEvent]()
	defer bus.Shutdown()

	const n = 4
	var chans []<-chan testEvent
	for i := 0; i < n; i++ {
		ch, cleanup := bus.Subscribe(context.Background())
		defer cleanup()
		chans = append(chans, ch)
	}

	if delivered := bus.Publish(testEvent{ID: 7}); delivered != n {
		t.Fatalf("expected %d deliveries, got %d", n, delivered)
	}
	for i, ch := range chans {
		if got := <-ch; got.ID != 7 {
			t.Errorf("subscriber %d: expected ID 7, got %d", i, got.ID)
		}
	}
}

func TestEventBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewWithBuffer[testEvent](2)
	defer bus.Shutdown()

	_, cleanup := bus.Subscribe(context.Background())
	defer cleanup()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(testEvent{ID: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	if dropped := bus.Stats().Dropped; dropped != 8 {
		t.Errorf("expected 8 dropped, got %d", dropped)
	}
}

func TestEventBus_ContextCancelUnsubscribes(t *testing.T) {
	bus := New[testEvent]()
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	events, _ := bus.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}

	if n := bus.Publish(testEvent{}); n != 0 {
		t.Errorf("expected no deliveries, got %d", n)
	}
}

func TestEventBus_CleanupIsIdempotent(t *testing.T) {
	bus := New[testEvent]()
	defer bus.Shutdown()

	_, cleanup := bus.Subscribe(context.Background())
	cleanup()
	cleanup()

	if subs := bus.Stats().Subscribers; subs != 0 {
		t.Errorf("expected 0 subscribers, got %d", subs)
	}
}

func TestEventBus_Shutdown(t *testing.T) {
	bus := New[testEvent]()
	events, _ := bus.Subscribe(context.Background())

	bus.Shutdown()
	bus.Shutdown()

	if _, ok := <-events; ok {
		t.Error("expected channel closed by shutdown")
	}
	if n := bus.Publish(testEvent{}); n != 0 {
		t.Errorf("publish after shutdown delivered %d", n)
	}

	late, _ := bus.Subscribe(context.Background())
	if _, ok := <-late; ok {
		t.Error("subscribe after shutdown should return a closed channel")
	}
	if !bus.Stats().IsShutdown {
		t.Error("expected IsShutdown")
	}
}

func TestEventBus_ConcurrentPublishAndUnsubscribe(t *testing.T) {
	bus := NewWithBuffer[testEvent](1)
	defer bus.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		_, cleanup := bus.Subscribe(context.Background())
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(testEvent{ID: j})
			}
		}()
		go func() {
			defer wg.Done()
			cleanup()
		}()
	}
	wg.Wait()
}
