package notify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
)

const DefaultNotifyTimeout = 30 * time.Second

// Gateway delivers an outage reason through every configured notifier at
// once. Each notifier gets its own deadline and its own outcome, one slow or
// failing channel never holds back or cancels the others.
type Gateway struct {
	notifiers []ports.Notifier
	timeout   time.Duration
}

func NewGateway(timeout time.Duration, notifiers ...ports.Notifier) *Gateway {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &Gateway{
		notifiers: notifiers,
		timeout:   timeout,
	}
}

// Notify returns outcomes in the order the notifiers were configured
func (g *Gateway) Notify(ctx context.Context, reason string) []domain.NotifyOutcome {
	outcomes := make([]domain.NotifyOutcome, len(g.notifiers))

	// a plain group, not WithContext, one failure must not cancel the rest
	var group errgroup.Group
	for i, n := range g.notifiers {
		group.Go(func() error {
			outcomes[i] = g.deliver(ctx, n, reason)
			return nil
		})
	}
	_ = group.Wait()

	return outcomes
}

func (g *Gateway) deliver(ctx context.Context, n ports.Notifier, reason string) (outcome domain.NotifyOutcome) {
	start := time.Now()
	outcome.Notifier = n.Name()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = &domain.NotifyError{Notifier: n.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
		outcome.Latency = time.Since(start)
	}()

	nctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := n.Notify(nctx, reason); err != nil {
		outcome.Err = &domain.NotifyError{Notifier: n.Name(), Err: err}
	}
	return outcome
}

func (g *Gateway) Names() []string {
	names := make([]string, 0, len(g.notifiers))
	for _, n := range g.notifiers {
		names = append(names, n.Name())
	}
	return names
}
