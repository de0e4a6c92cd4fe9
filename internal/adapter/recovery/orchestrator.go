package recovery

import (
	"context"
	"time"

	"github.com/thushan/redis-watcher/internal/adapter/orchestrator"
	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
	"github.com/thushan/redis-watcher/internal/logger"
)

// Orchestrator forces a redeploy of each dependent workload by bumping its
// force-update counter. Workloads are handled one after another, a failure
// at any step ends that workload's attempt and moves on to the next. Nothing
// is retried, a version conflict is reported like any other rejection.
type Orchestrator struct {
	client        ports.WorkloadClient
	logger        logger.StyledLogger
	createMissing bool
}

func NewOrchestrator(client ports.WorkloadClient, log logger.StyledLogger, createMissingCounter bool) *Orchestrator {
	return &Orchestrator{
		client:        client,
		logger:        log,
		createMissing: createMissingCounter,
	}
}

// RestartAll returns one outcome per workload, in the order given
func (o *Orchestrator) RestartAll(ctx context.Context, workloads []domain.WorkloadDescriptor) []domain.RestartOutcome {
	o.logger.InfoWithCount("Restarting dependent workloads", len(workloads))

	outcomes := make([]domain.RestartOutcome, 0, len(workloads))
	for _, w := range workloads {
		outcomes = append(outcomes, o.restart(ctx, w))
	}
	return outcomes
}

func (o *Orchestrator) restart(ctx context.Context, w domain.WorkloadDescriptor) domain.RestartOutcome {
	start := time.Now()
	outcome := domain.RestartOutcome{Workload: w.ID}

	version, err := o.client.Fetch(ctx, w.ID)
	if err != nil {
		return o.finish(outcome, domain.RestartFetchFailed, err, start)
	}
	// the update below must present this index and no other
	outcome.VersionIndex = version.Index

	spec, err := orchestrator.DeriveRestartSpec(version.Spec, o.createMissing)
	if err != nil {
		return o.finish(outcome, domain.RestartSpecInvalid, domain.NewSpecError(w.ID, err), start)
	}

	if err := o.client.Update(ctx, w.ID, version.Index, spec); err != nil {
		return o.finish(outcome, domain.RestartUpdateRejected, err, start)
	}

	o.logger.Debug("Forced update submitted", "workload", w.ID, "version", version.Index)
	return o.finish(outcome, domain.RestartOK, nil, start)
}

func (o *Orchestrator) finish(outcome domain.RestartOutcome, kind domain.RestartOutcomeKind, err error, start time.Time) domain.RestartOutcome {
	outcome.Kind = kind
	outcome.Err = err
	outcome.Duration = time.Since(start)
	return outcome
}
