package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/kelsos/crab-monitor/internal/logger"
	"github.com/kelsos/crab-monitor/internal/taskconfig"
)

// Runner submits and monitors datasets one after the other
type Runner struct {
	submitter *Submitter
	monitor   *Monitor
	log       *logger.Logger
	observer  Observer
}

// NewRunner wires a runner from its parts
func NewRunner(submitter *Submitter, monitor *Monitor, log *logger.Logger, observer Observer) *Runner {
	return &Runner{
		submitter: submitter,
		monitor:   monitor,
		log:       log,
		observer:  observerOrNop(observer),
	}
}

// Run processes datasets in order. The first error aborts the run and the
// remaining datasets are not submitted.
func (r *Runner) Run(ctx context.Context, datasets []string) error {
	runID := uuid.NewString()
	r.log.Info("Starting run %s for %d dataset(s)", runID, len(datasets))
	r.observer.RunStarted(runID, datasets)

	for _, dataset := range datasets {
		if err := r.process(ctx, dataset); err != nil {
			r.observer.TaskFailed(dataset, err)
			return err
		}
	}

	r.log.Info("Run %s completed: all datasets processed", runID)
	return nil
}

func (r *Runner) process(ctx context.Context, dataset string) error {
	requestName := taskconfig.RequestName(dataset)

	r.log.Info("Submitting dataset %s", dataset)
	r.observer.TaskSubmitting(dataset)
	task, err := r.submitter.Submit(ctx, dataset, requestName)
	if err != nil {
		return err
	}

	r.log.Info("Submitted as %s", task.Handle)
	r.observer.TaskSubmitted(dataset, task)

	return r.monitor.Wait(ctx, task)
}
