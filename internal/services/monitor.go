package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kelsos/crab-monitor/internal/logger"
	"github.com/kelsos/crab-monitor/internal/models"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Monitor polls a task until all of its jobs are finished
type Monitor struct {
	service  CrabService
	interval time.Duration
	log      *logger.Logger
	observer Observer
	sleep    SleepFunc
}

// NewMonitor creates a monitor polling every interval
func NewMonitor(service CrabService, interval time.Duration, log *logger.Logger, observer Observer) *Monitor {
	return &Monitor{
		service:  service,
		interval: interval,
		log:      log,
		observer: observerOrNop(observer),
		sleep:    sleepContext,
	}
}

// Poll fetches and logs a single snapshot of the task
func (m *Monitor) Poll(ctx context.Context, task models.Task) (models.StatusSnapshot, error) {
	resp, err := m.service.Status(ctx, task.Handle)
	if err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("failed to query status of %s: %w", task.Handle, err)
	}

	snapshot := models.NewStatusSnapshot(resp)
	m.log.Info("Task %s: %d/%d jobs finished", task.Handle, snapshot.Finished(), snapshot.Total())

	for _, state := range snapshot.States() {
		m.log.Debug("Task %s: %d jobs %s", task.Handle, snapshot.Counts[state], state)
	}

	for _, job := range snapshot.Jobs {
		m.log.Info("  Job %s: %s", job.JobID, job.State)
	}

	m.observer.SnapshotReceived(task, snapshot)
	return snapshot, nil
}

// Wait blocks until every job of task is finished. A task reporting no
// jobs keeps being polled.
func (m *Monitor) Wait(ctx context.Context, task models.Task) error {
	for {
		snapshot, err := m.Poll(ctx, task)
		if err != nil {
			return err
		}

		if snapshot.Done() {
			m.log.Info("Task %s: all jobs finished", task.Handle)
			m.observer.TaskFinished(task)
			return nil
		}

		if snapshot.Total() == 0 {
			m.log.Debug("Task %s: no jobs reported yet", task.Handle)
		}

		if err := m.sleep(ctx, m.interval); err != nil {
			return fmt.Errorf("monitoring of %s interrupted: %w", task.Handle, err)
		}
	}
}
