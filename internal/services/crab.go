package services

import (
	"context"

	"github.com/kelsos/crab-monitor/internal/models"
)

// CrabService is the remote job manager. Submit queues a task built from
// cfg; Status reads the current job states of the task with the given handle.
type CrabService interface {
	Submit(ctx context.Context, cfg models.TaskConfig) error
	Status(ctx context.Context, handle string) (*models.StatusResponse, error)
}

// Observer follows the progress of a run. All methods are called from the
// goroutine executing the run.
type Observer interface {
	RunStarted(runID string, datasets []string)
	TaskSubmitting(dataset string)
	TaskSubmitted(dataset string, task models.Task)
	SnapshotReceived(task models.Task, snapshot models.StatusSnapshot)
	TaskFinished(task models.Task)
	TaskFailed(dataset string, err error)
}

type nopObserver struct{}

func (nopObserver) RunStarted(string, []string) {}

func (nopObserver) TaskSubmitting(string) {}

func (nopObserver) TaskSubmitted(string, models.Task) {}

func (nopObserver) SnapshotReceived(models.Task, models.StatusSnapshot) {}

func (nopObserver) TaskFinished(models.Task) {}

func (nopObserver) TaskFailed(string, error) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
