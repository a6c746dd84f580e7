package services

import (
	"context"
	"fmt"

	"github.com/kelsos/crab-monitor/internal/logger"
	"github.com/kelsos/crab-monitor/internal/models"
	"github.com/kelsos/crab-monitor/internal/taskconfig"
)

// Submitter creates one CRAB task per dataset from a shared template
type Submitter struct {
	service  CrabService
	template models.TaskConfig
	log      *logger.Logger
}

// NewSubmitter creates a new submitter for the given template
func NewSubmitter(service CrabService, template models.TaskConfig, log *logger.Logger) *Submitter {
	return &Submitter{
		service:  service,
		template: template,
		log:      log,
	}
}

// Submit queues a task for dataset under requestName. Errors from the job
// manager are returned as is, wrapped, and never retried.
func (s *Submitter) Submit(ctx context.Context, dataset, requestName string) (models.Task, error) {
	if requestName == "" {
		return models.Task{}, fmt.Errorf("empty request name for dataset %q", dataset)
	}
	if len([]rune(requestName)) > taskconfig.MaxRequestNameLength {
		return models.Task{}, fmt.Errorf("request name %q exceeds %d characters", requestName, taskconfig.MaxRequestNameLength)
	}

	cfg := taskconfig.Build(s.template, taskconfig.Overrides{
		RequestName:  requestName,
		InputDataset: dataset,
	})

	s.log.Debug("Submitting request %s for dataset %s", requestName, dataset)
	if err := s.service.Submit(ctx, cfg); err != nil {
		return models.Task{}, fmt.Errorf("failed to submit dataset %s: %w", dataset, err)
	}

	return models.Task{
		Dataset:     dataset,
		RequestName: requestName,
		Handle:      taskconfig.Handle(requestName),
		Config:      cfg,
	}, nil
}
