package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/crab-monitor/internal/models"
)

// Monitor shows the progress of a run in the terminal. It implements
// services.Observer.
type Monitor struct {
	program *tea.Program
}

func NewMonitor(datasets []string, opts ...tea.ProgramOption) *Monitor {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Monitor{
		program: tea.NewProgram(NewModel(datasets), opts...),
	}
}

func (tm *Monitor) send(msg tea.Msg) {
	if tm.program != nil {
		tm.program.Send(msg)
	}
}

func (tm *Monitor) AddLog(message string) {
	tm.send(LogMessage{Message: message})
}

func (tm *Monitor) RunStarted(runID string, datasets []string) {
	tm.send(RunStarted{RunID: runID, Datasets: datasets})
	tm.AddLog(fmt.Sprintf("Run %s started", runID))
}

func (tm *Monitor) TaskSubmitting(dataset string) {
	tm.send(TaskUpdate{Dataset: dataset, Stage: StageSubmitting})
	tm.AddLog(fmt.Sprintf("Submitting %s", dataset))
}

func (tm *Monitor) TaskSubmitted(dataset string, task models.Task) {
	tm.send(TaskUpdate{Dataset: dataset, Handle: task.Handle, Stage: StagePolling})
	tm.AddLog(fmt.Sprintf("Submitted %s as %s", dataset, task.Handle))
}

func (tm *Monitor) SnapshotReceived(task models.Task, snapshot models.StatusSnapshot) {
	tm.send(TaskUpdate{Dataset: task.Dataset, Handle: task.Handle, Stage: StagePolling, Snapshot: &snapshot})
	tm.AddLog(fmt.Sprintf("%s: %d/%d jobs finished", task.Handle, snapshot.Finished(), snapshot.Total()))
}

func (tm *Monitor) TaskFinished(task models.Task) {
	tm.send(TaskUpdate{Dataset: task.Dataset, Handle: task.Handle, Stage: StageDone})
	tm.AddLog(fmt.Sprintf("%s: all jobs finished", task.Handle))
}

func (tm *Monitor) TaskFailed(dataset string, err error) {
	tm.send(TaskUpdate{Dataset: dataset, Stage: StageFailed, Error: err})
	tm.AddLog(fmt.Sprintf("%s failed: %v", dataset, err))
}

// Run executes run in a goroutine while the TUI is shown and returns its
// error. Quitting the TUI cancels the context passed to run.
func (tm *Monitor) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		err := run(ctx)
		result <- err
		tm.send(RunFinished{Err: err})
	}()

	if _, err := tm.program.Run(); err != nil {
		cancel()
		<-result
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	cancel()
	return <-result
}
