package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/crab-monitor/internal/models"
)

type Stage string

const (
	StagePending    Stage = "pending"
	StageSubmitting Stage = "submitting"
	StagePolling    Stage = "polling"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

const (
	maxLogLines   = 10
	progressWidth = 20
)

type TaskStatus struct {
	Dataset    string
	Handle     string
	Stage      Stage
	Finished   int
	Total      int
	Counts     map[models.JobState]int
	Error      error
	LastPoll   time.Time
	StartTime  time.Time
	FinishTime time.Time
}

// Progress is the finished fraction, 0 while no jobs are known
func (s TaskStatus) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Finished) / float64(s.Total)
}

type Model struct {
	datasets  []string
	statuses  map[string]*TaskStatus
	logs      []string
	spinner   spinner.Model
	progress  progress.Model
	width     int
	height    int
	quit      bool
	completed bool
	runID     string
	runErr    error
}

type DatasetsLoaded struct {
	Datasets []string
}

type TaskUpdate struct {
	Dataset  string
	Handle   string
	Stage    Stage
	Snapshot *models.StatusSnapshot
	Error    error
}

type LogMessage struct {
	Message string
}

// RunStarted carries the id tagging every log line of the run
type RunStarted struct {
	RunID    string
	Datasets []string
}

// RunFinished is sent once the run returns
type RunFinished struct {
	Err error
}

func NewModel(datasets []string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth))

	m := Model{
		statuses: make(map[string]*TaskStatus),
		logs:     []string{},
		spinner:  sp,
		progress: pr,
		width:    80,
		height:   24,
	}
	return m.handleDatasetsLoaded(DatasetsLoaded{Datasets: datasets})
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKeyMsg(msg) {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case DatasetsLoaded:
		m = m.handleDatasetsLoaded(msg)

	case TaskUpdate:
		m = m.handleTaskUpdate(msg)

	case LogMessage:
		m = m.handleLogMessage(msg)

	case RunStarted:
		m.runID = msg.RunID
		m = m.handleDatasetsLoaded(DatasetsLoaded{Datasets: msg.Datasets})

	case RunFinished:
		m.completed = true
		m.runErr = msg.Err
		m.quit = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.progress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	return m
}

func (m Model) handleDatasetsLoaded(msg DatasetsLoaded) Model {
	m.datasets = msg.Datasets
	for _, dataset := range msg.Datasets {
		if _, exists := m.statuses[dataset]; exists {
			continue
		}
		m.statuses[dataset] = &TaskStatus{
			Dataset: dataset,
			Stage:   StagePending,
		}
	}
	return m
}

func (m Model) handleTaskUpdate(msg TaskUpdate) Model {
	status, exists := m.statuses[msg.Dataset]
	if !exists {
		status = &TaskStatus{Dataset: msg.Dataset}
		m.statuses[msg.Dataset] = status
		m.datasets = append(m.datasets, msg.Dataset)
	}

	status.Stage = msg.Stage
	if msg.Handle != "" {
		status.Handle = msg.Handle
	}

	now := time.Now()
	switch msg.Stage {
	case StageSubmitting:
		if status.StartTime.IsZero() {
			status.StartTime = now
		}
	case StageDone, StageFailed:
		status.FinishTime = now
	}

	if msg.Snapshot != nil {
		status.Finished = msg.Snapshot.Finished()
		status.Total = msg.Snapshot.Total()
		status.Counts = msg.Snapshot.Counts
		status.LastPoll = now
	}
	if msg.Error != nil {
		status.Error = msg.Error
	}
	return m
}

func (m Model) handleLogMessage(msg LogMessage) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), msg.Message))
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	return m
}

// Status returns the status of dataset
func (m Model) Status(dataset string) (TaskStatus, bool) {
	status, exists := m.statuses[dataset]
	if !exists {
		return TaskStatus{}, false
	}
	return *status, true
}

func (m Model) countStage(stage Stage) int {
	n := 0
	for _, status := range m.statuses {
		if status.Stage == stage {
			n++
		}
	}
	return n
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("CRAB Task Monitor"))
	s.WriteString("\n\n")

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	summary := fmt.Sprintf("Datasets: %d | Done: %d | Failed: %d | Polling: %d",
		len(m.datasets), m.countStage(StageDone), m.countStage(StageFailed), m.countStage(StagePolling))
	if m.runID != "" {
		summary += " | Run: " + m.runID
	}
	s.WriteString(summaryStyle.Render(summary))
	s.WriteString("\n\n")

	taskSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var taskStatus strings.Builder
	taskStatus.WriteString("Tasks\n")
	taskStatus.WriteString(strings.Repeat("─", 60) + "\n")

	for _, dataset := range m.datasets {
		status, exists := m.statuses[dataset]
		if !exists {
			continue
		}

		line := fmt.Sprintf("%s %-30s %-10s",
			getStageIcon(status.Stage),
			truncate(dataset, 30),
			status.Stage)

		if status.Stage == StagePolling || status.Stage == StageSubmitting {
			line = m.spinner.View() + " " + line
		}

		if status.Stage == StagePolling || status.Stage == StageDone {
			line += fmt.Sprintf(" %s %d/%d", m.progress.ViewAs(status.Progress()), status.Finished, status.Total)
		}

		if status.Error != nil {
			errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
			line += " " + errorStyle.Render(fmt.Sprintf("Error: %v", status.Error))
		} else if counts := formatCounts(status.Counts); counts != "" && status.Stage == StagePolling {
			countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
			line += " " + countStyle.Render(counts)
		}

		stageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(getStageColor(status.Stage)))
		taskStatus.WriteString(stageStyle.Render(line) + "\n")
	}

	s.WriteString(taskSectionStyle.Render(taskStatus.String()))
	s.WriteString("\n\n")

	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2).
		Height(maxLogLines)

	var logSection strings.Builder
	logSection.WriteString("Recent Logs\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	s.WriteString(footerStyle.Render("Press 'q' to quit (tasks keep running on the grid)"))

	return s.String()
}

// formatCounts renders job counts as "finished=2 running=3"
func formatCounts(counts map[models.JobState]int) string {
	if len(counts) == 0 {
		return ""
	}
	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, string(state))
	}
	sort.Strings(states)

	parts := make([]string, 0, len(states))
	for _, state := range states {
		parts = append(parts, fmt.Sprintf("%s=%d", state, counts[models.JobState(state)]))
	}
	return strings.Join(parts, " ")
}

func getStageIcon(stage Stage) string {
	switch stage {
	case StagePending:
		return "⏸"
	case StageSubmitting:
		return "📤"
	case StagePolling:
		return "🔄"
	case StageDone:
		return "✅"
	case StageFailed:
		return "❌"
	default:
		return "❓"
	}
}

func getStageColor(stage Stage) string {
	switch stage {
	case StagePending:
		return "244"
	case StageDone:
		return "82"
	case StageFailed:
		return "196"
	default:
		return "39"
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
