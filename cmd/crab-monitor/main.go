package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kelsos/crab-monitor/internal/client"
	"github.com/kelsos/crab-monitor/internal/config"
	"github.com/kelsos/crab-monitor/internal/logger"
	"github.com/kelsos/crab-monitor/internal/models"
	"github.com/kelsos/crab-monitor/internal/process"
	"github.com/kelsos/crab-monitor/internal/services"
	"github.com/kelsos/crab-monitor/internal/taskconfig"
	"github.com/kelsos/crab-monitor/internal/tui"
)

// newLogger creates the process logger. In TUI mode the terminal belongs to
// the TUI, so only the log file is written.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.TUI {
		return logger.NewFileOnly(cfg.LogFile)
	}
	return logger.New(cfg.LogFile)
}

// newCrabService returns the job manager backend selected by cfg
func newCrabService(cfg *config.Config, template models.TaskConfig, log *logger.Logger) services.CrabService {
	if cfg.Backend == config.BackendAPI {
		return client.NewCrabAPI(client.NewAPIClient(cfg.APIURL, cfg.APITimeout(), log))
	}
	return process.NewCrabCommand(cfg.CrabBin, template.General.WorkArea, log)
}

func runSubmit(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	template, err := taskconfig.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return err
	}

	service := newCrabService(cfg, template, log)

	if !cfg.TUI {
		submitter := services.NewSubmitter(service, template, log)
		monitor := services.NewMonitor(service, cfg.Interval(), log, nil)
		return services.NewRunner(submitter, monitor, log, nil).Run(ctx, cfg.Datasets)
	}

	view := tui.NewMonitor(cfg.Datasets)
	submitter := services.NewSubmitter(service, template, log)
	monitor := services.NewMonitor(service, cfg.Interval(), log, view)
	runner := services.NewRunner(submitter, monitor, log, view)
	return view.Run(ctx, func(ctx context.Context) error {
		return runner.Run(ctx, cfg.Datasets)
	})
}

func runStatus(ctx context.Context, cfg *config.Config, log *logger.Logger, handle string, once bool) error {
	template, err := taskconfig.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return err
	}

	task := models.Task{Handle: handle}
	monitor := services.NewMonitor(newCrabService(cfg, template, log), cfg.Interval(), log, nil)
	if once {
		_, err := monitor.Poll(ctx, task)
		return err
	}
	return monitor.Wait(ctx, task)
}

// withLogger creates the logger for a command, runs fn and closes the
// logger afterwards
func withLogger(cfg *config.Config, envFiles []string, fn func(log *logger.Logger) error) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	for _, file := range envFiles {
		log.Debug("Loaded environment from %s", file)
	}

	if err := fn(log); err != nil {
		log.Error("%v", err)
		return err
	}
	return nil
}

func newRootCmd(ctx context.Context, cfg *config.Config, envFiles []string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crab-monitor --datasets /A/B/C [/D/E/F ...]",
		Short: "Submit CRAB tasks and monitor them until all jobs finish",
		Long: `crab-monitor submits one CRAB task per input dataset and polls it until
every job is finished before moving to the next dataset. Progress is logged
to the terminal and to a log file.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Datasets = append(cfg.Datasets, args...)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return withLogger(cfg, envFiles, func(log *logger.Logger) error {
				return runSubmit(ctx, cfg, log)
			})
		},
	}

	var (
		taskHandle string
		once       bool
	)
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Monitor an already submitted task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateMonitor(); err != nil {
				return err
			}
			return withLogger(cfg, envFiles, func(log *logger.Logger) error {
				return runStatus(ctx, cfg, log, taskHandle, once)
			})
		},
	}
	statusCmd.Flags().StringVarP(&taskHandle, "task", "", "", "Task directory, e.g. crab_A_B_C")
	statusCmd.Flags().BoolVarP(&once, "once", "", false, "Print a single status snapshot and exit")
	_ = statusCmd.MarkFlagRequired("task")

	// Shared flags, defaults come from the environment
	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&cfg.IntervalSeconds, "interval", "i", cfg.IntervalSeconds, "Polling interval in seconds")
	flags.StringVarP(&cfg.Backend, "backend", "", cfg.Backend, "Job manager backend: cli or api")
	flags.StringVarP(&cfg.CrabBin, "crab-bin", "", cfg.CrabBin, "Path to the crab client (cli backend)")
	flags.StringVarP(&cfg.APIURL, "api-url", "", cfg.APIURL, "Base URL of the job manager gateway (api backend)")
	flags.IntVarP(&cfg.APITimeoutSeconds, "api-timeout", "", cfg.APITimeoutSeconds, "HTTP timeout in seconds (api backend)")
	flags.StringVarP(&cfg.TemplatePath, "template", "t", cfg.TemplatePath, "YAML task template (default: built-in NanoAODTools template)")
	flags.StringVarP(&cfg.LogFile, "log-file", "", cfg.LogFile, "Log file, truncated at start")

	rootCmd.Flags().StringSliceVarP(&cfg.Datasets, "datasets", "d", nil, "Input datasets")
	rootCmd.Flags().BoolVarP(&cfg.TUI, "tui", "", false, "Show an interactive progress view")
	_ = rootCmd.MarkFlagRequired("datasets")

	rootCmd.AddCommand(statusCmd)
	return rootCmd
}

func main() {
	envFiles := config.LoadEnvFiles()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(ctx, cfg, envFiles).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
