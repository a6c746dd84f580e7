package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kelsos/crab-monitor/internal/logger"
	"github.com/kelsos/crab-monitor/internal/models"
)

const stderrTailLines = 20

// CrabCommand drives the crab command line client
type CrabCommand struct {
	BinPath  string
	WorkArea string
	log      *logger.Logger
}

// NewCrabCommand returns a backend running binPath. workArea is where crab
// creates task directories; empty means the current directory.
func NewCrabCommand(binPath, workArea string, log *logger.Logger) *CrabCommand {
	return &CrabCommand{
		BinPath:  binPath,
		WorkArea: workArea,
		log:      log,
	}
}

// run executes crab with args and returns its stdout
func (c *CrabCommand) run(ctx context.Context, args ...string) ([]byte, error) {
	c.log.Debug("Running %s %s", c.BinPath, strings.Join(args, " "))

	// #nosec G204 - the binary comes from configuration and args are built here
	cmd := exec.CommandContext(ctx, c.BinPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if tail := tailLines(stderr.String(), stderrTailLines); tail != "" {
			return nil, fmt.Errorf("crab %s failed: %w: %s", args[0], err, tail)
		}
		return nil, fmt.Errorf("crab %s failed: %w", args[0], err)
	}

	return stdout.Bytes(), nil
}

// Submit writes cfg as a crab configuration file and runs crab submit
func (c *CrabCommand) Submit(ctx context.Context, cfg models.TaskConfig) error {
	dir, err := os.MkdirTemp("", "crab-monitor-")
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	defer os.RemoveAll(dir)

	if cfg.General.WorkArea == "" {
		cfg.General.WorkArea = c.WorkArea
	}

	cfgPath := filepath.Join(dir, "crab_"+cfg.General.RequestName+"_cfg.py")
	if err := os.WriteFile(cfgPath, []byte(RenderConfig(cfg)), 0o600); err != nil {
		return fmt.Errorf("failed to write crab config: %w", err)
	}

	out, err := c.run(ctx, "submit", "--config", cfgPath)
	if err != nil {
		return err
	}

	c.log.Debug("crab submit output: %s", strings.TrimSpace(string(out)))
	return nil
}

// Status runs crab status on the task directory and decodes its JSON report
func (c *CrabCommand) Status(ctx context.Context, handle string) (*models.StatusResponse, error) {
	taskDir := handle
	if c.WorkArea != "" && !filepath.IsAbs(handle) {
		taskDir = filepath.Join(c.WorkArea, handle)
	}

	out, err := c.run(ctx, "status", "--dir", taskDir, "--json")
	if err != nil {
		return nil, err
	}

	return ParseStatus(out)
}

// ParseStatus decodes the last JSON object printed by crab status. crab
// prints human readable lines before the report.
func ParseStatus(out []byte) (*models.StatusResponse, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var status models.StatusResponse
		if err := json.Unmarshal([]byte(line), &status); err != nil {
			return nil, fmt.Errorf("invalid crab status report: %w", err)
		}
		return &status, nil
	}

	return nil, fmt.Errorf("no status report in crab output")
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
