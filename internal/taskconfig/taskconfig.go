package taskconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	yaml "gopkg.in/yaml.v2"

	"github.com/kelsos/crab-monitor/internal/models"
)

const (
	// MaxRequestNameLength is the CRAB limit on request names
	MaxRequestNameLength = 100
	// HandlePrefix is prepended by CRAB to the request name to form the task directory
	HandlePrefix = "crab_"
)

var (
	ErrMissingPlugin = errors.New("template jobType.pluginName is required")
	ErrMissingPSet   = errors.New("template jobType.psetName is required")
)

// Overrides are the per-dataset values written over the template
type Overrides struct {
	RequestName  string
	InputDataset string
}

// RequestName derives a CRAB request name from a dataset path:
// "/A/B/C" becomes "A_B_C", capped at MaxRequestNameLength characters.
func RequestName(dataset string) string {
	name := strings.ReplaceAll(strings.Trim(dataset, "/"), "/", "_")
	if utf8.RuneCountInString(name) <= MaxRequestNameLength {
		return name
	}
	return string([]rune(name)[:MaxRequestNameLength])
}

// Handle returns the task directory CRAB creates for requestName
func Handle(requestName string) string {
	return HandlePrefix + requestName
}

// DefaultTemplate is the NanoAODTools post-processing configuration
func DefaultTemplate() models.TaskConfig {
	return models.TaskConfig{
		General: models.GeneralSection{
			RequestName:     "NanoPost",
			TransferOutputs: true,
			TransferLogs:    true,
		},
		JobType: models.JobTypeSection{
			PluginName:       "Analysis",
			PSetName:         "PSet.py",
			ScriptExe:        "crab_script.sh",
			InputFiles:       []string{"crab_script.py", "../scripts/haddnano.py"},
			OutputFiles:      []string{"tree.root"},
			SendPythonFolder: true,
		},
		Data: models.DataSection{
			InputDBS:         "global",
			Splitting:        "FileBased",
			UnitsPerJob:      1,
			OutLFNDirBase:    "/store/user/nanopost",
			Publication:      false,
			OutputDatasetTag: "NanoPost",
		},
		Site: models.SiteSection{
			StorageSite: "T2_CH_CERN",
		},
	}
}

// LoadTemplate reads a YAML template. An empty path yields DefaultTemplate.
func LoadTemplate(path string) (models.TaskConfig, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.TaskConfig{}, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var cfg models.TaskConfig
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return models.TaskConfig{}, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return models.TaskConfig{}, fmt.Errorf("invalid template %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the fields CRAB refuses to submit without
func Validate(cfg models.TaskConfig) error {
	if cfg.JobType.PluginName == "" {
		return ErrMissingPlugin
	}
	if cfg.JobType.PSetName == "" {
		return ErrMissingPSet
	}
	return nil
}

// Build returns a copy of template with the overrides applied. The result
// shares no slices with template, so the template can be reused for every
// dataset.
func Build(template models.TaskConfig, overrides Overrides) models.TaskConfig {
	cfg := template

	cfg.JobType.InputFiles = cloneStrings(template.JobType.InputFiles)
	cfg.JobType.OutputFiles = cloneStrings(template.JobType.OutputFiles)
	cfg.Site.Whitelist = cloneStrings(template.Site.Whitelist)
	cfg.Site.Blacklist = cloneStrings(template.Site.Blacklist)

	cfg.General.RequestName = overrides.RequestName
	cfg.Data.InputDataset = overrides.InputDataset

	return cfg
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
