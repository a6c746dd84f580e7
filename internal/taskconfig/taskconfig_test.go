package taskconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRequestName(t *testing.T) {
	tests := []struct {
		dataset string
		want    string
	}{
		{dataset: "/A/B/C", want: "A_B_C"},
		{dataset: "A/B/C/", want: "A_B_C"},
		{dataset: "//A/B//", want: "A_B"},
		{dataset: "/SingleMuon/Run2018A-UL2018_MiniAODv2_NanoAODv9-v2/NANOAOD", want: "SingleMuon_Run2018A-UL2018_MiniAODv2_NanoAODv9-v2_NANOAOD"},
		{dataset: "plain", want: "plain"},
		{dataset: "", want: ""},
	}

	for _, tt := range tests {
		if got := RequestName(tt.dataset); got != tt.want {
			t.Errorf("RequestName(%q)=%q, want %q", tt.dataset, got, tt.want)
		}
	}
}

func TestRequestName_Truncated(t *testing.T) {
	dataset := "/" + strings.Repeat("x", 60) + "/" + strings.Repeat("y", 60) + "/NANOAODSIM"

	got := RequestName(dataset)
	if len(got) != MaxRequestNameLength {
		t.Fatalf("len=%d, want %d", len(got), MaxRequestNameLength)
	}
	want := strings.Repeat("x", 60) + "_" + strings.Repeat("y", 39)
	if got != want {
		t.Fatalf("RequestName()=%q, want %q", got, want)
	}
}

func TestRequestName_Properties(t *testing.T) {
	datasets := []string{
		"/A/B/C",
		"/" + strings.Repeat("long/", 40),
		"/Üñíçødé/" + strings.Repeat("é", 120),
		"///",
	}

	for _, d := range datasets {
		name := RequestName(d)
		if n := utf8.RuneCountInString(name); n > MaxRequestNameLength {
			t.Errorf("RequestName(%q) has %d characters", d, n)
		}
		if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "/") {
			t.Errorf("RequestName(%q)=%q still contains a separator", d, name)
		}
		if again := RequestName(d); again != name {
			t.Errorf("RequestName(%q) not deterministic: %q vs %q", d, name, again)
		}
		if !utf8.ValidString(name) {
			t.Errorf("RequestName(%q) produced invalid UTF-8", d)
		}
	}
}

func TestHandle(t *testing.T) {
	if got := Handle(RequestName("/A/B/C")); got != "crab_A_B_C" {
		t.Fatalf("Handle()=%q, want crab_A_B_C", got)
	}
}

func TestBuild_DoesNotShareTemplateState(t *testing.T) {
	template := DefaultTemplate()
	template.Site.Whitelist = []string{"T2_CH_CERN"}

	first := Build(template, Overrides{RequestName: "A_B_C", InputDataset: "/A/B/C"})
	second := Build(template, Overrides{RequestName: "D_E_F", InputDataset: "/D/E/F"})

	first.JobType.InputFiles[0] = "changed.py"
	first.Site.Whitelist[0] = "T1_US_FNAL"

	if template.JobType.InputFiles[0] != "crab_script.py" {
		t.Fatalf("template input files changed: %v", template.JobType.InputFiles)
	}
	if second.Site.Whitelist[0] != "T2_CH_CERN" {
		t.Fatalf("second config whitelist changed: %v", second.Site.Whitelist)
	}
	if template.General.RequestName != "NanoPost" || template.Data.InputDataset != "" {
		t.Fatalf("template overrides leaked: %+v", template)
	}
	if second.General.RequestName != "D_E_F" || second.Data.InputDataset != "/D/E/F" {
		t.Fatalf("overrides not applied: %+v", second)
	}
	if second.JobType.PSetName != template.JobType.PSetName {
		t.Fatalf("opaque fields not carried over")
	}
}

func TestLoadTemplate_EmptyPathIsDefault(t *testing.T) {
	cfg, err := LoadTemplate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JobType.PluginName != "Analysis" {
		t.Fatalf("unexpected default template: %+v", cfg)
	}
}

func TestLoadTemplate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crab.yaml")
	content := `
general:
  requestName: template
  workArea: projects
  transferOutputs: true
jobType:
  pluginName: Analysis
  psetName: PSet.py
  scriptExe: crab_script.sh
  inputFiles: [crab_script.py, keep_and_drop.txt]
data:
  splitting: FileBased
  unitsPerJob: 2
site:
  storageSite: T2_DE_DESY
  blacklist: [T2_US_MIT]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.WorkArea != "projects" || cfg.Data.UnitsPerJob != 2 || cfg.Site.StorageSite != "T2_DE_DESY" {
		t.Fatalf("unexpected template: %+v", cfg)
	}
	if len(cfg.JobType.InputFiles) != 2 || cfg.Site.Blacklist[0] != "T2_US_MIT" {
		t.Fatalf("unexpected lists: %+v", cfg)
	}
}

func TestLoadTemplate_Errors(t *testing.T) {
	dir := t.TempDir()

	missingPSet := filepath.Join(dir, "nopset.yaml")
	if err := os.WriteFile(missingPSet, []byte("jobType:\n  pluginName: Analysis\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadTemplate(missingPSet); !errors.Is(err, ErrMissingPSet) {
		t.Fatalf("LoadTemplate() err=%v, want %v", err, ErrMissingPSet)
	}

	unknownField := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknownField, []byte("general:\n  requestNme: typo\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadTemplate(unknownField); err == nil {
		t.Fatalf("expected error for unknown field")
	}

	if _, err := LoadTemplate(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
