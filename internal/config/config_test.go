package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `
workflow:
  max_fix_attempts: 5
  tool_timeout: "2m"
  dist_dir: out
  exclude_dirs:
    - generated
tools:
  terraform: /opt/bin/terraform
  helm: helm3
db:
  path: /tmp/driftgate-test.db
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driftgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Workflow.MaxFixAttempts != 5 {
		t.Errorf("MaxFixAttempts = %d, want 5", cfg.Workflow.MaxFixAttempts)
	}
	if cfg.ToolTimeout() != 2*time.Minute {
		t.Errorf("ToolTimeout = %s, want 2m", cfg.ToolTimeout())
	}
	if cfg.Workflow.DistDir != "out" {
		t.Errorf("DistDir = %q, want out", cfg.Workflow.DistDir)
	}
	if len(cfg.Workflow.ExcludeDirs) != 1 || cfg.Workflow.ExcludeDirs[0] != "generated" {
		t.Errorf("ExcludeDirs = %v", cfg.Workflow.ExcludeDirs)
	}

	// Explicit overrides survive, everything else defaults.
	if cfg.Tools.Terraform != "/opt/bin/terraform" {
		t.Errorf("Terraform = %q", cfg.Tools.Terraform)
	}
	if cfg.Tools.Helm != "helm3" {
		t.Errorf("Helm = %q", cfg.Tools.Helm)
	}
	if cfg.Tools.Hadolint != "hadolint" {
		t.Errorf("Hadolint = %q, want default binary name", cfg.Tools.Hadolint)
	}
	if cfg.DB.Path != "/tmp/driftgate-test.db" {
		t.Errorf("DB.Path = %q", cfg.DB.Path)
	}
}

func TestLoad_EmptyFileGetsAllDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workflow.MaxFixAttempts != DefaultMaxFixAttempts {
		t.Errorf("MaxFixAttempts = %d, want %d", cfg.Workflow.MaxFixAttempts, DefaultMaxFixAttempts)
	}
	if cfg.ToolTimeout() != DefaultToolTimeout {
		t.Errorf("ToolTimeout = %s, want %s", cfg.ToolTimeout(), DefaultToolTimeout)
	}
	if cfg.Workflow.DistDir != DefaultDistDir {
		t.Errorf("DistDir = %q, want %q", cfg.Workflow.DistDir, DefaultDistDir)
	}
	if cfg.Tools.Docker != "docker" {
		t.Errorf("Docker = %q, want default", cfg.Tools.Docker)
	}
	if cfg.DB.Path == "" {
		t.Error("DB.Path should default under the home directory")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "workflow: [not a map"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing config YAML") {
		t.Errorf("error = %v, want parse context", err)
	}
}

func TestToolTimeout_FallsBackOnGarbage(t *testing.T) {
	cfg := &Config{Workflow: Workflow{ToolTimeout: "soon"}}
	if cfg.ToolTimeout() != DefaultToolTimeout {
		t.Errorf("ToolTimeout = %s, want default", cfg.ToolTimeout())
	}
	cfg.Workflow.ToolTimeout = "-5s"
	if cfg.ToolTimeout() != DefaultToolTimeout {
		t.Errorf("negative timeout should fall back to default")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("valid config produced errors: %v", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Workflow: Workflow{
			MaxFixAttempts: -1,
			ToolTimeout:    "fast",
			ExcludeDirs:    []string{"ok", "not/ok"},
		},
		DB: DB{URL: "mysql://nope"},
	}

	errs := Validate(cfg)
	fields := make(map[string]bool, len(errs))
	for _, e := range errs {
		fields[e.Field] = true
	}

	for _, want := range []string{
		"workflow.max_fix_attempts",
		"workflow.tool_timeout",
		"workflow.exclude_dirs[1]",
		"tools.terraform",
		"db.url",
	} {
		if !fields[want] {
			t.Errorf("missing validation error for %s in %v", want, errs)
		}
	}
	if fields["workflow.exclude_dirs[0]"] {
		t.Error("bare directory name flagged as invalid")
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "db.url", Message: "must be a postgres:// connection URL"}
	if got := e.Error(); got != "db.url: must be a postgres:// connection URL" {
		t.Errorf("Error() = %q", got)
	}
}
