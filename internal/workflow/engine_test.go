package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/release"
)

// scriptedRunner decides pass/fail per call by inspecting argv and the
// filesystem, so a fixer editing a file can flip later validations.
type scriptedRunner struct {
	mu    sync.Mutex
	calls [][]string
	fn    func(dir string, argv []string) (stdout, stderr string, exitCode int)
}

func (r *scriptedRunner) Run(ctx context.Context, dir string, argv []string) (string, string, int, error) {
	r.mu.Lock()
	r.calls = append(r.calls, argv)
	r.mu.Unlock()
	if r.fn == nil {
		return "", "", 0, nil
	}
	stdout, stderr, code := r.fn(dir, argv)
	return stdout, stderr, code, nil
}

func (r *scriptedRunner) commandLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		lines = append(lines, strings.Join(c, " "))
	}
	return lines
}

type recordedEvent struct {
	event    string
	category string
	detail   string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	tools  int
}

func (f *fakeEvents) LogWorkflowEvent(runID, event, category, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{event, category, detail})
	return nil
}

func (f *fakeEvents) LogToolRun(runID, category, tool, filePath string, passed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools++
	return nil
}

func (f *fakeEvents) has(event, detail string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.event == event && e.detail == detail {
			return true
		}
	}
	return false
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Workflow: config.Workflow{
			MaxFixAttempts: 3,
			ToolTimeout:    "30s",
			DistDir:        filepath.Join(t.TempDir(), "dist"),
		},
		Tools: config.Tools{
			Terraform: "terraform",
			TFLint:    "tflint",
			Checkov:   "checkov",
			Hadolint:  "hadolint",
			Docker:    "docker",
			Helm:      "helm",
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// A Dockerfile that lints dirty, gets fixed, and passes on the second pass.
func TestEngine_FixLoopConvergesToSuccess(t *testing.T) {
	root := t.TempDir()
	dockerfilePath := filepath.Join(root, "app", "Dockerfile")
	writeFile(t, dockerfilePath, "FROM python:3.9\nCOPY . /src\nCMD [\"python\", \"app.py\"]\n")

	runner := &scriptedRunner{fn: func(dir string, argv []string) (string, string, int) {
		if argv[0] == "hadolint" {
			data, err := os.ReadFile(argv[1])
			if err != nil {
				return "", err.Error(), 1
			}
			if !strings.Contains(string(data), "WORKDIR") {
				return "", "DL3000 missing WORKDIR", 1
			}
		}
		return "", "", 0
	}}
	events := &fakeEvents{}

	eng := New(testConfig(t), runner, events, nil, zap.NewNop(), Options{MaxFixAttempts: 3})
	state, err := eng.Run([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	if state.Status != StatusSuccess {
		t.Fatalf("status = %s (%s), want success", state.Status, state.ErrorMessage)
	}
	if !state.FixApplied {
		t.Error("FixApplied should be set after the fix pass")
	}
	if got := state.FixAttempts[discover.Docker].Used; got != 1 {
		t.Errorf("docker attempts used = %d, want 1", got)
	}
	if len(state.FilesFixed) != 1 {
		t.Errorf("FilesFixed = %v, want the one dockerfile", state.FilesFixed)
	}
	if len(state.DockerImagesBuilt) != 1 {
		t.Errorf("DockerImagesBuilt = %v, want one image", state.DockerImagesBuilt)
	}
	if state.ReleaseResults[discover.Docker].Status != release.StatusSuccess {
		t.Errorf("docker release = %+v, want success", state.ReleaseResults[discover.Docker])
	}
	// Categories with no files are skipped, not failed.
	for _, c := range []discover.Category{discover.Terraform, discover.Helm} {
		if state.ReleaseResults[c].Status != release.StatusSkipped {
			t.Errorf("%s release = %+v, want skipped", c, state.ReleaseResults[c])
		}
	}

	if !events.has("decision", "fix") || !events.has("decision", "release") {
		t.Errorf("missing decision events: %+v", events.events)
	}
	if !events.has("finished", "success") {
		t.Errorf("missing finished event: %+v", events.events)
	}
}

// A chart that fails lint regardless of fixing exhausts its budget and
// fails the run.
func TestEngine_ExhaustedBudgetFailsRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "charts", "web", "Chart.yaml"),
		"apiVersion: v2\nname: web\nversion: 0.1.0\n")

	runner := &scriptedRunner{fn: func(dir string, argv []string) (string, string, int) {
		if argv[0] == "helm" && argv[1] == "lint" {
			return "", "templates/ directory not found", 1
		}
		return "", "", 0
	}}

	eng := New(testConfig(t), runner, &fakeEvents{}, nil, zap.NewNop(), Options{MaxFixAttempts: 1})
	state, err := eng.Run([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if got := state.FixAttempts[discover.Helm].Used; got != 1 {
		t.Errorf("helm attempts used = %d, want exactly the budget of 1", got)
	}
	if !strings.Contains(state.ErrorMessage, "exhausting fix attempts") {
		t.Errorf("error message = %q", state.ErrorMessage)
	}
	if state.ReleaseReady {
		t.Error("failed run must not be release ready")
	}
	for _, line := range runner.commandLines() {
		if strings.Contains(line, "package") || strings.Contains(line, "apply") {
			t.Errorf("release tool ran on a failed run: %q", line)
		}
	}
}

// A budget of zero means no remediation at all: errors go straight to
// failed and no file is touched, even though the config carries a default.
func TestEngine_ZeroFixBudgetDisablesRemediation(t *testing.T) {
	root := t.TempDir()
	dockerfilePath := filepath.Join(root, "app", "Dockerfile")
	content := "FROM python:3.9\nCOPY . /src\nCMD [\"python\", \"app.py\"]\n"
	writeFile(t, dockerfilePath, content)

	runner := &scriptedRunner{fn: func(dir string, argv []string) (string, string, int) {
		if argv[0] == "hadolint" {
			return "", "DL3000 missing WORKDIR", 1
		}
		return "", "", 0
	}}

	// testConfig carries max_fix_attempts 3; the explicit 0 must win.
	eng := New(testConfig(t), runner, nil, nil, zap.NewNop(), Options{MaxFixAttempts: 0})
	state, err := eng.Run([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if got := state.FixAttempts[discover.Docker].Used; got != 0 {
		t.Errorf("docker attempts used = %d, want 0", got)
	}
	if state.FixApplied || len(state.FilesFixed) != 0 {
		t.Errorf("remediation ran with a zero budget: applied=%t fixed=%v",
			state.FixApplied, state.FilesFixed)
	}
	data, err := os.ReadFile(dockerfilePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("dockerfile rewritten despite zero budget:\n%s", data)
	}
}

// A root with nothing to validate releases immediately with every stage
// skipped.
func TestEngine_EmptyRootSucceedsWithSkippedRelease(t *testing.T) {
	runner := &scriptedRunner{}
	eng := New(testConfig(t), runner, nil, nil, zap.NewNop(), Options{})

	state, err := eng.Run([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	if err != nil {
		t.Fatal(err)
	}

	if state.Status != StatusSuccess {
		t.Fatalf("status = %s, want success", state.Status)
	}
	for _, c := range discover.Categories() {
		if state.ReleaseResults[c].Status != release.StatusSkipped {
			t.Errorf("%s release = %+v, want skipped", c, state.ReleaseResults[c])
		}
	}
	if len(runner.calls) != 0 {
		t.Errorf("no tools should run for an empty root, got %v", runner.commandLines())
	}
}

func TestEngine_DryRunSkipsReleaseStages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dockerfile"),
		"FROM node:20-alpine\nWORKDIR /app\nUSER node\nCMD [\"node\"]\n")

	runner := &scriptedRunner{}
	events := &fakeEvents{}
	eng := New(testConfig(t), runner, events, nil, zap.NewNop(), Options{DryRun: true})

	state, err := eng.Run([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	if state.Status != StatusSuccess {
		t.Fatalf("status = %s, want success", state.Status)
	}
	for _, c := range discover.Categories() {
		res := state.ReleaseResults[c]
		if res.Status != release.StatusSkipped || res.Detail != "dry_run" {
			t.Errorf("%s release = %+v, want skipped/dry_run", c, res)
		}
	}
	if len(state.DockerImagesBuilt) != 0 {
		t.Errorf("dry run built images: %v", state.DockerImagesBuilt)
	}
	// The validation build uses --no-cache; a release build would not.
	for _, line := range runner.commandLines() {
		if strings.HasPrefix(line, "docker build") && !strings.Contains(line, "--no-cache") {
			t.Errorf("release build ran under dry run: %q", line)
		}
	}
	if !events.has("release_skipped", "dry_run") {
		t.Errorf("missing release_skipped event: %+v", events.events)
	}
}

func TestEngine_ValidateOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dockerfile"), "FROM python:3.9\nCMD [\"python\"]\n")

	runner := &scriptedRunner{fn: func(dir string, argv []string) (string, string, int) {
		if argv[0] == "hadolint" {
			return "", "DL3007 pin versions", 1
		}
		return "", "", 0
	}}
	eng := New(testConfig(t), runner, nil, nil, zap.NewNop(), Options{})

	state := eng.ValidateOnly([]string{root})
	if state.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if state.TotalErrors() != 1 {
		t.Errorf("TotalErrors = %d, want 1", state.TotalErrors())
	}
	if state.FixApplied {
		t.Error("validate-only must not fix")
	}
	if got := state.FixAttempts[discover.Docker].Used; got != 0 {
		t.Errorf("validate-only consumed fix budget: %d", got)
	}
	if len(state.ReleaseResults) != 0 {
		t.Errorf("validate-only produced release results: %v", state.ReleaseResults)
	}
	// The file on disk must be untouched.
	data, err := os.ReadFile(filepath.Join(root, "Dockerfile"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "WORKDIR") {
		t.Error("validate-only rewrote the dockerfile")
	}
}

func TestEngine_ToolRunsAreLogged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dockerfile"),
		"FROM node:20-alpine\nWORKDIR /app\nUSER node\nCMD [\"node\"]\n")

	events := &fakeEvents{}
	eng := New(testConfig(t), &scriptedRunner{}, events, nil, zap.NewNop(), Options{DryRun: true})
	if _, err := eng.Run([]string{root}); err != nil {
		t.Fatal(err)
	}

	// hadolint + docker build for the one dockerfile.
	if events.tools != 2 {
		t.Errorf("tool runs logged = %d, want 2", events.tools)
	}
}
