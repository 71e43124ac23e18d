package workflow

import (
	"reflect"
	"testing"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/validate"
)

func TestCollectErrors_FormatsAndIndexes(t *testing.T) {
	s := NewState("run-1", []string{"."}, 3)
	s.ValidationResults[discover.Terraform] = []validate.Result{
		{FilePath: "infra", Tool: "terraform_validate", Passed: false, Errors: []string{"bad ref", "missing var"}},
		{FilePath: "infra", Tool: "tflint", Passed: true},
	}
	s.ValidationResults[discover.Docker] = []validate.Result{
		{FilePath: "app/Dockerfile", Tool: "hadolint", Passed: false, Errors: []string{"DL3007"}},
	}

	CollectErrors(s)

	if !s.AllValidationsComplete {
		t.Error("AllValidationsComplete should be set")
	}
	wantTF := []string{"[terraform_validate] infra: bad ref; missing var"}
	if !reflect.DeepEqual(s.CollectedErrors[discover.Terraform], wantTF) {
		t.Errorf("terraform errors = %v, want %v", s.CollectedErrors[discover.Terraform], wantTF)
	}
	wantDocker := []string{"[hadolint] app/Dockerfile: DL3007"}
	if !reflect.DeepEqual(s.CollectedErrors[discover.Docker], wantDocker) {
		t.Errorf("docker errors = %v, want %v", s.CollectedErrors[discover.Docker], wantDocker)
	}
	if len(s.CollectedErrors[discover.Helm]) != 0 {
		t.Errorf("helm errors = %v, want empty", s.CollectedErrors[discover.Helm])
	}

	if !reflect.DeepEqual(s.ErrorsByFile["infra"], []string{"bad ref", "missing var"}) {
		t.Errorf("errors by file = %v", s.ErrorsByFile["infra"])
	}
	if s.TotalErrors() != 2 {
		t.Errorf("TotalErrors = %d, want 2", s.TotalErrors())
	}
}

func TestCollectErrors_Idempotent(t *testing.T) {
	s := NewState("run-1", []string{"."}, 3)
	s.ValidationResults[discover.Helm] = []validate.Result{
		{FilePath: "charts/web", Tool: "helm_lint", Passed: false, Errors: []string{"missing version"}},
	}

	CollectErrors(s)
	first := s.CollectedErrors
	firstByFile := s.ErrorsByFile

	CollectErrors(s)
	if !reflect.DeepEqual(s.CollectedErrors, first) {
		t.Errorf("second pass changed collected errors: %v vs %v", s.CollectedErrors, first)
	}
	if !reflect.DeepEqual(s.ErrorsByFile, firstByFile) {
		t.Errorf("second pass changed per-file index: %v vs %v", s.ErrorsByFile, firstByFile)
	}
}

func TestCollectErrors_ReplacesStaleErrors(t *testing.T) {
	s := NewState("run-1", []string{"."}, 3)
	s.ValidationResults[discover.Docker] = []validate.Result{
		{FilePath: "Dockerfile", Tool: "hadolint", Passed: false, Errors: []string{"DL3007"}},
	}
	CollectErrors(s)
	if s.TotalErrors() != 1 {
		t.Fatalf("TotalErrors = %d, want 1", s.TotalErrors())
	}

	// Re-validation after a fix overwrites the category's results.
	s.ValidationResults[discover.Docker] = []validate.Result{
		{FilePath: "Dockerfile", Tool: "hadolint", Passed: true},
	}
	CollectErrors(s)
	if s.TotalErrors() != 0 {
		t.Errorf("TotalErrors = %d after clean re-validation, want 0", s.TotalErrors())
	}
	if len(s.ErrorsByFile) != 0 {
		t.Errorf("stale per-file errors survived: %v", s.ErrorsByFile)
	}
}
