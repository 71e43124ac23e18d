package workflow

import (
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/fix"
	"github.com/lucasnoah/driftgate/internal/release"
	"github.com/lucasnoah/driftgate/internal/validate"
)

// Status is the externally observable workflow status. Success and Failed
// are the only terminal values.
type Status string

const (
	StatusRunning   Status = "running"
	StatusFixing    Status = "fixing"
	StatusReleasing Status = "releasing"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends the workflow.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// State is the single mutable record threaded through every workflow step.
// The engine owns it exclusively; stages receive it from a single-threaded
// driver and never share it.
type State struct {
	RunID     string   `json:"run_id"`
	RootPaths []string `json:"root_paths"`

	FilesByCategory   map[discover.Category][]string         `json:"files_by_category"`
	ValidationResults map[discover.Category][]validate.Result `json:"validation_results"`

	// Derived by CollectErrors from ValidationResults; recomputed wholesale
	// after every validation pass, never mutated elsewhere.
	CollectedErrors        map[discover.Category][]string `json:"collected_errors"`
	ErrorsByFile           map[string][]string            `json:"errors_by_file"`
	AllValidationsComplete bool                           `json:"all_validations_complete"`

	FixAttempts map[discover.Category]*fix.Attempt `json:"fix_attempts"`
	FilesFixed  []string                           `json:"files_fixed"`
	FixApplied  bool                               `json:"fix_applied"`

	ReleaseReady       bool                                 `json:"release_ready"`
	ReleaseResults     map[discover.Category]release.Result `json:"release_results"`
	DockerImagesBuilt  []string                             `json:"docker_images_built"`
	HelmChartsReleased []string                             `json:"helm_charts_released"`
	TerraformApplied   bool                                 `json:"terraform_applied"`

	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
}

// NewState creates the initial workflow state with every category's fix
// budget pre-seeded to maxFixAttempts.
func NewState(runID string, rootPaths []string, maxFixAttempts int) *State {
	s := &State{
		RunID:             runID,
		RootPaths:         rootPaths,
		FilesByCategory:   make(map[discover.Category][]string, 3),
		ValidationResults: make(map[discover.Category][]validate.Result, 3),
		CollectedErrors:   make(map[discover.Category][]string, 3),
		ErrorsByFile:      make(map[string][]string),
		FixAttempts:       make(map[discover.Category]*fix.Attempt, 3),
		FilesFixed:        []string{},
		ReleaseResults:    make(map[discover.Category]release.Result, 3),
		Status:            StatusRunning,
	}
	for _, c := range discover.Categories() {
		s.FilesByCategory[c] = []string{}
		s.ValidationResults[c] = []validate.Result{}
		s.CollectedErrors[c] = []string{}
		s.FixAttempts[c] = fix.NewAttempt(c, maxFixAttempts)
	}
	return s
}

// TotalErrors returns the number of collected error lines across all
// categories.
func (s *State) TotalErrors() int {
	total := 0
	for _, errs := range s.CollectedErrors {
		total += len(errs)
	}
	return total
}

// Summary is the final result object surfaced to the caller.
type Summary struct {
	RunID              string   `json:"run_id"`
	Status             Status   `json:"status"`
	DockerImagesBuilt  []string `json:"docker_images_built"`
	HelmChartsReleased []string `json:"helm_charts_released"`
	TerraformApplied   bool     `json:"terraform_applied"`
	ErrorMessage       string   `json:"error_message,omitempty"`
}

// Summary returns the caller-facing view of a finished workflow.
func (s *State) Summary() Summary {
	return Summary{
		RunID:              s.RunID,
		Status:             s.Status,
		DockerImagesBuilt:  s.DockerImagesBuilt,
		HelmChartsReleased: s.HelmChartsReleased,
		TerraformApplied:   s.TerraformApplied,
		ErrorMessage:       s.ErrorMessage,
	}
}
