package workflow

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/fix"
	"github.com/lucasnoah/driftgate/internal/release"
	"github.com/lucasnoah/driftgate/internal/runstore"
	"github.com/lucasnoah/driftgate/internal/toolrun"
	"github.com/lucasnoah/driftgate/internal/validate"
)

// EventLog records workflow and tool events. Logging is best-effort
// throughout: a failing event log never fails the workflow.
type EventLog interface {
	LogWorkflowEvent(runID string, event string, category string, detail string) error
	LogToolRun(runID string, category string, tool string, filePath string, passed bool) error
}

// Options configure a single engine instance. MaxFixAttempts is
// authoritative: zero (or negative) disables remediation entirely, so
// callers resolve flag-versus-config precedence before constructing the
// engine.
type Options struct {
	MaxFixAttempts int
	DryRun         bool
}

// Engine drives the workflow graph: discover → parallel validate fan-out →
// aggregate → decide → {release | fix chain → re-validate | fail}.
type Engine struct {
	walker     *discover.Walker
	validators []validate.Validator
	fixers     []fix.Fixer
	releases   *release.Pipeline
	events     EventLog        // optional
	runs       *runstore.Store // optional
	log        *zap.Logger
	opts       Options
}

// New wires an Engine from config plus an injected command runner. events
// and runs may be nil; the engine then skips event logging and run history.
func New(cfg *config.Config, runner toolrun.CommandRunner, events EventLog, runs *runstore.Store, log *zap.Logger, opts Options) *Engine {
	inv := toolrun.NewInvoker(runner, cfg.ToolTimeout())

	return &Engine{
		walker:     discover.NewWalker(log, cfg.Workflow.ExcludeDirs),
		validators: validate.All(inv, cfg.Tools, log),
		fixers:     fix.All(inv, cfg.Tools, log),
		releases:   release.NewPipeline(inv, cfg.Tools, cfg.Workflow.DistDir, log),
		events:     events,
		runs:       runs,
		log:        log,
		opts:       opts,
	}
}

// Run executes the full workflow over the given root paths and returns the
// terminal state. The returned error covers only orchestration failures;
// validation and release failures surface through State.Status.
func (e *Engine) Run(rootPaths []string) (*State, error) {
	state := NewState(uuid.NewString(), rootPaths, e.opts.MaxFixAttempts)
	state.StartedAt = time.Now().UTC().Format(time.RFC3339)

	e.log.Info("workflow started",
		zap.String("run_id", state.RunID),
		zap.Strings("roots", rootPaths),
		zap.Int("max_fix_attempts", e.opts.MaxFixAttempts),
		zap.Bool("dry_run", e.opts.DryRun))
	e.event(state, "started", "", strings.Join(rootPaths, ","))

	state.FilesByCategory = e.walker.Walk(rootPaths)
	for _, c := range discover.Categories() {
		e.log.Info("discovered files",
			zap.String("category", string(c)),
			zap.Int("count", len(state.FilesByCategory[c])))
	}

	for !state.Status.Terminal() {
		e.validateAll(state)
		CollectErrors(state)

		transition := Decide(state)
		e.log.Info("decision",
			zap.String("transition", transition.String()),
			zap.Int("total_errors", state.TotalErrors()))
		e.event(state, "decision", "", transition.String())

		switch transition {
		case TransitionRelease:
			state.ReleaseReady = true
			state.Status = StatusReleasing
			e.runRelease(state)
			state.Status = StatusSuccess

		case TransitionFix:
			state.Status = StatusFixing
			e.runFixers(state)
			// Loop continues: the fix chain always feeds back into a full
			// validation fan-out across all three categories, matching the
			// graph topology, even when only one category was fixed.
			state.Status = StatusRunning

		case TransitionFail:
			state.Status = StatusFailed
			state.ErrorMessage = fmt.Sprintf(
				"%d validation errors remain after exhausting fix attempts", state.TotalErrors())
		}
	}

	state.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	e.event(state, "finished", "", string(state.Status))
	e.log.Info("workflow finished",
		zap.String("run_id", state.RunID),
		zap.String("status", string(state.Status)))

	if e.runs != nil {
		if err := e.runs.Save(state.RunID, state); err != nil {
			e.log.Warn("saving run record failed", zap.Error(err))
		}
	}
	return state, nil
}

// ValidateOnly runs discovery, the validation fan-out, and aggregation
// without fixing or releasing. Used by the validate command and watch mode.
func (e *Engine) ValidateOnly(rootPaths []string) *State {
	state := NewState(uuid.NewString(), rootPaths, e.opts.MaxFixAttempts)
	state.StartedAt = time.Now().UTC().Format(time.RFC3339)

	state.FilesByCategory = e.walker.Walk(rootPaths)
	e.validateAll(state)
	CollectErrors(state)

	if state.TotalErrors() == 0 {
		state.Status = StatusSuccess
	} else {
		state.Status = StatusFailed
		state.ErrorMessage = fmt.Sprintf("%d validation errors", state.TotalErrors())
	}
	state.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return state
}

// validateAll fans out the three validators concurrently. Each validator
// owns exactly one category; results are collected per goroutine and
// assigned to the state only after all of them return, so the state map is
// never written concurrently.
func (e *Engine) validateAll(s *State) {
	type slot struct {
		category discover.Category
		results  []validate.Result
	}
	slots := make([]slot, len(e.validators))

	var wg sync.WaitGroup
	for i, v := range e.validators {
		wg.Add(1)
		go func(i int, v validate.Validator) {
			defer wg.Done()
			c := v.Category()
			slots[i] = slot{category: c, results: v.Validate(s.FilesByCategory[c])}
		}(i, v)
	}
	wg.Wait()

	for _, sl := range slots {
		s.ValidationResults[sl.category] = sl.results
		for _, r := range sl.results {
			e.toolRun(s, sl.category, r)
		}
	}
}

// runFixers executes the fixer chain in its fixed order. Fixers with no
// files or no budget skip themselves; the chain itself never branches.
func (e *Engine) runFixers(s *State) {
	for _, f := range e.fixers {
		c := f.Category()
		attempt := s.FixAttempts[c]
		if attempt == nil {
			attempt = fix.NewAttempt(c, e.opts.MaxFixAttempts)
			s.FixAttempts[c] = attempt
		}

		outcome := f.Fix(s.FilesByCategory[c], attempt)
		if !outcome.Applied {
			continue
		}
		s.FixApplied = true
		s.FilesFixed = append(s.FilesFixed, outcome.FilesFixed...)
		e.event(s, "fix_applied", string(c),
			fmt.Sprintf("attempt %d/%d, %d files", attempt.Used, attempt.Max, len(outcome.FilesFixed)))
	}
}

// runRelease runs the three release stages in order docker, helm,
// terraform. Under --dry-run every stage is recorded as skipped and no
// external commands run.
func (e *Engine) runRelease(s *State) {
	if e.opts.DryRun {
		e.log.Info("dry run: skipping release stages")
		for _, c := range discover.Categories() {
			s.ReleaseResults[c] = release.Skipped("dry_run")
		}
		e.event(s, "release_skipped", "", "dry_run")
		return
	}

	res, images := e.releases.Docker(s.FilesByCategory[discover.Docker])
	s.ReleaseResults[discover.Docker] = res
	s.DockerImagesBuilt = images
	e.event(s, "release_stage", string(discover.Docker), string(res.Status))

	res, charts := e.releases.Helm(s.FilesByCategory[discover.Helm])
	s.ReleaseResults[discover.Helm] = res
	s.HelmChartsReleased = charts
	e.event(s, "release_stage", string(discover.Helm), string(res.Status))

	res, applied := e.releases.Terraform(s.FilesByCategory[discover.Terraform])
	s.ReleaseResults[discover.Terraform] = res
	s.TerraformApplied = applied
	e.event(s, "release_stage", string(discover.Terraform), string(res.Status))
}

func (e *Engine) event(s *State, event, category, detail string) {
	if e.events == nil {
		return
	}
	_ = e.events.LogWorkflowEvent(s.RunID, event, category, detail)
}

func (e *Engine) toolRun(s *State, c discover.Category, r validate.Result) {
	if e.events == nil {
		return
	}
	_ = e.events.LogToolRun(s.RunID, string(c), r.Tool, r.FilePath, r.Passed)
}
