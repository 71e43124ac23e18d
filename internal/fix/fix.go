// Package fix applies bounded, best-effort in-place remediation to files
// that failed validation. Edits are heuristic and not transactional: a
// fixer may leave a file partially rewritten if an edit fails midway.
package fix

import (
	"time"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
)

// Attempt tracks how much of a category's fix budget has been consumed.
// It is the only state that survives the fix→re-validate loop, so it is
// what bounds the loop.
type Attempt struct {
	Category  discover.Category `json:"category"`
	Used      int               `json:"used"`
	Max       int               `json:"max"`
	LastFixAt string            `json:"last_fix_at,omitempty"`
}

// NewAttempt creates a zeroed attempt record for a category.
func NewAttempt(category discover.Category, max int) *Attempt {
	return &Attempt{Category: category, Max: max}
}

// Exhausted reports whether the category has no fix budget left.
func (a *Attempt) Exhausted() bool {
	return a.Used >= a.Max
}

// consume records one spent fix cycle.
func (a *Attempt) consume() {
	a.Used++
	a.LastFixAt = time.Now().UTC().Format(time.RFC3339)
}

// Outcome reports what a single fixer did.
type Outcome struct {
	FilesFixed []string
	Applied    bool
}

// Fixer applies one category's remediation heuristics.
//
// Contract: an exhausted attempt is a no-op that mutates nothing and leaves
// the attempt unchanged; an empty file set is a pass-through that does not
// consume budget; otherwise the fixer edits files, consumes one unit of
// budget, and reports the touched files.
type Fixer interface {
	Category() discover.Category
	Fix(files []string, attempt *Attempt) Outcome
}

// All returns the three fixers in chain order (terraform, docker, helm).
// The chain always runs in full; fixers skip themselves when they have
// nothing to do.
func All(inv *toolrun.Invoker, tools config.Tools, log *zap.Logger) []Fixer {
	return []Fixer{
		&TerraformFixer{inv: inv, tools: tools, log: log},
		&DockerFixer{log: log},
		&HelmFixer{log: log},
	}
}
