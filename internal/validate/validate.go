// Package validate runs the per-category external validation tools and
// shapes their output into structured results. Validators never return
// errors: a tool that fails to run is a failed result, not a failed
// workflow.
package validate

import (
	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
)

// Result is the outcome of one tool run against one file or directory.
type Result struct {
	FilePath string   `json:"file_path"`
	Tool     string   `json:"tool"`
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validator runs every validation tool for one category over that
// category's discovered files.
type Validator interface {
	Category() discover.Category
	Validate(files []string) []Result
}

// All returns the three validators in category order.
func All(inv *toolrun.Invoker, tools config.Tools, log *zap.Logger) []Validator {
	return []Validator{
		&TerraformValidator{inv: inv, tools: tools, log: log},
		&DockerValidator{inv: inv, tools: tools, log: log},
		&HelmValidator{inv: inv, tools: tools, log: log},
	}
}

// failErrors wraps a failed outcome's error text as the single-element
// error list every tool result carries.
func failErrors(passed bool, out toolrun.Outcome) []string {
	if passed {
		return []string{}
	}
	return []string{out.ErrorText()}
}
