// Package release performs the build/package/apply stages that run once
// every validation passes.
package release

import (
	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/toolrun"
)

// Status is the terminal state of one release stage.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result records the outcome of one release stage.
type Result struct {
	Status Status   `json:"status"`
	Detail string   `json:"detail,omitempty"`
	Items  []string `json:"items,omitempty"`
}

// Skipped returns a skipped result with the given reason.
func Skipped(detail string) Result {
	return Result{Status: StatusSkipped, Detail: detail}
}

// Pipeline runs the three release stages. Stages are independent: a docker
// build failure does not stop helm packaging. Only the terraform stage is
// internally fail-fast across its directories.
type Pipeline struct {
	inv     *toolrun.Invoker
	tools   config.Tools
	distDir string
	log     *zap.Logger
}

// NewPipeline creates a release Pipeline writing helm packages to distDir.
func NewPipeline(inv *toolrun.Invoker, tools config.Tools, distDir string, log *zap.Logger) *Pipeline {
	return &Pipeline{inv: inv, tools: tools, distDir: distDir, log: log}
}
