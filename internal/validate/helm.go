package validate

import (
	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/helmchart"
	"github.com/lucasnoah/driftgate/internal/toolrun"
)

// HelmValidator resolves helm-classified files to their chart roots, then
// lints and template-renders each chart once.
type HelmValidator struct {
	inv   *toolrun.Invoker
	tools config.Tools
	log   *zap.Logger
}

func (v *HelmValidator) Category() discover.Category { return discover.Helm }

func (v *HelmValidator) Validate(files []string) []Result {
	results := []Result{}
	if len(files) == 0 {
		v.log.Info("no helm files to validate")
		return results
	}

	for _, chartDir := range helmchart.ResolveRoots(files) {
		v.log.Info("validating helm chart", zap.String("chart", chartDir))

		out := v.inv.Exec("", v.tools.Helm, "lint", chartDir)
		warnings := []string{}
		if !out.OK {
			warnings = []string{out.Stdout}
		}
		results = append(results, Result{
			FilePath: chartDir,
			Tool:     "helm_lint",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: warnings,
		})

		out = v.inv.Exec("", v.tools.Helm, "template", chartDir)
		results = append(results, Result{
			FilePath: chartDir,
			Tool:     "helm_template",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: []string{},
		})
	}
	return results
}
