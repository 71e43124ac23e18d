package release

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/helmchart"
)

// Helm packages each resolved chart into the dist directory and returns the
// stage result plus the chart names that packaged cleanly.
func (p *Pipeline) Helm(files []string) (Result, []string) {
	if len(files) == 0 {
		p.log.Info("no helm charts to release")
		return Skipped(""), nil
	}

	var packaged []string
	for _, chartDir := range helmchart.ResolveRoots(files) {
		name := filepath.Base(chartDir)
		p.log.Info("packaging chart", zap.String("chart", name))

		out := p.inv.Exec("", p.tools.Helm, "package", chartDir, "--destination", p.distDir)
		if out.OK {
			packaged = append(packaged, name)
		} else {
			p.log.Warn("chart packaging failed",
				zap.String("chart", name), zap.String("error", out.ErrorText()))
		}
	}

	status := StatusSuccess
	if len(packaged) == 0 {
		status = StatusFailed
	}
	return Result{Status: status, Items: packaged}, packaged
}
