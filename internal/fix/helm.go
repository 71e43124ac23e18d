package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/helmchart"
)

// HelmFixer inserts the required Chart.yaml fields helm refuses to package
// without, using fixed defaults.
type HelmFixer struct {
	log *zap.Logger
}

func (f *HelmFixer) Category() discover.Category { return discover.Helm }

func (f *HelmFixer) Fix(files []string, attempt *Attempt) Outcome {
	if attempt.Exhausted() {
		f.log.Info("helm fix budget exhausted, skipping",
			zap.Int("used", attempt.Used), zap.Int("max", attempt.Max))
		return Outcome{}
	}
	if len(files) == 0 {
		return Outcome{}
	}

	var fixed []string
	for _, chartDir := range helmchart.ResolveRoots(files) {
		changed, err := f.fixChartYAML(chartDir)
		if err != nil {
			f.log.Warn("chart fix failed", zap.String("chart", chartDir), zap.Error(err))
			continue
		}
		if changed {
			f.log.Info("fixed chart metadata", zap.String("chart", chartDir))
			fixed = append(fixed, helmchart.ChartFile(chartDir))
		}
	}

	attempt.consume()
	return Outcome{FilesFixed: fixed, Applied: true}
}

// fixChartYAML prepends any textually absent required field with its
// default value. Field defaults: apiVersion v2, name from the chart
// directory's basename, version 0.1.0.
func (f *HelmFixer) fixChartYAML(chartDir string) (bool, error) {
	path := helmchart.ChartFile(chartDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content := string(data)

	var inserts []string
	for _, field := range helmchart.RequiredFields {
		if fieldPresent(content, field) {
			continue
		}
		switch field {
		case "apiVersion":
			inserts = append(inserts, "apiVersion: v2")
		case "name":
			inserts = append(inserts, fmt.Sprintf("name: %s", filepath.Base(chartDir)))
		case "version":
			inserts = append(inserts, "version: 0.1.0")
		}
	}
	if len(inserts) == 0 {
		return false, nil
	}

	rewritten := strings.Join(inserts, "\n") + "\n" + content
	if err := os.WriteFile(path, []byte(rewritten), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// fieldPresent does a textual top-level key check, which is all the
// heuristic needs: a commented-out field is treated as absent.
func fieldPresent(content, field string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, field+":") {
			return true
		}
	}
	return false
}
