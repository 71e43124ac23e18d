// Package helmchart resolves Helm chart roots and inspects Chart.yaml files.
package helmchart

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// RequiredFields are the Chart.yaml fields helm refuses to work without.
var RequiredFields = []string{"apiVersion", "name", "version"}

// ChartFile returns the path of the Chart.yaml inside dir.
func ChartFile(dir string) string {
	return filepath.Join(dir, "Chart.yaml")
}

// ResolveRoot walks upward from a file until it finds a directory containing
// Chart.yaml. Files with no resolvable chart root return ("", false).
func ResolveRoot(file string) (string, bool) {
	dir := filepath.Dir(file)
	for dir != "" {
		if _, err := os.Stat(ChartFile(dir)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// ResolveRoots maps a set of Helm-classified files to their deduplicated,
// sorted chart directories. Files outside any chart are silently dropped.
func ResolveRoots(files []string) []string {
	set := make(map[string]bool)
	for _, f := range files {
		if dir, ok := ResolveRoot(f); ok {
			set[dir] = true
		}
	}
	dirs := make([]string, 0, len(set))
	for dir := range set {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Read parses the Chart.yaml in dir into a generic map. A missing file
// returns an empty map, not an error: callers treat absent metadata the
// same as empty metadata.
func Read(dir string) (map[string]any, error) {
	data, err := os.ReadFile(ChartFile(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", ChartFile(dir), err)
	}

	var chart map[string]any
	if err := yaml.Unmarshal(data, &chart); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ChartFile(dir), err)
	}
	if chart == nil {
		chart = map[string]any{}
	}
	return chart, nil
}

// MissingFields returns which of the required Chart.yaml fields are absent.
func MissingFields(chart map[string]any) []string {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := chart[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}
