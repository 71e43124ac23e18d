package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// defaultExcludedDirs are dependency caches and tool state directories that
// never contain files the workflow should touch.
var defaultExcludedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".terraform":   true,
	"__pycache__":  true,
	".git":         true,
}

// Walker discovers and classifies infrastructure-as-code files under a set
// of root paths.
type Walker struct {
	log      *zap.Logger
	excluded map[string]bool
}

// NewWalker creates a Walker. extraExcludes extends the built-in excluded
// directory names.
func NewWalker(log *zap.Logger, extraExcludes []string) *Walker {
	excluded := make(map[string]bool, len(defaultExcludedDirs)+len(extraExcludes))
	for name := range defaultExcludedDirs {
		excluded[name] = true
	}
	for _, name := range extraExcludes {
		excluded[name] = true
	}
	return &Walker{log: log, excluded: excluded}
}

// Walk visits every root (file or directory) and returns the discovered
// files grouped by category, sorted and deduplicated. A missing root is
// logged and skipped; nothing here is fatal. Every category key is present
// in the result even when empty.
func (w *Walker) Walk(roots []string) map[Category][]string {
	seen := make(map[string]bool)
	files := make(map[Category][]string, 3)
	for _, c := range Categories() {
		files[c] = []string{}
	}

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if c, ok := Classify(path); ok {
			files[c] = append(files[c], path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			w.log.Warn("search path not accessible, skipping",
				zap.String("path", root), zap.Error(err))
			continue
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				w.log.Warn("walk error, skipping entry",
					zap.String("path", path), zap.Error(err))
				return nil
			}
			if d.IsDir() {
				if w.skipDir(d.Name(), path, root) {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			w.log.Warn("walk failed", zap.String("root", root), zap.Error(err))
		}
	}

	for _, c := range Categories() {
		sort.Strings(files[c])
	}
	return files
}

// Dirs returns every watchable directory under the roots, applying the
// same hidden/excluded pruning as Walk. Roots that are plain files
// contribute their containing directory.
func (w *Walker) Dirs(roots []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			w.log.Warn("search path not accessible, skipping",
				zap.String("path", root), zap.Error(err))
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(root))
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if w.skipDir(d.Name(), path, root) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
	}
	sort.Strings(dirs)
	return dirs
}

// skipDir reports whether a directory should be pruned from the walk.
// Hidden directories are pruned unless they are the root itself (so that
// running against "./.infra" still works).
func (w *Walker) skipDir(name, path, root string) bool {
	if path == root {
		return false
	}
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return w.excluded[name]
}
