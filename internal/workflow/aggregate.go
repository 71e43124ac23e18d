package workflow

import (
	"fmt"
	"strings"

	"github.com/lucasnoah/driftgate/internal/discover"
)

// CollectErrors recomputes the per-category error lists and the per-file
// error index from the current validation results. It is a pure function of
// ValidationResults and idempotent: running it twice on the same results
// yields identical output. It must run after every validation pass because
// re-validation overwrites a category's results wholesale.
func CollectErrors(s *State) {
	collected := make(map[discover.Category][]string, 3)
	byFile := make(map[string][]string)

	for _, c := range discover.Categories() {
		collected[c] = []string{}
		for _, r := range s.ValidationResults[c] {
			if r.Passed {
				continue
			}
			line := fmt.Sprintf("[%s] %s: %s", r.Tool, r.FilePath, strings.Join(r.Errors, "; "))
			collected[c] = append(collected[c], line)
			byFile[r.FilePath] = append(byFile[r.FilePath], r.Errors...)
		}
	}

	s.CollectedErrors = collected
	s.ErrorsByFile = byFile
	s.AllValidationsComplete = true
}
