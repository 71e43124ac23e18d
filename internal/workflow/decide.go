package workflow

import "github.com/lucasnoah/driftgate/internal/discover"

// Transition is the decision engine's routing choice. The driver switches
// over it exhaustively; there is no fourth edge.
type Transition int

const (
	TransitionRelease Transition = iota
	TransitionFix
	TransitionFail
)

func (t Transition) String() string {
	switch t {
	case TransitionRelease:
		return "release"
	case TransitionFix:
		return "fix"
	case TransitionFail:
		return "fail"
	}
	return "unknown"
}

// Decide routes the workflow after aggregation. It is deterministic given
// the state and performs no I/O:
//
//  1. zero collected errors → release;
//  2. any errored category (in fixed category order) with fix budget
//     remaining → fix;
//  3. otherwise → fail.
//
// Rule 3 is what makes the fix→re-validate loop finite: once every errored
// category has exhausted its budget the fix edge is unreachable.
func Decide(s *State) Transition {
	if s.TotalErrors() == 0 {
		return TransitionRelease
	}

	for _, c := range discover.Categories() {
		if len(s.CollectedErrors[c]) == 0 {
			continue
		}
		attempt := s.FixAttempts[c]
		if attempt == nil || !attempt.Exhausted() {
			return TransitionFix
		}
	}

	return TransitionFail
}
