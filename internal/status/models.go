package status

import "strings"

// State represents the progress of a single publishing stage.
type State string

const (
	StateNotStarted State = "not_started"
	StateStarted    State = "started"
	StateComplete   State = "complete"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
	StateScheduled  State = "scheduled"
)

// Stage selects one of the three independently tracked publishing stages.
type Stage string

const (
	StageContent    Stage = "content"
	StageFiles      Stage = "files"
	StagePublishing Stage = "publishing"
)

// Overall summarizes the rolled-up status of a publish attempt.
type Overall string

const (
	OverallScheduled  Overall = "scheduled"
	OverallStarted    Overall = "started"
	OverallComplete   Overall = "complete"
	OverallFailed     Overall = "failed"
	OverallInvalid    Overall = "invalid"
	OverallSuperseded Overall = "superseded"
)

var allStates = []State{
	StateNotStarted,
	StateStarted,
	StateComplete,
	StateFailed,
	StateCancelled,
	StateScheduled,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

var stateLabels = map[State]string{
	StateNotStarted: "Not Started",
	StateStarted:    "Started",
	StateComplete:   "Complete",
	StateFailed:     "Failed",
	StateCancelled:  "Cancelled",
	StateScheduled:  "Scheduled",
}

var overallLabels = map[Overall]string{
	OverallScheduled:  "Scheduled",
	OverallStarted:    "Started",
	OverallComplete:   "Complete",
	OverallFailed:     "Failed",
	OverallInvalid:    "Invalid",
	OverallSuperseded: "Superseded",
}

// Label returns the display label for a stage state.
func (s State) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return string(s)
}

// Label returns the display label for an overall stage.
func (o Overall) Label() string {
	if label, ok := overallLabels[o]; ok {
		return label
	}
	return string(o)
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// ParseStage converts a string into a known Stage selector.
func ParseStage(value string) (Stage, bool) {
	switch Stage(strings.ToLower(strings.TrimSpace(value))) {
	case StageContent:
		return StageContent, true
	case StageFiles:
		return StageFiles, true
	case StagePublishing:
		return StagePublishing, true
	default:
		return "", false
	}
}

// Terminal reports whether an overall stage permits no further sub-stage writes.
func (o Overall) Terminal() bool {
	switch o {
	case OverallComplete, OverallFailed, OverallInvalid, OverallSuperseded:
		return true
	default:
		return false
	}
}

// ValidFor reports whether a state is permitted for the given stage. The files
// stage has no scheduled form; content and publishing do.
func (s State) ValidFor(stage Stage) bool {
	if _, ok := stateSet[s]; !ok {
		return false
	}
	if s == StateScheduled && stage == StageFiles {
		return false
	}
	return true
}
