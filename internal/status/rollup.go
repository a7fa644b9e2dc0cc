package status

// rollup derives the overall stage from the three sub-stages. It is a pure
// function of its inputs and idempotent: feeding the result back with the same
// triple yields the same answer.
//
// Complete requires all three stages complete. Any failed stage makes the
// attempt failed. Otherwise the overall stage keeps its last explicitly-set
// value (scheduled, started, invalid, superseded).
func rollup(content, files, publishing State, current Overall) Overall {
	if content == StateComplete && files == StateComplete && publishing == StateComplete {
		return OverallComplete
	}
	if content == StateFailed || files == StateFailed || publishing == StateFailed {
		return OverallFailed
	}
	return current
}
