package status

// Preset is a named canonical starting state for a new publish attempt record.
type Preset struct {
	Name       string
	Content    State
	Files      State
	Publishing State
	Overall    Overall
}

var (
	// PresetInvalid marks an attempt rejected by validation before any stage ran.
	PresetInvalid = Preset{
		Name:       "invalid",
		Content:    StateCancelled,
		Files:      StateCancelled,
		Publishing: StateCancelled,
		Overall:    OverallInvalid,
	}

	// PresetScheduled marks an attempt waiting for its scheduled publish time.
	PresetScheduled = Preset{
		Name:       "scheduled",
		Content:    StateNotStarted,
		Files:      StateNotStarted,
		Publishing: StateNotStarted,
		Overall:    OverallScheduled,
	}

	// PresetScheduledStarted marks a previously scheduled attempt beginning its
	// scheduled-time publish run.
	PresetScheduledStarted = Preset{
		Name:       "scheduled_started",
		Content:    StateNotStarted,
		Files:      StateNotStarted,
		Publishing: StateScheduled,
		Overall:    OverallStarted,
	}

	// PresetImmediateStarted marks an on-demand publish beginning right away.
	PresetImmediateStarted = Preset{
		Name:       "immediate_started",
		Content:    StateNotStarted,
		Files:      StateNotStarted,
		Publishing: StateNotStarted,
		Overall:    OverallStarted,
	}

	// PresetSuperseded marks an attempt abandoned because a newer publish
	// request arrived for the same release.
	PresetSuperseded = Preset{
		Name:       "superseded",
		Content:    StateCancelled,
		Files:      StateCancelled,
		Publishing: StateCancelled,
		Overall:    OverallSuperseded,
	}
)

// Apply copies the preset's stage combination onto the record.
func (p Preset) Apply(r *Record) {
	r.Content = p.Content
	r.Files = p.Files
	r.Publishing = p.Publishing
	r.Overall = p.Overall
}
