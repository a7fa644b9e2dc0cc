package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is one timestamped entry in a record's append-only log.
type Event struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Record tracks one publish attempt for one release version. The composite key
// is (ReleaseVersionID, ReleaseStatusID); a release accumulates one record per
// attempt across retries and amendments.
type Record struct {
	ReleaseVersionID uuid.UUID
	ReleaseStatusID  uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublicationSlug  string
	ReleaseSlug      string
	PublishAt        *time.Time
	Immediate        bool
	PublishRequested bool
	Content          State
	Files            State
	Publishing       State
	Overall          Overall
	Events           []Event
}

// StageState returns the current state of the selected stage.
func (r *Record) StageState(stage Stage) (State, error) {
	switch stage {
	case StageContent:
		return r.Content, nil
	case StageFiles:
		return r.Files, nil
	case StagePublishing:
		return r.Publishing, nil
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

// SetStage mutates exactly one sub-stage and recomputes the overall stage.
// Writes are rejected once the overall stage is terminal so that a late
// message cannot resurrect a completed or failed attempt. A content or files
// failure cancels the publishing stage: publishing must not proceed on broken
// inputs.
func (r *Record) SetStage(stage Stage, value State) error {
	if r.Overall.Terminal() {
		return fmt.Errorf("%w: overall stage is %s", ErrTerminalOverall, r.Overall)
	}
	if !value.ValidFor(stage) {
		return fmt.Errorf("state %q is not valid for stage %q", value, stage)
	}

	switch stage {
	case StageContent:
		r.Content = value
	case StageFiles:
		r.Files = value
	case StagePublishing:
		r.Publishing = value
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}

	if value == StateFailed && (stage == StageContent || stage == StageFiles) {
		r.Publishing = StateCancelled
	}

	r.Overall = rollup(r.Content, r.Files, r.Publishing, r.Overall)
	return nil
}

// ReadyToPublish reports whether every stage prior to publishing has completed.
func (r *Record) ReadyToPublish() bool {
	return r.Content == StateComplete && r.Files == StateComplete
}

// AppendEvent adds a timestamped message to the record's log. Existing entries
// are never reordered or removed.
func (r *Record) AppendEvent(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	r.Events = append(r.Events, Event{At: time.Now().UTC(), Message: message})
}

// AppendEvents adds multiple messages in order, each timestamped at append time.
func (r *Record) AppendEvents(messages ...string) {
	for _, message := range messages {
		r.AppendEvent(message)
	}
}
