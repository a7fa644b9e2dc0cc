package msgq

import (
	"github.com/google/uuid"

	"statspub/internal/status"
)

// Queue names used by the publishing orchestrator.
const (
	QueueStageWork       = "stage-work"
	QueueStageUpdates    = "stage-updates"
	QueuePublishRequests = "publish-requests"
)

// StageWork asks a stage worker to begin the named stage for a publish attempt.
type StageWork struct {
	ReleaseVersionID uuid.UUID    `json:"releaseVersionId"`
	ReleaseStatusID  uuid.UUID    `json:"releaseStatusId"`
	Stage            status.Stage `json:"stage"`
	Immediate        bool         `json:"immediate"`
}

// StageUpdate asks the orchestrator to record a stage transition for a
// publish attempt.
type StageUpdate struct {
	ReleaseVersionID uuid.UUID    `json:"releaseVersionId"`
	ReleaseStatusID  uuid.UUID    `json:"releaseStatusId"`
	Stage            status.Stage `json:"stage"`
	Value            status.State `json:"value"`
	Message          string       `json:"message,omitempty"`
}

// PublishRequest asks a downstream worker to begin the publishing stage for an
// attempt whose content and files stages have completed.
type PublishRequest struct {
	ReleaseVersionID uuid.UUID `json:"releaseVersionId"`
	ReleaseStatusID  uuid.UUID `json:"releaseStatusId"`
	Immediate        bool      `json:"immediate"`
}
