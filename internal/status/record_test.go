package status_test

import (
	"errors"
	"testing"

	"statspub/internal/status"
)

func newStartedRecord() *status.Record {
	record := &status.Record{}
	status.PresetImmediateStarted.Apply(record)
	return record
}

func TestSetStageRollsUpComplete(t *testing.T) {
	record := newStartedRecord()

	steps := []struct {
		stage   status.Stage
		value   status.State
		overall status.Overall
	}{
		{status.StageContent, status.StateStarted, status.OverallStarted},
		{status.StageContent, status.StateComplete, status.OverallStarted},
		{status.StageFiles, status.StateComplete, status.OverallStarted},
		{status.StagePublishing, status.StateStarted, status.OverallStarted},
		{status.StagePublishing, status.StateComplete, status.OverallComplete},
	}
	for _, step := range steps {
		if err := record.SetStage(step.stage, step.value); err != nil {
			t.Fatalf("SetStage(%s, %s): %v", step.stage, step.value, err)
		}
		if record.Overall != step.overall {
			t.Fatalf("after SetStage(%s, %s): overall = %s, want %s",
				step.stage, step.value, record.Overall, step.overall)
		}
	}
}

func TestSetStageContentFailureCancelsPublishing(t *testing.T) {
	record := newStartedRecord()
	if err := record.SetStage(status.StagePublishing, status.StateStarted); err != nil {
		t.Fatalf("SetStage publishing: %v", err)
	}

	if err := record.SetStage(status.StageContent, status.StateFailed); err != nil {
		t.Fatalf("SetStage content failed: %v", err)
	}
	if record.Publishing != status.StateCancelled {
		t.Fatalf("publishing = %s, want %s", record.Publishing, status.StateCancelled)
	}
	if record.Overall != status.OverallFailed {
		t.Fatalf("overall = %s, want %s", record.Overall, status.OverallFailed)
	}
}

func TestSetStageFilesFailureCancelsPublishing(t *testing.T) {
	record := newStartedRecord()

	if err := record.SetStage(status.StageFiles, status.StateFailed); err != nil {
		t.Fatalf("SetStage files failed: %v", err)
	}
	if record.Publishing != status.StateCancelled {
		t.Fatalf("publishing = %s, want %s", record.Publishing, status.StateCancelled)
	}
	if record.Overall != status.OverallFailed {
		t.Fatalf("overall = %s, want %s", record.Overall, status.OverallFailed)
	}
}

func TestSetStageRejectsTerminalOverall(t *testing.T) {
	terminal := []status.Preset{
		status.PresetInvalid,
		status.PresetSuperseded,
	}
	for _, preset := range terminal {
		record := &status.Record{}
		preset.Apply(record)

		err := record.SetStage(status.StageContent, status.StateStarted)
		if !errors.Is(err, status.ErrTerminalOverall) {
			t.Fatalf("%s: SetStage error = %v, want ErrTerminalOverall", preset.Name, err)
		}
		if record.Content != preset.Content {
			t.Fatalf("%s: content mutated to %s", preset.Name, record.Content)
		}
	}
}

func TestSetStageRejectsCompletedAttempt(t *testing.T) {
	record := newStartedRecord()
	for _, stage := range []status.Stage{status.StageContent, status.StageFiles, status.StagePublishing} {
		if err := record.SetStage(stage, status.StateComplete); err != nil {
			t.Fatalf("SetStage(%s): %v", stage, err)
		}
	}

	err := record.SetStage(status.StageFiles, status.StateStarted)
	if !errors.Is(err, status.ErrTerminalOverall) {
		t.Fatalf("SetStage on complete attempt: %v, want ErrTerminalOverall", err)
	}
}

func TestSetStageRejectsScheduledFiles(t *testing.T) {
	record := newStartedRecord()
	if err := record.SetStage(status.StageFiles, status.StateScheduled); err == nil {
		t.Fatal("expected scheduled to be rejected for the files stage")
	}
	if err := record.SetStage(status.StagePublishing, status.StateScheduled); err != nil {
		t.Fatalf("scheduled should be valid for publishing: %v", err)
	}
}

func TestSetStageIsIdempotent(t *testing.T) {
	record := newStartedRecord()
	if err := record.SetStage(status.StageContent, status.StateStarted); err != nil {
		t.Fatalf("first SetStage: %v", err)
	}
	before := *record
	if err := record.SetStage(status.StageContent, status.StateStarted); err != nil {
		t.Fatalf("repeat SetStage: %v", err)
	}
	if record.Content != before.Content || record.Overall != before.Overall {
		t.Fatalf("repeat SetStage changed record: %+v vs %+v", record, before)
	}
}

func TestReadyToPublish(t *testing.T) {
	record := newStartedRecord()
	if record.ReadyToPublish() {
		t.Fatal("fresh record should not be ready to publish")
	}
	if err := record.SetStage(status.StageContent, status.StateComplete); err != nil {
		t.Fatalf("SetStage content: %v", err)
	}
	if record.ReadyToPublish() {
		t.Fatal("record with incomplete files should not be ready")
	}
	if err := record.SetStage(status.StageFiles, status.StateComplete); err != nil {
		t.Fatalf("SetStage files: %v", err)
	}
	if !record.ReadyToPublish() {
		t.Fatal("record with content and files complete should be ready")
	}
}

func TestAppendEventPreservesOrder(t *testing.T) {
	record := newStartedRecord()
	record.AppendEvents("first", "  ", "second")

	if len(record.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(record.Events))
	}
	if record.Events[0].Message != "first" || record.Events[1].Message != "second" {
		t.Fatalf("unexpected event order: %+v", record.Events)
	}
	if record.Events[0].At.IsZero() || record.Events[1].At.IsZero() {
		t.Fatal("expected events to carry timestamps")
	}

	record.AppendEvent("third")
	if record.Events[0].Message != "first" {
		t.Fatalf("appending must not reorder existing events: %+v", record.Events)
	}
}

func TestPresetStageCombinations(t *testing.T) {
	cases := []struct {
		preset  status.Preset
		overall status.Overall
	}{
		{status.PresetInvalid, status.OverallInvalid},
		{status.PresetScheduled, status.OverallScheduled},
		{status.PresetScheduledStarted, status.OverallStarted},
		{status.PresetImmediateStarted, status.OverallStarted},
		{status.PresetSuperseded, status.OverallSuperseded},
	}
	for _, tc := range cases {
		record := &status.Record{}
		tc.preset.Apply(record)
		if record.Overall != tc.overall {
			t.Fatalf("%s: overall = %s, want %s", tc.preset.Name, record.Overall, tc.overall)
		}
	}

	scheduled := &status.Record{}
	status.PresetScheduledStarted.Apply(scheduled)
	if scheduled.Publishing != status.StateScheduled {
		t.Fatalf("scheduled start should mark publishing scheduled, got %s", scheduled.Publishing)
	}
	immediate := &status.Record{}
	status.PresetImmediateStarted.Apply(immediate)
	if immediate.Publishing != status.StateNotStarted {
		t.Fatalf("immediate start should leave publishing untouched, got %s", immediate.Publishing)
	}
}

func TestParseStateAndStage(t *testing.T) {
	if state, ok := status.ParseState(" Complete "); !ok || state != status.StateComplete {
		t.Fatalf("ParseState: got %q, %v", state, ok)
	}
	if _, ok := status.ParseState("finished"); ok {
		t.Fatal("ParseState accepted unknown state")
	}
	if stage, ok := status.ParseStage("FILES"); !ok || stage != status.StageFiles {
		t.Fatalf("ParseStage: got %q, %v", stage, ok)
	}
	if _, ok := status.ParseStage("overall"); ok {
		t.Fatal("ParseStage accepted unknown stage")
	}
}
