package status_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"statspub/internal/status"
	"statspub/internal/testsupport"
)

func TestCreateAndGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	releaseVersionID := uuid.New()
	publishAt := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)

	created, err := store.Create(ctx, status.CreateParams{
		ReleaseVersionID: releaseVersionID,
		PublicationSlug:  "pupil-absence",
		ReleaseSlug:      "2026-27",
		PublishAt:        &publishAt,
	}, status.PresetScheduled, "Scheduled by test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ReleaseStatusID == uuid.Nil {
		t.Fatal("expected a generated attempt id")
	}

	fetched, err := store.Get(ctx, releaseVersionID, created.ReleaseStatusID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected record to exist")
	}
	if fetched.PublicationSlug != "pupil-absence" || fetched.ReleaseSlug != "2026-27" {
		t.Fatalf("unexpected slugs: %+v", fetched)
	}
	if fetched.Overall != status.OverallScheduled {
		t.Fatalf("overall = %s, want %s", fetched.Overall, status.OverallScheduled)
	}
	if fetched.PublishAt == nil || !fetched.PublishAt.Equal(publishAt) {
		t.Fatalf("publish at = %v, want %v", fetched.PublishAt, publishAt)
	}
	if len(fetched.Events) != 1 || fetched.Events[0].Message != "Scheduled by test" {
		t.Fatalf("unexpected events: %+v", fetched.Events)
	}
}

func TestGetMissingRecordReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	record, err := store.Get(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for missing record, got %+v", record)
	}
}

func TestCreateRequiresReleaseVersionID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Create(context.Background(), status.CreateParams{}, status.PresetScheduled); err == nil {
		t.Fatal("expected error when release version id missing")
	}
}

func TestUpsertPersistsStageWrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := store.Create(ctx, status.CreateParams{
		ReleaseVersionID: uuid.New(),
		Immediate:        true,
	}, status.PresetImmediateStarted)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := record.SetStage(status.StageContent, status.StateComplete); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	record.AppendEvent("Content stage complete")
	record.PublishRequested = true
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	fetched, err := store.Get(ctx, record.ReleaseVersionID, record.ReleaseStatusID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.Content != status.StateComplete {
		t.Fatalf("content = %s, want %s", fetched.Content, status.StateComplete)
	}
	if !fetched.Immediate {
		t.Fatal("expected immediate flag to persist")
	}
	if !fetched.PublishRequested {
		t.Fatal("expected publish-requested marker to persist")
	}
	if len(fetched.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(fetched.Events))
	}
}

func TestQueryByReleaseVersionAccumulatesAttempts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	releaseVersionID := uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, status.CreateParams{
			ReleaseVersionID: releaseVersionID,
		}, status.PresetScheduled); err != nil {
			t.Fatalf("Create attempt %d: %v", i, err)
		}
	}
	if _, err := store.Create(ctx, status.CreateParams{
		ReleaseVersionID: uuid.New(),
	}, status.PresetScheduled); err != nil {
		t.Fatalf("Create other release: %v", err)
	}

	records, err := store.QueryByReleaseVersion(ctx, releaseVersionID)
	if err != nil {
		t.Fatalf("QueryByReleaseVersion: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(records))
	}
	seen := make(map[uuid.UUID]struct{}, len(records))
	for _, record := range records {
		if record.ReleaseVersionID != releaseVersionID {
			t.Fatalf("unexpected release version: %s", record.ReleaseVersionID)
		}
		if _, dup := seen[record.ReleaseStatusID]; dup {
			t.Fatalf("duplicate attempt id %s", record.ReleaseStatusID)
		}
		seen[record.ReleaseStatusID] = struct{}{}
	}
}

func TestPendingForRelease(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	releaseVersionID := uuid.New()

	pendingRecord, err := store.Create(ctx, status.CreateParams{ReleaseVersionID: releaseVersionID}, status.PresetScheduled)
	if err != nil {
		t.Fatalf("Create pending: %v", err)
	}
	superseded, err := store.Create(ctx, status.CreateParams{ReleaseVersionID: releaseVersionID}, status.PresetSuperseded)
	if err != nil {
		t.Fatalf("Create superseded: %v", err)
	}
	_ = superseded

	pending, err := store.PendingForRelease(ctx, releaseVersionID)
	if err != nil {
		t.Fatalf("PendingForRelease: %v", err)
	}
	if len(pending) != 1 || pending[0].ReleaseStatusID != pendingRecord.ReleaseStatusID {
		t.Fatalf("unexpected pending attempts: %+v", pending)
	}
}

func TestScheduledDue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()

	due, err := store.Create(ctx, status.CreateParams{
		ReleaseVersionID: uuid.New(),
		PublishAt:        &past,
	}, status.PresetScheduled)
	if err != nil {
		t.Fatalf("Create due: %v", err)
	}
	if _, err := store.Create(ctx, status.CreateParams{
		ReleaseVersionID: uuid.New(),
		PublishAt:        &future,
	}, status.PresetScheduled); err != nil {
		t.Fatalf("Create future: %v", err)
	}

	records, err := store.ScheduledDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("ScheduledDue: %v", err)
	}
	if len(records) != 1 || records[0].ReleaseStatusID != due.ReleaseStatusID {
		t.Fatalf("unexpected due attempts: %+v", records)
	}
}

func TestScheduledDueWholeSecondAgainstFractionalCutoff(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	publishAt := time.Now().UTC().Truncate(time.Second)

	due, err := store.Create(ctx, status.CreateParams{
		ReleaseVersionID: uuid.New(),
		PublishAt:        &publishAt,
	}, status.PresetScheduled)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A cutoff a fraction of a second past the publish time must still pick
	// up the whole-second attempt; stored timestamps are fixed-width so the
	// comparison is not thrown off by differing fractional digits.
	records, err := store.ScheduledDue(ctx, publishAt.Add(123*time.Millisecond))
	if err != nil {
		t.Fatalf("ScheduledDue: %v", err)
	}
	if len(records) != 1 || records[0].ReleaseStatusID != due.ReleaseStatusID {
		t.Fatalf("whole-second attempt not picked up: %+v", records)
	}
}

func TestStatsAndClearSuperseded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := store.Create(ctx, status.CreateParams{ReleaseVersionID: uuid.New()}, status.PresetSuperseded); err != nil {
			t.Fatalf("Create superseded: %v", err)
		}
	}
	if _, err := store.Create(ctx, status.CreateParams{ReleaseVersionID: uuid.New()}, status.PresetScheduled); err != nil {
		t.Fatalf("Create scheduled: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[status.OverallSuperseded] != 2 || stats[status.OverallScheduled] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	removed, err := store.ClearSuperseded(ctx)
	if err != nil {
		t.Fatalf("ClearSuperseded: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	stats, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats after clear: %v", err)
	}
	if stats[status.OverallSuperseded] != 0 || stats[status.OverallScheduled] != 1 {
		t.Fatalf("unexpected stats after clear: %+v", stats)
	}
}
