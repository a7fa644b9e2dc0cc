package downloads_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"statspub/internal/analytics"
	"statspub/internal/analytics/downloads"
	"statspub/internal/logging"
	"statspub/internal/report"
	"statspub/internal/testsupport"
)

const downloadLog = `{"dataSetId":"ds-9","dataSetTitle":"Absence rates","publicationName":"Pupil absence","releaseVersionId":"rv-1","releaseLabel":"2026/27","requested":"2026-08-03T12:00:00Z"}`

const downloadBatch = `[
  {"dataSetId":"ds-9","dataSetTitle":"Absence rates","publicationName":"Pupil absence","releaseVersionId":"rv-1","releaseLabel":"2026/27","requested":"2026-08-04T08:00:00Z"},
  {"dataSetId":"ds-10","dataSetTitle":"Exclusion rates","publicationName":"Exclusions","releaseVersionId":"rv-2","releaseLabel":"2026/27","requested":"2026-08-04T09:00:00Z"}
]`

func TestProcessAggregatesDownloadsPerRelease(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	workflow := analytics.NewWorkflow(logging.NewNop(), cfg.Analytics.ClaimConcurrency)
	proc := downloads.New(cfg.Paths.AnalyticsDir)
	dirs := proc.Directories()

	testsupport.WriteFile(t, filepath.Join(dirs.Source, "single.json"), downloadLog)
	testsupport.WriteFile(t, filepath.Join(dirs.Source, "batch.json"), downloadBatch)

	if err := workflow.Process(context.Background(), proc); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries, err := os.ReadDir(dirs.Reports)
	if err != nil {
		t.Fatalf("read reports dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 report file, got %d", len(entries))
	}
	rows, err := report.Read[downloads.ReportRow](filepath.Join(dirs.Reports, entries[0].Name()))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 aggregated rows, got %d", len(rows))
	}

	byDataSet := make(map[string]downloads.ReportRow, len(rows))
	for _, row := range rows {
		byDataSet[row.DataSetID] = row
	}
	absence := byDataSet["ds-9"]
	if absence.Downloads != 2 {
		t.Fatalf("ds-9 downloads = %d, want 2", absence.Downloads)
	}
	if absence.FirstRequested != "2026-08-03T12:00:00Z" || absence.LastRequested != "2026-08-04T08:00:00Z" {
		t.Fatalf("unexpected request window: %+v", absence)
	}
	if byDataSet["ds-10"].Downloads != 1 {
		t.Fatalf("ds-10 downloads = %d, want 1", byDataSet["ds-10"].Downloads)
	}
}
