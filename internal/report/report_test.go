package report_test

import (
	"path/filepath"
	"testing"
	"time"

	"statspub/internal/report"
)

type sampleRow struct {
	Key   string `parquet:"key"`
	Count int64  `parquet:"count"`
}

func TestPrefixIsUTC(t *testing.T) {
	at := time.Date(2026, 8, 31, 23, 59, 8, 0, time.FixedZone("BST", 3600))
	if got := report.Prefix(at); got != "20260831-225908" {
		t.Fatalf("Prefix = %q, want 20260831-225908", got)
	}
}

func TestFileNameMatchesPattern(t *testing.T) {
	name := report.FileName(report.Prefix(time.Now()), "public-api-queries")
	if !report.NamePattern.MatchString(name) {
		t.Fatalf("filename %q does not match pattern", name)
	}
	if report.NamePattern.MatchString("report.parquet") {
		t.Fatal("pattern accepted a name without a timestamp prefix")
	}
	if report.NamePattern.MatchString("20260831-225908_Bad Suffix.parquet") {
		t.Fatal("pattern accepted an invalid suffix")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), report.FileName(report.Prefix(time.Now()), "sample"))
	rows := []sampleRow{
		{Key: "a", Count: 2},
		{Key: "b", Count: 5},
	}

	if err := report.Write(path, rows); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := report.Read[sampleRow](path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}
