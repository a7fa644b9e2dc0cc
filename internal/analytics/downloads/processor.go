// Package downloads processes public CSV download logs, aggregating repeated
// downloads of the same data set file into per-release download counts.
package downloads

import (
	"context"
	"fmt"

	"statspub/internal/analytics"
	"statspub/internal/analytics/engine"
	"statspub/internal/report"
)

// Name is the processor identifier used in configuration and logs.
const Name = "public-csv-downloads"

const reportSuffix = "public-csv-downloads"

var logFields = []string{
	"dataSetId",
	"dataSetTitle",
	"publicationName",
	"releaseVersionId",
	"releaseLabel",
	"requested",
}

// Processor ingests public CSV download logs.
type Processor struct {
	dirs analytics.Directories
}

// New composes the processor's directory quad under the analytics base directory.
func New(baseDir string) *Processor {
	return &Processor{dirs: analytics.DirectoriesFor(baseDir, Name)}
}

func (p *Processor) Name() string { return Name }

func (p *Processor) Directories() analytics.Directories { return p.dirs }

func (p *Processor) InitialiseSchema(ctx context.Context, eng *engine.Engine) error {
	return eng.Exec(ctx, `CREATE TABLE downloads (
        dataSetId        TEXT NOT NULL,
        dataSetTitle     TEXT,
        publicationName  TEXT,
        releaseVersionId TEXT,
        releaseLabel     TEXT,
        requested        TEXT
    )`)
}

func (p *Processor) ProcessSourceFile(ctx context.Context, path string, eng *engine.Engine) error {
	return eng.IngestJSONFile(ctx, path, "downloads", logFields)
}

// ReportRow is one aggregated data set download in the parquet report.
type ReportRow struct {
	DataSetID        string `parquet:"dataSetId"`
	DataSetTitle     string `parquet:"dataSetTitle"`
	PublicationName  string `parquet:"publicationName"`
	ReleaseVersionID string `parquet:"releaseVersionId"`
	ReleaseLabel     string `parquet:"releaseLabel"`
	Downloads        int64  `parquet:"downloads"`
	FirstRequested   string `parquet:"firstRequested"`
	LastRequested    string `parquet:"lastRequested"`
}

func (p *Processor) CreateAggregateReports(ctx context.Context, pathPrefix string, eng *engine.Engine) error {
	rows, err := eng.Query(ctx, `
        SELECT dataSetId,
               COALESCE(MAX(dataSetTitle), ''), COALESCE(MAX(publicationName), ''),
               COALESCE(releaseVersionId, ''), COALESCE(MAX(releaseLabel), ''),
               COUNT(1), COALESCE(MIN(requested), ''), COALESCE(MAX(requested), '')
        FROM downloads
        GROUP BY dataSetId, releaseVersionId
        ORDER BY dataSetId, releaseVersionId`)
	if err != nil {
		return err
	}
	defer rows.Close()

	out := make([]ReportRow, 0)
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(
			&row.DataSetID,
			&row.DataSetTitle,
			&row.PublicationName,
			&row.ReleaseVersionID,
			&row.ReleaseLabel,
			&row.Downloads,
			&row.FirstRequested,
			&row.LastRequested,
		); err != nil {
			return fmt.Errorf("scan download aggregate: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return report.Write(report.PathWithSuffix(pathPrefix, reportSuffix), out)
}
