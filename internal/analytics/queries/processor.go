// Package queries processes public API query call logs. Identical queries are
// collapsed by a content fingerprint so the report carries one row per
// distinct query with a call count.
package queries

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"statspub/internal/analytics"
	"statspub/internal/analytics/engine"
	"statspub/internal/report"
)

// Name is the processor identifier used in configuration and logs.
const Name = "public-api-queries"

const reportSuffix = "public-api-queries"

// Processor ingests public API query call logs.
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
	return eng.Exec(ctx, `CREATE TABLE query_calls (
        fingerprint      TEXT NOT NULL,
        data_set_id      TEXT NOT NULL,
        data_set_version TEXT,
        query_json       TEXT,
        started_at       TEXT,
        ended_at         TEXT,
        results_count    INTEGER,
        total_rows       INTEGER
    )`)
}

// queryCall mirrors one logged public API query request.
type queryCall struct {
	DataSetID      string          `json:"dataSetId"`
	DataSetVersion string          `json:"dataSetVersion"`
	Query          json.RawMessage `json:"query"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	ResultsCount   int64           `json:"resultsCount"`
	TotalRows      int64           `json:"totalRowsCount"`
}

func (p *Processor) ProcessSourceFile(ctx context.Context, path string, eng *engine.Engine) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read query log %q: %w", path, err)
	}

	var call queryCall
	if err := json.Unmarshal(data, &call); err != nil {
		return fmt.Errorf("decode query log %q: %w", path, err)
	}
	if call.DataSetID == "" {
		return fmt.Errorf("query log %q has no dataSetId", path)
	}

	return eng.Exec(ctx,
		`INSERT INTO query_calls (
            fingerprint, data_set_id, data_set_version, query_json,
            started_at, ended_at, results_count, total_rows
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fingerprint(call),
		call.DataSetID,
		call.DataSetVersion,
		string(call.Query),
		call.StartTime,
		call.EndTime,
		call.ResultsCount,
		call.TotalRows,
	)
}

// ReportRow is one aggregated query in the parquet report.
type ReportRow struct {
	Fingerprint    string `parquet:"fingerprint"`
	DataSetID      string `parquet:"dataSetId"`
	DataSetVersion string `parquet:"dataSetVersion"`
	Query          string `parquet:"query"`
	Calls          int64  `parquet:"calls"`
	FirstCall      string `parquet:"firstCall"`
	LastCall       string `parquet:"lastCall"`
}

func (p *Processor) CreateAggregateReports(ctx context.Context, pathPrefix string, eng *engine.Engine) error {
	rows, err := eng.Query(ctx, `
        SELECT fingerprint, data_set_id,
               COALESCE(data_set_version, ''), COALESCE(query_json, ''),
               COUNT(1), COALESCE(MIN(started_at), ''), COALESCE(MAX(ended_at), '')
        FROM query_calls
        GROUP BY fingerprint, data_set_id, data_set_version, query_json
        ORDER BY fingerprint`)
	if err != nil {
		return err
	}
	defer rows.Close()

	out := make([]ReportRow, 0)
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(
			&row.Fingerprint,
			&row.DataSetID,
			&row.DataSetVersion,
			&row.Query,
			&row.Calls,
			&row.FirstCall,
			&row.LastCall,
		); err != nil {
			return fmt.Errorf("scan query aggregate: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return report.Write(report.PathWithSuffix(pathPrefix, reportSuffix), out)
}

// fingerprint hashes the salient fields of a call so repeated identical
// queries collapse into one aggregated row.
func fingerprint(call queryCall) string {
	h := sha256.New()
	h.Write([]byte(call.DataSetID))
	h.Write([]byte{0})
	h.Write([]byte(call.DataSetVersion))
	h.Write([]byte{0})
	h.Write(call.Query)
	return hex.EncodeToString(h.Sum(nil))
}
