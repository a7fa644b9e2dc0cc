// Package engine wraps the embedded analytical database used by analytics
// processors: schema DDL, JSON log-file ingestion, and SQL aggregation over an
// in-memory SQLite instance that lives for one workflow run.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"statspub/internal/services"
)

// Engine is one run's analytical database connection.
type Engine struct {
	db *sql.DB
}

// Open creates a fresh in-memory engine.
func Open() (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open analytical engine: %w", err)
	}
	// A single connection keeps every statement on the same in-memory database.
	db.SetMaxOpenConns(1)
	return &Engine{db: db}, nil
}

// Close releases the engine and its in-memory state.
func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Exec runs a DDL or DML statement.
func (e *Engine) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := e.db.ExecContext(ctx, query, args...); err != nil {
		return services.Wrap(services.ErrEngine, "engine", "exec", summarize(query), err)
	}
	return nil
}

// Query runs an aggregation query and returns its rows.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrEngine, "engine", "query", summarize(query), err)
	}
	return rows, nil
}

// QueryRow runs a single-row query.
func (e *Engine) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return e.db.QueryRowContext(ctx, query, args...)
}

// IngestJSONFile loads one JSON log file into a table, mapping the listed
// top-level fields to same-named columns. The file may hold a single object
// or an array of objects; fields absent from a record insert as NULL.
func (e *Engine) IngestJSONFile(ctx context.Context, path, table string, fields []string) error {
	records, err := decodeRecords(path)
	if err != nil {
		return services.Wrap(services.ErrEngine, "engine", "ingest", path, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(fields)), ",")
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ", "),
		placeholders,
	)

	for _, record := range records {
		args := make([]any, len(fields))
		for i, field := range fields {
			args[i] = columnValue(record[field])
		}
		if _, err := e.db.ExecContext(ctx, insert, args...); err != nil {
			return services.Wrap(services.ErrEngine, "engine", "ingest", path, err)
		}
	}
	return nil
}

func decodeRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty file")
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []map[string]any
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, err
	}
	return []map[string]any{record}, nil
}

// columnValue flattens nested JSON values to text so they can bind as typed
// SQLite columns.
func columnValue(value any) any {
	switch v := value.(type) {
	case nil, string, float64, bool:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

func summarize(query string) string {
	fields := strings.Fields(query)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
