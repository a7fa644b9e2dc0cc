package status

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"statspub/internal/config"
)

// Store manages release status persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the statspub database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath connects to the database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateParams carries the identity and metadata for a new publish attempt.
type CreateParams struct {
	ReleaseVersionID uuid.UUID
	ReleaseStatusID  uuid.UUID
	PublicationSlug  string
	ReleaseSlug      string
	PublishAt        *time.Time
	Immediate        bool
}

// Create inserts a new record initialised from a named preset and persists it.
func (s *Store) Create(ctx context.Context, params CreateParams, preset Preset, messages ...string) (*Record, error) {
	if params.ReleaseVersionID == uuid.Nil {
		return nil, errors.New("release version id is required")
	}
	if params.ReleaseStatusID == uuid.Nil {
		params.ReleaseStatusID = uuid.New()
	}

	now := time.Now().UTC()
	record := &Record{
		ReleaseVersionID: params.ReleaseVersionID,
		ReleaseStatusID:  params.ReleaseStatusID,
		CreatedAt:        now,
		UpdatedAt:        now,
		PublicationSlug:  params.PublicationSlug,
		ReleaseSlug:      params.ReleaseSlug,
		PublishAt:        params.PublishAt,
		Immediate:        params.Immediate,
	}
	preset.Apply(record)
	record.AppendEvents(messages...)

	eventsJSON, err := marshalEvents(record.Events)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO release_statuses (
            release_version_id, release_status_id, created_at, updated_at,
            publication_slug, release_slug, publish_at, immediate, publish_requested,
            content_stage, files_stage, publishing_stage, overall_stage, events_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ReleaseVersionID.String(),
		record.ReleaseStatusID.String(),
		now.Format(storedTimeLayout),
		now.Format(storedTimeLayout),
		record.PublicationSlug,
		record.ReleaseSlug,
		nullableTime(record.PublishAt),
		boolToInt(record.Immediate),
		boolToInt(record.PublishRequested),
		string(record.Content),
		string(record.Files),
		string(record.Publishing),
		string(record.Overall),
		eventsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("insert status record: %w", err)
	}
	return record, nil
}

// Get fetches a record by its composite key. A missing record yields (nil, nil).
func (s *Store) Get(ctx context.Context, releaseVersionID, releaseStatusID uuid.UUID) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM release_statuses
         WHERE release_version_id = ? AND release_status_id = ?`,
		releaseVersionID.String(),
		releaseStatusID.String(),
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status record: %w", err)
	}
	return record, nil
}

// Upsert persists the current state of a record.
func (s *Store) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()

	eventsJSON, err := marshalEvents(record.Events)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO release_statuses (
            release_version_id, release_status_id, created_at, updated_at,
            publication_slug, release_slug, publish_at, immediate, publish_requested,
            content_stage, files_stage, publishing_stage, overall_stage, events_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (release_version_id, release_status_id) DO UPDATE SET
            updated_at = excluded.updated_at,
            publication_slug = excluded.publication_slug,
            release_slug = excluded.release_slug,
            publish_at = excluded.publish_at,
            immediate = excluded.immediate,
            publish_requested = excluded.publish_requested,
            content_stage = excluded.content_stage,
            files_stage = excluded.files_stage,
            publishing_stage = excluded.publishing_stage,
            overall_stage = excluded.overall_stage,
            events_json = excluded.events_json`,
		record.ReleaseVersionID.String(),
		record.ReleaseStatusID.String(),
		record.CreatedAt.UTC().Format(storedTimeLayout),
		record.UpdatedAt.Format(storedTimeLayout),
		record.PublicationSlug,
		record.ReleaseSlug,
		nullableTime(record.PublishAt),
		boolToInt(record.Immediate),
		boolToInt(record.PublishRequested),
		string(record.Content),
		string(record.Files),
		string(record.Publishing),
		string(record.Overall),
		eventsJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert status record: %w", err)
	}
	return nil
}

// QueryByReleaseVersion returns every attempt for a release version, oldest first.
func (s *Store) QueryByReleaseVersion(ctx context.Context, releaseVersionID uuid.UUID) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM release_statuses
         WHERE release_version_id = ? ORDER BY created_at`,
		releaseVersionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query by release version: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// List returns all records, oldest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM release_statuses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list status records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// PendingForRelease returns non-terminal attempts (scheduled or started) for a release version.
func (s *Store) PendingForRelease(ctx context.Context, releaseVersionID uuid.UUID) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM release_statuses
         WHERE release_version_id = ? AND overall_stage IN (?, ?)
         ORDER BY created_at`,
		releaseVersionID.String(),
		string(OverallScheduled),
		string(OverallStarted),
	)
	if err != nil {
		return nil, fmt.Errorf("query pending attempts: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ScheduledDue returns scheduled attempts whose publish time is at or before
// cutoff. Timestamps are stored in a fixed-width layout so the string
// comparison orders chronologically.
func (s *Store) ScheduledDue(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM release_statuses
         WHERE overall_stage = ? AND publish_at IS NOT NULL AND publish_at <= ?
         ORDER BY publish_at`,
		string(OverallScheduled),
		cutoff.UTC().Format(storedTimeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query scheduled attempts: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Stats returns a count of records grouped by overall stage.
func (s *Store) Stats(ctx context.Context) (map[Overall]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT overall_stage, COUNT(1) FROM release_statuses GROUP BY overall_stage`)
	if err != nil {
		return nil, fmt.Errorf("status stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Overall]int)
	for rows.Next() {
		var overall Overall
		var count int
		if err := rows.Scan(&overall, &count); err != nil {
			return nil, err
		}
		stats[overall] = count
	}
	return stats, rows.Err()
}

// ClearSuperseded removes superseded records. Exposed only for explicit CLI
// maintenance; workflow code never deletes.
func (s *Store) ClearSuperseded(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM release_statuses WHERE overall_stage = ?`, string(OverallSuperseded))
	if err != nil {
		return 0, fmt.Errorf("clear superseded: %w", err)
	}
	return res.RowsAffected()
}

// storedTimeLayout is a fixed-width UTC timestamp layout. Unlike RFC3339Nano
// it never trims trailing zeros, so stored values compare chronologically
// under SQLite's lexicographic TEXT ordering.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "release_version_id, release_status_id, created_at, updated_at, publication_slug, release_slug, publish_at, immediate, publish_requested, content_stage, files_stage, publishing_stage, overall_stage, events_json"

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		versionRaw   string
		statusRaw    string
		createdRaw   string
		updatedRaw   string
		pubSlug      string
		relSlug      string
		publishAtRaw sql.NullString
		immediate    sql.NullInt64
		requested    sql.NullInt64
		contentRaw   string
		filesRaw     string
		publishRaw   string
		overallRaw   string
		eventsRaw    sql.NullString
	)

	if err := scanner.Scan(
		&versionRaw,
		&statusRaw,
		&createdRaw,
		&updatedRaw,
		&pubSlug,
		&relSlug,
		&publishAtRaw,
		&immediate,
		&requested,
		&contentRaw,
		&filesRaw,
		&publishRaw,
		&overallRaw,
		&eventsRaw,
	); err != nil {
		return nil, err
	}

	versionID, err := uuid.Parse(versionRaw)
	if err != nil {
		return nil, fmt.Errorf("parse release version id: %w", err)
	}
	statusID, err := uuid.Parse(statusRaw)
	if err != nil {
		return nil, fmt.Errorf("parse release status id: %w", err)
	}

	record := &Record{
		ReleaseVersionID: versionID,
		ReleaseStatusID:  statusID,
		PublicationSlug:  pubSlug,
		ReleaseSlug:      relSlug,
		Immediate:        immediate.Valid && immediate.Int64 != 0,
		PublishRequested: requested.Valid && requested.Int64 != 0,
		Content:          State(contentRaw),
		Files:            State(filesRaw),
		Publishing:       State(publishRaw),
		Overall:          Overall(overallRaw),
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	if publishAtRaw.Valid {
		if at, err := parseTimeString(publishAtRaw.String); err == nil {
			record.PublishAt = &at
		}
	}
	if eventsRaw.Valid && eventsRaw.String != "" {
		if err := json.Unmarshal([]byte(eventsRaw.String), &record.Events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
	}
	return record, nil
}

func marshalEvents(events []Event) (any, error) {
	if len(events) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	return string(data), nil
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(storedTimeLayout)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
