package msgq

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"statspub/internal/config"
)

// Sender is the producing half of the message channel.
type Sender interface {
	Send(ctx context.Context, queue string, payload any) error
}

// Message is one delivered payload. Decode into a typed payload with Decode.
type Message struct {
	ID        int64
	Queue     string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Queue, err)
	}
	return nil
}

// storedTimeLayout is a fixed-width UTC timestamp layout so claim-timestamp
// strings compare chronologically under SQLite's TEXT ordering.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed queue with at-least-once delivery.
type Store struct {
	db *sql.DB
	// claimTimeout is how long a claimed message stays invisible before it is
	// redelivered to another receiver.
	claimTimeout time.Duration
}

// Open connects the queue to the statspub database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath connects the queue to the database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        queue TEXT NOT NULL,
        payload TEXT NOT NULL,
        created_at TEXT NOT NULL,
        claimed_at TEXT
    )`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_queue ON messages (queue, id)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create messages index: %w", err)
	}

	return &Store{db: db, claimTimeout: 5 * time.Minute}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Send enqueues a JSON-encoded payload on the named queue.
func (s *Store) Send(ctx context.Context, queue string, payload any) error {
	if queue == "" {
		return errors.New("queue name is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO messages (queue, payload, created_at) VALUES (?, ?, ?)`,
		queue,
		string(data),
		time.Now().UTC().Format(storedTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Receive claims the oldest available message on the named queue, or returns
// (nil, nil) when the queue is empty. Claimed messages older than the claim
// timeout are redelivered.
func (s *Store) Receive(ctx context.Context, queue string) (*Message, error) {
	now := time.Now().UTC()
	staleClaim := now.Add(-s.claimTimeout).Format(storedTimeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin receive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(
		ctx,
		`SELECT id, payload, created_at FROM messages
         WHERE queue = ? AND (claimed_at IS NULL OR claimed_at < ?)
         ORDER BY id LIMIT 1`,
		queue,
		staleClaim,
	)

	var (
		id         int64
		payload    string
		createdRaw string
	)
	if err := row.Scan(&id, &payload, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim message: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE messages SET claimed_at = ? WHERE id = ?`,
		now.Format(storedTimeLayout),
		id,
	); err != nil {
		return nil, fmt.Errorf("mark message claimed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit receive: %w", err)
	}

	msg := &Message{ID: id, Queue: queue, Payload: []byte(payload)}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		msg.CreatedAt = created
	}
	return msg, nil
}

// Ack removes a delivered message from the queue.
func (s *Store) Ack(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ack message: %w", err)
	}
	return nil
}

// Nack releases a claimed message for immediate redelivery.
func (s *Store) Nack(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE messages SET claimed_at = NULL WHERE id = ?`, id); err != nil {
		return fmt.Errorf("nack message: %w", err)
	}
	return nil
}

// Depth returns the number of pending messages on the named queue.
func (s *Store) Depth(ctx context.Context, queue string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages WHERE queue = ?`, queue).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return count, nil
}
