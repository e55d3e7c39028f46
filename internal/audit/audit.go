// Package audit provides an append-only change log for the order store.
//
// Every accepted save, status transition and receipt issue is recorded
// as an immutable row, giving reporting a trail the last-write-wins
// JSON snapshot cannot provide on its own. WAL mode is enabled on Open
// so the reporting role can read while the other roles write.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"

	"github.com/HA2077/SmartChef/models"
)

// Event kinds recorded in the log.
const (
	EventSaved         = "order_saved"
	EventTransitioned  = "order_transitioned"
	EventReceiptIssued = "receipt_issued"
	EventStoreCleared  = "store_cleared"
)

// Event is one immutable row in the change log.
type Event struct {
	OrderID    string
	Kind       string
	FromStatus models.OrderStatus
	ToStatus   models.OrderStatus
	Actor      string // username performing the operation
	Detail     string
	RecordedAt time.Time
}

// Recorder is what the services depend on; tests use NopRecorder.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// NopRecorder discards events.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }

// schema is the DDL executed once on startup. The table is
// append-only: rows are never updated, only pruned by compaction.
const schema = `
CREATE TABLE IF NOT EXISTS order_events (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id     TEXT NOT NULL,
    kind         TEXT NOT NULL,
    from_status  TEXT NOT NULL DEFAULT '',
    to_status    TEXT NOT NULL DEFAULT '',
    actor        TEXT NOT NULL DEFAULT '',
    detail       TEXT NOT NULL DEFAULT '',
    recorded_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, id);
`

// Log is the SQLite-backed change log.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the change log at path and applies the
// schema.
func Open(path string) (*Log, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Close releases the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one event. Safe for concurrent use.
func (l *Log) Record(ctx context.Context, event Event) error {
	const q = `
		INSERT INTO order_events
			(order_id, kind, from_status, to_status, actor, detail, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	recordedAt := event.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := l.db.ExecContext(ctx, q,
		event.OrderID,
		event.Kind,
		string(event.FromStatus),
		string(event.ToStatus),
		event.Actor,
		event.Detail,
		recordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit: record %s for %q: %w", event.Kind, event.OrderID, err)
	}
	return nil
}

// EventsForOrder returns the full trail for one order, oldest first.
func (l *Log) EventsForOrder(ctx context.Context, orderID string) ([]Event, error) {
	const q = `
		SELECT order_id, kind, from_status, to_status, actor, detail, recorded_at
		FROM   order_events
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := l.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("audit: query events for %q: %w", orderID, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var from, to, recordedAt string
		if err := rows.Scan(&event.OrderID, &event.Kind, &from, &to, &event.Actor, &event.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		event.FromStatus = models.OrderStatus(from)
		event.ToStatus = models.OrderStatus(to)
		event.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("audit: parse recorded_at %q: %w", recordedAt, err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PruneBefore removes events recorded before cutoff. This is the
// compaction half of the append-only design: the JSON snapshot remains
// the source of current state, so old rows can go.
func (l *Log) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM order_events WHERE recorded_at < ?`

	res, err := l.db.ExecContext(ctx, q, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("audit: prune before %s: %w", cutoff, err)
	}
	return res.RowsAffected()
}
