// Package storage keeps the sqlite journal of snapshot ingests and deletes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"despesas/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultHistoryLimit bounds Recent when the caller passes no limit.
const DefaultHistoryLimit = 50

// Journal is an append-only audit trail of snapshot events.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the sqlite file at dbPath and migrates it.
// The parent directory must already exist.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

const insertEvent = `
INSERT INTO snapshot_events (
    id, snapshot, action, source, rows_read, rows_kept, missing_dates, degraded_amounts, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Record appends e to the journal.
func (j *Journal) Record(ctx context.Context, e core.SnapshotEvent) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := j.db.ExecContext(ctx, insertEvent,
		e.ID, e.Snapshot, string(e.Action), e.Source,
		e.RowsRead, e.RowsKept, e.MissingDates, e.DegradedAmounts,
		ts.UTC())
	if err != nil {
		return fmt.Errorf("insert snapshot event: %w", err)
	}
	return nil
}

const recentEvents = `
SELECT id, snapshot, action, source, rows_read, rows_kept, missing_dates, degraded_amounts, created_at
FROM snapshot_events
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]core.SnapshotEvent, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := j.db.QueryContext(ctx, recentEvents, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshot events: %w", err)
	}
	defer rows.Close()

	events := make([]core.SnapshotEvent, 0, limit)
	for rows.Next() {
		var (
			e      core.SnapshotEvent
			action string
		)
		if err := rows.Scan(&e.ID, &e.Snapshot, &action, &e.Source,
			&e.RowsRead, &e.RowsKept, &e.MissingDates, &e.DegradedAmounts,
			&e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan snapshot event: %w", err)
		}
		e.Action = core.SnapshotAction(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot events: %w", err)
	}
	return events, nil
}
