package core

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotAction names what happened to a snapshot.
type SnapshotAction string

const (
	ActionIngested SnapshotAction = "ingested"
	ActionDeleted  SnapshotAction = "deleted"
)

// SnapshotEvent records one ingest or delete. It is written to the journal
// and published to the message broker.
type SnapshotEvent struct {
	ID              string         `json:"id"`
	Snapshot        string         `json:"snapshot"`
	Action          SnapshotAction `json:"action"`
	Source          string         `json:"source,omitempty"`
	RowsRead        int            `json:"rows_read"`
	RowsKept        int            `json:"rows_kept"`
	MissingDates    int            `json:"missing_dates"`
	DegradedAmounts int            `json:"degraded_amounts"`
	Timestamp       time.Time      `json:"timestamp"`
}

// NewSnapshotEvent stamps a new event with a random id and the current time.
func NewSnapshotEvent(snapshot string, action SnapshotAction) SnapshotEvent {
	return SnapshotEvent{
		ID:        uuid.NewString(),
		Snapshot:  snapshot,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}
