// Package contracts defines the persistence contract for task identity and
// completion history. The implementation lives in internal/store.
package contracts

import (
	"context"
	"time"
)

// TaskDefinition maps an (activity id, task name) pair to a durable UUID.
// Definitions are created once and reused across logical days so history
// accumulates under one identity.
type TaskDefinition struct {
	UUID       string
	ActivityID string
	TaskName   string
	CreatedAt  time.Time
}

// TaskEntry records the done state of one task on one logical day.
// Entries are created idempotently and mutated by toggling, never deleted.
type TaskEntry struct {
	TaskUUID  string
	Date      string // ISO YYYY-MM-DD logical date
	Done      bool
	Timestamp time.Time // last mutation time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence contract for definitions and entries.
type Store interface {
	// EnsureDefinition returns the durable UUID for (activityID, taskName),
	// creating the definition on first use.
	EnsureDefinition(ctx context.Context, activityID, taskName string) (string, bool, error)

	// GetDefinition retrieves a definition by UUID; unknown UUIDs are an error.
	GetDefinition(ctx context.Context, taskUUID string) (*TaskDefinition, error)

	// DefinitionFor looks up a definition without creating one.
	// Returns nil, nil if absent.
	DefinitionFor(ctx context.Context, activityID, taskName string) (*TaskDefinition, error)

	// DeleteDefinition removes a definition and its entire entry history.
	DeleteDefinition(ctx context.Context, taskUUID string) error

	// InsertEntryIfAbsent creates an undone entry for (taskUUID, date) if
	// none exists. The bool reports whether a row was created.
	InsertEntryIfAbsent(ctx context.Context, taskUUID, date string, now time.Time) (bool, error)

	// SetDone upserts the done state for (taskUUID, date).
	SetDone(ctx context.Context, taskUUID, date string, done bool, now time.Time) error

	// GetEntry fetches one entry; nil, nil when no record exists, so
	// callers can distinguish "no data" from "not done".
	GetEntry(ctx context.Context, taskUUID, date string) (*TaskEntry, error)

	// EntriesForTask scans entries with date in [from, to], ascending.
	EntriesForTask(ctx context.Context, taskUUID, from, to string) ([]TaskEntry, error)

	// EntriesForDate returns all entries recorded for one logical date.
	EntriesForDate(ctx context.Context, date string) ([]TaskEntry, error)

	Close() error
}
