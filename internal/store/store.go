// Package store persists task identity and completion history. Task
// definitions give each (activity, task name) pair a durable UUID; task
// entries record per-logical-day done state under that UUID, append-only.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/timebox/internal/model"
)

// ErrUnknownTask is returned when an operation references a task UUID that
// has no definition, including tasks that were never persisted.
var ErrUnknownTask = errors.New("unknown task")

// Store defines the persistence interface for task definitions and
// completion entries.
type Store interface {
	// EnsureDefinition returns the durable UUID for (activityID, taskName),
	// creating the definition on first use. The bool reports whether a new
	// definition was created.
	EnsureDefinition(ctx context.Context, activityID, taskName string) (string, bool, error)

	// GetDefinition retrieves a definition by UUID. Returns ErrUnknownTask
	// if absent.
	GetDefinition(ctx context.Context, taskUUID string) (*model.TaskDefinition, error)

	// DefinitionFor looks up the definition for (activityID, taskName)
	// without creating one. Returns nil, nil if absent.
	DefinitionFor(ctx context.Context, activityID, taskName string) (*model.TaskDefinition, error)

	// DeleteDefinition removes a definition and its entire entry history.
	// Used when a task is removed from the schedule for good.
	DeleteDefinition(ctx context.Context, taskUUID string) error

	// InsertEntryIfAbsent creates an undone entry for (taskUUID, date) if
	// none exists. The bool reports whether a row was created. Returns
	// ErrUnknownTask if the UUID has no definition.
	InsertEntryIfAbsent(ctx context.Context, taskUUID, date string, now time.Time) (bool, error)

	// SetDone upserts the done state for (taskUUID, date) and refreshes the
	// mutation timestamp. Returns ErrUnknownTask if the UUID has no
	// definition.
	SetDone(ctx context.Context, taskUUID, date string, done bool, now time.Time) error

	// GetEntry fetches one entry. Returns nil, nil when no record exists,
	// so callers can distinguish "no data" from "not done".
	GetEntry(ctx context.Context, taskUUID, date string) (*model.TaskEntry, error)

	// EntriesForTask scans a task's entries with date in [from, to],
	// ordered by date ascending.
	EntriesForTask(ctx context.Context, taskUUID, from, to string) ([]model.TaskEntry, error)

	// EntriesForDate returns all entries recorded for one logical date.
	EntriesForDate(ctx context.Context, date string) ([]model.TaskEntry, error)

	Close() error
}
