package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/timebox/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// EnsureDefinition returns the durable UUID for (activityID, taskName),
// creating the definition on first use.
func (s *SQLiteStore) EnsureDefinition(
	ctx context.Context,
	activityID, taskName string,
) (string, bool, error) {
	existing, err := s.DefinitionFor(ctx, activityID, taskName)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.UUID, false, nil
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_definitions (uuid, activity_id, task_name, created_at)
		VALUES (?, ?, ?, ?)`,
		id, activityID, taskName, time.Now().UTC(),
	)
	if err != nil {
		return "", false, fmt.Errorf("creating definition for %s/%s: %w", activityID, taskName, err)
	}
	return id, true, nil
}

// GetDefinition retrieves a definition by UUID.
func (s *SQLiteStore) GetDefinition(
	ctx context.Context,
	taskUUID string,
) (*model.TaskDefinition, error) {
	var def model.TaskDefinition
	err := s.db.GetContext(ctx, &def,
		"SELECT * FROM task_definitions WHERE uuid = ?", taskUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("definition %s: %w", taskUUID, ErrUnknownTask)
	}
	if err != nil {
		return nil, fmt.Errorf("getting definition %s: %w", taskUUID, err)
	}
	return &def, nil
}

// DefinitionFor looks up the definition for (activityID, taskName) without
// creating one. Returns nil, nil if absent.
func (s *SQLiteStore) DefinitionFor(
	ctx context.Context,
	activityID, taskName string,
) (*model.TaskDefinition, error) {
	var def model.TaskDefinition
	err := s.db.GetContext(ctx, &def,
		"SELECT * FROM task_definitions WHERE activity_id = ? AND task_name = ?",
		activityID, taskName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up definition %s/%s: %w", activityID, taskName, err)
	}
	return &def, nil
}

// DeleteDefinition removes a definition; entries cascade.
func (s *SQLiteStore) DeleteDefinition(ctx context.Context, taskUUID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM task_definitions WHERE uuid = ?", taskUUID)
	if err != nil {
		return fmt.Errorf("deleting definition %s: %w", taskUUID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("definition %s: %w", taskUUID, ErrUnknownTask)
	}
	return nil
}

// InsertEntryIfAbsent creates an undone entry for (taskUUID, date) if none
// exists.
func (s *SQLiteStore) InsertEntryIfAbsent(
	ctx context.Context,
	taskUUID, date string,
	now time.Time,
) (bool, error) {
	if err := s.requireDefinition(ctx, taskUUID); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO task_entries (task_uuid, date, done_state, timestamp, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?, ?)`,
		taskUUID, date, now.UTC(), now.UTC(), now.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting entry %s@%s: %w", taskUUID, date, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SetDone upserts the done state for (taskUUID, date) and refreshes the
// mutation timestamp.
func (s *SQLiteStore) SetDone(
	ctx context.Context,
	taskUUID, date string,
	done bool,
	now time.Time,
) error {
	if err := s.requireDefinition(ctx, taskUUID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_entries (task_uuid, date, done_state, timestamp, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(task_uuid, date) DO UPDATE SET
			done_state = excluded.done_state,
			timestamp = excluded.timestamp,
			updated_at = excluded.updated_at`,
		taskUUID, date, boolToInt(done), now.UTC(), now.UTC(), now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting done state %s@%s: %w", taskUUID, date, err)
	}
	return nil
}

// GetEntry fetches one entry, nil if no record exists.
func (s *SQLiteStore) GetEntry(
	ctx context.Context,
	taskUUID, date string,
) (*model.TaskEntry, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM task_entries WHERE task_uuid = ? AND date = ?",
		taskUUID, date)
	entry, err := scanEntryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry %s@%s: %w", taskUUID, date, err)
	}
	return &entry, nil
}

// EntriesForTask scans a task's entries with date in [from, to], ordered by
// date ascending.
func (s *SQLiteStore) EntriesForTask(
	ctx context.Context,
	taskUUID, from, to string,
) ([]model.TaskEntry, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM task_entries
		WHERE task_uuid = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		taskUUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying entries for %s: %w", taskUUID, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// EntriesForDate returns all entries recorded for one logical date.
func (s *SQLiteStore) EntriesForDate(
	ctx context.Context,
	date string,
) ([]model.TaskEntry, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM task_entries WHERE date = ? ORDER BY task_uuid", date)
	if err != nil {
		return nil, fmt.Errorf("querying entries for %s: %w", date, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// requireDefinition verifies the task UUID has a definition row.
func (s *SQLiteStore) requireDefinition(ctx context.Context, taskUUID string) error {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM task_definitions WHERE uuid = ?", taskUUID)
	if err != nil {
		return fmt.Errorf("checking definition %s: %w", taskUUID, err)
	}
	if count == 0 {
		return fmt.Errorf("task %s: %w", taskUUID, ErrUnknownTask)
	}
	return nil
}

func collectEntries(rows *sqlx.Rows) ([]model.TaskEntry, error) {
	var entries []model.TaskEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// scanEntry scans an entry row from a sqlx.Rows result set.
func scanEntry(rows *sqlx.Rows) (model.TaskEntry, error) {
	var (
		entry     model.TaskEntry
		doneInt   int
		timestamp time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	err := rows.Scan(&entry.TaskUUID, &entry.Date, &doneInt, &timestamp, &createdAt, &updatedAt)
	if err != nil {
		return model.TaskEntry{}, fmt.Errorf("scanning entry row: %w", err)
	}

	entry.Done = doneInt != 0
	entry.Timestamp = timestamp
	entry.CreatedAt = createdAt
	entry.UpdatedAt = updatedAt
	return entry, nil
}

// scanEntryRow scans a single entry row from a sqlx.Row.
func scanEntryRow(row *sqlx.Row) (model.TaskEntry, error) {
	var (
		entry     model.TaskEntry
		doneInt   int
		timestamp time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&entry.TaskUUID, &entry.Date, &doneInt, &timestamp, &createdAt, &updatedAt)
	if err != nil {
		return model.TaskEntry{}, err
	}

	entry.Done = doneInt != 0
	entry.Timestamp = timestamp
	entry.CreatedAt = createdAt
	entry.UpdatedAt = updatedAt
	return entry, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
