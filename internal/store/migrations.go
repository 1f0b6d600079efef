package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS task_definitions (
	uuid        TEXT PRIMARY KEY,
	activity_id TEXT NOT NULL,
	task_name   TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(activity_id, task_name)
);

CREATE TABLE IF NOT EXISTS task_entries (
	task_uuid  TEXT NOT NULL REFERENCES task_definitions(uuid) ON DELETE CASCADE,
	date       TEXT NOT NULL,
	done_state INTEGER NOT NULL DEFAULT 0 CHECK(done_state IN (0, 1)),
	timestamp  DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (task_uuid, date)
);

CREATE INDEX IF NOT EXISTS idx_task_entries_date ON task_entries(date);
CREATE INDEX IF NOT EXISTS idx_task_entries_done_state ON task_entries(done_state);
CREATE INDEX IF NOT EXISTS idx_task_definitions_activity ON task_definitions(activity_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
