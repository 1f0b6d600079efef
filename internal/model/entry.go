package model

import "time"

// TaskDefinition is the durable mapping from (activity id, task name) to a
// stable UUID. It is created once when a task is first persisted and reused
// across logical days so history accumulates under one identity.
type TaskDefinition struct {
	UUID       string    `db:"uuid"`
	ActivityID string    `db:"activity_id"`
	TaskName   string    `db:"task_name"`
	CreatedAt  time.Time `db:"created_at"`
}

// TaskEntry is one completion record: the done state of one task on one
// logical day. Entries are append-only history; they are created idempotently
// and mutated by toggling, never deleted.
type TaskEntry struct {
	TaskUUID  string    `db:"task_uuid"`
	Date      string    `db:"date"` // ISO YYYY-MM-DD logical date
	Done      bool      `db:"done_state"`
	Timestamp time.Time `db:"timestamp"` // last mutation time
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Grouping selects the bucket size for completion statistics.
type Grouping string

const (
	GroupByDay   Grouping = "day"
	GroupByWeek  Grouping = "week"
	GroupByMonth Grouping = "month"
	GroupByYear  Grouping = "year"
)

// Valid reports whether g is one of the supported groupings.
func (g Grouping) Valid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByYear:
		return true
	}
	return false
}

// Bucket is one time-bucketed data point in a completion series. For day
// grouping Tracked is 1 and Completed is 0 or 1; for coarser groupings the
// pair counts logical days inside the bucket that have at least one record.
type Bucket struct {
	// Label identifies the bucket: the ISO date for day grouping, the ISO
	// date of the bucket's first day otherwise.
	Label string

	Completed int
	Tracked   int
}

// Rate returns the completion ratio for the bucket, zero when nothing was
// tracked.
func (b Bucket) Rate() float64 {
	if b.Tracked == 0 {
		return 0
	}
	return float64(b.Completed) / float64(b.Tracked)
}
