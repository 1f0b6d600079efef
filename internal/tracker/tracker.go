// Package tracker maps schedule tasks to their per-logical-day completion
// history and derives analytics from it: daily entry creation, done
// toggling, forgiving streaks, and time-bucketed aggregates.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/store"
)

// streakLookbackDays bounds the backwards walk of the streak computation.
// A streak older than ten years is counted as ten years.
const streakLookbackDays = 3650

// Tracker composes the store with a clock and the logical-day configuration.
type Tracker struct {
	store        store.Store
	clk          clock.Clock
	dayStartHour int
}

// New creates a tracker.
func New(s store.Store, clk clock.Clock, dayStartHour int) *Tracker {
	return &Tracker{store: s, clk: clk, dayStartHour: dayStartHour}
}

// PersistDefinitions assigns durable UUIDs to every unsaved task in the
// schedule, creating task definitions as needed. Called on schedule save;
// until then new tasks stay unsaved and cannot be marked done. Returns the
// number of tasks that received a UUID.
func (t *Tracker) PersistDefinitions(ctx context.Context, s *schedule.Schedule) (int, error) {
	assigned := 0
	for _, a := range s.Activities() {
		for i := range a.Tasks {
			if a.Tasks[i].Persisted() {
				continue
			}
			id, _, err := t.store.EnsureDefinition(ctx, a.ID, a.Tasks[i].Name)
			if err != nil {
				return assigned, fmt.Errorf("persisting task %q: %w", a.Tasks[i].Name, err)
			}
			a.Tasks[i].UUID = id
			assigned++
		}
	}
	return assigned, nil
}

// ResolveDefinitions fills in UUIDs for tasks that already have a
// definition from an earlier save, without creating new ones. Run after
// loading a schedule so existing history reattaches to its tasks.
func (t *Tracker) ResolveDefinitions(ctx context.Context, s *schedule.Schedule) error {
	for _, a := range s.Activities() {
		for i := range a.Tasks {
			if a.Tasks[i].Persisted() {
				continue
			}
			def, err := t.store.DefinitionFor(ctx, a.ID, a.Tasks[i].Name)
			if err != nil {
				return fmt.Errorf("resolving task %q: %w", a.Tasks[i].Name, err)
			}
			if def != nil {
				a.Tasks[i].UUID = def.UUID
			}
		}
	}
	return nil
}

// EnsureDailyEntries idempotently creates an undone completion entry for
// every persisted task in the schedule on the given logical date. Unsaved
// tasks are skipped. Returns the number of entries actually created.
func (t *Tracker) EnsureDailyEntries(ctx context.Context, s *schedule.Schedule, date clock.Date) (int, error) {
	created := 0
	now := t.clk.Now()
	for _, a := range s.Activities() {
		for _, task := range a.Tasks {
			if !task.Persisted() {
				continue
			}
			inserted, err := t.store.InsertEntryIfAbsent(ctx, task.UUID, date.String(), now)
			if err != nil {
				return created, fmt.Errorf("ensuring entry for %q: %w", task.Name, err)
			}
			if inserted {
				created++
			}
		}
	}
	return created, nil
}

// MarkDone upserts the done state of a task for a logical date and
// refreshes its mutation timestamp. Fails with store.ErrUnknownTask for
// UUIDs without a definition; callers must never pass an unsaved task here.
func (t *Tracker) MarkDone(ctx context.Context, taskUUID string, date clock.Date, done bool) error {
	if taskUUID == "" {
		return fmt.Errorf("mark done: %w", store.ErrUnknownTask)
	}
	return t.store.SetDone(ctx, taskUUID, date.String(), done, t.clk.Now())
}

// DoneStates returns the done state of every recorded task for a logical
// date, keyed by task UUID.
func (t *Tracker) DoneStates(ctx context.Context, date clock.Date) (map[string]bool, error) {
	entries, err := t.store.EntriesForDate(ctx, date.String())
	if err != nil {
		return nil, err
	}
	states := make(map[string]bool, len(entries))
	for _, e := range entries {
		states[e.TaskUUID] = e.Done
	}
	return states, nil
}

// Streak computes the forgiving consecutive-completion count for a task as
// of the given logical date. The asOf day itself is lenient: an undone or
// missing record there never breaks the streak, it only fails to extend it.
// Leniency applies to whatever asOf is given, not only the current logical
// day, keeping the result a pure function of its arguments. Walking
// backwards, a done record extends the streak, an explicit undone record
// ends it, and a day with no record is skipped. The walk is bounded at
// streakLookbackDays.
func (t *Tracker) Streak(ctx context.Context, taskUUID string, asOf clock.Date) (int, error) {
	if _, err := t.store.GetDefinition(ctx, taskUUID); err != nil {
		return 0, err
	}

	from := asOf.AddDays(-streakLookbackDays)
	entries, err := t.store.EntriesForTask(ctx, taskUUID, from.String(), asOf.String())
	if err != nil {
		return 0, err
	}

	byDate := make(map[string]bool, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e.Done
	}

	streak := 0
	day := asOf
	for i := 0; i <= streakLookbackDays; i++ {
		done, recorded := byDate[day.String()]
		switch {
		case recorded && done:
			streak++
		case recorded && !done && !day.Before(asOf):
			// asOf not yet done: start counting from the previous day.
		case recorded && !done:
			return streak, nil
		default:
			// No record: skip the day, neither extend nor break.
		}
		day = day.AddDays(-1)
	}
	return streak, nil
}

// Aggregate builds a time-bucketed completion series per task. Day grouping
// yields one binary bucket per recorded day; week, month and year buckets
// count completed versus tracked logical days inside the bucket, where a
// tracked day is one with a record regardless of state. Weeks are anchored
// Monday per ISO-8601.
func (t *Tracker) Aggregate(
	ctx context.Context,
	taskUUIDs []string,
	grouping model.Grouping,
	ignoreWeekends bool,
) (map[string][]model.Bucket, error) {
	if !grouping.Valid() {
		return nil, fmt.Errorf("invalid grouping %q", grouping)
	}

	asOf, err := clock.LogicalDate(t.clk.Now(), t.dayStartHour)
	if err != nil {
		return nil, err
	}
	from := asOf.AddDays(-streakLookbackDays)

	results := make(map[string][]model.Bucket, len(taskUUIDs))
	for _, id := range taskUUIDs {
		entries, err := t.store.EntriesForTask(ctx, id, from.String(), asOf.String())
		if err != nil {
			return nil, err
		}

		buckets := make(map[string]*model.Bucket)
		for _, e := range entries {
			date, err := clock.ParseDate(e.Date)
			if err != nil {
				return nil, fmt.Errorf("entry for %s: %w", id, err)
			}
			if ignoreWeekends && isWeekend(date) {
				continue
			}

			label := bucketLabel(date, grouping)
			b, ok := buckets[label]
			if !ok {
				b = &model.Bucket{Label: label}
				buckets[label] = b
			}
			b.Tracked++
			if e.Done {
				b.Completed++
			}
		}

		series := make([]model.Bucket, 0, len(buckets))
		for _, b := range buckets {
			series = append(series, *b)
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Label < series[j].Label })
		results[id] = series
	}
	return results, nil
}

func isWeekend(d clock.Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// bucketLabel maps a date to its bucket key: the date itself for day
// grouping, the bucket's first day otherwise.
func bucketLabel(d clock.Date, grouping model.Grouping) string {
	switch grouping {
	case GroupDay:
		return d.String()
	case GroupWeek:
		// Monday of the ISO week.
		shift := (int(d.Weekday()) + 6) % 7
		return d.AddDays(-shift).String()
	case GroupMonth:
		return clock.Date{Year: d.Year, Month: d.Month, Day: 1}.String()
	default: // GroupYear
		return clock.Date{Year: d.Year, Month: time.January, Day: 1}.String()
	}
}

// Grouping aliases so callers don't need to import model for the constants.
const (
	GroupDay   = model.GroupByDay
	GroupWeek  = model.GroupByWeek
	GroupMonth = model.GroupByMonth
	GroupYear  = model.GroupByYear
)
