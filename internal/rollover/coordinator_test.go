package rollover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/tracker"
	"github.com/nhle/timebox/tests/testutil"
)

// tuesdayNoon is the anchor instant for these tests; the following day is
// a Wednesday.
var tuesdayNoon = time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*Coordinator, *tracker.Tracker, *schedule.Schedule, string) {
	t.Helper()
	s := testutil.NewTestStore(t)
	trk := tracker.New(s, clock.FixedClock{Instant: tuesdayNoon}, 0)

	raw := []model.RawActivity{{
		ID: "act-current", Name: "Current block",
		StartTime: "09:00", EndTime: "10:00",
		Tasks: []model.RawTask{{Name: "existing task"}},
	}}
	sched, err := schedule.Load(raw, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := trk.PersistDefinitions(context.Background(), sched); err != nil {
		t.Fatalf("PersistDefinitions: %v", err)
	}

	dir := t.TempDir()
	c, err := New(trk, 0, dir, tuesdayNoon)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, trk, sched, dir
}

func writeTemplate(t *testing.T, dir, name string) {
	t.Helper()
	content := `- id: act-wed
  name: Wednesday block
  start_time: "08:00"
  end_time: "09:30"
  tasks:
    - name: review notes
`
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}
}

func entryCount(t *testing.T, trk *tracker.Tracker, date clock.Date) int {
	t.Helper()
	states, err := trk.DoneStates(context.Background(), date)
	if err != nil {
		t.Fatalf("DoneStates: %v", err)
	}
	return len(states)
}

func TestCheckSameDayIsNoOp(t *testing.T) {
	c, _, sched, _ := newFixture(t)

	got, prompt, err := c.Check(context.Background(), tuesdayNoon.Add(time.Minute), sched)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got != sched || prompt != nil {
		t.Fatal("same-day tick must change nothing")
	}
	if c.State() != Idle {
		t.Fatalf("state = %s, want idle", c.State())
	}
}

func TestRolloverWithoutTemplateKeepsCurrent(t *testing.T) {
	c, trk, sched, _ := newFixture(t)
	nextDay := tuesdayNoon.Add(24 * time.Hour)
	newDate, _ := clock.LogicalDate(nextDay, 0)

	got, prompt, err := c.Check(context.Background(), nextDay, sched)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if prompt != nil {
		t.Fatal("no weekday template: no prompt expected")
	}
	if got != sched {
		t.Fatal("KeepCurrent must retain the schedule object")
	}
	if c.State() != Idle {
		t.Fatalf("state = %s, want idle after auto-apply", c.State())
	}
	if c.LastDate() != newDate {
		t.Fatalf("lastDate = %s, want %s", c.LastDate(), newDate)
	}
	if n := entryCount(t, trk, newDate); n != 1 {
		t.Fatalf("entries for new date = %d, want 1", n)
	}
}

func TestRolloverWithTemplatePromptsBeforeEntries(t *testing.T) {
	c, trk, sched, dir := newFixture(t)
	writeTemplate(t, dir, "Wednesday_settings.yaml")
	nextDay := tuesdayNoon.Add(24 * time.Hour)
	newDate, _ := clock.LogicalDate(nextDay, 0)

	got, prompt, err := c.Check(context.Background(), nextDay, sched)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got != sched {
		t.Fatal("schedule must stay untouched while awaiting choice")
	}
	if prompt == nil {
		t.Fatal("expected a prompt for the weekday template")
	}
	if prompt.NewDate != newDate {
		t.Fatalf("prompt date = %s, want %s", prompt.NewDate, newDate)
	}
	if c.State() != AwaitingUserChoice {
		t.Fatalf("state = %s, want awaiting user choice", c.State())
	}

	// No entries may exist for the new date until the user decides.
	if n := entryCount(t, trk, newDate); n != 0 {
		t.Fatalf("entries created while awaiting choice: %d", n)
	}

	// Further ticks while awaiting are no-ops.
	got, prompt, err = c.Check(context.Background(), nextDay.Add(time.Minute), sched)
	if err != nil {
		t.Fatalf("Check while awaiting: %v", err)
	}
	if got != sched || prompt != nil {
		t.Fatal("tick during awaiting choice must be a no-op")
	}
}

func TestDecideLoadNewReplacesSchedule(t *testing.T) {
	c, trk, sched, dir := newFixture(t)
	writeTemplate(t, dir, "Wednesday_settings.yaml")
	nextDay := tuesdayNoon.Add(24 * time.Hour)
	newDate, _ := clock.LogicalDate(nextDay, 0)

	if _, _, err := c.Check(context.Background(), nextDay, sched); err != nil {
		t.Fatalf("Check: %v", err)
	}

	got, err := c.Decide(context.Background(), LoadNew, sched)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if got == sched {
		t.Fatal("LoadNew must hand back a fresh schedule object")
	}
	if _, err := got.Find("act-wed"); err != nil {
		t.Fatalf("loaded schedule missing template activity: %v", err)
	}
	if c.State() != Idle {
		t.Fatalf("state = %s, want idle", c.State())
	}
	if c.LastDate() != newDate {
		t.Fatalf("lastDate = %s, want %s", c.LastDate(), newDate)
	}

	// Entries exist for the chosen schedule's task.
	if n := entryCount(t, trk, newDate); n != 1 {
		t.Fatalf("entries for new date = %d, want 1", n)
	}
	task := got.Activities()[0].Tasks[0]
	if !task.Persisted() {
		t.Fatal("template task was not persisted during apply")
	}
	states, err := trk.DoneStates(context.Background(), newDate)
	if err != nil {
		t.Fatalf("DoneStates: %v", err)
	}
	if _, ok := states[task.UUID]; !ok {
		t.Fatal("entry not recorded under the template task's uuid")
	}
}

func TestDecideKeepCurrentRetainsSchedule(t *testing.T) {
	c, trk, sched, dir := newFixture(t)
	writeTemplate(t, dir, "Wednesday_settings.yaml")
	nextDay := tuesdayNoon.Add(24 * time.Hour)
	newDate, _ := clock.LogicalDate(nextDay, 0)

	if _, _, err := c.Check(context.Background(), nextDay, sched); err != nil {
		t.Fatalf("Check: %v", err)
	}

	got, err := c.Decide(context.Background(), KeepCurrent, sched)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if got != sched {
		t.Fatal("KeepCurrent must retain the schedule object")
	}
	if n := entryCount(t, trk, newDate); n != 1 {
		t.Fatalf("entries for new date = %d, want 1", n)
	}
}

func TestDecideWithoutPendingRollover(t *testing.T) {
	c, _, sched, _ := newFixture(t)

	if _, err := c.Decide(context.Background(), LoadNew, sched); err == nil {
		t.Fatal("Decide with nothing pending must fail")
	}
	if c.State() != Idle {
		t.Fatalf("state = %s, want idle", c.State())
	}
}

func TestRolloverCleanupOnLoadFailure(t *testing.T) {
	c, _, sched, dir := newFixture(t)
	// A malformed template still triggers the prompt; the failure happens
	// at Decide time.
	bad := filepath.Join(dir, "Wednesday_settings.yaml")
	if err := os.WriteFile(bad, []byte("not a list of activities"), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}
	nextDay := tuesdayNoon.Add(24 * time.Hour)
	newDate, _ := clock.LogicalDate(nextDay, 0)

	if _, _, err := c.Check(context.Background(), nextDay, sched); err != nil {
		t.Fatalf("Check: %v", err)
	}

	got, err := c.Decide(context.Background(), LoadNew, sched)
	if err == nil {
		t.Fatal("loading a malformed template must fail")
	}
	if got != sched {
		t.Fatal("failed LoadNew must fall back to the current schedule")
	}
	// Cleanup is guaranteed: back to Idle with the date advanced so the
	// next tick doesn't re-trigger the same prompt.
	if c.State() != Idle {
		t.Fatalf("state = %s, want idle after failure", c.State())
	}
	if c.LastDate() != newDate {
		t.Fatalf("lastDate = %s, want %s", c.LastDate(), newDate)
	}
}
