package app

import (
	"strings"
	"testing"
	"time"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/notify"
	"github.com/nhle/timebox/internal/placement"
	"github.com/nhle/timebox/internal/rollover"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/tracker"
	"github.com/nhle/timebox/internal/ui/movecard"
	"github.com/nhle/timebox/tests/testutil"
)

var (
	tuesdayNoon   = time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	wednesdayNoon = time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC)
)

func testSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()

	raw := []model.RawActivity{
		{ID: "act-deep", Name: "Deep work", StartTime: "09:00", EndTime: "10:00"},
		{ID: "act-mail", Name: "Email triage", StartTime: "10:00", EndTime: "11:00"},
	}
	s, err := schedule.Load(raw, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

// newTestModel wires a root model with a fixed clock and a coordinator
// anchored at a possibly different instant, so tests can simulate a day
// change purely through the injected clock.
func newTestModel(t *testing.T, clkInstant, coordAnchor time.Time) Model {
	t.Helper()

	clk := clock.FixedClock{Instant: clkInstant}
	trk := tracker.New(testutil.NewTestStore(t), clk, 0)

	coord, err := rollover.New(trk, 0, t.TempDir(), coordAnchor)
	if err != nil {
		t.Fatalf("rollover.New: %v", err)
	}

	cfg := &model.AppConfig{
		DayStartHour: 0,
		Display:      model.DisplayConfig{TickIntervalSec: 1, SnapMinutes: 5},
	}
	return New(cfg, clk, trk, coord, notify.Nop{}, testSchedule(t), "")
}

func TestTickWithFrozenClockStaysOnSameDay(t *testing.T) {
	m := newTestModel(t, tuesdayNoon, tuesdayNoon)
	before := m.today

	mdl, cmd := m.Update(tickMsg{})
	got := mdl.(Model)

	if got.today != before {
		t.Fatalf("today changed under a frozen clock: %s -> %s", before, got.today)
	}
	if got.coord.State() != rollover.Idle {
		t.Fatalf("coordinator state = %s, want idle", got.coord.State())
	}
	if cmd == nil {
		t.Fatal("expected the next tick to be armed")
	}
}

func TestTickFollowsInjectedClockAcrossDayChange(t *testing.T) {
	// Coordinator anchored Tuesday, clock reporting Wednesday: the tick
	// must roll the day over based on the injected clock alone.
	m := newTestModel(t, wednesdayNoon, tuesdayNoon)

	mdl, _ := m.Update(tickMsg{})
	got := mdl.(Model)

	want, err := clock.LogicalDate(wednesdayNoon, 0)
	if err != nil {
		t.Fatalf("LogicalDate: %v", err)
	}
	if got.today != want {
		t.Fatalf("today = %s, want %s", got.today, want)
	}
	if got.coord.LastDate() != want {
		t.Fatalf("coordinator date = %s, want %s", got.coord.LastDate(), want)
	}
	if got.coord.State() != rollover.Idle {
		t.Fatalf("coordinator state = %s, want idle", got.coord.State())
	}
}

func TestOverlapConfirmationShowsActivityNames(t *testing.T) {
	m := newTestModel(t, tuesdayNoon, tuesdayNoon)

	// Moving "Deep work" to 09:30 runs it into "Email triage".
	msg := movecard.MoveSubmittedMsg{
		ActivityID: "act-deep",
		Request:    placement.Absolute(9*60 + 30),
		Mode:       placement.SingleCard,
	}
	mdl, _ := m.Update(msg)
	got := mdl.(Model)

	if got.pendingMove == nil {
		t.Fatal("expected a pending move awaiting confirmation")
	}
	view := got.moveView.View()
	if !strings.Contains(view, "Email triage") {
		t.Fatalf("confirmation view does not name the overlapped card:\n%s", view)
	}
	if strings.Contains(view, "act-mail") {
		t.Fatalf("confirmation view leaks the activity id:\n%s", view)
	}
}
