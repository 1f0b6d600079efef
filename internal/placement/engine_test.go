package placement

import (
	"errors"
	"testing"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/schedule"
)

// fourBlocks builds a schedule with activities starting at 09:00, 10:00,
// 11:00 and 12:00, one hour each.
func fourBlocks(t *testing.T) *schedule.Schedule {
	t.Helper()
	raw := []model.RawActivity{
		{ID: "a", Name: "nine", StartTime: "09:00", EndTime: "10:00"},
		{ID: "b", Name: "ten", StartTime: "10:00", EndTime: "11:00"},
		{ID: "c", Name: "eleven", StartTime: "11:00", EndTime: "12:00"},
		{ID: "d", Name: "twelve", StartTime: "12:00", EndTime: "13:00"},
	}
	s, err := schedule.Load(raw, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func starts(s *schedule.Schedule) []int {
	var out []int
	for _, a := range s.Activities() {
		out = append(out, a.StartOffset)
	}
	return out
}

func TestSingleCardAbsoluteMove(t *testing.T) {
	s := fourBlocks(t)

	req, err := AbsoluteClock("09:30", 0)
	if err != nil {
		t.Fatalf("AbsoluteClock: %v", err)
	}
	res, err := ProposeMove(s, "a", req, SingleCard)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if res.Delta != 30 {
		t.Fatalf("delta = %d, want 30", res.Delta)
	}
	if len(res.Changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(res.Changes))
	}

	// [09:30, 10:30) overlaps b [10:00, 11:00).
	if len(res.Conflicts) != 1 || res.Conflicts[0] != "b" {
		t.Fatalf("conflicts = %v, want [b]", res.Conflicts)
	}

	// Schedule untouched until Apply.
	a, _ := s.Find("a")
	if a.StartOffset != 540 {
		t.Fatalf("schedule mutated before Apply: start %d", a.StartOffset)
	}

	res.Apply()
	if a.StartOffset != 570 || a.EndOffset != 630 {
		t.Fatalf("after Apply a = [%d, %d), want [570, 630)", a.StartOffset, a.EndOffset)
	}
}

func TestConflictDetectionScenario(t *testing.T) {
	// A=[09:00,10:00), B=[10:00,11:00): moving A to start 10:30 gives
	// [10:30,11:30) which overlaps B.
	raw := []model.RawActivity{
		{ID: "A", Name: "A", StartTime: "09:00", EndTime: "10:00"},
		{ID: "B", Name: "B", StartTime: "10:00", EndTime: "11:00"},
	}
	s, err := schedule.Load(raw, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, err := ProposeMove(s, "A", Absolute(630), SingleCard)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0] != "B" {
		t.Fatalf("conflicts = %v, want [B]", res.Conflicts)
	}

	// Moving A to start exactly at B's end is conflict-free (half-open).
	res, err = ProposeMove(s, "A", Absolute(660), SingleCard)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if len(res.Conflicts) != 0 {
		t.Fatalf("conflicts = %v, want none at adjacent interval", res.Conflicts)
	}
}

func TestDayBoundaryRejection(t *testing.T) {
	// Activity [23:30, 24:00) shifted +60 must fail atomically.
	raw := []model.RawActivity{
		{ID: "late", Name: "late", StartTime: "23:30", EndTime: "00:00"},
	}
	s, err := schedule.Load(raw, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	late, _ := s.Find("late")
	if late.StartOffset != 1410 || late.EndOffset != 1440 {
		t.Fatalf("fixture offsets [%d, %d), want [1410, 1440)", late.StartOffset, late.EndOffset)
	}

	req, err := RelativeClock("+01:00")
	if err != nil {
		t.Fatalf("RelativeClock: %v", err)
	}
	_, err = ProposeMove(s, "late", req, SingleCard)
	var boundary *BoundaryError
	if !errors.As(err, &boundary) {
		t.Fatalf("got %v, want BoundaryError", err)
	}
	if boundary.ActivityID != "late" || boundary.AttemptedStart != 1470 || boundary.AttemptedEnd != 1500 {
		t.Fatalf("boundary detail = %+v", boundary)
	}
	if late.StartOffset != 1410 || late.EndOffset != 1440 {
		t.Fatalf("schedule mutated on rejected move: [%d, %d)", late.StartOffset, late.EndOffset)
	}
}

func TestShiftFollowing(t *testing.T) {
	s := fourBlocks(t)

	res, err := ProposeMove(s, "a", Relative(30), ShiftFollowing)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if len(res.Changes) != 4 {
		t.Fatalf("changes = %d, want all 4", len(res.Changes))
	}
	if len(res.Conflicts) != 0 {
		t.Fatalf("shift modes must not run conflict detection, got %v", res.Conflicts)
	}

	res.Apply()
	want := []int{570, 630, 690, 750}
	got := starts(s)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("starts = %v, want %v", got, want)
		}
	}
}

func TestShiftFollowingAtomicBoundary(t *testing.T) {
	s := fourBlocks(t)

	// +11h pushes the 12:00 activity past the day end; nothing may move.
	_, err := ProposeMove(s, "a", Relative(11*60+30), ShiftFollowing)
	var boundary *BoundaryError
	if !errors.As(err, &boundary) {
		t.Fatalf("got %v, want BoundaryError", err)
	}
	want := []int{540, 600, 660, 720}
	got := starts(s)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("starts after failed shift = %v, want %v", got, want)
		}
	}
}

func TestShiftPreceding(t *testing.T) {
	s := fourBlocks(t)

	res, err := ProposeMove(s, "c", Relative(-30), ShiftPreceding)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	res.Apply()

	want := []int{510, 570, 630, 720} // a, b, c move; d stays
	got := starts(s)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("starts = %v, want %v", got, want)
		}
	}
}

func TestShiftAll(t *testing.T) {
	s := fourBlocks(t)

	res, err := ProposeMove(s, "b", Relative(60), ShiftAll)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	res.Apply()

	want := []int{600, 660, 720, 780}
	got := starts(s)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("starts = %v, want %v", got, want)
		}
	}
}

func TestZeroDeltaIsNoOp(t *testing.T) {
	s := fourBlocks(t)

	res, err := ProposeMove(s, "a", Relative(0), ShiftAll)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if len(res.Changes) != 0 || len(res.Conflicts) != 0 {
		t.Fatalf("zero delta produced changes: %+v", res)
	}
	res.Apply()
	if got := starts(s); got[0] != 540 {
		t.Fatalf("no-op moved activities: %v", got)
	}

	// Absolute move to the current start is the same no-op.
	res, err = ProposeMove(s, "a", Absolute(540), SingleCard)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if res.Delta != 0 || len(res.Changes) != 0 {
		t.Fatalf("absolute no-op produced %+v", res)
	}
}

func TestBoundaryInvariantAcrossModes(t *testing.T) {
	for _, mode := range []Mode{SingleCard, ShiftFollowing, ShiftPreceding, ShiftAll} {
		s := fourBlocks(t)
		res, err := ProposeMove(s, "b", Relative(-45), mode)
		if err != nil {
			t.Fatalf("%v: ProposeMove: %v", mode, err)
		}
		res.Apply()
		for _, a := range s.Activities() {
			if a.StartOffset < 0 || a.StartOffset >= a.EndOffset || a.EndOffset > clock.MinutesPerDay {
				t.Fatalf("%v: invariant broken for %s: [%d, %d)", mode, a.Name, a.StartOffset, a.EndOffset)
			}
		}
	}
}

func TestShiftTargets(t *testing.T) {
	s := fourBlocks(t)

	cases := []struct {
		id   string
		mode Mode
		want int
	}{
		{"a", ShiftFollowing, 3},
		{"d", ShiftFollowing, 0},
		{"a", ShiftPreceding, 0},
		{"d", ShiftPreceding, 3},
		{"b", ShiftAll, 3},
		{"b", SingleCard, 0},
	}
	for _, tc := range cases {
		got, err := ShiftTargets(s, tc.id, tc.mode)
		if err != nil {
			t.Fatalf("ShiftTargets(%s, %v): %v", tc.id, tc.mode, err)
		}
		if got != tc.want {
			t.Fatalf("ShiftTargets(%s, %v) = %d, want %d", tc.id, tc.mode, got, tc.want)
		}
	}
}

func TestUnknownActivity(t *testing.T) {
	s := fourBlocks(t)
	var notFound *schedule.ErrNotFound
	if _, err := ProposeMove(s, "ghost", Relative(5), SingleCard); !errors.As(err, &notFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
