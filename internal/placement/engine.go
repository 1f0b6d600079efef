// Package placement computes and validates activity moves on the timeline:
// absolute and relative repositioning, the multi-card shift modes, day
// boundary containment, and overlap conflicts.
package placement

import (
	"fmt"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/schedule"
)

// Mode selects which activities move together with the target.
type Mode int

const (
	// SingleCard moves only the target activity.
	SingleCard Mode = iota
	// ShiftFollowing moves the target and every activity starting strictly
	// after the target's original start.
	ShiftFollowing
	// ShiftPreceding moves the target and every activity starting strictly
	// before the target's original start.
	ShiftPreceding
	// ShiftAll moves every activity in the schedule.
	ShiftAll
)

func (m Mode) String() string {
	switch m {
	case SingleCard:
		return "single"
	case ShiftFollowing:
		return "shift following"
	case ShiftPreceding:
		return "shift preceding"
	case ShiftAll:
		return "shift all"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Request is the user's proposed time change for one activity. Exactly one
// of the two constructors applies; duration is always preserved.
type Request struct {
	absolute bool
	minutes  int
}

// Absolute requests moving the activity so it starts at the given day
// offset. The offset is taken literally within the 0-1440 logical day; no
// wraparound normalization is applied.
func Absolute(startOffset int) Request {
	return Request{absolute: true, minutes: startOffset}
}

// Relative requests shifting the activity by the given signed minutes.
func Relative(delta int) Request {
	return Request{minutes: delta}
}

// AbsoluteClock builds an absolute request from a wall-clock "HH:MM" string
// for the given day-start hour.
func AbsoluteClock(hhmm string, dayStartHour int) (Request, error) {
	wall, err := clock.ParseHHMM(hhmm)
	if err != nil {
		return Request{}, err
	}
	offset, err := clock.OffsetFromWallClock(wall, dayStartHour)
	if err != nil {
		return Request{}, err
	}
	return Absolute(offset), nil
}

// RelativeClock builds a relative request from a signed "±HH:MM" string.
func RelativeClock(shift string) (Request, error) {
	delta, err := clock.ParseShift(shift)
	if err != nil {
		return Request{}, err
	}
	return Relative(delta), nil
}

// BoundaryError rejects a move that would push any affected activity outside
// the logical day. The whole operation fails atomically; the schedule is
// left unmodified.
type BoundaryError struct {
	ActivityID     string
	ActivityName   string
	AttemptedStart int
	AttemptedEnd   int
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("activity %q would cross the day boundary: attempted [%d, %d)",
		e.ActivityName, e.AttemptedStart, e.AttemptedEnd)
}

// Change records one activity's pending offsets.
type Change struct {
	Activity *model.Activity
	NewStart int
	NewEnd   int
}

// MoveResult is a validated, uncommitted move. Callers inspect Conflicts
// and, once confirmed, call Apply to commit every change at once.
type MoveResult struct {
	Delta   int
	Mode    Mode
	Changes []Change

	// Conflicts lists ids of unaffected activities the moved target would
	// overlap. Populated only for SingleCard; conflicts are advisory, not
	// errors.
	Conflicts []string
}

// Apply writes the new offsets back to every affected activity. Durations
// are preserved exactly because both ends moved by the same delta.
func (r *MoveResult) Apply() {
	for _, c := range r.Changes {
		c.Activity.StartOffset = c.NewStart
		c.Activity.EndOffset = c.NewEnd
	}
}

// ShiftTargets returns how many activities besides the target would move in
// the given mode. The UI disables shift modes when this is zero.
func ShiftTargets(s *schedule.Schedule, activityID string, mode Mode) (int, error) {
	target, err := s.Find(activityID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range s.Activities() {
		if a.ID == target.ID {
			continue
		}
		switch mode {
		case ShiftFollowing:
			if a.StartOffset > target.StartOffset {
				count++
			}
		case ShiftPreceding:
			if a.StartOffset < target.StartOffset {
				count++
			}
		case ShiftAll:
			count++
		}
	}
	return count, nil
}

// ProposeMove validates the requested change and returns the resulting
// uncommitted move. The schedule is not modified; a BoundaryError means
// nothing may be applied.
func ProposeMove(s *schedule.Schedule, activityID string, req Request, mode Mode) (*MoveResult, error) {
	target, err := s.Find(activityID)
	if err != nil {
		return nil, err
	}

	delta := req.minutes
	if req.absolute {
		delta = req.minutes - target.StartOffset
	}

	result := &MoveResult{Delta: delta, Mode: mode}
	if delta == 0 {
		return result, nil
	}

	affected := map[string]bool{target.ID: true}
	for _, a := range s.Activities() {
		if a.ID == target.ID {
			continue
		}
		switch mode {
		case ShiftFollowing:
			if a.StartOffset > target.StartOffset {
				affected[a.ID] = true
			}
		case ShiftPreceding:
			if a.StartOffset < target.StartOffset {
				affected[a.ID] = true
			}
		case ShiftAll:
			affected[a.ID] = true
		}
	}

	for _, a := range s.Activities() {
		if !affected[a.ID] {
			continue
		}
		newStart := a.StartOffset + delta
		newEnd := a.EndOffset + delta
		if newStart < 0 || newEnd > clock.MinutesPerDay {
			return nil, &BoundaryError{
				ActivityID:     a.ID,
				ActivityName:   a.Name,
				AttemptedStart: newStart,
				AttemptedEnd:   newEnd,
			}
		}
		result.Changes = append(result.Changes, Change{Activity: a, NewStart: newStart, NewEnd: newEnd})
	}

	// Conflicts are only meaningful for a single-card move. The shift modes
	// move a coherent block: overlaps among shifted members cannot change,
	// and overlaps with unshifted members are an accepted consequence of an
	// explicit bulk operation.
	if mode == SingleCard {
		newStart := target.StartOffset + delta
		newEnd := target.EndOffset + delta
		for _, other := range s.Activities() {
			if affected[other.ID] {
				continue
			}
			if newStart < other.EndOffset && other.StartOffset < newEnd {
				result.Conflicts = append(result.Conflicts, other.ID)
			}
		}
	}

	return result, nil
}
