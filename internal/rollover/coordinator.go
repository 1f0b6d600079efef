// Package rollover detects logical day transitions and drives the
// load-new-or-keep-current hand-off for the schedule.
package rollover

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/tracker"
)

// State is the coordinator's position in the rollover lifecycle.
type State int

const (
	// Idle means no transition is in flight; ticks only compare dates.
	Idle State = iota
	// RolloverDetected is the transient state between detecting a date
	// change and either prompting or auto-applying.
	RolloverDetected
	// AwaitingUserChoice means a weekday template exists for the new day
	// and the user has not yet picked. Ticks are no-ops here and no
	// completion entries are created for the new date.
	AwaitingUserChoice
	// Applying means the chosen schedule is being installed and the new
	// day's entries created.
	Applying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RolloverDetected:
		return "rollover detected"
	case AwaitingUserChoice:
		return "awaiting user choice"
	case Applying:
		return "applying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Choice is the user's answer to the rollover prompt.
type Choice int

const (
	// KeepCurrent carries yesterday's schedule object into the new day.
	KeepCurrent Choice = iota
	// LoadNew replaces the schedule with the new day's weekday template.
	LoadNew
)

// Prompt describes a pending rollover that needs a user decision.
type Prompt struct {
	NewDate      clock.Date
	TemplatePath string
}

// Coordinator watches the logical date and applies day transitions. It is
// not safe for concurrent use; the single-threaded update loop calls it.
type Coordinator struct {
	trk          *tracker.Tracker
	dayStartHour int
	scheduleDir  string

	state    State
	lastDate clock.Date

	// pending rollover, valid while state != Idle
	newDate      clock.Date
	templatePath string
}

// New creates a coordinator anchored at the logical date of now.
func New(trk *tracker.Tracker, dayStartHour int, scheduleDir string, now time.Time) (*Coordinator, error) {
	date, err := clock.LogicalDate(now, dayStartHour)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		trk:          trk,
		dayStartHour: dayStartHour,
		scheduleDir:  scheduleDir,
		state:        Idle,
		lastDate:     date,
	}, nil
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	return c.state
}

// LastDate returns the logical date the coordinator considers current.
func (c *Coordinator) LastDate() clock.Date {
	return c.lastDate
}

// Check compares the logical date of now against the last seen date.
//
// When the date is unchanged, or a rollover is already in flight, it
// returns (current, nil, nil). When the date changed and a weekday
// template exists for the new day, it moves to AwaitingUserChoice and
// returns a Prompt; the caller must follow up with Decide. When no
// specific template exists the transition is applied immediately with
// KeepCurrent and the (possibly unchanged) schedule is returned.
func (c *Coordinator) Check(
	ctx context.Context,
	now time.Time,
	current *schedule.Schedule,
) (*schedule.Schedule, *Prompt, error) {
	if c.state != Idle {
		return current, nil, nil
	}

	date, err := clock.LogicalDate(now, c.dayStartHour)
	if err != nil {
		return current, nil, err
	}
	if date == c.lastDate {
		return current, nil, nil
	}

	c.state = RolloverDetected
	c.newDate = date

	path, hasSpecific := schedule.TemplatePath(c.scheduleDir, date.Weekday())
	if hasSpecific {
		c.state = AwaitingUserChoice
		c.templatePath = path
		return current, &Prompt{NewDate: date, TemplatePath: path}, nil
	}

	next, err := c.apply(ctx, KeepCurrent, current)
	return next, nil, err
}

// Decide resolves a pending AwaitingUserChoice rollover. For LoadNew the
// weekday template is loaded into a fresh schedule object which replaces
// the current one wholesale; KeepCurrent retains the current object. In
// both cases the new day's completion entries are created before the
// schedule is handed back.
func (c *Coordinator) Decide(
	ctx context.Context,
	choice Choice,
	current *schedule.Schedule,
) (*schedule.Schedule, error) {
	if c.state != AwaitingUserChoice {
		return current, fmt.Errorf("no rollover decision pending (state %s)", c.state)
	}
	return c.apply(ctx, choice, current)
}

// apply installs the chosen schedule for the pending date and creates its
// entries. The coordinator always returns to Idle with lastDate advanced,
// even when entry creation fails: retrying a half-applied rollover every
// tick would hammer the store, and the next successful tick heals missing
// entries anyway.
func (c *Coordinator) apply(
	ctx context.Context,
	choice Choice,
	current *schedule.Schedule,
) (next *schedule.Schedule, err error) {
	c.state = Applying
	defer func() {
		c.state = Idle
		c.lastDate = c.newDate
		c.templatePath = ""
	}()

	next = current
	if choice == LoadNew {
		loaded, loadErr := schedule.LoadFile(c.templatePath, c.dayStartHour)
		if loadErr != nil {
			return current, fmt.Errorf("loading template for %s: %w", c.newDate, loadErr)
		}
		next = loaded
	}

	if _, err := c.trk.PersistDefinitions(ctx, next); err != nil {
		return next, fmt.Errorf("applying rollover to %s: %w", c.newDate, err)
	}
	if _, err := c.trk.EnsureDailyEntries(ctx, next, c.newDate); err != nil {
		return next, fmt.Errorf("applying rollover to %s: %w", c.newDate, err)
	}
	return next, nil
}
