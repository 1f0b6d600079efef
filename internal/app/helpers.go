package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/ui/timeline"
)

// notifyTimeout bounds a single push delivery.
const notifyTimeout = 10 * time.Second

// ensureToday reattaches saved task identities, creates today's completion
// entries, and loads their done states.
func (m Model) ensureToday() tea.Cmd {
	trk := m.trk
	sched := m.schedule
	today := m.today
	return func() tea.Msg {
		ctx := context.Background()
		if err := trk.ResolveDefinitions(ctx, sched); err != nil {
			return doneStatesMsg{err: err}
		}
		if _, err := trk.EnsureDailyEntries(ctx, sched, today); err != nil {
			return doneStatesMsg{err: err}
		}
		states, err := trk.DoneStates(ctx, today)
		return doneStatesMsg{states: states, err: err}
	}
}

// loadDoneStates fetches today's done states for the timeline checkboxes.
func (m Model) loadDoneStates() tea.Cmd {
	trk := m.trk
	today := m.today
	return func() tea.Msg {
		states, err := trk.DoneStates(context.Background(), today)
		return doneStatesMsg{states: states, err: err}
	}
}

// toggleTask flips a task's done state for today and reloads the
// checkboxes.
func (m Model) toggleTask(msg timeline.ToggleTaskMsg) tea.Cmd {
	trk := m.trk
	today := m.today
	return func() tea.Msg {
		ctx := context.Background()
		if err := trk.MarkDone(ctx, msg.TaskUUID, today, msg.Done); err != nil {
			return statusMsg{text: fmt.Sprintf("marking %q: %v", msg.TaskName, err)}
		}
		states, err := trk.DoneStates(ctx, today)
		return doneStatesMsg{states: states, err: err}
	}
}

// saveSchedule writes the schedule file. Saving is the moment unsaved
// tasks become tracked: they get their UUIDs and today's entries.
func (m Model) saveSchedule() tea.Cmd {
	trk := m.trk
	sched := m.schedule
	path := m.schedulePath
	today := m.today
	return func() tea.Msg {
		ctx := context.Background()
		assigned, err := trk.PersistDefinitions(ctx, sched)
		if err != nil {
			return savedMsg{err: err}
		}
		if err := schedule.SaveFile(path, sched); err != nil {
			return savedMsg{err: err}
		}
		created, err := trk.EnsureDailyEntries(ctx, sched, today)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{assigned: assigned, created: created}
	}
}

// notifyActivityChange pushes a notification when the current activity
// changes between ticks. Delivery runs off the update loop.
func (m *Model) notifyActivityChange(offset int) tea.Cmd {
	act := m.schedule.Current(offset)
	id := ""
	if act != nil {
		id = act.ID
	}
	if id == m.lastActivityID {
		return nil
	}
	m.lastActivityID = id
	if act == nil {
		return nil
	}

	ntf := m.ntf
	name := act.Name
	end := act.EndClock(m.schedule.DayStartHour())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := ntf.Notify(ctx, name, fmt.Sprintf("%s until %s", name, end), 5); err != nil {
			return statusMsg{text: "notify: " + err.Error()}
		}
		return nil
	}
}
