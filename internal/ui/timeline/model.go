// Package timeline renders the day's activity cards in start order with a
// current-time marker and per-task done checkboxes.
package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/keys"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/theme"
)

// ToggleTaskMsg is sent when the user toggles the selected task's done state.
type ToggleTaskMsg struct {
	TaskUUID string
	TaskName string
	Done     bool
}

// MoveRequestMsg is sent when the user asks to move the selected card.
type MoveRequestMsg struct {
	ActivityID string
}

// SaveRequestMsg is sent when the user asks to save the schedule.
type SaveRequestMsg struct{}

// Model is the timeline view component.
type Model struct {
	schedule     *schedule.Schedule
	done         map[string]bool
	keys         *keys.KeyMap
	nowOffset    int
	selectedCard int
	selectedTask int
	width        int
	height       int
}

// New creates a timeline model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		done:   map[string]bool{},
		width:  width,
		height: height,
	}
}

// SetSchedule replaces the schedule being rendered and clamps the selection.
func (m *Model) SetSchedule(s *schedule.Schedule) {
	m.schedule = s
	m.clampSelection()
}

// SetDoneStates replaces the task done states, keyed by task UUID.
func (m *Model) SetDoneStates(states map[string]bool) {
	if states == nil {
		states = map[string]bool{}
	}
	m.done = states
}

// SetNowOffset updates the current-time marker position, in minutes from
// day start.
func (m *Model) SetNowOffset(offset int) {
	m.nowOffset = offset
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedActivity returns the currently selected activity, nil when the
// schedule is empty.
func (m Model) SelectedActivity() *model.Activity {
	if m.schedule == nil {
		return nil
	}
	acts := m.schedule.Activities()
	if m.selectedCard < 0 || m.selectedCard >= len(acts) {
		return nil
	}
	return acts[m.selectedCard]
}

// Update handles messages for the timeline view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		m.selectedCard++
		m.selectedTask = 0
		m.clampSelection()

	case key.Matches(keyMsg, m.keys.Up):
		m.selectedCard--
		m.selectedTask = 0
		m.clampSelection()

	case key.Matches(keyMsg, m.keys.NextTask):
		m.selectedTask++
		m.clampSelection()

	case key.Matches(keyMsg, m.keys.PrevTask):
		m.selectedTask--
		m.clampSelection()

	case key.Matches(keyMsg, m.keys.ToggleDone):
		task, ok := m.selectedTaskRef()
		if !ok || !task.Persisted() {
			return m, nil
		}
		uuid, name := task.UUID, task.Name
		done := !m.done[uuid]
		return m, func() tea.Msg {
			return ToggleTaskMsg{TaskUUID: uuid, TaskName: name, Done: done}
		}

	case key.Matches(keyMsg, m.keys.Move):
		act := m.SelectedActivity()
		if act == nil {
			return m, nil
		}
		id := act.ID
		return m, func() tea.Msg {
			return MoveRequestMsg{ActivityID: id}
		}

	case key.Matches(keyMsg, m.keys.Save):
		return m, func() tea.Msg {
			return SaveRequestMsg{}
		}
	}

	return m, nil
}

// selectedTaskRef returns the currently selected task within the selected
// card.
func (m Model) selectedTaskRef() (model.Task, bool) {
	act := m.SelectedActivity()
	if act == nil || len(act.Tasks) == 0 {
		return model.Task{}, false
	}
	if m.selectedTask < 0 || m.selectedTask >= len(act.Tasks) {
		return model.Task{}, false
	}
	return act.Tasks[m.selectedTask], true
}

// clampSelection keeps card and task indices inside the schedule.
func (m *Model) clampSelection() {
	if m.schedule == nil {
		m.selectedCard, m.selectedTask = 0, 0
		return
	}
	acts := m.schedule.Activities()
	if len(acts) == 0 {
		m.selectedCard, m.selectedTask = 0, 0
		return
	}
	if m.selectedCard < 0 {
		m.selectedCard = 0
	}
	if m.selectedCard >= len(acts) {
		m.selectedCard = len(acts) - 1
	}
	tasks := acts[m.selectedCard].Tasks
	if m.selectedTask < 0 {
		m.selectedTask = 0
	}
	if len(tasks) == 0 {
		m.selectedTask = 0
	} else if m.selectedTask >= len(tasks) {
		m.selectedTask = len(tasks) - 1
	}
}

// View renders the timeline.
func (m Model) View() string {
	if m.schedule == nil || m.schedule.Len() == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No schedule loaded.")
	}

	var lines []string
	selectedLine := 0
	markerDrawn := false
	dayStart := m.schedule.DayStartHour()

	for i, act := range m.schedule.Activities() {
		if !markerDrawn && m.nowOffset < act.StartOffset {
			lines = append(lines, m.nowMarker(dayStart))
			markerDrawn = true
		}
		if i == m.selectedCard {
			selectedLine = len(lines)
		}
		lines = append(lines, m.renderCard(act, i == m.selectedCard, dayStart)...)
		if !markerDrawn && act.ActiveAt(m.nowOffset) {
			lines = append(lines, m.nowMarker(dayStart))
			markerDrawn = true
		}
	}
	if !markerDrawn {
		lines = append(lines, m.nowMarker(dayStart))
	}

	return m.viewport(lines, selectedLine)
}

// renderCard renders one activity with its task lines.
func (m Model) renderCard(act *model.Activity, selected bool, dayStart int) []string {
	state := theme.CardUpcoming
	switch {
	case act.FinishedAt(m.nowOffset):
		state = theme.CardFinished
	case act.ActiveAt(m.nowOffset):
		state = theme.CardActive
	}

	style := theme.CardStyle(state, selected)
	header := fmt.Sprintf("%s–%s  %s",
		act.StartClock(dayStart), act.EndClock(dayStart), act.Name)
	lines := []string{style.Render(header)}

	for j, task := range act.Tasks {
		mark := "[ ]"
		if m.done[task.UUID] {
			mark = "[x]"
		}
		row := "   " + theme.TaskMarkStyle(m.done[task.UUID]).Render(mark) + " " + task.Name
		if selected && j == m.selectedTask {
			row = lipgloss.NewStyle().Bold(true).Render(row)
		}
		lines = append(lines, style.Render(row))
	}
	return lines
}

// nowMarker renders the current-time line.
func (m Model) nowMarker(dayStart int) string {
	label := fmt.Sprintf("─── %s ", clock.FormatHHMM(clock.WallClockFromOffset(m.nowOffset, dayStart)))
	width := m.width - lipgloss.Width(label)
	if width < 0 {
		width = 0
	}
	return theme.NowMarkerStyle.Render(label + strings.Repeat("─", width))
}

// viewport clips the rendered lines to the view height, keeping the
// selected card visible.
func (m Model) viewport(lines []string, selectedLine int) string {
	if m.height <= 0 || len(lines) <= m.height {
		return strings.Join(lines, "\n")
	}

	top := selectedLine - m.height/2
	if top > len(lines)-m.height {
		top = len(lines) - m.height
	}
	if top < 0 {
		top = 0
	}
	return strings.Join(lines[top:top+m.height], "\n")
}
