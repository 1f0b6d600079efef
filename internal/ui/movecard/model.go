// Package movecard drives the move-card flow: a form collecting the new
// time and shift mode, and a confirmation step when the proposed placement
// overlaps other cards.
package movecard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/placement"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/theme"
)

// MoveSubmittedMsg is dispatched when the form is completed; the app
// proposes the move and either applies it, reports a boundary error, or
// asks for overlap confirmation.
type MoveSubmittedMsg struct {
	ActivityID string
	Request    placement.Request
	Mode       placement.Mode
}

// MoveConfirmedMsg is dispatched when the user accepts a move that
// carries overlap warnings.
type MoveConfirmedMsg struct{}

// MoveCancelMsg is dispatched when the user abandons the move flow.
type MoveCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	target  string
	mode    placement.Mode
	confirm bool
}

// Model is the Bubble Tea model for the move-card flow.
type Model struct {
	form         *huh.Form
	fb           *formBindings
	sched        *schedule.Schedule
	activity     *model.Activity
	dayStartHour int
	snap         int
	confirming   bool
	conflicts    []string
	width        int
	height       int
}

// New creates a move-card model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for moving the given activity. Entered times
// are snapped to the given step, in minutes. Shift modes that would move
// no card besides the target are not offered.
func (m *Model) Start(s *schedule.Schedule, act *model.Activity, snap int) tea.Cmd {
	m.sched = s
	m.activity = act
	m.dayStartHour = s.DayStartHour()
	m.snap = snap
	m.confirming = false
	m.conflicts = nil
	m.fb.target = act.StartClock(m.dayStartHour)
	m.fb.mode = placement.SingleCard
	m.form = m.buildMoveForm()
	return m.form.Init()
}

// StartConfirm switches to the overlap confirmation step for a proposed
// move that carries conflict warnings. The conflicts are activity names,
// resolved by the caller for display.
func (m *Model) StartConfirm(conflicts []string) tea.Cmd {
	m.confirming = true
	m.conflicts = conflicts
	m.fb.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Place anyway?").
				Description("The new time overlaps other cards.").
				Affirmative("Move").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

// Update handles messages for the move flow.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return MoveCancelMsg{} }
	}

	return m, cmd
}

func (m Model) handleSubmit() tea.Cmd {
	if m.confirming {
		if m.fb.confirm {
			return func() tea.Msg { return MoveConfirmedMsg{} }
		}
		return func() tea.Msg { return MoveCancelMsg{} }
	}

	req, err := parseTarget(m.fb.target, m.dayStartHour, m.snap)
	if err != nil {
		// Validate() makes this unreachable; bail out of the flow anyway.
		return func() tea.Msg { return MoveCancelMsg{} }
	}
	id := m.activity.ID
	mode := m.fb.mode
	return func() tea.Msg {
		return MoveSubmittedMsg{ActivityID: id, Request: req, Mode: mode}
	}
}

// View renders the move form or the confirmation step.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	if m.confirming {
		b.WriteString(titleStyle.Render("Overlap detected"))
		b.WriteString("\n")
		for _, name := range m.conflicts {
			b.WriteString(theme.ConflictStyle.Render("  overlaps " + name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else if m.activity != nil {
		title := fmt.Sprintf("Move %q (%s–%s)",
			m.activity.Name,
			m.activity.StartClock(m.dayStartHour),
			m.activity.EndClock(m.dayStartHour))
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	b.WriteString(m.form.View())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildMoveForm() *huh.Form {
	dayStart, snap := m.dayStartHour, m.snap
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New start time").
				Description("HH:MM, or a shift like +00:30 / -01:00").
				Value(&m.fb.target).
				Validate(func(s string) error {
					_, err := parseTarget(s, dayStart, snap)
					return err
				}),
			huh.NewSelect[placement.Mode]().
				Title("Mode").
				Options(modeOptions(m.sched, m.activity.ID)...).
				Value(&m.fb.mode),
		),
	).WithWidth(m.formWidth())
}

// modeOptions builds the mode selector. A shift mode is offered only when
// it would move at least one card besides the target; with nothing to
// shift, only the single-card move remains.
func modeOptions(s *schedule.Schedule, activityID string) []huh.Option[placement.Mode] {
	opts := []huh.Option[placement.Mode]{
		huh.NewOption("This card only", placement.SingleCard),
	}
	shiftModes := []struct {
		label string
		mode  placement.Mode
	}{
		{"Shift following cards", placement.ShiftFollowing},
		{"Shift preceding cards", placement.ShiftPreceding},
		{"Shift whole day", placement.ShiftAll},
	}
	for _, sm := range shiftModes {
		n, err := placement.ShiftTargets(s, activityID, sm.mode)
		if err != nil || n == 0 {
			continue
		}
		opts = append(opts, huh.NewOption(sm.label, sm.mode))
	}
	return opts
}

// parseTarget interprets the target field: a leading sign makes it a
// relative shift, otherwise it is an absolute wall-clock time. The
// resulting minutes are snapped to the configured step.
func parseTarget(s string, dayStartHour, snap int) (placement.Request, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return placement.Request{}, fmt.Errorf("a time is required")
	}
	if s[0] == '+' || s[0] == '-' {
		delta, err := clock.ParseShift(s)
		if err != nil {
			return placement.Request{}, err
		}
		return placement.Relative(clock.SnapMinutes(delta, snap)), nil
	}
	wall, err := clock.ParseHHMM(s)
	if err != nil {
		return placement.Request{}, err
	}
	offset, err := clock.OffsetFromWallClock(wall, dayStartHour)
	if err != nil {
		return placement.Request{}, err
	}
	return placement.Absolute(clock.SnapMinutes(offset, snap)), nil
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
