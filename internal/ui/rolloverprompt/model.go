// Package rolloverprompt asks the user whether to load the new day's
// schedule template or keep the current schedule.
package rolloverprompt

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timebox/internal/rollover"
	"github.com/nhle/timebox/internal/theme"
)

// DecisionMsg carries the user's rollover choice back to the app.
type DecisionMsg struct {
	Choice rollover.Choice
}

// Model is the Bubble Tea model for the rollover prompt.
type Model struct {
	form    *huh.Form
	loadNew *bool
	prompt  rollover.Prompt
	width   int
	height  int
}

// New creates a rollover prompt model.
func New(width, height int) Model {
	v := false
	return Model{loadNew: &v, width: width, height: height}
}

// Start initializes the prompt for a pending rollover.
func (m *Model) Start(p rollover.Prompt) tea.Cmd {
	m.prompt = p
	*m.loadNew = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("A new day started (%s).", p.NewDate)).
				Description("A schedule template exists for " + p.NewDate.Weekday().String() + ".").
				Affirmative("Load new schedule").
				Negative("Keep current").
				Value(m.loadNew),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

// Update handles messages for the prompt. Escape is not a cancel here:
// the day rolled over either way, so aborting counts as keeping the
// current schedule.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		choice := rollover.KeepCurrent
		if *m.loadNew {
			choice = rollover.LoadNew
		}
		return m, func() tea.Msg { return DecisionMsg{Choice: choice} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DecisionMsg{Choice: rollover.KeepCurrent} }
	}

	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Day rollover")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the prompt dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}
