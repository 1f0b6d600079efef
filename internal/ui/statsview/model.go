// Package statsview renders completion statistics: per-task streaks and
// time-bucketed completion bars.
package statsview

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/theme"
	"github.com/nhle/timebox/internal/tracker"
)

// barWidth is the number of cells in a completion bar.
const barWidth = 20

// CloseMsg is sent when the user leaves the statistics view.
type CloseMsg struct{}

// taskStats holds the computed statistics for one task.
type taskStats struct {
	name    string
	streak  int
	buckets []model.Bucket
}

// StatsLoadedMsg carries freshly computed statistics.
type StatsLoadedMsg struct {
	stats []taskStats
	err   error
}

// groupings is the cycle order for the grouping key.
var groupings = []model.Grouping{
	model.GroupByDay,
	model.GroupByWeek,
	model.GroupByMonth,
	model.GroupByYear,
}

// Model is the statistics view component.
type Model struct {
	trk            *tracker.Tracker
	grouping       model.Grouping
	ignoreWeekends bool
	stats          []taskStats
	err            error
	loading        bool
	width          int
	height         int
}

// New creates a statistics view backed by the tracker.
func New(trk *tracker.Tracker, ignoreWeekends bool, width, height int) Model {
	return Model{
		trk:            trk,
		grouping:       model.GroupByWeek,
		ignoreWeekends: ignoreWeekends,
		width:          width,
		height:         height,
	}
}

// Load returns a command that computes statistics for every persisted task
// in the schedule as of the given logical date.
func (m *Model) Load(s *schedule.Schedule, asOf clock.Date) tea.Cmd {
	m.loading = true
	trk := m.trk
	grouping := m.grouping
	ignoreWeekends := m.ignoreWeekends

	type taskRef struct {
		uuid string
		name string
	}
	var refs []taskRef
	for _, a := range s.Activities() {
		for _, t := range a.Tasks {
			if t.Persisted() {
				refs = append(refs, taskRef{uuid: t.UUID, name: a.Name + " / " + t.Name})
			}
		}
	}

	return func() tea.Msg {
		ctx := context.Background()
		uuids := make([]string, len(refs))
		for i, r := range refs {
			uuids[i] = r.uuid
		}

		series, err := trk.Aggregate(ctx, uuids, grouping, ignoreWeekends)
		if err != nil {
			return StatsLoadedMsg{err: err}
		}

		stats := make([]taskStats, 0, len(refs))
		for _, r := range refs {
			streak, err := trk.Streak(ctx, r.uuid, asOf)
			if err != nil {
				return StatsLoadedMsg{err: err}
			}
			stats = append(stats, taskStats{
				name:    r.name,
				streak:  streak,
				buckets: series[r.uuid],
			})
		}
		return StatsLoadedMsg{stats: stats}
	}
}

// Grouping returns the active grouping.
func (m Model) Grouping() model.Grouping {
	return m.grouping
}

// CycleGrouping advances to the next grouping; the caller reloads.
func (m *Model) CycleGrouping() {
	for i, g := range groupings {
		if g == m.grouping {
			m.grouping = groupings[(i+1)%len(groupings)]
			return
		}
	}
	m.grouping = groupings[0]
}

// ToggleIgnoreWeekends flips the weekend filter; the caller reloads.
func (m *Model) ToggleIgnoreWeekends() {
	m.ignoreWeekends = !m.ignoreWeekends
}

// Update handles messages for the statistics view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatsLoadedMsg:
		m.loading = false
		m.stats = msg.stats
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" || msg.String() == "q" {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	return m, nil
}

// View renders the statistics.
func (m Model) View() string {
	if m.loading {
		return theme.HelpStyle.Render("Computing statistics...")
	}
	if m.err != nil {
		return theme.ErrorStyle.Render("statistics failed: " + m.err.Error())
	}
	if len(m.stats) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No tracked tasks yet.\nSave the schedule to start tracking.")
	}

	var b strings.Builder
	header := fmt.Sprintf("Completion by %s", m.grouping)
	if m.ignoreWeekends {
		header += " (weekdays only)"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n\n")

	for _, st := range m.stats {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(st.name))
		b.WriteString("  ")
		b.WriteString(theme.StreakStyle(st.streak).Render(fmt.Sprintf("streak %d", st.streak)))
		b.WriteString("\n")
		for _, bucket := range st.buckets {
			b.WriteString(renderBar(bucket))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderBar renders one bucket as a label, bar, and completed/tracked count.
func renderBar(bucket model.Bucket) string {
	filled := int(bucket.Rate() * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := theme.BarStyle.Render(strings.Repeat("█", filled)) +
		theme.BarEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("  %s  %s  %d/%d",
		theme.HourStyle.Render(bucket.Label), bar, bucket.Completed, bucket.Tracked)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
