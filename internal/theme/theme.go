package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top bar with the date and current time.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// HourStyle renders the hour gutter on the timeline.
var HourStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// NowMarkerStyle renders the current-time marker line.
var NowMarkerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// CardState classifies an activity card relative to the current time.
type CardState int

const (
	CardUpcoming CardState = iota
	CardActive
	CardFinished
)

// CardStyle returns the color-coded style for an activity card.
func CardStyle(state CardState, selected bool) lipgloss.Style {
	base := lipgloss.NewStyle().PaddingLeft(2)
	if selected {
		base = lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorBlue)
	}

	switch state {
	case CardActive:
		return base.Foreground(ColorGreen)
	case CardFinished:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorWhite)
	}
}

// TaskMarkStyle returns the style for a task's done checkbox.
func TaskMarkStyle(done bool) lipgloss.Style {
	if done {
		return lipgloss.NewStyle().Foreground(ColorGreen)
	}
	return lipgloss.NewStyle().Foreground(ColorYellow)
}

// StreakStyle color-codes a streak count.
func StreakStyle(streak int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case streak >= 7:
		return base.Foreground(ColorGreen)
	case streak >= 3:
		return base.Foreground(ColorYellow)
	case streak > 0:
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// BarStyle renders a filled portion of a statistics bar.
var BarStyle = lipgloss.NewStyle().Foreground(ColorBlue)

// BarEmptyStyle renders the unfilled remainder of a statistics bar.
var BarEmptyStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

// ConflictStyle highlights overlap warnings in the move flow.
var ConflictStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorOrange)

// ErrorStyle renders inline error text.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)
