// Package app wires the timeline, move, rollover, and statistics views
// into the root Bubble Tea model and drives the once-per-second tick.
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/keys"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/notify"
	"github.com/nhle/timebox/internal/placement"
	"github.com/nhle/timebox/internal/rollover"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/tracker"
	"github.com/nhle/timebox/internal/ui"
	helpview "github.com/nhle/timebox/internal/ui/help"
	"github.com/nhle/timebox/internal/ui/movecard"
	"github.com/nhle/timebox/internal/ui/rolloverprompt"
	"github.com/nhle/timebox/internal/ui/statsview"
	"github.com/nhle/timebox/internal/ui/timeline"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTimeline ViewState = iota
	ViewMove
	ViewRollover
	ViewStats
	ViewHelp
)

// tickMsg fires once per display tick. It carries no time: the tick is
// only a trigger, and all time reads go through the injected clock so a
// fixed clock freezes the whole pipeline.
type tickMsg struct{}

// doneStatesMsg carries freshly loaded done states for today.
type doneStatesMsg struct {
	states map[string]bool
	err    error
}

// savedMsg reports the result of a schedule save.
type savedMsg struct {
	assigned int
	created  int
	err      error
}

// statusMsg sets a transient status bar message.
type statusMsg struct {
	text string
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg   *model.AppConfig
	clk   clock.Clock
	trk   *tracker.Tracker
	coord *rollover.Coordinator
	ntf   notify.Notifier
	keys  *keys.KeyMap

	schedule     *schedule.Schedule
	schedulePath string

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	timelineView timeline.Model
	moveView     movecard.Model
	rolloverView rolloverprompt.Model
	statsView    statsview.Model
	helpView     helpview.Model

	// pendingMove holds a proposed move awaiting overlap confirmation.
	pendingMove *placement.MoveResult

	today          clock.Date
	lastActivityID string
	status         string
}

// New creates the root application model. The coordinator and tracker are
// expected to share the same clock and day-start configuration.
func New(
	cfg *model.AppConfig,
	clk clock.Clock,
	trk *tracker.Tracker,
	coord *rollover.Coordinator,
	ntf notify.Notifier,
	sched *schedule.Schedule,
	schedulePath string,
) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		cfg:          cfg,
		clk:          clk,
		trk:          trk,
		coord:        coord,
		ntf:          ntf,
		keys:         k,
		schedule:     sched,
		schedulePath: schedulePath,
		currentView:  ViewTimeline,
		timelineView: timeline.New(k, 80, 24),
		moveView:     movecard.New(80, 24),
		rolloverView: rolloverprompt.New(80, 24),
		statsView:    statsview.New(trk, cfg.Stats.IgnoreWeekends, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		today:        coord.LastDate(),
	}
	m.timelineView.SetSchedule(sched)
	return m
}

// tickInterval returns the display tick period from config.
func (m Model) tickInterval() time.Duration {
	sec := m.cfg.Display.TickIntervalSec
	if sec <= 0 {
		sec = 1
	}
	return time.Duration(sec) * time.Second
}

// tick arms the next display tick.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Init resolves task identities, creates today's entries, and starts the
// tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.ensureToday(),
		m.tick(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.timelineView.SetSize(w, h)
		m.moveView.SetSize(w, h)
		m.rolloverView.SetSize(w, h)
		m.statsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m.updateActiveView(msg)

	case tickMsg:
		return m.handleTick()

	case doneStatesMsg:
		if msg.err == nil {
			m.timelineView.SetDoneStates(msg.states)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("schedule saved (%d tasks registered)", msg.assigned)
		return m, m.loadDoneStates()

	case statusMsg:
		m.status = msg.text
		return m, nil

	case timeline.ToggleTaskMsg:
		return m, m.toggleTask(msg)

	case timeline.MoveRequestMsg:
		act, err := m.schedule.Find(msg.ActivityID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewMove
		return m, m.moveView.Start(m.schedule, act, m.cfg.Display.SnapMinutes)

	case timeline.SaveRequestMsg:
		return m, m.saveSchedule()

	case movecard.MoveSubmittedMsg:
		return m.handleMoveSubmitted(msg)

	case movecard.MoveConfirmedMsg:
		if m.pendingMove != nil {
			m.pendingMove.Apply()
			m.pendingMove = nil
			m.timelineView.SetSchedule(m.schedule)
			m.status = "card moved"
		}
		m.currentView = ViewTimeline
		return m, nil

	case movecard.MoveCancelMsg:
		m.pendingMove = nil
		m.currentView = ViewTimeline
		return m, nil

	case rolloverprompt.DecisionMsg:
		return m.handleRolloverDecision(msg.Choice)

	case statsview.CloseMsg:
		m.currentView = ViewTimeline
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that apply regardless of the active view.
// Keys are never global while a form view is active so typing works.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	// Forms own the keyboard.
	if m.currentView == ViewMove || m.currentView == ViewRollover {
		return m, nil, false
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewTimeline {
			return m, tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case "esc":
		if m.currentView != ViewTimeline {
			m.currentView = ViewTimeline
			return m, nil, true
		}

	case "s":
		if m.currentView == ViewTimeline {
			m.previousView = m.currentView
			m.currentView = ViewStats
			return m, m.statsView.Load(m.schedule, m.today), true
		}

	case "g":
		if m.currentView == ViewStats {
			m.statsView.CycleGrouping()
			return m, m.statsView.Load(m.schedule, m.today), true
		}

	case "w":
		if m.currentView == ViewStats {
			m.statsView.ToggleIgnoreWeekends()
			return m, m.statsView.Load(m.schedule, m.today), true
		}
	}

	return m, nil, false
}

// handleTick runs the per-tick pipeline: the rollover check comes first so
// a day transition is settled before anything else reads today's state.
// All time reads use the injected clock, never the wall clock.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	now := m.clk.Now()

	next, prompt, err := m.coord.Check(context.Background(), now, m.schedule)
	if err != nil {
		m.status = "rollover: " + err.Error()
	}
	if next != m.schedule {
		m.schedule = next
		m.timelineView.SetSchedule(next)
	}
	if dayChanged := m.coord.LastDate() != m.today; dayChanged {
		m.today = m.coord.LastDate()
		cmds = append(cmds, m.loadDoneStates())
	}
	if prompt != nil && m.currentView != ViewRollover {
		m.previousView = m.currentView
		m.currentView = ViewRollover
		cmds = append(cmds, m.rolloverView.Start(*prompt))
	}

	offset, err := clock.DayOffset(now, m.cfg.DayStartHour)
	if err == nil {
		m.timelineView.SetNowOffset(offset)
		if cmd := m.notifyActivityChange(offset); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.tick())
	return m, tea.Batch(cmds...)
}

// handleMoveSubmitted proposes the move and routes the result: boundary
// violations reject atomically, overlaps ask for confirmation, clean moves
// apply immediately.
func (m Model) handleMoveSubmitted(msg movecard.MoveSubmittedMsg) (tea.Model, tea.Cmd) {
	result, err := placement.ProposeMove(m.schedule, msg.ActivityID, msg.Request, msg.Mode)
	if err != nil {
		m.status = err.Error()
		m.currentView = ViewTimeline
		return m, nil
	}

	if len(result.Conflicts) > 0 {
		m.pendingMove = result
		return m, m.moveView.StartConfirm(m.conflictNames(result.Conflicts))
	}

	result.Apply()
	m.timelineView.SetSchedule(m.schedule)
	m.status = "card moved"
	m.currentView = ViewTimeline
	return m, nil
}

// conflictNames resolves conflicting activity ids to their names for the
// confirmation view.
func (m Model) conflictNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if act, err := m.schedule.Find(id); err == nil {
			names = append(names, act.Name)
		}
	}
	return names
}

// handleRolloverDecision resolves the pending rollover with the user's
// choice and refreshes everything derived from the schedule.
func (m Model) handleRolloverDecision(choice rollover.Choice) (tea.Model, tea.Cmd) {
	next, err := m.coord.Decide(context.Background(), choice, m.schedule)
	if err != nil {
		m.status = "rollover: " + err.Error()
	}
	m.schedule = next
	m.today = m.coord.LastDate()
	m.timelineView.SetSchedule(next)
	m.currentView = ViewTimeline
	return m, m.loadDoneStates()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTimeline:
		m.timelineView, cmd = m.timelineView.Update(msg)
	case ViewMove:
		m.moveView, cmd = m.moveView.Update(msg)
	case ViewRollover:
		m.rolloverView, cmd = m.rolloverView.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Timebox "+m.today.String(), m.clockStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewTimeline:
		return m.timelineView.View()
	case ViewMove:
		return m.moveView.View()
	case ViewRollover:
		return m.rolloverView.View()
	case ViewStats:
		return m.statsView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// clockStatus renders the header's right side: the wall clock and the
// current activity.
func (m Model) clockStatus() string {
	now := m.clk.Now()
	offset, err := clock.DayOffset(now, m.cfg.DayStartHour)
	if err != nil {
		return now.Format("15:04")
	}
	if act := m.schedule.Current(offset); act != nil {
		return fmt.Sprintf("%s · %s", act.Name, now.Format("15:04"))
	}
	return now.Format("15:04")
}

// keyHints returns keyboard shortcut hints for the status bar. A transient
// status message takes precedence.
func (m Model) keyHints() string {
	if m.status != "" {
		return m.status
	}

	switch m.currentView {
	case ViewMove:
		return "enter submit | esc cancel"
	case ViewRollover:
		return "enter choose | ←/→ switch"
	case ViewStats:
		return "g grouping | w weekends | esc back"
	case ViewHelp:
		return "? close help"
	default:
		return "j/k cards | tab tasks | x done | m move | s stats | ctrl+s save | q quit"
	}
}
