package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/timebox/internal/app"
	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
	"github.com/nhle/timebox/internal/notify"
	"github.com/nhle/timebox/internal/rollover"
	"github.com/nhle/timebox/internal/schedule"
	"github.com/nhle/timebox/internal/store"
	"github.com/nhle/timebox/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "timebox: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = pflag.String("config", model.DefaultConfigPath(), "config file path")
		scheduleDir = pflag.String("schedule", "", "schedule directory (overrides config)")
		dbPath      = pflag.String("db", "", "sqlite database path (overrides config)")
		nowFlag     = pflag.String("now", "", "freeze the clock at an RFC 3339 instant")
	)
	pflag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *scheduleDir != "" {
		cfg.ScheduleDir = *scheduleDir
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var clk clock.Clock = clock.SystemClock{}
	if *nowFlag != "" {
		instant, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			return fmt.Errorf("parsing --now: %w", err)
		}
		clk = clock.FixedClock{Instant: instant}
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	trk := tracker.New(st, clk, cfg.DayStartHour)

	now := clk.Now()
	today, err := clock.LogicalDate(now, cfg.DayStartHour)
	if err != nil {
		return err
	}

	path, _ := schedule.TemplatePath(cfg.ScheduleDir, today.Weekday())
	sched, err := schedule.LoadFile(path, cfg.DayStartHour)
	if errors.Is(err, os.ErrNotExist) {
		// First run: start with an empty day.
		sched, err = schedule.New(cfg.DayStartHour)
	}
	if err != nil {
		return err
	}

	coord, err := rollover.New(trk, cfg.DayStartHour, cfg.ScheduleDir, now)
	if err != nil {
		return err
	}

	var ntf notify.Notifier = notify.Nop{}
	if cfg.Notify.GotifyURL != "" {
		ntf = notify.NewGotify(cfg.Notify.GotifyURL, cfg.Notify.GotifyToken)
	}

	program := tea.NewProgram(
		app.New(cfg, clk, trk, coord, ntf, sched, path),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("timebox failed: %w", err)
	}
	return nil
}
