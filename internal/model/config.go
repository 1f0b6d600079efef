package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/nhle/timebox/internal/clock"
)

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// TickIntervalSec is how often the timeline refreshes and the rollover
	// check runs.
	TickIntervalSec int `mapstructure:"tick_interval_sec" yaml:"tick_interval_sec"`

	// SnapMinutes rounds requested move times to this granularity. Zero
	// disables snapping.
	SnapMinutes int `mapstructure:"snap_minutes" yaml:"snap_minutes"`
}

// NotifyConfig holds Gotify push settings. Both fields empty disables
// notifications.
type NotifyConfig struct {
	GotifyURL   string `mapstructure:"gotify_url" yaml:"gotify_url"`
	GotifyToken string `mapstructure:"gotify_token" yaml:"gotify_token"`
}

// StatsConfig holds statistics preferences.
type StatsConfig struct {
	IgnoreWeekends bool `mapstructure:"ignore_weekends" yaml:"ignore_weekends"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DayStartHour defines when a logical day begins, in [0, 23].
	DayStartHour int `mapstructure:"day_start_hour" yaml:"day_start_hour"`

	// ScheduleDir is where weekday schedule templates live.
	ScheduleDir string `mapstructure:"schedule_dir" yaml:"schedule_dir"`

	// DBPath is the completion-history sqlite database location.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Notify  NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	Stats   StatsConfig   `mapstructure:"stats" yaml:"stats"`
}

// Validate checks configuration invariants that later layers rely on.
func (c *AppConfig) Validate() error {
	if c.DayStartHour < 0 || c.DayStartHour > 23 {
		return fmt.Errorf("config: %w (got %d)", clock.ErrInvalidDayStart, c.DayStartHour)
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/timebox/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "timebox", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &AppConfig{
		DayStartHour: 0,
		ScheduleDir:  filepath.Join(home, ".config", "timebox", "schedules"),
		DBPath:       filepath.Join(home, ".config", "timebox", "history.db"),
		Display: DisplayConfig{
			TickIntervalSec: 1,
			SnapMinutes:     5,
		},
		Stats: StatsConfig{
			IgnoreWeekends: false,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("day_start_hour", defaults.DayStartHour)
	v.SetDefault("schedule_dir", defaults.ScheduleDir)
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("display.tick_interval_sec", defaults.Display.TickIntervalSec)
	v.SetDefault("display.snap_minutes", defaults.Display.SnapMinutes)
	v.SetDefault("stats.ignore_weekends", defaults.Stats.IgnoreWeekends)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaults
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("day_start_hour", cfg.DayStartHour)
	v.Set("schedule_dir", cfg.ScheduleDir)
	v.Set("db_path", cfg.DBPath)
	v.Set("display", cfg.Display)
	v.Set("notify", cfg.Notify)
	v.Set("stats", cfg.Stats)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
