package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nhle/timebox/internal/model"
)

// DefaultTemplateName is the schedule file used when no weekday-specific
// template exists.
const DefaultTemplateName = "default_settings.yaml"

// TemplateName returns the file name of the weekday-specific schedule
// template, e.g. "Monday_settings.yaml".
func TemplateName(weekday time.Weekday) string {
	return weekday.String() + "_settings.yaml"
}

// TemplatePath resolves the schedule file to load for a weekday: the
// weekday-specific template if present, otherwise the default template.
// The second return reports whether a weekday-specific file was found.
func TemplatePath(dir string, weekday time.Weekday) (string, bool) {
	p := filepath.Join(dir, TemplateName(weekday))
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return filepath.Join(dir, DefaultTemplateName), false
}

// LoadFile reads a YAML schedule file and parses it into a Schedule.
func LoadFile(path string, dayStartHour int) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule %s: %w", path, err)
	}

	var raw []model.RawActivity
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedError{Reason: fmt.Sprintf("parsing %s", path), Err: err}
	}

	s, err := Load(raw, dayStartHour)
	if err != nil {
		return nil, fmt.Errorf("loading schedule %s: %w", path, err)
	}
	return s, nil
}

// SaveFile writes the schedule to a YAML file, creating parent directories
// if needed. Saving always emits activity ids, so a legacy file is upgraded
// in place on its first save.
func SaveFile(path string, s *Schedule) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating schedule directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(s.Serialize())
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schedule %s: %w", path, err)
	}
	return nil
}
