// Package config persists the station's startup configuration document
// (§6: team number, USB mode, dashboard command, game data, practice
// timing/audio, joystick locks, window geometry) as YAML: find a config
// location, load it once, fall back to defaults on any error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"station/internal/cli/embedded"
	"station/internal/practice"
)

// fileName is the config document's name under the app data directory.
const fileName = "config.yaml"

// PracticeTiming mirrors practice.Timing in YAML-friendly units (seconds
// rather than time.Duration, which marshals as an opaque integer of
// nanoseconds and isn't hand-editable).
type PracticeTiming struct {
	CountdownSeconds  int `yaml:"countdown_seconds"`
	AutonomousSeconds int `yaml:"autonomous_seconds"`
	DelaySeconds      int `yaml:"delay_seconds"`
	TeleopSeconds     int `yaml:"teleop_seconds"`
}

// ToPractice converts to the runtime representation used by
// practice.Sequencer.
func (t PracticeTiming) ToPractice() practice.Timing {
	return practice.Timing{
		Countdown:  time.Duration(t.CountdownSeconds) * time.Second,
		Autonomous: time.Duration(t.AutonomousSeconds) * time.Second,
		Delay:      time.Duration(t.DelaySeconds) * time.Second,
		Teleop:     time.Duration(t.TeleopSeconds) * time.Second,
	}
}

// PracticeTimingFromPractice converts the runtime representation back to
// the YAML-friendly one, for saving whatever timing is currently active.
func PracticeTimingFromPractice(t practice.Timing) PracticeTiming {
	return PracticeTiming{
		CountdownSeconds:  int(t.Countdown / time.Second),
		AutonomousSeconds: int(t.Autonomous / time.Second),
		DelaySeconds:      int(t.Delay / time.Second),
		TeleopSeconds:     int(t.Teleop / time.Second),
	}
}

// Window is the persisted dev-console window geometry.
type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Document is the full persisted configuration (§6).
type Document struct {
	TeamNumber        int            `yaml:"team_number"`
	UseUSB            bool           `yaml:"use_usb"`
	DashboardCommand  string         `yaml:"dashboard_command,omitempty"`
	GameData          string         `yaml:"game_data,omitempty"`
	PracticeTiming    PracticeTiming `yaml:"practice_timing"`
	PracticeAudio     bool           `yaml:"practice_audio"`
	JoystickLocks     map[string]int `yaml:"joystick_locks,omitempty"`
	JoystickVendorID  uint16         `yaml:"joystick_vendor_id"`
	JoystickProductID uint16         `yaml:"joystick_product_id"`
	Window            Window         `yaml:"window"`
}

// defaultJoystickVendorID and defaultJoystickProductID identify the
// Logitech Gamepad F310 in its DirectInput mode, the most commonly
// paired USB gamepad for driver stations. Operators with a different
// pad override these in the saved document.
const (
	defaultJoystickVendorID  = 0x046d
	defaultJoystickProductID = 0xc216
)

// Default returns the document a first run persists, using the
// sequencer's own default schedule as the source of truth rather than
// duplicating the numbers here.
func Default() Document {
	return Document{
		TeamNumber:        0,
		UseUSB:            false,
		PracticeTiming:    PracticeTimingFromPractice(practice.DefaultTiming()),
		PracticeAudio:     true,
		JoystickLocks:     map[string]int{},
		JoystickVendorID:  defaultJoystickVendorID,
		JoystickProductID: defaultJoystickProductID,
		Window:            Window{Width: 100, Height: 32},
	}
}

// path returns the config document's full path under the app data
// directory.
func path() (string, error) {
	dir, err := embedded.GetAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the persisted document, returning Default() if none exists
// yet or the file can't be parsed. A corrupt or missing config must
// never prevent the station from starting.
func Load() (Document, error) {
	p, err := path()
	if err != nil {
		return Default(), err
	}

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("config: read %s: %w", p, err)
	}

	doc := Default()
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", p, err)
	}
	return doc, nil
}

// Save persists doc, writing to a temp file in the same directory and
// renaming over the destination so a crash mid-write never leaves a
// truncated config file behind (atomic replace).
func Save(doc Document) error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), fileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, p); err != nil {
		return fmt.Errorf("config: rename into place: %w", err)
	}
	return nil
}
