// Package config holds the explicit configuration for a robot program.
//
// There are no package-level mutable settings: callers build a Config (or
// start from Default) and hand it to the program facade. The only ambient
// input is a small set of environment variables, read once by FromEnv so
// instructors can flip a class between simulator and hardware without
// touching student code.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Mode selects the backend family at construction time.
type Mode string

const (
	ModeSimulator Mode = "simulator"
	ModeReal      Mode = "real"
)

// Environment variables honored by FromEnv. They are read once; later
// changes to the process environment have no effect on a built Config.
const (
	EnvMode         = "ROBOT_MODE"
	EnvHost         = "ROBOT_HOST"
	EnvHardwareMock = "ROBOT_HARDWARE_MOCK"
)

var (
	ErrBadMode  = errors.New("unknown mode")
	ErrBadSpeed = errors.New("speed must be in (0, 1]")
	ErrBadTime  = errors.New("duration must be positive")
)

// Config is the full construction-time configuration for a program.
type Config struct {
	Mode Mode `json:"mode"`

	// Grid geometry (simulator grid, and the mirror grid in real mode).
	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`
	StartX     int `json:"start_x"`
	StartY     int `json:"start_y"`

	// Hardware link.
	Host         string        `json:"host"`
	HardwareMock bool          `json:"hardware_mock"`
	ProbeTimeout time.Duration `json:"probe_timeout"`

	// Default gait parameters for timed velocity commands.
	MoveSpeed float64 `json:"move_speed"`
	MoveTime  float64 `json:"move_time"`
	TurnSpeed float64 `json:"turn_speed"`
	TurnTime  float64 `json:"turn_time"`

	// Delay between steps during recorded playback.
	PlaybackDelay time.Duration `json:"playback_delay"`
}

// Default returns the classroom defaults: an 8x8 simulator grid with the
// robot in the bottom-left corner, and the Go1's access-point address for
// real mode.
func Default() *Config {
	return &Config{
		Mode:          ModeSimulator,
		GridWidth:     8,
		GridHeight:    8,
		StartX:        0,
		StartY:        0,
		Host:          "192.168.12.1",
		ProbeTimeout:  3 * time.Second,
		MoveSpeed:     0.3,
		MoveTime:      1.0,
		TurnSpeed:     0.3,
		TurnTime:      1.0,
		PlaybackDelay: 500 * time.Millisecond,
	}
}

// FromEnv overlays the environment overrides onto the config and returns it.
// ROBOT_MODE and ROBOT_HOST replace the corresponding fields when set;
// ROBOT_HARDWARE_MOCK=1 forces the mock backend in real mode regardless of
// hardware availability.
func (c *Config) FromEnv() *Config {
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = Mode(v)
	}
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	if MockOverride() {
		c.HardwareMock = true
	}
	return c
}

// MockOverride reports whether the process-wide hardware mock flag is set in
// the environment. The facade consults it once, at construction.
func MockOverride() bool {
	v := os.Getenv(EnvHardwareMock)
	return v == "1" || v == "true"
}

// Validate fails fast on malformed configuration. Grid bounds on the start
// cell are checked by the engine constructor; this covers everything else.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSimulator, ModeReal:
	default:
		return fmt.Errorf("%w: %q (use %q or %q)", ErrBadMode, c.Mode, ModeSimulator, ModeReal)
	}
	for name, speed := range map[string]float64{"move_speed": c.MoveSpeed, "turn_speed": c.TurnSpeed} {
		if speed <= 0 || speed > 1 {
			return fmt.Errorf("%w: %s=%v", ErrBadSpeed, name, speed)
		}
	}
	for name, d := range map[string]float64{"move_time": c.MoveTime, "turn_time": c.TurnTime} {
		if d <= 0 {
			return fmt.Errorf("%w: %s=%v", ErrBadTime, name, d)
		}
	}
	return nil
}
