// Package actuator abstracts "perform one physical or visual step" behind a
// single capability interface with three variants: Simulated (grid only),
// Hardware (timed velocity commands to the Go1 link), and Mock (logs intent,
// no I/O). The variant is chosen once, at program construction; Select never
// fails just because hardware is absent.
package actuator

import (
	"context"
	"fmt"

	"github.com/cherypallysaisurya/robotwalk/robot/config"
	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// Actuator executes one discrete step. Step blocks until the backend effect
// completes; for hardware that includes the command's full duration.
// Cancellation mid-step is not supported; the context is only consulted
// before dispatch.
type Actuator interface {
	Backend() engine.Backend
	Step(ctx context.Context, dir engine.Direction, speed, seconds float64) error
	Close() error
}

// Command is a resolved step as a backend would execute it.
type Command struct {
	Direction engine.Direction `json:"direction"`
	Speed     float64          `json:"speed"`
	Seconds   float64          `json:"seconds"`
}

// Gait holds the default speed and duration pairs for timed commands.
// Lateral strides (left/right) use the turn pair, matching the slower gait
// the dog needs for sideways steps.
type Gait struct {
	MoveSpeed float64
	MoveTime  float64
	TurnSpeed float64
	TurnTime  float64
}

// GaitFromConfig extracts the gait parameters from a program config.
func GaitFromConfig(cfg *config.Config) Gait {
	return Gait{
		MoveSpeed: cfg.MoveSpeed,
		MoveTime:  cfg.MoveTime,
		TurnSpeed: cfg.TurnSpeed,
		TurnTime:  cfg.TurnTime,
	}
}

// Resolve fills in per-call overrides: zero speed or seconds fall back to
// the gait defaults for the direction. Speed is clamped into (0, 1].
func (g Gait) Resolve(dir engine.Direction, speed, seconds float64) (float64, float64) {
	defSpeed, defSeconds := g.MoveSpeed, g.MoveTime
	if dir == engine.Left || dir == engine.Right {
		defSpeed, defSeconds = g.TurnSpeed, g.TurnTime
	}
	if speed <= 0 {
		speed = defSpeed
	}
	if speed > 1 {
		speed = 1
	}
	if seconds <= 0 {
		seconds = defSeconds
	}
	return speed, seconds
}

func checkDirection(dir engine.Direction) error {
	if _, _, err := dir.Delta(engine.East); err != nil {
		return fmt.Errorf("actuator: %w", err)
	}
	return nil
}
