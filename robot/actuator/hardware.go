package actuator

import (
	"context"
	"fmt"

	"github.com/cherypallysaisurya/robotwalk/go1"
	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// Hardware drives the physical dog over its MQTT link. A grid step becomes
// one timed velocity command; success means the command was dispatched
// without a link error, not that the dog physically arrived. There is no
// closed-loop position feedback in this design.
//
// Mapping: up walks forward, down and backward walk backward, left and
// right are lateral strides. The dog's heading never changes, which is why
// the grid model's facing stays fixed at its construction value.
type Hardware struct {
	dog  *go1.Dog
	gait Gait
}

// NewHardware wraps a connected dog.
func NewHardware(dog *go1.Dog, gait Gait) *Hardware {
	return &Hardware{dog: dog, gait: gait}
}

func (h *Hardware) Backend() engine.Backend {
	return engine.BackendHardware
}

// Step blocks for the command's full duration (network dispatch plus
// movement time). A dispatch failure is returned as-is; there is no retry.
func (h *Hardware) Step(ctx context.Context, dir engine.Direction, speed, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	speed, seconds = h.gait.Resolve(dir, speed, seconds)
	switch dir {
	case engine.Up:
		return h.dog.GoForward(speed, seconds)
	case engine.Down, engine.Backward:
		return h.dog.GoBackward(speed, seconds)
	case engine.Left:
		return h.dog.GoLeft(speed, seconds)
	case engine.Right:
		return h.dog.GoRight(speed, seconds)
	default:
		return fmt.Errorf("actuator: invalid direction %q", string(dir))
	}
}

// Dog exposes the underlying link for telemetry queries.
func (h *Hardware) Dog() *go1.Dog {
	return h.dog
}

func (h *Hardware) Close() error {
	h.dog.Stop()
	return h.dog.Close()
}
