package actuator

import (
	"context"

	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// Simulated is the no-I/O variant: the grid engine is the authority and the
// only effect of a step is the redraw the program reports to its observers.
// Speed and duration are accepted and ignored.
type Simulated struct{}

// NewSimulated returns the simulator actuator.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Backend() engine.Backend {
	return engine.BackendSimulator
}

func (s *Simulated) Step(ctx context.Context, dir engine.Direction, speed, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return checkDirection(dir)
}

func (s *Simulated) Close() error {
	return nil
}
