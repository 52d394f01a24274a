package actuator

import (
	"context"
	"log"
	"sync"

	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// Mock stands in for the hardware link when the robot is unreachable or
// explicitly disabled. It records every intended command with its resolved
// speed and duration, performs no I/O, and always succeeds, which is what
// keeps student code runnable without a robot on the network.
type Mock struct {
	gait Gait

	mu       sync.Mutex
	commands []Command
}

// NewMock returns a mock actuator using the given gait defaults.
func NewMock(gait Gait) *Mock {
	return &Mock{gait: gait}
}

func (m *Mock) Backend() engine.Backend {
	return engine.BackendMock
}

func (m *Mock) Step(ctx context.Context, dir engine.Direction, speed, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkDirection(dir); err != nil {
		return err
	}

	speed, seconds = m.gait.Resolve(dir, speed, seconds)
	m.mu.Lock()
	m.commands = append(m.commands, Command{Direction: dir, Speed: speed, Seconds: seconds})
	m.mu.Unlock()

	log.Printf("mock actuator: %s (speed=%.2f seconds=%.2f)", dir, speed, seconds)
	return nil
}

// Commands returns a copy of every command recorded so far.
func (m *Mock) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out
}

func (m *Mock) Close() error {
	return nil
}
