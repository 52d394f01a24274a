// Package program binds one actuator variant and one grid engine behind the
// uniform movement surface students code against. The same Move calls drive
// the visual simulator, the physical dog, or the mock fallback; which one is
// decided once, when the program is created.
package program

import (
	"context"
	"fmt"
	"sync"

	"github.com/cherypallysaisurya/robotwalk/go1"
	"github.com/cherypallysaisurya/robotwalk/robot/actuator"
	"github.com/cherypallysaisurya/robotwalk/robot/config"
	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// Update is the snapshot pushed to observers after every state change. It is
// the contract point for the rendering layer: viewers draw it, the program
// never waits on them.
type Update struct {
	Mode      config.Mode        `json:"mode"`
	Backend   engine.Backend     `json:"backend"`
	UsingMock bool               `json:"using_mock"`
	State     engine.State       `json:"state"`
	LastMove  *engine.MoveRecord `json:"last_move,omitempty"`
}

// Program is the student-facing facade. Each instance exclusively owns its
// engine and actuator; a mutex serializes calls because the HTTP and MCP
// transports may drive one program from several goroutines.
type Program struct {
	cfg *config.Config

	mu        sync.Mutex
	eng       *engine.Engine
	act       actuator.Actuator
	usingMock bool
	observers []func(Update)
}

// New builds a program from the config. Configuration errors (bad mode, bad
// grid dimensions, out-of-bounds start, bad gait parameters) fail fast here;
// absent hardware never does, real mode falls back to the mock actuator
// instead. The process-wide mock override is consulted exactly once, now.
func New(cfg *config.Config) (*Program, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program config: %w", err)
	}

	eng, err := engine.New(cfg.GridWidth, cfg.GridHeight, cfg.StartX, cfg.StartY)
	if err != nil {
		return nil, err
	}

	if config.MockOverride() {
		cfg.HardwareMock = true
	}
	act, usingMock := actuator.Select(cfg)

	return &Program{
		cfg:       cfg,
		eng:       eng,
		act:       act,
		usingMock: usingMock,
	}, nil
}

// Move executes one discrete step using the configured gait defaults.
func (p *Program) Move(direction string) bool {
	return p.MoveAt(direction, 0, 0)
}

// MoveAt executes one discrete step with explicit speed and duration. The
// parameters are forwarded to the hardware and mock variants and ignored by
// the simulator; zero values mean "use the gait defaults".
//
// In simulator mode the grid is authoritative: an illegal move returns false
// and halts the run. In real mode the command is dispatched first and the
// grid is only a best-effort mirror; success means the command went out.
func (p *Program) MoveAt(direction string, speed, seconds float64) bool {
	p.mu.Lock()

	dir := engine.Direction(direction)
	var ok bool
	if p.cfg.Mode == config.ModeSimulator {
		ok = p.eng.Apply(dir)
		if ok {
			p.act.Step(context.Background(), dir, speed, seconds)
		}
	} else {
		var dispatched bool
		if _, parseErr := engine.ParseDirection(direction); parseErr == nil {
			dispatched = p.act.Step(context.Background(), dir, speed, seconds) == nil
		}
		ok = p.eng.Track(dir, p.act.Backend(), dispatched)
	}

	update := p.updateLocked()
	p.mu.Unlock()

	p.notify(update)
	return ok
}

// Position returns the current pose by value.
func (p *Program) Position() engine.Pose {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Pose()
}

// Stopped reports whether the simulation halted on an illegal move.
func (p *Program) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Halted()
}

// MoveLog returns a copy of the cumulative move log.
func (p *Program) MoveLog() []engine.MoveRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.MoveLog()
}

// Reset restores the construction pose and clears the halt flag. The move
// log survives, so a full session stays inspectable after resets.
func (p *Program) Reset() {
	p.mu.Lock()
	p.eng.Reset()
	update := p.updateLocked()
	p.mu.Unlock()
	p.notify(update)
}

// AddWall inserts an obstacle into the grid.
func (p *Program) AddWall(x, y int) error {
	p.mu.Lock()
	err := p.eng.AddWall(x, y)
	update := p.updateLocked()
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.notify(update)
	return nil
}

// LoadMaze replaces the grid with a symbolic layout (see engine.ParseMaze).
func (p *Program) LoadMaze(layout []string) error {
	p.mu.Lock()
	err := p.eng.LoadMaze(layout)
	update := p.updateLocked()
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.notify(update)
	return nil
}

// Snapshot returns the current state as an observer update.
func (p *Program) Snapshot() Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateLocked()
}

// UsingMock reports whether the mock fallback was selected in real mode.
func (p *Program) UsingMock() bool {
	return p.usingMock
}

// Mode returns the requested mode.
func (p *Program) Mode() config.Mode {
	return p.cfg.Mode
}

// Backend returns the actuator variant actually in use.
func (p *Program) Backend() engine.Backend {
	return p.act.Backend()
}

// Hardware returns the live robot link when the hardware actuator is in
// use. Simulator and mock programs return false.
func (p *Program) Hardware() (*go1.Dog, bool) {
	hw, ok := p.act.(*actuator.Hardware)
	if !ok {
		return nil, false
	}
	return hw.Dog(), true
}

// OnUpdate registers an observer called after every state change. Observers
// run outside the program lock and must not block for long.
func (p *Program) OnUpdate(fn func(Update)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// Close releases the actuator (and its hardware link, if any).
func (p *Program) Close() error {
	return p.act.Close()
}

func (p *Program) updateLocked() Update {
	u := Update{
		Mode:      p.cfg.Mode,
		Backend:   p.act.Backend(),
		UsingMock: p.usingMock,
		State:     p.eng.Snapshot(),
	}
	if log := p.eng.MoveLog(); len(log) > 0 {
		last := log[len(log)-1]
		u.LastMove = &last
	}
	return u
}

func (p *Program) notify(u Update) {
	p.mu.Lock()
	observers := append(make([]func(Update), 0, len(p.observers)), p.observers...)
	p.mu.Unlock()
	for _, fn := range observers {
		fn(u)
	}
}
