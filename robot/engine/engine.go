package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrBadDimensions    = errors.New("grid dimensions must be positive")
	ErrStartOutOfBounds = errors.New("start position outside grid")
	ErrWallOutOfBounds  = errors.New("wall position outside grid")
	ErrWallOnRobot      = errors.New("cannot place wall on the robot's cell")
)

// Engine owns the grid state and is the only place collision and boundary
// logic lives. It is not safe for concurrent use; the program facade
// serializes access.
type Engine struct {
	width  int
	height int
	walls  map[Position]struct{}
	start  Pose
	pose   Pose
	trail  []Position
	halted bool
	log    []MoveRecord
}

// New creates an engine with an empty wall set. The robot starts at
// (startX, startY) facing east.
func New(width, height, startX, startY int) (*Engine, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}
	if startX < 0 || startX >= width || startY < 0 || startY >= height {
		return nil, fmt.Errorf("%w: (%d, %d) on %dx%d grid", ErrStartOutOfBounds, startX, startY, width, height)
	}

	start := Pose{X: startX, Y: startY, Facing: East}
	return &Engine{
		width:  width,
		height: height,
		walls:  make(map[Position]struct{}),
		start:  start,
		pose:   start,
		trail:  []Position{start.Cell()},
	}, nil
}

// Pose returns the current pose by value.
func (e *Engine) Pose() Pose {
	return e.pose
}

// Halted reports whether the simulation froze after an illegal move.
func (e *Engine) Halted() bool {
	return e.halted
}

func (e *Engine) Width() int  { return e.width }
func (e *Engine) Height() int { return e.height }

// HasWall reports whether the cell holds an obstacle.
func (e *Engine) HasWall(x, y int) bool {
	_, ok := e.walls[Position{X: x, Y: y}]
	return ok
}

// InBounds reports whether the cell lies inside the grid.
func (e *Engine) InBounds(x, y int) bool {
	return x >= 0 && x < e.width && y >= 0 && y < e.height
}

// AddWall inserts an obstacle. Adding a wall that already exists is a no-op.
// Walls never retroactively invalidate the robot's pose, but placing one
// under the robot is rejected.
func (e *Engine) AddWall(x, y int) error {
	if !e.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrWallOutOfBounds, x, y)
	}
	if x == e.pose.X && y == e.pose.Y {
		return fmt.Errorf("%w: (%d, %d)", ErrWallOnRobot, x, y)
	}
	e.walls[Position{X: x, Y: y}] = struct{}{}
	return nil
}

// Reset restores the construction pose and clears the halt flag and trail.
// The move log is cumulative and survives resets; sequence numbers keep
// increasing.
func (e *Engine) Reset() {
	e.pose = e.start
	e.halted = false
	e.trail = []Position{e.start.Cell()}
}

// MoveLog returns a copy of the move log.
func (e *Engine) MoveLog() []MoveRecord {
	out := make([]MoveRecord, len(e.log))
	copy(out, e.log)
	return out
}

// Trail returns a copy of the visited cells, starting cell included.
func (e *Engine) Trail() []Position {
	out := make([]Position, len(e.trail))
	copy(out, e.trail)
	return out
}

// Snapshot captures the full grid state for viewers and transports.
func (e *Engine) Snapshot() State {
	walls := make([]Position, 0, len(e.walls))
	for w := range e.walls {
		walls = append(walls, w)
	}
	sort.Slice(walls, func(i, j int) bool {
		if walls[i].Y != walls[j].Y {
			return walls[i].Y < walls[j].Y
		}
		return walls[i].X < walls[j].X
	})

	return State{
		Width:  e.width,
		Height: e.height,
		Walls:  walls,
		Pose:   e.pose,
		Start:  e.start.Cell(),
		Trail:  e.Trail(),
		Halted: e.halted,
		Moves:  len(e.log),
	}
}

func (e *Engine) appendRecord(dir Direction, dx, dy int, from, to Position, success bool, reason string, backend Backend) {
	e.log = append(e.log, MoveRecord{
		Seq:       len(e.log) + 1,
		Direction: dir,
		DX:        dx,
		DY:        dy,
		From:      from,
		To:        to,
		Success:   success,
		Reason:    reason,
		Backend:   backend,
		Timestamp: time.Now().Unix(),
	})
}
