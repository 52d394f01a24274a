package engine

import "fmt"

// Direction is one of the five movement commands accepted by the robot.
// Four of them are grid-absolute; Backward is resolved against the robot's
// current facing.
type Direction string

const (
	Up       Direction = "up"
	Down     Direction = "down"
	Left     Direction = "left"
	Right    Direction = "right"
	Backward Direction = "backward"
)

// Directions lists every valid movement command.
var Directions = []Direction{Up, Down, Left, Right, Backward}

// ParseDirection normalizes a raw command string into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down, Left, Right, Backward:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid direction %q (use up, down, left, right, backward)", s)
	}
}

// Facing is the robot's orientation on the grid. The simulated dog starts
// facing east, matching the physical robot's heading when a run begins.
type Facing string

const (
	North Facing = "north"
	East  Facing = "east"
	South Facing = "south"
	West  Facing = "west"
)

// Delta returns the unit vector for the facing. The y axis points up:
// north is +y, south is -y.
func (f Facing) Delta() (dx, dy int) {
	switch f {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case West:
		return -1, 0
	default: // East
		return 1, 0
	}
}

// Opposite returns the reverse heading.
func (f Facing) Opposite() Facing {
	switch f {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	default:
		return West
	}
}

// Delta resolves the direction into a grid delta. Up/down/left/right are
// absolute and independent of facing; Backward is the one facing-relative
// command and resolves opposite the current heading.
func (d Direction) Delta(facing Facing) (dx, dy int, err error) {
	switch d {
	case Up:
		return 0, 1, nil
	case Down:
		return 0, -1, nil
	case Left:
		return -1, 0, nil
	case Right:
		return 1, 0, nil
	case Backward:
		dx, dy = facing.Opposite().Delta()
		return dx, dy, nil
	default:
		return 0, 0, fmt.Errorf("invalid direction %q", string(d))
	}
}

// Position is a grid cell coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pose is the robot's cell plus its heading.
type Pose struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing Facing `json:"facing"`
}

// Cell returns the pose's grid cell.
func (p Pose) Cell() Position {
	return Position{X: p.X, Y: p.Y}
}

// Backend identifies which actuator variant executed a move.
type Backend string

const (
	BackendSimulator Backend = "simulator"
	BackendHardware  Backend = "hardware"
	BackendMock      Backend = "mock"
)

// Move rejection / acceptance reasons recorded in the move log.
const (
	ReasonSuccess      = "success"
	ReasonBoundary     = "boundary"
	ReasonObstacle     = "obstacle"
	ReasonBadDirection = "bad-direction"
	ReasonDispatched   = "dispatched"
	ReasonOffGrid      = "off-grid"
	ReasonLinkError    = "link-error"
)

// MoveRecord is one entry in the append-only move log. Seq starts at 1 and
// is strictly increasing for the lifetime of the engine, across resets.
type MoveRecord struct {
	Seq       int       `json:"seq"`
	Direction Direction `json:"direction"`
	DX        int       `json:"dx"`
	DY        int       `json:"dy"`
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason"`
	Backend   Backend   `json:"backend"`
	Timestamp int64     `json:"timestamp"`
}

// State is a point-in-time snapshot of the grid, safe to serialize and hand
// to viewers. Walls are sorted row-major for deterministic output.
type State struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Walls  []Position `json:"walls"`
	Pose   Pose       `json:"pose"`
	Start  Position   `json:"start"`
	Trail  []Position `json:"trail"`
	Halted bool       `json:"halted"`
	Moves  int        `json:"moves"`
}
