package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Maze layout symbols. Anything else parses as empty space, since walls
// are the only collision-relevant symbol.
const (
	MazeEmpty = '.'
	MazeWall  = '#'
	MazeStart = 'S'
)

// ErrMazeFormat marks malformed maze layouts: ragged rows or more than one
// start marker.
var ErrMazeFormat = errors.New("invalid maze layout")

// Maze is the parse result of a symbolic layout.
type Maze struct {
	Width  int
	Height int
	Walls  map[Position]struct{}
	Start  *Position
}

// ParseMaze converts a symbolic layout into walls and an optional start
// cell. Row 0 of the layout is the top of the grid; parsed coordinates use
// the engine's y-up convention, so a symbol at row r maps to y = height-1-r.
func ParseMaze(layout []string) (*Maze, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrMazeFormat)
	}

	height := len(layout)
	width := len([]rune(layout[0]))

	m := &Maze{
		Width:  width,
		Height: height,
		Walls:  make(map[Position]struct{}),
	}

	for r, row := range layout {
		// Columns are counted in runes so a stray multi-byte symbol does
		// not shift the coordinates of everything after it.
		cells := []rune(row)
		if len(cells) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrMazeFormat, r, len(cells), width)
		}
		for c, sym := range cells {
			y := height - 1 - r
			switch sym {
			case MazeWall:
				m.Walls[Position{X: c, Y: y}] = struct{}{}
			case MazeStart:
				if m.Start != nil {
					return nil, fmt.Errorf("%w: multiple start markers (row %d)", ErrMazeFormat, r)
				}
				m.Start = &Position{X: c, Y: y}
			}
		}
	}

	return m, nil
}

// LoadMazeFile reads a layout from a text file, one row per line.
func LoadMazeFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze file: %w", err)
	}
	var layout []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		layout = append(layout, strings.TrimRight(line, "\r"))
	}
	return layout, nil
}

// LoadMaze replaces the grid with a parsed layout. The wall set and
// dimensions come from the layout; the robot is repositioned at the start
// marker when one is present, otherwise it keeps the construction start.
// Loading reinitializes the run (halt flag cleared, trail restarted) while
// the cumulative move log is kept.
func (e *Engine) LoadMaze(layout []string) error {
	m, err := ParseMaze(layout)
	if err != nil {
		return err
	}

	start := e.start.Cell()
	if m.Start != nil {
		start = *m.Start
	}
	if start.X < 0 || start.X >= m.Width || start.Y < 0 || start.Y >= m.Height {
		return fmt.Errorf("%w: (%d, %d) on %dx%d maze", ErrStartOutOfBounds, start.X, start.Y, m.Width, m.Height)
	}
	if _, wall := m.Walls[start]; wall {
		return fmt.Errorf("%w: start (%d, %d) is inside a wall", ErrMazeFormat, start.X, start.Y)
	}

	e.width = m.Width
	e.height = m.Height
	e.walls = m.Walls
	e.start = Pose{X: start.X, Y: start.Y, Facing: e.start.Facing}
	e.pose = e.start
	e.halted = false
	e.trail = []Position{start}
	return nil
}
