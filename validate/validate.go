// Command validate provides a small CLI that validates maze layout text
// files before they are handed to students. It checks:
//   - Rectangular shape and allowed characters (., #, S)
//   - At most one start marker
//   - The start cell is not walled in
//   - Connectivity: every open cell is reachable from the start, so a
//     student's robot can never be asked to visit a sealed-off area
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateMaze loads and validates a single maze layout file. Structural
// checks come from the engine's parser; connectivity is checked here with a
// flood fill from the start cell.
func validateMaze(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	layout, err := engine.LoadMazeFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	maze, err := engine.ParseMaze(layout)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Layout error: %v", err))
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Structure: %dx%d grid, %d walls", maze.Width, maze.Height, len(maze.Walls)))

	start := engine.Position{X: 0, Y: 0}
	if maze.Start != nil {
		start = *maze.Start
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Start marker at (%d,%d)", start.X, start.Y))
	} else {
		result.Errors = append(result.Errors, "Note: no start marker, robots keep their configured start")
	}

	walls := make(map[engine.Position]bool, len(maze.Walls))
	for w := range maze.Walls {
		walls[w] = true
	}

	if walls[start] {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Start cell (%d,%d) is inside a wall", start.X, start.Y))
		return result
	}

	unreachable := unreachableCells(maze, walls, start)
	if len(unreachable) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d open cells unreachable from start", len(unreachable)))
		for _, cell := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: (%d,%d)", cell.X, cell.Y))
		}
	} else {
		open := maze.Width*maze.Height - len(maze.Walls)
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: all %d open cells reachable from start", open))
	}

	return result
}

// unreachableCells flood-fills from start over open cells and returns the
// open cells the fill never touched.
func unreachableCells(maze *engine.Maze, walls map[engine.Position]bool, start engine.Position) []engine.Position {
	visited := make(map[engine.Position]bool)
	queue := []engine.Position{start}

	open := func(p engine.Position) bool {
		if p.X < 0 || p.X >= maze.Width || p.Y < 0 || p.Y >= maze.Height {
			return false
		}
		return !walls[p]
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		neighbors := []engine.Position{
			{X: current.X - 1, Y: current.Y},
			{X: current.X + 1, Y: current.Y},
			{X: current.X, Y: current.Y - 1},
			{X: current.X, Y: current.Y + 1},
		}
		for _, n := range neighbors {
			if !visited[n] && open(n) {
				queue = append(queue, n)
			}
		}
	}

	var unreachable []engine.Position
	for y := 0; y < maze.Height; y++ {
		for x := 0; x < maze.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if !walls[p] && !visited[p] {
				unreachable = append(unreachable, p)
			}
		}
	}
	return unreachable
}

// main scans the maze directory for *.txt files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	mazeDir := flag.String("dir", "levels", "Directory containing maze layout files")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join(*mazeDir, "*.txt"))
		if err != nil {
			fmt.Printf("Error finding maze files: %v\n", err)
			os.Exit(1)
		}
	}

	if len(files) == 0 {
		fmt.Printf("No maze files found in %s\n", *mazeDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateMaze(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All mazes are valid!")
	} else {
		fmt.Println("❌ Some mazes have errors")
		os.Exit(1)
	}
}
