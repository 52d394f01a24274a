// Command analyze prints quick, human-readable statistics about saved run
// files. It summarizes grid dimensions, move counts per direction, the
// success ratio, failure reasons, which backend executed the run, and how
// much of the grid the robot actually covered.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cherypallysaisurya/robotwalk/robot/engine"
	"github.com/cherypallysaisurya/robotwalk/robot/program"
)

// RunStats aggregates the numbers printed for one saved run.
type RunStats struct {
	TotalMoves   int
	Successful   int
	Failed       int
	ByDirection  map[engine.Direction]int
	ByReason     map[string]int
	ByBackend    map[engine.Backend]int
	CellsVisited int
	Coverage     float64
}

func main() {
	runDir := flag.String("dir", "runs", "Directory containing saved run files")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join(*runDir, "*.json"))
		if err != nil {
			fmt.Printf("Error finding run files: %v\n", err)
			os.Exit(1)
		}
	}

	if len(files) == 0 {
		fmt.Printf("No run files found in %s\n", *runDir)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeRun(file)
	}
}

func analyzeRun(path string) {
	record, err := program.LoadRun(path)
	if err != nil {
		fmt.Printf("Error reading run: %v\n", err)
		return
	}

	stats := computeStats(record)

	fmt.Printf("Saved: %s\n", record.SavedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Mode: %s\n", record.Mode)
	fmt.Printf("Grid: %d x %d\n", record.State.Width, record.State.Height)
	fmt.Printf("Final position: (%d,%d)\n", record.State.Pose.X, record.State.Pose.Y)
	fmt.Printf("Total moves: %d (%d ok, %d failed)\n", stats.TotalMoves, stats.Successful, stats.Failed)

	if stats.TotalMoves > 0 {
		fmt.Printf("Success ratio: %.0f%%\n", 100*float64(stats.Successful)/float64(stats.TotalMoves))
	}

	fmt.Println("Moves by direction:")
	for _, dir := range []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right, engine.Backward} {
		if n := stats.ByDirection[dir]; n > 0 {
			fmt.Printf("  %-9s %d\n", dir, n)
		}
	}

	if stats.Failed > 0 {
		fmt.Println("Failure reasons:")
		reasons := make([]string, 0, len(stats.ByReason))
		for reason := range stats.ByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Printf("  %-14s %d\n", reason, stats.ByReason[reason])
		}
	}

	for backend, n := range stats.ByBackend {
		fmt.Printf("Backend %s executed %d moves\n", backend, n)
	}

	fmt.Printf("Coverage: %d cells visited (%.0f%% of the grid)\n", stats.CellsVisited, 100*stats.Coverage)

	if record.State.Halted {
		fmt.Println("⚠️  The run ended stopped: the last simulator move collided")
	}
}

// computeStats walks the move log once and derives all reported numbers.
func computeStats(record *program.RunRecord) RunStats {
	stats := RunStats{
		ByDirection: make(map[engine.Direction]int),
		ByReason:    make(map[string]int),
		ByBackend:   make(map[engine.Backend]int),
	}

	for _, m := range record.Log {
		stats.TotalMoves++
		stats.ByDirection[m.Direction]++
		stats.ByBackend[m.Backend]++
		if m.Success {
			stats.Successful++
		} else {
			stats.Failed++
			stats.ByReason[m.Reason]++
		}
	}

	visited := make(map[engine.Position]bool)
	for _, p := range record.State.Trail {
		visited[p] = true
	}
	stats.CellsVisited = len(visited)

	if cells := record.State.Width * record.State.Height; cells > 0 {
		stats.Coverage = float64(stats.CellsVisited) / float64(cells)
	}

	return stats
}
