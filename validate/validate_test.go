package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMaze(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "maze.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write maze file: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateMaze_Valid(t *testing.T) {
	path := writeMaze(t, "....\n.##.\nS...\n")

	result := validateMaze(path)
	if !result.Valid {
		t.Errorf("Expected valid maze, but got errors: %v", result.Errors)
	}

	if result.File != filepath.Base(path) {
		t.Errorf("Expected file name %s, got %s", filepath.Base(path), result.File)
	}

	if !hasError(result, "✓ Structure: 4x3 grid, 2 walls") {
		t.Errorf("Expected structure summary, got: %v", result.Errors)
	}

	if !hasError(result, "✓ Start marker at (0,0)") {
		t.Errorf("Expected start marker note, got: %v", result.Errors)
	}
}

func TestValidateMaze_MissingFile(t *testing.T) {
	result := validateMaze("/non/existent/maze.txt")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}

	if !hasError(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateMaze_Ragged(t *testing.T) {
	path := writeMaze(t, "....\n..\n....\n")

	result := validateMaze(path)
	if result.Valid {
		t.Error("Expected invalid maze for ragged rows")
	}

	if !hasError(result, "Layout error") {
		t.Errorf("Expected layout error, got: %v", result.Errors)
	}
}

func TestValidateMaze_DuplicateStart(t *testing.T) {
	path := writeMaze(t, "S..\n..S\n")

	result := validateMaze(path)
	if result.Valid {
		t.Error("Expected invalid maze for duplicate start markers")
	}
}

func TestValidateMaze_NoStartMarker(t *testing.T) {
	path := writeMaze(t, "...\n.#.\n...\n")

	result := validateMaze(path)
	if !result.Valid {
		t.Errorf("A maze without a start marker is still valid, got errors: %v", result.Errors)
	}

	if !hasError(result, "no start marker") {
		t.Errorf("Expected a note about the missing marker, got: %v", result.Errors)
	}
}

func TestValidateMaze_StartInsideWall(t *testing.T) {
	// No start marker, so the default start (0,0) is the bottom-left cell,
	// which this layout walls off.
	path := writeMaze(t, "..\n#.\n")

	result := validateMaze(path)
	if result.Valid {
		t.Error("Expected invalid maze when the start cell is a wall")
	}

	if !hasError(result, "Start cell (0,0) is inside a wall") {
		t.Errorf("Expected start-in-wall error, got: %v", result.Errors)
	}
}

func TestValidateMaze_SealedRegion(t *testing.T) {
	// The top-right cell is sealed off by walls
	path := writeMaze(t, "#.\n##\nS.\n")

	result := validateMaze(path)
	if result.Valid {
		t.Error("Expected invalid maze with a sealed region")
	}

	if !hasError(result, "Connectivity failure") {
		t.Errorf("Expected connectivity failure, got: %v", result.Errors)
	}

	// The sealed cell is the top-right one: x=1, y=2
	if !hasError(result, "Unreachable: (1,2)") {
		t.Errorf("Expected unreachable cell (1,2), got: %v", result.Errors)
	}
}

func TestValidateMaze_FullyConnected(t *testing.T) {
	path := writeMaze(t, "...\n.#.\nS..\n")

	result := validateMaze(path)
	if !result.Valid {
		t.Errorf("Expected valid maze, got errors: %v", result.Errors)
	}

	if !hasError(result, "all 8 open cells reachable") {
		t.Errorf("Expected connectivity summary for 8 open cells, got: %v", result.Errors)
	}
}
