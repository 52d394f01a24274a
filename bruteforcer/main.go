package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Pose struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing"`
}

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

type StateResponse struct {
	Mode      string `json:"mode"`
	Backend   string `json:"backend"`
	UsingMock bool   `json:"using_mock"`
	State     State  `json:"state"`
}

type BulkMoveResponse struct {
	MovesExecuted  int    `json:"moves_executed"`
	RequestedMoves int    `json:"requested_moves"`
	Results        []bool `json:"results"`
	State          State  `json:"state"`
}

type ResetResponse struct {
	Message string `json:"message"`
	State   State  `json:"state"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) GetState() (*State, error) {
	resp, err := c.client.Get(c.baseURL + "/api/state")
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(body))
	}

	var sr StateResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &sr.State, nil
}

func (c *Client) Reset() (*State, error) {
	resp, err := c.client.Post(c.baseURL+"/api/reset", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to reset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reset failed: %s - %s", resp.Status, string(body))
	}

	var rr ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("failed to decode reset response: %w", err)
	}
	return &rr.State, nil
}

func (c *Client) BulkMove(moves []string) (*BulkMoveResponse, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"moves": moves,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moves: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/api/bulk-move", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to submit moves: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bulk move failed: %s - %s", resp.Status, string(body))
	}

	var br BulkMoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("failed to decode bulk move response: %w", err)
	}
	return &br, nil
}

// solvePath runs a breadth-first search from the robot's position to the
// target and returns the move sequence, or nil if the target is unreachable.
func solvePath(state *State, target Position) []string {
	type step struct {
		dir string
		dx  int
		dy  int
	}
	// y grows upward, so "up" increases y
	steps := []step{
		{"up", 0, 1},
		{"down", 0, -1},
		{"left", -1, 0},
		{"right", 1, 0},
	}

	blocked := make(map[Position]bool, len(state.Walls))
	for _, w := range state.Walls {
		blocked[w] = true
	}

	start := Position{X: state.Pose.X, Y: state.Pose.Y}
	if start == target {
		return []string{}
	}

	type node struct {
		pos  Position
		path []string
	}
	visited := map[Position]bool{start: true}
	queue := []node{{pos: start}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, s := range steps {
			next := Position{X: cur.pos.X + s.dx, Y: cur.pos.Y + s.dy}
			if next.X < 0 || next.X >= state.Width || next.Y < 0 || next.Y >= state.Height {
				continue
			}
			if blocked[next] || visited[next] {
				continue
			}
			path := make([]string, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			path = append(path, s.dir)
			if next == target {
				return path
			}
			visited[next] = true
			queue = append(queue, node{pos: next, path: path})
		}
	}
	return nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Robot server URL")
	targetX := flag.Int("x", -1, "Target X coordinate")
	targetY := flag.Int("y", -1, "Target Y coordinate")
	batchSize := flag.Int("batch", 0, "Submit moves in batches of this size (0 = all at once)")
	delayMs := flag.Int("delay", 0, "Delay between batches in milliseconds")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	client := NewClient(*serverURL)

	log.Printf("🤖 Robot path solver")
	log.Printf("Server: %s", *serverURL)

	state, err := client.GetState()
	if err != nil {
		log.Fatalf("Failed to get state: %v", err)
	}
	log.Printf("Grid: %dx%d, Walls: %d, Robot: (%d,%d)",
		state.Width, state.Height, len(state.Walls), state.Pose.X, state.Pose.Y)

	target := Position{X: *targetX, Y: *targetY}
	if target.X < 0 || target.Y < 0 {
		// Default to the far corner
		target = Position{X: state.Width - 1, Y: state.Height - 1}
		log.Printf("No target given, using far corner (%d,%d)", target.X, target.Y)
	}
	if target.X >= state.Width || target.Y >= state.Height {
		log.Fatalf("Target (%d,%d) is outside the %dx%d grid",
			target.X, target.Y, state.Width, state.Height)
	}

	if state.Halted || state.Moves > 0 {
		log.Printf("🔄 Resetting robot...")
		state, err = client.Reset()
		if err != nil {
			log.Fatalf("Failed to reset: %v", err)
		}
		log.Printf("Reset - Position: (%d,%d)", state.Pose.X, state.Pose.Y)
	}

	path := solvePath(state, target)
	if path == nil {
		log.Printf("❌ Target (%d,%d) is unreachable from (%d,%d)",
			target.X, target.Y, state.Pose.X, state.Pose.Y)
		os.Exit(1)
	}
	if len(path) == 0 {
		log.Printf("🎉 Robot is already at the target (%d,%d)", target.X, target.Y)
		os.Exit(0)
	}

	log.Printf("Path found: %d moves", len(path))
	if *verbose {
		log.Printf("Moves: %v", path)
	}

	batch := *batchSize
	if batch <= 0 {
		batch = len(path)
	}

	executed := 0
	for i := 0; i < len(path); i += batch {
		end := i + batch
		if end > len(path) {
			end = len(path)
		}

		resp, err := client.BulkMove(path[i:end])
		if err != nil {
			log.Fatalf("Failed to submit moves: %v", err)
		}
		executed += resp.MovesExecuted
		state = &resp.State

		if *verbose {
			log.Printf("Batch %d-%d: executed=%d/%d position=(%d,%d)",
				i+1, end, resp.MovesExecuted, resp.RequestedMoves,
				state.Pose.X, state.Pose.Y)
		}

		if state.Halted {
			log.Printf("⚠️  Robot stopped at (%d,%d) after %d moves",
				state.Pose.X, state.Pose.Y, executed)
			os.Exit(1)
		}

		if *delayMs > 0 && end < len(path) {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
	}

	if state.Pose.X == target.X && state.Pose.Y == target.Y {
		log.Printf("🎉 Target reached in %d moves: (%d,%d)", executed, state.Pose.X, state.Pose.Y)
		os.Exit(0)
	}

	log.Printf("❌ Ended at (%d,%d), expected (%d,%d)",
		state.Pose.X, state.Pose.Y, target.X, target.Y)
	os.Exit(1)
}
