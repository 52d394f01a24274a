package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cherypallysaisurya/robotwalk/api"
	"github.com/cherypallysaisurya/robotwalk/robot/config"
	"github.com/cherypallysaisurya/robotwalk/robot/engine"
	"github.com/cherypallysaisurya/robotwalk/robot/program"
)

// newTestBackend starts a real REST server around a simulator program and
// returns an MCP client pointed at it.
func newTestBackend(t *testing.T) *Client {
	t.Helper()

	cfg := config.Default()
	cfg.GridWidth = 5
	cfg.GridHeight = 5

	prog, err := program.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create program: %v", err)
	}
	t.Cleanup(func() { prog.Close() })

	server := httptest.NewServer(api.NewServer(prog, nil))
	t.Cleanup(server.Close)

	return NewClient(server.URL)
}

func callTool(t *testing.T, client *Client, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) string {
	t.Helper()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil {
		t.Fatalf("%s returned nil result", name)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content in result", name)
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	// Create a test server that returns a known response
	expectedResponse := map[string]interface{}{
		"mode":    "simulator",
		"backend": "simulator",
		"stopped": false,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/status", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["mode"] != expectedResponse["mode"] {
		t.Errorf("Expected mode %v, got %v", expectedResponse["mode"], response["mode"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/state", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/state", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "wall out of bounds"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("POST", "/api/walls", map[string]int{"x": 99, "y": 99}, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 400 response")
	}

	if err.Error() != "wall out of bounds" {
		t.Errorf("Expected the API error message to pass through, got: %v", err)
	}
}

func TestClient_handleRobotState(t *testing.T) {
	client := newTestBackend(t)

	text := callTool(t, client, client.handleRobotState, "robot_state", map[string]interface{}{})

	if !strings.Contains(text, "Grid 5x5") {
		t.Errorf("Expected grid dimensions in result, got: %s", text)
	}

	if !strings.Contains(text, "Robot (0,0)") {
		t.Errorf("Expected robot position in result, got: %s", text)
	}

	// Bottom-left corner of the rendering is the robot
	lines := strings.Split(text, "\n")
	found := false
	for _, line := range lines {
		if line == "R...." {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected rendered bottom row 'R....', got: %s", text)
	}
}

func TestClient_handleMove(t *testing.T) {
	client := newTestBackend(t)

	text := callTool(t, client, client.handleMove, "move", map[string]interface{}{
		"direction": "up",
		"intent":    "testing a single step",
	})

	if !strings.Contains(text, "Move OK") {
		t.Errorf("Expected 'Move OK' in result, got: %s", text)
	}

	if !strings.Contains(text, "Robot (0,1)") {
		t.Errorf("Expected new position (0,1) in result, got: %s", text)
	}
}

func TestClient_handleMove_Collision(t *testing.T) {
	client := newTestBackend(t)

	text := callTool(t, client, client.handleMove, "move", map[string]interface{}{
		"direction": "down",
	})

	if !strings.Contains(text, "Move FAILED") {
		t.Errorf("Expected 'Move FAILED' in result, got: %s", text)
	}

	if !strings.Contains(text, "STOPPED") {
		t.Errorf("Expected stopped marker in result, got: %s", text)
	}
}

func TestClient_handleBulkMove(t *testing.T) {
	client := newTestBackend(t)

	text := callTool(t, client, client.handleBulkMove, "bulk_move", map[string]interface{}{
		"moves":  []interface{}{"up", "right", "up"},
		"intent": "walking a diagonal",
	})

	if !strings.Contains(text, "Executed 3 of 3") {
		t.Errorf("Expected all moves executed, got: %s", text)
	}

	if !strings.Contains(text, "Robot (1,2)") {
		t.Errorf("Expected final position (1,2), got: %s", text)
	}
}

func TestClient_handleReset(t *testing.T) {
	client := newTestBackend(t)

	callTool(t, client, client.handleMove, "move", map[string]interface{}{
		"direction": "down",
	})

	text := callTool(t, client, client.handleReset, "reset_robot", map[string]interface{}{})

	if !strings.Contains(text, "Robot (0,0)") {
		t.Errorf("Expected robot back at (0,0), got: %s", text)
	}

	if strings.Contains(text, "STOPPED") {
		t.Errorf("Expected stop cleared after reset, got: %s", text)
	}
}

func TestClient_handleAddWall(t *testing.T) {
	client := newTestBackend(t)

	text := callTool(t, client, client.handleAddWall, "add_wall", map[string]interface{}{
		"x": float64(1), "y": float64(0),
	})

	if !strings.Contains(text, "Wall added") {
		t.Errorf("Expected wall confirmation, got: %s", text)
	}

	// With a wall at (1,0), right is no longer possible from (0,0)
	if strings.Contains(text, "Possible moves: up, right") {
		t.Errorf("Expected 'right' removed from possible moves, got: %s", text)
	}
}

func TestClient_handleLoadMaze(t *testing.T) {
	client := newTestBackend(t)

	text := callTool(t, client, client.handleLoadMaze, "load_maze", map[string]interface{}{
		"layout": []interface{}{"...", "#.#", "S.."},
	})

	if !strings.Contains(text, "Maze loaded") {
		t.Errorf("Expected maze confirmation, got: %s", text)
	}

	if !strings.Contains(text, "Grid 3x3") {
		t.Errorf("Expected 3x3 grid after load, got: %s", text)
	}
}

func TestClient_handleMoveLog(t *testing.T) {
	client := newTestBackend(t)

	callTool(t, client, client.handleMove, "move", map[string]interface{}{"direction": "up"})
	callTool(t, client, client.handleMove, "move", map[string]interface{}{"direction": "right"})

	text := callTool(t, client, client.handleMoveLog, "move_log", map[string]interface{}{})

	if !strings.Contains(text, "2 of 2 total") {
		t.Errorf("Expected 2 logged moves, got: %s", text)
	}

	if !strings.Contains(text, "#1 up") || !strings.Contains(text, "#2 right") {
		t.Errorf("Expected both moves listed, got: %s", text)
	}
}

func TestClient_handleHardwareStatus_NoLink(t *testing.T) {
	client := newTestBackend(t)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "hardware_status",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleHardwareStatus(context.Background(), request)
	if err != nil {
		t.Fatalf("handleHardwareStatus failed: %v", err)
	}

	if !result.IsError {
		t.Error("Expected tool error when no hardware link is present")
	}
}

func TestClient_handleInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	text := callTool(t, client, client.handleInstructions, "robot_instructions", map[string]interface{}{})

	expectedContent := []string{
		"ROBOT WALK - USAGE INSTRUCTIONS",
		"THE GRID:",
		"DIRECTIONS:",
		"SIMULATOR MODE:",
		"REAL MODE:",
		"WORKFLOW:",
		"LEGEND",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}

func TestFormatState(t *testing.T) {
	state := &engine.State{
		Width:  4,
		Height: 3,
		Walls:  []engine.Position{{X: 1, Y: 1}},
		Pose:   engine.Pose{X: 2, Y: 0, Facing: engine.East},
		Start:  engine.Position{X: 0, Y: 0},
		Trail:  []engine.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		Moves:  2,
	}

	result := formatState(state)

	expectedFields := []string{
		"Grid 4x3",
		"Robot (2,0)",
		"Moves: 2",
		"S*R.",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatState_Stopped(t *testing.T) {
	state := &engine.State{
		Width:  2,
		Height: 2,
		Pose:   engine.Pose{X: 0, Y: 0, Facing: engine.East},
		Start:  engine.Position{X: 0, Y: 0},
		Halted: true,
	}

	result := formatState(state)

	if !strings.Contains(result, "STOPPED") {
		t.Errorf("Expected 'STOPPED' in result, got: %s", result)
	}

	if strings.Contains(result, "Possible moves") {
		t.Errorf("Stopped run should not advertise possible moves, got: %s", result)
	}
}

func TestPossibleMoves(t *testing.T) {
	state := &engine.State{
		Width:  3,
		Height: 3,
		Walls:  []engine.Position{{X: 1, Y: 0}},
		Pose:   engine.Pose{X: 0, Y: 0, Facing: engine.East},
	}

	moves := possibleMoves(state)

	// Corner position: down and left leave the grid, right is walled
	if len(moves) != 1 || moves[0] != "up" {
		t.Errorf("Expected only 'up', got %v", moves)
	}
}

func TestClient_Integration(t *testing.T) {
	// Integration test that verifies the client can be created and initialized without errors
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	// Test that the MCP server has been properly configured with tools
	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}
