package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cherypallysaisurya/robotwalk/go1"
	"github.com/cherypallysaisurya/robotwalk/robot/engine"
	"github.com/cherypallysaisurya/robotwalk/robot/program"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Robot Walk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Robot Walk - MCP Interface

This is a thin client that proxies all requests to the REST API server.

THE ROBOT:
One robot lives on a grid. In simulator mode an illegal move (boundary,
wall, unknown direction) stops the run until reset. In real mode the same
commands drive a physical quadruped (or a mock stand-in when the robot is
unreachable) and every dispatched move reports success.

AVAILABLE TOOLS:
- robot_state: Get the grid, robot position, trail, and move count
- robot_status: Get mode, backend, and stopped flag
- move: Single step (up/down/left/right/backward) - requires intent explanation
- bulk_move: Multiple steps at once - requires intent explanation
- reset_robot: Return the robot to its start position
- move_log: View past moves with pagination
- add_wall: Place a wall on the grid
- load_maze: Replace the grid with a maze layout
- hardware_status: Battery and firmware telemetry (hardware backend only)
- robot_instructions: Get comprehensive usage instructions

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Robot state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_state",
		Description: "Get the current grid, robot position, trail, and move count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRobotState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_status",
		Description: "Get the run mode, active backend, and stopped flag",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRobotStatus)

	// Movement
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the robot one step in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right", "backward"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"speed": map[string]interface{}{
					"type":        "number",
					"description": "Stride speed between 0 and 1 (real mode only, optional)",
				},
				"seconds": map[string]interface{}{
					"type":        "number",
					"description": "Stride duration in seconds (real mode only, optional)",
				},
			},
			Required: []string{"direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple steps in sequence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right", "backward"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_robot",
		Description: "Return the robot to its start position and clear the stop",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_log",
		Description: "Get the move log with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
		},
	}, c.handleMoveLog)

	// World setup
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_wall",
		Description: "Place a wall at a grid cell. Fails on the robot's cell or outside the grid.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the wall (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate of the wall (0-based, y grows upward)",
				},
			},
			Required: []string{"x", "y"},
		},
	}, c.handleAddWall)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_maze",
		Description: "Replace the grid with a maze layout. Rows use '.' for empty, '#' for wall, 'S' for the start marker; the first row is the top of the grid.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Maze rows, top row first",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Server-side path to a maze file (alternative to layout)",
				},
			},
		},
	}, c.handleLoadMaze)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hardware_status",
		Description: "Get battery and firmware telemetry from the physical robot. Only available on the hardware backend.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleHardwareStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_instructions",
		Description: "Get comprehensive usage instructions and movement rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleRobotState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var update program.Update
	err := c.apiCall("GET", "/api/state", nil, &update)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatUpdate(&update)), nil
}

func (c *Client) handleRobotStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status struct {
		Mode      string         `json:"mode"`
		Backend   string         `json:"backend"`
		UsingMock bool           `json:"using_mock"`
		Position  map[string]int `json:"position"`
		Facing    string         `json:"facing"`
		Stopped   bool           `json:"stopped"`
	}

	err := c.apiCall("GET", "/api/status", nil, &status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Mode: %s\nBackend: %s\nPosition: (%d,%d) facing %s\nStopped: %v\n",
		status.Mode, status.Backend, status.Position["x"], status.Position["y"], status.Facing, status.Stopped)
	if status.UsingMock {
		result += "NOTE: the physical robot was unreachable; moves are dispatched to the mock fallback.\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)
	intent, _ := args["intent"].(string)
	speed, _ := args["speed"].(float64)
	seconds, _ := args["seconds"].(float64)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"direction": direction,
		"speed":     speed,
		"seconds":   seconds,
	}

	var result moveResponse
	err := c.apiCall("POST", "/api/move", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResponse(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	movesRaw, _ := args["moves"].([]interface{})
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	// Convert moves to string array
	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result bulkMoveResponse
	err := c.apiCall("POST", "/api/bulk-move", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResponse(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Message string       `json:"message"`
		State   engine.State `json:"state"`
	}

	err := c.apiCall("POST", "/api/reset", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatState(&response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	path := "/api/log"
	params := []string{}
	if page, ok := args["page"].(float64); ok && page > 0 {
		params = append(params, fmt.Sprintf("page=%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		params = append(params, fmt.Sprintf("limit=%d", int(limit)))
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var response struct {
		Moves      []engine.MoveRecord `json:"moves"`
		TotalMoves int                 `json:"total_moves"`
		Page       int                 `json:"page"`
		Limit      int                 `json:"limit"`
	}

	err := c.apiCall("GET", path, nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLog(response.Moves, response.TotalMoves, response.Page)), nil
}

func (c *Client) handleAddWall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)

	body := map[string]int{"x": int(x), "y": int(y)}

	var response struct {
		Message string       `json:"message"`
		State   engine.State `json:"state"`
	}

	err := c.apiCall("POST", "/api/walls", body, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatState(&response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleLoadMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	body := map[string]interface{}{}
	if layoutRaw, ok := args["layout"].([]interface{}); ok {
		layout := make([]string, 0, len(layoutRaw))
		for _, row := range layoutRaw {
			if line, ok := row.(string); ok {
				layout = append(layout, line)
			}
		}
		body["layout"] = layout
	}
	if path, ok := args["path"].(string); ok && path != "" {
		body["path"] = path
	}

	var response struct {
		Message string       `json:"message"`
		State   engine.State `json:"state"`
	}

	err := c.apiCall("POST", "/api/maze", body, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatState(&response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHardwareStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Host     string    `json:"host"`
		BMS      go1.BMS   `json:"bms"`
		Firmware go1.Robot `json:"firmware"`
	}

	err := c.apiCall("GET", "/api/hardware", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf(`Robot Hardware:
  Host: %s
  Product: %s
  Serial: %s
  Versions: hw %s / sw %s
  Battery: %d%% (%d mV, %d mA, %d cycles)
`,
		response.Host,
		response.Firmware.Product,
		response.Firmware.SerialID,
		response.Firmware.HardwareVersion, response.Firmware.SoftwareVersion,
		response.BMS.SoC, response.BMS.Voltage, response.BMS.Current, response.BMS.Cycles)

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `ROBOT WALK - USAGE INSTRUCTIONS

THE GRID:
The robot lives on a width x height grid. Coordinates are 0-based and the
y axis points up: (0,0) is the bottom-left cell. Maze layouts are written
top row first, so the first layout row is the highest y.

DIRECTIONS:
- up:       y + 1
- down:     y - 1
- left:     x - 1
- right:    x + 1
- backward: one step opposite the robot's facing (the facing never changes)

SIMULATOR MODE:
The grid is authoritative. A move into a boundary, a wall, or with an
unknown direction fails, is logged, and STOPS the run: every later move
fails until reset_robot. Walk the grid with robot_state before long
sequences.

REAL MODE:
The same commands drive a physical quadruped over the network. Commands
that dispatch report success even when the grid mirror says the square is
off-grid; the mirror simply stays put and records the attempt. When the
robot is unreachable at startup a mock stand-in takes over automatically,
so programs behave identically with and without hardware.

WORKFLOW:
1. robot_state to see the grid
2. add_wall / load_maze to set up the world
3. move / bulk_move to drive (explain intent!)
4. move_log to review what happened
5. reset_robot after a collision

LEGEND (robot_state):
  R = robot    S = start    # = wall    * = visited    . = empty
`

	return mcp.NewToolResultText(instructions), nil
}

// Response shapes mirrored from the REST API

type moveResponse struct {
	Success bool               `json:"success"`
	State   engine.State       `json:"state"`
	Move    *engine.MoveRecord `json:"move"`
}

type bulkMoveResponse struct {
	MovesExecuted  int          `json:"moves_executed"`
	RequestedMoves int          `json:"requested_moves"`
	Results        []bool       `json:"results"`
	State          engine.State `json:"state"`
}

// Formatting helpers

func formatUpdate(u *program.Update) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Mode: %s | Backend: %s", u.Mode, u.Backend))
	if u.UsingMock {
		sb.WriteString(" (mock fallback)")
	}
	sb.WriteString("\n\n")
	sb.WriteString(formatState(&u.State))

	if u.LastMove != nil {
		sb.WriteString("\nLast move:\n")
		sb.WriteString(formatMoveLine(*u.LastMove))
	}

	return sb.String()
}

func formatState(s *engine.State) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Grid %dx%d | Robot (%d,%d) facing %s | Moves: %d",
		s.Width, s.Height, s.Pose.X, s.Pose.Y, s.Pose.Facing, s.Moves))
	if s.Halted {
		sb.WriteString(" | STOPPED (reset to continue)")
	}
	sb.WriteString("\n\n")

	sb.WriteString(renderGrid(s))

	possible := possibleMoves(s)
	if len(possible) > 0 && !s.Halted {
		sb.WriteString(fmt.Sprintf("\nPossible moves: %s\n", strings.Join(possible, ", ")))
	}

	return sb.String()
}

// renderGrid draws the grid top row first. The y axis points up, so the
// printed top row is y = height-1.
func renderGrid(s *engine.State) string {
	walls := make(map[engine.Position]bool, len(s.Walls))
	for _, w := range s.Walls {
		walls[w] = true
	}
	visited := make(map[engine.Position]bool, len(s.Trail))
	for _, p := range s.Trail {
		visited[p] = true
	}

	var sb strings.Builder
	for y := s.Height - 1; y >= 0; y-- {
		for x := 0; x < s.Width; x++ {
			pos := engine.Position{X: x, Y: y}
			switch {
			case s.Pose.X == x && s.Pose.Y == y:
				sb.WriteByte('R')
			case walls[pos]:
				sb.WriteByte('#')
			case s.Start.X == x && s.Start.Y == y:
				sb.WriteByte('S')
			case visited[pos]:
				sb.WriteByte('*')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func possibleMoves(s *engine.State) []string {
	walls := make(map[engine.Position]bool, len(s.Walls))
	for _, w := range s.Walls {
		walls[w] = true
	}

	open := func(x, y int) bool {
		if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
			return false
		}
		return !walls[engine.Position{X: x, Y: y}]
	}

	var moves []string
	if open(s.Pose.X, s.Pose.Y+1) {
		moves = append(moves, "up")
	}
	if open(s.Pose.X, s.Pose.Y-1) {
		moves = append(moves, "down")
	}
	if open(s.Pose.X-1, s.Pose.Y) {
		moves = append(moves, "left")
	}
	if open(s.Pose.X+1, s.Pose.Y) {
		moves = append(moves, "right")
	}
	return moves
}

func formatMoveLine(m engine.MoveRecord) string {
	status := "FAIL"
	if m.Success {
		status = "OK"
	}
	return fmt.Sprintf("  #%d %s (%d,%d)->(%d,%d) [%s] %s\n",
		m.Seq, m.Direction, m.From.X, m.From.Y, m.To.X, m.To.Y, status, m.Reason)
}

func formatMoveResponse(r *moveResponse) string {
	var sb strings.Builder

	if r.Success {
		sb.WriteString("Move OK\n")
	} else {
		sb.WriteString("Move FAILED")
		if r.Move != nil {
			sb.WriteString(fmt.Sprintf(" (%s)", r.Move.Reason))
		}
		sb.WriteString("\n")
	}

	if r.Move != nil {
		sb.WriteString(formatMoveLine(*r.Move))
	}
	sb.WriteString("\n")
	sb.WriteString(formatState(&r.State))

	return sb.String()
}

func formatBulkMoveResponse(r *bulkMoveResponse) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Executed %d of %d requested moves\n", r.MovesExecuted, r.RequestedMoves))
	if len(r.Results) < r.RequestedMoves {
		sb.WriteString(fmt.Sprintf("Run stopped after move %d; remaining moves were not attempted\n", len(r.Results)))
	}
	sb.WriteString("\n")
	sb.WriteString(formatState(&r.State))

	return sb.String()
}

func formatLog(moves []engine.MoveRecord, total, page int) string {
	if total == 0 {
		return "No moves recorded yet.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Move log (page %d, %d of %d total):\n\n", page, len(moves), total))
	for _, m := range moves {
		sb.WriteString(formatMoveLine(m))
	}
	return sb.String()
}
