// Package mcp provides the Model Context Protocol surface for the robot.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for robot movement and world setup
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - robot_state: Get current state with grid visualization
//   - robot_status: Get mode, backend, and stopped flag
//   - move: Execute single directional step
//   - bulk_move: Execute multiple steps in sequence
//   - reset_robot: Return the robot to its start position
//   - move_log: Retrieve the move log with pagination
//   - add_wall: Place a wall on the grid
//   - load_maze: Replace the grid with a maze layout
//   - hardware_status: Battery and firmware telemetry
//   - robot_instructions: Usage instructions and movement rules
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Architecture:
//
// The client is a thin proxy: every tool call becomes a REST request
// against the HTTP API, so the MCP surface and the REST surface can never
// disagree about robot behavior. One process drives one robot; there is no
// session management.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Drive the robot through mazes autonomously
//   - Set up worlds and verify them cell by cell
//   - Analyze the move log after a collision
//   - Work identically against the simulator, hardware, or mock backends
package mcp
