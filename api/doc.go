// Package api provides the HTTP REST surface for driving one robot program.
//
// The api package implements:
//   - RESTful endpoints for movement, reset, and the move log
//   - World setup endpoints (walls, maze files)
//   - Backend status and hardware telemetry reporting
//   - Run recording and replay
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Robot State:
//   - GET /api/state - Full state snapshot (grid, pose, trail, log)
//   - GET /api/status - Mode, backend, position, stopped flag
//   - GET /api/hardware - Battery and firmware telemetry (hardware only)
//
// Movement:
//   - POST /api/move - Execute one step {direction, speed?, seconds?}
//   - POST /api/bulk-move - Execute a list of steps {moves, reset?}
//   - POST /api/reset - Return the robot to its start position
//   - GET /api/log - Move log with pagination
//
// World Setup:
//   - POST /api/walls - Add a wall {x, y}
//   - POST /api/maze - Load a maze {layout} or {path}
//
// Runs:
//   - POST /api/runs - Save the current run to a file {path}
//   - POST /api/playback - Replay the move log to viewers {delay_ms?}
//
// The server wraps exactly one program. There is one robot per process;
// sessions and multi-robot fan-out are out of scope.
package api
