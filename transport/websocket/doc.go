// Package websocket provides the live state feed for robot viewers.
//
// The websocket package implements:
//   - Real-time broadcast of robot state after every move
//   - Connection lifecycle management with ping/pong keepalive
//   - Non-blocking fan-out that drops slow clients instead of stalling moves
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by dedicated
// read and write goroutines that manage keepalive and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded frames:
//   - {event: "state_update", update: {...}} after each move, reset, or
//     world change
//   - {event: "<name>", data: ...} for custom events
//
// Viewers are read-only. Inbound messages are consumed to service the
// keepalive protocol and otherwise discarded; commands travel over the REST
// or MCP surface, never over the socket.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.Watch(prog)
//	go hub.Run()
//
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Client connects and upgrades
// 2. Connection registered with hub
// 3. Client receives state updates as moves happen
// 4. Disconnection triggers cleanup
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple viewers can connect, disconnect, and receive updates
// simultaneously without blocking the program driving the robot.
package websocket
