package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cherypallysaisurya/robotwalk/robot/engine"
	"github.com/cherypallysaisurya/robotwalk/robot/program"
	"github.com/cherypallysaisurya/robotwalk/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	prog   *program.Program
	hub    *websocket.Hub
	router *mux.Router
}

// NewServer creates a new API server around one robot program. The hub is
// optional; when present, move and reset handlers broadcast state updates
// through it in addition to the program's own observer feed.
func NewServer(prog *program.Program, hub *websocket.Hub) *Server {
	s := &Server{
		prog:   prog,
		hub:    hub,
		router: mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Robot state
	api.HandleFunc("/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/status", s.handleGetStatus).Methods("GET")
	api.HandleFunc("/hardware", s.handleGetHardware).Methods("GET")

	// Movement
	api.HandleFunc("/move", s.handleMove).Methods("POST")
	api.HandleFunc("/bulk-move", s.handleBulkMove).Methods("POST")
	api.HandleFunc("/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/log", s.handleGetLog).Methods("GET")

	// World setup
	api.HandleFunc("/walls", s.handleAddWall).Methods("POST")
	api.HandleFunc("/maze", s.handleLoadMaze).Methods("POST")

	// Run recording and replay
	api.HandleFunc("/runs", s.handleSaveRun).Methods("POST")
	api.HandleFunc("/playback", s.handlePlayback).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// State Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.prog.Snapshot())
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	pose := s.prog.Position()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":       s.prog.Mode(),
		"backend":    s.prog.Backend(),
		"using_mock": s.prog.UsingMock(),
		"position":   map[string]int{"x": pose.X, "y": pose.Y},
		"facing":     pose.Facing,
		"stopped":    s.prog.Stopped(),
	})
}

func (s *Server) handleGetHardware(w http.ResponseWriter, r *http.Request) {
	dog, ok := s.prog.Hardware()
	if !ok {
		respondError(w, http.StatusNotFound, "No hardware link: program is running on the simulator or mock backend")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"host":     dog.Host(),
		"bms":      dog.BMS(),
		"firmware": dog.Firmware(),
	})
}

// Movement Handlers

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string  `json:"direction"`
		Speed     float64 `json:"speed,omitempty"`
		Seconds   float64 `json:"seconds,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ok := s.prog.MoveAt(req.Direction, req.Speed, req.Seconds)
	update := s.prog.Snapshot()

	// Compact server log for observability
	if m := update.LastMove; m != nil {
		status := "FAIL"
		if m.Success {
			status = "OK"
		}
		fmt.Printf("[MOVE] %s (%d,%d)->(%d,%d) backend=%s reason=%s status=%s\n",
			m.Direction, m.From.X, m.From.Y, m.To.X, m.To.Y, m.Backend, m.Reason, status)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": ok,
		"state":   update.State,
		"move":    update.LastMove,
	})
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Moves []string `json:"moves"`
		Reset bool     `json:"reset,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Reset {
		s.prog.Reset()
	}

	executed := 0
	results := make([]bool, 0, len(req.Moves))
	for _, dir := range req.Moves {
		ok := s.prog.Move(dir)
		results = append(results, ok)
		if ok {
			executed++
		}
		// The simulator stops the run on a failed move; stop submitting
		if !ok && s.prog.Stopped() {
			break
		}
	}

	update := s.prog.Snapshot()
	fmt.Printf("[BULK] exec=%d/%d end=(%d,%d) stopped=%v\n",
		executed, len(req.Moves), update.State.Pose.X, update.State.Pose.Y, update.State.Halted)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"moves_executed":  executed,
		"requested_moves": len(req.Moves),
		"results":         results,
		"state":           update.State,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.prog.Reset()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Robot reset successfully",
		"state":   s.prog.Snapshot().State,
	})
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	log := s.prog.MoveLog()

	// Parse query parameters
	page := 1
	limit := 20
	order := "desc"

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if o := query.Get("order"); o == "asc" || o == "desc" {
		order = o
	}

	total := len(log)
	if order == "desc" {
		reversed := make([]engine.MoveRecord, total)
		for i, m := range log {
			reversed[total-1-i] = m
		}
		log = reversed
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"moves":       log[start:end],
		"total_moves": total,
		"page":        page,
		"limit":       limit,
		"order":       order,
	})
}

// World Handlers

func (s *Server) handleAddWall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.prog.AddWall(req.X, req.Y); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Wall added at (%d,%d)", req.X, req.Y),
		"state":   s.prog.Snapshot().State,
	})
}

func (s *Server) handleLoadMaze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Layout []string `json:"layout,omitempty"`
		Path   string   `json:"path,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	layout := req.Layout
	if len(layout) == 0 && req.Path != "" {
		lines, err := engine.LoadMazeFile(req.Path)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		layout = lines
	}

	if len(layout) == 0 {
		respondError(w, http.StatusBadRequest, "Either layout or path is required")
		return
	}

	if err := s.prog.LoadMaze(layout); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("maze_loaded", req.Path)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Maze loaded successfully",
		"state":   s.prog.Snapshot().State,
	})
}

// Run Handlers

func (s *Server) handleSaveRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		respondError(w, http.StatusBadRequest, "Path is required")
		return
	}

	if err := s.prog.SaveRun(req.Path); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save run: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Run saved successfully",
		"path":    req.Path,
	})
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DelayMs int `json:"delay_ms,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	moves := len(s.prog.MoveLog())
	if moves == 0 {
		respondError(w, http.StatusBadRequest, "No moves to replay")
		return
	}

	// Replay runs in the background; each step is pushed to viewers as a
	// playback event while the live state stays untouched. The request
	// context would cancel the replay as soon as this handler returns, so
	// the replay gets its own.
	s.prog.Playback(context.Background(), time.Duration(req.DelayMs)*time.Millisecond, func(m engine.MoveRecord) {
		if s.hub != nil {
			s.hub.BroadcastEvent("playback_step", m)
		}
	})

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":     "Playback started",
		"total_moves": moves,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
