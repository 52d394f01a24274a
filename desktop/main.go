package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	cellSize          = 48
	headerHeight      = 40
	footerHeight      = 24
	animationDuration = 150 * time.Millisecond // Smooth slide between cells
	crashDuration     = 400 * time.Millisecond // Shake on a blocked move
)

// Position is a grid coordinate. Y grows upward, so drawing flips rows.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pose is the robot position plus heading.
type Pose struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing"`
}

// State mirrors the server's grid snapshot.
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

// MoveRecord mirrors one entry of the server's move log.
type MoveRecord struct {
	Seq       int      `json:"seq"`
	Direction string   `json:"direction"`
	From      Position `json:"from"`
	To        Position `json:"to"`
	Success   bool     `json:"success"`
	Reason    string   `json:"reason"`
	Backend   string   `json:"backend"`
}

// Update is the state payload sent on every robot change.
type Update struct {
	Mode      string      `json:"mode"`
	Backend   string      `json:"backend"`
	UsingMock bool        `json:"using_mock"`
	State     State       `json:"state"`
	LastMove  *MoveRecord `json:"last_move,omitempty"`
}

// WSMessage is the WebSocket message wrapper from the server hub.
type WSMessage struct {
	Event  string  `json:"event"`
	Update *Update `json:"update,omitempty"`
}

// Viewer is the desktop client. It mirrors the server state over WebSocket
// and falls back to polling when the socket is unavailable.
type Viewer struct {
	baseURL    string
	wsHost     string
	update     *Update
	wsConn     *websocket.Conn
	lastUpdate time.Time
	stateMutex sync.RWMutex

	prevPos       Position
	targetPos     Position
	moveStartTime time.Time
	animationTime float64
	crashTime     time.Time
	isCrashing    bool
}

// NewViewer creates a viewer connected to the given server URL.
func NewViewer(baseURL string) *Viewer {
	v := &Viewer{
		baseURL: baseURL,
		wsHost:  strings.TrimPrefix(strings.TrimPrefix(baseURL, "http://"), "https://"),
	}

	if err := v.connectWebSocket(); err != nil {
		log.Printf("WebSocket connect failed: %v (falling back to polling)", err)
	} else {
		go v.listenWebSocket()
	}

	if err := v.fetchState(); err != nil {
		log.Printf("Initial state fetch failed: %v", err)
	}
	return v
}

// connectWebSocket establishes the connection to the server hub.
func (v *Viewer) connectWebSocket() error {
	wsURL := url.URL{Scheme: "ws", Host: v.wsHost, Path: "/ws"}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	v.wsConn = conn
	log.Printf("WebSocket connected to %s", wsURL.String())
	return nil
}

// listenWebSocket consumes state updates pushed by the server.
func (v *Viewer) listenWebSocket() {
	defer func() {
		if v.wsConn != nil {
			v.wsConn.Close()
		}
	}()

	for {
		_, message, err := v.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			v.stateMutex.Lock()
			v.wsConn = nil
			v.stateMutex.Unlock()
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		if msg.Update == nil {
			continue
		}

		v.applyUpdate(msg.Update)
	}
}

// fetchState polls the current state over plain HTTP.
func (v *Viewer) fetchState() error {
	resp, err := http.Get(v.baseURL + "/api/state")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to parse state: %v (body: %s)", err, string(body))
	}

	v.applyUpdate(&update)
	return nil
}

// applyUpdate installs a new snapshot and kicks off the matching animation.
func (v *Viewer) applyUpdate(update *Update) {
	v.stateMutex.Lock()
	defer v.stateMutex.Unlock()

	newPos := Position{X: update.State.Pose.X, Y: update.State.Pose.Y}
	if v.update != nil {
		oldPos := Position{X: v.update.State.Pose.X, Y: v.update.State.Pose.Y}
		oldMoves := v.update.State.Moves
		newMoves := update.State.Moves

		if oldPos != newPos {
			// Position changed, slide toward it
			v.prevPos = oldPos
			v.targetPos = newPos
			v.moveStartTime = time.Now()
			v.animationTime = 0.0
			v.isCrashing = false
		} else if newMoves > oldMoves {
			// A move was attempted and refused
			v.crashTime = time.Now()
			v.isCrashing = true
		}
	} else {
		// First state, snap into place
		v.prevPos = newPos
		v.targetPos = newPos
		v.animationTime = 1.0
	}

	v.update = update
	v.lastUpdate = time.Now()
}

// sendAction posts a move or reset to the server. The resulting state comes
// back over the WebSocket; polling mode refetches explicitly.
func (v *Viewer) sendAction(action string) {
	var endpoint, payload string
	if action == "reset" {
		endpoint = v.baseURL + "/api/reset"
		payload = "{}"
	} else {
		endpoint = v.baseURL + "/api/move"
		payload = fmt.Sprintf(`{"direction":"%s"}`, action)
	}

	resp, err := http.Post(endpoint, "application/json", strings.NewReader(payload))
	if err != nil {
		log.Printf("Failed to send %s: %v", action, err)
		return
	}
	resp.Body.Close()

	v.stateMutex.RLock()
	polling := v.wsConn == nil
	v.stateMutex.RUnlock()
	if polling {
		if err := v.fetchState(); err != nil {
			log.Printf("Error fetching state: %v", err)
		}
	}
}

// Update advances animations and handles keyboard input.
func (v *Viewer) Update() error {
	v.stateMutex.Lock()
	if v.animationTime < 1.0 {
		elapsed := time.Since(v.moveStartTime)
		v.animationTime = float64(elapsed) / float64(animationDuration)
		if v.animationTime > 1.0 {
			v.animationTime = 1.0
		}
	}
	if v.isCrashing && time.Since(v.crashTime) > crashDuration {
		v.isCrashing = false
	}
	polling := v.wsConn == nil
	stale := v.update == nil || time.Since(v.lastUpdate) > 500*time.Millisecond
	v.stateMutex.Unlock()

	if polling && stale {
		if err := v.fetchState(); err != nil {
			log.Printf("Error fetching state: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW) {
		v.sendAction("up")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.sendAction("down")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		v.sendAction("left")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		v.sendAction("right")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.sendAction("backward")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.sendAction("reset")
	}

	return nil
}

// screenRow converts a grid Y coordinate into a drawing row. The grid origin
// is the bottom-left corner, the screen origin is the top-left.
func screenRow(gridY, height int) int {
	return height - 1 - gridY
}

// Draw renders the grid, the trail and the robot.
func (v *Viewer) Draw(screen *ebiten.Image) {
	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	screen.Fill(color.RGBA{20, 20, 30, 255})

	if v.update == nil {
		ebitenutil.DebugPrint(screen, "Connecting to robot server...")
		return
	}

	state := v.update.State
	v.drawHeader(screen)

	walls := make(map[Position]bool, len(state.Walls))
	for _, w := range state.Walls {
		walls[w] = true
	}

	// Grid cells
	for gy := 0; gy < state.Height; gy++ {
		row := screenRow(gy, state.Height)
		for gx := 0; gx < state.Width; gx++ {
			cellColor := color.RGBA{128, 128, 128, 255}
			if walls[Position{X: gx, Y: gy}] {
				cellColor = color.RGBA{60, 30, 10, 255}
			} else if gx == state.Start.X && gy == state.Start.Y {
				cellColor = color.RGBA{0, 140, 0, 255}
			}
			ebitenutil.DrawRect(screen,
				float64(gx*cellSize),
				float64(row*cellSize+headerHeight),
				cellSize-1, cellSize-1, cellColor)
		}
	}

	// Trail dots, fading from oldest to newest
	for i, pos := range state.Trail {
		opacity := 0.15 + (float64(i)/float64(len(state.Trail)))*0.35
		trailColor := color.RGBA{100, 160, 255, uint8(opacity * 255)}

		dotSize := 8.0
		row := screenRow(pos.Y, state.Height)
		dotX := float64(pos.X*cellSize) + float64(cellSize)/2 - dotSize/2
		dotY := float64(row*cellSize+headerHeight) + float64(cellSize)/2 - dotSize/2
		ebitenutil.DrawRect(screen, dotX, dotY, dotSize, dotSize, trailColor)
	}

	// Robot with smooth interpolation
	t := v.animationTime
	if t > 1.0 {
		t = 1.0
	}
	displayX := float64(v.prevPos.X)*(1.0-t) + float64(v.targetPos.X)*t
	prevRow := float64(screenRow(v.prevPos.Y, state.Height))
	targetRow := float64(screenRow(v.targetPos.Y, state.Height))
	displayRow := prevRow*(1.0-t) + targetRow*t

	robotColor := color.RGBA{255, 100, 100, 255}
	if state.Halted {
		robotColor = color.RGBA{120, 120, 120, 255}
	}

	var shakeX, shakeY float64
	if v.isCrashing {
		crashProgress := time.Since(v.crashTime).Seconds() / crashDuration.Seconds()
		shakeIntensity := 4.0 * (1.0 - crashProgress)
		shakeX = shakeIntensity * math.Sin(crashProgress*40)
		shakeY = shakeIntensity * math.Cos(crashProgress*40)

		flashAmount := (1.0 - crashProgress) * 0.7
		robotColor.R = uint8(float64(robotColor.R)*(1.0-flashAmount) + 255*flashAmount)
	}

	screenX := displayX*float64(cellSize) + 4 + shakeX
	screenY := displayRow*float64(cellSize) + float64(headerHeight) + 4 + shakeY
	ebitenutil.DrawRect(screen, screenX, screenY, cellSize-8, cellSize-8, robotColor)

	facing := strings.ToUpper(state.Pose.Facing)
	if len(facing) > 0 {
		ebitenutil.DebugPrintAt(screen, facing[:1], int(screenX)+16, int(screenY)+14)
	}

	footerY := headerHeight + state.Height*cellSize + 6
	ebitenutil.DebugPrintAt(screen, "Arrows/WASD: Move | B: Backward | R: Reset", 10, footerY)
}

// drawHeader renders backend and run stats above the grid.
func (v *Viewer) drawHeader(screen *ebiten.Image) {
	state := v.update.State

	connStatus := "POLL"
	if v.wsConn != nil {
		connStatus = "WS"
	}

	backend := v.update.Backend
	if v.update.UsingMock {
		backend += " (mock fallback)"
	}

	info := fmt.Sprintf("[%s] mode:%s backend:%s pos:(%d,%d) facing:%s moves:%d",
		connStatus, v.update.Mode, backend,
		state.Pose.X, state.Pose.Y, state.Pose.Facing, state.Moves)
	ebitenutil.DebugPrintAt(screen, info, 10, 5)

	if state.Halted {
		ebitenutil.DebugPrintAt(screen, "STOPPED - press R to reset", 10, 20)
	}
}

// Layout sizes the window to the grid once a state is known.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	if v.update == nil {
		return 8*cellSize, 8*cellSize + headerHeight + footerHeight
	}
	return v.update.State.Width * cellSize,
		v.update.State.Height*cellSize + headerHeight + footerHeight
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Robot server URL")
	flag.Parse()

	viewer := NewViewer(*serverURL)

	ebiten.SetWindowSize(8*cellSize, 8*cellSize+headerHeight+footerHeight)
	ebiten.SetWindowTitle("Robot Walk Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
