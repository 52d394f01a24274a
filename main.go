// Command robotwalk starts the robot movement server.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "demo" – drives the robot through a short scripted walk and prints the result
//
// Flags control host/port, the robot mode (simulator or real), grid geometry,
// debug logging, version output, and optional ngrok tunneling for easy
// external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/cherypallysaisurya/robotwalk/api"
	"github.com/cherypallysaisurya/robotwalk/robot/config"
	"github.com/cherypallysaisurya/robotwalk/robot/engine"
	"github.com/cherypallysaisurya/robotwalk/robot/program"
	"github.com/cherypallysaisurya/robotwalk/transport/mcp"
	"github.com/cherypallysaisurya/robotwalk/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Robot Walk Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	robotMode    = flag.String("mode", "", "Robot mode: simulator or real (default from ROBOT_MODE, then simulator)")
	robotHost    = flag.String("robot-host", "", "Physical robot address (default from ROBOT_HOST, then 192.168.12.1)")
	gridWidth    = flag.Int("grid-width", 0, "Grid width (default 8)")
	gridHeight   = flag.Int("grid-height", 0, "Grid height (default 8)")
	startX       = flag.Int("start-x", -1, "Robot start column")
	startY       = flag.Int("start-y", -1, "Robot start row (y grows upward)")
	mazeFile     = flag.String("maze", "", "Maze file to load at startup")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  demo             Drive a short scripted walk and exit\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                        # Simulator on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode real             # Drive the physical robot (mock fallback when absent)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -maze levels/demo.txt  # Load a maze at startup\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090         # MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// main parses flags, builds the robot program, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	mode := "server" // default
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	prog, err := initializeProgram()
	if err != nil {
		log.Fatalf("Failed to initialize robot program: %v", err)
	}
	defer prog.Close()

	log.Printf("Robot program ready: mode=%s backend=%s", prog.Mode(), prog.Backend())
	if prog.UsingMock() {
		log.Println("Physical robot unreachable, moves will be dispatched to the mock fallback")
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		// Run MCP stdio server with internal HTTP server
		runStdioMCPWithInternalServer(prog)
		return

	case "server", "http":
		// Run HTTP server with API, WebSocket, and MCP endpoint
		runHTTPServer(prog)

	case "demo":
		runDemo(prog)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default), 'stdio-mcp', or 'demo'", mode)
	}
}

// initializeProgram builds the robot program from environment defaults with
// flag overrides, then loads the startup maze if one was requested.
func initializeProgram() (*program.Program, error) {
	cfg := config.Default().FromEnv()

	if *robotMode != "" {
		cfg.Mode = config.Mode(*robotMode)
	}
	if *robotHost != "" {
		cfg.Host = *robotHost
	}
	if *gridWidth > 0 {
		cfg.GridWidth = *gridWidth
	}
	if *gridHeight > 0 {
		cfg.GridHeight = *gridHeight
	}
	if *startX >= 0 {
		cfg.StartX = *startX
	}
	if *startY >= 0 {
		cfg.StartY = *startY
	}

	prog, err := program.New(cfg)
	if err != nil {
		return nil, err
	}

	if *mazeFile != "" {
		layout, err := engine.LoadMazeFile(*mazeFile)
		if err != nil {
			prog.Close()
			return nil, fmt.Errorf("failed to read maze %s: %w", *mazeFile, err)
		}
		if err := prog.LoadMaze(layout); err != nil {
			prog.Close()
			return nil, fmt.Errorf("failed to load maze %s: %w", *mazeFile, err)
		}
		log.Printf("Loaded maze from %s", *mazeFile)
	}

	return prog, nil
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(prog *program.Program) {
	// Create WebSocket hub and wire it to the program's update feed
	hub := websocket.NewHub()
	hub.Watch(prog)
	go hub.Run()

	// Create API server
	apiServer := api.NewServer(prog, hub)

	// Setup HTTP server address
	addr := fmt.Sprintf("%s:%d", *host, *port)

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	// Always add MCP endpoint for HTTP server
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		// Check environment variable if flag not set
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	// Start ngrok tunnel if enabled
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Get auth token from flag or environment (support both naming conventions)
			authToken := *ngrokAuth
			if authToken == "" {
				authToken = os.Getenv("NGROK_AUTHTOKEN")
				if authToken == "" {
					authToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
				}
			}

			if authToken == "" {
				log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
				return
			}

			log.Println("Starting ngrok tunnel...")

			// Get domain from flag or environment
			domain := *ngrokDomain
			if domain == "" {
				domain = os.Getenv("NGROK_DOMAIN")
			}

			// Configure ngrok endpoint
			var tunnel ngrokConfig.Tunnel
			if domain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
				log.Printf("Using custom ngrok domain: %s", domain)
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			// Start ngrok tunnel
			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				log.Printf("Failed to start ngrok tunnel: %v", err)
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					log.Printf("Failed to close ngrok tunnel: %v", err)
				}
			}()

			ngrokURL := tun.URL()
			log.Printf("Ngrok tunnel established: %s", ngrokURL)
			log.Printf("  REST API (ngrok): %s/api", ngrokURL)
			log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
			log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

			// Serve HTTP through ngrok tunnel
			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				log.Printf("Ngrok server error: %v", err)
			}
			log.Println("Ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(prog *program.Program) {
	var baseURL string

	// First, try to connect to external API server at localhost:8080
	externalURL := "http://localhost:8080"
	log.Printf("Checking for external API server at %s...", externalURL)

	// Test if external server is running
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		// No external server found, start internal one
		log.Printf("No external API server found, starting internal HTTP server")

		// Start internal HTTP server on a random available port
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}

		// Get the actual port that was assigned
		internalPort := listener.Addr().(*net.TCPAddr).Port
		internalAddr := fmt.Sprintf("127.0.0.1:%d", internalPort)

		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		// Create WebSocket hub
		hub := websocket.NewHub()
		hub.Watch(prog)
		go hub.Run()

		// Create API server
		apiServer := api.NewServer(prog, hub)

		// Start internal HTTP server in background
		httpServer := &http.Server{
			Handler: apiServer,
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	// Create MCP client pointing to the selected server
	mcpClient := mcp.NewClient(baseURL)

	// Run MCP stdio server (blocking)
	if baseURL == externalURL {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}

// runDemo drives a short scripted walk. In real mode this makes the physical
// robot (or its mock stand-in) step through the same square as the simulator.
func runDemo(prog *program.Program) {
	script := []string{"up", "up", "right", "right", "down", "down", "left", "left"}

	log.Printf("Demo: walking a 2x2 square from (%d,%d)", prog.Position().X, prog.Position().Y)

	for _, dir := range script {
		ok := prog.Move(dir)
		pose := prog.Position()
		log.Printf("  %-8s -> (%d,%d) ok=%v", dir, pose.X, pose.Y, ok)
		if prog.Stopped() {
			log.Println("Run stopped; resetting")
			prog.Reset()
		}
	}

	for _, m := range prog.MoveLog() {
		fmt.Printf("#%d %s (%d,%d)->(%d,%d) success=%v reason=%s backend=%s\n",
			m.Seq, m.Direction, m.From.X, m.From.Y, m.To.X, m.To.Y, m.Success, m.Reason, m.Backend)
	}
}
