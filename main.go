// Command game_server runs the dog-world multiplayer game server.
//
// It supports two modes:
//  1. "server" (default) - runs the HTTP server exposing the REST API,
//     the WebSocket state push, and the static web root
//  2. "stdio-mcp" - runs an MCP stdio server driving the same world,
//     for AI-agent clients
//
// Flags select the world config file, the static web root, the
// auto-tick period, the spawn policy, and optional ngrok tunneling for
// easy external access during development.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/dogworld/api"
	"github.com/wricardo/dogworld/config"
	"github.com/wricardo/dogworld/game"
	"github.com/wricardo/dogworld/transport/mcp"
	"github.com/wricardo/dogworld/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Dog World Game Server"
)

const listenAddr = "0.0.0.0:8080"

func main() {
	cmd := &cli.Command{
		Name:      "game_server",
		Usage:     "multiplayer dog-world game server",
		Version:   Version,
		ArgsUsage: "[server|stdio-mcp]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config-file",
				Usage:    "path to the world configuration JSON `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "www-root",
				Usage:    "`DIR` to serve static files from",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "tick-period",
				Usage: "auto-tick period in `MS`; omit for manual-tick mode",
			},
			&cli.BoolFlag{
				Name:  "randomize-spawn-points",
				Usage: "spawn new dogs at random road points instead of the first road's start",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ngrok",
				Usage: "expose the server through an ngrok tunnel",
			},
			&cli.StringFlag{
				Name:  "ngrok-auth",
				Usage: "ngrok auth token (or use NGROK_AUTHTOKEN env var)",
			},
			&cli.StringFlag{
				Name:  "ngrok-domain",
				Usage: "custom ngrok domain (optional)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// run wires the world, the controller, and the selected front-end.
func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	tickMillis := cmd.Int("tick-period")
	if cmd.IsSet("tick-period") && tickMillis <= 0 {
		return fmt.Errorf("tick-period must be a positive number of milliseconds, got %d", tickMillis)
	}

	g, err := config.Load(cmd.String("config-file"))
	if err != nil {
		return err
	}
	g.SetRandomSpawnPoints(cmd.Bool("randomize-spawn-points"))

	ctrl := game.NewController(g, time.Duration(tickMillis)*time.Millisecond)

	mode := cmd.Args().First()
	switch mode {
	case "", "server", "http":
		return runHTTPServer(ctx, cmd, g, ctrl)
	case "stdio-mcp", "mcp-stdio", "mcp":
		return runStdioMCP(g, ctrl)
	default:
		return fmt.Errorf("unknown mode: %s (use 'server' or 'stdio-mcp')", mode)
	}
}

// runHTTPServer starts the HTTP server with the REST API, the
// WebSocket hub, and the static web root. If ngrok is enabled it also
// provisions a public tunnel serving the same handler.
func runHTTPServer(ctx context.Context, cmd *cli.Command, g *game.Game, ctrl *game.Controller) error {
	hub := websocket.NewHub()
	go hub.Run()

	// Push a state snapshot to every map's watchers after each tick.
	// The snapshot is captured inside the serialization domain; the
	// hub fan-out happens on its own goroutine.
	ctrl.SetTickObserver(func() {
		for _, m := range g.Maps() {
			state := g.MapState(m.ID)
			go hub.BroadcastState(m.ID, state)
		}
	})

	go ctrl.Run()
	defer ctrl.Stop()

	apiServer := api.NewServer(ctrl, g, hub, cmd.String("www-root"))

	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("%s v%s listening on %s", AppName, Version, listenAddr)
		log.Printf("REST API: http://%s/api/v1/maps", listenAddr)
		log.Printf("WebSocket: ws://%s/ws?token=<auth_token>", listenAddr)
		if ctrl.AutoTick() {
			log.Printf("Auto-tick every %s", time.Duration(cmd.Int("tick-period"))*time.Millisecond)
		} else {
			log.Printf("Manual tick via POST /api/v1/game/tick")
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	if cmd.Bool("ngrok") || os.Getenv("NGROK_ENABLED") == "true" || os.Getenv("NGROK_ENABLED") == "1" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, apiServer)
		}()
	}

	var runErr error
	select {
	case sig := <-stop:
		log.Printf("Received signal: %v. Shutting down...", sig)
	case runErr = <-errs:
		log.Printf("HTTP server failed: %v", runErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// runNgrokTunnel exposes handler through an ngrok tunnel until ctx is
// cancelled. Failures are logged, never fatal: the local server keeps
// serving either way.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	domain := cmd.String("ngrok-domain")
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
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
	log.Printf("  REST API (ngrok): %s/api/v1/maps", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?token=<auth_token>", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP serves the world over the MCP stdio protocol (blocking).
func runStdioMCP(g *game.Game, ctrl *game.Controller) error {
	go ctrl.Run()
	defer ctrl.Stop()

	mcpServer := mcp.NewServer(ctrl, g)
	log.Println("MCP stdio server ready")
	return mcpServer.ServeStdio()
}
