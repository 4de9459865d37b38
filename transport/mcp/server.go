// Package mcp exposes the game as an MCP tool server, an alternate
// control surface for AI-agent clients. Tools call straight into the
// game through its controller, the same serialization domain the HTTP
// handlers use.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/dogworld/auth"
	"github.com/wricardo/dogworld/game"
	"github.com/wricardo/dogworld/world"
)

// Server wraps an MCP server whose tools drive the game world.
type Server struct {
	ctrl      *game.Controller
	game      *game.Game
	mcpServer *server.MCPServer
}

// NewServer creates the MCP tool server. ctrl must already be running.
func NewServer(ctrl *game.Controller, g *game.Game) *Server {
	s := &Server{
		ctrl: ctrl,
		game: g,
	}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Dog World Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Dog World - MCP Interface

A shared 2D world of dogs walking a road graph.

AVAILABLE TOOLS:
- list_maps: List the maps dogs can join
- join_game: Join a map; returns your auth token and player id
- move: Point your dog in a direction (L/R/U/D) or stop it ("")
- get_state: See every dog on your map (position, speed, facing)
- tick: Advance world time by a number of milliseconds (manual-tick servers only)

Dogs keep walking between ticks until they hit a building or the end
of a road; use move with an empty string to stop.`),
	)

	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List the maps dogs can join",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListMaps)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a map with a player name; returns an auth token and player id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the new player",
				},
				"map_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the map to join",
				},
			},
			Required: []string{"user_name", "map_id"},
		},
	}, s.handleJoinGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Set your dog's movement: L (west), R (east), U (north), D (south), or \"\" to stop",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token returned by join_game",
				},
				"move": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"L", "R", "U", "D", ""},
					"description": "Direction to move, or empty string to stop",
				},
			},
			Required: []string{"token", "move"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get position, speed and facing of every dog on your map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token returned by join_game",
				},
			},
			Required: []string{"token"},
		},
	}, s.handleGetState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance world time by time_delta milliseconds (rejected when the server auto-ticks)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"time_delta": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds to advance, must be positive",
				},
			},
			Required: []string{"time_delta"},
		},
	}, s.handleTick)
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the MCP protocol over stdin/stdout (blocking).
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Tool handlers

func (s *Server) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type mapInfo struct {
		id, name string
		roads    int
	}
	var infos []mapInfo
	s.ctrl.Exec(func() {
		for _, m := range s.game.Maps() {
			infos = append(infos, mapInfo{id: m.ID, name: m.Name, roads: len(m.Roads())})
		}
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Maps (%d):\n\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(&b, "- %s (%s, %d roads)\n", info.id, info.name, info.roads)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	userName, _ := args["user_name"].(string)
	mapID, _ := args["map_id"].(string)

	if userName == "" {
		return mcp.NewToolResultError("user_name must not be empty"), nil
	}

	var (
		player  *auth.Player
		joinErr error
	)
	s.ctrl.Exec(func() {
		player, joinErr = s.game.JoinGame(userName, mapID)
	})
	if joinErr != nil {
		return mcp.NewToolResultError(joinErr.Error()), nil
	}

	result := fmt.Sprintf("Joined map %s as player %d\nAuth token: %s\n", mapID, player.ID, player.Token)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	token, _ := args["token"].(string)
	move, _ := args["move"].(string)

	switch move {
	case "L", "R", "U", "D", "":
	default:
		return mcp.NewToolResultError("move must be one of L, R, U, D or the empty string"), nil
	}

	var found bool
	s.ctrl.Exec(func() {
		player := s.game.FindByToken(auth.Token(token))
		if player == nil {
			return
		}
		found = true

		dog := player.Dog
		speed := dog.Map.DogSpeed
		switch move {
		case "L":
			dog.SetDirection(world.West)
			dog.SetSpeed(-speed, 0)
		case "R":
			dog.SetDirection(world.East)
			dog.SetSpeed(speed, 0)
		case "U":
			dog.SetDirection(world.North)
			dog.SetSpeed(0, -speed)
		case "D":
			dog.SetDirection(world.South)
			dog.SetSpeed(0, speed)
		case "":
			dog.SetSpeed(0, 0)
		}
	})
	if !found {
		return mcp.NewToolResultError("unknown token"), nil
	}
	if move == "" {
		return mcp.NewToolResultText("Dog stopped"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Dog moving %s", move)), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	token, _ := args["token"].(string)

	var (
		found bool
		mapID string
		state map[string]game.DogState
	)
	s.ctrl.Exec(func() {
		player := s.game.FindByToken(auth.Token(token))
		if player == nil {
			return
		}
		found = true
		mapID = player.Dog.Map.ID
		state = s.game.MapState(mapID)
	})
	if !found {
		return mcp.NewToolResultError("unknown token"), nil
	}

	ids := make([]string, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "Map %s (%d dogs):\n\n", mapID, len(state))
	for _, id := range ids {
		ds := state[id]
		fmt.Fprintf(&b, "- player %s: pos (%.2f, %.2f), speed (%.2f, %.2f), facing %s\n",
			id, ds.Pos[0], ds.Pos[1], ds.Speed[0], ds.Speed[1], ds.Dir)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.ctrl.AutoTick() {
		return mcp.NewToolResultError("manual tick is disabled in auto-tick mode"), nil
	}

	args := request.Params.Arguments.(map[string]interface{})
	delta, ok := args["time_delta"].(float64)
	if !ok || delta != float64(int64(delta)) || delta <= 0 {
		return mcp.NewToolResultError("time_delta must be a positive integer"), nil
	}

	s.ctrl.Tick(int(delta))
	return mcp.NewToolResultText(fmt.Sprintf("Advanced world time by %d ms", int(delta))), nil
}
