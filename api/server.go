package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wricardo/dogworld/auth"
	"github.com/wricardo/dogworld/game"
	"github.com/wricardo/dogworld/transport/websocket"
	"github.com/wricardo/dogworld/world"
)

// Error codes of the API error taxonomy.
const (
	codeBadRequest      = "badRequest"
	codeInvalidArgument = "invalidArgument"
	codeInvalidMethod   = "invalidMethod"
	codeInvalidToken    = "invalidToken"
	codeUnknownToken    = "unknownToken"
	codeMapNotFound     = "mapNotFound"
)

// Server translates HTTP requests into world operations. Handlers
// parse and decode on whatever goroutine the HTTP server gives them,
// then submit a closure to the game controller, and serialize the
// captured snapshot back to JSON after the closure returns — the
// serialization domain is never held across I/O.
type Server struct {
	ctrl   *game.Controller
	game   *game.Game
	hub    *websocket.Hub
	static http.Handler
	router *mux.Router
}

// NewServer wires the router. hub may be nil (no live state pushes);
// wwwRoot empty disables the static branch (requests outside /api/
// then 404).
func NewServer(ctrl *game.Controller, g *game.Game, hub *websocket.Hub, wwwRoot string) *Server {
	s := &Server{
		ctrl:   ctrl,
		game:   g,
		hub:    hub,
		router: mux.NewRouter(),
	}
	if wwwRoot != "" {
		s.static = NewStaticHandler(wwwRoot)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/").Subrouter()

	api.HandleFunc("/v1/maps", s.handleMaps).Methods("GET", "HEAD")
	api.HandleFunc("/v1/maps/{id}", s.handleMapByID).Methods("GET", "HEAD")
	api.HandleFunc("/v1/game/join", s.handleJoin).Methods("POST")
	api.HandleFunc("/v1/game/players", s.handlePlayers).Methods("GET", "HEAD")
	api.HandleFunc("/v1/game/state", s.handleState).Methods("GET", "HEAD")
	api.HandleFunc("/v1/game/player/action", s.handleAction).Methods("POST")
	api.HandleFunc("/v1/game/tick", s.handleTick).Methods("POST")

	// Anything else under /api/, including a known path with the wrong
	// (but globally permitted) method, is a plain bad request.
	api.PathPrefix("/").HandlerFunc(s.handleBadRequest)

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}

	if s.static != nil {
		s.router.PathPrefix("/").Handler(s.static)
	}
}

// ServeHTTP implements http.Handler. Methods outside GET/HEAD/POST are
// rejected before any routing happens.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		if allow := allowedMethods(r.URL.Path); allow != "" {
			w.Header().Set("Allow", allow)
		}
		respondError(w, http.StatusMethodNotAllowed, codeInvalidMethod,
			"Only GET, HEAD and POST methods are expected")
		return
	}
	s.router.ServeHTTP(w, r)
}

// allowedMethods returns the Allow header value for the known API
// targets, or "" for everything else.
func allowedMethods(target string) string {
	switch target {
	case "/api/v1/game/join", "/api/v1/game/player/action", "/api/v1/game/tick":
		return "POST"
	case "/api/v1/game/players", "/api/v1/game/state", "/api/v1/maps":
		return "GET, HEAD"
	}
	if strings.HasPrefix(target, "/api/v1/maps/") {
		return "GET, HEAD"
	}
	return ""
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"code": code, "message": message})
}

func (s *Server) handleBadRequest(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusBadRequest, codeBadRequest, "Bad request")
}

// hasJSONContentType checks the content-type discipline for POST
// bodies. Media type parameters (charset) are tolerated.
func hasJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct) == "application/json"
}

// bearerToken extracts the bearer token from the Authorization header.
// A missing header, a non-Bearer scheme, or a token that is not 32
// lowercase hex characters all count as malformed.
func bearerToken(r *http.Request) (auth.Token, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := auth.Token(header[len(prefix):])
	if !token.IsWellFormed() {
		return "", false
	}
	return token, true
}

// Map wire shapes. A road serializes x1 for horizontal roads and y1
// for vertical ones, mirroring the config file schema so a loaded map
// round-trips structurally.

type roadJSON struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

type buildingJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeJSON struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type mapListItemJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mapDetailJSON struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Roads     []roadJSON     `json:"roads"`
	Buildings []buildingJSON `json:"buildings"`
	Offices   []officeJSON   `json:"offices"`
}

func mapDetail(m *world.Map) mapDetailJSON {
	detail := mapDetailJSON{
		ID:        m.ID,
		Name:      m.Name,
		Roads:     []roadJSON{},
		Buildings: []buildingJSON{},
		Offices:   []officeJSON{},
	}
	for _, r := range m.Roads() {
		road := roadJSON{X0: r.Start().X, Y0: r.Start().Y}
		if r.IsHorizontal() {
			endX := r.End().X
			road.X1 = &endX
		} else {
			endY := r.End().Y
			road.Y1 = &endY
		}
		detail.Roads = append(detail.Roads, road)
	}
	for _, b := range m.Buildings() {
		bounds := b.Bounds()
		detail.Buildings = append(detail.Buildings, buildingJSON{
			X: bounds.Position.X,
			Y: bounds.Position.Y,
			W: bounds.Size.Width,
			H: bounds.Size.Height,
		})
	}
	for _, o := range m.Offices() {
		detail.Offices = append(detail.Offices, officeJSON{
			ID:      o.ID,
			X:       o.Position.X,
			Y:       o.Position.Y,
			OffsetX: o.Offset.DX,
			OffsetY: o.Offset.DY,
		})
	}
	return detail
}

// Handlers

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	var list []mapListItemJSON
	s.ctrl.Exec(func() {
		list = make([]mapListItemJSON, 0, len(s.game.Maps()))
		for _, m := range s.game.Maps() {
			list = append(list, mapListItemJSON{ID: m.ID, Name: m.Name})
		}
	})
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleMapByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var detail *mapDetailJSON
	s.ctrl.Exec(func() {
		if m := s.game.FindMap(id); m != nil {
			d := mapDetail(m)
			detail = &d
		}
	})
	if detail == nil {
		respondError(w, http.StatusNotFound, codeMapNotFound, "Map not found")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if !hasJSONContentType(r) {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid content type")
		return
	}

	var req struct {
		UserName *string `json:"userName"`
		MapID    *string `json:"mapId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserName == nil || req.MapID == nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Join game request parse error")
		return
	}
	if *req.UserName == "" {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid name")
		return
	}

	var (
		player  *auth.Player
		joinErr error
	)
	s.ctrl.Exec(func() {
		player, joinErr = s.game.JoinGame(*req.UserName, *req.MapID)
	})
	if joinErr == game.ErrMapNotFound {
		respondError(w, http.StatusNotFound, codeMapNotFound, "Map not found")
		return
	}
	if joinErr != nil {
		log.Printf("Join failed: %v", joinErr)
		respondError(w, http.StatusInternalServerError, "internalError", "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authToken": string(player.Token),
		"playerId":  player.ID,
	})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, codeInvalidToken, "Authorization header is missing")
		return
	}

	var (
		known   bool
		players map[string]map[string]string
	)
	s.ctrl.Exec(func() {
		caller := s.game.FindByToken(token)
		if caller == nil {
			return
		}
		known = true
		players = make(map[string]map[string]string)
		for _, p := range s.game.PlayersOnMap(caller.Dog.Map.ID) {
			players[strconv.Itoa(p.ID)] = map[string]string{"name": p.Name}
		}
	})
	if !known {
		respondError(w, http.StatusUnauthorized, codeUnknownToken, "Player token has not been found")
		return
	}
	respondJSON(w, http.StatusOK, players)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, codeInvalidToken, "Authorization header is missing")
		return
	}

	var (
		known bool
		state map[string]game.DogState
	)
	s.ctrl.Exec(func() {
		caller := s.game.FindByToken(token)
		if caller == nil {
			return
		}
		known = true
		state = s.game.MapState(caller.Dog.Map.ID)
	})
	if !known {
		respondError(w, http.StatusUnauthorized, codeUnknownToken, "Player token has not been found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"players": state})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if !hasJSONContentType(r) {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid content type")
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, codeInvalidToken, "Authorization header is missing")
		return
	}

	var req struct {
		Move *string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse action")
		return
	}
	switch *req.Move {
	case "L", "R", "U", "D", "":
	default:
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid move value")
		return
	}

	var known bool
	s.ctrl.Exec(func() {
		caller := s.game.FindByToken(token)
		if caller == nil {
			return
		}
		known = true

		dog := caller.Dog
		speed := dog.Map.DogSpeed
		switch *req.Move {
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
	if !known {
		respondError(w, http.StatusUnauthorized, codeUnknownToken, "Player token has not been found")
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if s.ctrl.AutoTick() {
		respondError(w, http.StatusBadRequest, codeBadRequest,
			"Manual tick is disabled in auto-tick mode")
		return
	}

	if !hasJSONContentType(r) {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid content type")
		return
	}

	var req struct {
		TimeDelta *int64 `json:"timeDelta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeDelta == nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse tick request JSON")
		return
	}
	if *req.TimeDelta <= 0 {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "timeDelta must be positive")
		return
	}

	s.ctrl.Tick(int(*req.TimeDelta))
	respondJSON(w, http.StatusOK, struct{}{})
}

// handleWebSocket subscribes an authenticated client to its own map's
// state pushes. The token travels as a query parameter because browser
// WebSocket clients cannot set an Authorization header.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := auth.Token(r.URL.Query().Get("token"))
	if !token.IsWellFormed() {
		respondError(w, http.StatusUnauthorized, codeInvalidToken, "token query parameter is missing or malformed")
		return
	}

	var mapID string
	s.ctrl.Exec(func() {
		if caller := s.game.FindByToken(token); caller != nil {
			mapID = caller.Dog.Map.ID
		}
	})
	if mapID == "" {
		respondError(w, http.StatusUnauthorized, codeUnknownToken, "Player token has not been found")
		return
	}

	s.hub.ServeWS(w, r, mapID)
}
