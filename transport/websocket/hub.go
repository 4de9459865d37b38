// Package websocket pushes live world-state snapshots to subscribed
// clients. Each client watches one map; whenever the game ticks, every
// watcher of a map receives a frame whose "players" field has the same
// shape /api/v1/game/state returns for it, alongside "mapId" and
// "event".
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wricardo/dogworld/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one state-push frame sent to watchers of a map.
type Message struct {
	MapID   string                   `json:"mapId"`
	Event   string                   `json:"event"`
	Players map[string]game.DogState `json:"players,omitempty"`
}

// Client is one connected watcher.
type Client struct {
	id    string
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	mapID string
}

// Hub maintains the set of active clients per map and fans state
// snapshots out to them. All bookkeeping happens on the Run goroutine;
// the other methods only exchange messages with it over channels.
type Hub struct {
	// Registered clients keyed by map id.
	maps map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub. Call Run in its own goroutine before serving.
func NewHub() *Hub {
	return &Hub{
		maps:       make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to the
// given map's state pushes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, mapID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		id:    uuid.NewString(),
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		mapID: mapID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastState sends a state snapshot to every watcher of a map.
// Safe to call from any goroutine, including the game controller's
// tick observer.
func (h *Hub) BroadcastState(mapID string, players map[string]game.DogState) {
	h.broadcast <- &Message{
		MapID:   mapID,
		Event:   "state",
		Players: players,
	}
}

func (h *Hub) registerClient(client *Client) {
	if h.maps[client.mapID] == nil {
		h.maps[client.mapID] = make(map[*Client]bool)
	}
	h.maps[client.mapID][client] = true

	log.Printf("Client %s subscribed to map %s (total watchers: %d)",
		client.id, client.mapID, len(h.maps[client.mapID]))
}

func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.maps[client.mapID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.maps, client.mapID)
			}

			log.Printf("Client %s unsubscribed from map %s (remaining watchers: %d)",
				client.id, client.mapID, len(clients))
		}
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.maps[message.MapID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Watcher fell too far behind; drop it.
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the connection. Watchers never send meaningful
// payloads; reading just services the pong handler and surfaces
// disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
