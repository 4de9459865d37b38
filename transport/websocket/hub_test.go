package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/dogworld/game"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.maps == nil {
		t.Error("Hub maps table is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		id:    "c1",
		hub:   hub,
		mapID: "m1",
		send:  make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.maps["m1"]; !exists {
		t.Fatal("map entry was not created")
	}
	if !hub.maps["m1"][client] {
		t.Error("client was not registered for its map")
	}
}

func TestHubUnregisterCleansUpEmptyMap(t *testing.T) {
	hub := NewHub()

	client := &Client{
		id:    "c1",
		hub:   hub,
		mapID: "m1",
		send:  make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.maps["m1"]; exists {
		t.Error("map entry should have been removed after last watcher left")
	}
}

func TestBroadcastReachesOnlySameMapWatchers(t *testing.T) {
	hub := NewHub()

	watcher := &Client{id: "c1", hub: hub, mapID: "m1", send: make(chan []byte, 256)}
	other := &Client{id: "c2", hub: hub, mapID: "m2", send: make(chan []byte, 256)}
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		MapID: "m1",
		Event: "state",
		Players: map[string]game.DogState{
			"0": {Pos: [2]float64{1, 2}, Speed: [2]float64{0, 0}, Dir: "U"},
		},
	})

	select {
	case data := <-watcher.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("broadcast payload is not JSON: %v", err)
		}
		if msg.MapID != "m1" || msg.Players["0"].Pos != [2]float64{1, 2} {
			t.Fatalf("unexpected payload: %+v", msg)
		}
	default:
		t.Fatal("watcher on m1 received nothing")
	}

	select {
	case <-other.send:
		t.Fatal("watcher on m2 received a broadcast for m1")
	default:
	}
}

func TestServeWSEndToEnd(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "m1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Registration races the dial returning; give it a moment to land.
	time.Sleep(200 * time.Millisecond)

	hub.BroadcastState("m1", map[string]game.DogState{
		"0": {Pos: [2]float64{3, 0}, Speed: [2]float64{1, 0}, Dir: "R"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.MapID != "m1" || msg.Event != "state" || msg.Players["0"].Dir != "R" {
		t.Fatalf("unexpected payload: %+v", msg)
	}
}
