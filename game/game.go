// Package game owns the mutable world: the maps catalog, the player
// registry, and the spawn policy, together with the controller that
// serializes every mutation (see controller.go).
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/wricardo/dogworld/auth"
	"github.com/wricardo/dogworld/world"
)

var (
	// ErrMapNotFound is returned when a map id is not in the catalog.
	ErrMapNotFound = errors.New("game: map not found")
)

// Game is the mutable aggregate: the maps catalog (immutable after
// load), the player registry, the token generator, and the spawn
// policy flag. None of its methods are safe for concurrent use; every
// call must go through a Controller.
type Game struct {
	maps        []*world.Map
	mapByID     map[string]*world.Map
	players     *auth.Players
	tokens      *auth.TokenGenerator
	randomSpawn bool
	rng         *rand.Rand
}

// New creates an empty game. Maps are added during config load; after
// that the catalog never changes.
func New() *Game {
	return &Game{
		mapByID: make(map[string]*world.Map),
		players: auth.NewPlayers(),
		tokens:  auth.NewTokenGenerator(),
	}
}

// AddMap adds m to the catalog. It fails if the map id duplicates an
// existing one.
func (g *Game) AddMap(m *world.Map) error {
	if _, exists := g.mapByID[m.ID]; exists {
		return fmt.Errorf("game: duplicate map id %q", m.ID)
	}
	g.mapByID[m.ID] = m
	g.maps = append(g.maps, m)
	return nil
}

// FindMap returns the map with the given id, or nil.
func (g *Game) FindMap(id string) *world.Map {
	return g.mapByID[id]
}

// Maps returns the catalog in insertion order.
func (g *Game) Maps() []*world.Map {
	return g.maps
}

// SetRandomSpawnPoints toggles the spawn policy. Off by default: new
// dogs spawn at the start of the map's first road. On: a road is
// picked uniformly at random and an integer coordinate is sampled
// uniformly along its axis.
func (g *Game) SetRandomSpawnPoints(on bool) {
	g.randomSpawn = on
}

// SetRandSource overrides the random source used for spawn point
// selection. Tests use this for determinism.
func (g *Game) SetRandSource(rng *rand.Rand) {
	g.rng = rng
}

// Players returns the player registry.
func (g *Game) Players() *auth.Players {
	return g.players
}

// FindByToken returns the player holding token, or nil.
func (g *Game) FindByToken(token auth.Token) *auth.Player {
	return g.players.FindByToken(token)
}

// JoinGame registers a new player on the map with the given id,
// creates their dog at a spawn point chosen per the spawn policy, and
// assigns them a fresh token. Returns ErrMapNotFound if the map id is
// unknown.
func (g *Game) JoinGame(playerName, mapID string) (*auth.Player, error) {
	m := g.FindMap(mapID)
	if m == nil {
		return nil, ErrMapNotFound
	}

	spawn := m.SpawnPoint()
	if g.randomSpawn && len(m.Roads()) > 0 {
		spawn = g.randomSpawnPoint(m)
	}

	dog := world.NewDog("", playerName, spawn, m)
	p := g.players.Add(playerName, dog)

	token, err := g.tokens.Generate()
	if err != nil {
		return nil, err
	}
	g.players.AssignToken(p, token)
	return p, nil
}

// randomSpawnPoint picks a road uniformly at random, then an integer
// coordinate uniformly along its axis; the perpendicular coordinate is
// the road's axis value.
func (g *Game) randomSpawnPoint(m *world.Map) world.Point {
	roads := m.Roads()
	r := roads[g.intn(len(roads))]
	if r.IsHorizontal() {
		minX, maxX := r.Start().X, r.End().X
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		return world.Point{X: minX + g.intn(maxX-minX+1), Y: r.Start().Y}
	}
	minY, maxY := r.Start().Y, r.End().Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return world.Point{X: r.Start().X, Y: minY + g.intn(maxY-minY+1)}
}

func (g *Game) intn(n int) int {
	if g.rng != nil {
		return g.rng.Intn(n)
	}
	return rand.Intn(n)
}

// UpdateState advances the world by dtMillis milliseconds: every dog
// integrates its motion under its map's clamping rules. Dogs do not
// interact, so iteration order does not matter.
func (g *Game) UpdateState(dtMillis int) {
	for _, p := range g.players.List() {
		p.Dog.UpdatePosition(dtMillis)
	}
}

// DogState is the wire shape of one dog in a state snapshot.
type DogState struct {
	Pos   [2]float64 `json:"pos"`
	Speed [2]float64 `json:"speed"`
	Dir   string     `json:"dir"`
}

// MapState returns a snapshot of every dog on the map with the given
// id, keyed by the owning player's id. Must run inside the
// serialization domain so the snapshot is consistent.
func (g *Game) MapState(mapID string) map[string]DogState {
	state := make(map[string]DogState)
	for _, p := range g.players.List() {
		if p.Dog.Map == nil || p.Dog.Map.ID != mapID {
			continue
		}
		state[strconv.Itoa(p.ID)] = DogState{
			Pos:   [2]float64{p.Dog.X, p.Dog.Y},
			Speed: [2]float64{p.Dog.VX, p.Dog.VY},
			Dir:   string(p.Dog.Direction),
		}
	}
	return state
}

// PlayersOnMap returns the players whose dogs live on the map with
// the given id, in id order.
func (g *Game) PlayersOnMap(mapID string) []*auth.Player {
	var out []*auth.Player
	for _, p := range g.players.List() {
		if p.Dog.Map != nil && p.Dog.Map.ID == mapID {
			out = append(out, p)
		}
	}
	return out
}
