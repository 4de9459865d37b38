package auth

import (
	"strconv"

	"github.com/wricardo/dogworld/world"
)

// Players is the registry of joined players. It keeps an append-only
// list (index == player id) plus lookup tables by token and by dog id.
//
// The registry carries no lock of its own: every call happens inside
// the game controller's serialization domain, which is the only place
// mutable game state is ever touched.
type Players struct {
	list    []*Player
	byToken map[Token]*Player
	byDogID map[string]*Player
}

// NewPlayers creates an empty registry.
func NewPlayers() *Players {
	return &Players{
		byToken: make(map[Token]*Player),
		byDogID: make(map[string]*Player),
	}
}

// Add registers a new player owning dog. The player id is the current
// registry size; the dog's id is set to the stringified player id so
// dog ids stay unique by construction. No token is assigned here —
// the game generates and assigns one right after (see AssignToken).
func (ps *Players) Add(name string, dog *world.Dog) *Player {
	p := &Player{
		ID:   len(ps.list),
		Name: name,
		Dog:  dog,
	}
	dog.ID = strconv.Itoa(p.ID)
	ps.list = append(ps.list, p)
	ps.byDogID[dog.ID] = p
	return p
}

// AssignToken binds token to p and indexes it for FindByToken.
func (ps *Players) AssignToken(p *Player, token Token) {
	p.Token = token
	ps.byToken[token] = p
}

// FindByToken returns the player holding token, or nil.
func (ps *Players) FindByToken(token Token) *Player {
	return ps.byToken[token]
}

// FindByDogID returns the player owning the dog with the given id, or nil.
func (ps *Players) FindByDogID(dogID string) *Player {
	return ps.byDogID[dogID]
}

// List returns all players in id order.
func (ps *Players) List() []*Player {
	return ps.list
}

// Len returns the number of registered players.
func (ps *Players) Len() int {
	return len(ps.list)
}
