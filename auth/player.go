package auth

import "github.com/wricardo/dogworld/world"

// Player is one joined participant: a monotonically assigned id, a
// display name, exactly one owned dog, and exactly one bearer token
// (assigned by the game right after registration).
type Player struct {
	ID    int
	Name  string
	Dog   *world.Dog
	Token Token
}
