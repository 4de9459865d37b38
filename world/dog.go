package world

// Direction is a dog's facing, encoded the same way the API wire
// format expects: 'U' north, 'D' south, 'L' west, 'R' east.
type Direction byte

const (
	North Direction = 'U'
	South Direction = 'D'
	West  Direction = 'L'
	East  Direction = 'R'
)

// Dog is a kinematic entity bound to a Map. Its position and velocity
// are floats; UpdatePosition integrates motion each tick and clamps
// against the bound map's road graph.
type Dog struct {
	ID        string
	Name      string
	X, Y      float64
	VX, VY    float64
	Direction Direction
	Map       *Map
}

// NewDog places a new dog at spawn, facing north, stationary.
func NewDog(id, name string, spawn Point, m *Map) *Dog {
	return &Dog{
		ID:        id,
		Name:      name,
		X:         float64(spawn.X),
		Y:         float64(spawn.Y),
		Direction: North,
		Map:       m,
	}
}

// SetSpeed sets the dog's velocity. A non-zero velocity also updates
// facing: the axis of larger magnitude wins, with positive y meaning
// south. A zero velocity leaves facing untouched.
func (d *Dog) SetSpeed(vx, vy float64) {
	d.VX, d.VY = vx, vy
	if vx == 0 && vy == 0 {
		return
	}
	if absF(vx) > absF(vy) {
		if vx > 0 {
			d.Direction = East
		} else {
			d.Direction = West
		}
	} else {
		if vy > 0 {
			d.Direction = South
		} else {
			d.Direction = North
		}
	}
}

// SetDirection updates facing only, leaving velocity untouched. Used by
// the API handler for the L/R/U/D moves, which set facing and velocity
// explicitly; the "" move only calls SetSpeed(0, 0), so the dog keeps
// its last facing.
func (d *Dog) SetDirection(dir Direction) {
	d.Direction = dir
}

// UpdatePosition integrates motion over dtMillis milliseconds. If
// velocity is zero this is a no-op. Otherwise the candidate position is
// computed and, if the dog has an assigned map, clamped against it; a
// clamp that changes the candidate means the dog hit a wall or road end,
// so velocity is zeroed for the next tick.
func (d *Dog) UpdatePosition(dtMillis int) {
	if d.VX == 0 && d.VY == 0 {
		return
	}

	dt := float64(dtMillis) / 1000.0
	candX := d.X + d.VX*dt
	candY := d.Y + d.VY*dt

	if d.Map == nil {
		d.X, d.Y = candX, candY
		return
	}

	cx, cy := d.Map.ClampPosition(d.X, d.Y, candX, candY)
	if cx != candX || cy != candY {
		d.SetSpeed(0, 0)
	}
	d.X, d.Y = cx, cy
}
