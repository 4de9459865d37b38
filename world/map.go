package world

import "fmt"

// Map is a named, immutable road graph: an ordered list of roads,
// buildings and offices, plus a default dog speed. The only mutation
// after construction is appending roads/buildings/offices while the
// Game is being built from a config file; once a Game starts serving
// requests, no Map is touched again.
type Map struct {
	ID         string
	Name       string
	DogSpeed   float64
	roads      []Road
	buildings  []Building
	offices    []Office
	officeByID map[string]int
}

// NewMap constructs an empty map with the given id, display name and
// default dog speed.
func NewMap(id, name string, dogSpeed float64) *Map {
	return &Map{
		ID:         id,
		Name:       name,
		DogSpeed:   dogSpeed,
		officeByID: make(map[string]int),
	}
}

// Roads returns the map's roads in insertion order.
func (m *Map) Roads() []Road { return m.roads }

// Buildings returns the map's buildings.
func (m *Map) Buildings() []Building { return m.buildings }

// Offices returns the map's offices in insertion order.
func (m *Map) Offices() []Office { return m.offices }

// AddRoad appends a road to the map.
func (m *Map) AddRoad(r Road) { m.roads = append(m.roads, r) }

// AddBuilding appends a building to the map.
func (m *Map) AddBuilding(b Building) { m.buildings = append(m.buildings, b) }

// AddOffice appends an office to the map. It fails if the office id
// duplicates one already present on this map.
func (m *Map) AddOffice(o Office) error {
	if _, exists := m.officeByID[o.ID]; exists {
		return fmt.Errorf("world: duplicate office id %q on map %q", o.ID, m.ID)
	}
	m.officeByID[o.ID] = len(m.offices)
	m.offices = append(m.offices, o)
	return nil
}

// SpawnPoint returns the deterministic spawn point: the start of the
// first road, or (0,0) if the map has no roads.
func (m *Map) SpawnPoint() Point {
	if len(m.roads) == 0 {
		return Point{}
	}
	return m.roads[0].Start()
}

// ClampPosition implements the heart of the geometry model. Given the
// dog's current (oldX, oldY) and the candidate (newX, newY) it is
// trying to move to, it returns the position the dog actually ends up
// at:
//
//  1. With no roads at all, any candidate is accepted unchanged.
//  2. A candidate landing inside a building's half-open interior is
//     rejected outright: the dog stays put.
//  3. Otherwise the roads are scanned in insertion order and the
//     first one whose corridor contains the candidate wins: the
//     perpendicular coordinate snaps exactly to the road's axis value,
//     the coordinate along the axis passes through unchanged.
//  4. If no road's corridor accepts the candidate, the dog stays put.
//
// Tie-breaking is by insertion order and is part of the observable
// contract: at a T-intersection a dog crossing from one road onto a
// perpendicular one can get "trapped" snapping back onto the first
// road's axis depending on how the map was authored. This is preserved
// verbatim rather than fixed, per the source behavior it was modeled on.
func (m *Map) ClampPosition(oldX, oldY, newX, newY float64) (float64, float64) {
	if len(m.roads) == 0 {
		return newX, newY
	}

	for _, b := range m.buildings {
		if b.Bounds().Contains(newX, newY) {
			return oldX, oldY
		}
	}

	for _, r := range m.roads {
		if r.IsHorizontal() {
			minX, maxX := minMax(r.Start().X, r.End().X)
			y0 := float64(r.Start().Y)
			if absF(newY-y0) < corridorHalfWidth &&
				newX >= float64(minX)-corridorHalfWidth &&
				newX <= float64(maxX)+corridorHalfWidth {
				return newX, y0
			}
		} else {
			minY, maxY := minMax(r.Start().Y, r.End().Y)
			x0 := float64(r.Start().X)
			if absF(newX-x0) < corridorHalfWidth &&
				newY >= float64(minY)-corridorHalfWidth &&
				newY <= float64(maxY)+corridorHalfWidth {
				return x0, newY
			}
		}
	}

	return oldX, oldY
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
