// Package config loads the JSON world description and builds the
// immutable map catalog from it.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wricardo/dogworld/game"
	"github.com/wricardo/dogworld/world"
)

// DefaultDogSpeed is used when the config file does not set one.
const DefaultDogSpeed = 1.0

// File mirrors the configuration file schema.
type File struct {
	DefaultDogSpeed *float64  `json:"defaultDogSpeed,omitempty"`
	Maps            []MapSpec `json:"maps"`
}

// MapSpec is one map entry in the config file.
type MapSpec struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	DogSpeed  *float64       `json:"dogSpeed,omitempty"`
	Roads     []RoadSpec     `json:"roads"`
	Buildings []BuildingSpec `json:"buildings"`
	Offices   []OfficeSpec   `json:"offices"`
}

// RoadSpec is a road in the config file. A road carrying x1 is
// horizontal; otherwise y1 is required and the road is vertical.
type RoadSpec struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

// BuildingSpec is a building rectangle in the config file.
type BuildingSpec struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// OfficeSpec is an office in the config file.
type OfficeSpec struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

// Load reads the config file at path and builds a Game from it.
func Load(path string) (*game.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a config file and builds a Game. It fails on malformed
// JSON, a road with neither x1 nor y1, a non-positive dog speed, a
// duplicate map id, or a duplicate office id within one map.
func Parse(data []byte) (*game.Game, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	defaultSpeed := DefaultDogSpeed
	if file.DefaultDogSpeed != nil {
		defaultSpeed = *file.DefaultDogSpeed
	}
	if defaultSpeed <= 0 {
		return nil, fmt.Errorf("defaultDogSpeed must be positive, got %v", defaultSpeed)
	}

	g := game.New()
	for _, spec := range file.Maps {
		m, err := buildMap(spec, defaultSpeed)
		if err != nil {
			return nil, err
		}
		if err := g.AddMap(m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func buildMap(spec MapSpec, defaultSpeed float64) (*world.Map, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("map with empty id")
	}

	speed := defaultSpeed
	if spec.DogSpeed != nil {
		speed = *spec.DogSpeed
	}
	if speed <= 0 {
		return nil, fmt.Errorf("map %q: dogSpeed must be positive, got %v", spec.ID, speed)
	}

	m := world.NewMap(spec.ID, spec.Name, speed)
	for i, r := range spec.Roads {
		start := world.Point{X: r.X0, Y: r.Y0}
		switch {
		case r.X1 != nil:
			m.AddRoad(world.NewHorizontalRoad(start, *r.X1))
		case r.Y1 != nil:
			m.AddRoad(world.NewVerticalRoad(start, *r.Y1))
		default:
			return nil, fmt.Errorf("map %q: road %d has neither x1 nor y1", spec.ID, i)
		}
	}
	for _, b := range spec.Buildings {
		m.AddBuilding(world.NewBuilding(world.Rectangle{
			Position: world.Point{X: b.X, Y: b.Y},
			Size:     world.Size{Width: b.W, Height: b.H},
		}))
	}
	for _, o := range spec.Offices {
		office := world.NewOffice(o.ID, world.Point{X: o.X, Y: o.Y}, world.Offset{DX: o.OffsetX, DY: o.OffsetY})
		if err := m.AddOffice(office); err != nil {
			return nil, err
		}
	}
	return m, nil
}
