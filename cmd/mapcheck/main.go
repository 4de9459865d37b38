// Command mapcheck prints quick, human-readable heuristics about world
// configuration files. It summarizes road, building and office counts
// per map, the spawn point, total road length, and highlights offices
// that do not sit on any road corridor (dogs can never reach them).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/dogworld/config"
	"github.com/wricardo/dogworld/world"
)

func main() {
	dir := flag.String("configs", "configs", "directory of world config JSON files")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		matches, err := filepath.Glob(filepath.Join(*dir, "*.json"))
		if err != nil || len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "no config files found in %s\n", *dir)
			os.Exit(1)
		}
		paths = matches
	}

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		analyzeConfig(path)
	}
}

func analyzeConfig(path string) {
	g, err := config.Load(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, m := range g.Maps() {
		fmt.Printf("\nMap: %s (%q)\n", m.ID, m.Name)
		fmt.Printf("Dog speed: %g\n", m.DogSpeed)
		fmt.Printf("Roads: %d  Buildings: %d  Offices: %d\n",
			len(m.Roads()), len(m.Buildings()), len(m.Offices()))

		spawn := m.SpawnPoint()
		fmt.Printf("Spawn point: (%d,%d)\n", spawn.X, spawn.Y)

		total := 0
		for _, r := range m.Roads() {
			total += roadLength(r)
		}
		fmt.Printf("Total road length: %d\n", total)

		unreachable := 0
		for _, o := range m.Offices() {
			if !onAnyRoad(m, o.Position) {
				fmt.Printf("WARNING: office %s at (%d,%d) is not on any road corridor\n",
					o.ID, o.Position.X, o.Position.Y)
				unreachable++
			}
		}
		if unreachable == 0 && len(m.Offices()) > 0 {
			fmt.Printf("All offices sit on road corridors\n")
		}
	}
}

// onAnyRoad reports whether p lies within the half-unit corridor of
// some road on m, the same acceptance test the clamp uses.
func onAnyRoad(m *world.Map, p world.Point) bool {
	for _, r := range m.Roads() {
		if r.IsHorizontal() {
			minX, maxX := order(r.Start().X, r.End().X)
			if p.Y == r.Start().Y && p.X >= minX && p.X <= maxX {
				return true
			}
		} else {
			minY, maxY := order(r.Start().Y, r.End().Y)
			if p.X == r.Start().X && p.Y >= minY && p.Y <= maxY {
				return true
			}
		}
	}
	return false
}

func order(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}

func roadLength(r world.Road) int {
	if r.IsHorizontal() {
		return abs(r.End().X - r.Start().X)
	}
	return abs(r.End().Y - r.Start().Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
