package world

import "testing"

func newTestMap() *Map {
	m := NewMap("m1", "Test Map", 1.0)
	m.AddRoad(NewHorizontalRoad(Point{X: 0, Y: 0}, 10))
	return m
}

func TestSpawnPointFromFirstRoad(t *testing.T) {
	m := newTestMap()
	sp := m.SpawnPoint()
	if sp.X != 0 || sp.Y != 0 {
		t.Fatalf("expected spawn point (0,0), got (%d,%d)", sp.X, sp.Y)
	}
}

func TestSpawnPointNoRoads(t *testing.T) {
	m := NewMap("empty", "Empty", 1.0)
	sp := m.SpawnPoint()
	if sp.X != 0 || sp.Y != 0 {
		t.Fatalf("expected (0,0) for roadless map, got (%d,%d)", sp.X, sp.Y)
	}
}

func TestClampPositionNoRoadsPassesThrough(t *testing.T) {
	m := NewMap("empty", "Empty", 1.0)
	x, y := m.ClampPosition(0, 0, 5, 5)
	if x != 5 || y != 5 {
		t.Fatalf("expected unclamped (5,5), got (%v,%v)", x, y)
	}
}

func TestClampPositionStaysOnRoad(t *testing.T) {
	m := newTestMap()
	x, y := m.ClampPosition(0, 0, 3, 0)
	if x != 3 || y != 0 {
		t.Fatalf("expected (3,0), got (%v,%v)", x, y)
	}
}

func TestClampPositionSnapsYToAxis(t *testing.T) {
	m := newTestMap()
	x, y := m.ClampPosition(2, 0, 2, 0.3)
	if x != 2 || y != 0 {
		t.Fatalf("expected snap to y=0, got (%v,%v)", x, y)
	}
}

func TestClampPositionRoadEndOvershoot(t *testing.T) {
	m := newTestMap()
	x, y := m.ClampPosition(9, 0, 10.5, 0)
	if x != 10.5 || y != 0 {
		t.Fatalf("expected half-unit overshoot accepted, got (%v,%v)", x, y)
	}
}

func TestClampPositionRejectsBeyondOvershoot(t *testing.T) {
	m := newTestMap()
	x, y := m.ClampPosition(10.5, 0, 11, 0)
	if x != 10.5 || y != 0 {
		t.Fatalf("expected position held at (10.5,0), got (%v,%v)", x, y)
	}
}

func TestClampPositionBuildingBlocksMove(t *testing.T) {
	m := newTestMap()
	m.AddBuilding(NewBuilding(Rectangle{Position: Point{X: 2, Y: 0}, Size: Size{Width: 2, Height: 2}}))
	x, y := m.ClampPosition(1, 0, 2, 0)
	if x != 1 || y != 0 {
		t.Fatalf("expected building to block move, got (%v,%v)", x, y)
	}
}

func TestClampPositionTieBreakByInsertionOrder(t *testing.T) {
	// Two roads that both could claim (5,0): a horizontal one inserted
	// first must win even though a later vertical one also overlaps.
	m := NewMap("cross", "Cross", 1.0)
	m.AddRoad(NewHorizontalRoad(Point{X: 0, Y: 0}, 10))
	m.AddRoad(NewVerticalRoad(Point{X: 5, Y: -5}, 5))

	x, y := m.ClampPosition(4, 0, 5, 0.2)
	if x != 5 || y != 0 {
		t.Fatalf("expected first road (horizontal) to win the tie, got (%v,%v)", x, y)
	}
}

func TestAddOfficeRejectsDuplicateID(t *testing.T) {
	m := newTestMap()
	if err := m.AddOffice(NewOffice("o1", Point{X: 1, Y: 1}, Offset{})); err != nil {
		t.Fatalf("unexpected error adding first office: %v", err)
	}
	if err := m.AddOffice(NewOffice("o1", Point{X: 2, Y: 2}, Offset{})); err == nil {
		t.Fatal("expected error adding duplicate office id")
	}
}
