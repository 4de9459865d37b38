package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `{
  "defaultDogSpeed": 3.0,
  "maps": [
    {
      "id": "m1",
      "name": "Town",
      "dogSpeed": 2.0,
      "roads": [
        {"x0": 0, "y0": 0, "x1": 10},
        {"x0": 5, "y0": 0, "y1": 8}
      ],
      "buildings": [
        {"x": 2, "y": 2, "w": 3, "h": 3}
      ],
      "offices": [
        {"id": "o1", "x": 5, "y": 0, "offsetX": 1, "offsetY": -1}
      ]
    },
    {
      "id": "m2",
      "name": "Village",
      "roads": [{"x0": 0, "y0": 0, "y1": 4}],
      "buildings": [],
      "offices": []
    }
  ]
}`

func TestParseBuildsMaps(t *testing.T) {
	g, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	m1 := g.FindMap("m1")
	if m1 == nil {
		t.Fatal("map m1 missing")
	}
	if m1.Name != "Town" || m1.DogSpeed != 2.0 {
		t.Fatalf("m1 = {%s %v}", m1.Name, m1.DogSpeed)
	}
	if len(m1.Roads()) != 2 || len(m1.Buildings()) != 1 || len(m1.Offices()) != 1 {
		t.Fatalf("m1 has %d roads, %d buildings, %d offices",
			len(m1.Roads()), len(m1.Buildings()), len(m1.Offices()))
	}
	if !m1.Roads()[0].IsHorizontal() || !m1.Roads()[1].IsVertical() {
		t.Fatal("road orientations not taken from x1/y1 presence")
	}
	if end := m1.Roads()[0].End(); end.X != 10 || end.Y != 0 {
		t.Fatalf("horizontal road end = (%d,%d), want (10,0)", end.X, end.Y)
	}

	m2 := g.FindMap("m2")
	if m2 == nil {
		t.Fatal("map m2 missing")
	}
	if m2.DogSpeed != 3.0 {
		t.Fatalf("m2 dog speed = %v, want inherited 3.0", m2.DogSpeed)
	}
}

func TestParseDefaultDogSpeedFallback(t *testing.T) {
	g, err := Parse([]byte(`{"maps":[{"id":"m1","name":"M","roads":[],"buildings":[],"offices":[]}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if speed := g.FindMap("m1").DogSpeed; speed != DefaultDogSpeed {
		t.Fatalf("dog speed = %v, want default %v", speed, DefaultDogSpeed)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"road without endpoint", `{"maps":[{"id":"m1","name":"M","roads":[{"x0":0,"y0":0}]}]}`},
		{"duplicate map id", `{"maps":[{"id":"m1","name":"A"},{"id":"m1","name":"B"}]}`},
		{"duplicate office id", `{"maps":[{"id":"m1","name":"M","offices":[{"id":"o1","x":0,"y":0,"offsetX":0,"offsetY":0},{"id":"o1","x":1,"y":1,"offsetX":0,"offsetY":0}]}]}`},
		{"empty map id", `{"maps":[{"id":"","name":"M"}]}`},
		{"negative default speed", `{"defaultDogSpeed":-1,"maps":[]}`},
		{"zero map speed", `{"maps":[{"id":"m1","name":"M","dogSpeed":0}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.data)); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if g.FindMap("m1") == nil || g.FindMap("m2") == nil {
		t.Fatal("loaded game missing maps")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error loading missing file")
	}
}
