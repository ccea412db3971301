package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trailgo/trail/internal/world"
)

const shipped = "../../data/yaml"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestShippedTables(t *testing.T) {
	trail, err := LoadTrailTable(filepath.Join(shipped, "trail.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if trail.Count() < 2 {
		t.Fatalf("trail has %d landmarks", trail.Count())
	}
	tr, err := trail.NewTrail()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Length() <= 0 {
		t.Fatalf("trail length %d", tr.Length())
	}

	store, err := LoadStoreTable(filepath.Join(shipped, "store.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if store.Get(world.ItemFood) == nil {
		t.Fatal("store does not sell food")
	}

	climate, err := LoadClimateTable(filepath.Join(shipped, "climate.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := climate.Get("moderate"); !ok {
		t.Fatal("moderate climate missing")
	}

	events, err := LoadEventTable(filepath.Join(shipped, "events.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	thief, ok := events.Get("thief")
	if !ok {
		t.Fatal("thief event missing")
	}
	if thief.Prefab != "item_destroyer" || thief.KillVerb != "murdered" {
		t.Fatalf("thief = %+v", thief)
	}
}

func TestTrailTableRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"too short", "landmarks:\n  - {name: A, kind: end, mile: 0}\n", "at least"},
		{"bad kind", "landmarks:\n  - {name: A, mile: 0}\n  - {name: B, kind: lake, mile: 5}\n", "unknown landmark kind"},
		{"end not last", "landmarks:\n  - {name: A, kind: end, mile: 0}\n  - {name: B, mile: 5}\n", "not last"},
		{"no end", "landmarks:\n  - {name: A, mile: 0}\n  - {name: B, mile: 5}\n", "kind end"},
		{"out of order", "landmarks:\n  - {name: A, mile: 10}\n  - {name: B, kind: end, mile: 5}\n", "not after"},
		{"duplicate", "landmarks:\n  - {name: A, mile: 0}\n  - {name: A, kind: end, mile: 5}\n", "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrailTable(writeFile(t, "trail.yaml", tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestTrailTableFreshTrails(t *testing.T) {
	table, err := LoadTrailTable(writeFile(t, "trail.yaml",
		"landmarks:\n  - {name: A, mile: 0}\n  - {name: B, kind: end, mile: 5, description: done}\n"))
	if err != nil {
		t.Fatal(err)
	}
	first, _ := table.NewTrail()
	first.Reached(0)
	first.Reached(10)
	second, _ := table.NewTrail()
	if len(second.Passed()) != 0 {
		t.Fatal("trails share progress")
	}
	b, ok := table.Get("B")
	if !ok || b.Kind != world.LandmarkEnd || b.Description != "done" {
		t.Fatalf("B = %+v", b)
	}
}

func TestStoreTable(t *testing.T) {
	table, err := LoadStoreTable(writeFile(t, "store.yaml",
		"store:\n  - {item: food, cents: 20}\n  - {item: oxen, cents: 4000, pack_count: 2, label: Oxen}\n"))
	if err != nil {
		t.Fatal(err)
	}
	food := table.Get(world.ItemFood)
	if food.PackCount != 1 || food.Label != "food" {
		t.Fatalf("food defaults = %+v", food)
	}
	if got := table.Items()[1].Item; got != world.ItemOxen {
		t.Fatalf("order: second item %s", got)
	}

	for _, body := range []string{
		"store:\n  - {item: gold, cents: 1}\n",
		"store:\n  - {item: food, cents: 0}\n",
		"store:\n  - {item: food, cents: 1}\n  - {item: food, cents: 2}\n",
	} {
		if _, err := LoadStoreTable(writeFile(t, "store.yaml", body)); err == nil {
			t.Fatalf("accepted %q", body)
		}
	}
}

func TestClimateTableMonths(t *testing.T) {
	_, err := LoadClimateTable(writeFile(t, "climate.yaml",
		"climates:\n  - name: short\n    months:\n      - {temp: 1, humidity: 0.5, rainfall: 0.5}\n"))
	if err == nil || !strings.Contains(err.Error(), "want 12") {
		t.Fatalf("err = %v", err)
	}
}

func TestEventTable(t *testing.T) {
	table, err := LoadEventTable(writeFile(t, "events.yaml",
		"events:\n  - {id: a, category: wild, prefab: lose_time, days: 1}\n"))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := table.Get("a")
	if a.Weight != 1 {
		t.Fatalf("default weight = %d, want 1", a.Weight)
	}
	if _, err := LoadEventTable(writeFile(t, "events.yaml",
		"events:\n  - {id: a, prefab: x}\n  - {id: a, prefab: x}\n")); err == nil {
		t.Fatal("duplicate id accepted")
	}
	if _, err := LoadEventTable(writeFile(t, "events.yaml", "events:\n  - {id: a}\n")); err == nil {
		t.Fatal("missing prefab accepted")
	}
}
