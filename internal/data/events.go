package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EventEntry is one catalog event: a Go prefab plus its parameters.
type EventEntry struct {
	ID          string  `yaml:"id"`
	Category    string  `yaml:"category"`
	Weight      int     `yaml:"weight"`
	Prefab      string  `yaml:"prefab"`
	Text        string  `yaml:"text"`
	Days        int     `yaml:"days"`
	Damage      int     `yaml:"damage"`
	Share       float64 `yaml:"share"`
	KillChance  float64 `yaml:"kill_chance"`
	KillVerb    string  `yaml:"kill_verb"`
	Item        string  `yaml:"item"`
	MinSeverity int     `yaml:"min_severity"`
}

// EventTable is the event catalog in file order.
type EventTable struct {
	entries []EventEntry
	byID    map[string]int
}

// Entries returns every event in file order.
func (t *EventTable) Entries() []EventEntry {
	return t.entries
}

// Get returns an entry by id.
func (t *EventTable) Get(id string) (EventEntry, bool) {
	i, ok := t.byID[id]
	if !ok {
		return EventEntry{}, false
	}
	return t.entries[i], true
}

// Count returns the number of events loaded.
func (t *EventTable) Count() int {
	return len(t.entries)
}

type eventFile struct {
	Events []EventEntry `yaml:"events"`
}

// LoadEventTable loads the event catalog. Prefab names and categories are
// checked when the entries are registered with the director.
func LoadEventTable(path string) (*EventTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("events: read %s: %w", path, err)
	}

	var f eventFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("events: parse %s: %w", path, err)
	}

	t := &EventTable{
		entries: make([]EventEntry, 0, len(f.Events)),
		byID:    make(map[string]int, len(f.Events)),
	}
	for _, e := range f.Events {
		if e.ID == "" || e.Prefab == "" {
			return nil, fmt.Errorf("events: %s: entry needs id and prefab", path)
		}
		if _, dup := t.byID[e.ID]; dup {
			return nil, fmt.Errorf("events: %s: duplicate id %q", path, e.ID)
		}
		if e.Weight == 0 {
			e.Weight = 1
		}
		t.byID[e.ID] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}
