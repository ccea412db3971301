package data

import (
	"fmt"
	"os"

	"github.com/trailgo/trail/internal/world"
	"gopkg.in/yaml.v3"
)

// ClimateTable holds the named climate profiles.
type ClimateTable struct {
	profiles map[string]world.ClimateProfile
	order    []string
}

// Get returns a profile by name.
func (t *ClimateTable) Get(name string) (world.ClimateProfile, bool) {
	p, ok := t.profiles[name]
	return p, ok
}

// Names returns profile names in file order.
func (t *ClimateTable) Names() []string {
	return t.order
}

// Count returns the number of profiles loaded.
func (t *ClimateTable) Count() int {
	return len(t.profiles)
}

type monthYAML struct {
	Temp     float64 `yaml:"temp"`
	Humidity float64 `yaml:"humidity"`
	Rainfall float64 `yaml:"rainfall"`
}

type climateYAMLEntry struct {
	Name   string      `yaml:"name"`
	Months []monthYAML `yaml:"months"`
}

type climateFile struct {
	Climates []climateYAMLEntry `yaml:"climates"`
}

// LoadClimateTable loads climate profiles; each must list twelve months.
func LoadClimateTable(path string) (*ClimateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("climate: read %s: %w", path, err)
	}

	var f climateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("climate: parse %s: %w", path, err)
	}

	t := &ClimateTable{profiles: make(map[string]world.ClimateProfile, len(f.Climates))}
	for _, e := range f.Climates {
		if len(e.Months) != 12 {
			return nil, fmt.Errorf("climate: %s: %q has %d months, want 12", path, e.Name, len(e.Months))
		}
		if _, dup := t.profiles[e.Name]; dup {
			return nil, fmt.Errorf("climate: %s: duplicate climate %q", path, e.Name)
		}
		p := world.ClimateProfile{Name: e.Name}
		for i, m := range e.Months {
			if m.Humidity < 0 || m.Humidity > 1 || m.Rainfall < 0 || m.Rainfall > 1 {
				return nil, fmt.Errorf("climate: %s: %q month %d: humidity and rainfall must be in [0,1]", path, e.Name, i+1)
			}
			p.Months[i] = world.MonthNorm{TempF: m.Temp, Humidity: m.Humidity, Rainfall: m.Rainfall}
		}
		t.profiles[e.Name] = p
		t.order = append(t.order, e.Name)
	}
	return t, nil
}
