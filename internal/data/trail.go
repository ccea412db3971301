package data

import (
	"fmt"
	"os"

	"github.com/trailgo/trail/internal/world"
	"gopkg.in/yaml.v3"
)

// LandmarkEntry is one point of interest from trail.yaml.
type LandmarkEntry struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"` // landmark, settlement, river, end
	Mile        int    `yaml:"mile"`
	Store       bool   `yaml:"store"`
	Description string `yaml:"description"`
}

// TrailTable holds the landmarks in trail order.
type TrailTable struct {
	landmarks []world.Landmark
	byName    map[string]int
}

// Count returns the number of landmarks loaded.
func (t *TrailTable) Count() int {
	return len(t.landmarks)
}

// Get returns the landmark with the given name.
func (t *TrailTable) Get(name string) (world.Landmark, bool) {
	i, ok := t.byName[name]
	if !ok {
		return world.Landmark{}, false
	}
	return t.landmarks[i], true
}

// NewTrail builds a fresh trail for one run. Each run needs its own since a
// trail tracks progress.
func (t *TrailTable) NewTrail() (*world.Trail, error) {
	lms := make([]world.Landmark, len(t.landmarks))
	copy(lms, t.landmarks)
	return world.NewTrail(lms)
}

type trailFile struct {
	Landmarks []LandmarkEntry `yaml:"landmarks"`
}

// LoadTrailTable loads the landmark list from YAML. The last landmark must be
// the end of the trail.
func LoadTrailTable(path string) (*TrailTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trail: read %s: %w", path, err)
	}

	var f trailFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("trail: parse %s: %w", path, err)
	}
	if len(f.Landmarks) < 2 {
		return nil, fmt.Errorf("trail: %s: need at least a start and an end, got %d landmarks", path, len(f.Landmarks))
	}

	t := &TrailTable{
		landmarks: make([]world.Landmark, 0, len(f.Landmarks)),
		byName:    make(map[string]int, len(f.Landmarks)),
	}
	for i, e := range f.Landmarks {
		kind, err := parseLandmarkKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("trail: %s: landmark %q: %w", path, e.Name, err)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("trail: %s: duplicate landmark %q", path, e.Name)
		}
		if kind == world.LandmarkEnd && i != len(f.Landmarks)-1 {
			return nil, fmt.Errorf("trail: %s: end landmark %q is not last", path, e.Name)
		}
		t.byName[e.Name] = i
		t.landmarks = append(t.landmarks, world.Landmark{
			Name:        e.Name,
			Kind:        kind,
			Mile:        e.Mile,
			HasStore:    e.Store,
			Description: e.Description,
		})
	}
	if t.landmarks[len(t.landmarks)-1].Kind != world.LandmarkEnd {
		return nil, fmt.Errorf("trail: %s: last landmark must have kind end", path)
	}
	// Validate ordering once at load so NewTrail cannot fail later.
	if _, err := world.NewTrail(t.landmarks); err != nil {
		return nil, fmt.Errorf("trail: %s: %w", path, err)
	}
	return t, nil
}

func parseLandmarkKind(s string) (world.LandmarkKind, error) {
	switch world.LandmarkKind(s) {
	case "", world.LandmarkPlain:
		return world.LandmarkPlain, nil
	case world.LandmarkSettlement, world.LandmarkRiver, world.LandmarkEnd:
		return world.LandmarkKind(s), nil
	}
	return "", fmt.Errorf("unknown landmark kind %q", s)
}
