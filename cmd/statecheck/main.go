// statecheck builds the state registry and the event director offline,
// validates them and prints their metadata as YAML.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/trailgo/trail/internal/config"
	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/game"
	"github.com/trailgo/trail/internal/scripting"
	"github.com/trailgo/trail/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type StateDoc struct {
	ID       string `yaml:"id"`
	Kind     string `yaml:"kind"`
	Mode     string `yaml:"mode"`
	Window   string `yaml:"window,omitempty"`
	Root     string `yaml:"root,omitempty"`
	Abstract bool   `yaml:"abstract,omitempty"`
}

type EventDoc struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Weight   int    `yaml:"weight"`
	Source   string `yaml:"source"`
}

type Report struct {
	States []StateDoc `yaml:"states"`
	Events []EventDoc `yaml:"events"`
}

func main() {
	if len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "Usage: statecheck [config.toml] [output.yaml]")
		os.Exit(1)
	}
	cfgPath := "config/trail.toml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	report, err := check(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := yaml.Marshal(report)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(os.Args[2], out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d states and %d events to %s\n", len(report.States), len(report.Events), os.Args[2])
}

func check(cfgPath string) (*Report, error) {
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	trails, err := data.LoadTrailTable(cfg.Data.Trail)
	if err != nil {
		return nil, err
	}
	trail, err := trails.NewTrail()
	if err != nil {
		return nil, err
	}
	store, err := data.LoadStoreTable(cfg.Data.Store)
	if err != nil {
		return nil, err
	}
	events, err := data.LoadEventTable(cfg.Data.Events)
	if err != nil {
		return nil, err
	}

	// Registration seals the registry, which validates ownership.
	s, err := sim.New(sim.Options{
		Role:         clock.RoleServer,
		MilesPerPace: cfg.Simulation.MilesPerPace,
		Trail:        trail,
		Store:        store,
	}, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if err := game.RegisterCatalog(s.Director(), events); err != nil {
		return nil, err
	}

	scripted := map[string]bool{}
	if cfg.Scripting.Enabled {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, zap.NewNop())
		if err != nil {
			return nil, err
		}
		defer engine.Close()
		if err := engine.Register(s.Director()); err != nil {
			return nil, err
		}
		for _, ev := range engine.Events() {
			scripted[ev.ID] = true
		}
	}

	r := &Report{}
	for _, d := range s.Registry().Descriptors() {
		r.States = append(r.States, StateDoc{
			ID:       string(d.ID),
			Kind:     d.Kind.String(),
			Mode:     string(d.Mode),
			Window:   string(d.Window),
			Root:     string(d.Root),
			Abstract: d.Abstract(),
		})
	}
	for _, rec := range s.Director().Records() {
		src := "catalog"
		if scripted[rec.ID] {
			src = "script"
		}
		r.Events = append(r.Events, EventDoc{ID: rec.ID, Category: string(rec.Category), Weight: rec.Weight, Source: src})
	}
	return r, nil
}
