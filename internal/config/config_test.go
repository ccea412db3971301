package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trail.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[simulation]
role = "client"
seed = 42

[events]
daily_chance = 0.5

[events.weights]
wild = 9

[database]
dialect = "postgres"
dsn = "postgres://trail@localhost/trail"
conn_max_lifetime = "5m"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.Role != "client" || cfg.Simulation.Seed != 42 {
		t.Fatalf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Simulation.StartDate != "1985-05-05" || cfg.Simulation.Climate != "moderate" {
		t.Fatalf("defaults lost: %+v", cfg.Simulation)
	}
	if cfg.Events.DailyChance != 0.5 || cfg.Events.Weights["wild"] != 9 {
		t.Fatalf("events = %+v", cfg.Events)
	}
	if cfg.Database.ConnMaxLifetime.Minutes() != 5 {
		t.Fatalf("conn_max_lifetime = %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Simulation.StartTime == 0 {
		t.Fatal("start time not set")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"role", "[simulation]\nrole = \"observer\"\n", "simulation.role"},
		{"date", "[simulation]\nstart_date = \"May 5\"\n", "start_date"},
		{"miles", "[simulation]\nmiles_per_pace = 0\n", "miles_per_pace"},
		{"chance", "[events]\ndaily_chance = 1.5\n", "daily_chance"},
		{"weight", "[events.weights]\nwild = -1\n", "weights.wild"},
		{"dialect", "[database]\ndialect = \"mysql\"\n", "dialect"},
		{"syntax", "[simulation\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/trail.toml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Simulation.Start(); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}
