package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DateLayout is the layout of simulation.start_date.
const DateLayout = "2006-01-02"

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Events     EventsConfig     `toml:"events"`
	Data       DataConfig       `toml:"data"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	Role         string `toml:"role"`          // "server" advances the clock, "client" only observes
	Seed         uint64 `toml:"seed"`          // 0 = seed from the session id
	StartDate    string `toml:"start_date"`    // YYYY-MM-DD
	Climate      string `toml:"climate"`       // profile name from climate.yaml
	MilesPerPace int    `toml:"miles_per_pace"` // miles per day per pace step
	VehicleName  string `toml:"vehicle_name"`
	StartTime    int64  // set at boot, not from config
}

type EventsConfig struct {
	DailyChance float64        `toml:"daily_chance"` // chance of a random event per travel day (0.0-1.0)
	Weights     map[string]int `toml:"weights"`      // category -> relative weight
}

type DataConfig struct {
	Trail   string `toml:"trail"`
	Store   string `toml:"store"`
	Climate string `toml:"climate"`
	Events  string `toml:"events"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DatabaseConfig struct {
	Enabled         bool          `toml:"enabled"`
	Dialect         string        `toml:"dialect"` // "sqlite" or "postgres"
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Simulation.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration, used when no file exists.
func Default() *Config {
	cfg := defaults()
	cfg.Simulation.StartTime = time.Now().Unix()
	return cfg
}

// Validate checks values the game cannot run with.
func (c *Config) Validate() error {
	switch c.Simulation.Role {
	case "server", "client":
	default:
		return fmt.Errorf("simulation.role %q: want server or client", c.Simulation.Role)
	}
	if _, err := c.Simulation.Start(); err != nil {
		return err
	}
	if c.Simulation.MilesPerPace <= 0 {
		return fmt.Errorf("simulation.miles_per_pace %d must be positive", c.Simulation.MilesPerPace)
	}
	if c.Events.DailyChance < 0 || c.Events.DailyChance > 1 {
		return fmt.Errorf("events.daily_chance %.2f must be in [0,1]", c.Events.DailyChance)
	}
	for cat, w := range c.Events.Weights {
		if w < 0 {
			return fmt.Errorf("events.weights.%s %d must not be negative", cat, w)
		}
	}
	switch c.Database.Dialect {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.dialect %q: want sqlite or postgres", c.Database.Dialect)
	}
	return nil
}

// Start parses the configured start date.
func (s SimulationConfig) Start() (time.Time, error) {
	t, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("simulation.start_date %q: %w", s.StartDate, err)
	}
	return t, nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Role:         "server",
			StartDate:    "1985-05-05",
			Climate:      "moderate",
			MilesPerPace: 12,
			VehicleName:  "Wagon",
		},
		Events: EventsConfig{
			DailyChance: 0.15,
			Weights: map[string]int{
				"wild":    3,
				"person":  3,
				"vehicle": 2,
				"weather": 2,
			},
		},
		Data: DataConfig{
			Trail:   "data/yaml/trail.yaml",
			Store:   "data/yaml/store.yaml",
			Climate: "data/yaml/climate.yaml",
			Events:  "data/yaml/events.yaml",
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Database: DatabaseConfig{
			Enabled:         true,
			Dialect:         "sqlite",
			DSN:             "tmp/trail.sqlite",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
