package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/trailgo/trail/internal/config"
	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/game"
	"github.com/trailgo/trail/internal/persist"
	"github.com/trailgo/trail/internal/scripting"
	"github.com/trailgo/trail/internal/sim"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              The Oregon Trail             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main game logic ───────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/trail.toml"
	if p := os.Getenv("TRAIL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Load data tables
	printSection("Data")
	trailTable, err := data.LoadTrailTable(cfg.Data.Trail)
	if err != nil {
		return fmt.Errorf("load trail table: %w", err)
	}
	printStat("Landmarks", trailTable.Count())

	storeTable, err := data.LoadStoreTable(cfg.Data.Store)
	if err != nil {
		return fmt.Errorf("load store table: %w", err)
	}
	printStat("Store items", storeTable.Count())

	climateTable, err := data.LoadClimateTable(cfg.Data.Climate)
	if err != nil {
		return fmt.Errorf("load climate table: %w", err)
	}
	printStat("Climates", climateTable.Count())

	eventTable, err := data.LoadEventTable(cfg.Data.Events)
	if err != nil {
		return fmt.Errorf("load event table: %w", err)
	}
	printStat("Catalog events", eventTable.Count())
	fmt.Println()

	// 4. Build the simulation
	s, err := newSimulation(cfg, trailTable, storeTable, climateTable, log)
	if err != nil {
		return err
	}
	if err := game.RegisterCatalog(s.Director(), eventTable); err != nil {
		return fmt.Errorf("register catalog: %w", err)
	}

	// 5. Lua events
	if cfg.Scripting.Enabled {
		printSection("Scripting")
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting engine: %w", err)
		}
		defer engine.Close()
		if err := engine.Register(s.Director()); err != nil {
			return fmt.Errorf("register scripted events: %w", err)
		}
		printStat("Scripted events", engine.Count())
		fmt.Println()
	}
	printStat("Events total", s.Director().Count())
	printStat("States", s.Registry().Count())
	fmt.Println()

	// 6. Highscores and journal
	if cfg.Database.Enabled {
		printSection("Database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK(fmt.Sprintf("%s connected", cfg.Database.Dialect))

		if err := persist.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()
		s.SetRecorder(persist.NewHighscoreRepo(db), persist.NewJournalRepo(db))
	}

	// 7. Game loop
	if err := s.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Info("simulation started",
		zap.String("session", s.ID().String()),
		zap.Stringer("role", s.Clock().Role()),
		zap.Stringer("date", s.Date()),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	lines := readLines(os.Stdin)

	show(s)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				log.Info("input closed")
				return nil
			}
			_ = s.Input(line)
			if s.Terminated() {
				log.Info("simulation ended", zap.Uint64("turns", s.Clock().Turns()))
				return nil
			}
			show(s)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// loadConfig falls back to the built-in defaults when the file is missing.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func newSimulation(cfg *config.Config, trails *data.TrailTable, store *data.StoreTable, climates *data.ClimateTable, log *zap.Logger) (*sim.Simulation, error) {
	role, err := clock.ParseRole(cfg.Simulation.Role)
	if err != nil {
		return nil, err
	}
	start, err := cfg.Simulation.Start()
	if err != nil {
		return nil, err
	}
	profile, ok := climates.Get(cfg.Simulation.Climate)
	if !ok {
		return nil, fmt.Errorf("climate %q not in %s", cfg.Simulation.Climate, cfg.Data.Climate)
	}
	trail, err := trails.NewTrail()
	if err != nil {
		return nil, fmt.Errorf("build trail: %w", err)
	}
	return sim.New(sim.Options{
		Role:         role,
		Seed:         cfg.Simulation.Seed,
		Start:        clock.Date{Year: start.Year(), Month: start.Month(), Day: start.Day()},
		MilesPerPace: cfg.Simulation.MilesPerPace,
		VehicleName:  cfg.Simulation.VehicleName,
		Climate:      profile,
		Trail:        trail,
		Store:        store,
		DailyChance:  cfg.Events.DailyChance,
		Weights:      cfg.Events.Weights,
	}, log)
}

// readLines forwards stdin to the game loop. The channel closes at EOF.
func readLines(f *os.File) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func show(s *sim.Simulation) {
	fmt.Printf("\n\033[90m%s\033[0m\n\n%s\n> ", s.Title(), s.Render())
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
