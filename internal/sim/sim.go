// Package sim is the simulation root. It owns the world, the clock, the state
// machine and the event director, and wires the clock's boundary
// notifications to the subscribers that mutate the world.
package sim

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/director"
	"github.com/trailgo/trail/internal/game"
	"github.com/trailgo/trail/internal/persist"
	"github.com/trailgo/trail/internal/world"
	"go.uber.org/zap"
)

// Options configures one simulation.
type Options struct {
	Role         clock.Role
	Seed         uint64 // 0 derives the seed from the session id
	Start        clock.Date
	MilesPerPace int
	VehicleName  string
	Climate      world.ClimateProfile
	Trail        *world.Trail
	Store        *data.StoreTable
	// DailyChance is the chance of a random event on a travel day.
	DailyChance float64
	// Weights are relative category weights; missing categories never fire.
	Weights map[string]int
}

// Simulation is the root every state reaches through game.Session.
// Single-goroutine access only (game loop).
type Simulation struct {
	id       uuid.UUID
	rng      *rand.Rand
	world    *world.World
	clock    *clock.Clock
	registry *state.Registry
	machine  *state.Machine
	director *director.Director
	store    *data.StoreTable
	log      *zap.Logger

	vehicleName string
	dailyChance float64
	weights     []categoryWeight

	scores  *persist.HighscoreRepo
	journal *persist.JournalRepo
	entries []persist.JournalEntry

	// lastMiles is what the vehicle covered on the current tick.
	lastMiles int
	// arrived is set when the current tick reached a landmark.
	arrived bool
	// over is set once GameOver has been requested.
	over bool
}

type categoryWeight struct {
	cat    director.Category
	weight int
}

// New builds a simulation with every game state registered and the registry
// sealed. Events are registered through Director before Start.
func New(opts Options, log *zap.Logger) (*Simulation, error) {
	if opts.Trail == nil {
		return nil, fmt.Errorf("new simulation: no trail")
	}
	if opts.MilesPerPace <= 0 {
		return nil, fmt.Errorf("new simulation: miles per pace %d must be positive", opts.MilesPerPace)
	}
	id := uuid.New()
	seed := opts.Seed
	if seed == 0 {
		seed = seedFrom(id.String())
	}
	rng := rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
	log = log.With(zap.String("session", id.String()))

	s := &Simulation{
		id:          id,
		rng:         rng,
		world:       world.NewWorld(world.NewClimate(opts.Climate), opts.Trail, opts.MilesPerPace),
		clock:       clock.New(opts.Role, opts.Start, clock.Paused, log.Named("clock")),
		registry:    state.NewRegistry(log.Named("state")),
		director:    director.New(rng, log.Named("director")),
		store:       opts.Store,
		log:         log,
		vehicleName: opts.VehicleName,
		dailyChance: opts.DailyChance,
	}
	if s.vehicleName == "" {
		s.vehicleName = "Wagon"
	}
	for _, c := range director.Categories {
		if w := opts.Weights[string(c)]; w > 0 {
			s.weights = append(s.weights, categoryWeight{cat: c, weight: w})
		}
	}

	if err := game.Register(s.registry, s); err != nil {
		return nil, fmt.Errorf("register states: %w", err)
	}
	if err := s.registry.Seal(); err != nil {
		return nil, fmt.Errorf("seal registry: %w", err)
	}
	s.machine = state.NewMachine(s.registry, log.Named("machine"))
	s.subscribe()
	return s, nil
}

func seedFrom(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func seedWord(seed uint64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// SetRecorder attaches the highscore and journal stores. Either may be nil.
func (s *Simulation) SetRecorder(scores *persist.HighscoreRepo, journal *persist.JournalRepo) {
	s.scores = scores
	s.journal = journal
}

// Start pushes the first mode.
func (s *Simulation) Start() error {
	return s.machine.PushMode(game.ModeNewGame)
}

// Input dispatches one line. Transitions requested while handling the line,
// including those from ticks it causes, apply after the handler returns.
func (s *Simulation) Input(line string) error {
	var err error
	if batchErr := s.machine.Batch(func() { err = s.machine.DispatchInput(line) }); batchErr != nil {
		err = errors.Join(err, batchErr)
	}
	if err == nil {
		return nil
	}
	switch fault.ClassOf(err) {
	case fault.ClassNotice:
		s.log.Debug("input not handled", zap.String("mode", string(s.machine.ActiveMode())), zap.Error(err))
	case fault.ClassRequest, fault.ClassRuntimeData:
		s.log.Warn("input failed", zap.String("mode", string(s.machine.ActiveMode())), zap.Error(err))
	default:
		s.log.Error("input failed", zap.String("mode", string(s.machine.ActiveMode())), zap.Error(err))
	}
	return err
}

// Render returns the active prompt.
func (s *Simulation) Render() string { return s.machine.Render() }

// Title is the one-line window title. Clients have no turn counter.
func (s *Simulation) Title() string {
	mode := s.machine.ActiveMode()
	if mode == "" {
		mode = "None"
	}
	title := fmt.Sprintf("Oregon Trail %s - Mode: %s", s.clock.Role(), mode)
	// Only the authoritative side counts turns.
	if s.clock.Role() == clock.RoleServer {
		title += fmt.Sprintf(" - Turns: %04d", s.clock.Turns())
	}
	return title
}

// Terminated reports whether the last mode has been popped.
func (s *Simulation) Terminated() bool { return s.machine.Terminated() }

// ID is the session id; it doubles as the run id of saved scores.
func (s *Simulation) ID() uuid.UUID { return s.id }

func (s *Simulation) Director() *director.Director { return s.director }
func (s *Simulation) Registry() *state.Registry    { return s.registry }
func (s *Simulation) Machine() *state.Machine      { return s.machine }
func (s *Simulation) Clock() *clock.Clock          { return s.clock }
func (s *Simulation) Journal() []persist.JournalEntry {
	return s.entries
}

// --- game.Session ---

func (s *Simulation) World() *world.World        { return s.world }
func (s *Simulation) Date() clock.Date           { return s.clock.Date() }
func (s *Simulation) Pace() clock.Pace           { return s.clock.Pace() }
func (s *Simulation) SetPace(p clock.Pace) error { return s.clock.SetPace(p) }
func (s *Simulation) Store() *data.StoreTable    { return s.store }

// TakeTurn ticks the clock once. Mode pushes requested by subscribers are
// queued until every notification of the tick has run.
func (s *Simulation) TakeTurn() error {
	var err error
	if batchErr := s.machine.Batch(func() { err = s.clock.Tick() }); batchErr != nil {
		return errors.Join(err, batchErr)
	}
	return err
}

// Advance ticks days times at the current pace. It stops early once the run is over.
func (s *Simulation) Advance(days int) error {
	for i := 0; i < days && !s.over; i++ {
		if err := s.TakeTurn(); err != nil {
			return err
		}
	}
	return nil
}

// Rest ticks days times with the wagon stopped.
func (s *Simulation) Rest(days int) error {
	prev := s.clock.Pace()
	if err := s.clock.SetPace(clock.Paused); err != nil {
		return err
	}
	err := s.Advance(days)
	if perr := s.clock.SetPace(prev); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}

// Embark names the party and puts it in a new vehicle at the trail head.
func (s *Simulation) Embark(prof world.Profession, names []string) error {
	party, err := world.NewParty(prof, names...)
	if err != nil {
		return fmt.Errorf("embark: %w", err)
	}
	v := s.world.Embark(s.vehicleName, party)
	v.Pace = int(s.clock.Pace())
	s.world.Trail.Reached(v.Odometer)
	s.log.Info("party embarked",
		zap.Stringer("profession", prof),
		zap.Strings("names", names),
		zap.Int("cents", v.Cents),
	)
	return nil
}

// Finish saves the score and the event journal, then returns the top ten.
func (s *Simulation) Finish(ctx context.Context, name string, points int, rating string) ([]persist.HighscoreRow, error) {
	if s.journal != nil {
		if err := s.journal.Write(ctx, s.entries); err != nil {
			return nil, err
		}
	}
	if s.scores == nil {
		return nil, nil
	}
	if points > 0 {
		if err := s.scores.Save(ctx, persist.HighscoreRow{RunID: s.id, Name: name, Points: points, Rating: rating}); err != nil {
			return nil, err
		}
		s.log.Info("highscore saved", zap.String("name", name), zap.Int("points", points), zap.String("rating", rating))
	}
	return s.scores.Top(ctx, persist.TopTen)
}
