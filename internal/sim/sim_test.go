package sim

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trailgo/trail/internal/config"
	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/director"
	"github.com/trailgo/trail/internal/game"
	"github.com/trailgo/trail/internal/persist"
	"github.com/trailgo/trail/internal/world"
	"go.uber.org/zap"
)

const shipped = "../../data/yaml"

// shortTrail is 48 miles: a store at the start, a fort at 24, the end at 48.
func shortTrail(t *testing.T) *world.Trail {
	t.Helper()
	tr, err := world.NewTrail([]world.Landmark{
		{Name: "Start", Kind: world.LandmarkSettlement, Mile: 0, HasStore: true},
		{Name: "Fort Test", Kind: world.LandmarkSettlement, Mile: 24, HasStore: true},
		{Name: "Valley", Kind: world.LandmarkEnd, Mile: 48},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func testOptions(t *testing.T) Options {
	t.Helper()
	store, err := data.LoadStoreTable(filepath.Join(shipped, "store.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	climates, err := data.LoadClimateTable(filepath.Join(shipped, "climate.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	profile, ok := climates.Get("moderate")
	if !ok {
		t.Fatal("no moderate climate")
	}
	return Options{
		Role:         clock.RoleServer,
		Seed:         42,
		Start:        clock.Date{Year: 1985, Month: 5, Day: 5},
		MilesPerPace: 12,
		Climate:      profile,
		Trail:        shortTrail(t),
		Store:        store,
	}
}

func newSim(t *testing.T, opts Options) *Simulation {
	t.Helper()
	s, err := New(opts, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	return s
}

// feed sends lines and fails on anything but unhandled input.
func feed(t *testing.T, s *Simulation, lines ...string) {
	t.Helper()
	for _, l := range lines {
		if err := s.Input(l); err != nil && !errors.Is(err, fault.ErrUnhandledInput) {
			t.Fatalf("input %q: %v", l, err)
		}
	}
}

func wantMode(t *testing.T, s *Simulation, id string) {
	t.Helper()
	if got := string(s.Machine().ActiveMode()); got != id {
		t.Fatalf("active mode = %s, want %s", got, id)
	}
}

// outfit names a party and buys oxen and food, leaving the store.
func outfit(t *testing.T, s *Simulation) {
	t.Helper()
	feed(t, s, "1", "Ada", "Bo", "", "y")
	wantMode(t, s, string(game.ModeStore))
	feed(t, s, "oxen", "2", "food", "200", "leave")
	wantMode(t, s, string(game.ModeTravel))
}

func TestNewGameToStore(t *testing.T) {
	s := newSim(t, testOptions(t))
	wantMode(t, s, string(game.ModeNewGame))
	if !strings.Contains(s.Render(), "banker") {
		t.Fatalf("render = %q", s.Render())
	}

	feed(t, s, "1", "Ada", "Bo", "")
	if got := s.Machine().ActiveForm(); got != game.FormConfirmParty {
		t.Fatalf("form = %s, want ConfirmParty", got)
	}
	feed(t, s, "y")
	wantMode(t, s, string(game.ModeStore))
	if s.Machine().Depth() != 2 {
		t.Fatalf("depth = %d, want travel under store", s.Machine().Depth())
	}

	v := s.World().Vehicle
	if v == nil || len(v.Passengers()) != 2 || v.Party.Leader().Name() != "Ada" {
		t.Fatalf("vehicle = %+v", v)
	}
	feed(t, s, "leave")
	wantMode(t, s, string(game.ModeStore)) // no oxen yet
	if !strings.Contains(s.Render(), "need oxen") {
		t.Fatalf("render = %q", s.Render())
	}

	feed(t, s, "oxen", "2")
	if v.Supplies.Count(world.ItemOxen) != 4 || v.Cents != 160000-8000 {
		t.Fatalf("oxen = %d, cents = %d", v.Supplies.Count(world.ItemOxen), v.Cents)
	}
	feed(t, s, "leave")
	wantMode(t, s, string(game.ModeTravel))
}

func TestTravelToLandmarkAndEnd(t *testing.T) {
	ctx := context.Background()
	db, err := persist.NewDB(ctx, config.DatabaseConfig{
		Dialect: "sqlite",
		DSN:     filepath.Join(t.TempDir(), "trail.sqlite"),
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	if err := persist.RunMigrations(ctx, db); err != nil {
		t.Fatal(err)
	}
	journal := persist.NewJournalRepo(db)

	s := newSim(t, testOptions(t))
	s.SetRecorder(persist.NewHighscoreRepo(db), journal)
	outfit(t, s)

	feed(t, s, "continue", "")
	if s.Clock().Turns() != 1 || s.Pace() != clock.Steady {
		t.Fatalf("turns = %d, pace = %s", s.Clock().Turns(), s.Pace())
	}
	if got := s.World().Vehicle.Odometer; got != 12 {
		t.Fatalf("odometer = %d, want 12", got)
	}
	if got, want := s.Title(), "Oregon Trail Server - Mode: Travel - Turns: 0001"; got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}

	feed(t, s, "")
	wantMode(t, s, string(game.ModeLandmark))
	if !strings.Contains(s.Render(), "Fort Test") {
		t.Fatalf("render = %q", s.Render())
	}
	feed(t, s, "continue")
	wantMode(t, s, string(game.ModeTravel))
	if got := s.Machine().ActiveForm(); got != game.FormContinueOnTrail {
		t.Fatalf("form = %s, want ContinueOnTrail kept under the landmark", got)
	}

	feed(t, s, "", "")
	wantMode(t, s, string(game.ModeGameOver))
	if !s.World().Finished() {
		t.Fatal("world not finished")
	}
	if !strings.Contains(s.Render(), "Valley") {
		t.Fatalf("render = %q", s.Render())
	}

	feed(t, s, "")
	if got := s.Machine().ActiveForm(); got != game.FormFinalScore {
		t.Fatalf("form = %s, want FinalScore", got)
	}
	if !strings.Contains(s.Render(), "Stephen Meek") {
		t.Fatalf("top ten missing defaults: %q", s.Render())
	}
	feed(t, s, "")
	if !s.Terminated() {
		t.Fatal("not terminated after final score")
	}
	if got := s.Clock().Turns(); got != 4 {
		t.Fatalf("turns = %d, want 4", got)
	}
}

func TestPartyWipedEndsRun(t *testing.T) {
	s := newSim(t, testOptions(t))
	outfit(t, s)
	for _, p := range s.World().Party().Members() {
		p.Kill()
	}
	feed(t, s, "continue", "")
	wantMode(t, s, string(game.ModeGameOver))
	if !strings.Contains(s.Render(), "died") {
		t.Fatalf("render = %q", s.Render())
	}
	// A second tick must not queue another game over.
	if err := s.TakeTurn(); err != nil {
		t.Fatal(err)
	}
	if s.Machine().Depth() != 2 {
		t.Fatalf("depth = %d, want travel and one game over", s.Machine().Depth())
	}
}

type fixedEvent struct{ days int }

func (e fixedEvent) Execute(s *director.Snapshot) (*director.Result, error) {
	s.World.DaysLost += e.days
	return &director.Result{DaysLost: e.days}, nil
}

func (e fixedEvent) Render(_ *director.Snapshot, r *director.Result) (string, error) {
	return "A wheel came loose.", nil
}

func TestRandomEventInterruptsTravel(t *testing.T) {
	opts := testOptions(t)
	opts.DailyChance = 1
	opts.Weights = map[string]int{"wild": 1}
	s := newSim(t, opts)
	if err := s.Director().Register(director.Record{
		ID: "loose_wheel", Category: director.CategoryWild, Weight: 1, Event: fixedEvent{days: 2},
	}); err != nil {
		t.Fatal(err)
	}
	outfit(t, s)

	feed(t, s, "continue", "")
	wantMode(t, s, string(game.ModeRandomEvent))
	if !strings.Contains(s.Render(), "wheel came loose") {
		t.Fatalf("render = %q", s.Render())
	}
	if j := s.Journal(); len(j) != 1 || j[0].EventID != "loose_wheel" || j[0].Date != "1985-05-06" {
		t.Fatalf("journal = %+v", j)
	}

	feed(t, s, "")
	wantMode(t, s, string(game.ModeTravel))
	if got := s.Clock().Turns(); got != 3 {
		t.Fatalf("turns = %d, want 1 travel day plus 2 lost", got)
	}
	if s.World().DaysLost != 0 || s.Pace() != clock.Steady {
		t.Fatalf("days lost = %d, pace = %s", s.World().DaysLost, s.Pace())
	}
	if got := s.World().Vehicle.Odometer; got != 12 {
		t.Fatalf("odometer = %d, lost days must not move the wagon", got)
	}
}

// massacre kills every living passenger.
type massacre struct{}

func (massacre) Execute(s *director.Snapshot) (*director.Result, error) {
	res := &director.Result{}
	for _, p := range s.World.Vehicle.Passengers() {
		p.Kill()
		res.Killed = append(res.Killed, p.Name())
	}
	return res, nil
}

func (massacre) Render(_ *director.Snapshot, r *director.Result) (string, error) {
	return strings.Join(r.Killed, " and ") + " did not survive the night.", nil
}

func TestEventThatWipesPartyEndsRun(t *testing.T) {
	opts := testOptions(t)
	opts.DailyChance = 1
	opts.Weights = map[string]int{"wild": 1}
	s := newSim(t, opts)
	if err := s.Director().Register(director.Record{
		ID: "massacre", Category: director.CategoryWild, Weight: 1, Event: massacre{},
	}); err != nil {
		t.Fatal(err)
	}
	outfit(t, s)

	feed(t, s, "continue", "")
	wantMode(t, s, string(game.ModeRandomEvent))
	if !strings.Contains(s.Render(), "did not survive") {
		t.Fatalf("render = %q", s.Render())
	}

	feed(t, s, "")
	wantMode(t, s, string(game.ModeGameOver))
	if got := s.Clock().Turns(); got != 1 {
		t.Fatalf("turns = %d, a wiped party must not travel another day", got)
	}
	if !strings.Contains(s.Render(), "died") {
		t.Fatalf("render = %q", s.Render())
	}
}

func TestNoEventsWhileResting(t *testing.T) {
	opts := testOptions(t)
	opts.DailyChance = 1
	opts.Weights = map[string]int{"wild": 1}
	s := newSim(t, opts)
	if err := s.Director().Register(director.Record{
		ID: "loose_wheel", Category: director.CategoryWild, Weight: 1, Event: fixedEvent{},
	}); err != nil {
		t.Fatal(err)
	}
	outfit(t, s)

	feed(t, s, "rest", "3")
	if got := s.Machine().ActiveForm(); got != game.FormResting {
		t.Fatalf("form = %s, want Resting", got)
	}
	if s.Clock().Turns() != 3 || len(s.Journal()) != 0 {
		t.Fatalf("turns = %d, journal = %d", s.Clock().Turns(), len(s.Journal()))
	}
	feed(t, s, "")
	if got := s.Machine().ActiveWindow(); got != game.WinTrail {
		t.Fatalf("window = %s, want the trail window back", got)
	}
}

func TestPushesDeferredUntilTickEnds(t *testing.T) {
	s := newSim(t, testOptions(t))
	outfit(t, s)
	s.World().Vehicle.Odometer = 20

	var during string
	var pending int
	s.Clock().Subscribe(clock.DayEnd, "probe", func(clock.Notice) {
		during = string(s.Machine().ActiveMode())
		pending = s.Machine().Pending()
	})
	if err := s.SetPace(clock.Steady); err != nil {
		t.Fatal(err)
	}
	if err := s.TakeTurn(); err != nil {
		t.Fatal(err)
	}
	if during != string(game.ModeTravel) || pending != 1 {
		t.Fatalf("during tick: mode %s, pending %d", during, pending)
	}
	wantMode(t, s, string(game.ModeLandmark))
	if s.World().Vehicle.Odometer != 24 {
		t.Fatalf("odometer = %d, want clamped to the landmark", s.World().Vehicle.Odometer)
	}
}

func TestClientCannotTick(t *testing.T) {
	opts := testOptions(t)
	opts.Role = clock.RoleClient
	s := newSim(t, opts)
	outfit(t, s)

	if err := s.TakeTurn(); !errors.Is(err, fault.ErrRoleViolation) {
		t.Fatalf("tick err = %v, want role violation", err)
	}
	if err := s.Input("continue"); err != nil {
		t.Fatal(err)
	}
	if err := s.Input(""); !errors.Is(err, fault.ErrRoleViolation) {
		t.Fatalf("continue err = %v, want role violation", err)
	}
	if s.Clock().Turns() != 0 || s.World().Vehicle.Odometer != 0 {
		t.Fatalf("client mutated: turns %d, odometer %d", s.Clock().Turns(), s.World().Vehicle.Odometer)
	}
	if got, want := s.Title(), "Oregon Trail Client - Mode: Travel"; got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	opts := testOptions(t)
	opts.Trail = nil
	if _, err := New(opts, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing trail")
	}
	opts = testOptions(t)
	opts.MilesPerPace = 0
	if _, err := New(opts, zap.NewNop()); err == nil {
		t.Fatal("expected error for zero miles per pace")
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a := newSim(t, testOptions(t))
	b := newSim(t, testOptions(t))
	if a.rng.Uint64() != b.rng.Uint64() {
		t.Fatal("same seed gave different streams")
	}
	if a.ID() == b.ID() {
		t.Fatal("sessions share an id")
	}
}

func TestDayEndOrder(t *testing.T) {
	s := newSim(t, testOptions(t))
	got := strings.Join(s.Clock().Subscribers(clock.DayEnd), ",")
	if want := "climate,vehicle,point_of_interest,random_event"; got != want {
		t.Fatalf("day end subscribers = %s, want %s", got, want)
	}
}
