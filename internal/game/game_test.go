package game

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/persist"
	"github.com/trailgo/trail/internal/world"
	"go.uber.org/zap"
)

// fakeSession counts ticks instead of running a clock.
type fakeSession struct {
	world  *world.World
	store  *data.StoreTable
	pace   clock.Pace
	date   clock.Date
	ticks  int
	rested int
	saved  []persist.HighscoreRow
}

func (f *fakeSession) World() *world.World { return f.world }
func (f *fakeSession) Date() clock.Date    { return f.date }
func (f *fakeSession) Pace() clock.Pace    { return f.pace }
func (f *fakeSession) SetPace(p clock.Pace) error {
	f.pace = p
	return nil
}
func (f *fakeSession) Advance(days int) error {
	f.ticks += days
	return nil
}
func (f *fakeSession) Rest(days int) error {
	f.rested += days
	return nil
}
func (f *fakeSession) Embark(prof world.Profession, names []string) error {
	p, err := world.NewParty(prof, names...)
	if err != nil {
		return err
	}
	v := f.world.Embark("Wagon", p)
	v.Supplies.Add(world.ItemOxen, 2)
	return nil
}
func (f *fakeSession) Store() *data.StoreTable { return f.store }
func (f *fakeSession) Finish(_ context.Context, name string, points int, rating string) ([]persist.HighscoreRow, error) {
	f.saved = append(f.saved, persist.HighscoreRow{Name: name, Points: points, Rating: rating})
	return f.saved, nil
}

func newFake(t *testing.T) (*fakeSession, *state.Machine) {
	t.Helper()
	store, err := data.LoadStoreTable(filepath.Join("../../data/yaml", "store.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := world.NewTrail([]world.Landmark{
		{Name: "Start", Kind: world.LandmarkSettlement, Mile: 0, HasStore: true},
		{Name: "End", Kind: world.LandmarkEnd, Mile: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeSession{
		world: world.NewWorld(world.NewClimate(world.ClimateProfile{}), tr, 12),
		store: store,
		date:  clock.Date{Year: 1985, Month: 5, Day: 5},
	}
	reg := state.NewRegistry(zap.NewNop())
	if err := Register(reg, f); err != nil {
		t.Fatal(err)
	}
	if err := reg.Seal(); err != nil {
		t.Fatal(err)
	}
	return f, state.NewMachine(reg, zap.NewNop())
}

func send(t *testing.T, m *state.Machine, lines ...string) {
	t.Helper()
	for _, l := range lines {
		var err error
		if berr := m.Batch(func() { err = m.DispatchInput(l) }); berr != nil {
			t.Fatalf("input %q: queued transition failed: %v", l, berr)
		}
		if err != nil && !errors.Is(err, fault.ErrUnhandledInput) {
			t.Fatalf("input %q: %v", l, err)
		}
	}
}

// onTrail names a party and steps out of the store into travel.
func onTrail(t *testing.T) (*fakeSession, *state.Machine) {
	t.Helper()
	f, m := newFake(t)
	if err := m.PushMode(ModeNewGame); err != nil {
		t.Fatal(err)
	}
	send(t, m, "farmer", "Ada", "", "yes", "leave")
	if m.ActiveMode() != ModeTravel {
		t.Fatalf("mode = %s, want Travel", m.ActiveMode())
	}
	return f, m
}

func TestConfirmPartyNoStartsOver(t *testing.T) {
	f, m := newFake(t)
	if err := m.PushMode(ModeNewGame); err != nil {
		t.Fatal(err)
	}
	send(t, m, "2", "Ada", "Bo", "Cy", "")
	if !strings.Contains(m.Render(), "Carpenter") || !strings.Contains(m.Render(), "Ada (leader)") {
		t.Fatalf("confirm render = %q", m.Render())
	}
	send(t, m, "maybe")
	if m.ActiveForm() != FormConfirmParty {
		t.Fatalf("form = %s, unrecognised answer must re-prompt", m.ActiveForm())
	}
	send(t, m, "no")
	if m.ActiveForm() != "" || m.ActiveMode() != ModeNewGame {
		t.Fatalf("after no: mode %s form %s", m.ActiveMode(), m.ActiveForm())
	}
	if f.world.Vehicle != nil {
		t.Fatal("declined party embarked")
	}
}

func TestPartyNamesStopAtMax(t *testing.T) {
	_, m := newFake(t)
	if err := m.PushMode(ModeNewGame); err != nil {
		t.Fatal(err)
	}
	send(t, m, "1", "A", "B", "C", "D", "E")
	if m.ActiveForm() != FormConfirmParty {
		t.Fatalf("form = %s after %d names", m.ActiveForm(), world.MaxPartySize)
	}
}

func TestRestAmount(t *testing.T) {
	f, m := onTrail(t)
	send(t, m, "rest")
	if m.ActiveWindow() != WinCamp || m.ActiveForm() != FormRestAmount {
		t.Fatalf("window %s form %s", m.ActiveWindow(), m.ActiveForm())
	}

	send(t, m, "soon", "-1", "31")
	if m.ActiveForm() != FormRestAmount || f.rested != 0 {
		t.Fatalf("bad input accepted: form %s rested %d", m.ActiveForm(), f.rested)
	}

	send(t, m, "0")
	if m.ActiveWindow() != WinTrail || m.ActiveForm() != "" || f.rested != 0 {
		t.Fatalf("zero days: window %s form %s rested %d", m.ActiveWindow(), m.ActiveForm(), f.rested)
	}

	send(t, m, "camp", "4")
	if m.ActiveForm() != FormResting || f.rested != 4 {
		t.Fatalf("four days: form %s rested %d", m.ActiveForm(), f.rested)
	}
	if !strings.Contains(m.Render(), "rested for 4 days") {
		t.Fatalf("resting render = %q", m.Render())
	}
	send(t, m, "")
	if m.ActiveWindow() != WinTrail || m.WindowDepth() != 1 {
		t.Fatalf("window %s depth %d", m.ActiveWindow(), m.WindowDepth())
	}
}

func TestContinueOnTrail(t *testing.T) {
	f, m := onTrail(t)
	send(t, m, "continue", "", "")
	if f.ticks != 2 || f.pace != clock.Steady {
		t.Fatalf("ticks %d pace %s", f.ticks, f.pace)
	}
	send(t, m, "stop")
	if m.ActiveForm() != "" {
		t.Fatalf("form = %s after stop", m.ActiveForm())
	}
}

func TestStoreOnlyAtStoreLandmark(t *testing.T) {
	f, m := onTrail(t)
	f.world.Trail.Reached(0)
	send(t, m, "store")
	if m.ActiveMode() != ModeStore {
		t.Fatalf("mode = %s at the store landmark, want Store", m.ActiveMode())
	}
	send(t, m, "leave")

	f.world.Vehicle.Odometer = 12
	send(t, m, "store")
	if m.ActiveMode() != ModeTravel {
		t.Fatalf("mode = %s between landmarks, want Travel", m.ActiveMode())
	}
	if !strings.Contains(m.Render(), "no store here") {
		t.Fatalf("render = %q", m.Render())
	}
}

func TestChangePaceAndRations(t *testing.T) {
	f, m := onTrail(t)
	send(t, m, "pace", "grueling")
	if f.pace != clock.Grueling || m.ActiveForm() != "" {
		t.Fatalf("pace %s form %s", f.pace, m.ActiveForm())
	}
	send(t, m, "rations", "bare")
	if f.world.Vehicle.Ration != world.RationBareBones {
		t.Fatalf("ration = %s", f.world.Vehicle.Ration)
	}
}

func TestUnownedFormsAttachToActiveWindow(t *testing.T) {
	_, m := onTrail(t)
	send(t, m, "rest")
	// CheckSupplies has no owning window, so it opens over the camp window.
	if err := m.PushForm(FormCheckSupplies); err != nil {
		t.Fatal(err)
	}
	if m.ActiveWindow() != WinCamp || m.ActiveForm() != FormCheckSupplies {
		t.Fatalf("window %s form %s", m.ActiveWindow(), m.ActiveForm())
	}
	if err := m.PushForm(FormChangePace); !errors.Is(err, fault.ErrOwnershipMismatch) {
		t.Fatalf("pace form over camp: %v, want ownership mismatch", err)
	}
}

func TestBuy(t *testing.T) {
	v := world.NewVehicle("Wagon", nil)
	v.Cents = 10000
	oxen := &data.StoreItem{Item: world.ItemOxen, Cents: 4000, PackCount: 2, Max: 4}

	if _, ok := Buy(v, oxen, 1); !ok {
		t.Fatal("first yoke refused")
	}
	if v.Cents != 6000 || v.Supplies.Count(world.ItemOxen) != 2 {
		t.Fatalf("cents %d oxen %d", v.Cents, v.Supplies.Count(world.ItemOxen))
	}
	tests := []struct {
		name  string
		packs int
		want  string
	}{
		{"negative", -1, "negative"},
		{"too dear", 2, "only have"},
		{"over max", 2, "only carry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "over max" {
				v.Cents = 100000
			}
			before := v.Cents
			reason, ok := Buy(v, oxen, tt.packs)
			if ok || !strings.Contains(reason, tt.want) {
				t.Fatalf("Buy(%d) = %q, %v", tt.packs, reason, ok)
			}
			if v.Cents != before {
				t.Fatal("refused purchase charged money")
			}
		})
	}
}

func TestStoreRejectsBadQuantity(t *testing.T) {
	f, m := newFake(t)
	if err := m.PushMode(ModeNewGame); err != nil {
		t.Fatal(err)
	}
	send(t, m, "banker", "Ada", "", "y", "clothing", "lots")
	if m.ActiveForm() != FormBuyQuantity {
		t.Fatalf("form = %s, non-numbers must re-prompt", m.ActiveForm())
	}
	send(t, m, "3")
	if f.world.Vehicle.Supplies.Count(world.ItemClothing) != 3 || m.ActiveForm() != "" {
		t.Fatalf("clothing %d form %s", f.world.Vehicle.Supplies.Count(world.ItemClothing), m.ActiveForm())
	}
}

func TestTally(t *testing.T) {
	tr, _ := world.NewTrail([]world.Landmark{{Name: "End", Kind: world.LandmarkEnd, Mile: 10}})
	w := world.NewWorld(world.NewClimate(world.ClimateProfile{}), tr, 12)
	p, _ := world.NewParty(world.Farmer, "Ada")
	v := w.Embark("Wagon", p)
	v.Cents = 0

	if s := Tally(w); s.Points != 0 {
		t.Fatalf("unfinished run scored %d", s.Points)
	}
	tr.Reached(10)
	s := Tally(w)
	base := s.People + s.Supplies + s.Cash
	if s.Points != base*3 || s.Bonus != base*2 {
		t.Fatalf("score = %+v, want farmer triple", s)
	}
	if s.Supplies != 50 {
		t.Fatalf("empty wagon supplies = %d, want 50", s.Supplies)
	}
}

func TestRatingFor(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{0, RatingGreenhorn},
		{2999, RatingGreenhorn},
		{3000, RatingAdventurer},
		{6999, RatingAdventurer},
		{7000, RatingTrailGuide},
	}
	for _, tt := range tests {
		if got := RatingFor(tt.points); got != tt.want {
			t.Errorf("RatingFor(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}
}

func TestGameOverRecordsAndShutsDown(t *testing.T) {
	f, m := onTrail(t)
	f.world.Trail.Reached(0)
	f.world.Trail.Reached(100)
	if err := m.PushMode(ModeGameOver); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.Render(), "made it to End") {
		t.Fatalf("render = %q", m.Render())
	}
	send(t, m, "")
	if len(f.saved) != 1 || f.saved[0].Name != "Ada" {
		t.Fatalf("saved = %+v", f.saved)
	}
	if !strings.Contains(m.Render(), "Oregon Top Ten") {
		t.Fatalf("final render = %q", m.Render())
	}
	send(t, m, "")
	if !m.Terminated() {
		t.Fatal("machine not terminated")
	}
}

func TestCatalogRecord(t *testing.T) {
	rec, err := CatalogRecord(data.EventEntry{
		ID: "thief", Category: "wild", Weight: 2, Prefab: "item_destroyer",
		Text: "A thief came in the night resulting in", Share: 0.2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "thief" || rec.Weight != 2 || rec.Event == nil {
		t.Fatalf("record = %+v", rec)
	}

	bad := []data.EventEntry{
		{ID: "a", Category: "sky", Prefab: "lose_time"},
		{ID: "b", Category: "wild", Prefab: "nope"},
		{ID: "c", Category: "vehicle", Prefab: "vehicle_damage", Item: "unicorn"},
	}
	for _, e := range bad {
		if _, err := CatalogRecord(e); err == nil {
			t.Errorf("entry %s: expected error", e.ID)
		}
	}
}
