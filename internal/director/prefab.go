package director

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/world"
)

// Params configures a prefab. Text may reference {name}, {days} and {items}.
type Params struct {
	Text        string
	Days        int
	Damage      int
	Share       float64    // item destroyer: max share of each stack lost
	KillChance  float64    // item destroyer: chance a passenger is killed when items are lost
	KillVerb    string
	Item        world.Item // vehicle damage: spare part that fixes it
	MinSeverity int        // weather hardship: severity needed to apply
}

// Prefab builds an event and its applicability predicate from Params.
type Prefab func(p Params) (Event, func(*Snapshot) bool, error)

var prefabs = map[string]Prefab{
	"person_injure":    newPersonInjure,
	"person_infect":    newPersonInfect,
	"item_destroyer":   newItemDestroyer,
	"lose_time":        newLoseTime,
	"vehicle_damage":   newVehicleDamage,
	"weather_hardship": newWeatherHardship,
}

// NewPrefab builds the named prefab.
func NewPrefab(name string, p Params) (Event, func(*Snapshot) bool, error) {
	fn, ok := prefabs[name]
	if !ok {
		return nil, nil, fmt.Errorf("prefab %q: %w", name, fault.ErrUnknownState)
	}
	return fn(p)
}

// PrefabNames lists the registered prefab names, sorted.
func PrefabNames() []string {
	names := make([]string, 0, len(prefabs))
	for n := range prefabs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func expand(text string, s *Snapshot, r *Result) string {
	name := ""
	if s.Source != nil {
		name = s.Source.Name()
	}
	days := 0
	if r != nil {
		days = r.DaysLost
	}
	return strings.NewReplacer(
		"{name}", name,
		"{days}", strconv.Itoa(days),
		"{items}", describeItems(r),
	).Replace(text)
}

func describeItems(r *Result) string {
	if r == nil || len(r.Destroyed) == 0 {
		return "nothing"
	}
	parts := make([]string, 0, len(r.Destroyed))
	for _, it := range world.Items {
		if n := r.Destroyed[it]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, it))
		}
	}
	return strings.Join(parts, ", ")
}

func sourcePerson(s *Snapshot) (*world.Person, error) {
	switch e := s.Source.(type) {
	case *world.Person:
		if !e.Alive() {
			return nil, fmt.Errorf("%w: %s is dead", fault.ErrEventPreconditionViolation, e.Name())
		}
		return e, nil
	case nil:
		return nil, fmt.Errorf("%w: event needs a person, got no source", fault.ErrEventPreconditionViolation)
	default:
		return nil, fmt.Errorf("%w: event needs a person, got %s", fault.ErrEventPreconditionViolation, e.Kind())
	}
}

func isLivingPerson(s *Snapshot) bool {
	p, ok := s.Source.(*world.Person)
	return ok && p.Alive()
}

// personEvent covers injuries and illnesses: one flag set on one person.
type personEvent struct {
	text  string
	apply func(*world.Person)
}

func newPersonInjure(p Params) (Event, func(*Snapshot) bool, error) {
	if p.Text == "" {
		p.Text = "{name} is injured."
	}
	return &personEvent{text: p.Text, apply: (*world.Person).Injure}, isLivingPerson, nil
}

func newPersonInfect(p Params) (Event, func(*Snapshot) bool, error) {
	if p.Text == "" {
		p.Text = "{name} is ill."
	}
	return &personEvent{text: p.Text, apply: (*world.Person).Infect}, isLivingPerson, nil
}

func (e *personEvent) Execute(s *Snapshot) (*Result, error) {
	person, err := sourcePerson(s)
	if err != nil {
		return nil, err
	}
	e.apply(person)
	return &Result{}, nil
}

func (e *personEvent) Render(s *Snapshot, r *Result) (string, error) {
	if _, ok := s.Source.(*world.Person); !ok {
		return "", fmt.Errorf("%w: render needs a person source", fault.ErrEventPreconditionViolation)
	}
	return expand(e.text, s, r), nil
}

// itemDestroyer removes supplies and may kill a passenger, like a thief in the night.
type itemDestroyer struct {
	text       string
	share      float64
	killChance float64
	killVerb   string
}

func newItemDestroyer(p Params) (Event, func(*Snapshot) bool, error) {
	if p.Share <= 0 || p.Share > 1 {
		return nil, nil, fmt.Errorf("item destroyer share %.2f must be in (0,1]", p.Share)
	}
	if p.KillVerb == "" {
		p.KillVerb = "killed"
	}
	e := &itemDestroyer{text: p.Text, share: p.Share, killChance: p.KillChance, killVerb: p.KillVerb}
	return e, hasVehicle, nil
}

func hasVehicle(s *Snapshot) bool {
	return s.World != nil && s.World.Vehicle != nil
}

func (e *itemDestroyer) Execute(s *Snapshot) (*Result, error) {
	if !hasVehicle(s) {
		return nil, fmt.Errorf("%w: no vehicle to rob", fault.ErrEventPreconditionViolation)
	}
	v := s.World.Vehicle
	res := &Result{Destroyed: v.Supplies.DestroyRandom(s.RNG, e.share)}
	if len(res.Destroyed) > 0 && s.RNG.Float64() < e.killChance {
		if living := v.Passengers(); len(living) > 0 {
			victim := living[s.RNG.IntN(len(living))]
			victim.Kill()
			res.Killed = append(res.Killed, victim.Name())
		}
	}
	return res, nil
}

func (e *itemDestroyer) Render(s *Snapshot, r *Result) (string, error) {
	var b strings.Builder
	b.WriteString(expand(e.text, s, r))
	if len(r.Destroyed) == 0 {
		b.WriteString("no loss of items.")
		return b.String(), nil
	}
	b.WriteString("the loss of ")
	b.WriteString(describeItems(r))
	b.WriteString(".")
	for _, name := range r.Killed {
		fmt.Fprintf(&b, "\n%s was %s.", name, e.killVerb)
	}
	return b.String(), nil
}

// loseTime costs the party days; the travel loop ticks them away afterwards.
type loseTime struct {
	text string
	days int
}

func newLoseTime(p Params) (Event, func(*Snapshot) bool, error) {
	if p.Days <= 0 {
		return nil, nil, fmt.Errorf("lose time days %d must be positive", p.Days)
	}
	if p.Text == "" {
		p.Text = "Lose {days} days."
	}
	return &loseTime{text: p.Text, days: p.Days}, nil, nil
}

func (e *loseTime) Execute(s *Snapshot) (*Result, error) {
	if s.World == nil {
		return nil, fmt.Errorf("%w: no world", fault.ErrEventPreconditionViolation)
	}
	s.World.DaysLost += e.days
	return &Result{DaysLost: e.days}, nil
}

func (e *loseTime) Render(s *Snapshot, r *Result) (string, error) {
	return expand(e.text, s, r), nil
}

// vehicleDamage breaks the wagon unless a spare part is on hand.
type vehicleDamage struct {
	text string
	part world.Item
}

func newVehicleDamage(p Params) (Event, func(*Snapshot) bool, error) {
	if p.Item == "" {
		return nil, nil, fmt.Errorf("vehicle damage needs a spare part item")
	}
	applies := func(s *Snapshot) bool {
		v, ok := s.Source.(*world.Vehicle)
		return ok && v.Status == world.VehicleGood
	}
	return &vehicleDamage{text: p.Text, part: p.Item}, applies, nil
}

func (e *vehicleDamage) Execute(s *Snapshot) (*Result, error) {
	v, ok := s.Source.(*world.Vehicle)
	if !ok {
		return nil, fmt.Errorf("%w: event needs a vehicle source", fault.ErrEventPreconditionViolation)
	}
	if s.World == nil {
		return nil, fmt.Errorf("%w: no world to charge the repair to", fault.ErrEventPreconditionViolation)
	}
	res := &Result{Values: map[string]any{"repaired": false}}
	if v.Supplies.Remove(e.part, 1) == 1 {
		res.Values["repaired"] = true
		res.DaysLost = 1
		s.World.DaysLost++
		return res, nil
	}
	v.Status = world.VehicleBroken
	return res, nil
}

func (e *vehicleDamage) Render(s *Snapshot, r *Result) (string, error) {
	text := expand(e.text, s, r)
	if repaired, _ := r.Values["repaired"].(bool); repaired {
		return fmt.Sprintf("%s\nYou replace it with a spare %s.", text, e.part), nil
	}
	return fmt.Sprintf("%s\nYou have no spare %s. The wagon cannot move.", text, e.part), nil
}

// weatherHardship hurts every passenger during severe weather.
type weatherHardship struct {
	text   string
	damage int
	days   int
}

func newWeatherHardship(p Params) (Event, func(*Snapshot) bool, error) {
	minSeverity := max(p.MinSeverity, 1)
	applies := func(s *Snapshot) bool {
		return s.World != nil && s.World.Climate != nil && s.World.Vehicle != nil &&
			s.World.Climate.Weather.Severity() >= minSeverity
	}
	return &weatherHardship{text: p.Text, damage: p.Damage, days: p.Days}, applies, nil
}

func (e *weatherHardship) Execute(s *Snapshot) (*Result, error) {
	if s.World == nil || s.World.Vehicle == nil {
		return nil, fmt.Errorf("%w: no vehicle in the weather", fault.ErrEventPreconditionViolation)
	}
	res := &Result{DaysLost: e.days}
	for _, p := range s.World.Vehicle.Passengers() {
		p.Damage(e.damage)
		if !p.Alive() {
			res.Killed = append(res.Killed, p.Name())
		}
	}
	s.World.DaysLost += e.days
	return res, nil
}

func (e *weatherHardship) Render(s *Snapshot, r *Result) (string, error) {
	var b strings.Builder
	b.WriteString(expand(e.text, s, r))
	for _, name := range r.Killed {
		fmt.Fprintf(&b, "\n%s has died.", name)
	}
	return b.String(), nil
}
