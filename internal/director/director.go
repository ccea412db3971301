// Package director selects and runs randomized events against the world.
package director

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/world"
	"go.uber.org/zap"
)

// Category groups events that may fire for the same trigger.
type Category string

const (
	CategoryWild    Category = "wild"
	CategoryPerson  Category = "person"
	CategoryVehicle Category = "vehicle"
	CategoryWeather Category = "weather"
)

// Categories lists the known categories.
var Categories = []Category{CategoryWild, CategoryPerson, CategoryVehicle, CategoryWeather}

// ParseCategory maps a config or catalog value to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown event category %q", s)
}

// Snapshot is what an event sees: the live world and the entity the event is
// about. Source may be nil for events that affect the world at large.
type Snapshot struct {
	World  *world.World
	Source world.Entity
	RNG    *rand.Rand
}

// Result records what one execution did, so Render can describe it without
// touching the world.
type Result struct {
	Destroyed map[world.Item]int
	Killed    []string
	DaysLost  int
	Values    map[string]any
}

// Event is the capability set every director event implements.
type Event interface {
	// Execute mutates the world once. It must check its preconditions before
	// mutating and return fault.ErrEventPreconditionViolation when they fail.
	Execute(s *Snapshot) (*Result, error)
	// Render describes the post-execution state. It must not mutate.
	Render(s *Snapshot, r *Result) (string, error)
}

// Record is an event registered with the director. Immutable once registered.
type Record struct {
	ID       string
	Category Category
	Weight   int
	// Applies filters records against the snapshot; nil means always.
	Applies func(s *Snapshot) bool
	Event   Event
}

// Outcome is the product of Trigger.
type Outcome struct {
	Record *Record
	Result *Result
	Text   string
}

// Director owns the event records and the random source used to draw them.
type Director struct {
	records   []*Record
	byID      map[string]*Record
	rng       *rand.Rand
	log       *zap.Logger
	executing bool
}

func New(rng *rand.Rand, log *zap.Logger) *Director {
	return &Director{
		byID: make(map[string]*Record, 32),
		rng:  rng,
		log:  log,
	}
}

// Register adds a record. IDs are unique; weights must be positive.
func (d *Director) Register(rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("register event: empty id")
	}
	if _, ok := d.byID[rec.ID]; ok {
		return fmt.Errorf("register event %s: %w", rec.ID, fault.ErrDuplicateIdentifier)
	}
	if rec.Weight <= 0 {
		return fmt.Errorf("register event %s: weight %d must be positive", rec.ID, rec.Weight)
	}
	if rec.Event == nil {
		return fmt.Errorf("register event %s: %w", rec.ID, fault.ErrAbstractState)
	}
	r := rec
	d.records = append(d.records, &r)
	d.byID[r.ID] = &r
	d.log.Debug("event registered",
		zap.String("id", r.ID),
		zap.String("category", string(r.Category)),
		zap.Int("weight", r.Weight),
	)
	return nil
}

// Select filters records by category and applicability, then draws one with
// probability proportional to its weight. Equal weights keep registration order.
func (d *Director) Select(cat Category, s *Snapshot) (*Record, error) {
	if d.executing {
		return nil, fmt.Errorf("select %s during execute: %w", cat, fault.ErrReentrantEvent)
	}
	eligible := make([]*Record, 0, len(d.records))
	total := 0
	for _, r := range d.records {
		if r.Category != cat || !d.applies(r, s) {
			continue
		}
		eligible = append(eligible, r)
		total += r.Weight
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("select %s: %w", cat, fault.ErrNoEligibleEvent)
	}
	roll := d.rng.IntN(total)
	for _, r := range eligible {
		if roll < r.Weight {
			return r, nil
		}
		roll -= r.Weight
	}
	return eligible[len(eligible)-1], nil
}

// applies treats a panicking predicate as not applicable.
func (d *Director) applies(r *Record, s *Snapshot) (ok bool) {
	if r.Applies == nil {
		return true
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Warn("event predicate panic recovered", zap.String("id", r.ID), zap.Any("panic", rec))
			ok = false
		}
	}()
	return r.Applies(s)
}

// Execute runs the record's mutation. Any failure is reported as a
// precondition violation so the caller can skip the event. A recovered panic
// cannot roll back what the event already mutated, so events check their
// preconditions before touching the world.
func (d *Director) Execute(r *Record, s *Snapshot) (res *Result, err error) {
	if d.executing {
		return nil, fmt.Errorf("execute %s during execute: %w", r.ID, fault.ErrReentrantEvent)
	}
	if s.RNG == nil {
		s.RNG = d.rng
	}
	d.executing = true
	defer func() {
		d.executing = false
		if rec := recover(); rec != nil {
			d.log.Error("event execute panic recovered", zap.String("id", r.ID), zap.Any("panic", rec))
			res = nil
			err = fmt.Errorf("execute %s: %w: panic: %v", r.ID, fault.ErrEventPreconditionViolation, rec)
		}
	}()
	res, err = r.Event.Execute(s)
	if err != nil {
		return nil, asPrecondition("execute", r.ID, err)
	}
	if res == nil {
		res = &Result{}
	}
	return res, nil
}

// Render describes an executed record.
func (d *Director) Render(r *Record, s *Snapshot, res *Result) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("event render panic recovered", zap.String("id", r.ID), zap.Any("panic", rec))
			text = ""
			err = fmt.Errorf("render %s: %w: panic: %v", r.ID, fault.ErrEventPreconditionViolation, rec)
		}
	}()
	text, err = r.Event.Render(s, res)
	if err != nil {
		return "", asPrecondition("render", r.ID, err)
	}
	return text, nil
}

func asPrecondition(stage, id string, err error) error {
	if errors.Is(err, fault.ErrEventPreconditionViolation) || errors.Is(err, fault.ErrReentrantEvent) {
		return fmt.Errorf("%s %s: %w", stage, id, err)
	}
	return fmt.Errorf("%s %s: %w: %w", stage, id, fault.ErrEventPreconditionViolation, err)
}

// Trigger selects, executes and renders one event of the category.
func (d *Director) Trigger(cat Category, s *Snapshot) (Outcome, error) {
	r, err := d.Select(cat, s)
	if err != nil {
		return Outcome{}, err
	}
	res, err := d.Execute(r, s)
	if err != nil {
		d.log.Warn("event skipped", zap.String("id", r.ID), zap.Error(err))
		return Outcome{Record: r}, err
	}
	text, err := d.Render(r, s, res)
	if err != nil {
		d.log.Warn("event render failed", zap.String("id", r.ID), zap.Error(err))
		return Outcome{Record: r, Result: res}, err
	}
	d.log.Info("event fired",
		zap.String("id", r.ID),
		zap.String("category", string(cat)),
		zap.Int("days_lost", res.DaysLost),
	)
	return Outcome{Record: r, Result: res, Text: text}, nil
}

// Lookup returns the record registered under id.
func (d *Director) Lookup(id string) (*Record, bool) {
	r, ok := d.byID[id]
	return r, ok
}

// Records returns every record in registration order.
func (d *Director) Records() []Record {
	out := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, *r)
	}
	return out
}

// Count returns the number of registered records.
func (d *Director) Count() int { return len(d.records) }
