package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/trailgo/trail/internal/core/fault"
	"go.uber.org/zap"
)

type recorder struct {
	events []Boundary
	counts map[Boundary]int
}

func record(c *Clock) *recorder {
	r := &recorder{counts: make(map[Boundary]int)}
	for _, b := range []Boundary{DayEnd, MonthEnd, YearEnd, PaceChanged} {
		b := b
		c.Subscribe(b, b.String(), func(n Notice) {
			r.events = append(r.events, n.Boundary)
			r.counts[n.Boundary]++
		})
	}
	return r
}

func TestFiveSteadyTicksStayInMonth(t *testing.T) {
	c := New(RoleServer, Date{Year: 1985, Month: time.May, Day: 5}, Paused, zap.NewNop())
	r := record(c)
	if c.Status() != StatusPaused {
		t.Fatalf("Status()=%s want Paused", c.Status())
	}
	if err := c.SetPace(Steady); err != nil {
		t.Fatalf("set pace: %v", err)
	}
	if c.Status() != StatusAdvancing {
		t.Fatalf("Status()=%s want Advancing", c.Status())
	}
	for i := 0; i < 5; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	want := Date{Year: 1985, Month: time.May, Day: 10}
	if c.Date() != want {
		t.Fatalf("Date()=%v want %v", c.Date(), want)
	}
	if r.counts[DayEnd] != 5 || r.counts[MonthEnd] != 0 || r.counts[YearEnd] != 0 {
		t.Fatalf("counts=%v", r.counts)
	}
	if r.counts[PaceChanged] != 1 {
		t.Fatalf("PaceChanged fired %d times", r.counts[PaceChanged])
	}
	if c.Turns() != 5 {
		t.Fatalf("Turns()=%d want 5", c.Turns())
	}
}

func TestTickNAdvancesNDays(t *testing.T) {
	start := Date{Year: 1847, Month: time.February, Day: 20}
	for _, n := range []int{0, 1, 9, 40, 400} {
		c := New(RoleServer, start, Steady, zap.NewNop())
		for i := 0; i < n; i++ {
			_ = c.Tick()
		}
		want := time.Date(start.Year, start.Month, start.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
		got := c.Date()
		if got.Year != want.Year() || got.Month != want.Month() || got.Day != want.Day() {
			t.Fatalf("after %d ticks Date()=%v want %v", n, got, want)
		}
	}
}

func TestMonthEndFollowsDayEndOnce(t *testing.T) {
	c := New(RoleServer, Date{Year: 1848, Month: time.May, Day: 29}, Steady, zap.NewNop())
	r := record(c)
	for i := 0; i < 5; i++ {
		_ = c.Tick()
	}
	if r.counts[MonthEnd] != 1 {
		t.Fatalf("MonthEnd fired %d times", r.counts[MonthEnd])
	}
	// May 30, May 31, June 1 (DayEnd then MonthEnd), June 2, June 3.
	want := []Boundary{DayEnd, DayEnd, DayEnd, MonthEnd, DayEnd, DayEnd}
	if len(r.events) != len(want) {
		t.Fatalf("events=%v want=%v", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Fatalf("events=%v want=%v", r.events, want)
		}
	}
}

func TestYearEndOnlyWithMonthEnd(t *testing.T) {
	c := New(RoleServer, Date{Year: 1848, Month: time.December, Day: 30}, Steady, zap.NewNop())
	r := record(c)
	_ = c.Tick()
	_ = c.Tick()
	want := []Boundary{DayEnd, DayEnd, MonthEnd, YearEnd}
	for i := range want {
		if i >= len(r.events) || r.events[i] != want[i] {
			t.Fatalf("events=%v want=%v", r.events, want)
		}
	}
	if c.Date() != (Date{Year: 1849, Month: time.January, Day: 1}) {
		t.Fatalf("Date()=%v", c.Date())
	}
}

func TestClientRoleCannotMutate(t *testing.T) {
	start := Date{Year: 1985, Month: time.May, Day: 5}
	c := New(RoleClient, start, Paused, zap.NewNop())
	r := record(c)
	for i := 0; i < 3; i++ {
		if err := c.Tick(); !errors.Is(err, fault.ErrRoleViolation) {
			t.Fatalf("client tick err=%v want role violation", err)
		}
	}
	if err := c.SetPace(Grueling); !errors.Is(err, fault.ErrRoleViolation) {
		t.Fatalf("client set pace err=%v want role violation", err)
	}
	if c.Date() != start || c.Turns() != 0 || c.Pace() != Paused {
		t.Fatalf("client clock mutated: %v turns=%d pace=%s", c.Date(), c.Turns(), c.Pace())
	}
	if len(r.events) != 0 {
		t.Fatalf("client clock fired %v", r.events)
	}
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	c := New(RoleServer, Date{Year: 1985, Month: time.May, Day: 5}, Steady, zap.NewNop())
	var order []string
	for _, name := range []string{"climate", "vehicle", "point_of_interest"} {
		name := name
		c.Subscribe(DayEnd, name, func(Notice) { order = append(order, name) })
	}
	_ = c.Tick()
	want := c.Subscribers(DayEnd)
	if len(order) != 3 || len(want) != 3 {
		t.Fatalf("order=%v subscribers=%v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order=%v want=%v", order, want)
		}
	}
}

func TestSetPaceNotifiesPreviousAndNew(t *testing.T) {
	c := New(RoleServer, Date{Year: 1985, Month: time.May, Day: 5}, Steady, zap.NewNop())
	var got Notice
	c.Subscribe(PaceChanged, "log", func(n Notice) { got = n })
	if err := c.SetPace(Grueling); err != nil {
		t.Fatalf("set pace: %v", err)
	}
	if got.PrevPace != Steady || got.Pace != Grueling {
		t.Fatalf("notice=%+v", got)
	}
	if err := c.SetPace(Pace(9)); err == nil {
		t.Fatalf("expected invalid pace error")
	}
}
