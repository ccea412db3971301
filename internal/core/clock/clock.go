package clock

import (
	"fmt"
	"time"

	"github.com/trailgo/trail/internal/core/fault"
	"go.uber.org/zap"
)

// Role fixes a clock as authoritative or observing for its whole life.
type Role int

const (
	RoleServer Role = iota // authoritative: may tick and change pace
	RoleClient             // observing: reads only
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "Server"
	case RoleClient:
		return "Client"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole maps a config value to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "server", "Server", "":
		return RoleServer, nil
	case "client", "Client":
		return RoleClient, nil
	default:
		return 0, fmt.Errorf("unknown simulation role %q", s)
	}
}

// Pace is the travel speed. Non-zero values are also the miles accrued per day.
type Pace int

const (
	Paused    Pace = 0
	Steady    Pace = 1 // 8 hours a day, frequent rests
	Strenuous Pace = 2 // 12 hours a day, stopping only when necessary
	Grueling  Pace = 3 // 16 hours a day, barely any sleep
)

func (p Pace) String() string {
	switch p {
	case Paused:
		return "Paused"
	case Steady:
		return "Steady"
	case Strenuous:
		return "Strenuous"
	case Grueling:
		return "Grueling"
	default:
		return fmt.Sprintf("Pace(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared paces.
func (p Pace) Valid() bool { return p >= Paused && p <= Grueling }

// Status is derived from pace: Paused or Advancing.
type Status int

const (
	StatusPaused Status = iota
	StatusAdvancing
)

func (s Status) String() string {
	if s == StatusAdvancing {
		return "Advancing"
	}
	return "Paused"
}

// Date is a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%s %d, %d", d.Month, d.Day, d.Year)
}

func (d Date) next() Date {
	t := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Boundary is a notification kind. Subscribers of one boundary run in
// registration order; boundaries of one tick run DayEnd, MonthEnd, YearEnd.
type Boundary int

const (
	DayEnd Boundary = iota
	MonthEnd
	YearEnd
	PaceChanged
	boundaryCount
)

func (b Boundary) String() string {
	switch b {
	case DayEnd:
		return "DayEnd"
	case MonthEnd:
		return "MonthEnd"
	case YearEnd:
		return "YearEnd"
	case PaceChanged:
		return "PaceChanged"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// Notice is passed to every subscriber.
type Notice struct {
	Boundary Boundary
	Date     Date
	Turn     uint64
	// PrevPace and Pace are set for PaceChanged; Pace is the current pace otherwise.
	PrevPace Pace
	Pace     Pace
}

// Subscriber reacts to one boundary.
type Subscriber struct {
	Name string
	Fn   func(Notice)
}

// Clock advances a calendar by whole days.
type Clock struct {
	role  Role
	date  Date
	pace  Pace
	turns uint64
	subs  [boundaryCount][]Subscriber
	log   *zap.Logger
}

func New(role Role, start Date, pace Pace, log *zap.Logger) *Clock {
	return &Clock{role: role, date: start, pace: pace, log: log}
}

func (c *Clock) Role() Role     { return c.role }
func (c *Clock) Date() Date     { return c.date }
func (c *Clock) Pace() Pace     { return c.pace }
func (c *Clock) Turns() uint64  { return c.turns }
func (c *Clock) Status() Status { return statusOf(c.pace) }

func statusOf(p Pace) Status {
	if p == Paused {
		return StatusPaused
	}
	return StatusAdvancing
}

// Subscribe appends fn to the boundary's subscriber list. Subscribers are
// registered once during startup, before the first tick.
func (c *Clock) Subscribe(b Boundary, name string, fn func(Notice)) {
	c.subs[b] = append(c.subs[b], Subscriber{Name: name, Fn: fn})
}

// Subscribers returns the names subscribed to b, in invocation order.
func (c *Clock) Subscribers(b Boundary) []string {
	names := make([]string, 0, len(c.subs[b]))
	for _, s := range c.subs[b] {
		names = append(names, s.Name)
	}
	return names
}

// SetPace changes the travel pace and fires PaceChanged. Setting the current
// pace again is a no-op.
func (c *Clock) SetPace(p Pace) error {
	if c.role != RoleServer {
		return fmt.Errorf("set pace on %s clock: %w", c.role, fault.ErrRoleViolation)
	}
	if !p.Valid() {
		return fmt.Errorf("set pace: invalid pace %d", int(p))
	}
	if p == c.pace {
		return nil
	}
	prev := c.pace
	c.pace = p
	c.log.Debug("travel pace changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", p),
		zap.Stringer("status", c.Status()),
	)
	c.fire(Notice{Boundary: PaceChanged, Date: c.date, Turn: c.turns, PrevPace: prev, Pace: p})
	return nil
}

// Tick advances the date by one day and fires the boundary notifications.
// All notifications complete before Tick returns.
func (c *Clock) Tick() error {
	if c.role != RoleServer {
		return fmt.Errorf("tick on %s clock: %w", c.role, fault.ErrRoleViolation)
	}
	c.turns++
	prev := c.date
	c.date = c.date.next()

	n := Notice{Date: c.date, Turn: c.turns, PrevPace: c.pace, Pace: c.pace}
	n.Boundary = DayEnd
	c.fire(n)
	if c.date.Month != prev.Month {
		n.Boundary = MonthEnd
		c.fire(n)
		if c.date.Year != prev.Year {
			n.Boundary = YearEnd
			c.fire(n)
		}
	}
	return nil
}

func (c *Clock) fire(n Notice) {
	for _, s := range c.subs[n.Boundary] {
		s.Fn(n)
	}
}
