package world

import "fmt"

// Ration is how much food each living passenger eats per day, in pounds.
type Ration int

const (
	RationBareBones Ration = 1
	RationMeager    Ration = 2
	RationFilling   Ration = 3
)

func (r Ration) String() string {
	switch r {
	case RationBareBones:
		return "bare bones"
	case RationMeager:
		return "meager"
	case RationFilling:
		return "filling"
	default:
		return fmt.Sprintf("Ration(%d)", int(r))
	}
}

// VehicleStatus is the wagon's mechanical condition.
type VehicleStatus int

const (
	VehicleGood VehicleStatus = iota
	VehicleBroken
	VehicleStuck
)

func (s VehicleStatus) String() string {
	switch s {
	case VehicleBroken:
		return "broken"
	case VehicleStuck:
		return "stuck"
	default:
		return "good"
	}
}

// Vehicle carries the party and its supplies.
type Vehicle struct {
	name     string
	Party    *Party
	Supplies *Inventory
	Cents    int
	// Pace mirrors the clock's pace; the clock's PaceChanged notice keeps it current.
	Pace     int
	Ration   Ration
	Status   VehicleStatus
	Odometer int
	Starving bool
}

func NewVehicle(name string, party *Party) *Vehicle {
	v := &Vehicle{
		name:     name,
		Party:    party,
		Supplies: NewInventory(),
		Ration:   RationFilling,
	}
	if party != nil {
		v.Cents = party.Profession.StartingCents()
	}
	return v
}

func (v *Vehicle) Name() string { return v.name }

// Passengers returns the living party members.
func (v *Vehicle) Passengers() []*Person {
	if v.Party == nil {
		return nil
	}
	return v.Party.Living()
}

// CanMove reports whether the wagon can accrue distance today.
func (v *Vehicle) CanMove() bool {
	return v.Status == VehicleGood && v.Supplies.Count(ItemOxen) > 0 && len(v.Passengers()) > 0
}

// Update consumes one day of food and adjusts passenger vitality for the
// ration, pace and weather severity.
func (v *Vehicle) Update(severity int) {
	living := v.Passengers()
	need := len(living) * int(v.Ration)
	eaten := v.Supplies.Remove(ItemFood, need)
	v.Starving = need > 0 && eaten < need

	for _, p := range living {
		delta := int(v.Ration) - v.Pace - severity
		if v.Starving {
			delta -= 6
		}
		if p.Injured {
			delta -= 2
		}
		if p.Infected {
			delta -= 3
		}
		if delta > 0 {
			p.Heal(delta)
		} else {
			p.Damage(-delta)
		}
	}
}

// Travel adds the day's miles to the odometer and returns them.
func (v *Vehicle) Travel(milesPerPace int) int {
	if !v.CanMove() {
		return 0
	}
	miles := v.Pace * milesPerPace
	v.Odometer += miles
	return miles
}
