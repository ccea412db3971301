package world

// World is the aggregate every clock subscriber and event reads. It is owned
// by the simulation root and handed out by pointer, never copied.
// Accessed only from the game loop goroutine, no locks needed.
type World struct {
	Climate *Climate
	Vehicle *Vehicle
	Trail   *Trail

	// MilesPerPace converts the pace value into miles per day.
	MilesPerPace int
	// DaysLost accumulates days an event has cost the party; the travel
	// fallback drains it by ticking the clock.
	DaysLost int
}

func NewWorld(climate *Climate, trail *Trail, milesPerPace int) *World {
	return &World{
		Climate:      climate,
		Trail:        trail,
		MilesPerPace: milesPerPace,
	}
}

// Party is a shortcut to the vehicle's passengers.
func (w *World) Party() *Party {
	if w.Vehicle == nil {
		return nil
	}
	return w.Vehicle.Party
}

// Embark puts the party in a new vehicle. Called once the party is named.
func (w *World) Embark(name string, party *Party) *Vehicle {
	w.Vehicle = NewVehicle(name, party)
	return w.Vehicle
}

// Finished reports whether the trail's last landmark has been reached.
func (w *World) Finished() bool {
	lm, ok := w.Trail.Current()
	return ok && lm.Kind == LandmarkEnd
}

// GameOver reports whether the run has ended, by arrival or by death.
func (w *World) GameOver() bool {
	if w.Finished() {
		return true
	}
	p := w.Party()
	return p != nil && p.Wiped()
}
