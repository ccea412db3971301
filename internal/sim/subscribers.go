package sim

import (
	"errors"
	"fmt"

	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/director"
	"github.com/trailgo/trail/internal/game"
	"github.com/trailgo/trail/internal/persist"
	"github.com/trailgo/trail/internal/world"
	"go.uber.org/zap"
)

// subscribe registers the boundary subscribers. DayEnd order is fixed:
// climate, vehicle, point of interest, random event.
func (s *Simulation) subscribe() {
	s.clock.Subscribe(clock.DayEnd, "climate", s.onClimate)
	s.clock.Subscribe(clock.DayEnd, "vehicle", s.onVehicle)
	s.clock.Subscribe(clock.DayEnd, "point_of_interest", s.onPointOfInterest)
	s.clock.Subscribe(clock.DayEnd, "random_event", s.onRandomEvent)
	s.clock.Subscribe(clock.MonthEnd, "month_log", s.onMonthEnd)
	s.clock.Subscribe(clock.YearEnd, "year_log", s.onYearEnd)
	s.clock.Subscribe(clock.PaceChanged, "vehicle_pace", s.onPaceChanged)
}

func (s *Simulation) onClimate(n clock.Notice) {
	s.world.Climate.Tick(n.Date.Month, s.rng)
}

func (s *Simulation) onVehicle(n clock.Notice) {
	s.lastMiles, s.arrived = 0, false
	v := s.world.Vehicle
	if v == nil {
		return
	}
	v.Update(s.world.Climate.Weather.Severity())
	if n.Pace != clock.Paused {
		s.lastMiles = v.Travel(s.world.MilesPerPace)
	}
}

func (s *Simulation) onPointOfInterest(n clock.Notice) {
	v := s.world.Vehicle
	if v == nil || s.over {
		return
	}
	if v.Party.Wiped() {
		s.gameOver("party wiped")
		return
	}
	lm, ok := s.world.Trail.Reached(v.Odometer)
	if !ok {
		return
	}
	s.arrived = true
	// Stop at the landmark instead of overshooting it.
	v.Odometer = lm.Mile
	s.log.Info("landmark reached", zap.String("name", lm.Name), zap.Int("mile", lm.Mile), zap.Uint64("turn", n.Turn))
	if lm.Kind == world.LandmarkEnd {
		s.gameOver("trail finished")
		return
	}
	s.queue(s.machine.PushModeWith(game.ModeLandmark, lm))
}

func (s *Simulation) gameOver(reason string) {
	s.over = true
	s.log.Info("game over", zap.String("reason", reason))
	s.queue(s.machine.PushMode(game.ModeGameOver))
}

// queue logs a transition that could not even be queued.
func (s *Simulation) queue(err error) {
	if err != nil {
		s.log.Error("transition rejected", zap.Error(err))
	}
}

func (s *Simulation) onRandomEvent(n clock.Notice) {
	if s.over || s.arrived || s.lastMiles == 0 || len(s.weights) == 0 {
		return
	}
	if s.rng.Float64() >= s.dailyChance {
		return
	}
	cat := s.pickCategory()
	snap := &director.Snapshot{World: s.world, Source: s.sourceFor(cat), RNG: s.rng}
	out, err := s.director.Trigger(cat, snap)
	switch {
	case errors.Is(err, fault.ErrNoEligibleEvent):
		s.log.Debug("no eligible event", zap.String("category", string(cat)))
		return
	case err != nil:
		// Already logged by the director; the event is skipped.
		return
	}
	s.entries = append(s.entries, persist.JournalEntry{
		RunID:    s.id,
		Turn:     int(n.Turn),
		Date:     isoDate(n.Date),
		EventID:  out.Record.ID,
		DaysLost: out.Result.DaysLost,
		Text:     out.Text,
	})
	// GameOver goes under the event so the player reads what killed the
	// party before the run ends.
	if p := s.world.Party(); p != nil && p.Wiped() {
		s.gameOver("party wiped")
	}
	s.queue(s.machine.PushModeWith(game.ModeRandomEvent, out))
}

func (s *Simulation) pickCategory() director.Category {
	total := 0
	for _, w := range s.weights {
		total += w.weight
	}
	roll := s.rng.IntN(total)
	for _, w := range s.weights {
		if roll < w.weight {
			return w.cat
		}
		roll -= w.weight
	}
	return s.weights[len(s.weights)-1].cat
}

// sourceFor picks the entity an event of cat is about.
func (s *Simulation) sourceFor(cat director.Category) world.Entity {
	v := s.world.Vehicle
	switch cat {
	case director.CategoryPerson:
		living := v.Passengers()
		if len(living) == 0 {
			return nil
		}
		return living[s.rng.IntN(len(living))]
	case director.CategoryVehicle:
		return v
	}
	return nil
}

func (s *Simulation) onMonthEnd(n clock.Notice) {
	miles := 0
	if v := s.world.Vehicle; v != nil {
		miles = v.Odometer
	}
	s.log.Info("month ended", zap.Stringer("date", n.Date), zap.Int("miles", miles), zap.Uint64("turn", n.Turn))
}

func (s *Simulation) onYearEnd(n clock.Notice) {
	s.log.Info("year ended", zap.Int("year", n.Date.Year), zap.Uint64("turn", n.Turn))
}

func (s *Simulation) onPaceChanged(n clock.Notice) {
	if v := s.world.Vehicle; v != nil {
		v.Pace = int(n.Pace)
	}
}

func isoDate(d clock.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
