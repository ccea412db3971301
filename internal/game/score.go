package game

import "github.com/trailgo/trail/internal/world"

// Ratings, best first.
const (
	RatingTrailGuide = "Trail Guide"
	RatingAdventurer = "Adventurer"
	RatingGreenhorn  = "Greenhorn"
)

// Score is the final tally of one run.
type Score struct {
	People   int
	Supplies int
	Cash     int
	Bonus    int // profession multiplier applied to the sum
	Points   int
	Rating   string
}

// Tally scores a finished run. Parties that never reached the end score zero.
func Tally(w *world.World) Score {
	v := w.Vehicle
	if v == nil || !w.Finished() {
		return Score{Rating: RatingGreenhorn}
	}
	var s Score
	for _, p := range v.Passengers() {
		s.People += int(p.Health())
	}
	inv := v.Supplies
	s.Supplies = 50 + // the wagon itself
		inv.Count(world.ItemOxen)*4 +
		(inv.Count(world.ItemWheel)+inv.Count(world.ItemAxle)+inv.Count(world.ItemTongue))*2 +
		inv.Count(world.ItemClothing)*2 +
		inv.Count(world.ItemAmmo)/50 +
		inv.Count(world.ItemFood)/25
	s.Cash = v.Cents / 500

	mult := v.Party.Profession.ScoreMultiplier()
	base := s.People + s.Supplies + s.Cash
	s.Points = base * mult
	s.Bonus = s.Points - base
	s.Rating = RatingFor(s.Points)
	return s
}

// RatingFor buckets points into a rating.
func RatingFor(points int) string {
	switch {
	case points >= 7000:
		return RatingTrailGuide
	case points >= 3000:
		return RatingAdventurer
	default:
		return RatingGreenhorn
	}
}
