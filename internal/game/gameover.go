package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/persist"
	"go.uber.org/zap"
)

// finishTimeout bounds the highscore write when the run ends.
const finishTimeout = 5 * time.Second

// finalInfo is shared by the GameOver mode and the score form.
type finalInfo struct {
	score Score
	top   []persist.HighscoreRow
	err   error
}

// gameOver shows how the run ended and records the score.
type gameOver struct {
	ctx  *state.Context
	info *finalInfo
	s    Session
}

func newGameOver(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*finalInfo](ctx)
		if err != nil {
			return nil, err
		}
		info.score = Tally(s.World())
		return &gameOver{ctx: ctx, info: info, s: s}, nil
	}
}

func (g *gameOver) Render() string {
	w := g.s.World()
	var b strings.Builder
	switch {
	case w.Finished():
		fmt.Fprintf(&b, "Congratulations! You have made it to %s!\n", lastStop(g.s))
		b.WriteString(rule)
		b.WriteString("\n")
		sc := g.info.score
		fmt.Fprintf(&b, "  %-22s %7s\n", "Passengers", number(sc.People))
		fmt.Fprintf(&b, "  %-22s %7s\n", "Wagon and supplies", number(sc.Supplies))
		fmt.Fprintf(&b, "  %-22s %7s\n", "Cash", number(sc.Cash))
		fmt.Fprintf(&b, "  %-22s %7s\n", "Profession bonus", number(sc.Bonus))
		fmt.Fprintf(&b, "  %-22s %7s\n", "Total", number(sc.Points))
		fmt.Fprintf(&b, "Your rating: %s", sc.Rating)
	case w.Party() != nil && w.Party().Wiped():
		fmt.Fprintf(&b, "Everyone in your party has died.\nYou traveled %s miles.", number(w.Vehicle.Odometer))
	default:
		b.WriteString("Your journey has ended.")
	}
	return pressEnter(b.String())
}

func lastStop(s Session) string {
	if lm, ok := s.World().Trail.Current(); ok {
		return lm.Name
	}
	return "the end of the trail"
}

func (g *gameOver) OnInput(string) error {
	name := "Nobody"
	if p := g.s.World().Party(); p != nil && p.Leader() != nil {
		name = p.Leader().Name()
	}
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()
	g.info.top, g.info.err = g.s.Finish(ctx, name, g.info.score.Points, g.info.score.Rating)
	if g.info.err != nil {
		g.ctx.Log.Warn("highscore not saved", zap.Error(g.info.err))
	}
	return g.ctx.SetForm(FormFinalScore)
}

// finalScore shows the top ten and ends the game.
type finalScore struct {
	ctx  *state.Context
	info *finalInfo
}

func newFinalScore(ctx *state.Context) (state.State, error) {
	info, err := state.DataAs[*finalInfo](ctx)
	if err != nil {
		return nil, err
	}
	return &finalScore{ctx: ctx, info: info}, nil
}

func (f *finalScore) Render() string {
	var b strings.Builder
	b.WriteString("The Oregon Top Ten\n")
	b.WriteString(rule)
	b.WriteString("\n")
	if f.info.err != nil {
		b.WriteString("(The highscore list is unavailable.)\n")
	}
	for i, row := range f.info.top {
		fmt.Fprintf(&b, "  %2d. %-20s %7s  %s\n", i+1, row.Name, number(row.Points), row.Rating)
	}
	return pressEnter(strings.TrimRight(b.String(), "\n"))
}

func (f *finalScore) OnInput(string) error {
	f.ctx.Shutdown()
	return nil
}
