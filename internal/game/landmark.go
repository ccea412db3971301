package game

import (
	"fmt"
	"strings"

	"github.com/trailgo/trail/internal/command"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/world"
)

// landmark announces an arrival and offers the store where there is one.
type landmark struct {
	ctx    *state.Context
	lm     world.Landmark
	s      Session
	menu   *command.Menu
	looked bool
}

func newLandmark(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		lm, err := state.DataAs[world.Landmark](ctx)
		if err != nil {
			return nil, err
		}
		choices := []command.Choice{
			{Key: "continue", Label: "Continue on trail", Aliases: []string{"go"}},
			{Key: "look", Label: "Look around"},
		}
		if lm.HasStore {
			choices = append(choices, command.Choice{Key: "store", Label: "Buy supplies", Aliases: []string{"buy", "shop"}})
		}
		return &landmark{ctx: ctx, lm: lm, s: s, menu: command.NewMenu("You may:", choices...)}, nil
	}
}

func (l *landmark) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have reached %s.\n%s\n", l.lm.Name, l.s.Date())
	switch l.lm.Kind {
	case world.LandmarkRiver:
		b.WriteString("You must cross the river to continue.\n")
	case world.LandmarkSettlement:
		b.WriteString("Other travelers are resting here.\n")
	}
	if l.looked && l.lm.Description != "" {
		b.WriteString(l.lm.Description)
		b.WriteString("\n")
	}
	b.WriteString(l.menu.Render())
	return b.String()
}

func (l *landmark) OnInput(line string) error {
	m, err := l.menu.Match(line)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrUnhandledInput, err)
	}
	switch m.Choice.Key {
	case "look":
		l.looked = true
		return nil
	case "store":
		return l.ctx.PushMode(ModeStore)
	}
	return l.ctx.PopMode()
}
