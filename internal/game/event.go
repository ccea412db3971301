package game

import (
	"fmt"

	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/director"
)

// randomEvent shows one event outcome. The days it cost are spent when the
// player moves on.
type randomEvent struct {
	ctx     *state.Context
	outcome director.Outcome
	s       Session
}

func newRandomEvent(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		out, err := state.DataAs[director.Outcome](ctx)
		if err != nil {
			return nil, err
		}
		if out.Record == nil {
			return nil, fmt.Errorf("%w: event outcome has no record", fault.ErrConstructionFailure)
		}
		return &randomEvent{ctx: ctx, outcome: out, s: s}, nil
	}
}

func (e *randomEvent) Render() string {
	return pressEnter(fmt.Sprintf("%s\n%s\n%s", e.s.Date(), rule, e.outcome.Text))
}

func (e *randomEvent) OnInput(string) error {
	if err := e.ctx.PopMode(); err != nil {
		return err
	}
	if days := e.s.World().DaysLost; days > 0 {
		e.s.World().DaysLost = 0
		return e.s.Rest(days)
	}
	return nil
}
