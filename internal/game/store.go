package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trailgo/trail/internal/command"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/world"
)

// storeInfo is shared by the Store mode and the quantity form.
type storeInfo struct {
	selected *data.StoreItem
	notice   string
}

// store lists prices; picking a line opens the quantity form.
type store struct {
	ctx  *state.Context
	info *storeInfo
	s    Session
	menu *command.Menu
}

func newStore(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*storeInfo](ctx)
		if err != nil {
			return nil, err
		}
		if s.World().Vehicle == nil || s.Store() == nil {
			return nil, fmt.Errorf("%w: store needs a vehicle and a price list", fault.ErrConstructionFailure)
		}
		choices := make([]command.Choice, 0, s.Store().Count()+1)
		for _, it := range s.Store().Items() {
			choices = append(choices, command.Choice{Key: string(it.Item), Label: it.Label})
		}
		choices = append(choices, command.Choice{Key: "leave", Label: "Leave the store", Aliases: []string{"done", "exit"}})
		return &store{ctx: ctx, info: info, s: s, menu: command.NewMenu("", choices...)}, nil
	}
}

func (st *store) Render() string {
	v := st.s.World().Vehicle
	var b strings.Builder
	b.WriteString("General Store\n")
	b.WriteString(rule)
	b.WriteString("\n")
	for i, it := range st.s.Store().Items() {
		fmt.Fprintf(&b, "  %d. %-28s %9s  (have %s)\n", i+1, it.Label, money(it.Cents), number(v.Supplies.Count(it.Item)))
	}
	fmt.Fprintf(&b, "  %d. Leave the store\n", st.s.Store().Count()+1)
	b.WriteString(rule)
	fmt.Fprintf(&b, "\nYou have %s to spend.\n", money(v.Cents))
	if st.info.notice != "" {
		b.WriteString(st.info.notice)
		b.WriteString("\n")
	}
	b.WriteString("Which item would you like to buy?")
	return b.String()
}

func (st *store) OnInput(line string) error {
	m, err := st.menu.Match(line)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrUnhandledInput, err)
	}
	st.info.notice = ""
	if m.Choice.Key == "leave" {
		if st.s.World().Vehicle.Supplies.Count(world.ItemOxen) == 0 {
			st.info.notice = "You will need oxen to pull your wagon."
			return nil
		}
		return st.ctx.PopMode()
	}
	it, _ := world.ParseItem(m.Choice.Key)
	st.info.selected = st.s.Store().Get(it)
	return st.ctx.SetForm(FormBuyQuantity)
}

// buyQuantity asks how many packs of the selected item to buy.
type buyQuantity struct {
	ctx  *state.Context
	info *storeInfo
	s    Session
}

func newBuyQuantity(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*storeInfo](ctx)
		if err != nil {
			return nil, err
		}
		if info.selected == nil {
			return nil, fmt.Errorf("%w: no item selected", fault.ErrConstructionFailure)
		}
		return &buyQuantity{ctx: ctx, info: info, s: s}, nil
	}
}

func (f *buyQuantity) Render() string {
	it := f.info.selected
	unit := ""
	if it.PackCount > 1 {
		unit = fmt.Sprintf(" (%d per pack)", it.PackCount)
	}
	return fmt.Sprintf("%s cost %s each%s.\nYou have %s.\nHow many would you like to buy?",
		it.Label, money(it.Cents), unit, money(f.s.World().Vehicle.Cents))
}

// Buy applies a purchase of packs of it. It returns a player-facing reason
// when the purchase is refused.
func Buy(v *world.Vehicle, it *data.StoreItem, packs int) (string, bool) {
	cost := packs * it.Cents
	units := packs * it.PackCount
	switch {
	case packs < 0:
		return "You cannot buy a negative amount.", false
	case cost > v.Cents:
		return fmt.Sprintf("You only have %s.", money(v.Cents)), false
	case it.Max > 0 && v.Supplies.Count(it.Item)+units > it.Max:
		return fmt.Sprintf("Your wagon may only carry %s %s.", number(it.Max), it.Item), false
	}
	v.Cents -= cost
	v.Supplies.Add(it.Item, units)
	return "", true
}

func (f *buyQuantity) OnInput(line string) error {
	packs, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return fault.ErrUnhandledInput
	}
	if reason, ok := Buy(f.s.World().Vehicle, f.info.selected, packs); !ok {
		f.info.notice = reason
	}
	f.info.selected = nil
	return f.ctx.ClearForm()
}
