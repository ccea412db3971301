package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trailgo/trail/internal/command"
	"github.com/trailgo/trail/internal/core/clock"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/world"
)

// MaxRestDays caps one stop.
const MaxRestDays = 30

// travelInfo is shared by the Travel mode and its forms.
type travelInfo struct {
	restDays int
	notice   string
}

var travelMenu = command.NewMenu("You may:",
	command.Choice{Key: "continue", Label: "Continue on trail", Aliases: []string{"go", "travel"}},
	command.Choice{Key: "supplies", Label: "Check supplies", Aliases: []string{"inventory", "inv"}},
	command.Choice{Key: "map", Label: "Look at map"},
	command.Choice{Key: "pace", Label: "Change pace"},
	command.Choice{Key: "rations", Label: "Change food rations", Aliases: []string{"food"}},
	command.Choice{Key: "rest", Label: "Stop to rest", Aliases: []string{"camp"}},
	command.Choice{Key: "store", Label: "Buy supplies", Aliases: []string{"buy", "shop"}},
	command.Choice{Key: "quit", Label: "Quit", Aliases: []string{"exit"}},
)

type travel struct {
	ctx  *state.Context
	info *travelInfo
	s    Session
}

func newTravel(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*travelInfo](ctx)
		if err != nil {
			return nil, err
		}
		if s.World().Vehicle == nil {
			return nil, fmt.Errorf("%w: travel needs an embarked party", fault.ErrConstructionFailure)
		}
		return &travel{ctx: ctx, info: info, s: s}, nil
	}
}

func (t *travel) Render() string {
	var b strings.Builder
	b.WriteString(statusBlock(t.s))
	b.WriteString("\n")
	if t.info.notice != "" {
		b.WriteString(t.info.notice)
		b.WriteString("\n")
	}
	b.WriteString(travelMenu.Render())
	return b.String()
}

func (t *travel) OnInput(line string) error {
	m, err := travelMenu.Match(line)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrUnhandledInput, err)
	}
	t.info.notice = ""
	switch m.Choice.Key {
	case "continue":
		return t.ctx.SetForm(FormContinueOnTrail)
	case "supplies":
		return t.ctx.SetForm(FormCheckSupplies)
	case "map":
		return t.ctx.SetForm(FormLookAtMap)
	case "pace":
		return t.ctx.SetForm(FormChangePace)
	case "rations":
		return t.ctx.SetForm(FormChangeRations)
	case "rest":
		if err := t.ctx.PushWindow(WinCamp); err != nil {
			return err
		}
		return t.ctx.SetForm(FormRestAmount)
	case "store":
		lm, ok := t.s.World().Trail.Current()
		if !ok || !lm.HasStore || t.s.World().Vehicle.Odometer != lm.Mile {
			t.info.notice = "There is no store here."
			return nil
		}
		return t.ctx.PushMode(ModeStore)
	case "quit":
		t.ctx.Shutdown()
	}
	return nil
}

// continueOnTrail advances one day per line until the player stops.
type continueOnTrail struct {
	ctx *state.Context
	s   Session
}

func newContinueOnTrail(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		return &continueOnTrail{ctx: ctx, s: s}, nil
	}
}

func (f *continueOnTrail) Render() string {
	var b strings.Builder
	b.WriteString(statusBlock(f.s))
	if v := f.s.World().Vehicle; !v.CanMove() {
		b.WriteString("\nThe wagon cannot move.")
		switch {
		case v.Status != world.VehicleGood:
			fmt.Fprintf(&b, " It is %s.", v.Status)
		case v.Supplies.Count(world.ItemOxen) == 0:
			b.WriteString(" You have no oxen.")
		}
	}
	b.WriteString("\nPress ENTER to keep traveling, or type STOP to size up the situation.")
	return b.String()
}

func (f *continueOnTrail) OnInput(line string) error {
	if in := strings.ToLower(strings.TrimSpace(line)); in == "stop" || in == "s" {
		return f.ctx.ClearForm()
	}
	if f.s.Pace() == clock.Paused {
		if err := f.s.SetPace(clock.Steady); err != nil {
			return err
		}
	}
	return f.s.Advance(1)
}

// checkSupplies lists the wagon's contents.
type checkSupplies struct {
	ctx *state.Context
	s   Session
}

func newCheckSupplies(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		return &checkSupplies{ctx: ctx, s: s}, nil
	}
}

func (f *checkSupplies) Render() string {
	v := f.s.World().Vehicle
	var b strings.Builder
	b.WriteString("Your Supplies\n")
	for _, it := range world.Items {
		fmt.Fprintf(&b, "  %-12s %s\n", it, number(v.Supplies.Count(it)))
	}
	fmt.Fprintf(&b, "  %-12s %s\n", "money", money(v.Cents))
	b.WriteString("\nParty\n")
	for _, p := range v.Party.Members() {
		fmt.Fprintf(&b, "  %-12s %s\n", p.Name(), p.Health())
	}
	return pressEnter(strings.TrimRight(b.String(), "\n"))
}

func (f *checkSupplies) OnInput(string) error { return f.ctx.ClearForm() }

// lookAtMap shows passed and upcoming landmarks.
type lookAtMap struct {
	ctx *state.Context
	s   Session
}

func newLookAtMap(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		return &lookAtMap{ctx: ctx, s: s}, nil
	}
}

func (f *lookAtMap) Render() string {
	w := f.s.World()
	passed := len(w.Trail.Passed())
	var b strings.Builder
	b.WriteString("Map of the trail\n")
	for i, lm := range w.Trail.Landmarks() {
		mark := " "
		if i < passed {
			mark = "*"
		}
		fmt.Fprintf(&b, "  %s %5s  %s\n", mark, number(lm.Mile), lm.Name)
	}
	fmt.Fprintf(&b, "\nYou have traveled %s of %s miles.", number(w.Vehicle.Odometer), number(w.Trail.Length()))
	return pressEnter(b.String())
}

func (f *lookAtMap) OnInput(string) error { return f.ctx.ClearForm() }

var paceMenu = command.NewMenu("Change pace:",
	command.Choice{Key: "steady", Label: "A steady pace"},
	command.Choice{Key: "strenuous", Label: "A strenuous pace"},
	command.Choice{Key: "grueling", Label: "A grueling pace"},
)

var paces = map[string]clock.Pace{
	"steady":    clock.Steady,
	"strenuous": clock.Strenuous,
	"grueling":  clock.Grueling,
}

type changePace struct {
	ctx *state.Context
	s   Session
}

func newChangePace(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		return &changePace{ctx: ctx, s: s}, nil
	}
}

func (f *changePace) Render() string {
	return fmt.Sprintf("The current pace is %s.\n%s", strings.ToLower(f.s.Pace().String()), paceMenu.Render())
}

func (f *changePace) OnInput(line string) error {
	m, err := paceMenu.Match(line)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrUnhandledInput, err)
	}
	if err := f.s.SetPace(paces[m.Choice.Key]); err != nil {
		return err
	}
	return f.ctx.ClearForm()
}

var rationMenu = command.NewMenu("Change food rations:",
	command.Choice{Key: "filling", Label: "Filling - meals are large and generous"},
	command.Choice{Key: "meager", Label: "Meager - meals are small, but adequate"},
	command.Choice{Key: "bare", Label: "Bare bones - meals are very small"},
)

var rations = map[string]world.Ration{
	"filling": world.RationFilling,
	"meager":  world.RationMeager,
	"bare":    world.RationBareBones,
}

type changeRations struct {
	ctx *state.Context
	s   Session
}

func newChangeRations(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		return &changeRations{ctx: ctx, s: s}, nil
	}
}

func (f *changeRations) Render() string {
	return fmt.Sprintf("The current ration is %s.\n%s", f.s.World().Vehicle.Ration, rationMenu.Render())
}

func (f *changeRations) OnInput(line string) error {
	m, err := rationMenu.Match(line)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrUnhandledInput, err)
	}
	f.s.World().Vehicle.Ration = rations[m.Choice.Key]
	return f.ctx.ClearForm()
}

// restAmount asks how long to stop. Anything that is not a number re-prompts.
type restAmount struct {
	ctx  *state.Context
	info *travelInfo
	s    Session
}

func newRestAmount(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*travelInfo](ctx)
		if err != nil {
			return nil, err
		}
		return &restAmount{ctx: ctx, info: info, s: s}, nil
	}
}

func (f *restAmount) Render() string {
	return fmt.Sprintf("How many days would you like to rest? (0-%d)", MaxRestDays)
}

func (f *restAmount) OnInput(line string) error {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 || n > MaxRestDays {
		return fault.ErrUnhandledInput
	}
	if n == 0 {
		if err := f.ctx.ClearForm(); err != nil {
			return err
		}
		return f.ctx.PopWindow()
	}
	if err := f.s.Rest(n); err != nil {
		return err
	}
	if f.s.World().GameOver() {
		return nil
	}
	f.info.restDays = n
	if err := f.ctx.ClearForm(); err != nil {
		return err
	}
	return f.ctx.SetForm(FormResting)
}

// resting reports the stop and returns to the trail window.
type resting struct {
	ctx  *state.Context
	info *travelInfo
	s    Session
}

func newResting(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*travelInfo](ctx)
		if err != nil {
			return nil, err
		}
		return &resting{ctx: ctx, info: info, s: s}, nil
	}
}

func (f *resting) Render() string {
	v := f.s.World().Vehicle
	unit := "days"
	if f.info.restDays == 1 {
		unit = "day"
	}
	return pressEnter(fmt.Sprintf("You rested for %d %s.\nIt is now %s.\nHealth: %s\nFood: %s pounds",
		f.info.restDays, unit, f.s.Date(), partyHealth(v.Party), number(v.Supplies.Count(world.ItemFood))))
}

func (f *resting) OnInput(string) error {
	f.info.restDays = 0
	if err := f.ctx.ClearForm(); err != nil {
		return err
	}
	return f.ctx.PopWindow()
}
