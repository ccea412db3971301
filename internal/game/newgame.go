package game

import (
	"fmt"
	"strings"

	"github.com/trailgo/trail/internal/command"
	"github.com/trailgo/trail/internal/core/fault"
	"github.com/trailgo/trail/internal/core/state"
	"github.com/trailgo/trail/internal/world"
)

// newGameInfo is shared by the NewGame mode and its forms.
type newGameInfo struct {
	Profession world.Profession
	Names      []string
}

func (i *newGameInfo) reset() {
	i.Profession = 0
	i.Names = i.Names[:0]
}

var professionMenu = command.NewMenu("Many kinds of people made the trip to Oregon.\n\nYou may:",
	command.Choice{Key: "banker", Label: "Be a banker from Boston"},
	command.Choice{Key: "carpenter", Label: "Be a carpenter from Ohio"},
	command.Choice{Key: "farmer", Label: "Be a farmer from Illinois"},
)

var professions = map[string]world.Profession{
	"banker":    world.Banker,
	"carpenter": world.Carpenter,
	"farmer":    world.Farmer,
}

// newGame asks for the leader's profession, then hands over to the name forms.
type newGame struct {
	ctx  *state.Context
	info *newGameInfo
}

func newNewGame(ctx *state.Context) (state.State, error) {
	info, err := state.DataAs[*newGameInfo](ctx)
	if err != nil {
		return nil, err
	}
	return &newGame{ctx: ctx, info: info}, nil
}

func (g *newGame) Render() string {
	return professionMenu.Render()
}

func (g *newGame) OnInput(line string) error {
	m, err := professionMenu.Match(line)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrUnhandledInput, err)
	}
	g.info.reset()
	g.info.Profession = professions[m.Choice.Key]
	return g.ctx.SetForm(FormLeaderName)
}

// leaderName asks for the first name.
type leaderName struct {
	ctx  *state.Context
	info *newGameInfo
}

func newLeaderName(ctx *state.Context) (state.State, error) {
	info, err := state.DataAs[*newGameInfo](ctx)
	if err != nil {
		return nil, err
	}
	return &leaderName{ctx: ctx, info: info}, nil
}

func (f *leaderName) Render() string {
	return fmt.Sprintf("You are a %s.\n\nWhat is the first name of the wagon leader?", strings.ToLower(f.info.Profession.String()))
}

func (f *leaderName) OnInput(line string) error {
	name := strings.TrimSpace(line)
	if name == "" {
		return fault.ErrUnhandledInput
	}
	f.info.Names = append(f.info.Names[:0], name)
	if err := f.ctx.ClearForm(); err != nil {
		return err
	}
	return f.ctx.SetForm(FormPartyNames)
}

// partyNames collects the other passengers. An empty line stops early.
type partyNames struct {
	ctx  *state.Context
	info *newGameInfo
}

func newPartyNames(ctx *state.Context) (state.State, error) {
	info, err := state.DataAs[*newGameInfo](ctx)
	if err != nil {
		return nil, err
	}
	return &partyNames{ctx: ctx, info: info}, nil
}

func (f *partyNames) Render() string {
	var b strings.Builder
	b.WriteString("What are the first names of the other members of your party?\n")
	for i, n := range f.info.Names {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, n)
	}
	fmt.Fprintf(&b, "  %d. ", len(f.info.Names)+1)
	b.WriteString("\n(Press ENTER when done.)")
	return b.String()
}

func (f *partyNames) OnInput(line string) error {
	name := strings.TrimSpace(line)
	if name != "" {
		f.info.Names = append(f.info.Names, name)
	}
	if name != "" && len(f.info.Names) < world.MaxPartySize {
		return nil
	}
	if err := f.ctx.ClearForm(); err != nil {
		return err
	}
	return f.ctx.SetForm(FormConfirmParty)
}

// confirmParty shows the choices and asks yes or no.
type confirmParty struct {
	ctx  *state.Context
	info *newGameInfo
	s    Session
}

func newConfirmParty(s Session) state.Constructor {
	return func(ctx *state.Context) (state.State, error) {
		info, err := state.DataAs[*newGameInfo](ctx)
		if err != nil {
			return nil, err
		}
		return &confirmParty{ctx: ctx, info: info, s: s}, nil
	}
}

func (f *confirmParty) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profession: %s\n", f.info.Profession)
	fmt.Fprintf(&b, "Starting money: %s\n", money(f.info.Profession.StartingCents()))
	b.WriteString("Party:\n")
	for i, n := range f.info.Names {
		if i == 0 {
			fmt.Fprintf(&b, "  %s (leader)\n", n)
			continue
		}
		fmt.Fprintf(&b, "  %s\n", n)
	}
	b.WriteString("\nAre these answers correct? Y/N")
	return b.String()
}

func (f *confirmParty) OnInput(line string) error {
	switch command.ParseResponse(line) {
	case command.Yes:
		if err := f.s.Embark(f.info.Profession, f.info.Names); err != nil {
			return err
		}
		// The store sits on top of the trail so leaving it starts the journey.
		if err := f.ctx.PopMode(); err != nil {
			return err
		}
		if err := f.ctx.PushMode(ModeTravel); err != nil {
			return err
		}
		return f.ctx.PushMode(ModeStore)
	case command.No:
		f.info.reset()
		return f.ctx.ClearForm()
	default:
		return fault.ErrUnhandledInput
	}
}
