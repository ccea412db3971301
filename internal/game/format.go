package game

import (
	"fmt"
	"strings"

	"github.com/trailgo/trail/internal/world"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// money formats cents as dollars with thousands separators.
func money(cents int) string {
	return printer.Sprintf("$%.2f", float64(cents)/100)
}

// number formats an integer with thousands separators.
func number(n int) string {
	return printer.Sprintf("%d", n)
}

// rule is the horizontal line between the status block and the prompt.
const rule = "--------------------------------"

// statusBlock is the header shown above the travel menu.
func statusBlock(s Session) string {
	w := s.World()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rule)
	if lm, ok := w.Trail.Current(); ok {
		fmt.Fprintf(&b, "%s\n", lm.Name)
	}
	fmt.Fprintf(&b, "%s\n", s.Date())
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Weather: %s\n", w.Climate.Weather)
	if v := w.Vehicle; v != nil {
		fmt.Fprintf(&b, "Health: %s\n", partyHealth(v.Party))
		fmt.Fprintf(&b, "Pace: %s\n", s.Pace())
		fmt.Fprintf(&b, "Rations: %s\n", v.Ration)
		fmt.Fprintf(&b, "Food: %s pounds\n", number(v.Supplies.Count(world.ItemFood)))
		if next, ok := w.Trail.Next(); ok {
			fmt.Fprintf(&b, "Next landmark: %s (%s miles)\n", next.Name, number(w.Trail.MilesToNext(v.Odometer)))
		}
		fmt.Fprintf(&b, "Miles traveled: %s\n", number(v.Odometer))
	}
	b.WriteString(rule)
	return b.String()
}

// partyHealth is the worst health bucket among the living.
func partyHealth(p *world.Party) world.Health {
	if p == nil {
		return world.HealthDead
	}
	living := p.Living()
	if len(living) == 0 {
		return world.HealthDead
	}
	worst := world.HealthGood
	for _, m := range living {
		worst = min(worst, m.Health())
	}
	return worst
}

func pressEnter(text string) string {
	return text + "\n\nPress ENTER to continue."
}
