// Package command matches a typed line against a menu of choices and
// classifies yes/no answers. Players may type the menu number, the choice
// name or an alias, a prefix of at least two letters, or a near miss.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrNoMatch   = errors.New("no matching choice")
	ErrAmbiguous = errors.New("ambiguous choice")
)

// Choice is one menu line.
type Choice struct {
	Key     string
	Label   string
	Aliases []string
}

// Match describes how a line resolved to a choice.
type Match struct {
	Choice Choice
	Index  int // 0-based menu position
	Score  float64
	Source string // "number", "exact", "alias", "prefix", "lev"
}

// Menu is an ordered list of choices. Numbering starts at 1.
type Menu struct {
	Title   string
	choices []Choice
}

func NewMenu(title string, choices ...Choice) *Menu {
	return &Menu{Title: title, choices: choices}
}

// Choices returns the menu lines in order.
func (m *Menu) Choices() []Choice { return m.choices }

// Len returns the number of choices.
func (m *Menu) Len() int { return len(m.choices) }

// Render formats the menu as numbered lines followed by a prompt.
func (m *Menu) Render() string {
	var b strings.Builder
	if m.Title != "" {
		b.WriteString(m.Title)
		b.WriteString("\n")
	}
	for i, c := range m.choices {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, c.Label)
	}
	b.WriteString("What is your choice?")
	return b.String()
}

// Match resolves input to one choice.
func (m *Menu) Match(input string) (Match, error) {
	in := normalize(input)
	if in == "" {
		return Match{}, ErrNoMatch
	}
	if n, err := strconv.Atoi(in); err == nil {
		if n < 1 || n > len(m.choices) {
			return Match{}, fmt.Errorf("%w: %d is not between 1 and %d", ErrNoMatch, n, len(m.choices))
		}
		return Match{Choice: m.choices[n-1], Index: n - 1, Score: 1, Source: "number"}, nil
	}

	var cands []Match
	for i, c := range m.choices {
		if best, ok := scoreChoice(in, c); ok {
			best.Choice, best.Index = c, i
			cands = append(cands, best)
		}
	}
	if len(cands) == 0 {
		return Match{}, fmt.Errorf("%w: %q", ErrNoMatch, input)
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	if len(cands) > 1 && cands[0].Score == cands[1].Score {
		return Match{}, fmt.Errorf("%w: %q could be %s or %s", ErrAmbiguous, input, cands[0].Choice.Label, cands[1].Choice.Label)
	}
	return cands[0], nil
}

// scoreChoice returns the best way in matches c, across its key, label and aliases.
func scoreChoice(in string, c Choice) (Match, bool) {
	phrases := append([]string{normalize(c.Key), normalize(c.Label)}, normalizeAll(c.Aliases)...)
	var best Match
	found := false
	for i, p := range phrases {
		if p == "" {
			continue
		}
		var m Match
		switch {
		case in == p && i < 2:
			m = Match{Score: 1, Source: "exact"}
		case in == p:
			m = Match{Score: 0.98, Source: "alias"}
		case len(in) >= 2 && strings.HasPrefix(p, in):
			m = Match{Score: 0.9, Source: "prefix"}
		case len(in) >= 3:
			dist := levenshtein.ComputeDistance(in, p)
			if dist > levenshteinLimit(len(p)) {
				continue
			}
			m = Match{Score: 0.72 - 0.08*float64(dist), Source: "lev"}
		default:
			continue
		}
		if !found || m.Score > best.Score {
			best, found = m, true
		}
	}
	return best, found
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalize(s)
	}
	return out
}
