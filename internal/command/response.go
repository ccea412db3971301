package command

import "github.com/agnivade/levenshtein"

// Response is the answer to a yes/no dialog.
type Response int

const (
	Custom Response = iota
	Yes
	No
)

func (r Response) String() string {
	switch r {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "custom"
	}
}

var (
	yesWords = []string{"yes", "y", "yeah", "yep", "sure", "ok", "okay"}
	noWords  = []string{"no", "n", "nope", "nah"}
)

// ParseResponse classifies a dialog answer. Anything that is not close to a
// yes or a no is Custom, and the dialog decides what to do with it.
func ParseResponse(input string) Response {
	in := normalize(input)
	if in == "" {
		return Custom
	}
	for _, w := range yesWords {
		if in == w {
			return Yes
		}
	}
	for _, w := range noWords {
		if in == w {
			return No
		}
	}
	// Typos of the full words only; one-letter answers are exact or nothing.
	if len(in) >= 3 {
		if levenshtein.ComputeDistance(in, "yes") <= 1 {
			return Yes
		}
		if levenshtein.ComputeDistance(in, "nope") <= 1 {
			return No
		}
	}
	return Custom
}
