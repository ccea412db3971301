package world

import "fmt"

const MaxPartySize = 5

// Profession of the party leader decides starting money and the final score
// multiplier.
type Profession int

const (
	Banker Profession = iota + 1
	Carpenter
	Farmer
)

func (p Profession) String() string {
	switch p {
	case Banker:
		return "Banker"
	case Carpenter:
		return "Carpenter"
	case Farmer:
		return "Farmer"
	default:
		return fmt.Sprintf("Profession(%d)", int(p))
	}
}

// StartingCents is the money a leader of this profession begins with.
func (p Profession) StartingCents() int {
	switch p {
	case Banker:
		return 160000
	case Carpenter:
		return 80000
	case Farmer:
		return 40000
	default:
		return 0
	}
}

// ScoreMultiplier rewards harder starts.
func (p Profession) ScoreMultiplier() int {
	switch p {
	case Carpenter:
		return 2
	case Farmer:
		return 3
	default:
		return 1
	}
}

// Health buckets a person's condition; values are the points each living
// person is worth at the end of the trail.
type Health int

const (
	HealthDead     Health = 0
	HealthVeryPoor Health = 200
	HealthPoor     Health = 300
	HealthFair     Health = 400
	HealthGood     Health = 500
)

func (h Health) String() string {
	switch h {
	case HealthGood:
		return "good"
	case HealthFair:
		return "fair"
	case HealthPoor:
		return "poor"
	case HealthVeryPoor:
		return "very poor"
	default:
		return "dead"
	}
}

// Person is a passenger. Vitality runs 0..100 and is bucketed into Health.
type Person struct {
	name     string
	Leader   bool
	Vitality int
	Injured  bool
	Infected bool
}

func NewPerson(name string, leader bool) *Person {
	return &Person{name: name, Leader: leader, Vitality: 100}
}

func (p *Person) Name() string { return p.name }

// Alive reports whether the person still counts as a passenger.
func (p *Person) Alive() bool { return p.Vitality > 0 }

// Health buckets Vitality.
func (p *Person) Health() Health {
	switch {
	case p.Vitality <= 0:
		return HealthDead
	case p.Vitality < 25:
		return HealthVeryPoor
	case p.Vitality < 50:
		return HealthPoor
	case p.Vitality < 75:
		return HealthFair
	default:
		return HealthGood
	}
}

// Injure marks a physical injury, which slows recovery until healed.
func (p *Person) Injure() {
	p.Injured = true
	p.Damage(20)
}

// Infect marks an illness.
func (p *Person) Infect() {
	p.Infected = true
	p.Damage(10)
}

// Damage lowers vitality, never below zero.
func (p *Person) Damage(n int) {
	p.Vitality = clamp(p.Vitality-n, 0, 100)
}

// Heal raises vitality of a living person, never above 100.
func (p *Person) Heal(n int) {
	if !p.Alive() {
		return
	}
	p.Vitality = clamp(p.Vitality+n, 0, 100)
}

// Kill sets vitality to zero.
func (p *Person) Kill() { p.Vitality = 0 }

// Party is everyone riding in the vehicle, leader first.
type Party struct {
	Profession Profession
	members    []*Person
}

func NewParty(prof Profession, names ...string) (*Party, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("party needs a leader")
	}
	if len(names) > MaxPartySize {
		return nil, fmt.Errorf("party of %d exceeds max size %d", len(names), MaxPartySize)
	}
	p := &Party{Profession: prof, members: make([]*Person, 0, len(names))}
	for i, n := range names {
		p.members = append(p.members, NewPerson(n, i == 0))
	}
	return p, nil
}

// Members returns every passenger, alive or not.
func (p *Party) Members() []*Person { return p.members }

// Leader returns the party leader.
func (p *Party) Leader() *Person {
	if len(p.members) == 0 {
		return nil
	}
	return p.members[0]
}

// Living returns the passengers still alive.
func (p *Party) Living() []*Person {
	out := make([]*Person, 0, len(p.members))
	for _, m := range p.members {
		if m.Alive() {
			out = append(out, m)
		}
	}
	return out
}

// Wiped reports whether nobody is left alive.
func (p *Party) Wiped() bool { return len(p.Living()) == 0 }

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
