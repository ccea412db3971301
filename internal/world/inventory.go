package world

import (
	"fmt"
	"math/rand/v2"
)

// Item is a kind of supply carried in the vehicle.
type Item string

const (
	ItemOxen     Item = "oxen"
	ItemFood     Item = "food"
	ItemClothing Item = "clothing"
	ItemAmmo     Item = "ammunition"
	ItemWheel    Item = "wheel"
	ItemAxle     Item = "axle"
	ItemTongue   Item = "tongue"
)

// Items lists every supply in display order.
var Items = []Item{ItemOxen, ItemFood, ItemClothing, ItemAmmo, ItemWheel, ItemAxle, ItemTongue}

// ParseItem maps a name to a known Item.
func ParseItem(s string) (Item, error) {
	for _, it := range Items {
		if string(it) == s {
			return it, nil
		}
	}
	return "", fmt.Errorf("unknown item %q", s)
}

// Inventory counts supplies. Food is in pounds, everything else in units.
type Inventory struct {
	counts map[Item]int
}

func NewInventory() *Inventory {
	return &Inventory{counts: make(map[Item]int, len(Items))}
}

func (inv *Inventory) Count(it Item) int { return inv.counts[it] }

func (inv *Inventory) Add(it Item, n int) {
	inv.counts[it] = max(inv.counts[it]+n, 0)
}

// Remove takes up to n of it and returns how many were actually removed.
func (inv *Inventory) Remove(it Item, n int) int {
	have := inv.counts[it]
	if n > have {
		n = have
	}
	inv.counts[it] = have - n
	return n
}

// Snapshot returns a copy of the non-zero counts.
func (inv *Inventory) Snapshot() map[Item]int {
	out := make(map[Item]int, len(inv.counts))
	for k, v := range inv.counts {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// DestroyRandom removes a random share (up to maxShare) of a random subset of
// the stocked items. Returns what was destroyed, keyed by item.
func (inv *Inventory) DestroyRandom(rng *rand.Rand, maxShare float64) map[Item]int {
	destroyed := make(map[Item]int)
	stocked := make([]Item, 0, len(inv.counts))
	for _, it := range Items {
		if inv.counts[it] > 0 {
			stocked = append(stocked, it)
		}
	}
	for _, it := range stocked {
		if rng.IntN(2) == 0 {
			continue
		}
		n := int(float64(inv.counts[it]) * maxShare * rng.Float64())
		if n <= 0 {
			continue
		}
		destroyed[it] = inv.Remove(it, n)
	}
	return destroyed
}
