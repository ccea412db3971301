package data

import (
	"fmt"
	"os"

	"github.com/trailgo/trail/internal/world"
	"gopkg.in/yaml.v3"
)

// StoreItem is one line of the general store's price list.
type StoreItem struct {
	Item      world.Item
	Order     int
	Cents     int // price per pack
	PackCount int // units per purchase (0 treated as 1)
	Max       int // most the wagon can carry, 0 = unlimited
	Label     string
}

// StoreTable holds the store's price list in display order.
type StoreTable struct {
	items  []*StoreItem
	byItem map[world.Item]*StoreItem
}

// Get returns the price line for an item, or nil if the store does not sell it.
func (t *StoreTable) Get(it world.Item) *StoreItem {
	return t.byItem[it]
}

// Items returns the price list in display order.
func (t *StoreTable) Items() []*StoreItem {
	return t.items
}

// Count returns the number of items for sale.
func (t *StoreTable) Count() int {
	return len(t.items)
}

type storeYAMLItem struct {
	Item      string `yaml:"item"`
	Label     string `yaml:"label"`
	Cents     int    `yaml:"cents"`
	PackCount int    `yaml:"pack_count"`
	Max       int    `yaml:"max"`
}

type storeFile struct {
	Items []storeYAMLItem `yaml:"store"`
}

// LoadStoreTable loads store prices from a YAML file.
func LoadStoreTable(path string) (*StoreTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	var f storeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}

	t := &StoreTable{
		items:  make([]*StoreItem, 0, len(f.Items)),
		byItem: make(map[world.Item]*StoreItem, len(f.Items)),
	}
	for i, e := range f.Items {
		it, err := world.ParseItem(e.Item)
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", path, err)
		}
		if _, dup := t.byItem[it]; dup {
			return nil, fmt.Errorf("store: %s: %s listed twice", path, it)
		}
		if e.Cents <= 0 {
			return nil, fmt.Errorf("store: %s: %s has non-positive price %d", path, it, e.Cents)
		}
		pack := e.PackCount
		if pack <= 0 {
			pack = 1
		}
		label := e.Label
		if label == "" {
			label = string(it)
		}
		si := &StoreItem{Item: it, Order: i, Cents: e.Cents, PackCount: pack, Max: e.Max, Label: label}
		t.items = append(t.items, si)
		t.byItem[it] = si
	}
	return t, nil
}
