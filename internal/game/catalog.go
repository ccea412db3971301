package game

import (
	"fmt"

	"github.com/trailgo/trail/internal/data"
	"github.com/trailgo/trail/internal/director"
	"github.com/trailgo/trail/internal/world"
)

// RegisterCatalog builds every catalog entry from its prefab and registers
// it with the director.
func RegisterCatalog(d *director.Director, t *data.EventTable) error {
	for _, e := range t.Entries() {
		rec, err := CatalogRecord(e)
		if err != nil {
			return err
		}
		if err := d.Register(rec); err != nil {
			return err
		}
	}
	return nil
}

// CatalogRecord turns one catalog entry into a director record.
func CatalogRecord(e data.EventEntry) (director.Record, error) {
	cat, err := director.ParseCategory(e.Category)
	if err != nil {
		return director.Record{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	p := director.Params{
		Text:        e.Text,
		Days:        e.Days,
		Damage:      e.Damage,
		Share:       e.Share,
		KillChance:  e.KillChance,
		KillVerb:    e.KillVerb,
		MinSeverity: e.MinSeverity,
	}
	if e.Item != "" {
		if p.Item, err = world.ParseItem(e.Item); err != nil {
			return director.Record{}, fmt.Errorf("event %s: %w", e.ID, err)
		}
	}
	ev, applies, err := director.NewPrefab(e.Prefab, p)
	if err != nil {
		return director.Record{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return director.Record{ID: e.ID, Category: cat, Weight: e.Weight, Applies: applies, Event: ev}, nil
}
