// Package catalog holds the immutable descriptor sets loaded at startup:
// point categories, badges, trophies, levels, and known event types.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/osheron/meritum/internal/domain"
)

// ErrInvalidConfig marks a structurally valid JSON file with bad contents.
var ErrInvalidConfig = errors.New("invalid configuration")

// Catalog is the resolved, validated descriptor set. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	categories map[string]domain.PointCategory
	badges     map[string]domain.Badge
	trophies   map[string]domain.Trophy
	levels     []domain.Level
	eventTypes map[string]domain.EventTypeDescriptor
}

// New builds a catalog from descriptor slices, checking for duplicate ids
// and dangling level categories.
func New(categories []domain.PointCategory, badges []domain.Badge, trophies []domain.Trophy, levels []domain.Level, eventTypes []domain.EventTypeDescriptor) (*Catalog, error) {
	c := &Catalog{
		categories: make(map[string]domain.PointCategory, len(categories)),
		badges:     make(map[string]domain.Badge, len(badges)),
		trophies:   make(map[string]domain.Trophy, len(trophies)),
		eventTypes: make(map[string]domain.EventTypeDescriptor, len(eventTypes)),
	}

	for _, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("%w: category with empty id", ErrInvalidConfig)
		}
		if _, dup := c.categories[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidConfig, cat.ID)
		}
		switch cat.Aggregation {
		case domain.AggregationSum, domain.AggregationMax, domain.AggregationLast:
		case "":
			cat.Aggregation = domain.AggregationSum
		default:
			return nil, fmt.Errorf("%w: category %q has unknown aggregation %q", ErrInvalidConfig, cat.ID, cat.Aggregation)
		}
		c.categories[cat.ID] = cat
	}

	for _, b := range badges {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: badge with empty id", ErrInvalidConfig)
		}
		if _, dup := c.badges[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate badge %q", ErrInvalidConfig, b.ID)
		}
		c.badges[b.ID] = b
	}

	for _, tr := range trophies {
		if tr.ID == "" {
			return nil, fmt.Errorf("%w: trophy with empty id", ErrInvalidConfig)
		}
		if _, dup := c.trophies[tr.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate trophy %q", ErrInvalidConfig, tr.ID)
		}
		c.trophies[tr.ID] = tr
	}

	seenLevels := make(map[string]bool, len(levels))
	for _, l := range levels {
		if l.ID == "" {
			return nil, fmt.Errorf("%w: level with empty id", ErrInvalidConfig)
		}
		if seenLevels[l.ID] {
			return nil, fmt.Errorf("%w: duplicate level %q", ErrInvalidConfig, l.ID)
		}
		seenLevels[l.ID] = true
		if _, ok := c.categories[l.CategoryID]; !ok {
			return nil, fmt.Errorf("%w: level %q references unknown category %q", ErrInvalidConfig, l.ID, l.CategoryID)
		}
	}
	c.levels = append([]domain.Level(nil), levels...)
	sort.Slice(c.levels, func(i, j int) bool {
		if c.levels[i].CategoryID != c.levels[j].CategoryID {
			return c.levels[i].CategoryID < c.levels[j].CategoryID
		}
		return c.levels[i].MinPoints < c.levels[j].MinPoints
	})

	for _, et := range eventTypes {
		if et.ID == "" {
			return nil, fmt.Errorf("%w: event type descriptor with empty type", ErrInvalidConfig)
		}
		c.eventTypes[et.ID] = et
	}

	return c, nil
}

// Category returns the category descriptor for the id.
func (c *Catalog) Category(id string) (domain.PointCategory, bool) {
	cat, ok := c.categories[id]
	return cat, ok
}

// Categories returns all category descriptors sorted by id.
func (c *Catalog) Categories() []domain.PointCategory {
	out := make([]domain.PointCategory, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Badge returns the badge descriptor for the id.
func (c *Catalog) Badge(id string) (domain.Badge, bool) {
	b, ok := c.badges[id]
	return b, ok
}

// Badges returns all badge descriptors sorted by id.
func (c *Catalog) Badges() []domain.Badge {
	out := make([]domain.Badge, 0, len(c.badges))
	for _, b := range c.badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Trophy returns the trophy descriptor for the id.
func (c *Catalog) Trophy(id string) (domain.Trophy, bool) {
	t, ok := c.trophies[id]
	return t, ok
}

// Trophies returns all trophy descriptors sorted by id.
func (c *Catalog) Trophies() []domain.Trophy {
	out := make([]domain.Trophy, 0, len(c.trophies))
	for _, t := range c.trophies {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Levels returns all level descriptors ordered by category then threshold.
func (c *Catalog) Levels() []domain.Level {
	return c.levels
}

// EventType returns the descriptor for a known event type.
func (c *Catalog) EventType(eventType string) (domain.EventTypeDescriptor, bool) {
	et, ok := c.eventTypes[eventType]
	return et, ok
}

// EventTypes returns all known event type descriptors sorted by type.
func (c *Catalog) EventTypes() []domain.EventTypeDescriptor {
	out := make([]domain.EventTypeDescriptor, 0, len(c.eventTypes))
	for _, et := range c.eventTypes {
		out = append(out, et)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
