package domain

import "sort"

// Aggregation describes how point amounts combine within a category.
type Aggregation string

// Supported aggregation modes for point categories.
const (
	AggregationSum  Aggregation = "sum"
	AggregationMax  Aggregation = "max"
	AggregationLast Aggregation = "last"
)

// PointCategory is a descriptor for a named points bucket. Categories are
// immutable during a run and loaded from config at startup.
type PointCategory struct {
	ID                     string      `json:"id"`
	Name                   string      `json:"name"`
	Aggregation            Aggregation `json:"aggregation"`
	NegativeBalanceAllowed bool        `json:"negativeBalanceAllowed"`
	IsSpendable            bool        `json:"isSpendable"`
}

// Badge is a grantable achievement descriptor.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"imageRef,omitempty"`
	Visible     bool   `json:"visible"`
}

// Trophy is a grantable achievement descriptor, distinct from badges only
// in how clients present it.
type Trophy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"imageRef,omitempty"`
	Visible     bool   `json:"visible"`
}

// Level is a threshold descriptor within a point category.
type Level struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	MinPoints  int64  `json:"minPoints"`
	Name       string `json:"name"`
}

// LevelForPoints resolves the level a point balance falls into: the level
// with the highest MinPoints <= points, ties broken by lexical level id.
// Returns the zero Level and false when no level threshold is met.
func LevelForPoints(levels []Level, categoryID string, points int64) (Level, bool) {
	var (
		best  Level
		found bool
	)
	sorted := make([]Level, 0, len(levels))
	for _, l := range levels {
		if l.CategoryID == categoryID {
			sorted = append(sorted, l)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MinPoints != sorted[j].MinPoints {
			return sorted[i].MinPoints < sorted[j].MinPoints
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, l := range sorted {
		if l.MinPoints <= points {
			if !found || l.MinPoints > best.MinPoints {
				best = l
				found = true
			}
		}
	}
	return best, found
}
