// Package i18n resolves human-readable labels for facet dimensions and
// their values. The core never depends on it for matching or ranking, only
// the serving layer does for display.
package i18n

import "github.com/zhafed/richie/pkg/types"

// Lookup resolves display names. Implementations must fall back to the raw
// value for anything they do not know.
type Lookup interface {
	DimensionName(dimension types.Dimension) string
	ValueName(dimension types.Dimension, value string) string
}

// StaticLookup serves labels from in-memory dictionaries, typically fed
// from the config file.
type StaticLookup struct {
	dimensions map[types.Dimension]string
	values     map[types.Dimension]map[string]string
}

func NewStaticLookup(dimensions map[types.Dimension]string, values map[types.Dimension]map[string]string) *StaticLookup {
	return &StaticLookup{dimensions: dimensions, values: values}
}

func (l *StaticLookup) DimensionName(dimension types.Dimension) string {
	if name, ok := l.dimensions[dimension]; ok {
		return name
	}
	return string(dimension)
}

func (l *StaticLookup) ValueName(dimension types.Dimension, value string) string {
	if name, ok := l.values[dimension][value]; ok {
		return name
	}
	return value
}

// Merge layers additional dictionaries on top of the current ones.
func (l *StaticLookup) Merge(dimensions map[types.Dimension]string, values map[types.Dimension]map[string]string) {
	for dimension, name := range dimensions {
		l.dimensions[dimension] = name
	}
	for dimension, labels := range values {
		if l.values[dimension] == nil {
			l.values[dimension] = map[string]string{}
		}
		for value, name := range labels {
			l.values[dimension][value] = name
		}
	}
}

// Default returns the english labels the catalog ships with.
func Default() *StaticLookup {
	return NewStaticLookup(
		map[types.Dimension]string{
			types.DimensionNew:           "New courses",
			types.DimensionAvailability:  "Availability",
			types.DimensionCategories:    "Categories",
			types.DimensionOrganizations: "Organizations",
			types.DimensionLanguages:     "Languages",
		},
		map[types.Dimension]map[string]string{
			types.DimensionNew: {
				types.NewValue: "First session",
			},
			types.DimensionAvailability: {
				types.AvailabilityOpen:       "Open for enrollment",
				types.AvailabilityComingSoon: "Coming soon",
				types.AvailabilityOngoing:    "On-going",
				types.AvailabilityArchived:   "Archived",
			},
		},
	)
}
