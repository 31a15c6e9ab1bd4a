package types

import "maps"

// Dimension names one facet of the course catalog that can be filtered,
// counted and (for availability) sorted on.
type Dimension string

const (
	DimensionNew           Dimension = "new"
	DimensionAvailability  Dimension = "availability"
	DimensionCategories    Dimension = "categories"
	DimensionOrganizations Dimension = "organizations"
	DimensionLanguages     Dimension = "languages"
)

// Dimensions lists every filterable dimension in display position order.
var Dimensions = []Dimension{
	DimensionNew,
	DimensionAvailability,
	DimensionCategories,
	DimensionOrganizations,
	DimensionLanguages,
}

const (
	AvailabilityOpen       = "open"
	AvailabilityComingSoon = "coming_soon"
	AvailabilityOngoing    = "ongoing"
	AvailabilityArchived   = "archived"
)

// AvailabilityValues is the fixed candidate set for the availability
// dimension, in display order.
var AvailabilityValues = []string{
	AvailabilityOpen,
	AvailabilityComingSoon,
	AvailabilityOngoing,
	AvailabilityArchived,
}

// NewValue is the single accepted value of the "new" dimension.
const NewValue = "new"

// Filters is the immutable filter context of one query: accepted values per
// dimension, OR within a dimension, AND across dimensions.
type Filters map[Dimension][]string

func (f Filters) Has(d Dimension) bool {
	return len(f[d]) > 0
}

func (f Filters) IsEmpty() bool {
	for _, values := range f {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// WithOut returns the filter context with the given dimension removed.
// Facet counts for a dimension are computed against all other active
// filters, which keeps multi-select facets sticky.
func (f Filters) WithOut(d Dimension) Filters {
	if !f.Has(d) {
		return f
	}
	result := make(Filters, len(f))
	maps.Copy(result, f)
	delete(result, d)
	return result
}

// Validate rejects unknown dimension values before any matching happens.
func (f Filters) Validate() error {
	for _, value := range f[DimensionAvailability] {
		if !validAvailability(value) {
			return &ConfigurationError{Dimension: string(DimensionAvailability), Value: value}
		}
	}
	for _, value := range f[DimensionNew] {
		if value != NewValue {
			return &ConfigurationError{Dimension: string(DimensionNew), Value: value}
		}
	}
	return nil
}

func validAvailability(value string) bool {
	for _, v := range AvailabilityValues {
		if v == value {
			return true
		}
	}
	return false
}
