package index

import (
	"sort"
	"time"

	"github.com/zhafed/richie/pkg/availability"
	"github.com/zhafed/richie/pkg/types"
)

// facetsLocked computes the per-dimension value counts for the current
// filter context. Each dimension is counted against every active filter
// except its own, so an applied facet keeps showing what its sibling values
// would yield. The remaining run-level filter still applies inside each
// run when counting the other run-level dimension. Zero-count values are
// omitted, like a terms aggregation would. Callers hold a read lock.
func (i *CourseIndex) facetsLocked(now time.Time, filters types.Filters) types.FacetResult {
	result := make(types.FacetResult, len(types.Dimensions))
	for _, dimension := range types.Dimensions {
		others := filters.WithOut(dimension)
		base := i.matchLocked(now, others)
		result[dimension] = countDimension(now, base, dimension, others)
	}
	return result
}

func countDimension(now time.Time, courses []*types.Course, dimension types.Dimension, others types.Filters) []types.FacetCount {
	switch dimension {
	case types.DimensionAvailability:
		return countAvailability(now, courses, others[types.DimensionLanguages])
	case types.DimensionLanguages:
		return countLanguages(now, courses, others[types.DimensionAvailability])
	case types.DimensionNew:
		count := 0
		for _, course := range courses {
			if course.IsNew {
				count++
			}
		}
		if count == 0 {
			return nil
		}
		return []types.FacetCount{{Name: types.NewValue, Count: count}}
	case types.DimensionCategories:
		return countAttached(courses, func(c *types.Course) []string { return c.Categories })
	case types.DimensionOrganizations:
		return countAttached(courses, func(c *types.Course) []string { return c.Organizations })
	}
	return nil
}

// countAvailability counts courses having at least one run in each of the
// four fixed buckets, considering only runs that satisfy an active
// language filter. Unlike the term dimensions the display order is the
// declaration order, not the count order.
func countAvailability(now time.Time, courses []*types.Course, languages []string) []types.FacetCount {
	counts := map[string]int{}
	for _, course := range courses {
		seen := map[string]struct{}{}
		for r := range course.Runs {
			run := &course.Runs[r]
			if len(languages) > 0 && !run.HasAnyLanguage(languages) {
				continue
			}
			state := availability.Classify(now, run)
			for _, value := range types.AvailabilityValues {
				if state.Satisfies(value) {
					seen[value] = struct{}{}
				}
			}
		}
		for value := range seen {
			counts[value]++
		}
	}
	values := make([]types.FacetCount, 0, len(types.AvailabilityValues))
	for _, value := range types.AvailabilityValues {
		if counts[value] > 0 {
			values = append(values, types.FacetCount{Name: value, Count: counts[value]})
		}
	}
	return values
}

// countLanguages counts courses per language over the runs that satisfy an
// active availability filter.
func countLanguages(now time.Time, courses []*types.Course, availabilities []string) []types.FacetCount {
	counts := map[string]int{}
	for _, course := range courses {
		seen := map[string]struct{}{}
		for r := range course.Runs {
			run := &course.Runs[r]
			if !runSatisfies(now, run, availabilities, nil) {
				continue
			}
			for _, lang := range run.Languages {
				seen[lang] = struct{}{}
			}
		}
		for lang := range seen {
			counts[lang]++
		}
	}
	return sortedCounts(counts)
}

func countAttached(courses []*types.Course, attached func(*types.Course) []string) []types.FacetCount {
	counts := map[string]int{}
	for _, course := range courses {
		for _, value := range attached(course) {
			counts[value]++
		}
	}
	return sortedCounts(counts)
}

// sortedCounts orders term facet values by descending count, then by
// ascending value for determinism.
func sortedCounts(counts map[string]int) []types.FacetCount {
	values := make([]types.FacetCount, 0, len(counts))
	for name, count := range counts {
		if count > 0 {
			values = append(values, types.FacetCount{Name: name, Count: count})
		}
	}
	sort.Slice(values, func(a, b int) bool {
		if values[a].Count != values[b].Count {
			return values[a].Count > values[b].Count
		}
		return values[a].Name < values[b].Name
	})
	return values
}
