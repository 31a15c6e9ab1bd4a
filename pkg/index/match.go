package index

import (
	"time"

	"github.com/zhafed/richie/pkg/availability"
	"github.com/zhafed/richie/pkg/types"
)

// runSatisfies applies the run-level part of a filter context to a single
// run. Availability and languages are properties of individual runs, so
// when both are active the same run has to satisfy both, mirroring
// nested-document query semantics.
func runSatisfies(now time.Time, run *types.CourseRun, availabilities, languages []string) bool {
	if len(languages) > 0 && !run.HasAnyLanguage(languages) {
		return false
	}
	if len(availabilities) > 0 {
		state := availability.Classify(now, run)
		satisfied := false
		for _, value := range availabilities {
			if state.Satisfies(value) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

// matchesFilters reports whether a course passes the whole filter context:
// OR within each dimension, AND across dimensions, and at least one run
// satisfying all run-level dimensions together.
func matchesFilters(now time.Time, course *types.Course, filters types.Filters) bool {
	if filters.Has(types.DimensionNew) && !course.IsNew {
		return false
	}
	if !matchesAnyValue(filters[types.DimensionCategories], course.HasCategory) {
		return false
	}
	if !matchesAnyValue(filters[types.DimensionOrganizations], course.HasOrganization) {
		return false
	}

	availabilities := filters[types.DimensionAvailability]
	languages := filters[types.DimensionLanguages]
	if len(availabilities) == 0 && len(languages) == 0 {
		return true
	}
	for r := range course.Runs {
		if runSatisfies(now, &course.Runs[r], availabilities, languages) {
			return true
		}
	}
	return false
}

func matchesAnyValue(values []string, has func(string) bool) bool {
	if len(values) == 0 {
		return true
	}
	for _, value := range values {
		if has(value) {
			return true
		}
	}
	return false
}

// matchLocked collects the courses passing every active filter. Callers
// hold at least a read lock.
func (i *CourseIndex) matchLocked(now time.Time, filters types.Filters) []*types.Course {
	matching := make([]*types.Course, 0, len(i.courses))
	for _, course := range i.courses {
		if matchesFilters(now, course, filters) {
			matching = append(matching, course)
		}
	}
	return matching
}
