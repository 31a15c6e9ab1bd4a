package index

import (
	"sort"

	"github.com/zhafed/richie/pkg/availability"
	"github.com/zhafed/richie/pkg/types"
)

// Result is one answered query: the requested page of matching courses in
// rank order, the total match count and the facet counts.
type Result struct {
	Courses    []*types.Course
	TotalCount int
	Facets     types.FacetResult
}

type rankedCourse struct {
	course *types.Course
	key    availability.RankKey
	ranked bool
}

// Search runs the whole query against an immutable view of the catalog:
// match, rank by representative run, facet. The instant used for
// classification is taken from the injected clock once per query.
func (i *CourseIndex) Search(req *types.SearchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := i.clock.Now()
	sortBy := req.SortBy()

	i.mu.RLock()
	defer i.mu.RUnlock()

	matching := i.matchLocked(now, req.Filters)
	languages := req.Filters[types.DimensionLanguages]

	ranked := make([]rankedCourse, 0, len(matching))
	for _, course := range matching {
		// The representative run is picked under the full filter context:
		// an active language filter narrows the candidate runs before the
		// bucket restriction applies.
		runs := course.Runs
		if len(languages) > 0 {
			runs = runsWithAnyLanguage(runs, languages)
		}
		key, ok := availability.SelectN(now, runs, sortBy, i.MaxRunsPerCourse)
		if !ok && sortBy != "" {
			// No run in the requested bucket: the course has no rank there.
			continue
		}
		ranked = append(ranked, rankedCourse{course: course, key: key, ranked: ok})
	}

	sort.Slice(ranked, func(a, b int) bool {
		ra, rb := ranked[a], ranked[b]
		// Courses without any run sort after everything that has a rank.
		if ra.ranked != rb.ranked {
			return ra.ranked
		}
		if c := ra.key.Compare(rb.key); c != 0 {
			return c < 0
		}
		return ra.course.Id < rb.course.Id
	})

	total := len(ranked)
	start := min(req.Offset, total)
	end := min(start+req.Limit, total)
	page := make([]*types.Course, end-start)
	for n, rc := range ranked[start:end] {
		page[n] = rc.course
	}

	return &Result{
		Courses:    page,
		TotalCount: total,
		Facets:     i.facetsLocked(now, req.Filters),
	}, nil
}

// runsWithAnyLanguage preserves the decreasing-end order of its input.
func runsWithAnyLanguage(runs []types.CourseRun, languages []string) []types.CourseRun {
	filtered := make([]types.CourseRun, 0, len(runs))
	for r := range runs {
		if runs[r].HasAnyLanguage(languages) {
			filtered = append(filtered, runs[r])
		}
	}
	return filtered
}
