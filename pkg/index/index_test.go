package index

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/zhafed/richie/pkg/types"
)

var now = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func days(offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

func makeRun(start, end, enrollmentStart, enrollmentEnd int, languages ...string) types.CourseRun {
	return types.CourseRun{
		Start:           days(start),
		End:             days(end),
		EnrollmentStart: days(enrollmentStart),
		EnrollmentEnd:   days(enrollmentEnd),
		Languages:       languages,
	}
}

// The reference course runs, offsets in days from now.
var fixtureRuns = map[string]types.CourseRun{
	"A": makeRun(-5, 120, -15, 5, "fr"),
	"B": makeRun(-15, 105, -30, 15, "en"),
	"C": makeRun(15, 150, -30, 30, "en"),
	"D": makeRun(45, 120, 30, 60, "fr", "de"),
	"E": makeRun(-90, 15, -120, -30, "en"),
	"F": makeRun(-75, 30, -100, -45, "fr"),
	"G": makeRun(-80, -15, -100, -60, "en"),
	"H": makeRun(-120, -30, -150, -90, "en", "de"),
}

type courseAttrs struct {
	isNew         bool
	categories    []string
	organizations []string
}

// The four reference courses; each gets two runs from a suite.
var fixtureCourses = []courseAttrs{
	{true, []string{"1", "3", "5"}, []string{"11", "13", "15"}},
	{true, []string{"2", "3"}, []string{"12", "13"}},
	{false, []string{"1", "4", "5"}, []string{"11", "14", "15"}},
	{false, []string{"2", "4"}, []string{"12", "14"}},
}

func makeCourse(id string, attrs courseAttrs, runNames ...string) *types.Course {
	course := &types.Course{
		Id:            id,
		Title:         "title",
		AbsoluteUrl:   "url",
		CoverImage:    "image",
		IsNew:         attrs.isNew,
		Categories:    attrs.categories,
		Organizations: attrs.organizations,
	}
	for _, name := range runNames {
		course.Runs = append(course.Runs, fixtureRuns[name])
	}
	course.SortRunsByEndDesc()
	return course
}

// buildIndex distributes a suite of eight runs over the four reference
// courses, two runs each, and indexes them at the pinned instant.
func buildIndex(t *testing.T, suite []string) *CourseIndex {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(now)
	idx := NewCourseIndex(mock)

	courses := make([]*types.Course, len(fixtureCourses))
	for n, attrs := range fixtureCourses {
		courses[n] = makeCourse(string(rune('0'+n)), attrs, suite[2*n], suite[2*n+1])
	}
	idx.UpsertCourses(courses)
	return idx
}

var suiteDefault = []string{"A", "D", "G", "F", "B", "H", "C", "E"}
var suiteGrouped = []string{"A", "B", "G", "C", "D", "H", "F", "E"}

func search(t *testing.T, idx *CourseIndex, filters types.Filters, sortBy string) *Result {
	t.Helper()
	result, err := idx.Search(&types.SearchRequest{
		Limit:   types.DefaultPageSize,
		Sort:    sortBy,
		Filters: filters,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	return result
}

func resultIds(result *Result) []string {
	ids := make([]string, len(result.Courses))
	for n, course := range result.Courses {
		ids[n] = course.Id
	}
	return ids
}

func expectCounts(t *testing.T, got []types.FacetCount, want []types.FacetCount) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("expected facet values %v but got %v", want, got)
	}
}

func TestSearchMatchAll(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{}, "")

	if result.TotalCount != 4 {
		t.Errorf("expected 4 matches but got %d", result.TotalCount)
	}
	if got, want := resultIds(result), []string{"0", "2", "3", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}

	expectCounts(t, result.Facets[types.DimensionNew], []types.FacetCount{{Name: "new", Count: 2}})
	expectCounts(t, result.Facets[types.DimensionAvailability], []types.FacetCount{
		{Name: "open", Count: 3},
		{Name: "coming_soon", Count: 2},
		{Name: "ongoing", Count: 4},
		{Name: "archived", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionLanguages], []types.FacetCount{
		{Name: "en", Count: 3},
		{Name: "de", Count: 2},
		{Name: "fr", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionCategories], []types.FacetCount{
		{Name: "1", Count: 2}, {Name: "2", Count: 2}, {Name: "3", Count: 2},
		{Name: "4", Count: 2}, {Name: "5", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionOrganizations], []types.FacetCount{
		{Name: "11", Count: 2}, {Name: "12", Count: 2}, {Name: "13", Count: 2},
		{Name: "14", Count: 2}, {Name: "15", Count: 2},
	})
}

func TestSearchMatchAllGroupedRuns(t *testing.T) {
	// A/B and E/F under the same course halve the ongoing count; D/H under
	// the same course halves the german count.
	idx := buildIndex(t, suiteGrouped)
	result := search(t, idx, types.Filters{}, "")

	expectCounts(t, result.Facets[types.DimensionLanguages], []types.FacetCount{
		{Name: "en", Count: 4},
		{Name: "fr", Count: 3},
		{Name: "de", Count: 1},
	})
	expectCounts(t, result.Facets[types.DimensionAvailability], []types.FacetCount{
		{Name: "open", Count: 2},
		{Name: "coming_soon", Count: 2},
		{Name: "ongoing", Count: 2},
		{Name: "archived", Count: 2},
	})
}

func TestSearchFilterOpen(t *testing.T) {
	idx := buildIndex(t, suiteGrouped)
	result := search(t, idx, types.Filters{types.DimensionAvailability: {"open"}}, "")

	// Courses holding A/B and C, by soonest enrollment deadline.
	if got, want := resultIds(result), []string{"0", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected open order %v but got %v", want, got)
	}

	// The availability facet ignores its own filter; languages narrows to
	// the enrollable runs.
	expectCounts(t, result.Facets[types.DimensionAvailability], []types.FacetCount{
		{Name: "open", Count: 2},
		{Name: "coming_soon", Count: 2},
		{Name: "ongoing", Count: 2},
		{Name: "archived", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionLanguages], []types.FacetCount{
		{Name: "en", Count: 2},
		{Name: "fr", Count: 1},
	})
	expectCounts(t, result.Facets[types.DimensionCategories], []types.FacetCount{
		{Name: "3", Count: 2},
		{Name: "1", Count: 1},
		{Name: "2", Count: 1},
		{Name: "5", Count: 1},
	})
}

func TestSearchFilterOngoing(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionAvailability: {"ongoing"}}, "")
	if got, want := resultIds(result), []string{"0", "2", "3", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected ongoing order %v but got %v", want, got)
	}
}

func TestSearchFilterComingSoon(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionAvailability: {"coming_soon"}}, "")
	if got, want := resultIds(result), []string{"3", "0"}; !slices.Equal(got, want) {
		t.Errorf("expected coming_soon order %v but got %v", want, got)
	}
}

func TestSearchFilterArchived(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionAvailability: {"archived"}}, "")
	if got, want := resultIds(result), []string{"1", "2"}; !slices.Equal(got, want) {
		t.Errorf("expected archived order %v but got %v", want, got)
	}
}

func TestSearchFilterLanguage(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionLanguages: {"fr"}}, "")
	if got, want := resultIds(result), []string{"0", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}
}

func TestSearchFilterMultipleLanguages(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionLanguages: {"fr", "de"}}, "")
	if got, want := resultIds(result), []string{"0", "1", "2"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}
}

func TestSearchFilterLanguageFacets(t *testing.T) {
	idx := buildIndex(t, suiteGrouped)
	result := search(t, idx, types.Filters{types.DimensionLanguages: {"fr"}}, "")

	// Sticky: the language facet ignores its own filter.
	expectCounts(t, result.Facets[types.DimensionLanguages], []types.FacetCount{
		{Name: "en", Count: 4},
		{Name: "fr", Count: 3},
		{Name: "de", Count: 1},
	})
	// No archived run is in french, so the bucket disappears entirely.
	expectCounts(t, result.Facets[types.DimensionAvailability], []types.FacetCount{
		{Name: "open", Count: 1},
		{Name: "coming_soon", Count: 1},
		{Name: "ongoing", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionCategories], []types.FacetCount{
		{Name: "1", Count: 2},
		{Name: "4", Count: 2},
		{Name: "5", Count: 2},
		{Name: "2", Count: 1},
		{Name: "3", Count: 1},
	})
}

func TestSearchFilterComposed(t *testing.T) {
	idx := buildIndex(t, suiteGrouped)
	result := search(t, idx, types.Filters{
		types.DimensionAvailability: {"ongoing"},
		types.DimensionLanguages:    {"en"},
	}, "")

	// Only B and E are both ongoing and english; one run has to satisfy
	// both dimensions at once.
	if got, want := resultIds(result), []string{"0", "3"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}
	expectCounts(t, result.Facets[types.DimensionLanguages], []types.FacetCount{
		{Name: "en", Count: 2},
		{Name: "fr", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionAvailability], []types.FacetCount{
		{Name: "open", Count: 2},
		{Name: "coming_soon", Count: 1},
		{Name: "ongoing", Count: 2},
		{Name: "archived", Count: 2},
	})
	expectCounts(t, result.Facets[types.DimensionCategories], []types.FacetCount{
		{Name: "1", Count: 1}, {Name: "2", Count: 1}, {Name: "3", Count: 1},
		{Name: "4", Count: 1}, {Name: "5", Count: 1},
	})
}

func TestSearchFilterNew(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionNew: {"new"}}, "")
	if got, want := resultIds(result), []string{"0", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}
}

func TestSearchFilterOrganization(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionOrganizations: {"12"}}, "")
	if got, want := resultIds(result), []string{"3", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}
}

func TestSearchFilterMultipleCategories(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result := search(t, idx, types.Filters{types.DimensionCategories: {"1", "4"}}, "")
	if got, want := resultIds(result), []string{"0", "2", "3"}; !slices.Equal(got, want) {
		t.Errorf("expected order %v but got %v", want, got)
	}
}

func TestStickyFacetIdempotence(t *testing.T) {
	// The counts a dimension reports must not change when a filter on that
	// same dimension is added.
	idx := buildIndex(t, suiteGrouped)

	base := types.Filters{types.DimensionLanguages: {"en"}}
	withAvailability := types.Filters{
		types.DimensionLanguages:    {"en"},
		types.DimensionAvailability: {"open"},
	}

	before := search(t, idx, base, "").Facets
	after := search(t, idx, withAvailability, "").Facets

	expectCounts(t, after[types.DimensionAvailability], before[types.DimensionAvailability])

	withLanguage := types.Filters{types.DimensionLanguages: {"fr"}}
	expectCounts(t,
		search(t, idx, withLanguage, "").Facets[types.DimensionLanguages],
		search(t, idx, types.Filters{}, "").Facets[types.DimensionLanguages])
}

func TestUpsertRestoresRunOrder(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(now)
	idx := NewCourseIndex(mock)

	course := makeCourse("0", fixtureCourses[0], "A", "D", "G", "C")
	// Break the invariant on purpose.
	slices.Reverse(course.Runs)
	idx.UpsertCourses([]*types.Course{course})

	stored, ok := idx.GetCourse("0")
	if !ok {
		t.Fatal("expected course to be indexed")
	}
	if !stored.RunsSortedByEndDesc() {
		t.Error("expected upsert to restore decreasing end date order")
	}
}

func TestSearchPagination(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	result, err := idx.Search(&types.SearchRequest{Limit: 2, Offset: 2, Filters: types.Filters{}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.TotalCount != 4 {
		t.Errorf("expected total 4 but got %d", result.TotalCount)
	}
	if got, want := resultIds(result), []string{"3", "1"}; !slices.Equal(got, want) {
		t.Errorf("expected page %v but got %v", want, got)
	}
}

func TestSearchRejectsUnknownValues(t *testing.T) {
	idx := buildIndex(t, suiteDefault)

	_, err := idx.Search(&types.SearchRequest{
		Limit:   10,
		Filters: types.Filters{types.DimensionAvailability: {"whenever"}},
	})
	var confErr *types.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected a configuration error but got %v", err)
	}

	_, err = idx.Search(&types.SearchRequest{Limit: 10, Sort: "bogus", Filters: types.Filters{}})
	if !errors.As(err, &confErr) {
		t.Fatalf("expected a configuration error for unknown sort but got %v", err)
	}
}

func TestSearchCourseWithoutRuns(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	idx.UpsertCourses([]*types.Course{{Id: "9", Title: "empty"}})

	// No rank under the default comparator: sinks to the bottom.
	result := search(t, idx, types.Filters{}, "")
	ids := resultIds(result)
	if len(ids) != 5 || ids[4] != "9" {
		t.Errorf("expected runless course last but got %v", ids)
	}

	// A bucket-restricted sort drops it entirely.
	result = search(t, idx, types.Filters{}, "archived")
	if slices.Contains(resultIds(result), "9") {
		t.Error("expected runless course excluded from bucket sort")
	}
}

func TestDeleteCourse(t *testing.T) {
	idx := buildIndex(t, suiteDefault)
	idx.DeleteCourse("2")
	if idx.Len() != 3 {
		t.Errorf("expected 3 courses but got %d", idx.Len())
	}
	result := search(t, idx, types.Filters{}, "")
	if slices.Contains(resultIds(result), "2") {
		t.Error("expected deleted course to drop out of results")
	}
}

type recordingHandler struct {
	upserted []string
	deleted  []string
}

func (h *recordingHandler) CoursesUpserted(courses []*types.Course) {
	for _, course := range courses {
		h.upserted = append(h.upserted, course.Id)
	}
}

func (h *recordingHandler) CourseDeleted(id string) {
	h.deleted = append(h.deleted, id)
}

func TestChangeHandlerNotified(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(now)
	idx := NewCourseIndex(mock)
	handler := &recordingHandler{}
	idx.ChangeHandler = handler

	idx.UpsertCourses([]*types.Course{makeCourse("0", fixtureCourses[0], "A")})
	idx.DeleteCourse("0")
	idx.DeleteCourse("0") // second delete is a no-op

	if !slices.Equal(handler.upserted, []string{"0"}) {
		t.Errorf("expected upsert notification but got %v", handler.upserted)
	}
	if !slices.Equal(handler.deleted, []string{"0"}) {
		t.Errorf("expected one delete notification but got %v", handler.deleted)
	}
}
