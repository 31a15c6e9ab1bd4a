package types

import (
	"slices"
	"time"
)

// CourseRun is a time-boxed instance of a course with its own execution
// window and enrollment window. All timestamps are required and share the
// same zone (UTC on the wire).
type CourseRun struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	EnrollmentStart time.Time `json:"enrollment_start"`
	EnrollmentEnd   time.Time `json:"enrollment_end"`
	Languages       []string  `json:"languages"`
}

func (r *CourseRun) HasLanguage(lang string) bool {
	return slices.Contains(r.Languages, lang)
}

func (r *CourseRun) HasAnyLanguage(langs []string) bool {
	for _, l := range langs {
		if r.HasLanguage(l) {
			return true
		}
	}
	return false
}

// Course is the read-only snapshot received from the content-authoring
// layer. It is always replaced wholesale, never patched.
//
// Runs must be sorted by decreasing end date. The index re-sorts on upsert
// when the invariant is violated, so everything downstream can rely on it.
type Course struct {
	Id            string      `json:"id"`
	Title         string      `json:"title"`
	AbsoluteUrl   string      `json:"absolute_url"`
	CoverImage    string      `json:"cover_image"`
	IsNew         bool        `json:"is_new"`
	Categories    []string    `json:"categories"`
	Organizations []string    `json:"organizations"`
	Runs          []CourseRun `json:"course_runs"`
}

func (c *Course) HasCategory(id string) bool {
	return slices.Contains(c.Categories, id)
}

func (c *Course) HasOrganization(id string) bool {
	return slices.Contains(c.Organizations, id)
}

// RunsSortedByEndDesc reports whether the run ordering invariant holds.
func (c *Course) RunsSortedByEndDesc() bool {
	for i := 1; i < len(c.Runs); i++ {
		if c.Runs[i].End.After(c.Runs[i-1].End) {
			return false
		}
	}
	return true
}

// SortRunsByEndDesc restores the run ordering invariant in place.
func (c *Course) SortRunsByEndDesc() {
	slices.SortStableFunc(c.Runs, func(a, b CourseRun) int {
		return b.End.Compare(a.End)
	})
}
