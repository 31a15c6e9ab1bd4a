// Package index holds the in-memory course catalog and answers filtered,
// ranked and faceted queries over it. Availability is never stored on the
// documents: it is recomputed from the run timestamps and the injected
// clock on every query.
package index

import (
	"log"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/zhafed/richie/pkg/availability"
	"github.com/zhafed/richie/pkg/types"
)

// ChangeHandler is notified after the index has applied a mutation, e.g. to
// fan the change out to replicas.
type ChangeHandler interface {
	CoursesUpserted(courses []*types.Course)
	CourseDeleted(id string)
}

type CourseIndex struct {
	mu            sync.RWMutex
	clock         clock.Clock
	courses       map[string]*types.Course
	ChangeHandler ChangeHandler

	// MaxRunsPerCourse caps ranking work when upstream data misbehaves.
	MaxRunsPerCourse int
}

func NewCourseIndex(clk clock.Clock) *CourseIndex {
	if clk == nil {
		clk = clock.New()
	}
	return &CourseIndex{
		clock:            clk,
		courses:          make(map[string]*types.Course),
		MaxRunsPerCourse: availability.DefaultMaxRunsScanned,
	}
}

// UpsertCourses replaces course documents wholesale. Runs arriving unsorted
// break an authoring invariant; the index logs it and restores the order so
// ranking stays deterministic.
func (i *CourseIndex) UpsertCourses(courses []*types.Course) {
	i.mu.Lock()
	for _, course := range courses {
		if course == nil || course.Id == "" {
			continue
		}
		if !course.RunsSortedByEndDesc() {
			violation := types.InvariantViolation{CourseId: course.Id, Reason: "runs not sorted by decreasing end date"}
			log.Printf("upsert: %v, re-sorting", &violation)
			course.SortRunsByEndDesc()
		}
		for r := range course.Runs {
			run := &course.Runs[r]
			if run.Start.After(run.End) || run.EnrollmentStart.After(run.EnrollmentEnd) {
				violation := types.InvariantViolation{CourseId: course.Id, Reason: "run has an inverted window"}
				log.Printf("upsert: %v", &violation)
			}
		}
		i.courses[course.Id] = course
	}
	i.mu.Unlock()

	if i.ChangeHandler != nil {
		i.ChangeHandler.CoursesUpserted(courses)
	}
}

func (i *CourseIndex) DeleteCourse(id string) {
	i.mu.Lock()
	_, existed := i.courses[id]
	delete(i.courses, id)
	i.mu.Unlock()

	if existed && i.ChangeHandler != nil {
		i.ChangeHandler.CourseDeleted(id)
	}
}

func (i *CourseIndex) GetCourse(id string) (*types.Course, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	course, ok := i.courses[id]
	return course, ok
}

func (i *CourseIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.courses)
}

// Snapshot copies the current course set, for persistence.
func (i *CourseIndex) Snapshot() []*types.Course {
	i.mu.RLock()
	defer i.mu.RUnlock()
	courses := make([]*types.Course, 0, len(i.courses))
	for _, course := range i.courses {
		courses = append(courses, course)
	}
	return courses
}
