// Package availability derives the temporal state of course runs from an
// injected instant and builds the rank keys used to order courses. Nothing
// here reads the wall clock or keeps state: everything is recomputed per
// query from the stored timestamps.
package availability

import (
	"time"

	"github.com/zhafed/richie/pkg/types"
)

// TimingState partitions time relative to a run's execution window.
type TimingState uint8

const (
	ComingSoon TimingState = iota
	Ongoing
	Archived
)

func (s TimingState) String() string {
	switch s {
	case ComingSoon:
		return types.AvailabilityComingSoon
	case Ongoing:
		return types.AvailabilityOngoing
	default:
		return types.AvailabilityArchived
	}
}

// State is the full classification of one run at one instant. The
// enrollment flag is orthogonal to the timing state: enrollment can be open
// before a run starts and closed while it is still going.
type State struct {
	Timing         TimingState
	EnrollmentOpen bool
}

// Classify computes the classification of run at now. Every run gets
// exactly one timing state; interval bounds are inclusive on both ends.
func Classify(now time.Time, run *types.CourseRun) State {
	state := State{
		EnrollmentOpen: !now.Before(run.EnrollmentStart) && !now.After(run.EnrollmentEnd),
	}
	switch {
	case now.Before(run.Start):
		state.Timing = ComingSoon
	case now.After(run.End):
		state.Timing = Archived
	default:
		state.Timing = Ongoing
	}
	return state
}

// Satisfies reports whether the classified run matches one availability
// filter value. "open" only looks at the enrollment window; the other three
// map straight onto the timing state.
func (s State) Satisfies(value string) bool {
	if value == types.AvailabilityOpen {
		return s.EnrollmentOpen
	}
	return s.Timing.String() == value
}
