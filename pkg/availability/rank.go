package availability

import (
	"time"

	"github.com/zhafed/richie/pkg/types"
)

// Rank key priorities. Lower wins.
//
//	1: ongoing and open for enrollment, soonest enrollment deadline first
//	2: not started yet, soonest start first
//	3: ongoing but closed, most recently closed enrollment first
//	4: archived, most recently ended first
const (
	PriorityOngoingOpen = 1 + iota
	PriorityComingSoon
	PriorityOngoingClosed
	PriorityArchived
)

// RankKey is a composite sort key for a single run. Tiebreak holds the
// bucket's raw field value in unix milliseconds, negated for the buckets
// that sort descending, so keys always compare with one ascending
// comparison.
type RankKey struct {
	Priority int
	Tiebreak int64
}

func (k RankKey) Less(other RankKey) bool {
	if k.Priority != other.Priority {
		return k.Priority < other.Priority
	}
	return k.Tiebreak < other.Tiebreak
}

func (k RankKey) Compare(other RankKey) int {
	if k.Priority != other.Priority {
		return k.Priority - other.Priority
	}
	switch {
	case k.Tiebreak < other.Tiebreak:
		return -1
	case k.Tiebreak > other.Tiebreak:
		return 1
	}
	return 0
}

// KeyFor builds the default rank key of run at now.
func KeyFor(now time.Time, run *types.CourseRun) RankKey {
	state := Classify(now, run)
	switch {
	case state.Timing == Ongoing && state.EnrollmentOpen:
		return RankKey{PriorityOngoingOpen, run.EnrollmentEnd.UnixMilli()}
	case state.Timing == ComingSoon:
		return RankKey{PriorityComingSoon, run.Start.UnixMilli()}
	case state.Timing == Ongoing:
		return RankKey{PriorityOngoingClosed, -run.EnrollmentEnd.UnixMilli()}
	default:
		return RankKey{PriorityArchived, -run.End.UnixMilli()}
	}
}

// OpenKey ranks a run under the "open" sort bucket: any run whose
// enrollment window contains now qualifies, ordered by ascending enrollment
// deadline and ignoring the timing state. This is deliberately its own
// comparator rather than a subset of the default priority table.
func OpenKey(now time.Time, run *types.CourseRun) (RankKey, bool) {
	if !Classify(now, run).EnrollmentOpen {
		return RankKey{}, false
	}
	return RankKey{PriorityOngoingOpen, run.EnrollmentEnd.UnixMilli()}, true
}
