package availability

import (
	"time"

	"github.com/zhafed/richie/pkg/types"
)

// DefaultMaxRunsScanned bounds the work per course when upstream data
// violates the run ordering invariant.
const DefaultMaxRunsScanned = 512

// Select reduces a course's runs to the rank key of its representative run
// under the given sort bucket. sortBy is "" for the default four-bucket
// comparator, or one of the availability values to restrict candidates to
// that bucket. The second return is false when no run qualifies, in which
// case the course drops out of bucket-restricted results.
func Select(now time.Time, runs []types.CourseRun, sortBy string) (RankKey, bool) {
	return SelectN(now, runs, sortBy, DefaultMaxRunsScanned)
}

// SelectN is Select with an explicit cap on the number of runs inspected.
func SelectN(now time.Time, runs []types.CourseRun, sortBy string, maxRuns int) (RankKey, bool) {
	if len(runs) > maxRuns {
		runs = runs[:maxRuns]
	}
	// The decreasing-end bound below is only valid when the storage
	// invariant actually holds; when upstream data arrives unsorted we scan
	// fully so the answer stays independent of storage order.
	ordered := sortedByEndDesc(runs)

	var best RankKey
	found := false
	for i := range runs {
		run := &runs[i]
		if key, ok := candidateKey(now, run, sortBy); ok && (!found || key.Less(best)) {
			best = key
			found = true
		}

		// Runs are stored by decreasing end date, so once a run is archived
		// every remaining run is archived too with an earlier end. The first
		// archived run is already the best remaining candidate. The "open"
		// bucket only looks at enrollment windows and cannot use this bound.
		if ordered && sortBy != types.AvailabilityOpen && now.After(run.End) {
			break
		}
	}
	return best, found
}

func sortedByEndDesc(runs []types.CourseRun) bool {
	for i := 1; i < len(runs); i++ {
		if runs[i].End.After(runs[i-1].End) {
			return false
		}
	}
	return true
}

func candidateKey(now time.Time, run *types.CourseRun, sortBy string) (RankKey, bool) {
	switch sortBy {
	case "":
		return KeyFor(now, run), true
	case types.AvailabilityOpen:
		return OpenKey(now, run)
	default:
		if Classify(now, run).Timing.String() != sortBy {
			return RankKey{}, false
		}
		return KeyFor(now, run), true
	}
}
