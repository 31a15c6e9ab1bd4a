package types

import "fmt"

// ConfigurationError flags a malformed filter dimension or value. The
// request is rejected outright, nothing is partially executed.
type ConfigurationError struct {
	Dimension string
	Value     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %q", e.Value, e.Dimension)
}

// UpstreamUnavailable wraps a failed or timed-out call to a collaborator
// (broker, cache, snapshot storage). It is surfaced to the caller; retrying
// is the caller's decision.
type UpstreamUnavailable struct {
	Op  string
	Err error
}

func (e *UpstreamUnavailable) Error() string {
	return fmt.Sprintf("upstream unavailable during %s: %v", e.Op, e.Err)
}

func (e *UpstreamUnavailable) Unwrap() error {
	return e.Err
}

// InvariantViolation records course data that breaks an authoring-side
// invariant (unsorted runs, start after end). It is logged, never fatal;
// classification and ranking still produce a deterministic answer.
type InvariantViolation struct {
	CourseId string
	Reason   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("course %s: %s", e.CourseId, e.Reason)
}
