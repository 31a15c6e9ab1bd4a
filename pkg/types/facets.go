package types

// FacetCount is one candidate value of a dimension together with the number
// of courses that would match it. Human-readable labels are attached later
// by the serving layer.
type FacetCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FacetResult holds the per-dimension counts of one query, already ordered
// for display (availability in declaration order, term dimensions by
// descending count then ascending value).
type FacetResult map[Dimension][]FacetCount
