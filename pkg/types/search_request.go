package types

import (
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxOffset       = 10000
)

// SearchRequest is one decoded course query: a filter context, an optional
// availability bucket to sort by and a result window.
type SearchRequest struct {
	Limit   int     `json:"limit" schema:"limit,default:20"`
	Offset  int     `json:"offset" schema:"offset"`
	Sort    string  `json:"sort" schema:"sort"`
	Filters Filters `json:"filters" schema:"-"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func clamp[T int | float64](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func (s *SearchRequest) Sanitize() {
	s.Limit = clamp(s.Limit, 1, MaxPageSize)
	s.Offset = clamp(s.Offset, 0, MaxOffset)
}

// SortBy resolves the availability bucket used for ranking. An explicit sort
// parameter wins; otherwise a single-valued availability filter implies its
// own bucket. Empty means the default four-bucket comparator.
func (s *SearchRequest) SortBy() string {
	if s.Sort != "" {
		return s.Sort
	}
	if values := s.Filters[DimensionAvailability]; len(values) == 1 {
		return values[0]
	}
	return ""
}

func (s *SearchRequest) Validate() error {
	if s.Sort != "" && !validAvailability(s.Sort) {
		return &ConfigurationError{Dimension: "sort", Value: s.Sort}
	}
	return s.Filters.Validate()
}

// QueryFromRequest decodes a search request from the query string, e.g.
// availability=open&languages=fr&languages=de&limit=20&offset=40.
func QueryFromRequest(r *http.Request) (*SearchRequest, error) {
	sr := &SearchRequest{Limit: DefaultPageSize}
	if err := decoder.Decode(sr, r.URL.Query()); err != nil {
		return nil, err
	}
	sr.Filters = filtersFromQuery(r.URL.Query())
	sr.Sanitize()
	if err := sr.Validate(); err != nil {
		return nil, err
	}
	return sr, nil
}

func filtersFromQuery(query url.Values) Filters {
	filters := Filters{}
	for _, dimension := range Dimensions {
		for _, value := range query[string(dimension)] {
			if value == "" {
				continue
			}
			filters[dimension] = append(filters[dimension], value)
		}
	}
	return filters
}
