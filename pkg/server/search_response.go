package server

import (
	"github.com/zhafed/richie/pkg/i18n"
	"github.com/zhafed/richie/pkg/types"
)

type Meta struct {
	Count      int `json:"count"`
	Offset     int `json:"offset"`
	TotalCount int `json:"total_count"`
}

type FacetValue struct {
	Name      string `json:"name"`
	HumanName string `json:"human_name"`
	Count     int    `json:"count"`
}

// CourseResult is the public projection of an indexed course. Run data and
// editorial flags stay internal; clients get the card fields only.
type CourseResult struct {
	Id            string   `json:"id"`
	Title         string   `json:"title"`
	AbsoluteUrl   string   `json:"absolute_url"`
	CoverImage    string   `json:"cover_image"`
	Categories    []string `json:"categories"`
	Organizations []string `json:"organizations"`
}

func makeObjects(courses []*types.Course) []CourseResult {
	objects := make([]CourseResult, len(courses))
	for i, course := range courses {
		objects[i] = CourseResult{
			Id:            course.Id,
			Title:         course.Title,
			AbsoluteUrl:   course.AbsoluteUrl,
			CoverImage:    course.CoverImage,
			Categories:    course.Categories,
			Organizations: course.Organizations,
		}
	}
	return objects
}

type FilterDefinition struct {
	Name        string       `json:"name"`
	HumanName   string       `json:"human_name"`
	Position    int          `json:"position"`
	IsDrilldown bool         `json:"is_drilldown"`
	Values      []FacetValue `json:"values"`
}

type SearchResponse struct {
	Meta    Meta                        `json:"meta"`
	Objects []CourseResult              `json:"objects"`
	Filters map[string]FilterDefinition `json:"filters"`
}

func makeFilters(facets types.FacetResult, lookup i18n.Lookup) map[string]FilterDefinition {
	filters := make(map[string]FilterDefinition, len(types.Dimensions))
	for position, dimension := range types.Dimensions {
		counts := facets[dimension]
		values := make([]FacetValue, len(counts))
		for i, count := range counts {
			values[i] = FacetValue{
				Name:      count.Name,
				HumanName: lookup.ValueName(dimension, count.Name),
				Count:     count.Count,
			}
		}
		filters[string(dimension)] = FilterDefinition{
			Name:        string(dimension),
			HumanName:   lookup.DimensionName(dimension),
			Position:    position,
			IsDrilldown: false,
			Values:      values,
		}
	}
	return filters
}
