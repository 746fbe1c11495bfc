package listing

import (
	"net/url"
	"strconv"
	"strings"
)

const MaxPageSize = 100

// FromQuery builds Criteria and Page from list query parameters
// (search, sort, order, page, size). The status scope comes from the
// route, not the query, so callers set Criteria.Status themselves.
// Unknown sort fields are dropped rather than rejected.
func FromQuery[T any](q url.Values, schema Schema[T]) (Criteria, Page) {
	c := Criteria{
		Search:    strings.TrimSpace(q.Get("search")),
		Status:    StatusAll,
		SortOrder: Asc,
	}
	if strings.EqualFold(strings.TrimSpace(q.Get("order")), "desc") {
		c.SortOrder = Desc
	}
	if sortField := strings.TrimSpace(q.Get("sort")); sortField != "" {
		if _, ok := schema.field(sortField); ok {
			c.SortField = sortField
		}
	}

	p := Page{Number: 1, Size: DefaultPageSize}
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil && v >= 1 {
		p.Number = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("size"))); err == nil && v >= 1 && v <= MaxPageSize {
		p.Size = v
	}
	return c, p
}
