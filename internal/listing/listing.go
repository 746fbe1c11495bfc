// Package listing implements the filter → sort → paginate pipeline that every
// management screen shares. Apply is a pure function over a snapshot slice:
// calling it twice with the same inputs yields the same ordered page, and it
// never touches the store.
package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const DefaultPageSize = 10

type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive
	case "inactive":
		return StatusInactive
	}
	return StatusAll
}

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

type Criteria struct {
	Search    string
	Status    Status
	SortField string
	SortOrder SortOrder
}

type Page struct {
	Number int
	Size   int
}

// Window describes the slice of the result set a response carries.
type Window struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Catalog text is Vietnamese; the collator also behaves sensibly for ASCII.
var (
	collator = collate.New(language.Vietnamese, collate.IgnoreCase)
	folder   = cases.Fold()
)

// Apply filters items by the criteria, sorts them by the requested schema
// field (stable, so ties keep source order), and slices out the requested
// page. The page number is clamped to [1, max(totalPages, 1)].
func Apply[T any](items []T, schema Schema[T], c Criteria, p Page) ([]T, Window) {
	out := filtered(items, schema, c)

	sortField := c.SortField
	if sortField == "" {
		sortField = schema.DefaultSort
	}
	if f, ok := schema.field(sortField); ok {
		sortBy(out, f, c.SortOrder)
	}

	total := len(out)
	size := p.Size
	if size < 1 {
		size = DefaultPageSize
	}
	totalPages := (total + size - 1) / size
	page := clampInt(p.Number, 1, maxInt(totalPages, 1))

	lo := (page - 1) * size
	if lo > total {
		lo = total
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	return out[lo:hi], Window{Page: page, Size: size, TotalItems: total, TotalPages: totalPages}
}

func filtered[T any](items []T, schema Schema[T], c Criteria) []T {
	search := folder.String(strings.TrimSpace(c.Search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Status != "" && c.Status != StatusAll && schema.Active != nil {
			active := schema.Active(it)
			if c.Status == StatusActive && !active {
				continue
			}
			if c.Status == StatusInactive && active {
				continue
			}
		}
		if search != "" && !matches(it, schema, search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matches[T any](it T, schema Schema[T], foldedSearch string) bool {
	for _, name := range schema.SearchFields {
		f, ok := schema.field(name)
		if !ok || f.String == nil {
			continue
		}
		if strings.Contains(folder.String(f.String(it)), foldedSearch) {
			return true
		}
	}
	return false
}

func sortBy[T any](items []T, f Field[T], order SortOrder) {
	cmp := func(a, b T) int {
		switch f.Kind {
		case Numeric:
			x, y := f.Number(a), f.Number(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		case Time:
			x, y := f.Time(a), f.Time(b)
			switch {
			case x.Before(y):
				return -1
			case x.After(y):
				return 1
			}
			return 0
		default:
			return collator.CompareString(f.String(a), f.String(b))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if order == Desc {
			return c > 0
		}
		return c < 0
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
