package listing

import "time"

// Kind selects the comparison used when sorting by a field.
type Kind int

const (
	Text Kind = iota
	Numeric
	Time
)

// Field describes one sortable/searchable attribute of T. Exactly one of
// the accessors matching Kind must be set.
type Field[T any] struct {
	Name   string
	Kind   Kind
	String func(T) string
	Number func(T) float64
	Time   func(T) time.Time
}

// Schema declares how a resource participates in the list pipeline:
// which fields can be sorted on, which text fields the search term is
// matched against, and how to read the active flag.
type Schema[T any] struct {
	Fields       []Field[T]
	SearchFields []string
	Active       func(T) bool
	DefaultSort  string // empty keeps source order
}

func (s Schema[T]) field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// SortFields returns the names accepted for the sort query parameter.
func (s Schema[T]) SortFields() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}
