package listing_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanvo/bookverse-api/internal/listing"
)

type item struct {
	Title  string
	Price  float64
	Added  time.Time
	Active bool
}

func itemSchema() listing.Schema[item] {
	return listing.Schema[item]{
		Fields: []listing.Field[item]{
			{Name: "title", Kind: listing.Text, String: func(i item) string { return i.Title }},
			{Name: "price", Kind: listing.Numeric, Number: func(i item) float64 { return i.Price }},
			{Name: "added", Kind: listing.Time, Time: func(i item) time.Time { return i.Added }},
		},
		SearchFields: []string{"title"},
		Active:       func(i item) bool { return i.Active },
	}
}

func fixture() []item {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]item, 0, 25)
	titles := []string{
		"Harry Potter and the Philosopher's Stone",
		"Harry Potter and the Chamber of Secrets",
		"The Hobbit", "Dune", "Neuromancer",
	}
	for i := 0; i < 25; i++ {
		out = append(out, item{
			Title:  titles[i%len(titles)],
			Price:  float64(i) + 0.5,
			Added:  base.Add(time.Duration(i) * time.Hour),
			Active: i%3 != 0,
		})
	}
	return out
}

func TestApplyIsDeterministicAndIdempotent(t *testing.T) {
	src := fixture()
	c := listing.Criteria{Search: "harry", Status: listing.StatusActive, SortField: "price", SortOrder: listing.Desc}
	p := listing.Page{Number: 1, Size: 10}

	first, w1 := listing.Apply(src, itemSchema(), c, p)
	second, w2 := listing.Apply(src, itemSchema(), c, p)

	assert.Equal(t, first, second)
	assert.Equal(t, w1, w2)
}

func TestApplySearchActiveScenario(t *testing.T) {
	// 25-item source, "Harry" + active, page size 10 (spec'd scenario).
	src := fixture()
	c := listing.Criteria{Search: "Harry", Status: listing.StatusActive, SortField: "title"}
	page, w := listing.Apply(src, itemSchema(), c, listing.Page{Number: 1, Size: 10})

	matchCount := 0
	for _, it := range src {
		if it.Active && (it.Title == "Harry Potter and the Philosopher's Stone" ||
			it.Title == "Harry Potter and the Chamber of Secrets") {
			matchCount++
		}
	}
	require.Positive(t, matchCount)
	assert.Equal(t, matchCount, w.TotalItems)
	assert.Equal(t, (matchCount+9)/10, w.TotalPages)
	assert.LessOrEqual(t, len(page), 10)
	for _, it := range page {
		assert.True(t, it.Active)
		assert.Contains(t, it.Title, "Harry")
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	src := []item{{Title: "NEUROMANCER", Active: true}, {Title: "Dune", Active: true}}
	page, w := listing.Apply(src, itemSchema(), listing.Criteria{Search: "neuro"}, listing.Page{Number: 1, Size: 10})
	require.Equal(t, 1, w.TotalItems)
	assert.Equal(t, "NEUROMANCER", page[0].Title)
}

func TestPageClamping(t *testing.T) {
	src := fixture()
	schema := itemSchema()

	// Way past the end clamps to the last page, never an empty out-of-range page.
	page, w := listing.Apply(src, schema, listing.Criteria{}, listing.Page{Number: 99, Size: 10})
	assert.Equal(t, 3, w.TotalPages)
	assert.Equal(t, 3, w.Page)
	assert.Len(t, page, 5)

	// Page zero / negative clamps to 1.
	_, w = listing.Apply(src, schema, listing.Criteria{}, listing.Page{Number: -4, Size: 10})
	assert.Equal(t, 1, w.Page)

	// Empty result set still reports page 1.
	_, w = listing.Apply(src, schema, listing.Criteria{Search: "no such title"}, listing.Page{Number: 5, Size: 10})
	assert.Equal(t, 0, w.TotalItems)
	assert.Equal(t, 0, w.TotalPages)
	assert.Equal(t, 1, w.Page)
}

func TestStableSortKeepsSourceOrderOnTies(t *testing.T) {
	src := []item{
		{Title: "Dune", Price: 5, Active: true},
		{Title: "Dune", Price: 3, Active: true},
		{Title: "Dune", Price: 4, Active: true},
	}
	page, _ := listing.Apply(src, itemSchema(), listing.Criteria{SortField: "title"}, listing.Page{Number: 1, Size: 10})
	require.Len(t, page, 3)
	// all titles equal: original order must survive
	assert.Equal(t, []float64{5, 3, 4}, []float64{page[0].Price, page[1].Price, page[2].Price})
}

func TestSortByNumericAndTime(t *testing.T) {
	src := fixture()
	schema := itemSchema()

	asc, _ := listing.Apply(src, schema, listing.Criteria{SortField: "price", SortOrder: listing.Asc}, listing.Page{Number: 1, Size: 25})
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Price, asc[i].Price)
	}

	desc, _ := listing.Apply(src, schema, listing.Criteria{SortField: "added", SortOrder: listing.Desc}, listing.Page{Number: 1, Size: 25})
	for i := 1; i < len(desc); i++ {
		assert.False(t, desc[i-1].Added.Before(desc[i].Added))
	}
}

func TestStatusScopes(t *testing.T) {
	src := fixture()
	schema := itemSchema()

	active, wa := listing.Apply(src, schema, listing.Criteria{Status: listing.StatusActive}, listing.Page{Number: 1, Size: 25})
	inactive, wi := listing.Apply(src, schema, listing.Criteria{Status: listing.StatusInactive}, listing.Page{Number: 1, Size: 25})
	assert.Equal(t, len(src), wa.TotalItems+wi.TotalItems)
	for _, it := range active {
		assert.True(t, it.Active)
	}
	for _, it := range inactive {
		assert.False(t, it.Active)
	}
}

func TestFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("search", "  harry ")
	q.Set("sort", "price")
	q.Set("order", "DESC")
	q.Set("page", "3")
	q.Set("size", "50")

	c, p := listing.FromQuery(q, itemSchema())
	assert.Equal(t, "harry", c.Search)
	assert.Equal(t, "price", c.SortField)
	assert.Equal(t, listing.Desc, c.SortOrder)
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 50, p.Size)

	// unknown sort fields are dropped, bad paging falls back to defaults
	q = url.Values{}
	q.Set("sort", "password_hash")
	q.Set("page", "-1")
	q.Set("size", "100000")
	c, p = listing.FromQuery(q, itemSchema())
	assert.Empty(t, c.SortField)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, listing.DefaultPageSize, p.Size)
}
