package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanvo/bookverse-api/internal/models"
)

func sampleCart() models.Cart {
	return models.Cart{
		UserID: "u1",
		Lines: []models.CartLine{
			{ID: 1, BookID: 10, Title: "Dune", Price: 12.5, Quantity: 2, Subtotal: 25},
			{ID: 2, BookID: 11, Title: "Hyperion", Price: 9, Quantity: 1, Subtotal: 9},
			{ID: 3, BookID: 12, Title: "Foundation", Price: 7.25, Quantity: 4, Subtotal: 29},
		},
		Total: 63,
	}
}

func TestSelectionToggle(t *testing.T) {
	s := NewSelection(nil)
	s.Toggle(10)
	assert.True(t, s[10])
	s.Toggle(10)
	assert.False(t, s[10])
}

func TestSelectionSelectAllAndClear(t *testing.T) {
	c := sampleCart()
	s := NewSelection(nil)
	s.SelectAll(c)
	assert.Len(t, s, 3)
	assert.InDelta(t, c.Total, s.Total(c), 1e-9)

	s.Clear()
	assert.Empty(t, s)
	assert.Zero(t, s.Total(c))
}

func TestSelectionSubset(t *testing.T) {
	c := sampleCart()
	s := NewSelection([]int64{10, 12})

	lines := s.Lines(c)
	require.Len(t, lines, 2)
	assert.Equal(t, "Dune", lines[0].Title)
	assert.Equal(t, "Foundation", lines[1].Title)
	assert.InDelta(t, 54, s.Total(c), 1e-9)
}

func TestSelectionPruneDropsVanishedLines(t *testing.T) {
	c := sampleCart()
	s := NewSelection([]int64{10, 99})
	s.Prune(c)

	assert.True(t, s[10])
	assert.False(t, s[99])
	assert.Len(t, s, 1)
}

func TestSelectionLinesKeepCartOrder(t *testing.T) {
	c := sampleCart()
	s := NewSelection([]int64{12, 10, 11})

	lines := s.Lines(c)
	require.Len(t, lines, 3)
	assert.Equal(t, int64(10), lines[0].BookID)
	assert.Equal(t, int64(11), lines[1].BookID)
	assert.Equal(t, int64(12), lines[2].BookID)
}
