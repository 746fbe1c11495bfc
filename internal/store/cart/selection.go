package cart

import "github.com/huanvo/bookverse-api/internal/models"

// Selection is the set of cart lines the user has ticked for checkout.
// It is pure state over a cart snapshot; the handler rebuilds it from the
// request on every checkout-preview call.
type Selection map[int64]bool

func NewSelection(bookIDs []int64) Selection {
	s := make(Selection, len(bookIDs))
	for _, id := range bookIDs {
		s[id] = true
	}
	return s
}

func (s Selection) Toggle(bookID int64) {
	if s[bookID] {
		delete(s, bookID)
		return
	}
	s[bookID] = true
}

func (s Selection) SelectAll(c models.Cart) {
	for _, l := range c.Lines {
		s[l.BookID] = true
	}
}

func (s Selection) Clear() {
	for id := range s {
		delete(s, id)
	}
}

// Prune drops selections for books no longer present in the cart, so a
// line removed in another tab cannot sneak into an order.
func (s Selection) Prune(c models.Cart) {
	present := make(map[int64]bool, len(c.Lines))
	for _, l := range c.Lines {
		present[l.BookID] = true
	}
	for id := range s {
		if !present[id] {
			delete(s, id)
		}
	}
}

// Lines returns the selected subset of the cart in cart order.
func (s Selection) Lines(c models.Cart) []models.CartLine {
	out := make([]models.CartLine, 0, len(s))
	for _, l := range c.Lines {
		if s[l.BookID] {
			out = append(out, l)
		}
	}
	return out
}

// Total sums the selected subtotals.
func (s Selection) Total(c models.Cart) float64 {
	var total float64
	for _, l := range c.Lines {
		if s[l.BookID] {
			total += l.Subtotal
		}
	}
	return total
}
