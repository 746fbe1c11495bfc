package books

import (
	"time"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
)

// Schema declares how books participate in the list pipeline. The sort
// names double as the sort-by route segments.
func Schema() listing.Schema[models.Book] {
	return listing.Schema[models.Book]{
		Fields: []listing.Field[models.Book]{
			{Name: "title", Kind: listing.Text, String: func(b models.Book) string { return b.Title }},
			{Name: "price", Kind: listing.Numeric, Number: func(b models.Book) float64 { return b.Price }},
			{Name: "publishedDate", Kind: listing.Time, Time: func(b models.Book) time.Time { return b.PublishedDate.Time() }},
			{Name: "createdAt", Kind: listing.Time, Time: func(b models.Book) time.Time { return b.CreatedAt }},
			{Name: "stockQuantity", Kind: listing.Numeric, Number: func(b models.Book) float64 { return float64(b.StockQuantity) }},
		},
		SearchFields: []string{"title"},
		Active:       func(b models.Book) bool { return b.Active },
		// Source order is already newest-first from the store.
		DefaultSort: "",
	}
}
