// Package catalog wires the four reference resources into the generic
// controller and adds the couple of storefront routes that fall outside
// the shared surface.
package catalog

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/handlers/resource"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/store/books"
	storecatalog "github.com/huanvo/bookverse-api/internal/store/catalog"
	"github.com/huanvo/bookverse-api/internal/validate"
)

func authorSchema() listing.Schema[models.Author] {
	return listing.Schema[models.Author]{
		Fields: []listing.Field[models.Author]{
			{Name: "name", Kind: listing.Text, String: func(a models.Author) string { return a.Name }},
			{Name: "createdAt", Kind: listing.Time, Time: func(a models.Author) time.Time { return a.CreatedAt }},
		},
		SearchFields: []string{"name"},
		Active:       func(a models.Author) bool { return a.Active },
		DefaultSort:  "name",
	}
}

func publisherSchema() listing.Schema[models.Publisher] {
	return listing.Schema[models.Publisher]{
		Fields: []listing.Field[models.Publisher]{
			{Name: "name", Kind: listing.Text, String: func(p models.Publisher) string { return p.Name }},
			{Name: "createdAt", Kind: listing.Time, Time: func(p models.Publisher) time.Time { return p.CreatedAt }},
		},
		SearchFields: []string{"name"},
		Active:       func(p models.Publisher) bool { return p.Active },
		DefaultSort:  "name",
	}
}

func subCategorySchema() listing.Schema[models.SubCategory] {
	return listing.Schema[models.SubCategory]{
		Fields: []listing.Field[models.SubCategory]{
			{Name: "name", Kind: listing.Text, String: func(c models.SubCategory) string { return c.Name }},
			{Name: "createdAt", Kind: listing.Time, Time: func(c models.SubCategory) time.Time { return c.CreatedAt }},
		},
		SearchFields: []string{"name"},
		Active:       func(c models.SubCategory) bool { return c.Active },
		DefaultSort:  "name",
	}
}

func supCategorySchema() listing.Schema[models.SupCategory] {
	return listing.Schema[models.SupCategory]{
		Fields: []listing.Field[models.SupCategory]{
			{Name: "name", Kind: listing.Text, String: func(c models.SupCategory) string { return c.Name }},
			{Name: "createdAt", Kind: listing.Time, Time: func(c models.SupCategory) time.Time { return c.CreatedAt }},
		},
		SearchFields: []string{"name"},
		Active:       func(c models.SupCategory) bool { return c.Active },
		DefaultSort:  "name",
	}
}

func validateAuthor(d storecatalog.AuthorDraft) []apperr.FieldError {
	var out []apperr.FieldError
	if err := validate.PersonName(d.Name); err != nil {
		out = append(out, apperr.Invalid("name", err))
	}
	return out
}

func validatePublisher(d storecatalog.PublisherDraft) []apperr.FieldError {
	var out []apperr.FieldError
	if err := validate.PersonName(d.Name); err != nil {
		out = append(out, apperr.Invalid("name", err))
	}
	return out
}

func validateSubCategory(d storecatalog.SubCategoryDraft) []apperr.FieldError {
	var out []apperr.FieldError
	if err := validate.PersonName(d.Name); err != nil {
		out = append(out, apperr.Invalid("name", err))
	}
	if d.SupCategoryID <= 0 {
		out = append(out, apperr.FieldError{Field: "supCategoryId", Code: "invalid", Message: "a parent category is required"})
	}
	return out
}

func validateSupCategory(d storecatalog.SupCategoryDraft) []apperr.FieldError {
	var out []apperr.FieldError
	if err := validate.PersonName(d.Name); err != nil {
		out = append(out, apperr.Invalid("name", err))
	}
	return out
}

// Mount registers all four catalog resources plus the tree and
// active-books storefront routes. staff guards the mutating routes.
func Mount(mux *http.ServeMux, db *sql.DB, staff func(http.Handler) http.Handler) {
	authors := &resource.Controller[models.Author, storecatalog.AuthorDraft]{
		Store:    storecatalog.NewAuthors(db),
		Schema:   authorSchema(),
		Validate: validateAuthor,
		NotFound: storecatalog.ErrNotFound,
		Guard:    staff,
	}
	authors.Mount(mux, "/api/authors")

	publishers := &resource.Controller[models.Publisher, storecatalog.PublisherDraft]{
		Store:    storecatalog.NewPublishers(db),
		Schema:   publisherSchema(),
		Validate: validatePublisher,
		NotFound: storecatalog.ErrNotFound,
		Guard:    staff,
	}
	publishers.Mount(mux, "/api/publishers")

	subStore := storecatalog.NewSubCategories(db)
	subs := &resource.Controller[models.SubCategory, storecatalog.SubCategoryDraft]{
		Store:    subStore,
		Schema:   subCategorySchema(),
		Validate: validateSubCategory,
		NotFound: storecatalog.ErrNotFound,
		Guard:    staff,
	}
	subs.Mount(mux, "/api/subcategories")

	sups := &resource.Controller[models.SupCategory, storecatalog.SupCategoryDraft]{
		Store:    storecatalog.NewSupCategories(db),
		Schema:   supCategorySchema(),
		Validate: validateSupCategory,
		NotFound: storecatalog.ErrNotFound,
		Guard:    staff,
	}
	sups.Mount(mux, "/api/supcategories")

	bookStore := books.New(db)

	// GET /api/supcategories/{id}/subcategories — storefront menu tree.
	mux.HandleFunc("GET /api/supcategories/{id}/subcategories", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "ID must be a positive integer")
			return
		}
		rows, err := subStore.ListBySupCategory(r.Context(), id)
		if err != nil {
			apperr.HandleDBError(w, r, err)
			return
		}
		httpx.OK(w, rows)
	})

	// GET /api/subcategories/{id}/active-books — storefront shelf for one
	// category, same query surface as every other list.
	mux.HandleFunc("GET /api/subcategories/{id}/active-books", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "ID must be a positive integer")
			return
		}
		rows, err := bookStore.ActiveBySubCategory(r.Context(), id)
		if err != nil {
			apperr.HandleDBError(w, r, err)
			return
		}
		schema := books.Schema()
		crit, page := listing.FromQuery(r.URL.Query(), schema)
		crit.Status = listing.StatusActive
		items, window := listing.Apply(rows, schema, crit, page)
		httpx.OKList(w, items, window)
	})
}
