// Package shop serves the book catalog: the generic management surface
// plus the storefront-only routes (sorted shelves, random picks, title
// search).
package shop

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/handlers/resource"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/store/books"
	"github.com/huanvo/bookverse-api/internal/validate"
)

type Handler struct {
	Store *books.Store
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{Store: books.New(db)}
}

func validateDraft(d books.Draft) []apperr.FieldError {
	var out []apperr.FieldError
	if _, err := validate.RequireBounded("title", d.Title, 1, 255); err != nil {
		out = append(out, apperr.Invalid("title", err))
	}
	if err := validate.Price(d.Price); err != nil {
		out = append(out, apperr.Invalid("price", err))
	}
	if err := validate.StockQuantity(d.StockQuantity); err != nil {
		out = append(out, apperr.Invalid("stockQuantity", err))
	}
	if d.AuthorID <= 0 {
		out = append(out, apperr.FieldError{Field: "authorId", Code: "invalid", Message: "an author is required"})
	}
	if d.PublisherID <= 0 {
		out = append(out, apperr.FieldError{Field: "publisherId", Code: "invalid", Message: "a publisher is required"})
	}
	if d.CategoryID <= 0 {
		out = append(out, apperr.FieldError{Field: "categoryId", Code: "invalid", Message: "a category is required"})
	}
	if d.PublishedDate.IsZero() {
		out = append(out, apperr.FieldError{Field: "publishedDate", Code: "invalid", Message: "a published date is required"})
	} else if err := validate.NotFuture(d.PublishedDate); err != nil {
		out = append(out, apperr.Invalid("publishedDate", err))
	}
	return out
}

// sortModes maps the storefront shelf routes onto listing criteria.
var sortModes = map[string]listing.Criteria{
	"newest":     {SortField: "createdAt", SortOrder: listing.Desc},
	"oldest":     {SortField: "createdAt", SortOrder: listing.Asc},
	"price-asc":  {SortField: "price", SortOrder: listing.Asc},
	"price-desc": {SortField: "price", SortOrder: listing.Desc},
	"title":      {SortField: "title", SortOrder: listing.Asc},
}

// Mount registers every book route. staff guards the mutating routes.
func (h *Handler) Mount(mux *http.ServeMux, staff func(http.Handler) http.Handler) {
	ctrl := &resource.Controller[models.Book, books.Draft]{
		Store:    h.Store,
		Schema:   books.Schema(),
		Validate: validateDraft,
		NotFound: books.ErrNotFound,
		Guard:    staff,
	}
	ctrl.Mount(mux, "/api/books")

	mux.HandleFunc("GET /api/books/active/sort-by/{mode}", h.sorted)
	mux.HandleFunc("GET /api/books/active/random", h.random)
	mux.HandleFunc("GET /api/books/active/search/{title}", h.search)
	mux.HandleFunc("GET /api/books/suggest", h.suggest)
}

// GET /api/books/active/sort-by/{mode}
func (h *Handler) sorted(w http.ResponseWriter, r *http.Request) {
	crit, ok := sortModes[strings.ToLower(r.PathValue("mode"))]
	if !ok {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_sort",
			"Sort mode must be one of newest, oldest, price-asc, price-desc, title")
		return
	}
	rows, err := h.Store.ListByScope(r.Context(), listing.StatusActive)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	schema := books.Schema()
	qc, page := listing.FromQuery(r.URL.Query(), schema)
	crit.Search = qc.Search
	crit.Status = listing.StatusActive
	items, window := listing.Apply(rows, schema, crit, page)
	httpx.OKList(w, items, window)
}

// GET /api/books/active/random?limit=n
func (h *Handler) random(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.Store.Random(r.Context(), limit)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, rows)
}

// GET /api/books/active/search/{title}
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.PathValue("title"))
	if title == "" {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_search", "Search term must not be empty")
		return
	}
	rows, err := h.Store.SearchActiveByTitle(r.Context(), title)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	schema := books.Schema()
	crit, page := listing.FromQuery(r.URL.Query(), schema)
	crit.Status = listing.StatusActive
	items, window := listing.Apply(rows, schema, crit, page)
	httpx.OKList(w, items, window)
}
