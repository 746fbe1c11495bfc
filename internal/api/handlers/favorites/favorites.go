// Package favorites serves the customer's wishlist.
package favorites

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/store/books"
	storefavorites "github.com/huanvo/bookverse-api/internal/store/favorites"
)

type Handler struct {
	Store *storefavorites.Store
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{Store: storefavorites.New(db)}
}

func (h *Handler) Mount(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("GET /api/favorites", authed(http.HandlerFunc(h.list)))
	mux.Handle("POST /api/favorites/{bookId}", authed(http.HandlerFunc(h.add)))
	mux.Handle("DELETE /api/favorites/{bookId}", authed(http.HandlerFunc(h.remove)))
}

// GET /api/favorites
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserIDFrom(r.Context())
	rows, err := h.Store.List(r.Context(), userID)
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

// POST /api/favorites/{bookId}
func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := favoriteIDs(w, r)
	if !ok {
		return
	}
	if err := h.Store.Add(r.Context(), userID, bookID); err != nil {
		if errors.Is(err, storefavorites.ErrNotFound) {
			apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Book not found")
			return
		}
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OKMessage(w, "Added to favorites")
}

// DELETE /api/favorites/{bookId}
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := favoriteIDs(w, r)
	if !ok {
		return
	}
	if err := h.Store.Remove(r.Context(), userID, bookID); err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OKMessage(w, "Removed from favorites")
}

func favoriteIDs(w http.ResponseWriter, r *http.Request) (userID string, bookID int64, ok bool) {
	userID, _ = middlewares.UserIDFrom(r.Context())
	bookID, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Book ID must be a positive integer")
		return "", 0, false
	}
	return userID, bookID, true
}
