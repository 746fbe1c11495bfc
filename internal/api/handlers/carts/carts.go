// Package carts serves the signed-in user's shopping cart. Every mutation
// responds with the authoritative cart state so the client never has to
// guess what a clamped quantity ended up as.
package carts

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/store/cart"
	"github.com/huanvo/bookverse-api/internal/store/shared"
	"github.com/huanvo/bookverse-api/internal/validate"
)

type Handler struct {
	Store *cart.Store
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{Store: cart.New(db)}
}

// Mount registers the customer routes behind authed and the back-office
// views behind staff. The literal myCart segment wins over {userId}.
func (h *Handler) Mount(mux *http.ServeMux, staff func(http.Handler) http.Handler, authed func(http.Handler) http.Handler) {
	mux.Handle("GET /api/carts", staff(http.HandlerFunc(h.summaries)))
	mux.Handle("GET /api/carts/{userId}", staff(http.HandlerFunc(h.userCart)))

	mux.Handle("GET /api/carts/myCart", authed(http.HandlerFunc(h.myCart)))
	mux.Handle("POST /api/carts/myCart/add-1-to-cart/{bookId}", authed(http.HandlerFunc(h.addOne)))
	mux.Handle("POST /api/carts/myCart/add-multiple-to-cart", authed(http.HandlerFunc(h.addMultiple)))
	mux.Handle("PUT /api/carts/myCart/remove-1-from-cart/{bookId}", authed(http.HandlerFunc(h.removeOne)))
	mux.Handle("PUT /api/carts/myCart/update-item-quantity", authed(http.HandlerFunc(h.updateQuantity)))
	mux.Handle("DELETE /api/carts/myCart/clear-an-item/{bookId}", authed(http.HandlerFunc(h.clearItem)))
	mux.Handle("POST /api/carts/myCart/checkout-preview", authed(http.HandlerFunc(h.checkoutPreview)))
}

func userID(r *http.Request) string {
	id, _ := middlewares.UserIDFrom(r.Context())
	return id
}

func pathBookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil || id <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Book ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// GET /api/carts/myCart
func (h *Handler) myCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Get(r.Context(), userID(r))
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, c)
}

// GET /api/carts — per-user totals for the back office.
func (h *Handler) summaries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.Summaries(r.Context())
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, rows)
}

// GET /api/carts/{userId}
func (h *Handler) userCart(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("userId")
	if !shared.IsUUID(uid) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "User ID must be a UUID")
		return
	}
	c, err := h.Store.Get(r.Context(), uid)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, c)
}

// respondWithCart re-reads and returns the whole cart after a mutation.
func (h *Handler) respondWithCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Get(r.Context(), userID(r))
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, c)
}

// POST /api/carts/myCart/add-1-to-cart/{bookId}
func (h *Handler) addOne(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathBookID(w, r)
	if !ok {
		return
	}
	if _, err := h.Store.AddOne(r.Context(), userID(r), bookID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithCart(w, r)
}

type addMultipleReq struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// POST /api/carts/myCart/add-multiple-to-cart
func (h *Handler) addMultiple(w http.ResponseWriter, r *http.Request) {
	var in addMultipleReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	if in.BookID <= 0 {
		apperr.WriteValidation(w, r, apperr.FieldError{Field: "bookId", Code: "invalid", Message: "a book is required"})
		return
	}
	if err := validate.CartQuantity(in.Quantity); err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("quantity", err))
		return
	}
	if _, err := h.Store.AddMultiple(r.Context(), userID(r), in.BookID, in.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithCart(w, r)
}

// PUT /api/carts/myCart/remove-1-from-cart/{bookId}
func (h *Handler) removeOne(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathBookID(w, r)
	if !ok {
		return
	}
	if _, err := h.Store.RemoveOne(r.Context(), userID(r), bookID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithCart(w, r)
}

type updateQuantityReq struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// PUT /api/carts/myCart/update-item-quantity
func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var in updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	if err := validate.CartQuantity(in.Quantity); err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("quantity", err))
		return
	}
	if _, err := h.Store.UpdateQuantity(r.Context(), userID(r), in.BookID, in.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithCart(w, r)
}

// DELETE /api/carts/myCart/clear-an-item/{bookId}
func (h *Handler) clearItem(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathBookID(w, r)
	if !ok {
		return
	}
	if err := h.Store.ClearItem(r.Context(), userID(r), bookID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithCart(w, r)
}

type checkoutPreviewReq struct {
	SelectedBookIDs []int64 `json:"selectedBookIds"`
	SelectAll       bool    `json:"selectAll"`
}

// POST /api/carts/myCart/checkout-preview returns the selected subset and
// its total without touching the cart. Selections for books no longer in
// the cart are dropped.
func (h *Handler) checkoutPreview(w http.ResponseWriter, r *http.Request) {
	var in checkoutPreviewReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}

	c, err := h.Store.Get(r.Context(), userID(r))
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}

	sel := cart.NewSelection(in.SelectedBookIDs)
	if in.SelectAll {
		sel.SelectAll(c)
	}
	sel.Prune(c)

	httpx.OK(w, map[string]any{
		"items": sel.Lines(c),
		"total": sel.Total(c),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Cart item not found")
	case errors.Is(err, cart.ErrBookUnavailable):
		apperr.WriteStatus(w, r, http.StatusConflict, "book_unavailable", "Book is out of stock or no longer sold")
	default:
		apperr.HandleDBError(w, r, err)
	}
}
