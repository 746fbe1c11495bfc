// Package orderhttp serves order placement for customers and the order
// management screens for staff.
package orderhttp

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/huanvo/bookverse-api/internal/address"
	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/store/books"
	"github.com/huanvo/bookverse-api/internal/store/notifications"
	"github.com/huanvo/bookverse-api/internal/store/orders"
)

type Handler struct {
	Store  *orders.Store
	Notify *notifications.Store
	// Audit records staff actions on orders; nil disables auditing.
	Audit func(r *http.Request, action, targetID string, meta any)
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{Store: orders.New(db), Notify: notifications.New(db)}
}

func (h *Handler) audit(r *http.Request, action, targetID string, meta any) {
	if h.Audit != nil {
		h.Audit(r, action, targetID, meta)
	}
}

func schema() listing.Schema[models.Order] {
	return listing.Schema[models.Order]{
		Fields: []listing.Field[models.Order]{
			{Name: "code", Kind: listing.Text, String: func(o models.Order) string { return o.Code }},
			{Name: "status", Kind: listing.Text, String: func(o models.Order) string { return string(o.Status) }},
			{Name: "totalAmount", Kind: listing.Numeric, Number: func(o models.Order) float64 { return o.TotalAmount }},
			{Name: "createdAt", Kind: listing.Time, Time: func(o models.Order) time.Time { return o.CreatedAt }},
		},
		SearchFields: []string{"code"},
		Active:       func(o models.Order) bool { return o.Active },
	}
}

// Mount registers customer routes behind authed and management routes
// behind staff.
func (h *Handler) Mount(mux *http.ServeMux, staff func(http.Handler) http.Handler, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /api/orders", authed(http.HandlerFunc(h.place)))
	mux.Handle("GET /api/orders/myOrders", authed(http.HandlerFunc(h.myOrders)))
	mux.Handle("GET /api/orders/myOrders/{id}", authed(http.HandlerFunc(h.myOrder)))

	mux.Handle("GET /api/orders", staff(http.HandlerFunc(h.list(listing.StatusAll))))
	mux.Handle("GET /api/orders/active", staff(http.HandlerFunc(h.list(listing.StatusActive))))
	mux.Handle("GET /api/orders/inactive", staff(http.HandlerFunc(h.list(listing.StatusInactive))))
	mux.Handle("GET /api/orders/{id}", staff(http.HandlerFunc(h.get)))
	mux.Handle("PUT /api/orders/{id}/status", staff(http.HandlerFunc(h.updateStatus)))
	mux.Handle("PUT /api/orders/active/{id}", staff(http.HandlerFunc(h.setActive(true))))
	mux.Handle("PUT /api/orders/inactive/{id}", staff(http.HandlerFunc(h.setActive(false))))
}

func userID(r *http.Request) string {
	id, _ := middlewares.UserIDFrom(r.Context())
	return id
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Order ID must be a positive integer")
		return 0, false
	}
	return id, true
}

type placeReq struct {
	SelectedBookIDs []int64 `json:"selectedBookIds"`
	Address         string  `json:"address"`
}

// POST /api/orders — turns the selected cart lines into a PENDING order.
func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	var in placeReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	if err := address.Validate(address.Split(in.Address)); err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("address", err))
		return
	}

	order, err := h.Store.Place(r.Context(), userID(r), in.Address, in.SelectedBookIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Best effort; the order stands even if the notice fails.
	_, _ = h.Notify.Push(r.Context(), order.UserID,
		"Order placed", "Order "+order.Code+" was received and is pending.")

	httpx.Created(w, order)
}

// GET /api/orders/myOrders
func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ListForUser(r.Context(), userID(r))
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	sch := schema()
	crit, page := listing.FromQuery(r.URL.Query(), sch)
	items, window := listing.Apply(rows, sch, crit, page)
	httpx.OKList(w, items, window)
}

// GET /api/orders/myOrders/{id} — only the owner sees the detail.
func (h *Handler) myOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if order.UserID != userID(r) {
		apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Order not found")
		return
	}
	httpx.OK(w, order)
}

func (h *Handler) list(scope listing.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []models.Order
		var err error
		if status := r.URL.Query().Get("status"); status != "" {
			rows, err = h.Store.ListByStatus(r.Context(), models.OrderStatus(status))
		} else {
			rows, err = h.Store.ListByScope(r.Context(), scope)
		}
		if err != nil {
			apperr.HandleDBError(w, r, err)
			return
		}
		sch := schema()
		crit, page := listing.FromQuery(r.URL.Query(), sch)
		crit.Status = scope
		items, window := listing.Apply(rows, sch, crit, page)
		httpx.OKList(w, items, window)
	}
}

// GET /api/orders/{id}
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, order)
}

type statusReq struct {
	Status models.OrderStatus `json:"status"`
}

// PUT /api/orders/{id}/status
func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in statusReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	order, err := h.Store.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "order.update_status", order.Code, map[string]any{"status": order.Status})

	_, _ = h.Notify.Push(r.Context(), order.UserID,
		"Order update", "Order "+order.Code+" is now "+string(order.Status)+".")

	httpx.OK(w, order)
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		order, err := h.Store.SetActive(r.Context(), id, active)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit(r, "order.set_active", order.Code, map[string]any{"active": active})
		httpx.OK(w, order)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Order not found")
	case errors.Is(err, orders.ErrEmptyCart):
		apperr.WriteStatus(w, r, http.StatusBadRequest, "empty_selection", "No cart lines were selected")
	case errors.Is(err, orders.ErrTransition):
		apperr.WriteStatus(w, r, http.StatusConflict, "invalid_transition", "Order status cannot change that way")
	case errors.Is(err, books.ErrStock):
		apperr.WriteStatus(w, r, http.StatusConflict, "insufficient_stock", "A selected book does not have enough stock")
	default:
		apperr.HandleDBError(w, r, err)
	}
}
