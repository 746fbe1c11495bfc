// Package social serves book reviews and the per-user notification feed.
package social

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/store/notifications"
	"github.com/huanvo/bookverse-api/internal/store/reviews"
	"github.com/huanvo/bookverse-api/internal/store/shared"
	"github.com/huanvo/bookverse-api/internal/validate"
)

type Handler struct {
	Reviews *reviews.Store
	Notify  *notifications.Store
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{Reviews: reviews.New(db), Notify: notifications.New(db)}
}

func (h *Handler) Mount(mux *http.ServeMux, staff func(http.Handler) http.Handler, authed func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/books/{id}/reviews", h.listReviews)
	mux.Handle("POST /api/books/{id}/reviews", authed(http.HandlerFunc(h.createReview)))
	mux.Handle("DELETE /api/reviews/{id}", authed(http.HandlerFunc(h.deleteOwnReview)))
	mux.Handle("DELETE /api/reviews/moderate/{id}", staff(http.HandlerFunc(h.moderateReview)))

	mux.Handle("GET /api/notifications", authed(http.HandlerFunc(h.listNotifications)))
	mux.Handle("GET /api/notifications/unread-count", authed(http.HandlerFunc(h.unreadCount)))
	mux.Handle("PUT /api/notifications/{id}/read", authed(http.HandlerFunc(h.markRead)))
	mux.Handle("PUT /api/notifications/read-all", authed(http.HandlerFunc(h.markAllRead)))
	mux.Handle("POST /api/notifications/broadcast", staff(http.HandlerFunc(h.broadcast)))
}

func userID(r *http.Request) string {
	id, _ := middlewares.UserIDFrom(r.Context())
	return id
}

// GET /api/books/{id}/reviews
func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || bookID <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Book ID must be a positive integer")
		return
	}
	rows, err := h.Reviews.ListForBook(r.Context(), bookID)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, rows)
}

type reviewReq struct {
	Comment string `json:"comment"`
}

// POST /api/books/{id}/reviews
func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || bookID <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Book ID must be a positive integer")
		return
	}
	var in reviewReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	comment, err := validate.RequireBounded("comment", in.Comment, 1, 2000)
	if err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("comment", err))
		return
	}

	review, err := h.Reviews.Create(r.Context(), userID(r), bookID, comment)
	if err != nil {
		if errors.Is(err, reviews.ErrNotPurchased) {
			apperr.WriteStatus(w, r, http.StatusForbidden, "not_purchased",
				"Only buyers with a delivered order can review a book")
			return
		}
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.Created(w, review)
}

// DELETE /api/reviews/{id}
func (h *Handler) deleteOwnReview(w http.ResponseWriter, r *http.Request) {
	h.deleteReview(w, r, userID(r))
}

// DELETE /api/reviews/moderate/{id}
func (h *Handler) moderateReview(w http.ResponseWriter, r *http.Request) {
	h.deleteReview(w, r, "")
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request, owner string) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Review ID must be a positive integer")
		return
	}
	if err := h.Reviews.Delete(r.Context(), id, owner); err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Review not found")
			return
		}
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OKMessage(w, "Review deleted")
}

// GET /api/notifications
func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Notify.ListForUser(r.Context(), userID(r))
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, rows)
}

// GET /api/notifications/unread-count
func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notify.UnreadCount(r.Context(), userID(r))
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, map[string]int{"unread": n})
}

// PUT /api/notifications/{id}/read
func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !shared.IsUUID(id) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Notification ID must be a UUID")
		return
	}
	if err := h.Notify.MarkRead(r.Context(), id, userID(r)); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Notification not found")
			return
		}
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OKMessage(w, "Notification marked as read")
}

type broadcastReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// POST /api/notifications/broadcast — staff announcement to every
// active account.
func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	var in broadcastReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	title, err := validate.RequireBounded("title", in.Title, 1, 255)
	if err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("title", err))
		return
	}
	body, err := validate.RequireBounded("body", in.Body, 1, 2000)
	if err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("body", err))
		return
	}
	n, err := h.Notify.PushAll(r.Context(), title, body)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OK(w, map[string]int{"recipients": n})
}

// PUT /api/notifications/read-all
func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notify.MarkAllRead(r.Context(), userID(r)); err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	httpx.OKMessage(w, "All notifications marked as read")
}
