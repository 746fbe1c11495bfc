package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/models"
)

const StatsCacheKey = "admin:stats"
const StatsCacheDuration = 30 * time.Second

// GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.writeCachedStats(ctx, w) {
		return
	}

	stats, err := h.fetchStats(ctx)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}

	if h.RDB != nil {
		if b, err := json.Marshal(stats); err == nil {
			_ = h.RDB.SetEx(ctx, StatsCacheKey, b, StatsCacheDuration).Err()
		}
	}
	httpx.OK(w, stats)
}

func (h *Handler) writeCachedStats(ctx context.Context, w http.ResponseWriter) bool {
	if h.RDB == nil {
		return false
	}
	cached, err := h.RDB.Get(ctx, StatsCacheKey).Result()
	if err != nil || cached == "" {
		return false
	}
	var stats StatsResponse
	if err := json.Unmarshal([]byte(cached), &stats); err != nil {
		return false
	}
	httpx.OK(w, stats)
	return true
}

func (h *Handler) fetchStats(ctx context.Context) (*StatsResponse, error) {
	usersTotal, usersActive, err := h.Sto.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := h.Sto.CountByRole(ctx, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	staffs, err := h.Sto.CountByRole(ctx, models.RoleStaff)
	if err != nil {
		return nil, err
	}
	signups, err := h.Sto.CountSignupsLast24h(ctx)
	if err != nil {
		return nil, err
	}
	booksTotal, booksActive, err := h.Sto.CountBooks(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := h.Sto.OrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := h.Sto.RevenueDelivered(ctx)
	if err != nil {
		return nil, err
	}
	reviewsTotal, err := h.Sto.CountReviews(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		UsersTotal:       usersTotal,
		UsersActive:      usersActive,
		Customers:        customers,
		Staffs:           staffs,
		SignupsLast24h:   signups,
		BooksTotal:       booksTotal,
		BooksActive:      booksActive,
		OrdersByStatus:   byStatus,
		RevenueDelivered: revenue,
		ReviewsTotal:     reviewsTotal,
	}, nil
}
