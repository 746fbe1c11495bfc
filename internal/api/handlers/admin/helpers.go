package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/huanvo/bookverse-api/internal/api/middlewares"
)

func getActorID(ctx context.Context) string {
	actorID, _ := middlewares.UserIDFrom(ctx)
	return actorID
}

// Audit records a staff action, best effort; a failed audit write never
// fails the action itself.
func (h *Handler) Audit(r *http.Request, action, targetID string, meta any) {
	_ = h.Sto.InsertAudit(r.Context(), getActorID(r.Context()), action, targetID, meta)
}

// ===== Rate Limiting =====

func rateKey(prefix, actorID string) string {
	return "admin:rl:" + prefix + ":" + actorID
}

func (h *Handler) allowAction(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := h.RDB.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}
	return int(incr.Val()) <= limit, nil
}

// CheckRateLimit caps a sensitive back-office action per actor.
func (h *Handler) CheckRateLimit(ctx context.Context, w http.ResponseWriter, action, actorID string, limit int, window time.Duration) bool {
	ok, err := h.allowAction(ctx, rateKey(action, actorID), limit, window)
	if err != nil || !ok {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return false
	}
	return true
}

func validatePagination(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 25
	}
	return page, size
}
