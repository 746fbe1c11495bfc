package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
)

// GET /admin/audit
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	// Filtered audit reads are expensive; cap them per admin.
	if h.RDB != nil {
		if !h.CheckRateLimit(r.Context(), w, "audit_list", getActorID(r.Context()), 60, time.Minute) {
			return
		}
	}

	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	page, size = validatePagination(page, size)

	filter := AuditFilter{
		ActorID:  q.Get("actor_id"),
		TargetID: q.Get("target_id"),
		Action:   q.Get("action"),
		Since:    parseTimeParam(q.Get("since")),
		Until:    parseTimeParam(q.Get("until")),
		Page:     page,
		Size:     size,
	}

	items, total, err := h.Sto.ListAudit(r.Context(), filter)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}

	httpx.OK(w, map[string]any{
		"items": items, "total": total, "page": page, "size": size,
	})
}

func parseTimeParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}
