package router

import (
	"database/sql"
	"net/http"

	admin "github.com/huanvo/bookverse-api/internal/api/handlers/admin"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/models"
)

// MountAdmin wires the /api/admin/* dashboard behind the ADMIN role.
func MountAdmin(mux *http.ServeMux, db *sql.DB, adminH *admin.Handler) {
	gate := func(next http.Handler) http.Handler {
		return middlewares.RequireRole(db, models.RoleAdmin, next)
	}

	mux.Handle("GET /api/admin/stats", gate(http.HandlerFunc(adminH.Stats)))
	mux.Handle("GET /api/admin/audit", gate(http.HandlerFunc(adminH.ListAudit)))
}
