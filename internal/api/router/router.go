package router

import (
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/huanvo/bookverse-api/internal/api/handlers/addresshttp"
	admin "github.com/huanvo/bookverse-api/internal/api/handlers/admin"
	"github.com/huanvo/bookverse-api/internal/api/handlers/carts"
	"github.com/huanvo/bookverse-api/internal/api/handlers/catalog"
	"github.com/huanvo/bookverse-api/internal/api/handlers/favorites"
	"github.com/huanvo/bookverse-api/internal/api/handlers/media"
	"github.com/huanvo/bookverse-api/internal/api/handlers/orderhttp"
	"github.com/huanvo/bookverse-api/internal/api/handlers/shop"
	"github.com/huanvo/bookverse-api/internal/api/handlers/social"
	"github.com/huanvo/bookverse-api/internal/api/handlers/users"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/auth"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/storage/s3"
	adminstore "github.com/huanvo/bookverse-api/internal/store/admin"
)

// Router builds the whole route table. Three access tiers:
// open storefront reads, authed customer routes, and staff management
// routes (STAFF or ADMIN).
func Router(db *sql.DB, rdb *redis.Client, s3c *s3.S3Client) http.Handler {
	mux := http.NewServeMux()

	authed := func(next http.Handler) http.Handler {
		return middlewares.RequireAuth(db, next)
	}
	staff := func(next http.Handler) http.Handler {
		return middlewares.RequireAnyRole(db, []string{models.RoleStaff, models.RoleAdmin}, next)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.OKMessage(w, "ok")
	})

	// Auth
	authH := auth.New(db, rdb)
	mux.Handle("POST /api/auth/login", middlewares.LoginRateLimit(rdb, http.HandlerFunc(authH.Login)))
	mux.HandleFunc("POST /api/auth/refresh", authH.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authH.Logout)
	mux.Handle("POST /api/auth/logout-all", authed(http.HandlerFunc(authH.LogoutAll)))
	mux.HandleFunc("POST /api/auth/introspect", authH.Introspect)
	mux.Handle("POST /api/auth/forgot-password", middlewares.LoginRateLimit(rdb, http.HandlerFunc(authH.SendOTP)))
	mux.HandleFunc("POST /api/auth/verify-otp", authH.VerifyOTP)
	mux.HandleFunc("POST /api/auth/reset-password", authH.ResetPassword)

	// Back-office dashboard; its audit trail also records staff actions
	// performed through the regular management routes.
	adminH := admin.NewHandler(rdb, adminstore.New(db))
	MountAdmin(mux, db, adminH)

	// Catalog + books
	catalog.Mount(mux, db, staff)
	shop.NewHandler(db).Mount(mux, staff)

	// Accounts, cart, orders, reviews/notifications
	usersH := users.NewHandler(db)
	usersH.Audit = adminH.Audit
	usersH.Mount(mux, staff, authed)

	carts.NewHandler(db).Mount(mux, staff, authed)
	favorites.NewHandler(db).Mount(mux, authed)

	ordersH := orderhttp.NewHandler(db)
	ordersH.Audit = adminH.Audit
	ordersH.Mount(mux, staff, authed)

	social.NewHandler(db).Mount(mux, staff, authed)

	// Address reference data
	addresshttp.Mount(mux)

	// Object storage
	media.NewHandler(s3c, db).Mount(mux, staff, authed)

	return mux
}
