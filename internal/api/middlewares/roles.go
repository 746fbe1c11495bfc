package middlewares

import (
	"database/sql"
	"net/http"
)

// RequireRole wraps a handler and ensures the caller carries the given role.
func RequireRole(db *sql.DB, role string, next http.Handler) http.Handler {
	return RequireAuth(db, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var have bool
		err := db.QueryRow(`SELECT $2 = ANY(roles) FROM users WHERE id = $1`, userID, role).Scan(&have)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !have {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAnyRole admits a caller holding at least one of the roles; the
// back office uses it so both STAFF and ADMIN can manage the catalog.
func RequireAnyRole(db *sql.DB, roles []string, next http.Handler) http.Handler {
	return RequireAuth(db, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var have bool
		err := db.QueryRow(`SELECT roles && $2::text[] FROM users WHERE id = $1`, userID, textArray(roles)).Scan(&have)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !have {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func textArray(ss []string) string {
	out := "{"
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out + "}"
}
