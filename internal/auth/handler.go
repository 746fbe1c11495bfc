// Package auth issues and revokes credentials: short-lived HS256 access
// tokens plus opaque refresh tokens held in a Redis allowlist under
// "rt:<token>" with value "userID|tokenVersion". Bumping token_version
// kills every outstanding token at once.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	jwtutil "github.com/huanvo/bookverse-api/internal/security/jwt"
	"github.com/huanvo/bookverse-api/internal/security/password"
	storeusers "github.com/huanvo/bookverse-api/internal/store/users"
)

// Mailer delivers one-time codes. nil means codes are only stored, which
// is fine for dev and tests.
type Mailer interface {
	SendOTP(email, code string) error
}

type Handler struct {
	DB     *sql.DB
	Users  *storeusers.Store
	RDB    *redis.Client
	Mailer Mailer
}

func New(db *sql.DB, rdb *redis.Client) *Handler {
	return &Handler{DB: db, Users: storeusers.New(db), RDB: rdb}
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login or password")
		return
	}

	creds, err := h.Users.CredentialsByLogin(r.Context(), req.Login)
	if err != nil || !creds.Active {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login or password")
		return
	}
	ok, needsRehash, err := password.Verify(req.Password, creds.PasswordHash)
	if err != nil || !ok {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login or password")
		return
	}
	if needsRehash {
		if newPHC, err := password.Hash(req.Password); err == nil {
			_ = h.Users.RehashPassword(r.Context(), creds.ID, newPHC)
		}
	}

	pair, err := h.issuePair(r.Context(), creds.ID, creds.TokenVersion)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "token_error", "Failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"roles":        creds.Roles,
	})
}

// POST /api/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	key := "rt:" + req.RefreshToken

	ctx := r.Context()
	val, err := h.RDB.Get(ctx, key).Result()
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "invalid_refresh", "Invalid refresh token")
		return
	}

	parts := strings.SplitN(val, "|", 2) // value: userID|tokenVersion
	if len(parts) != 2 {
		writeErr(w, http.StatusUnauthorized, "invalid_refresh", "Invalid refresh token")
		return
	}
	userID := parts[0]
	tv, _ := strconv.Atoi(parts[1])

	// confirm token_version is current
	dbVer, err := h.Users.TokenVersion(ctx, userID)
	if err != nil || dbVer != tv {
		writeErr(w, http.StatusUnauthorized, "token_revoked", "Token has been revoked")
		return
	}

	// rotate refresh
	_ = h.RDB.Del(ctx, key).Err()
	pair, err := h.issuePair(ctx, userID, dbVer)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "token_error", "Failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken != "" {
		_ = h.RDB.Del(r.Context(), "rt:"+req.RefreshToken).Err()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/auth/logout-all bumps token_version, revoking every session.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	_, err := h.DB.ExecContext(r.Context(),
		`UPDATE users SET token_version = token_version + 1, updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "update_failed", "Failed to revoke sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/auth/introspect reports whether a presented access token is
// still good, for other services and the frontend boot check.
func (h *Handler) Introspect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	claims, err := jwtutil.ParseAccess(req.Token)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	dbVer, err := h.Users.TokenVersion(r.Context(), claims.Subject)
	if err != nil || dbVer != claims.TokenVersion {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active": true,
		"sub":    claims.Subject,
		"exp":    claims.ExpiresAt,
	})
}

// ---- refresh helpers (Redis allowlist) ----

func (h *Handler) issuePair(ctx context.Context, userID string, tokenVersion int) (TokenPair, error) {
	access, _, err := jwtutil.SignAccess(userID, tokenVersion, jwtutil.DefaultAccessTTL())
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := h.issueRefresh(ctx, userID, tokenVersion)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (h *Handler) issueRefresh(ctx context.Context, userID string, tokenVersion int) (string, error) {
	token, err := randToken()
	if err != nil {
		return "", err
	}
	if h.RDB == nil {
		return "", errors.New("redis not configured")
	}
	key := "rt:" + token
	val := userID + "|" + strconv.Itoa(tokenVersion)
	if err := h.RDB.Set(ctx, key, val, refreshTTL()).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func refreshTTL() time.Duration {
	if s := os.Getenv("AUTH_REFRESH_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return 30 * 24 * time.Hour
}

func randToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
