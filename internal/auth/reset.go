package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huanvo/bookverse-api/internal/security/password"
	"github.com/huanvo/bookverse-api/internal/validate"
)

// Password reset is a three-step flow over Redis state:
//
//	pr:otp:<userID>    6-digit code, 5 minute TTL
//	pr:att:<userID>    failed verify attempts, counted against otpMaxAttempts
//	pr:quota:<userID>  sends in the last 24h, capped at otpQuotaMax
//	pr:tk:<ticket>     short-lived reset ticket issued after a correct code
const (
	otpKeyPrefix    = "pr:otp:"
	otpAttPrefix    = "pr:att:"
	otpQuotaPrefix  = "pr:quota:"
	ticketKeyPrefix = "pr:tk:"

	otpTTL         = 5 * time.Minute
	otpQuotaWindow = 24 * time.Hour
	otpQuotaMax    = 3
	otpMaxAttempts = 5
	ticketTTL      = 10 * time.Minute
)

type sendOTPReq struct {
	Email string `json:"email"`
}

// POST /api/auth/forgot-password
// Always answers 200 for a well-formed email so the endpoint cannot be
// used to probe which addresses have accounts.
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendOTPReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if err := validate.Email(req.Email); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_email", err.Error())
		return
	}

	userID, err := h.Users.IDByEmail(ctx, req.Email)
	if err != nil {
		// Unknown address gets the same answer as a known one.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	// Quota: 3 sends per 24h per account.
	qKey := otpQuotaPrefix + userID
	pipe := h.RDB.TxPipeline()
	incr := pipe.Incr(ctx, qKey)
	pipe.Expire(ctx, qKey, otpQuotaWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		writeErr(w, http.StatusInternalServerError, "rate_limit_error", "Could not check send quota")
		return
	}
	if incr.Val() > int64(otpQuotaMax) {
		w.Header().Set("Retry-After", strconv.Itoa(int(otpQuotaWindow/time.Second)))
		writeErr(w, http.StatusTooManyRequests, "quota_exceeded", "OTP send limit reached, try again later")
		return
	}

	code, err := randomOTP()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "otp_error", "Could not generate code")
		return
	}
	// A fresh send replaces the old code and resets the attempt counter.
	pipe = h.RDB.TxPipeline()
	pipe.SetEx(ctx, otpKeyPrefix+userID, code, otpTTL)
	pipe.Del(ctx, otpAttPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		writeErr(w, http.StatusInternalServerError, "redis_error", "Could not store code")
		return
	}

	h.deliverOTP(req.Email, code)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// POST /api/auth/verify-otp trades a correct code for a one-shot reset
// ticket. After otpMaxAttempts wrong codes the code is burned.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyOTPReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	req.OTP = strings.TrimSpace(req.OTP)

	userID, err := h.Users.IDByEmail(ctx, req.Email)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_otp", "Code is wrong or expired")
		return
	}

	stored, err := h.RDB.Get(ctx, otpKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) || stored == "" {
		writeErr(w, http.StatusBadRequest, "invalid_otp", "Code is wrong or expired")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "redis_error", "Could not check code")
		return
	}

	if req.OTP != stored {
		attempts, _ := h.RDB.Incr(ctx, otpAttPrefix+userID).Result()
		_ = h.RDB.Expire(ctx, otpAttPrefix+userID, otpTTL).Err()
		if attempts >= int64(otpMaxAttempts) {
			_ = h.RDB.Del(ctx, otpKeyPrefix+userID, otpAttPrefix+userID).Err()
		}
		writeErr(w, http.StatusBadRequest, "invalid_otp", "Code is wrong or expired")
		return
	}

	ticket, err := randToken()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "otp_error", "Could not issue reset ticket")
		return
	}
	pipe := h.RDB.TxPipeline()
	pipe.SetEx(ctx, ticketKeyPrefix+ticket, userID, ticketTTL)
	pipe.Del(ctx, otpKeyPrefix+userID, otpAttPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		writeErr(w, http.StatusInternalServerError, "redis_error", "Could not issue reset ticket")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"resetToken": ticket})
}

type resetPasswordReq struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// POST /api/auth/reset-password consumes the ticket and sets the new
// password. token_version is bumped so every session dies with the old
// password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResetToken == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if err := validate.Password(req.NewPassword); err != nil {
		writeErr(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}

	key := ticketKeyPrefix + req.ResetToken
	userID, err := h.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || userID == "" {
		writeErr(w, http.StatusBadRequest, "invalid_ticket", "Reset ticket is wrong or expired")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "redis_error", "Could not check reset ticket")
		return
	}

	// Burn the ticket before writing; a replay finds nothing.
	deleted, err := h.RDB.Del(ctx, key).Result()
	if err != nil || deleted == 0 {
		writeErr(w, http.StatusBadRequest, "invalid_ticket", "Reset ticket is wrong or expired")
		return
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "hash_error", "Could not process password")
		return
	}
	if err := h.Users.SetPasswordHash(ctx, userID, hash); err != nil {
		writeErr(w, http.StatusInternalServerError, "update_failed", "Could not update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// deliverOTP hands the code to the mail path. Without a mailer the code
// is only stored in Redis, which is what dev and the test suite rely on.
func (h *Handler) deliverOTP(email, code string) {
	if h.Mailer != nil {
		_ = h.Mailer.SendOTP(email, code)
	}
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
