// Package users serves account routes: public signup, the signed-in
// profile, and the back-office customer/staff management screens.
package users

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/huanvo/bookverse-api/internal/address"
	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/security/password"
	"github.com/huanvo/bookverse-api/internal/store/shared"
	storeusers "github.com/huanvo/bookverse-api/internal/store/users"
	"github.com/huanvo/bookverse-api/internal/validate"
)

type Handler struct {
	DB    *sql.DB
	Store *storeusers.Store
	// Audit records staff actions on accounts; nil disables auditing.
	Audit func(r *http.Request, action, targetID string, meta any)
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{DB: db, Store: storeusers.New(db)}
}

func (h *Handler) audit(r *http.Request, action, targetID string, meta any) {
	if h.Audit != nil {
		h.Audit(r, action, targetID, meta)
	}
}

func schema() listing.Schema[models.User] {
	return listing.Schema[models.User]{
		Fields: []listing.Field[models.User]{
			{Name: "username", Kind: listing.Text, String: func(u models.User) string { return u.Username }},
			{Name: "email", Kind: listing.Text, String: func(u models.User) string { return u.Email }},
			{Name: "name", Kind: listing.Text, String: func(u models.User) string { return u.Name }},
			{Name: "createdDate", Kind: listing.Time, Time: func(u models.User) time.Time { return u.CreatedAt }},
		},
		SearchFields: []string{"username", "email", "name"},
		Active:       func(u models.User) bool { return u.Active },
	}
}

// Mount registers the account routes. Role enforcement happens in the
// router; handlers only read the authenticated user ID.
func (h *Handler) Mount(mux *http.ServeMux, staff func(http.Handler) http.Handler, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /api/users", http.HandlerFunc(h.signup))

	mux.Handle("GET /api/users", staff(http.HandlerFunc(h.list(listing.StatusAll, ""))))
	mux.Handle("GET /api/users/active", staff(http.HandlerFunc(h.list(listing.StatusActive, ""))))
	mux.Handle("GET /api/users/inactive", staff(http.HandlerFunc(h.list(listing.StatusInactive, ""))))
	mux.Handle("GET /api/users/customers", staff(http.HandlerFunc(h.list(listing.StatusAll, models.RoleCustomer))))
	mux.Handle("GET /api/users/staffs", staff(http.HandlerFunc(h.list(listing.StatusAll, models.RoleStaff))))
	mux.Handle("GET /api/users/id-by-email", staff(http.HandlerFunc(h.idByEmail)))
	mux.Handle("GET /api/users/is-active/{id}", staff(http.HandlerFunc(h.isActive)))
	mux.Handle("GET /api/users/{id}", staff(http.HandlerFunc(h.get)))
	mux.Handle("POST /api/users/create", staff(http.HandlerFunc(h.staffCreate)))
	mux.Handle("PUT /api/users/{id}", staff(http.HandlerFunc(h.staffUpdate)))
	mux.Handle("PUT /api/users/active/{id}", staff(http.HandlerFunc(h.setActive(true))))
	mux.Handle("PUT /api/users/inactive/{id}", staff(http.HandlerFunc(h.setActive(false))))
	mux.Handle("PUT /api/users/change-role/{id}", staff(http.HandlerFunc(h.changeRole)))

	mux.Handle("GET /api/users/myInfo", authed(http.HandlerFunc(h.myInfo)))
	mux.Handle("PUT /api/users/myInfo", authed(http.HandlerFunc(h.updateMyInfo)))
	mux.Handle("PUT /api/users/change-my-password", authed(http.HandlerFunc(h.changeMyPassword)))
}

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// POST /api/users
func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var in signupReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}

	var fields []apperr.FieldError
	if err := validate.Username(in.Username); err != nil {
		fields = append(fields, apperr.Invalid("username", err))
	}
	if err := validate.Email(in.Email); err != nil {
		fields = append(fields, apperr.Invalid("email", err))
	}
	if err := validate.Password(in.Password); err != nil {
		fields = append(fields, apperr.Invalid("password", err))
	}
	if in.Phone != "" {
		if err := validate.Phone(in.Phone); err != nil {
			fields = append(fields, apperr.Invalid("phone", err))
		}
	}
	if in.Address != "" {
		if err := address.Validate(address.Split(in.Address)); err != nil {
			fields = append(fields, apperr.Invalid("address", err))
		}
	}
	if len(fields) > 0 {
		apperr.WriteValidation(w, r, fields...)
		return
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "hash_failed", "Could not process password")
		return
	}

	u, err := h.Store.Create(r.Context(), storeusers.Draft{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Phone:    in.Phone,
		Address:  in.Address,
	}, hash)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}

	// Weak-but-legal passwords get a nudge alongside the created account.
	if warn := password.Strength(in.Password, in.Username, emailLocalPart(in.Email)); warn != nil {
		httpx.Created(w, map[string]any{"user": u, "passwordWarning": warn})
		return
	}
	httpx.Created(w, u)
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func (h *Handler) list(scope listing.Status, role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []models.User
		var err error
		if role == "" {
			rows, err = h.Store.ListByScope(r.Context(), scope)
		} else {
			rows, err = h.Store.ListByRole(r.Context(), role, scope)
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

// GET /api/users/{id}
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !shared.IsUUID(id) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "User ID must be a UUID")
		return
	}
	u, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, u)
}

// GET /api/users/id-by-email?email=
func (h *Handler) idByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validate.Email(email); err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("email", err))
		return
	}
	id, err := h.Store.IDByEmail(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, map[string]string{"id": id})
}

// GET /api/users/is-active/{id}
func (h *Handler) isActive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !shared.IsUUID(id) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "User ID must be a UUID")
		return
	}
	u, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, map[string]bool{"active": u.Active})
}

type staffCreateReq struct {
	signupReq
	Roles []string `json:"roles"`
}

// POST /api/users/create — staff provisions an account directly, with an
// optional STAFF role. Admin accounts are never created over HTTP.
func (h *Handler) staffCreate(w http.ResponseWriter, r *http.Request) {
	var in staffCreateReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}

	var fields []apperr.FieldError
	if err := validate.Username(in.Username); err != nil {
		fields = append(fields, apperr.Invalid("username", err))
	}
	if err := validate.Email(in.Email); err != nil {
		fields = append(fields, apperr.Invalid("email", err))
	}
	if err := validate.Password(in.Password); err != nil {
		fields = append(fields, apperr.Invalid("password", err))
	}
	roles := []string{models.RoleCustomer}
	for _, role := range in.Roles {
		switch role {
		case models.RoleCustomer:
		case models.RoleStaff:
			roles = append(roles, models.RoleStaff)
		default:
			fields = append(fields, apperr.FieldError{
				Field: "roles", Code: "invalid", Message: "roles may only contain CUSTOMER or STAFF"})
		}
	}
	if len(fields) > 0 {
		apperr.WriteValidation(w, r, fields...)
		return
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "hash_failed", "Could not process password")
		return
	}

	u, err := h.Store.Provision(r.Context(), storeusers.Draft{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Phone:    in.Phone,
		Address:  in.Address,
	}, hash, roles)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	h.audit(r, "user.create", u.ID, map[string]any{"roles": u.Roles})
	httpx.Created(w, u)
}

// PUT /api/users/{id} — staff edits another account's profile fields.
func (h *Handler) staffUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !shared.IsUUID(id) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "User ID must be a UUID")
		return
	}

	var in profileReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}

	var fields []apperr.FieldError
	if in.Phone != "" {
		if err := validate.Phone(in.Phone); err != nil {
			fields = append(fields, apperr.Invalid("phone", err))
		}
	}
	if in.Address != "" {
		if err := address.Validate(address.Split(in.Address)); err != nil {
			fields = append(fields, apperr.Invalid("address", err))
		}
	}
	if len(fields) > 0 {
		apperr.WriteValidation(w, r, fields...)
		return
	}

	u, err := h.Store.UpdateProfile(r.Context(), id, storeusers.Draft{
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
		Image:   in.Image,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "user.update", u.ID, nil)
	httpx.OK(w, u)
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !shared.IsUUID(id) {
			apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "User ID must be a UUID")
			return
		}
		u, err := h.Store.SetActive(r.Context(), id, active)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit(r, "user.set_active", u.ID, map[string]any{"active": active})
		httpx.OK(w, u)
	}
}

// PUT /api/users/change-role/{id} — flips CUSTOMER <-> STAFF.
func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !shared.IsUUID(id) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "User ID must be a UUID")
		return
	}
	u, err := h.Store.SwapRole(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "user.change_role", u.ID, map[string]any{"roles": u.Roles})
	httpx.OK(w, u)
}

// GET /api/users/myInfo
func (h *Handler) myInfo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserIDFrom(r.Context())
	u, err := h.Store.Get(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, u)
}

type profileReq struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Image   string `json:"image"`
}

// PUT /api/users/myInfo
func (h *Handler) updateMyInfo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserIDFrom(r.Context())

	var in profileReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}

	var fields []apperr.FieldError
	if in.Phone != "" {
		if err := validate.Phone(in.Phone); err != nil {
			fields = append(fields, apperr.Invalid("phone", err))
		}
	}
	if in.Address != "" {
		if err := address.Validate(address.Split(in.Address)); err != nil {
			fields = append(fields, apperr.Invalid("address", err))
		}
	}
	if len(fields) > 0 {
		apperr.WriteValidation(w, r, fields...)
		return
	}

	u, err := h.Store.UpdateProfile(r.Context(), userID, storeusers.Draft{
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
		Image:   in.Image,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, u)
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PUT /api/users/change-my-password
func (h *Handler) changeMyPassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserIDFrom(r.Context())

	var in changePasswordReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	if err := validate.Password(in.NewPassword); err != nil {
		apperr.WriteValidation(w, r, apperr.Invalid("newPassword", err))
		return
	}

	current, err := h.Store.PasswordHash(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	match, _, err := password.Verify(in.CurrentPassword, current)
	if err != nil || !match {
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "wrong_password", "Current password is incorrect")
		return
	}

	hash, err := password.Hash(in.NewPassword)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "hash_failed", "Could not process password")
		return
	}
	if err := h.Store.SetPasswordHash(r.Context(), userID, hash); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OKMessage(w, "Password changed; please sign in again")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storeusers.ErrNotFound) {
		apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "User not found")
		return
	}
	apperr.HandleDBError(w, r, err)
}
