// Package users is the SQL store for accounts. Roles live in a text[]
// column; we read them through array_to_string to stay on database/sql
// without an array-scanning driver type.
package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
)

var ErrNotFound = errors.New("user not found")

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

const userCols = `id, username, email,
	COALESCE(name,''), COALESCE(phone,''), COALESCE(address,''), COALESCE(image,''),
	array_to_string(roles, ','), active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var roles string
	err := row.Scan(&u.ID, &u.Username, &u.Email,
		&u.Name, &u.Phone, &u.Address, &u.Image,
		&roles, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	if roles != "" {
		u.Roles = strings.Split(roles, ",")
	}
	return u, nil
}

type Draft struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Image    string `json:"image"`
	Active   *bool  `json:"active"`
}

func scopeWhere(scope listing.Status) string {
	switch scope {
	case listing.StatusActive:
		return " AND active = true"
	case listing.StatusInactive:
		return " AND active = false"
	}
	return ""
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]models.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE 1=1` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) ListByScope(ctx context.Context, scope listing.Status) ([]models.User, error) {
	return s.list(ctx, scopeWhere(scope))
}

// ListByRole backs the back office's customers and staffs tabs. Admins are
// deliberately absent from both.
func (s *Store) ListByRole(ctx context.Context, role string, scope listing.Status) ([]models.User, error) {
	return s.list(ctx, ` AND $1 = ANY(roles)`+scopeWhere(scope), role)
}

func (s *Store) Get(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// IDByEmail is the lightweight lookup the password-reset flow starts with.
func (s *Store) IDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM users WHERE lower(email) = lower($1) AND active = true`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

// Create inserts a signup with a freshly hashed password. New accounts
// always start as active customers.
func (s *Store) Create(ctx context.Context, d Draft, passwordHash string) (models.User, error) {
	return s.Provision(ctx, d, passwordHash, []string{models.RoleCustomer})
}

// Provision inserts an account with explicit roles. Used by the bootstrap
// CLI to create admin accounts, which the HTTP surface never does.
func (s *Store) Provision(ctx context.Context, d Draft, passwordHash string, roles []string) (models.User, error) {
	q := `
	INSERT INTO users (username, email, password_hash, name, phone, address, roles)
	VALUES ($1, lower($2), $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), string_to_array($7, ','))
	RETURNING ` + userCols
	return scanUser(s.DB.QueryRowContext(ctx, q,
		d.Username, d.Email, passwordHash, d.Name, d.Phone, d.Address, strings.Join(roles, ",")))
}

func (s *Store) UpdateProfile(ctx context.Context, id string, d Draft) (models.User, error) {
	q := `
	UPDATE users SET
		name = NULLIF($2,''), phone = NULLIF($3,''), address = NULLIF($4,''),
		image = COALESCE(NULLIF($5,''), image),
		active = COALESCE($6, active),
		updated_at = now()
	WHERE id = $1
	RETURNING ` + userCols
	u, err := scanUser(s.DB.QueryRowContext(ctx, q, id, d.Name, d.Phone, d.Address, d.Image, d.Active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) (models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`UPDATE users SET active = $2, updated_at = now() WHERE id = $1 RETURNING `+userCols, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// SwapRole flips an account between CUSTOMER and STAFF. Admin accounts are
// provisioned out of band and never touched here.
func (s *Store) SwapRole(ctx context.Context, id string) (models.User, error) {
	q := `
	UPDATE users SET
		roles = CASE WHEN $2 = ANY(roles)
			THEN array_replace(roles, $2::text, $3::text)
			ELSE array_replace(roles, $3::text, $2::text) END,
		updated_at = now()
	WHERE id = $1 AND NOT ($4 = ANY(roles))
	RETURNING ` + userCols
	u, err := scanUser(s.DB.QueryRowContext(ctx, q, id,
		models.RoleCustomer, models.RoleStaff, models.RoleAdmin))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// Credentials is what the login handler needs to verify a password and
// mint tokens.
type Credentials struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	TokenVersion int
	Active       bool
}

// CredentialsByLogin resolves a login identifier that may be a username or
// an email.
func (s *Store) CredentialsByLogin(ctx context.Context, login string) (Credentials, error) {
	var c Credentials
	var roles string
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, array_to_string(roles, ','), token_version, active
		FROM users
		WHERE username = $1 OR lower(email) = lower($1)`,
		login).Scan(&c.ID, &c.Username, &c.Email, &c.PasswordHash, &roles, &c.TokenVersion, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, err
	}
	if roles != "" {
		c.Roles = strings.Split(roles, ",")
	}
	return c, nil
}

func (s *Store) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.DB.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

func (s *Store) TokenVersion(ctx context.Context, id string) (int, error) {
	var v int
	err := s.DB.QueryRowContext(ctx,
		`SELECT token_version FROM users WHERE id = $1 AND active = true`, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return v, err
}

// SetPasswordHash rewrites the hash and bumps token_version so every
// previously issued token dies with the old password.
func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, token_version = token_version + 1, updated_at = now()
		WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RehashPassword upgrades a hash in place without revoking sessions.
func (s *Store) RehashPassword(ctx context.Context, id, hash string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	return err
}
