package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
)

type AuthorDraft struct {
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Image  string `json:"image"`
	Active *bool  `json:"active"`
}

type Authors struct{ DB *sql.DB }

func NewAuthors(db *sql.DB) *Authors { return &Authors{DB: db} }

const authorCols = `id, name, COALESCE(bio,''), COALESCE(image,''), active, created_at`

func scanAuthor(row interface{ Scan(...any) error }) (models.Author, error) {
	var a models.Author
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.Image, &a.Active, &a.CreatedAt)
	return a, err
}

func (s *Authors) ListByScope(ctx context.Context, scope listing.Status) ([]models.Author, error) {
	q := `SELECT ` + authorCols + ` FROM authors ` + scopeWhere(scope) + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Authors) Get(ctx context.Context, id int64) (models.Author, error) {
	a, err := scanAuthor(s.DB.QueryRowContext(ctx, `SELECT `+authorCols+` FROM authors WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, ErrNotFound
	}
	return a, err
}

func (s *Authors) Create(ctx context.Context, d AuthorDraft) (models.Author, error) {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	q := `
	INSERT INTO authors (name, bio, image, active)
	VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4)
	RETURNING ` + authorCols
	return scanAuthor(s.DB.QueryRowContext(ctx, q, d.Name, d.Bio, d.Image, active))
}

func (s *Authors) Update(ctx context.Context, id int64, d AuthorDraft) (models.Author, error) {
	q := `
	UPDATE authors SET
		name = $2, bio = NULLIF($3,''),
		image = COALESCE(NULLIF($4,''), image),
		active = COALESCE($5, active)
	WHERE id = $1
	RETURNING ` + authorCols
	a, err := scanAuthor(s.DB.QueryRowContext(ctx, q, id, d.Name, d.Bio, d.Image, d.Active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, ErrNotFound
	}
	return a, err
}

func (s *Authors) SetActive(ctx context.Context, id int64, active bool) (models.Author, error) {
	a, err := scanAuthor(s.DB.QueryRowContext(ctx,
		`UPDATE authors SET active = $2 WHERE id = $1 RETURNING `+authorCols, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, ErrNotFound
	}
	return a, err
}
