package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
)

type PublisherDraft struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}

type Publishers struct{ DB *sql.DB }

func NewPublishers(db *sql.DB) *Publishers { return &Publishers{DB: db} }

const publisherCols = `id, name, COALESCE(address,''), active, created_at`

func scanPublisher(row interface{ Scan(...any) error }) (models.Publisher, error) {
	var p models.Publisher
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Active, &p.CreatedAt)
	return p, err
}

func (s *Publishers) ListByScope(ctx context.Context, scope listing.Status) ([]models.Publisher, error) {
	q := `SELECT ` + publisherCols + ` FROM publishers ` + scopeWhere(scope) + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Publisher
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Publishers) Get(ctx context.Context, id int64) (models.Publisher, error) {
	p, err := scanPublisher(s.DB.QueryRowContext(ctx, `SELECT `+publisherCols+` FROM publishers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Publisher{}, ErrNotFound
	}
	return p, err
}

func (s *Publishers) Create(ctx context.Context, d PublisherDraft) (models.Publisher, error) {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	q := `
	INSERT INTO publishers (name, address, active)
	VALUES ($1, NULLIF($2,''), $3)
	RETURNING ` + publisherCols
	return scanPublisher(s.DB.QueryRowContext(ctx, q, d.Name, d.Address, active))
}

func (s *Publishers) Update(ctx context.Context, id int64, d PublisherDraft) (models.Publisher, error) {
	q := `
	UPDATE publishers SET
		name = $2, address = NULLIF($3,''),
		active = COALESCE($4, active)
	WHERE id = $1
	RETURNING ` + publisherCols
	p, err := scanPublisher(s.DB.QueryRowContext(ctx, q, id, d.Name, d.Address, d.Active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Publisher{}, ErrNotFound
	}
	return p, err
}

func (s *Publishers) SetActive(ctx context.Context, id int64, active bool) (models.Publisher, error) {
	p, err := scanPublisher(s.DB.QueryRowContext(ctx,
		`UPDATE publishers SET active = $2 WHERE id = $1 RETURNING `+publisherCols, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Publisher{}, ErrNotFound
	}
	return p, err
}
