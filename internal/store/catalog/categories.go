package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
)

// ---- subcategories (leaf level, every book points at one) ----

type SubCategoryDraft struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	SupCategoryID int64  `json:"supCategoryId"`
	Active        *bool  `json:"active"`
}

type SubCategories struct{ DB *sql.DB }

func NewSubCategories(db *sql.DB) *SubCategories { return &SubCategories{DB: db} }

const subCatCols = `id, name, COALESCE(description,''), sup_category_id, active, created_at`

func scanSubCategory(row interface{ Scan(...any) error }) (models.SubCategory, error) {
	var c models.SubCategory
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SupCategoryID, &c.Active, &c.CreatedAt)
	return c, err
}

func (s *SubCategories) ListByScope(ctx context.Context, scope listing.Status) ([]models.SubCategory, error) {
	q := `SELECT ` + subCatCols + ` FROM sub_categories ` + scopeWhere(scope) + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubCategory
	for rows.Next() {
		c, err := scanSubCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListBySupCategory backs the storefront's category tree.
func (s *SubCategories) ListBySupCategory(ctx context.Context, supID int64) ([]models.SubCategory, error) {
	q := `SELECT ` + subCatCols + ` FROM sub_categories WHERE sup_category_id = $1 AND active = true ORDER BY name ASC`
	rows, err := s.DB.QueryContext(ctx, q, supID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubCategory
	for rows.Next() {
		c, err := scanSubCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SubCategories) Get(ctx context.Context, id int64) (models.SubCategory, error) {
	c, err := scanSubCategory(s.DB.QueryRowContext(ctx, `SELECT `+subCatCols+` FROM sub_categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SubCategory{}, ErrNotFound
	}
	return c, err
}

func (s *SubCategories) Create(ctx context.Context, d SubCategoryDraft) (models.SubCategory, error) {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	q := `
	INSERT INTO sub_categories (name, description, sup_category_id, active)
	VALUES ($1, NULLIF($2,''), $3, $4)
	RETURNING ` + subCatCols
	return scanSubCategory(s.DB.QueryRowContext(ctx, q, d.Name, d.Description, d.SupCategoryID, active))
}

func (s *SubCategories) Update(ctx context.Context, id int64, d SubCategoryDraft) (models.SubCategory, error) {
	q := `
	UPDATE sub_categories SET
		name = $2, description = NULLIF($3,''), sup_category_id = $4,
		active = COALESCE($5, active)
	WHERE id = $1
	RETURNING ` + subCatCols
	c, err := scanSubCategory(s.DB.QueryRowContext(ctx, q, id, d.Name, d.Description, d.SupCategoryID, d.Active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SubCategory{}, ErrNotFound
	}
	return c, err
}

func (s *SubCategories) SetActive(ctx context.Context, id int64, active bool) (models.SubCategory, error) {
	c, err := scanSubCategory(s.DB.QueryRowContext(ctx,
		`UPDATE sub_categories SET active = $2 WHERE id = $1 RETURNING `+subCatCols, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SubCategory{}, ErrNotFound
	}
	return c, err
}

// ---- supcategories (top level groups) ----

type SupCategoryDraft struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

type SupCategories struct{ DB *sql.DB }

func NewSupCategories(db *sql.DB) *SupCategories { return &SupCategories{DB: db} }

const supCatCols = `id, name, active, created_at`

func scanSupCategory(row interface{ Scan(...any) error }) (models.SupCategory, error) {
	var c models.SupCategory
	err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	return c, err
}

func (s *SupCategories) ListByScope(ctx context.Context, scope listing.Status) ([]models.SupCategory, error) {
	q := `SELECT ` + supCatCols + ` FROM sup_categories ` + scopeWhere(scope) + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SupCategory
	for rows.Next() {
		c, err := scanSupCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SupCategories) Get(ctx context.Context, id int64) (models.SupCategory, error) {
	c, err := scanSupCategory(s.DB.QueryRowContext(ctx, `SELECT `+supCatCols+` FROM sup_categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SupCategory{}, ErrNotFound
	}
	return c, err
}

func (s *SupCategories) Create(ctx context.Context, d SupCategoryDraft) (models.SupCategory, error) {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return scanSupCategory(s.DB.QueryRowContext(ctx,
		`INSERT INTO sup_categories (name, active) VALUES ($1, $2) RETURNING `+supCatCols, d.Name, active))
}

func (s *SupCategories) Update(ctx context.Context, id int64, d SupCategoryDraft) (models.SupCategory, error) {
	c, err := scanSupCategory(s.DB.QueryRowContext(ctx,
		`UPDATE sup_categories SET name = $2, active = COALESCE($3, active) WHERE id = $1 RETURNING `+supCatCols,
		id, d.Name, d.Active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SupCategory{}, ErrNotFound
	}
	return c, err
}

func (s *SupCategories) SetActive(ctx context.Context, id int64, active bool) (models.SupCategory, error) {
	c, err := scanSupCategory(s.DB.QueryRowContext(ctx,
		`UPDATE sup_categories SET active = $2 WHERE id = $1 RETURNING `+supCatCols, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SupCategory{}, ErrNotFound
	}
	return c, err
}
