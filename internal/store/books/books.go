// Package books is the SQL store for the book catalog.
package books

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/store/shared"
)

var (
	ErrNotFound = errors.New("book not found")
	ErrStock    = errors.New("insufficient stock")
)

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

// Draft is the create/update payload. Active is a pointer so an update
// that does not expose the flag echoes the stored value instead of
// nulling it out.
type Draft struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Price         float64     `json:"price"`
	AuthorID      int64       `json:"authorId"`
	PublisherID   int64       `json:"publisherId"`
	CategoryID    int64       `json:"categoryId"`
	StockQuantity int         `json:"stockQuantity"`
	PublishedDate models.Date `json:"publishedDate"`
	Image         string      `json:"image"`
	Active        *bool       `json:"active"`
}

const bookCols = `
	id, title, COALESCE(description,''), price, author_id, publisher_id, category_id,
	stock_quantity, published_date, COALESCE(image,''), active, created_at`

func scanBook(row interface{ Scan(...any) error }) (models.Book, error) {
	var b models.Book
	var published time.Time
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &b.Price, &b.AuthorID, &b.PublisherID,
		&b.CategoryID, &b.StockQuantity, &published, &b.Image, &b.Active, &b.CreatedAt,
	)
	if err != nil {
		return models.Book{}, err
	}
	y, m, d := published.Date()
	b.PublishedDate = models.Date{Year: y, Month: m, Day: d}
	return b, nil
}

func scopeWhere(scope listing.Status) string {
	switch scope {
	case listing.StatusActive:
		return "WHERE active = true"
	case listing.StatusInactive:
		return "WHERE active = false"
	}
	return ""
}

// ListByScope returns the status-scoped snapshot ordered by recency.
// Search/sort/paging happen in the listing pipeline, status filtering in SQL
// so inactive rows are never over-fetched for storefront calls.
func (s *Store) ListByScope(ctx context.Context, scope listing.Status) ([]models.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books ` + scopeWhere(scope) + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (models.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	b, err := scanBook(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	return b, err
}

// Random returns up to limit active books for the storefront carousel.
func (s *Store) Random(ctx context.Context, limit int) ([]models.Book, error) {
	if limit < 1 || limit > 50 {
		limit = 9
	}
	q := `SELECT ` + bookCols + ` FROM books WHERE active = true ORDER BY random() LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SearchActiveByTitle is the storefront title search (case-insensitive
// substring; accents are matched as typed).
func (s *Store) SearchActiveByTitle(ctx context.Context, title string) ([]models.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books
	WHERE active = true AND title ILIKE '%' || $1 || '%'
	ORDER BY title ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, q, shared.EscapeLike(title))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ActiveBySubCategory lists a subcategory's active books.
func (s *Store) ActiveBySubCategory(ctx context.Context, categoryID int64) ([]models.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books
	WHERE active = true AND category_id = $1
	ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
