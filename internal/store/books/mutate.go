package books

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huanvo/bookverse-api/internal/models"
)

func (s *Store) Create(ctx context.Context, d Draft) (models.Book, error) {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	q := `
	INSERT INTO books (title, description, price, author_id, publisher_id, category_id,
	                   stock_quantity, published_date, image, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9,''), $10)
	RETURNING ` + bookCols
	return scanBook(s.DB.QueryRowContext(ctx, q,
		d.Title, d.Description, d.Price, d.AuthorID, d.PublisherID, d.CategoryID,
		d.StockQuantity, d.PublishedDate.Time(), d.Image, active,
	))
}

// Update writes the full draft. When the draft omits the active flag the
// stored value is echoed back via COALESCE, never nulled; the same applies
// to the image so a form that does not re-upload keeps the current cover.
func (s *Store) Update(ctx context.Context, id int64, d Draft) (models.Book, error) {
	q := `
	UPDATE books SET
		title = $2, description = $3, price = $4, author_id = $5, publisher_id = $6,
		category_id = $7, stock_quantity = $8, published_date = $9,
		image = COALESCE(NULLIF($10,''), image),
		active = COALESCE($11, active)
	WHERE id = $1
	RETURNING ` + bookCols
	b, err := scanBook(s.DB.QueryRowContext(ctx, q,
		id, d.Title, d.Description, d.Price, d.AuthorID, d.PublisherID, d.CategoryID,
		d.StockQuantity, d.PublishedDate.Time(), d.Image, d.Active,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	return b, err
}

// SetActive is the strictly binary soft-delete toggle.
func (s *Store) SetActive(ctx context.Context, id int64, active bool) (models.Book, error) {
	q := `UPDATE books SET active = $2 WHERE id = $1 RETURNING ` + bookCols
	b, err := scanBook(s.DB.QueryRowContext(ctx, q, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	return b, err
}

func (s *Store) SetImage(ctx context.Context, id int64, url string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE books SET image = $2 WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock reserves quantity inside an order transaction. The guard
// in the WHERE clause makes oversell a zero-rows-affected error instead of
// a negative stock row.
func DecrementStock(ctx context.Context, tx *sql.Tx, bookID int64, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE books SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND active = true AND stock_quantity >= $2`,
		bookID, quantity)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStock
	}
	return nil
}
