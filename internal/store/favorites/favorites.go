// Package favorites is the SQL store for per-user wishlists.
package favorites

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/huanvo/bookverse-api/internal/models"
)

var ErrNotFound = errors.New("book not found")

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

// Add marks a book as favorited. Adding twice is a no-op; a missing or
// deactivated book is reported as not found.
func (s *Store) Add(ctx context.Context, userID string, bookID int64) error {
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO favorites (user_id, book_id)
	SELECT $1, b.id FROM books b WHERE b.id = $2 AND b.active = true
	ON CONFLICT (user_id, book_id) DO NOTHING`, userID, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Zero rows means either an idempotent repeat or a book we refuse to
	// favorite; tell them apart.
	var exists bool
	err = s.DB.QueryRowContext(ctx, `
	SELECT EXISTS (SELECT 1 FROM books WHERE id = $1 AND active = true)`, bookID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// Remove drops a favorite. Removing an absent row is a no-op.
func (s *Store) Remove(ctx context.Context, userID string, bookID int64) error {
	_, err := s.DB.ExecContext(ctx, `
	DELETE FROM favorites WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	return err
}

const favBookCols = `
	b.id, b.title, COALESCE(b.description,''), b.price, b.author_id, b.publisher_id,
	b.category_id, b.stock_quantity, b.published_date, COALESCE(b.image,''), b.active, b.created_at`

// List returns the user's favorited books, most recently added first.
// Deactivated books drop out of the list without being unfavorited, so
// they come back if the book is reactivated.
func (s *Store) List(ctx context.Context, userID string) ([]models.Book, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT `+favBookCols+`
	FROM favorites f
	JOIN books b ON b.id = f.book_id AND b.active = true
	WHERE f.user_id = $1
	ORDER BY f.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		var b models.Book
		var published time.Time
		err := rows.Scan(
			&b.ID, &b.Title, &b.Description, &b.Price, &b.AuthorID, &b.PublisherID,
			&b.CategoryID, &b.StockQuantity, &published, &b.Image, &b.Active, &b.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		y, m, d := published.Date()
		b.PublishedDate = models.Date{Year: y, Month: m, Day: d}
		out = append(out, b)
	}
	return out, rows.Err()
}
