// Package reviews is the SQL store for book comments.
package reviews

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huanvo/bookverse-api/internal/models"
)

var (
	ErrNotFound = errors.New("review not found")
	// ErrNotPurchased guards the reviewed-only rule: a user may only comment
	// on a book they have a delivered order for.
	ErrNotPurchased = errors.New("book not purchased")
)

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

const reviewCols = `id, user_id, book_id, comment, created_at`

func scanReview(row interface{ Scan(...any) error }) (models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.UserID, &r.BookID, &r.Comment, &r.CreatedAt)
	return r, err
}

func (s *Store) ListForBook(ctx context.Context, bookID int64) ([]models.Review, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+reviewCols+` FROM reviews
		WHERE book_id = $1 ORDER BY created_at DESC, id DESC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Create inserts a comment after checking the user actually received the
// book. The purchase check and insert run as one statement so there is no
// window to race.
func (s *Store) Create(ctx context.Context, userID string, bookID int64, comment string) (models.Review, error) {
	q := `
	INSERT INTO reviews (user_id, book_id, comment)
	SELECT $1, $2, $3
	WHERE EXISTS (
		SELECT 1 FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1 AND oi.book_id = $2 AND o.status = $4
	)
	RETURNING ` + reviewCols
	r, err := scanReview(s.DB.QueryRowContext(ctx, q, userID, bookID, comment, models.OrderDelivered))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Review{}, ErrNotPurchased
	}
	return r, err
}

// Delete removes the user's own review; staff pass an empty userID to
// moderate any review.
func (s *Store) Delete(ctx context.Context, id int64, userID string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND ($2 = '' OR user_id = $2)`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
