// Package cart is the SQL store for per-user shopping carts. Every mutation
// returns the authoritative post-change line so the client renders what the
// database holds, not what it asked for.
package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huanvo/bookverse-api/internal/models"
)

var (
	ErrNotFound = errors.New("cart item not found")
	// ErrBookUnavailable covers both unknown and deactivated books.
	ErrBookUnavailable = errors.New("book unavailable")
)

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

const lineCols = `ci.id, ci.book_id, b.title, COALESCE(b.image,''), b.price, ci.quantity,
	b.price * ci.quantity`

func scanLine(row interface{ Scan(...any) error }) (models.CartLine, error) {
	var l models.CartLine
	err := row.Scan(&l.ID, &l.BookID, &l.Title, &l.Image, &l.Price, &l.Quantity, &l.Subtotal)
	return l, err
}

// Get returns the user's cart with lines joined against live book rows.
// Lines whose book has been deactivated since they were added are omitted.
func (s *Store) Get(ctx context.Context, userID string) (models.Cart, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+lineCols+`
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id AND b.active = true
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC`, userID)
	if err != nil {
		return models.Cart{}, err
	}
	defer rows.Close()

	cart := models.Cart{UserID: userID, Lines: []models.CartLine{}}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return models.Cart{}, err
		}
		cart.Lines = append(cart.Lines, l)
		cart.Total += l.Subtotal
	}
	return cart, rows.Err()
}

// AddOne increments the line for a book by one, creating it if needed.
func (s *Store) AddOne(ctx context.Context, userID string, bookID int64) (models.CartLine, error) {
	return s.add(ctx, userID, bookID, 1)
}

// AddMultiple increments the line by the given quantity.
func (s *Store) AddMultiple(ctx context.Context, userID string, bookID int64, quantity int) (models.CartLine, error) {
	return s.add(ctx, userID, bookID, quantity)
}

func (s *Store) add(ctx context.Context, userID string, bookID int64, quantity int) (models.CartLine, error) {
	// The quantity is clamped to available stock at write time; the upsert's
	// LEAST keeps a repeated add from exceeding what can actually ship.
	q := `
	INSERT INTO cart_items (user_id, book_id, quantity)
	SELECT $1, b.id, LEAST($3, b.stock_quantity)
	FROM books b WHERE b.id = $2 AND b.active = true AND b.stock_quantity > 0
	ON CONFLICT (user_id, book_id) DO UPDATE
	SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity,
	                     (SELECT stock_quantity FROM books WHERE id = EXCLUDED.book_id))
	RETURNING id`
	var lineID int64
	err := s.DB.QueryRowContext(ctx, q, userID, bookID, quantity).Scan(&lineID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CartLine{}, ErrBookUnavailable
	}
	if err != nil {
		return models.CartLine{}, err
	}
	return s.line(ctx, lineID)
}

// RemoveOne decrements the line by one and deletes it when it hits zero.
// A zero-ID line in the result signals the line is gone.
func (s *Store) RemoveOne(ctx context.Context, userID string, bookID int64) (models.CartLine, error) {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2 AND quantity <= 1`,
		userID, bookID)
	if err != nil {
		return models.CartLine{}, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return models.CartLine{BookID: bookID}, nil
	}
	var lineID int64
	err = s.DB.QueryRowContext(ctx, `
		UPDATE cart_items SET quantity = quantity - 1
		WHERE user_id = $1 AND book_id = $2
		RETURNING id`, userID, bookID).Scan(&lineID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CartLine{}, ErrNotFound
	}
	if err != nil {
		return models.CartLine{}, err
	}
	return s.line(ctx, lineID)
}

// ClearItem drops the whole line regardless of quantity.
func (s *Store) ClearItem(ctx context.Context, userID string, bookID int64) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQuantity sets the line to an absolute quantity, clamped to stock.
// Quantities below one are a caller bug; validation rejects them upstream.
func (s *Store) UpdateQuantity(ctx context.Context, userID string, bookID int64, quantity int) (models.CartLine, error) {
	var lineID int64
	err := s.DB.QueryRowContext(ctx, `
		UPDATE cart_items ci SET quantity = LEAST($3, b.stock_quantity)
		FROM books b
		WHERE ci.user_id = $1 AND ci.book_id = $2 AND b.id = ci.book_id AND b.active = true
		RETURNING ci.id`, userID, bookID, quantity).Scan(&lineID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CartLine{}, ErrNotFound
	}
	if err != nil {
		return models.CartLine{}, err
	}
	return s.line(ctx, lineID)
}

// Clear empties the cart. Order placement calls this inside its transaction
// for the purchased subset instead.
func (s *Store) Clear(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

// Summary is one row of the back-office cart overview.
type Summary struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Lines    int     `json:"lines"`
	Total    float64 `json:"total"`
}

// Summaries lists every non-empty cart with its line count and value.
// Only lines whose book is still sold count toward the total.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT ci.user_id, u.username, COUNT(*), COALESCE(SUM(b.price * ci.quantity), 0)
		FROM cart_items ci
		JOIN users u ON u.id = ci.user_id
		JOIN books b ON b.id = ci.book_id AND b.active = true
		GROUP BY ci.user_id, u.username
		ORDER BY u.username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.UserID, &sm.Username, &sm.Lines, &sm.Total); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *Store) line(ctx context.Context, id int64) (models.CartLine, error) {
	l, err := scanLine(s.DB.QueryRowContext(ctx, `
		SELECT `+lineCols+`
		FROM cart_items ci JOIN books b ON b.id = ci.book_id
		WHERE ci.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CartLine{}, ErrNotFound
	}
	return l, err
}
