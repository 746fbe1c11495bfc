// Package orders is the SQL store for placed orders and their status
// lifecycle.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/store/books"
	"github.com/huanvo/bookverse-api/internal/store/dbx"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("no cart lines selected")
	// ErrTransition is returned when a status change violates the lifecycle.
	ErrTransition = errors.New("invalid status transition")
)

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

const orderCols = `id, code, user_id, status, total_amount, COALESCE(address,''), active, created_at`

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.Code, &o.UserID, &o.Status, &o.TotalAmount, &o.Address, &o.Active, &o.CreatedAt)
	return o, err
}

// Place turns the selected cart lines into a PENDING order in one
// transaction: reserve stock line by line, snapshot unit prices into
// order_items, then drop the purchased lines from the cart. Any stock
// shortfall rolls the whole thing back.
func (s *Store) Place(ctx context.Context, userID, address string, bookIDs []int64) (models.Order, error) {
	if len(bookIDs) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	var order models.Order
	err := dbx.WithinTx(ctx, s.DB, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT ci.book_id, b.title, b.price, ci.quantity
			FROM cart_items ci
			JOIN books b ON b.id = ci.book_id AND b.active = true
			WHERE ci.user_id = $1 AND ci.book_id = ANY($2)
			ORDER BY ci.id ASC
			FOR UPDATE OF ci`, userID, int64Array(bookIDs))
		if err != nil {
			return err
		}
		items, total, err := collectItems(rows)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		for _, it := range items {
			if err := books.DecrementStock(ctx, tx, it.BookID, it.Quantity); err != nil {
				return err
			}
		}

		order, err = scanOrder(tx.QueryRowContext(ctx, `
			INSERT INTO orders (code, user_id, status, total_amount, address)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+orderCols,
			uuid.NewString(), userID, models.OrderPending, total, address))
		if err != nil {
			return err
		}

		for i, it := range items {
			err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, book_id, title, unit_price, quantity)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				order.ID, it.BookID, it.Title, it.UnitPrice, it.Quantity).Scan(&items[i].ID)
			if err != nil {
				return err
			}
		}
		order.Items = items

		_, err = tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND book_id = ANY($2)`,
			userID, int64Array(bookIDs))
		return err
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func collectItems(rows *sql.Rows) ([]models.OrderItem, float64, error) {
	defer rows.Close()
	var items []models.OrderItem
	var total float64
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.BookID, &it.Title, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
		total += it.UnitPrice * float64(it.Quantity)
	}
	return items, total, rows.Err()
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

func (s *Store) list(ctx context.Context, where string, args ...any) ([]models.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders WHERE 1=1` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) ListByScope(ctx context.Context, scope listing.Status) ([]models.Order, error) {
	return s.list(ctx, scopeWhere(scope))
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.list(ctx, ` AND user_id = $1`, userID)
}

func (s *Store) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return s.list(ctx, ` AND status = $1`, status)
}

func (s *Store) Get(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	o.Items, err = s.items(ctx, o.ID)
	return o, err
}

func (s *Store) items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, book_id, title, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.BookID, &it.Title, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order along the lifecycle. The transition is
// re-checked against the stored status inside the transaction, so two racing
// staff updates cannot double-apply.
func (s *Store) UpdateStatus(ctx context.Context, id int64, to models.OrderStatus) (models.Order, error) {
	if !to.Valid() {
		return models.Order{}, ErrTransition
	}
	var order models.Order
	err := dbx.WithinTx(ctx, s.DB, func(tx *sql.Tx) error {
		var current models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !current.CanTransition(to) {
			return ErrTransition
		}
		order, err = scanOrder(tx.QueryRowContext(ctx,
			`UPDATE orders SET status = $2 WHERE id = $1 RETURNING `+orderCols, id, to))
		if err != nil {
			return err
		}
		// A cancelled order releases its reserved stock.
		if to == models.OrderCancelled {
			_, err = tx.ExecContext(ctx, `
				UPDATE books b SET stock_quantity = b.stock_quantity + oi.quantity
				FROM order_items oi
				WHERE oi.order_id = $1 AND b.id = oi.book_id`, id)
		}
		return err
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *Store) SetActive(ctx context.Context, id int64, active bool) (models.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`UPDATE orders SET active = $2 WHERE id = $1 RETURNING `+orderCols, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	return o, err
}

// int64Array renders an int64 slice as a Postgres array literal; pgx in
// database/sql mode accepts the textual form for ANY($n).
func int64Array(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
