// Package notifications is the SQL store for per-user notices (order
// status changes, back-office broadcasts).
package notifications

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/huanvo/bookverse-api/internal/models"
)

var ErrNotFound = errors.New("notification not found")

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

const cols = `id, user_id, title, body, read_at, created_at`

func scan(row interface{ Scan(...any) error }) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt)
	return n, err
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+cols+` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`,
		userID).Scan(&count)
	return count, err
}

func (s *Store) Push(ctx context.Context, userID, title, body string) (models.Notification, error) {
	return scan(s.DB.QueryRowContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING `+cols,
		uuid.NewString(), userID, title, body))
}

// PushAll fans a notice out to every active account and reports how
// many were reached.
func (s *Store) PushAll(ctx context.Context, title, body string) (int, error) {
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body)
		SELECT gen_random_uuid(), id, $1, $2 FROM users WHERE active = true`,
		title, body)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// MarkRead is idempotent; re-reading keeps the original timestamp.
func (s *Store) MarkRead(ctx context.Context, id, userID string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE user_id = $1 AND read_at IS NULL`, userID)
	return err
}
