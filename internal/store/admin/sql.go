// Package adminstore backs the back-office dashboard: headline counts and
// the audit trail of staff actions.
package adminstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	admin "github.com/huanvo/bookverse-api/internal/api/handlers/admin"
)

type Store struct{ db *sql.DB }

func New(db *sql.DB) admin.Store { return &Store{db: db} }

// ---------- stats ----------

func (s *Store) CountUsers(ctx context.Context) (total, active int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM users`
	err = s.db.QueryRowContext(ctx, q).Scan(&total, &active)
	return total, active, err
}

func (s *Store) CountByRole(ctx context.Context, role string) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE $1 = ANY(roles) AND active`
	var n int
	err := s.db.QueryRowContext(ctx, q, role).Scan(&n)
	return n, err
}

func (s *Store) CountSignupsLast24h(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE created_at >= now() - interval '24 hours'`
	var n int
	err := s.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

func (s *Store) CountBooks(ctx context.Context) (total, active int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM books`
	err = s.db.QueryRowContext(ctx, q).Scan(&total, &active)
	return total, active, err
}

func (s *Store) OrdersByStatus(ctx context.Context) (map[string]int, error) {
	const q = `SELECT status, COUNT(*) FROM orders GROUP BY status`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (s *Store) RevenueDelivered(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'DELIVERED'`
	var sum float64
	err := s.db.QueryRowContext(ctx, q).Scan(&sum)
	return sum, err
}

func (s *Store) CountReviews(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM reviews`
	var n int
	err := s.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

// ---------- audit ----------

func buildAuditWhere(f admin.AuditFilter) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)
	if f.ActorID != "" {
		args = append(args, f.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if f.TargetID != "" {
		args = append(args, f.TargetID)
		clauses = append(clauses, fmt.Sprintf("target_id = $%d", len(args)))
	}
	if f.Action != "" {
		args = append(args, f.Action)
		clauses = append(clauses, fmt.Sprintf("action = $%d", len(args)))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.Until != nil {
		args = append(args, *f.Until)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) InsertAudit(ctx context.Context, actorID, action, targetID string, meta any) error {
	var metaJSON string
	if meta == nil {
		metaJSON = "{}"
	} else {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metaJSON = string(b)
	}
	const q = `
INSERT INTO staff_audit (actor_id, action, target_id, meta, created_at)
VALUES ($1, $2, $3, $4::jsonb, $5)`
	_, err := s.db.ExecContext(ctx, q, actorID, action, nullIfEmpty(targetID), metaJSON, time.Now().UTC())
	return err
}

func (s *Store) ListAudit(ctx context.Context, f admin.AuditFilter) ([]admin.AuditRow, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 || f.Size > 200 {
		f.Size = 25
	}

	where, args := buildAuditWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM staff_audit "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Size
	argsWithPage := append(append([]any{}, args...), f.Size, offset)

	listSQL := `
SELECT id, actor_id::text, action, target_id::text, meta, created_at
FROM staff_audit
` + where + `
ORDER BY created_at DESC
LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)

	rows, err := s.db.QueryContext(ctx, listSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]admin.AuditRow, 0, f.Size)
	for rows.Next() {
		var row admin.AuditRow
		var tgt sql.NullString
		var metaRaw json.RawMessage
		if err := rows.Scan(&row.ID, &row.ActorID, &row.Action, &tgt, &metaRaw, &row.CreatedAt); err != nil {
			return nil, 0, err
		}
		if tgt.Valid {
			row.TargetID = &tgt.String
		}
		if len(metaRaw) > 0 {
			var meta any
			if err := json.Unmarshal(metaRaw, &meta); err == nil {
				row.Meta = meta
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
