package admin

import (
	"context"
	"time"
)

// ===== DTOs =====

type AuditRow struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	TargetID  *string   `json:"targetId,omitempty"`
	Meta      any       `json:"meta"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditFilter struct {
	ActorID  string
	TargetID string
	Action   string
	Since    *time.Time
	Until    *time.Time
	Page     int
	Size     int
}

type StatsResponse struct {
	UsersTotal       int            `json:"usersTotal"`
	UsersActive      int            `json:"usersActive"`
	Customers        int            `json:"customers"`
	Staffs           int            `json:"staffs"`
	SignupsLast24h   int            `json:"signupsLast24h"`
	BooksTotal       int            `json:"booksTotal"`
	BooksActive      int            `json:"booksActive"`
	OrdersByStatus   map[string]int `json:"ordersByStatus"`
	RevenueDelivered float64        `json:"revenueDelivered"`
	ReviewsTotal     int            `json:"reviewsTotal"`
}

// ===== Store Interface =====

type Store interface {
	// Stats
	CountUsers(ctx context.Context) (total, active int, err error)
	CountByRole(ctx context.Context, role string) (int, error)
	CountSignupsLast24h(ctx context.Context) (int, error)
	CountBooks(ctx context.Context) (total, active int, err error)
	OrdersByStatus(ctx context.Context) (map[string]int, error)
	RevenueDelivered(ctx context.Context) (float64, error)
	CountReviews(ctx context.Context) (int, error)

	// Audit
	InsertAudit(ctx context.Context, actorID, action, targetID string, meta any) error
	ListAudit(ctx context.Context, f AuditFilter) ([]AuditRow, int, error)
}
