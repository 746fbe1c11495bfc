package adminstore_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	admin "github.com/huanvo/bookverse-api/internal/api/handlers/admin"
	adminstore "github.com/huanvo/bookverse-api/internal/store/admin"
)

func TestCountUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := adminstore.New(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM users`,
	)).WillReturnRows(
		sqlmock.NewRows([]string{"count", "count"}).AddRow(42, 30),
	)

	total, active, err := store.CountUsers(t.Context())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 42 || active != 30 {
		t.Fatalf("want total=42 active=30; got total=%d active=%d", total, active)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCountByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := adminstore.New(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*) FROM users WHERE $1 = ANY(roles) AND active`,
	)).WithArgs("STAFF").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.CountByRole(t.Context(), "STAFF")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 7 {
		t.Fatalf("want 7, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestOrdersByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := adminstore.New(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT status, COUNT(*) FROM orders GROUP BY status`,
	)).WillReturnRows(
		sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 3).
			AddRow("DELIVERED", 12),
	)

	byStatus, err := store.OrdersByStatus(t.Context())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if byStatus["PENDING"] != 3 || byStatus["DELIVERED"] != 12 {
		t.Fatalf("unexpected counts: %v", byStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListAudit_Basic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := adminstore.New(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*) FROM staff_audit`,
	)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, actor_id::text, action, target_id::text, meta, created_at`,
	)).WithArgs(25, 0).WillReturnRows(
		sqlmock.NewRows([]string{"id", "actor_id", "action", "target_id", "meta", "created_at"}).
			AddRow(int64(1), "staff-1", "book.deactivate", "17", []byte(`{"title":"Dune"}`), now),
	)

	rows, total, err := store.ListAudit(t.Context(), admin.AuditFilter{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("want 1 row, got total=%d len=%d", total, len(rows))
	}
	if rows[0].Action != "book.deactivate" || rows[0].TargetID == nil || *rows[0].TargetID != "17" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsertAudit_NilMeta(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := adminstore.New(db)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO staff_audit (actor_id, action, target_id, meta, created_at)`,
	)).WithArgs("staff-1", "user.role_swap", nil, "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.InsertAudit(t.Context(), "staff-1", "user.role_swap", "", nil); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
