package books_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/huanvo/bookverse-api/internal/store/books"
)

func bookRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "price", "author_id", "publisher_id",
		"category_id", "stock_quantity", "published_date", "image", "active", "created_at",
	}).AddRow(
		int64(7), "Số Đỏ", "satire", 95000.0, int64(1), int64(2),
		int64(3), 12, time.Date(1936, 10, 1, 0, 0, 0, 0, time.UTC), "", true, time.Now(),
	)
}

func TestGetMapsNoRowsToNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM books WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err = books.New(db).Get(t.Context(), 42)
	if !errors.Is(err, books.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE books SET active = $2 WHERE id = $1 RETURNING`)).
		WithArgs(int64(7), false).
		WillReturnRows(bookRow())

	b, err := books.New(db).SetActive(t.Context(), 7, false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if b.ID != 7 {
		t.Fatalf("want id 7, got %d", b.ID)
	}
	if b.PublishedDate.String() != "1936-10-01" {
		t.Fatalf("published date mangled: %s", b.PublishedDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRandomClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Out-of-range limits fall back to the default carousel size.
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY random() LIMIT $1`)).
		WithArgs(9).
		WillReturnRows(bookRow())

	rows, err := books.New(db).Random(t.Context(), 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDecrementStockOversell(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE books SET stock_quantity = stock_quantity - $2`)).
		WithArgs(int64(5), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	err = books.DecrementStock(t.Context(), tx, 5, 3)
	if !errors.Is(err, books.ErrStock) {
		t.Fatalf("want ErrStock, got %v", err)
	}
}
