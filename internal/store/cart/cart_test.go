package cart_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/huanvo/bookverse-api/internal/store/cart"
)

func TestGetSumsSubtotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN books b ON b.id = ci.book_id AND b.active = true`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "book_id", "title", "image", "price", "quantity", "subtotal",
		}).
			AddRow(int64(1), int64(10), "Dế Mèn Phiêu Lưu Ký", "", 50000.0, 2, 100000.0).
			AddRow(int64(2), int64(11), "Số Đỏ", "", 95000.0, 1, 95000.0))

	c, err := cart.New(db).Get(t.Context(), "u-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(c.Lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(c.Lines))
	}
	if c.Total != 195000.0 {
		t.Fatalf("want total 195000, got %v", c.Total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAddOneUnavailableBook(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Insert-select finds no active in-stock book, so the upsert returns
	// nothing at all.
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO cart_items (user_id, book_id, quantity)`)).
		WithArgs("u-1", int64(99), 1).
		WillReturnError(sql.ErrNoRows)

	_, err = cart.New(db).AddOne(t.Context(), "u-1", 99)
	if !errors.Is(err, cart.ErrBookUnavailable) {
		t.Fatalf("want ErrBookUnavailable, got %v", err)
	}
}

func TestRemoveOneDeletesLastUnit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2 AND quantity <= 1`)).
		WithArgs("u-1", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	line, err := cart.New(db).RemoveOne(t.Context(), "u-1", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if line.ID != 0 || line.BookID != 10 {
		t.Fatalf("want gone-line marker, got %+v", line)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveOneMissingLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`AND quantity <= 1`)).
		WithArgs("u-1", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE cart_items SET quantity = quantity - 1`)).
		WithArgs("u-1", int64(10)).
		WillReturnError(sql.ErrNoRows)

	_, err = cart.New(db).RemoveOne(t.Context(), "u-1", 10)
	if !errors.Is(err, cart.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
