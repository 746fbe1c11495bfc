package favorites_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/huanvo/bookverse-api/internal/store/favorites"
)

func TestAddInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO favorites (user_id, book_id)`)).
		WithArgs("u-1", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := favorites.New(db).Add(t.Context(), "u-1", 10); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Conflict swallowed by DO NOTHING, but the book does exist.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO favorites (user_id, book_id)`)).
		WithArgs("u-1", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := favorites.New(db).Add(t.Context(), "u-1", 10); err != nil {
		t.Fatalf("repeat add should be a no-op, got %v", err)
	}
}

func TestAddUnknownBook(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO favorites (user_id, book_id)`)).
		WithArgs("u-1", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err = favorites.New(db).Add(t.Context(), "u-1", 99)
	if !errors.Is(err, favorites.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
