package catalog_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/huanvo/bookverse-api/internal/listing"
	"github.com/huanvo/bookverse-api/internal/store/catalog"
)

func TestAuthorsCreateDefaultsActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO authors (name, bio, image, active)`)).
		WithArgs("Nguyễn Nhật Ánh", "", "", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio", "image", "active", "created_at"}).
			AddRow(int64(1), "Nguyễn Nhật Ánh", "", "", true, time.Now()))

	a, err := catalog.NewAuthors(db).Create(t.Context(), catalog.AuthorDraft{Name: "Nguyễn Nhật Ánh"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !a.Active {
		t.Fatal("new author should default to active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAuthorsListByScopeFiltersInSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM authors WHERE active = false ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio", "image", "active", "created_at"}).
			AddRow(int64(3), "Tô Hoài", "", "", false, time.Now()))

	rows, err := catalog.NewAuthors(db).ListByScope(t.Context(), listing.StatusInactive)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].Active {
		t.Fatalf("want one inactive row, got %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSubCategoriesListBySupCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`sup_category_id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "sup_category_id", "active", "created_at"}).
			AddRow(int64(10), "Văn học Việt Nam", "", int64(2), true, time.Now()).
			AddRow(int64(11), "Văn học nước ngoài", "", int64(2), true, time.Now()))

	rows, err := catalog.NewSubCategories(db).ListBySupCategory(t.Context(), 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
