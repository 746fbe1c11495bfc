package users_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/huanvo/bookverse-api/internal/store/users"
)

func TestCredentialsByLoginSplitsRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE username = $1 OR lower(email) = lower($1)`)).
		WithArgs("huan").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "array_to_string", "token_version", "active",
		}).AddRow("u-1", "huan", "huan@example.com", "phc", "CUSTOMER,STAFF", 2, true))

	c, err := users.New(db).CredentialsByLogin(t.Context(), "huan")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(c.Roles) != 2 || c.Roles[0] != "CUSTOMER" || c.Roles[1] != "STAFF" {
		t.Fatalf("roles not split: %v", c.Roles)
	}
	if c.TokenVersion != 2 {
		t.Fatalf("want token_version 2, got %d", c.TokenVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCredentialsByLoginUnknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE username = $1 OR lower(email) = lower($1)`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "array_to_string", "token_version", "active",
		}))

	_, err = users.New(db).CredentialsByLogin(t.Context(), "ghost")
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSetPasswordHashBumpsTokenVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`password_hash = $2, token_version = token_version + 1`)).
		WithArgs("u-1", "new-phc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := users.New(db).SetPasswordHash(t.Context(), "u-1", "new-phc"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetPasswordHashUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`password_hash = $2, token_version = token_version + 1`)).
		WithArgs("ghost", "phc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = users.New(db).SetPasswordHash(t.Context(), "ghost", "phc")
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
