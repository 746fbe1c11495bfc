package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgconn"
)

// Well-known constraint names mapped to fields; extend alongside migrations.
var constraintField = map[string]string{
	"books_title_key":           "title",
	"books_author_id_fkey":      "authorId",
	"books_publisher_id_fkey":   "publisherId",
	"books_category_id_fkey":    "categoryId",
	"authors_name_key":          "name",
	"publishers_name_key":       "name",
	"sub_categories_name_key":   "name",
	"sub_categories_sup_fkey":   "supCategoryId",
	"sup_categories_name_key":   "name",
	"users_username_key":        "username",
	"users_email_key":           "email",
	"cart_items_book_id_fkey":   "bookId",
	"cart_items_cart_book_key":  "bookId",
	"orders_user_id_fkey":       "userId",
	"order_items_order_id_fkey": "orderId",
	"reviews_book_id_fkey":      "bookId",
	"reviews_user_id_fkey":      "userId",
}

func fieldFromDetail(detail string) string {
	for _, k := range []string{"title", "name", "username", "email", "author_id", "publisher_id", "category_id", "book_id", "user_id", "id"} {
		if strings.Contains(detail, k) {
			return k
		}
	}
	return ""
}

func fieldFromConstraint(c string) string {
	if f, ok := constraintField[c]; ok {
		return f
	}
	return ""
}

// FromPG maps a pgconn.PgError to a Problem. Returns (Problem, true) if mapped.
func FromPG(err error) (Problem, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return Problem{}, false
	}

	p := Problem{
		Title:  "Database error",
		Status: 500,
		Detail: strings.TrimSpace(pg.Message),
	}

	field := fieldFromConstraint(pg.ConstraintName)
	if field == "" && pg.Detail != "" {
		field = fieldFromDetail(pg.Detail)
	}

	switch pg.Code {
	case "23505": // unique_violation
		p.Status = 409
		p.Title = "Conflict"
		if field == "" {
			field = "resource"
		}
		p.FieldErrors = []FieldError{{Field: field, Code: "unique", Message: "value already exists"}}
		p.Detail = ""
	case "23503": // foreign_key_violation
		p.Status = 409
		p.Title = "Conflict"
		if field == "" {
			field = "resource"
		}
		p.FieldErrors = []FieldError{{Field: field, Code: "fk", Message: "resource is referenced by other records"}}
		p.Detail = ""
	case "23502": // not_null_violation
		p.Status = 400
		p.Title = "Bad Request"
		if field == "" && pg.ColumnName != "" {
			field = pg.ColumnName
		}
		if field == "" {
			field = "field"
		}
		p.FieldErrors = []FieldError{{Field: field, Code: "not_null", Message: "required field is missing"}}
		p.Detail = ""
	case "23514": // check_violation
		p.Status = 422
		p.Title = "Unprocessable Entity"
		if field == "" {
			field = "field"
		}
		p.FieldErrors = []FieldError{{Field: field, Code: "check", Message: "constraint failed"}}
		p.Detail = ""
	case "22P02": // invalid_text_representation
		p.Status = 400
		p.Title = "Bad Request"
		if field == "" {
			field = "id"
		}
		p.FieldErrors = []FieldError{{Field: field, Code: "invalid", Message: "invalid format"}}
		p.Detail = ""
	case "22001": // string_data_right_truncation
		p.Status = 400
		p.Title = "Bad Request"
		if field == "" {
			field = "field"
		}
		p.FieldErrors = []FieldError{{Field: field, Code: "too_long", Message: "value is too long"}}
		p.Detail = ""
	case "40001": // serialization_failure
		p.Status = 409
		p.Title = "Conflict"
		p.Detail = "transaction conflict, please retry"
		p.Retryable = true
	case "40P01": // deadlock_detected
		p.Status = 409
		p.Title = "Conflict"
		p.Detail = "deadlock detected, please retry"
		p.Retryable = true
	default:
		p.Title = "Database error"
		p.Detail = ""
	}

	return p, true
}

// HandleDBError maps err to a Problem and writes it. Returns true if handled.
func HandleDBError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	if p, ok := FromPG(err); ok {
		Write(w, r, p)
		return true
	}
	Write(w, r, Problem{Status: http.StatusInternalServerError, Title: "Internal error"})
	return true
}
