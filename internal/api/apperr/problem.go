package apperr

import (
	"encoding/json"
	"net/http"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`    // "unique", "not_null", "fk", "invalid", "too_long"
	Message string `json:"message"` // safe to render inline next to the field
}

// Problem is an RFC 7807 response body. Validation failures carry
// FieldErrors; everything else uses Title/Detail.
type Problem struct {
	Type        string       `json:"type,omitempty"`
	Title       string       `json:"title"`
	Status      int          `json:"status"`
	Detail      string       `json:"detail,omitempty"`
	Instance    string       `json:"instance,omitempty"`
	RequestID   string       `json:"request_id,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
}

func Write(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}
	if p.RequestID == "" && r != nil {
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			p.RequestID = rid
		}
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteStatus is the fast path: status + title + detail.
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	Write(w, r, Problem{Status: status, Title: title, Detail: detail})
}

// WriteValidation renders client-side validation failures as a 400 with
// per-field errors. These never reach a store.
func WriteValidation(w http.ResponseWriter, r *http.Request, fields ...FieldError) {
	Write(w, r, Problem{
		Status:      http.StatusBadRequest,
		Title:       "Bad Request",
		FieldErrors: fields,
	})
}

// Invalid builds a FieldError from a validator error.
func Invalid(field string, err error) FieldError {
	return FieldError{Field: field, Code: "invalid", Message: err.Error()}
}
