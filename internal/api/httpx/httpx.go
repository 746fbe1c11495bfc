package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/huanvo/bookverse-api/internal/listing"
)

// APIResponse is the envelope every success payload uses. Code 1000 means
// success; error responses carry the HTTP status as the code.
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// ListResult wraps a page of items with its pagination window.
type ListResult struct {
	Items  any            `json:"items"`
	Window listing.Window `json:"window"`
}

const CodeSuccess = 1000

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, result any) {
	WriteJSON(w, http.StatusOK, APIResponse{Code: CodeSuccess, Result: result})
}

func OKList(w http.ResponseWriter, items any, window listing.Window) {
	WriteJSON(w, http.StatusOK, APIResponse{Code: CodeSuccess, Result: ListResult{Items: items, Window: window}})
}

func OKMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, APIResponse{Code: CodeSuccess, Message: message})
}

func Created(w http.ResponseWriter, result any) {
	WriteJSON(w, http.StatusCreated, APIResponse{Code: CodeSuccess, Result: result})
}

func Error(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, APIResponse{Code: status, Message: message})
}
