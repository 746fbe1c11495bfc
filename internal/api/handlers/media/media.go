// Package media hands out presigned object-storage URLs so covers and
// avatars upload straight to the bucket instead of through the API.
package media

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/storage/s3"
	"github.com/huanvo/bookverse-api/internal/store/books"
	"github.com/huanvo/bookverse-api/internal/store/shared"
	storeusers "github.com/huanvo/bookverse-api/internal/store/users"
)

var contentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Handler struct {
	S3    *s3.S3Client
	Books *books.Store
	Users *storeusers.Store
}

func NewHandler(s3c *s3.S3Client, db *sql.DB) *Handler {
	return &Handler{S3: s3c, Books: books.New(db), Users: storeusers.New(db)}
}

// Mount registers the upload routes. S3 being unconfigured just leaves
// them unregistered; everything else works without object storage.
func (h *Handler) Mount(mux *http.ServeMux, staff func(http.Handler) http.Handler, authed func(http.Handler) http.Handler) {
	if h.S3 == nil {
		return
	}
	mux.Handle("POST /api/books/{id}/cover-upload", staff(http.HandlerFunc(h.coverUpload)))
	mux.HandleFunc("GET /api/books/{id}/cover", h.coverDownload)
	mux.Handle("POST /api/users/avatar-upload", authed(http.HandlerFunc(h.avatarUpload)))
	mux.Handle("GET /api/users/my-avatar", authed(http.HandlerFunc(h.avatarDownload)))
}

type uploadReq struct {
	ContentType string `json:"contentType"`
}

type uploadResp struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Key       string `json:"key"`
}

// POST /api/books/{id}/cover-upload
func (h *Handler) coverUpload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Book ID must be a positive integer")
		return
	}
	book, err := h.Books.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Book not found")
			return
		}
		apperr.HandleDBError(w, r, err)
		return
	}

	contentType, ext, ok := decodeUpload(w, r)
	if !ok {
		return
	}
	key := "covers/" + strconv.FormatInt(book.ID, 10) + "-" + shared.Slugify(book.Title) + ext

	resp, ok := h.presign(w, r, key, contentType)
	if !ok {
		return
	}
	if err := h.Books.SetImage(r.Context(), book.ID, resp.PublicURL); err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	// A replaced cover leaves its old object behind; drop it best effort.
	if old, ok := objectKey(book.Image); ok && old != resp.Key {
		_ = h.S3.DeleteObject(r.Context(), old)
	}
	httpx.OK(w, resp)
}

// GET /api/books/{id}/cover — short-lived download URL for the stored cover.
func (h *Handler) coverDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "Book ID must be a positive integer")
		return
	}
	book, err := h.Books.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Book not found")
			return
		}
		apperr.HandleDBError(w, r, err)
		return
	}
	key, ok := objectKey(book.Image)
	if !ok {
		apperr.WriteStatus(w, r, http.StatusNotFound, "no_cover", "Book has no stored cover")
		return
	}
	url, err := h.S3.GeneratePresignedDownloadURL(r.Context(), key)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusBadGateway, "storage_error", "Could not presign download")
		return
	}
	httpx.OK(w, map[string]string{"downloadUrl": url, "key": key})
}

// objectKey recovers the bucket key from a stored public URL. URLs that
// point outside our bucket return false.
func objectKey(publicURL string) (string, bool) {
	base := publicBase()
	if base == "" || publicURL == "" || !strings.HasPrefix(publicURL, base+"/") {
		return "", false
	}
	return strings.TrimPrefix(publicURL, base+"/"), true
}

// POST /api/users/avatar-upload
func (h *Handler) avatarUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserIDFrom(r.Context())

	contentType, ext, ok := decodeUpload(w, r)
	if !ok {
		return
	}
	key := "avatars/" + userID + ext

	prev, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}

	resp, ok := h.presign(w, r, key, contentType)
	if !ok {
		return
	}
	if _, err := h.Users.UpdateProfile(r.Context(), userID, storeusers.Draft{Image: resp.PublicURL}); err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	if old, ok := objectKey(prev.Image); ok && old != resp.Key {
		_ = h.S3.DeleteObject(r.Context(), old)
	}
	httpx.OK(w, resp)
}

// GET /api/users/my-avatar
func (h *Handler) avatarDownload(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserIDFrom(r.Context())
	u, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		apperr.HandleDBError(w, r, err)
		return
	}
	key, ok := objectKey(u.Image)
	if !ok {
		apperr.WriteStatus(w, r, http.StatusNotFound, "no_avatar", "Account has no stored avatar")
		return
	}
	url, err := h.S3.GeneratePresignedDownloadURL(r.Context(), key)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusBadGateway, "storage_error", "Could not presign download")
		return
	}
	httpx.OK(w, map[string]string{"downloadUrl": url, "key": key})
}

func decodeUpload(w http.ResponseWriter, r *http.Request) (contentType, ext string, ok bool) {
	var in uploadReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return "", "", false
	}
	contentType = strings.ToLower(in.ContentType)
	ext, found := contentTypeExt[contentType]
	if !found {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "unsupported_type", "Content type must be JPEG, PNG or WebP")
		return "", "", false
	}
	return contentType, ext, true
}

func (h *Handler) presign(w http.ResponseWriter, r *http.Request, key, contentType string) (uploadResp, bool) {
	uploadURL, err := h.S3.GeneratePresignedUploadURL(r.Context(), key, contentType)
	if err != nil {
		apperr.WriteStatus(w, r, http.StatusBadGateway, "storage_error", "Could not presign upload")
		return uploadResp{}, false
	}
	return uploadResp{
		UploadURL: uploadURL,
		PublicURL: publicBase() + "/" + key,
		Key:       key,
	}, true
}

func publicBase() string {
	return strings.TrimRight(os.Getenv("AWS_PUBLIC_BASE_URL"), "/")
}
