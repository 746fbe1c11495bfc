// Package resource is the one generic controller behind every back-office
// CRUD screen. Each managed resource (authors, publishers, subcategories,
// supcategories, books) plugs in a store, a listing schema and a draft
// validator; the controller supplies the identical route surface:
//
//	GET  /{res}                all rows
//	GET  /{res}/active         storefront scope
//	GET  /{res}/inactive       back-office scope
//	GET  /{res}/{id}
//	POST /{res}
//	PUT  /{res}/{id}
//	PUT  /{res}/active/{id}    activate
//	PUT  /{res}/inactive/{id}  deactivate
//
// Every list route accepts ?search=&sort=&order=&page=&size= and runs the
// same filter, sort, paginate pipeline.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
	"github.com/huanvo/bookverse-api/internal/listing"
)

// Store is what a resource's SQL store must expose.
type Store[T, D any] interface {
	ListByScope(ctx context.Context, scope listing.Status) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, d D) (T, error)
	Update(ctx context.Context, id int64, d D) (T, error)
	SetActive(ctx context.Context, id int64, active bool) (T, error)
}

type Controller[T, D any] struct {
	Store    Store[T, D]
	Schema   listing.Schema[T]
	Validate func(D) []apperr.FieldError
	// NotFound is the store's sentinel, mapped to 404.
	NotFound error
	// Guard wraps the mutating routes (create, update, toggles) and the
	// inactive listing; nil leaves them open.
	Guard func(http.Handler) http.Handler
}

// Mount registers the route surface under base (e.g. "/api/authors").
func (c *Controller[T, D]) Mount(mux *http.ServeMux, base string) {
	guard := c.Guard
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	mux.HandleFunc("GET "+base, c.list(listing.StatusAll))
	mux.HandleFunc("GET "+base+"/active", c.list(listing.StatusActive))
	mux.Handle("GET "+base+"/inactive", guard(c.list(listing.StatusInactive)))
	mux.HandleFunc("GET "+base+"/{id}", c.get)
	mux.Handle("POST "+base, guard(http.HandlerFunc(c.create)))
	mux.Handle("PUT "+base+"/{id}", guard(http.HandlerFunc(c.update)))
	mux.Handle("PUT "+base+"/active/{id}", guard(c.setActive(true)))
	mux.Handle("PUT "+base+"/inactive/{id}", guard(c.setActive(false)))
}

func (c *Controller[T, D]) list(scope listing.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := c.Store.ListByScope(r.Context(), scope)
		if err != nil {
			apperr.HandleDBError(w, r, err)
			return
		}
		crit, page := listing.FromQuery(r.URL.Query(), c.Schema)
		crit.Status = scope
		items, window := listing.Apply(rows, c.Schema, crit, page)
		httpx.OKList(w, items, window)
	}
}

func (c *Controller[T, D]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := c.Store.Get(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httpx.OK(w, row)
}

func (c *Controller[T, D]) create(w http.ResponseWriter, r *http.Request) {
	d, ok := c.decode(w, r)
	if !ok {
		return
	}
	row, err := c.Store.Create(r.Context(), d)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httpx.Created(w, row)
}

func (c *Controller[T, D]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, ok := c.decode(w, r)
	if !ok {
		return
	}
	row, err := c.Store.Update(r.Context(), id, d)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	httpx.OK(w, row)
}

func (c *Controller[T, D]) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		row, err := c.Store.SetActive(r.Context(), id, active)
		if err != nil {
			c.fail(w, r, err)
			return
		}
		httpx.OK(w, row)
	}
}

func (c *Controller[T, D]) decode(w http.ResponseWriter, r *http.Request) (D, bool) {
	var d D
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return d, false
	}
	if c.Validate != nil {
		if fields := c.Validate(d); len(fields) > 0 {
			apperr.WriteValidation(w, r, fields...)
			return d, false
		}
	}
	return d, true
}

func (c *Controller[T, D]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.NotFound != nil && errors.Is(err, c.NotFound) {
		apperr.WriteStatus(w, r, http.StatusNotFound, "not_found", "Resource not found")
		return
	}
	apperr.HandleDBError(w, r, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_id", "ID must be a positive integer")
		return 0, false
	}
	return id, true
}
