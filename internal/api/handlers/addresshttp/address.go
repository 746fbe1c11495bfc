// Package addresshttp serves the address reference data the checkout and
// profile forms cascade through: province, then district, then ward.
package addresshttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/huanvo/bookverse-api/internal/address"
	"github.com/huanvo/bookverse-api/internal/api/apperr"
	"github.com/huanvo/bookverse-api/internal/api/httpx"
)

func Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/address/provinces", provinces)
	mux.HandleFunc("GET /api/address/districts", districts)
	mux.HandleFunc("GET /api/address/wards", wards)
	mux.HandleFunc("POST /api/address/resolve", resolve)
}

func provinces(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, address.Provinces())
}

func districts(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")
	if province == "" {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "missing_province", "A province is required")
		return
	}
	httpx.OK(w, address.DistrictsFor(province))
}

func wards(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")
	district := r.URL.Query().Get("district")
	if province == "" || district == "" {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "missing_parent", "Both province and district are required")
		return
	}
	// The district must belong to the given province; a name that matches
	// some other province's district yields an empty list.
	for _, d := range address.DistrictsFor(province) {
		if strings.EqualFold(d.Name, district) {
			httpx.OK(w, address.WardsFor(district))
			return
		}
	}
	httpx.OK(w, []address.Ward{})
}

// resolve re-derives the cascade for a partially edited address: option
// lists for each level plus the selections that survive a parent change.
func resolve(w http.ResponseWriter, r *http.Request) {
	var parts address.Parts
	if err := json.NewDecoder(r.Body).Decode(&parts); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "invalid_json", "Body must be valid JSON")
		return
	}
	httpx.OK(w, address.Resolve(parts.Join()))
}
