// Package address resolves the dependent province → district → ward
// dropdowns against static reference data. Selecting a new parent clears
// any child selection that is not a descendant of it.
package address

import (
	_ "embed"
	"encoding/json"
	"errors"
	"strings"
)

//go:embed data/provinces.json
var provincesJSON []byte

type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type District struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ProvinceCode string `json:"provinceCode"`
}

type Ward struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	DistrictCode string `json:"districtCode"`
}

var (
	provinces []Province
	districts []District
	wards     []Ward
)

func init() {
	var raw []struct {
		Code      string `json:"code"`
		Name      string `json:"name"`
		Districts []struct {
			Code  string `json:"code"`
			Name  string `json:"name"`
			Wards []struct {
				Code string `json:"code"`
				Name string `json:"name"`
			} `json:"wards"`
		} `json:"districts"`
	}
	if err := json.Unmarshal(provincesJSON, &raw); err != nil {
		panic("address: bad embedded reference data: " + err.Error())
	}
	for _, p := range raw {
		provinces = append(provinces, Province{Code: p.Code, Name: p.Name})
		for _, d := range p.Districts {
			districts = append(districts, District{Code: d.Code, Name: d.Name, ProvinceCode: p.Code})
			for _, w := range d.Wards {
				wards = append(wards, Ward{Code: w.Code, Name: w.Name, DistrictCode: d.Code})
			}
		}
	}
}

// Provinces returns the full province list in reference order.
func Provinces() []Province {
	out := make([]Province, len(provinces))
	copy(out, provinces)
	return out
}

func provinceByName(name string) (Province, bool) {
	name = strings.TrimSpace(name)
	for _, p := range provinces {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Province{}, false
}

func districtByName(name string) (District, bool) {
	name = strings.TrimSpace(name)
	for _, d := range districts {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return District{}, false
}

func wardByName(name string) (Ward, bool) {
	name = strings.TrimSpace(name)
	for _, w := range wards {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return Ward{}, false
}

// DistrictsFor lists the districts of the named province; unknown
// provinces yield an empty list.
func DistrictsFor(provinceName string) []District {
	p, ok := provinceByName(provinceName)
	if !ok {
		return nil
	}
	var out []District
	for _, d := range districts {
		if d.ProvinceCode == p.Code {
			out = append(out, d)
		}
	}
	return out
}

// WardsFor lists the wards of the named district.
func WardsFor(districtName string) []Ward {
	d, ok := districtByName(districtName)
	if !ok {
		return nil
	}
	var out []Ward
	for _, w := range wards {
		if w.DistrictCode == d.Code {
			out = append(out, w)
		}
	}
	return out
}

// Parts is the decomposition of the persisted address string
// "street, ward, district, province".
type Parts struct {
	Street   string `json:"street"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	Province string `json:"province"`
}

// Split breaks a persisted address into parts. Missing trailing segments
// come back empty.
func Split(addr string) Parts {
	segs := strings.Split(addr, ",")
	get := func(i int) string {
		if i < len(segs) {
			return strings.TrimSpace(segs[i])
		}
		return ""
	}
	return Parts{Street: get(0), Ward: get(1), District: get(2), Province: get(3)}
}

// Join renders parts back into the persisted form, skipping empty segments.
func (p Parts) Join() string {
	segs := make([]string, 0, 4)
	for _, s := range []string{p.Street, p.Ward, p.District, p.Province} {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, ", ")
}

// Resolved is a Parts value plus the option lists a form needs before it
// can be edited: the districts of the selected province and the wards of
// the selected district.
type Resolved struct {
	Parts
	Districts []District `json:"districts"`
	Wards     []Ward     `json:"wards"`
}

// Resolve re-derives the option lists from a persisted address and clears
// selections that are not descendants of their parent. Loading order is
// province → districts → wards, so a stored value never renders against an
// empty option list.
func Resolve(addr string) Resolved {
	p := Split(addr)
	r := Resolved{Parts: p}

	if _, ok := provinceByName(p.Province); !ok {
		r.Province, r.District, r.Ward = "", "", ""
		return r
	}
	r.Districts = DistrictsFor(p.Province)

	d, ok := districtByName(p.District)
	if !ok || !districtIn(r.Districts, d) {
		r.District, r.Ward = "", ""
		return r
	}
	r.Wards = WardsFor(p.District)

	if w, ok := wardByName(p.Ward); !ok || w.DistrictCode != d.Code {
		r.Ward = ""
	}
	return r
}

// Validate rejects parts whose ward/district/province do not form a chain
// in the reference data. Street is free text and only required non-empty.
func Validate(p Parts) error {
	if strings.TrimSpace(p.Street) == "" {
		return errors.New("street is required")
	}
	prov, ok := provinceByName(p.Province)
	if !ok {
		return errors.New("unknown province")
	}
	d, ok := districtByName(p.District)
	if !ok || d.ProvinceCode != prov.Code {
		return errors.New("district is not in the selected province")
	}
	w, ok := wardByName(p.Ward)
	if !ok || w.DistrictCode != d.Code {
		return errors.New("ward is not in the selected district")
	}
	return nil
}

func districtIn(list []District, d District) bool {
	for _, x := range list {
		if x.Code == d.Code {
			return true
		}
	}
	return false
}
