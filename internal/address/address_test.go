package address_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanvo/bookverse-api/internal/address"
)

func TestEveryProvinceHasDistricts(t *testing.T) {
	provs := address.Provinces()
	require.NotEmpty(t, provs)
	for _, p := range provs {
		ds := address.DistrictsFor(p.Name)
		assert.NotEmpty(t, ds, "province %s has no districts", p.Name)
		for _, d := range ds {
			assert.Equal(t, p.Code, d.ProvinceCode)
			assert.NotEmpty(t, address.WardsFor(d.Name), "district %s has no wards", d.Name)
		}
	}
}

func TestDistrictsForUnknownProvince(t *testing.T) {
	assert.Empty(t, address.DistrictsFor("Atlantis"))
	assert.Empty(t, address.WardsFor("Nowhere"))
}

func TestWardsNeverCrossDistricts(t *testing.T) {
	for _, d := range address.DistrictsFor("Hà Nội") {
		for _, w := range address.WardsFor(d.Name) {
			assert.Equal(t, d.Code, w.DistrictCode)
		}
	}
}

func TestSplitAndJoin(t *testing.T) {
	p := address.Split("12 Hàng Gai, Hàng Trống, Hoàn Kiếm, Hà Nội")
	assert.Equal(t, "12 Hàng Gai", p.Street)
	assert.Equal(t, "Hàng Trống", p.Ward)
	assert.Equal(t, "Hoàn Kiếm", p.District)
	assert.Equal(t, "Hà Nội", p.Province)
	assert.Equal(t, "12 Hàng Gai, Hàng Trống, Hoàn Kiếm, Hà Nội", p.Join())

	short := address.Split("12 Hàng Gai")
	assert.Equal(t, "12 Hàng Gai", short.Street)
	assert.Empty(t, short.Province)
}

func TestResolveRederivesOptionLists(t *testing.T) {
	r := address.Resolve("12 Hàng Gai, Hàng Trống, Hoàn Kiếm, Hà Nội")
	assert.Equal(t, "Hà Nội", r.Province)
	assert.Equal(t, "Hoàn Kiếm", r.District)
	assert.Equal(t, "Hàng Trống", r.Ward)
	assert.NotEmpty(t, r.Districts, "district options must be loaded before the form is editable")
	assert.NotEmpty(t, r.Wards)
}

func TestResolveClearsNonDescendants(t *testing.T) {
	// Ward from Hà Nội paired with a Đà Nẵng district: ward must be cleared.
	r := address.Resolve("1 Lê Duẩn, Hàng Trống, Hải Châu, Đà Nẵng")
	assert.Equal(t, "Đà Nẵng", r.Province)
	assert.Equal(t, "Hải Châu", r.District)
	assert.Empty(t, r.Ward)

	// District not under the province: district and ward both cleared.
	r = address.Resolve("1 Lê Duẩn, Bến Nghé, Quận 1, Hà Nội")
	assert.Equal(t, "Hà Nội", r.Province)
	assert.Empty(t, r.District)
	assert.Empty(t, r.Ward)

	// Unknown province clears everything below it.
	r = address.Resolve("1 Lê Duẩn, Bến Nghé, Quận 1, Atlantis")
	assert.Empty(t, r.Province)
	assert.Empty(t, r.District)
	assert.Empty(t, r.Ward)
}

func TestValidate(t *testing.T) {
	ok := address.Parts{Street: "70 Nguyễn Huệ", Ward: "Bến Nghé", District: "Quận 1", Province: "Hồ Chí Minh"}
	assert.NoError(t, address.Validate(ok))

	bad := ok
	bad.Ward = "Phúc Xá" // Hà Nội ward
	assert.Error(t, address.Validate(bad))

	bad = ok
	bad.District = "Cầu Giấy"
	assert.Error(t, address.Validate(bad))

	bad = ok
	bad.Street = "  "
	assert.Error(t, address.Validate(bad))
}
