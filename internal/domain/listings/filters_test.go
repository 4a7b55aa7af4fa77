package listings

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiltersDefaults(t *testing.T) {
	f := ParseFilters(url.Values{})

	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 0, f.ActiveFilterCount())
}

func TestParseFiltersDropsInvalidValues(t *testing.T) {
	values := url.Values{}
	values.Set("min_price", "cheap")
	values.Set("bedrooms", "-2")
	values.Set("finishing", "golden")
	values.Set("sort", "alphabetical")
	values.Set("page", "0")
	values.Set("limit", "999")

	f := ParseFilters(values)

	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.Bedrooms)
	assert.Empty(t, f.Finishing)
	assert.Empty(t, f.Sort)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	minPrice := 100000
	maxPrice := 500000
	bedrooms := 3

	original := FilterSet{
		Search:   "garden",
		City:     "Cairo",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Bedrooms: &bedrooms,
		Tags:     []string{"garden", "pool"},
		Status:   "available",
		Sort:     "price_asc",
		Page:     3,
		Limit:    24,
	}

	parsed := ParseFilters(original.Encode())
	assert.Equal(t, original, parsed)
}

func TestEncodeOmitsDefaults(t *testing.T) {
	f := DefaultFilters()
	assert.Empty(t, f.QueryString())

	f.Page = 2
	encoded := f.Encode()
	assert.Equal(t, "2", encoded.Get("page"))
	assert.Empty(t, encoded.Get("limit"))
}

func TestSetResetsPageToOne(t *testing.T) {
	f := DefaultFilters()
	f.Page = 4

	f.Set("city", "Giza")

	assert.Equal(t, "Giza", f.City)
	assert.Equal(t, DefaultPage, f.Page, "content mutation resets pagination")
}

func TestSetPageDoesNotResetItself(t *testing.T) {
	f := DefaultFilters()

	f.Set("page", "5")
	assert.Equal(t, 5, f.Page)
}

func TestSetEmptyValueClearsKey(t *testing.T) {
	f := DefaultFilters()
	f.Set("city", "Cairo")
	require.Equal(t, "Cairo", f.City)

	f.Set("city", "")
	assert.Empty(t, f.City)
}

func TestApplyPatchResetsPageUnlessIncluded(t *testing.T) {
	f := DefaultFilters()
	f.Page = 7

	f.Apply(map[string]string{"status": "available"})
	assert.Equal(t, DefaultPage, f.Page)

	f.Apply(map[string]string{"status": "reserved", "page": "3"})
	assert.Equal(t, 3, f.Page)
}

func TestApplyIgnoresUnknownKeys(t *testing.T) {
	f := DefaultFilters()

	f.Apply(map[string]string{"utm_source": "meta", "city": "Cairo"})

	assert.Equal(t, "Cairo", f.City)
	assert.Empty(t, f.Encode().Get("utm_source"))
}

func TestActiveFilterCountIgnoresSortAndPagination(t *testing.T) {
	bedrooms := 2
	f := FilterSet{
		City:     "Cairo",
		Bedrooms: &bedrooms,
		Sort:     "price_desc",
		Page:     9,
		Limit:    48,
	}

	assert.Equal(t, 2, f.ActiveFilterCount())
}
