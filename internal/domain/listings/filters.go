package listings

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination defaults for listing pages.
const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 48
)

// Permitted enum values. Anything outside these sets is silently treated as
// unset during parsing.
var (
	Finishings = []string{"finished", "semi_finished", "core_shell", "furnished"}
	Statuses   = []string{"available", "reserved", "sold"}
	Sorts      = []string{"newest", "price_asc", "price_desc", "area_asc", "area_desc"}
)

// FilterSet is the sparse, whitelisted filter state for listing pages. Its
// canonical encoding is a URL query string; a zero/nil field means "unset",
// not zero.
type FilterSet struct {
	Search    string   `json:"search,omitempty"`
	City      string   `json:"city,omitempty"`
	District  string   `json:"district,omitempty"`
	MinPrice  *int     `json:"minPrice,omitempty"`
	MaxPrice  *int     `json:"maxPrice,omitempty"`
	MinArea   *int     `json:"minArea,omitempty"`
	MaxArea   *int     `json:"maxArea,omitempty"`
	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	Finishing string   `json:"finishing,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Status    string   `json:"status,omitempty"`
	Sort      string   `json:"sort,omitempty"`
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
}

// DefaultFilters returns an empty filter set with pagination defaults.
func DefaultFilters() FilterSet {
	return FilterSet{Page: DefaultPage, Limit: DefaultLimit}
}

// ParseFilters builds a FilterSet from URL query values. Unknown keys are
// ignored; non-numeric numerics and out-of-enum values are silently left
// unset; page and limit fall back to their defaults.
func ParseFilters(values url.Values) FilterSet {
	f := DefaultFilters()

	f.Search = strings.TrimSpace(values.Get("search"))
	f.City = strings.TrimSpace(values.Get("city"))
	f.District = strings.TrimSpace(values.Get("district"))
	f.MinPrice = parseIntParam(values.Get("min_price"))
	f.MaxPrice = parseIntParam(values.Get("max_price"))
	f.MinArea = parseIntParam(values.Get("min_area"))
	f.MaxArea = parseIntParam(values.Get("max_area"))
	f.Bedrooms = parseIntParam(values.Get("bedrooms"))
	f.Bathrooms = parseIntParam(values.Get("bathrooms"))
	f.Finishing = parseEnumParam(values.Get("finishing"), Finishings)
	f.Tags = parseTagsParam(values.Get("tags"))
	f.Status = parseEnumParam(values.Get("status"), Statuses)
	f.Sort = parseEnumParam(values.Get("sort"), Sorts)

	if page := parseIntParam(values.Get("page")); page != nil && *page >= 1 {
		f.Page = *page
	}
	if limit := parseIntParam(values.Get("limit")); limit != nil && *limit >= 1 && *limit <= MaxLimit {
		f.Limit = *limit
	}

	return f
}

// Encode produces the canonical URL query form. Unset fields and pagination
// defaults are omitted so that ParseFilters(Encode(f)) round-trips.
func (f FilterSet) Encode() url.Values {
	values := url.Values{}

	setStringParam(values, "search", f.Search)
	setStringParam(values, "city", f.City)
	setStringParam(values, "district", f.District)
	setIntParam(values, "min_price", f.MinPrice)
	setIntParam(values, "max_price", f.MaxPrice)
	setIntParam(values, "min_area", f.MinArea)
	setIntParam(values, "max_area", f.MaxArea)
	setIntParam(values, "bedrooms", f.Bedrooms)
	setIntParam(values, "bathrooms", f.Bathrooms)
	setStringParam(values, "finishing", f.Finishing)
	if len(f.Tags) > 0 {
		values.Set("tags", strings.Join(f.Tags, ","))
	}
	setStringParam(values, "status", f.Status)
	setStringParam(values, "sort", f.Sort)
	if f.Page > DefaultPage {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 && f.Limit != DefaultLimit {
		values.Set("limit", strconv.Itoa(f.Limit))
	}

	return values
}

// QueryString returns the canonical encoded query string.
func (f FilterSet) QueryString() string {
	return f.Encode().Encode()
}

// Set mutates one filter key from its string form. An empty value clears the
// key. Any mutation other than a page change resets page to 1.
func (f *FilterSet) Set(key, value string) {
	f.apply(key, value)
	if key != "page" {
		f.Page = DefaultPage
	}
}

// Apply mutates several keys at once. Page resets to 1 unless the patch
// itself includes a page value.
func (f *FilterSet) Apply(patch map[string]string) {
	_, pageIncluded := patch["page"]
	for key, value := range patch {
		f.apply(key, value)
	}
	if !pageIncluded {
		f.Page = DefaultPage
	}
}

func (f *FilterSet) apply(key, value string) {
	value = strings.TrimSpace(value)
	switch key {
	case "search":
		f.Search = value
	case "city":
		f.City = value
	case "district":
		f.District = value
	case "min_price":
		f.MinPrice = parseIntParam(value)
	case "max_price":
		f.MaxPrice = parseIntParam(value)
	case "min_area":
		f.MinArea = parseIntParam(value)
	case "max_area":
		f.MaxArea = parseIntParam(value)
	case "bedrooms":
		f.Bedrooms = parseIntParam(value)
	case "bathrooms":
		f.Bathrooms = parseIntParam(value)
	case "finishing":
		f.Finishing = parseEnumParam(value, Finishings)
	case "tags":
		f.Tags = parseTagsParam(value)
	case "status":
		f.Status = parseEnumParam(value, Statuses)
	case "sort":
		f.Sort = parseEnumParam(value, Sorts)
	case "page":
		if page := parseIntParam(value); page != nil && *page >= 1 {
			f.Page = *page
		} else {
			f.Page = DefaultPage
		}
	case "limit":
		if limit := parseIntParam(value); limit != nil && *limit >= 1 && *limit <= MaxLimit {
			f.Limit = *limit
		} else {
			f.Limit = DefaultLimit
		}
	}
	// Unknown keys are ignored.
}

// ActiveFilterCount counts content filters only; pagination and sort keys
// are excluded, so the count can drive UI filter badges.
func (f FilterSet) ActiveFilterCount() int {
	count := 0
	if f.Search != "" {
		count++
	}
	if f.City != "" {
		count++
	}
	if f.District != "" {
		count++
	}
	if f.MinPrice != nil {
		count++
	}
	if f.MaxPrice != nil {
		count++
	}
	if f.MinArea != nil {
		count++
	}
	if f.MaxArea != nil {
		count++
	}
	if f.Bedrooms != nil {
		count++
	}
	if f.Bathrooms != nil {
		count++
	}
	if f.Finishing != "" {
		count++
	}
	if len(f.Tags) > 0 {
		count++
	}
	if f.Status != "" {
		count++
	}
	return count
}

func parseIntParam(raw string) *int {
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

func parseEnumParam(raw string, permitted []string) string {
	for _, candidate := range permitted {
		if raw == candidate {
			return raw
		}
	}
	return ""
}

func parseTagsParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func setStringParam(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func setIntParam(values url.Values, key string, value *int) {
	if value != nil {
		values.Set(key, strconv.Itoa(*value))
	}
}
