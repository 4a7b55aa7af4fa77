// Package listings defines the bilingual property catalog model and the
// URL-synced filter set used by listing pages.
package listings

import "time"

// Property is a catalog entry. Display text is carried in both English and
// Arabic; the presentation layer picks per request language.
type Property struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	TitleEN       string    `json:"titleEn"`
	TitleAR       string    `json:"titleAr"`
	DescriptionEN string    `json:"descriptionEn,omitempty"`
	DescriptionAR string    `json:"descriptionAr,omitempty"`
	CityEN        string    `json:"cityEn"`
	CityAR        string    `json:"cityAr"`
	DistrictEN    string    `json:"districtEn,omitempty"`
	DistrictAR    string    `json:"districtAr,omitempty"`
	Price         int       `json:"price"`
	Area          int       `json:"area"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Finishing     string    `json:"finishing"`
	Status        string    `json:"status"`
	Tags          []string  `json:"tags,omitempty"`
	Photos        []string  `json:"photos,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LocalizedProperty is the single-language projection served to the site.
type LocalizedProperty struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city"`
	District    string    `json:"district,omitempty"`
	Price       int       `json:"price"`
	Area        int       `json:"area"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Finishing   string    `json:"finishing"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	Photos      []string  `json:"photos,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Localize projects the property into one language. Arabic falls back to
// English when a field was never translated.
func (p *Property) Localize(lang string) LocalizedProperty {
	localized := LocalizedProperty{
		ID:        p.ID,
		Slug:      p.Slug,
		Price:     p.Price,
		Area:      p.Area,
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		Finishing: p.Finishing,
		Status:    p.Status,
		Tags:      p.Tags,
		Photos:    p.Photos,
		CreatedAt: p.CreatedAt,
	}

	if lang == "ar" {
		localized.Title = fallback(p.TitleAR, p.TitleEN)
		localized.Description = fallback(p.DescriptionAR, p.DescriptionEN)
		localized.City = fallback(p.CityAR, p.CityEN)
		localized.District = fallback(p.DistrictAR, p.DistrictEN)
	} else {
		localized.Title = p.TitleEN
		localized.Description = p.DescriptionEN
		localized.City = p.CityEN
		localized.District = p.DistrictEN
	}

	return localized
}

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	return secondary
}
