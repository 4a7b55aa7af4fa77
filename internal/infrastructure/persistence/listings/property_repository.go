// Package listings provides the concrete SQL-based implementation of the
// property catalog repository.
package listings

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
)

// SQLPropertyRepository is the SQL-based implementation of the property catalog.
type SQLPropertyRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLPropertyRepository creates a new instance of the repository.
func NewSQLPropertyRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLPropertyRepository {
	return &SQLPropertyRepository{
		db:     db,
		logger: logger,
	}
}

const propertyColumns = `id, slug, title_en, title_ar, description_en, description_ar,
	       city_en, city_ar, district_en, district_ar,
	       price, area, bedrooms, bathrooms, finishing, status, tags, photos, created_at`

// SearchResult is one page of a filtered catalog search.
type SearchResult struct {
	Properties  []*listings.Property
	HasNextPage bool
	Total       int
}

// Search runs a filtered, paginated catalog query. hasNextPage is computed by
// fetching one row past the page boundary.
func (r *SQLPropertyRepository) Search(filters listings.FilterSet) (*SearchResult, error) {
	where, args := buildWhere(filters)

	countQuery := "SELECT COUNT(*) FROM properties" + where

	start := time.Now()
	r.logger.Database().Debug("Executing property search",
		"query", filters.QueryString(),
		"page", filters.Page,
		"limit", filters.Limit)

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		r.logger.Database().Error("Property count failed", "error", err.Error())
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	query := "SELECT " + propertyColumns + " FROM properties" + where +
		orderClause(filters.Sort) + " LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), filters.Limit+1, (filters.Page-1)*filters.Limit)

	rows, err := r.db.Query(query, pageArgs...)
	if err != nil {
		r.logger.Database().Error("Property search failed", "error", err.Error())
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	var props []*listings.Property
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan property row", "error", err.Error())
			continue
		}
		props = append(props, prop)
	}
	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for property search", "error", err.Error())
		return nil, err
	}

	hasNext := len(props) > filters.Limit
	if hasNext {
		props = props[:filters.Limit]
	}

	r.logger.Database().Info("Property search completed",
		"count", len(props),
		"total", total,
		"hasNextPage", hasNext,
		"duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")

	return &SearchResult{Properties: props, HasNextPage: hasNext, Total: total}, nil
}

// FindByID retrieves a property by its unique identifier.
func (r *SQLPropertyRepository) FindByID(id string) (*listings.Property, error) {
	query := "SELECT " + propertyColumns + " FROM properties WHERE id = ?"

	start := time.Now()
	r.logger.Database().Debug("Loading property by ID", "id", id)

	prop, err := scanProperty(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Property not found by ID", "id", id)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load property by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return prop, nil
}

// FindBySlug retrieves a property by its URL slug.
func (r *SQLPropertyRepository) FindBySlug(slug string) (*listings.Property, error) {
	query := "SELECT " + propertyColumns + " FROM properties WHERE slug = ?"

	start := time.Now()
	r.logger.Database().Debug("Loading property by slug", "slug", slug)

	prop, err := scanProperty(r.db.QueryRow(query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Property not found by slug", "slug", slug)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load property by slug", "error", err.Error(), "slug", slug)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return prop, nil
}

// ExistingIDs filters the given ids down to those still present in the catalog,
// preserving input order. Used to prune stale compare selections.
func (r *SQLPropertyRepository) ExistingIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "SELECT id FROM properties WHERE id IN (" + placeholders + ")"

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to check property ids", "error", err.Error())
		return nil, fmt.Errorf("failed to check property ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var existing []string
	for _, id := range ids {
		if _, ok := found[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

// Store saves a new property to the catalog.
func (r *SQLPropertyRepository) Store(prop *listings.Property) error {
	const query = `
		INSERT INTO properties (id, slug, title_en, title_ar, description_en, description_ar,
		                        city_en, city_ar, district_en, district_ar,
		                        price, area, bedrooms, bathrooms, finishing, status, tags, photos, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing property insert", "id", prop.ID, "slug", prop.Slug)

	_, err := r.db.Exec(
		query,
		prop.ID,
		prop.Slug,
		prop.TitleEN,
		prop.TitleAR,
		prop.DescriptionEN,
		prop.DescriptionAR,
		prop.CityEN,
		prop.CityAR,
		prop.DistrictEN,
		prop.DistrictAR,
		prop.Price,
		prop.Area,
		prop.Bedrooms,
		prop.Bathrooms,
		prop.Finishing,
		prop.Status,
		strings.Join(prop.Tags, ","),
		strings.Join(prop.Photos, ","),
		prop.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		r.logger.Database().Error("Property insert failed", "error", err.Error(), "id", prop.ID, "slug", prop.Slug)
		return fmt.Errorf("failed to store property: %w", err)
	}

	r.logger.Database().Info("Property insert completed", "id", prop.ID, "slug", prop.Slug, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return nil
}

// Update modifies an existing catalog entry.
func (r *SQLPropertyRepository) Update(prop *listings.Property) error {
	const query = `
		UPDATE properties
		SET slug = ?, title_en = ?, title_ar = ?, description_en = ?, description_ar = ?,
		    city_en = ?, city_ar = ?, district_en = ?, district_ar = ?,
		    price = ?, area = ?, bedrooms = ?, bathrooms = ?, finishing = ?, status = ?,
		    tags = ?, photos = ?, changed = ?
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing property update", "id", prop.ID)

	_, err := r.db.Exec(
		query,
		prop.Slug,
		prop.TitleEN,
		prop.TitleAR,
		prop.DescriptionEN,
		prop.DescriptionAR,
		prop.CityEN,
		prop.CityAR,
		prop.DistrictEN,
		prop.DistrictAR,
		prop.Price,
		prop.Area,
		prop.Bedrooms,
		prop.Bathrooms,
		prop.Finishing,
		prop.Status,
		strings.Join(prop.Tags, ","),
		strings.Join(prop.Photos, ","),
		time.Now().UTC().Format("2006-01-02 15:04:05"),
		prop.ID,
	)
	if err != nil {
		r.logger.Database().Error("Property update failed", "error", err.Error(), "id", prop.ID)
		return fmt.Errorf("failed to update property: %w", err)
	}

	r.logger.Database().Info("Property update completed", "id", prop.ID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return nil
}

// buildWhere translates a FilterSet into a WHERE clause and its arguments.
// Only whitelisted, already-validated values reach this point; user text is
// always bound as a parameter.
func buildWhere(f listings.FilterSet) (string, []any) {
	var clauses []string
	var args []any

	if f.Search != "" {
		clauses = append(clauses, "(title_en LIKE ? OR title_ar LIKE ? OR description_en LIKE ? OR description_ar LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if f.City != "" {
		clauses = append(clauses, "(city_en = ? OR city_ar = ?)")
		args = append(args, f.City, f.City)
	}
	if f.District != "" {
		clauses = append(clauses, "(district_en = ? OR district_ar = ?)")
		args = append(args, f.District, f.District)
	}
	if f.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinArea != nil {
		clauses = append(clauses, "area >= ?")
		args = append(args, *f.MinArea)
	}
	if f.MaxArea != nil {
		clauses = append(clauses, "area <= ?")
		args = append(args, *f.MaxArea)
	}
	if f.Bedrooms != nil {
		clauses = append(clauses, "bedrooms = ?")
		args = append(args, *f.Bedrooms)
	}
	if f.Bathrooms != nil {
		clauses = append(clauses, "bathrooms = ?")
		args = append(args, *f.Bathrooms)
	}
	if f.Finishing != "" {
		clauses = append(clauses, "finishing = ?")
		args = append(args, f.Finishing)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	for _, tag := range f.Tags {
		clauses = append(clauses, "(',' || tags || ',') LIKE ?")
		args = append(args, "%,"+tag+",%")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case "price_asc":
		return " ORDER BY price ASC"
	case "price_desc":
		return " ORDER BY price DESC"
	case "area_asc":
		return " ORDER BY area ASC"
	case "area_desc":
		return " ORDER BY area DESC"
	default:
		return " ORDER BY created_at DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*listings.Property, error) {
	var prop listings.Property
	var titleAR, descEN, descAR, cityAR, districtEN, districtAR sql.NullString
	var tags, photos sql.NullString
	var createdAtStr string

	err := row.Scan(
		&prop.ID,
		&prop.Slug,
		&prop.TitleEN,
		&titleAR,
		&descEN,
		&descAR,
		&prop.CityEN,
		&cityAR,
		&districtEN,
		&districtAR,
		&prop.Price,
		&prop.Area,
		&prop.Bedrooms,
		&prop.Bathrooms,
		&prop.Finishing,
		&prop.Status,
		&tags,
		&photos,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	prop.TitleAR = titleAR.String
	prop.DescriptionEN = descEN.String
	prop.DescriptionAR = descAR.String
	prop.CityAR = cityAR.String
	prop.DistrictEN = districtEN.String
	prop.DistrictAR = districtAR.String
	prop.Tags = splitList(tags.String)
	prop.Photos = splitList(photos.String)

	prop.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		prop.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			return nil, err
		}
	}

	return &prop, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
