// Package user provides the concrete SQL-based implementations of
// the user domain repositories (Lead, AdminUser).
package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/user"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
)

// SQLLeadRepository is the SQL-based implementation of the LeadRepository.
type SQLLeadRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLLeadRepository creates a new instance of the repository.
func NewSQLLeadRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLLeadRepository {
	return &SQLLeadRepository{
		db:     db,
		logger: logger,
	}
}

// Store saves a new Lead to the database.
func (r *SQLLeadRepository) Store(lead *user.Lead) error {
	const query = `
		INSERT INTO leads (id, name, phone, email, message, property_id, attribution, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing lead insert", "id", lead.ID, "propertyId", lead.PropertyID)

	_, err := r.db.Exec(
		query,
		lead.ID,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Message,
		lead.PropertyID,
		lead.Attribution,
		lead.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		r.logger.Database().Error("Lead insert failed", "error", err.Error(), "id", lead.ID)
		return fmt.Errorf("failed to store lead: %w", err)
	}

	r.logger.Database().Info("Lead insert completed", "id", lead.ID, "propertyId", lead.PropertyID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return nil
}

// FindByID retrieves a Lead by its unique identifier.
func (r *SQLLeadRepository) FindByID(id string) (*user.Lead, error) {
	const query = `
		SELECT id, name, phone, email, message, property_id, attribution, created_at
		FROM leads
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading lead by ID", "id", id)

	lead, err := scanLead(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Lead not found by ID", "id", id)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load lead by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return lead, nil
}

// FindRecent returns leads newest first, paginated for the back office.
func (r *SQLLeadRepository) FindRecent(limit, offset int) ([]*user.Lead, error) {
	const query = `
		SELECT id, name, phone, email, message, property_id, attribution, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	start := time.Now()
	r.logger.Database().Debug("Loading recent leads", "limit", limit, "offset", offset)

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.logger.Database().Error("Failed to query recent leads", "error", err.Error())
		return nil, fmt.Errorf("failed to query recent leads: %w", err)
	}
	defer rows.Close()

	var leads []*user.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan lead row", "error", err.Error())
			continue
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for recent leads", "error", err.Error())
		return nil, err
	}

	r.logger.Database().Info("Recent leads loaded", "count", len(leads), "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return leads, nil
}

// CountSince returns the number of leads submitted after a cutoff.
func (r *SQLLeadRepository) CountSince(since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM leads WHERE created_at >= ?`

	start := time.Now()
	var count int
	err := r.db.QueryRow(query, since.UTC().Format("2006-01-02 15:04:05")).Scan(&count)
	if err != nil {
		r.logger.Database().Error("Failed to count leads", "error", err.Error(), "since", since)
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*user.Lead, error) {
	var lead user.Lead
	var email, message, propertyID, attribution sql.NullString
	var createdAtStr string

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&email,
		&message,
		&propertyID,
		&attribution,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	lead.Email = email.String
	lead.Message = message.String
	lead.PropertyID = propertyID.String
	lead.Attribution = attribution.String

	lead.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		lead.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			return nil, err
		}
	}

	return &lead, nil
}
