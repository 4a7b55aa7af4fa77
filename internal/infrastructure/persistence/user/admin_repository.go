package user

import (
	"database/sql"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/user"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
)

// SQLAdminRepository is the SQL-based implementation of the admin account store.
type SQLAdminRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAdminRepository creates a new instance of the repository.
func NewSQLAdminRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAdminRepository {
	return &SQLAdminRepository{
		db:     db,
		logger: logger,
	}
}

// FindByEmail retrieves an admin account by email address.
func (r *SQLAdminRepository) FindByEmail(email string) (*user.AdminUser, error) {
	const query = `
		SELECT id, email, password_hash, role, created_at
		FROM admin_users
		WHERE email = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading admin user by email", "email", email)

	var admin user.AdminUser
	var createdAtStr string
	err := r.db.QueryRow(query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Admin user not found", "email", email)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load admin user", "error", err.Error(), "email", email)
		return nil, err
	}

	admin.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		admin.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			return nil, err
		}
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return &admin, nil
}
