// Package compare provides the SQL-based store for per-session comparison
// selections, written synchronously so the selection survives a session
// cache eviction.
package compare

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
)

// SQLCompareRepository is the SQL-based implementation of the selection store.
type SQLCompareRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLCompareRepository creates a new instance of the repository.
func NewSQLCompareRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLCompareRepository {
	return &SQLCompareRepository{
		db:     db,
		logger: logger,
	}
}

// Save writes a session's selection, replacing any previous row. An empty
// selection deletes the row.
func (r *SQLCompareRepository) Save(sessionID string, propertyIDs []string) error {
	start := time.Now()

	if len(propertyIDs) == 0 {
		const query = `DELETE FROM compare_selections WHERE session_id = ?`
		if _, err := r.db.Exec(query, sessionID); err != nil {
			r.logger.Database().Error("Compare selection delete failed", "error", err.Error(), "sessionId", sessionID)
			return fmt.Errorf("failed to delete compare selection: %w", err)
		}
		database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), sessionID)
		return nil
	}

	const query = `
		INSERT INTO compare_selections (session_id, property_ids, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET property_ids = excluded.property_ids, updated_at = excluded.updated_at`

	r.logger.Database().Debug("Saving compare selection", "sessionId", sessionID, "count", len(propertyIDs))

	_, err := r.db.Exec(query, sessionID, strings.Join(propertyIDs, ","),
		time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		r.logger.Database().Error("Compare selection save failed", "error", err.Error(), "sessionId", sessionID)
		return fmt.Errorf("failed to save compare selection: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), sessionID)
	return nil
}

// Load returns a session's persisted selection, or nil when none exists.
func (r *SQLCompareRepository) Load(sessionID string) ([]string, error) {
	const query = `SELECT property_ids FROM compare_selections WHERE session_id = ?`

	start := time.Now()
	var raw string
	err := r.db.QueryRow(query, sessionID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load compare selection", "error", err.Error(), "sessionId", sessionID)
		return nil, fmt.Errorf("failed to load compare selection: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), sessionID)

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeleteStale removes selections whose sessions have been idle past the cutoff.
func (r *SQLCompareRepository) DeleteStale(cutoff time.Time) (int, error) {
	const query = `DELETE FROM compare_selections WHERE updated_at < ?`

	start := time.Now()
	result, err := r.db.Exec(query, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		r.logger.Database().Error("Failed to delete stale compare selections", "error", err.Error())
		return 0, fmt.Errorf("failed to delete stale compare selections: %w", err)
	}

	affected, _ := result.RowsAffected()
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return int(affected), nil
}
