// Package settings provides the SQL-based store for the admin-managed
// tracking pixel configuration.
package settings

import (
	"fmt"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
)

// TrackingSetting is one admin-managed vendor setting row.
type TrackingSetting struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Value   string `json:"value"`
}

// SQLSettingsRepository is the SQL-based implementation of the settings store.
type SQLSettingsRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSettingsRepository creates a new instance of the repository.
func NewSQLSettingsRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSettingsRepository {
	return &SQLSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll loads every tracking setting keyed by setting name.
func (r *SQLSettingsRepository) GetAll() (map[string]TrackingSetting, error) {
	const query = `SELECT key, enabled, value FROM tracking_settings`

	start := time.Now()
	r.logger.Database().Debug("Loading tracking settings")

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query tracking settings", "error", err.Error())
		return nil, fmt.Errorf("failed to query tracking settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]TrackingSetting)
	for rows.Next() {
		var s TrackingSetting
		if err := rows.Scan(&s.Key, &s.Enabled, &s.Value); err != nil {
			r.logger.Database().Error("Failed to scan tracking setting row", "error", err.Error())
			continue
		}
		settings[s.Key] = s
	}
	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for tracking settings", "error", err.Error())
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return settings, nil
}

// Upsert writes one tracking setting, creating the row when absent.
func (r *SQLSettingsRepository) Upsert(setting TrackingSetting) error {
	const query = `
		INSERT INTO tracking_settings (key, enabled, value, changed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET enabled = excluded.enabled, value = excluded.value, changed = excluded.changed`

	start := time.Now()
	r.logger.Database().Debug("Upserting tracking setting", "key", setting.Key, "enabled", setting.Enabled)

	_, err := r.db.Exec(query, setting.Key, setting.Enabled, setting.Value,
		time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		r.logger.Database().Error("Tracking setting upsert failed", "error", err.Error(), "key", setting.Key)
		return fmt.Errorf("failed to upsert tracking setting: %w", err)
	}

	r.logger.Database().Info("Tracking setting upsert completed", "key", setting.Key, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return nil
}
