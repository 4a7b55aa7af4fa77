// Package analytics provides the concrete SQL-based implementations
// for first-party event persistence.
//
// PURPOSE: Store visitor events to the database as they happen
// - Tracker events → website_events table
// - Attribution history → session_events table
//
// Writes are best-effort from the visitor's point of view; the service layer
// fires them asynchronously and only logs failures.
package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
)

// SQLEventRepository handles real-time event persistence to the database.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// StoreWebsiteEvent saves a tracked visitor event to the website_events table.
func (r *SQLEventRepository) StoreWebsiteEvent(event *analytics.TrackedEvent) error {
	eventID := security.GenerateULID()

	var eventData []byte
	if len(event.EventData) > 0 {
		var err error
		eventData, err = json.Marshal(event.EventData)
		if err != nil {
			return fmt.Errorf("failed to encode event data: %w", err)
		}
	}

	const query = `
		INSERT INTO website_events (id, event_name, event_data, session_id, page_url, page_title,
		                            referrer, device_type, language,
		                            utm_source, utm_medium, utm_campaign, utm_term, utm_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing website event insert",
		"eventId", eventID,
		"eventName", event.EventName,
		"sessionId", event.SessionID)

	_, err := r.db.Exec(
		query,
		eventID,
		event.EventName,
		string(eventData),
		event.SessionID,
		event.PageURL,
		event.PageTitle,
		event.Referrer, // hostname only, reduced before it reaches the repository
		event.DeviceType,
		event.Language,
		event.UTM.Source,
		event.UTM.Medium,
		event.UTM.Campaign,
		event.UTM.Term,
		event.UTM.Content,
		event.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		r.logger.Database().Error("Website event insert failed",
			"error", err.Error(),
			"eventId", eventID,
			"eventName", event.EventName,
			"sessionId", event.SessionID)
		return fmt.Errorf("failed to store website event: %w", err)
	}

	r.logger.Database().Info("Website event insert completed",
		"eventId", eventID,
		"eventName", event.EventName,
		"sessionId", event.SessionID,
		"duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), event.SessionID)
	return nil
}

// StoreSessionEvent saves one sanitized attribution event to the
// session_events table.
func (r *SQLEventRepository) StoreSessionEvent(sessionID string, event attribution.SessionEvent) error {
	eventID := security.GenerateULID()

	var meta []byte
	if len(event.Meta) > 0 {
		var err error
		meta, err = json.Marshal(event.Meta)
		if err != nil {
			return fmt.Errorf("failed to encode event meta: %w", err)
		}
	}

	const query = `
		INSERT INTO session_events (id, session_id, event_name, page_path, entity_id, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing session event insert",
		"eventId", eventID,
		"eventName", event.EventName,
		"sessionId", sessionID)

	_, err := r.db.Exec(
		query,
		eventID,
		sessionID,
		event.EventName,
		event.PagePath,
		event.EntityID,
		string(meta),
		event.TS.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		r.logger.Database().Error("Session event insert failed",
			"error", err.Error(),
			"eventId", eventID,
			"eventName", event.EventName,
			"sessionId", sessionID)
		return fmt.Errorf("failed to store session event: %w", err)
	}

	r.logger.Database().Info("Session event insert completed",
		"eventId", eventID,
		"eventName", event.EventName,
		"sessionId", sessionID,
		"duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), sessionID)
	return nil
}

// EventCount is one row of the dashboard's event-name breakdown.
type EventCount struct {
	EventName string `json:"eventName"`
	Count     int    `json:"count"`
}

// CountEventsSince returns the total website event count after a cutoff.
func (r *SQLEventRepository) CountEventsSince(since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM website_events WHERE created_at >= ?`

	start := time.Now()
	var count int
	err := r.db.QueryRow(query, since.UTC().Format("2006-01-02 15:04:05")).Scan(&count)
	if err != nil {
		r.logger.Database().Error("Failed to count website events", "error", err.Error(), "since", since)
		return 0, fmt.Errorf("failed to count website events: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return count, nil
}

// TopEventsSince returns per-event-name counts after a cutoff, most frequent first.
func (r *SQLEventRepository) TopEventsSince(since time.Time, limit int) ([]EventCount, error) {
	const query = `
		SELECT event_name, COUNT(*) AS n
		FROM website_events
		WHERE created_at >= ?
		GROUP BY event_name
		ORDER BY n DESC
		LIMIT ?`

	start := time.Now()
	r.logger.Database().Debug("Loading top events", "since", since, "limit", limit)

	rows, err := r.db.Query(query, since.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		r.logger.Database().Error("Failed to query top events", "error", err.Error(), "since", since)
		return nil, fmt.Errorf("failed to query top events: %w", err)
	}
	defer rows.Close()

	var counts []EventCount
	for rows.Next() {
		var ec EventCount
		if err := rows.Scan(&ec.EventName, &ec.Count); err != nil {
			r.logger.Database().Error("Failed to scan event count row", "error", err.Error())
			continue
		}
		counts = append(counts, ec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for top events", "error", err.Error())
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return counts, nil
}

// SourceCount is one row of the dashboard's campaign source breakdown.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// TopSourcesSince returns distinct-session counts per utm_source after a
// cutoff, most frequent first. Sessions without a source are bucketed as
// "(direct)".
func (r *SQLEventRepository) TopSourcesSince(since time.Time, limit int) ([]SourceCount, error) {
	const query = `
		SELECT CASE WHEN utm_source = '' THEN '(direct)' ELSE utm_source END AS source,
		       COUNT(DISTINCT session_id) AS n
		FROM website_events
		WHERE created_at >= ?
		GROUP BY source
		ORDER BY n DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, since.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		r.logger.Database().Error("Failed to query top sources", "error", err.Error(), "since", since)
		return nil, fmt.Errorf("failed to query top sources: %w", err)
	}
	defer rows.Close()

	var counts []SourceCount
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			r.logger.Database().Error("Failed to scan source count row", "error", err.Error())
			continue
		}
		counts = append(counts, sc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for top sources", "error", err.Error())
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return counts, nil
}

// CountSessionsSince returns the number of distinct sessions that produced
// events after a cutoff.
func (r *SQLEventRepository) CountSessionsSince(since time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT session_id) FROM website_events WHERE created_at >= ?`

	start := time.Now()
	var count int
	err := r.db.QueryRow(query, since.UTC().Format("2006-01-02 15:04:05")).Scan(&count)
	if err != nil {
		r.logger.Database().Error("Failed to count sessions", "error", err.Error(), "since", since)
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "system")
	return count, nil
}
