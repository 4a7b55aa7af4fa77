// Package database provides schema instantiation for a fresh site database.
package database

import (
	"database/sql"
	"fmt"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
	"golang.org/x/crypto/bcrypt"
)

// TableCreator handles the creation of the site database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the site's tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent adds the rows a fresh install needs to function.
func (tc *TableCreator) SeedInitialContent(db *sql.DB, adminEmail, adminPassword string) error {
	// Idempotently create the pixel vendor settings rows, disabled by default.
	for _, key := range []string{"meta_pixel_id", "tiktok_pixel_id", "snap_pixel_id", "google_analytics_id"} {
		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM tracking_settings WHERE key = ?)", key).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for tracking setting %s: %w", key, err)
		}
		if !exists {
			_, err = db.Exec(`INSERT INTO tracking_settings (key, enabled, value) VALUES (?, 0, '')`, key)
			if err != nil {
				return fmt.Errorf("failed to seed tracking setting %s: %w", key, err)
			}
		}
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	// Idempotently create the initial admin account.
	var adminExists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM admin_users WHERE email = ?)", adminEmail).Scan(&adminExists)
	if err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	if !adminExists {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		_, err = db.Exec(`INSERT INTO admin_users (id, email, password_hash, role) VALUES (?, ?, ?, 'admin')`,
			security.GenerateULID(), adminEmail, string(hash))
		if err != nil {
			return fmt.Errorf("failed to insert admin user: %w", err)
		}
	}

	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS properties (id TEXT PRIMARY KEY, slug TEXT NOT NULL UNIQUE, title_en TEXT NOT NULL, title_ar TEXT, description_en TEXT, description_ar TEXT, city_en TEXT NOT NULL, city_ar TEXT, district_en TEXT, district_ar TEXT, price INTEGER NOT NULL, area INTEGER NOT NULL, bedrooms INTEGER NOT NULL, bathrooms INTEGER NOT NULL, finishing TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'available', tags TEXT, photos TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS leads (id TEXT PRIMARY KEY, name TEXT NOT NULL, phone TEXT NOT NULL, email TEXT, message TEXT, property_id TEXT REFERENCES properties(id), attribution TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS website_events (id TEXT PRIMARY KEY, event_name TEXT NOT NULL, event_data TEXT, session_id TEXT NOT NULL, page_url TEXT NOT NULL, page_title TEXT, referrer TEXT, device_type TEXT, language TEXT, utm_source TEXT, utm_medium TEXT, utm_campaign TEXT, utm_term TEXT, utm_content TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS session_events (id TEXT PRIMARY KEY, session_id TEXT NOT NULL, event_name TEXT NOT NULL, page_path TEXT NOT NULL, entity_id TEXT, meta TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS tracking_settings (key TEXT PRIMARY KEY, enabled BOOLEAN NOT NULL DEFAULT 0, value TEXT NOT NULL DEFAULT '', changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS compare_selections (session_id TEXT PRIMARY KEY, property_ids TEXT NOT NULL, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS admin_users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL, role TEXT NOT NULL DEFAULT 'admin', created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city_en)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price)`,
	`CREATE INDEX IF NOT EXISTS idx_website_events_session_id ON website_events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_website_events_created_at ON website_events(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_website_events_event_name ON website_events(event_name)`,
	`CREATE INDEX IF NOT EXISTS idx_session_events_session_id ON session_events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)`,
}
