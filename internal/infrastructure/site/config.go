// Package site handles loading and providing the site configuration and the
// per-request context carrying the shared infrastructure handles.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
)

// Config represents the structure of the site's configuration.
type Config struct {
	SiteURL        string   `json:"siteUrl"`
	AllowedOrigins []string `json:"allowedOrigins"`
	DefaultLang    string   `json:"defaultLang"`

	DatabaseType  string `json:"databaseType"`
	TursoDatabase string `json:"TURSO_DATABASE_URL"`
	TursoToken    string `json:"TURSO_AUTH_TOKEN"`
	TursoEnabled  bool   `json:"TURSO_ENABLED"`
	SQLitePath    string `json:"-"`

	JWTSecret     string `json:"JWT_SECRET"`
	AdminEmail    string `json:"ADMIN_EMAIL,omitempty"`
	AdminPassword string `json:"ADMIN_PASSWORD,omitempty"`

	ResendAPIKey string `json:"RESEND_API_KEY,omitempty"`
	EmailFrom    string `json:"EMAIL_FROM,omitempty"`

	// ExcludedRoutes are glob patterns for paths that never produce
	// analytics events (admin and preview surfaces).
	ExcludedRoutes []string `json:"excludedRoutes,omitempty"`

	MediaPath string `json:"-"`
}

// LoadConfig loads the site configuration from its env.json file, creating a
// usable default when none exists yet.
func LoadConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not find user home directory: %w", err)
	}

	baseDir := filepath.Join(homeDir, "aldiyar-server")
	configPath := filepath.Join(baseDir, "config", "env.json")

	cfg := &Config{
		DefaultLang:    "en",
		ExcludedRoutes: []string{"/admin/*", "/api/admin/*", "/preview/*"},
	}

	if raw, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("could not parse site config json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read site config file: %w", err)
	}

	// Computed paths
	cfg.SQLitePath = filepath.Join(baseDir, "db", "aldiyar.db")
	cfg.MediaPath = filepath.Join(baseDir, "media")

	if cfg.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
		if err := persistConfig(configPath, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "en"
	}

	return cfg, nil
}

// UseTurso reports whether the remote libsql driver should be used.
func (c *Config) UseTurso() bool {
	return c.TursoEnabled && c.TursoDatabase != "" && c.TursoToken != ""
}

// DriverName returns the sql driver matching the configured backend.
func (c *Config) DriverName() string {
	if c.UseTurso() {
		return "libsql"
	}
	return "sqlite3"
}

// DataSourceName returns the connection string matching the configured backend.
func (c *Config) DataSourceName() string {
	if c.UseTurso() {
		return c.TursoDatabase + "?authToken=" + c.TursoToken
	}
	return c.SQLitePath + "?_journal_mode=WAL&_busy_timeout=5000"
}

func persistConfig(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal site config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write site config: %w", err)
	}
	return nil
}
