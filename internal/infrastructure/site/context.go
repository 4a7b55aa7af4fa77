package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/database"
)

// Context holds the shared infrastructure handles threaded through requests.
type Context struct {
	Config       *Config
	Database     *database.DB
	CacheManager *manager.Manager
}

// NewContext loads configuration, opens the database, and ensures the schema
// exists.
func NewContext(cacheManager *manager.Manager, logger *logging.ChanneledLogger) (*Context, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}

	if !cfg.UseTurso() {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.NewConnectionWithLogger(cfg.DriverName(), cfg.DataSourceName(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open site database: %w", err)
	}

	creator := database.NewTableCreator()
	if err := creator.CreateSchema(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := creator.SeedInitialContent(db.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed initial content: %w", err)
	}

	return &Context{
		Config:       cfg,
		Database:     db,
		CacheManager: cacheManager,
	}, nil
}

// Close cleans up the site context.
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}
