// Package config provides centralized default values for Aldiyar
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Session Configuration
	SessionTTL            time.Duration
	SessionEventBufferCap int
	MaxTrackedSessions    int

	// Event Tracking
	DebounceWindow       time.Duration
	LastEventsSummaryMax int
	LastViewedMax        int

	// Listing Feed
	DefaultPageSize int
	MaxPageSize     int

	// Database
	SlowQueryThreshold       time.Duration
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int

	// Cleanup Intervals
	SessionCleanupInterval time.Duration

	// Third-Party Event Forwarding
	AnalyticsForwardURL     string
	AnalyticsForwardTimeout time.Duration

	// Email
	LeadNotifyInbox string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Session Configuration
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour
	SessionEventBufferCap = getEnvInt("SESSION_EVENT_BUFFER_CAP", 10)
	MaxTrackedSessions = getEnvInt("MAX_TRACKED_SESSIONS", 5000)

	// Event Tracking
	DebounceWindow = getEnvDuration("EVENT_DEBOUNCE_WINDOW", 300*time.Millisecond)
	LastEventsSummaryMax = getEnvInt("LAST_EVENTS_SUMMARY_MAX", 5)
	LastViewedMax = getEnvInt("LAST_VIEWED_MAX", 5)

	// Listing Feed
	DefaultPageSize = getEnvInt("LISTING_DEFAULT_PAGE_SIZE", 12)
	MaxPageSize = getEnvInt("LISTING_MAX_PAGE_SIZE", 48)

	// Database
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	// Cleanup Intervals
	SessionCleanupInterval = time.Duration(getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute

	// Third-Party Event Forwarding
	AnalyticsForwardURL = getEnvString("ANALYTICS_FORWARD_URL", "")
	AnalyticsForwardTimeout = getEnvDuration("ANALYTICS_FORWARD_TIMEOUT", 5*time.Second)

	// Email
	LeadNotifyInbox = getEnvString("LEAD_NOTIFY_INBOX", "")
}
