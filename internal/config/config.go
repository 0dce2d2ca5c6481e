package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"despesas/internal/core"
	"despesas/internal/log"
)

type Config struct {
	// HTTP Server
	Port              string
	MaxUploadBytes    int64
	RequestsPerMinute int
	TrustedProxies    []string

	// Snapshot storage
	StorageRoot       string
	MonthLocale       string
	SnapshotCacheSize int
	SnapshotCacheTTL  time.Duration

	// Journal (empty disables)
	JournalDBPath string

	// AMQP (empty URL disables)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Google Sheets import; credentials come from GOOGLE_SERVICE_ACCOUNT_*
	GoogleSheetsImport bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8081"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),

		StorageRoot:       getEnv("STORAGE_ROOT", "./data/snapshots"),
		MonthLocale:       getEnv("MONTH_LOCALE", "pt-BR"),
		SnapshotCacheSize: getEnvInt("SNAPSHOT_CACHE_SIZE", 32),
		SnapshotCacheTTL:  getEnvDuration("SNAPSHOT_CACHE_TTL", time.Minute),

		JournalDBPath: getEnv("JOURNAL_DB_PATH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "despesas"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "snapshot"),

		GoogleSheetsImport: getEnvBool("GOOGLE_SHEETS_IMPORT", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Months resolves MonthLocale to its month abbreviation table.
func (c *Config) Months() (core.MonthNames, error) {
	return core.MonthNamesFor(c.MonthLocale)
}

// LoggerConfig builds the logger configuration for component.
func (c *Config) LoggerConfig(component string) log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.LogLevel)
	cfg.Component = component
	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.StorageRoot) == "" {
		errors = append(errors, "storage root cannot be empty")
	}

	if _, err := c.Months(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid month locale '%s': %v", c.MonthLocale, err))
	}

	if c.SnapshotCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid snapshot cache size %d: must be at least 1", c.SnapshotCacheSize))
	}
	if c.SnapshotCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot cache ttl %v: must not be negative", c.SnapshotCacheTTL))
	}

	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload bytes %d: must be at least 1024", c.MaxUploadBytes))
	}
	if c.RequestsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RequestsPerMinute))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSheetsImport {
		hasJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") != ""
		file := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
		if file == "" {
			file = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		}
		if !hasJSON && file == "" {
			errors = append(errors, "GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets import")
		} else if !hasJSON {
			if _, err := os.Stat(file); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", file))
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
