package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Environment    string // ENV: production, development, etc.
	Port           string
	DatabaseDriver string // postgres or sqlite
	PostgresURI    string
	SQLitePath     string
	RedisURI       string // optional; enables shared cache, rate limiting and event fan-out
	MongoURI       string // optional; enables entry revision history
	AMQPURL        string // optional; enables outbound domain events
	AMQPExchange   string
	TokenSecret    string
	TokenExpire    time.Duration
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	AllowedHost    string   // production host check; empty disables it
	LogLevel       string
	LogFile        string // rotated by lumberjack when set
}

func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	expire, err := ParseExpiry(getEnv("TOKEN_EXPIRE", "1d"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_EXPIRE: %w", err)
	}

	driver := strings.ToLower(strings.TrimSpace(getEnv("DATABASE_DRIVER", DriverPostgres)))
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", driver)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "3010"),
		DatabaseDriver: driver,
		PostgresURI:    getEnv("POSTGRES_URI", postgresURIFromParts()),
		SQLitePath:     getEnv("SQLITE_PATH", "data/emotions.db"),
		RedisURI:       getEnv("REDIS_URI", ""),
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "emotions"),
		TokenSecret:    getEnv("TOKEN_SECRET", "your-secret-key-change-in-production"),
		TokenExpire:    expire,
		AllowedOrigins: allowedOrigins,
		AllowedHost:    getEnv("ALLOWED_HOST", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}, nil
}

// postgresURIFromParts assembles a DSN from the DATABASE_* variables used by
// older deployments of the journal.
func postgresURIFromParts() string {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	name := getEnv("DATABASE_NAME", "emotions")

	u := url.URL{
		Scheme:   "postgres",
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	if user := getEnv("DATABASE_USER", ""); user != "" {
		if pass := getEnv("DATABASE_PASSWORD", ""); pass != "" {
			u.User = url.UserPassword(user, pass)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}

// ParseExpiry accepts "1d", "12h", "30m", "45s" or a bare number of seconds.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive: %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}

	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	switch unit {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 's':
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration unit in %q", s)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
