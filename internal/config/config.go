package config // package config loads application configuration from environment variables

import (
	"net"
	"time"
)

// Config holds all runtime configuration values. It is built once at
// startup and passed by value to the components that need it; nothing
// mutates it afterwards.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Host            string        // interface the HTTP server binds to
	Port            string        // HTTP port to listen on
	DBHost          string        // database host address, echoed by /api/data
	DBPort          string        // database port number
	DBName          string        // database name
	DBUser          string        // database username
	DBPass          string        // database password
	LogLevel        string        // logrus level name
	LogFormat       string        // "text" or "json"
	ReadinessDB     bool          // ping the database from /ready
	ShutdownTimeout time.Duration // grace period for in-flight requests

	RateLimit RateLimitConfig
	Cache     CacheConfig
	Queue     QueueConfig
}

// Load reads configuration values from environment variables and returns a
// Config. Every variable is optional. The DB_* values are taken verbatim
// whenever they are set, even to an empty string; all other empty values
// fall back to the defaults below.
func Load() Config {
	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Host:            envStr("APP_HOST", "0.0.0.0"),
		Port:            envStr("APP_PORT", "5000"),
		DBHost:          envExact("DB_HOST", "localhost"),
		DBPort:          envStr("DB_PORT", "3306"),
		DBName:          envExact("DB_NAME", "myapp"),
		DBUser:          envExact("DB_USER", "admin"),
		DBPass:          envExact("DB_PASS", "password"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "text"),
		ReadinessDB:     envBool("READINESS_DB_CHECK", false),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),

		RateLimit: LoadRateLimitConfig(),
		Cache:     LoadCacheConfig(),
		Queue:     LoadQueueConfig(),
	}
}

// Addr is the host:port pair the HTTP server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NeedsRedis reports whether any enabled feature is backed by Redis.
func (c Config) NeedsRedis() bool {
	return c.RateLimit.Enabled || c.Cache.Enabled
}
