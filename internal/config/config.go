package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by SNOTE_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline enforced by the router
	MaxBodyBytes    int64         // JSON request body limit

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Entry store
	StoreDriver       string         // "postgres" | "memory"
	DatabaseURL       string         // postgres DSN, required when StoreDriver is postgres
	DBMaxOpenConns    int            // database/sql pool size
	DBMaxIdleConns    int            // idle connections kept open
	DBConnMaxLifetime time.Duration  // recycle connections after this long
	DBPingTimeout     time.Duration  // startup ping deadline
	SeedFile          string         // optional YAML file imported into an empty store
	TitleLocation     *time.Location // zone default titles are written in (host local when unset)

	// Redis read cache (disabled when RedisAddr is empty)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // initial wait between retries (grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
	CacheTTL              time.Duration // lifetime of cached entries
	CacheWarmInterval     time.Duration // periodic cache rebuild interval

	AllowedHosts []string // optional, restrict the API to specific Host headers
	AllowedCIDRS []string // optional, restrict readyz/infra/reload to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // optional, browser origins allowed to call the API

	RateLimitBurst        int // mutations a client may burst (0 disables the limit)
	RateLimitRefillPerMin int // tokens regained per minute
}

// CacheEnabled reports whether a Redis read cache is configured.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SNOTE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SNOTE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SNOTE_REQUEST_TIMEOUT", 5*time.Second),
		MaxBodyBytes:    int64(getenvInt("SNOTE_MAX_BODY_BYTES", 1<<20)),

		// Logging
		LogLevel:  getenv("SNOTE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SNOTE_PRETTY_LOG", true),

		// Store
		StoreDriver:       strings.ToLower(getenv("SNOTE_STORE", StorePostgres)),
		DatabaseURL:       getenv("SNOTE_DATABASE_URL", os.Getenv("DATABASE_URL")),
		DBMaxOpenConns:    getenvInt("SNOTE_DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getenvInt("SNOTE_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: mustDuration("SNOTE_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBPingTimeout:     mustDuration("SNOTE_DB_PING_TIMEOUT", 5*time.Second),
		SeedFile:          getenv("SNOTE_SEED_FILE", ""),
		TitleLocation:     mustLocation("SNOTE_TIMEZONE"),

		// Redis settings
		RedisAddr:             getenv("SNOTE_REDIS_ADDR", ""),
		RedisUser:             getenv("SNOTE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SNOTE_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SNOTE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SNOTE_REDIS_DB", 0),
		RedisDT:               mustDuration("SNOTE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("SNOTE_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("SNOTE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("SNOTE_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("SNOTE_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("SNOTE_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("SNOTE_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("SNOTE_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("SNOTE_REDIS_WARN_THRESHOLD", 3),
		CacheTTL:              mustDuration("SNOTE_CACHE_TTL", 10*time.Minute),
		CacheWarmInterval:     mustDuration("SNOTE_CACHE_WARM_INTERVAL", 5*time.Minute),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SNOTE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SNOTE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SNOTE_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("SNOTE_CORS_ORIGINS", "")),

		RateLimitBurst:        getenvInt("SNOTE_RATE_LIMIT_BURST", 30),
		RateLimitRefillPerMin: getenvInt("SNOTE_RATE_LIMIT_REFILL_PER_MIN", 60),
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			panic("❌ FATAL: SNOTE_DATABASE_URL (or DATABASE_URL) is required when SNOTE_STORE=postgres")
		}
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: SNOTE_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.StoreDriver))
	}

	if cfg.CacheEnabled() && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SNOTE_REDIS_PASSWORD is required when SNOTE_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.RequestTimeout <= 0 {
		panic("❌ FATAL: SNOTE_REQUEST_TIMEOUT must be positive")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.DatabaseURL = redactDSN(cfg.DatabaseURL)
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustLocation loads the IANA zone named by key, time.Local when unset.
func mustLocation(key string) *time.Location {
	name := os.Getenv(key)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %s: unknown time zone %q", key, name))
	}
	return loc
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// redactDSN hides the password of a URL-style DSN. Key/value DSNs are hidden entirely.
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "***REDACTED***"
	}
	return u.Redacted()
}
