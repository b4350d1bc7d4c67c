package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
)

// Store drivers
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Content tree
	OutlineDir     string        // directory holding course outline *.yaml files
	ReloadInterval time.Duration // interval to reload outlines (default: 1h)

	// Breadcrumbs
	PathDepth  int               // max ancestors kept in a bookmark path (default: 2)
	PathAnchor domain.PathAnchor // "block" keeps the nearest ancestors, "root" the outermost

	// Store
	StoreDriver string // "sqlite" | "postgres" | "redis" | "mongo"

	// SQL (sqlite / postgres)
	SQLDSN          string // postgres DSN or sqlite file path
	SQLMaxOpenConns int    // postgres pool size (sqlite is always 1)
	SQLDebug        bool   // log every statement

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisPoolSize         int           // Redis connection pool size

	// Mongo
	MongoURI      string // ex: "mongodb://localhost:27017"
	MongoDatabase string // database holding the bookmarks collection

	// Connection retry, shared by every backend
	ConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	WarnThreshold  int           // warn after this many attempts

	// Identity
	UserHeader string // header carrying the authenticated user (set by the upstream proxy)

	// Write rate limit (per user, per client IP when anonymous)
	RateLimitBurst     int // bucket capacity
	RateLimitPerMinute int // refill rate

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real variables win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("COURSEMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("COURSEMARK_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("COURSEMARK_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("COURSEMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("COURSEMARK_PRETTY_LOG", true),

		// Content tree
		OutlineDir:     getenv("COURSEMARK_OUTLINE_DIR", "/app/outlines"),
		ReloadInterval: mustDuration("COURSEMARK_RELOAD_INTERVAL", time.Hour),

		// Breadcrumbs
		PathDepth:  getenvInt("COURSEMARK_PATH_DEPTH", domain.DefaultPathDepth),
		PathAnchor: mustAnchor("COURSEMARK_PATH_ANCHOR"),

		// Store
		StoreDriver: strings.ToLower(getenv("COURSEMARK_STORE", StoreSQLite)),

		SQLDSN:          getenv("COURSEMARK_SQL_DSN", "coursemark.db"),
		SQLMaxOpenConns: getenvInt("COURSEMARK_SQL_MAX_OPEN_CONNS", 10),
		SQLDebug:        mustBool("COURSEMARK_SQL_DEBUG", false),

		RedisAddr:             getenv("COURSEMARK_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("COURSEMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("COURSEMARK_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("COURSEMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("COURSEMARK_REDIS_DB", 0),
		RedisDT:               mustDuration("COURSEMARK_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("COURSEMARK_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("COURSEMARK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:         getenvInt("COURSEMARK_REDIS_POOL_SIZE", 10),

		MongoURI:      getenv("COURSEMARK_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("COURSEMARK_MONGO_DATABASE", "coursemark"),

		ConnectTimeout: mustDuration("COURSEMARK_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:  mustDuration("COURSEMARK_RETRY_INTERVAL", 2*time.Second),
		MaxWait:        mustDuration("COURSEMARK_MAX_WAIT", 10*time.Second),
		PingTimeout:    mustDuration("COURSEMARK_PING_TIMEOUT", 5*time.Second),
		WarnThreshold:  getenvInt("COURSEMARK_WARN_THRESHOLD", 3),

		UserHeader: getenv("COURSEMARK_USER_HEADER", "X-User-ID"),

		RateLimitBurst:     getenvInt("COURSEMARK_RATE_LIMIT_BURST", 20),
		RateLimitPerMinute: getenvInt("COURSEMARK_RATE_LIMIT_PER_MINUTE", 60),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("COURSEMARK_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("COURSEMARK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("COURSEMARK_TRUST_PROXY", true),
	}

	switch cfg.StoreDriver {
	case StoreSQLite:
	case StorePostgres:
		cfg.SQLDSN = requireEnv("COURSEMARK_SQL_DSN")
	case StoreRedis:
		cfg.RedisAddr = requireEnv("COURSEMARK_REDIS_ADDR")
	case StoreMongo:
		cfg.MongoURI = requireEnv("COURSEMARK_MONGO_URI")
	default:
		panic(fmt.Sprintf("❌ FATAL: unsupported COURSEMARK_STORE %q (sqlite, postgres, redis, mongo)", cfg.StoreDriver))
	}

	if cfg.PathDepth < 1 {
		panic(fmt.Sprintf("❌ FATAL: COURSEMARK_PATH_DEPTH must be >= 1, got %d", cfg.PathDepth))
	}

	// Validate Redis password configuration
	if cfg.StoreDriver == StoreRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: COURSEMARK_REDIS_PASSWORD is required when COURSEMARK_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.StoreDriver == StorePostgres {
		cp.SQLDSN = "***REDACTED***"
	}
	if strings.Contains(cp.MongoURI, "@") {
		cp.MongoURI = "***REDACTED***"
	}
	return cp
}

// PathOptions returns the breadcrumb settings.
func (c *Config) PathOptions() domain.PathOptions {
	return domain.PathOptions{Depth: c.PathDepth, Anchor: c.PathAnchor}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
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

func mustAnchor(key string) domain.PathAnchor {
	a, err := domain.ParsePathAnchor(os.Getenv(key))
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %v", key, err))
	}
	return a
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
