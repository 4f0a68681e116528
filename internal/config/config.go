package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAllowedOrigins are the browser origins of the public site and its local dev servers.
var DefaultAllowedOrigins = []string{
	"https://sekawan-grup.com",
	"https://api.sekawan-grup.com",
	"http://localhost:3000",
	"http://localhost:8080",
}

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Database
	DatabaseURL     string // postgres://... or file:raya.db / :memory: (sqlite)
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	DBLogSlowQuery  time.Duration // slow query threshold for the gorm logger
	AutoMigrate     bool
	SeedFile        string // optional YAML catalog imported into an empty database
	AdminUsername   string // default admin created when no admin exists
	AdminPassword   string
	AdminPwdDefault bool // true when AdminPassword fell back to the built-in default

	// Sessions
	JWTSecret string
	TokenTTL  time.Duration

	// Public catalog cache
	CatalogRefreshInterval time.Duration
	CatalogCacheTTL        time.Duration

	// Redis (optional, empty addr => in-memory cache and revocation list)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold  int           // warn after this many attempts

	// Image uploads (optional)
	CloudinaryURL    string
	CloudinaryFolder string

	// Access restrictions
	AllowedOrigins    []string // CORS origins, supports "*.example.com"
	AllowedCIDRS      []string // restrict healthz/readyz/infra to these IPs/CIDRs
	TrustProxy        bool     // resolve client IP from proxy headers
	MobileOnly        bool     // reject non Android/iOS user agents on /api
	LoginBurst        int      // login attempts allowed per IP before throttling
	LoginRefillPerMin int
}

// DefaultAPIURL is the production API the back office talks to.
const DefaultAPIURL = "https://api.sekawan-grup.com"

// ClientConfig configures the raya-admin back office client.
type ClientConfig struct {
	APIURL    string
	LogLevel  string
	PrettyLog bool
}

// LoadClient reads the back office settings. Nothing is required: the client
// talks to DefaultAPIURL unless RAYA_API_URL overrides it.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		APIURL:    strings.TrimRight(getenv("RAYA_API_URL", DefaultAPIURL), "/"),
		LogLevel:  getenv("RAYA_LOG_LEVEL", "warn"),
		PrettyLog: mustBool("RAYA_PRETTY_LOG", true),
	}
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load() // missing .env is fine in production

	adminPassword := getenv("RAYA_ADMIN_PASSWORD", "")
	adminDefault := false
	if adminPassword == "" {
		adminPassword = "admin123"
		adminDefault = true
	}

	cfg := &Config{
		ListenPort:      listenPort(),
		ShutdownTimeout: mustDuration("RAYA_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("RAYA_REQUEST_TIMEOUT", 10*time.Second),

		LogLevel:  getenv("RAYA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("RAYA_PRETTY_LOG", false),

		DatabaseURL:     requireEnv("RAYA_DATABASE_URL"),
		DBMaxOpenConns:  getenvInt("RAYA_DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:  getenvInt("RAYA_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:   mustDuration("RAYA_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBLogSlowQuery:  mustDuration("RAYA_DB_SLOW_QUERY", 200*time.Millisecond),
		AutoMigrate:     mustBool("RAYA_DB_AUTO_MIGRATE", true),
		SeedFile:        getenv("RAYA_SEED_FILE", ""),
		AdminUsername:   getenv("RAYA_ADMIN_USERNAME", "admin"),
		AdminPassword:   adminPassword,
		AdminPwdDefault: adminDefault,

		JWTSecret: requireEnv("RAYA_JWT_SECRET"),
		TokenTTL:  mustDuration("RAYA_TOKEN_TTL", 24*time.Hour),

		CatalogRefreshInterval: mustDuration("RAYA_CATALOG_REFRESH_INTERVAL", 10*time.Minute),
		CatalogCacheTTL:        mustDuration("RAYA_CATALOG_CACHE_TTL", time.Hour),

		RedisAddr:           getenv("RAYA_REDIS_ADDR", ""),
		RedisUser:           getenv("RAYA_REDIS_USERNAME", ""),
		RedisPassword:       getenv("RAYA_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("RAYA_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		CloudinaryURL:    getenv("CLOUDINARY_URL", ""),
		CloudinaryFolder: getenv("RAYA_CLOUDINARY_FOLDER", "raya/products"),

		AllowedOrigins:    getenvSlice("RAYA_ALLOWED_ORIGINS", DefaultAllowedOrigins),
		AllowedCIDRS:      splitAndTrim(getenv("RAYA_ALLOWED_CIDRS", "")),
		TrustProxy:        mustBool("RAYA_TRUST_PROXY", false),
		MobileOnly:        mustBool("RAYA_MOBILE_ONLY", false),
		LoginBurst:        getenvInt("RAYA_LOGIN_BURST", 10),
		LoginRefillPerMin: getenvInt("RAYA_LOGIN_REFILL_PER_MIN", 5),
	}

	if len(cfg.JWTSecret) < 16 {
		panic("❌ FATAL: RAYA_JWT_SECRET must be at least 16 characters")
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.JWTSecret = "***REDACTED***"
		cfgCopy.AdminPassword = "***REDACTED***"
		cfgCopy.DatabaseURL = redactURL(cfg.DatabaseURL)
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.CloudinaryURL != "" {
			cfgCopy.CloudinaryURL = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// listenPort honours RAYA_LISTEN_PORT, then the PaaS-style PORT variable.
func listenPort() string {
	if v := os.Getenv("RAYA_LISTEN_PORT"); v != "" {
		return v
	}
	if v := os.Getenv("PORT"); v != "" {
		if strings.HasPrefix(v, ":") {
			return v
		}
		return ":" + v
	}
	return ":8080"
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

func getenvSlice(key string, def []string) []string {
	if parts := splitAndTrim(os.Getenv(key)); len(parts) > 0 {
		return parts
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

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// redactURL hides the userinfo part of a DSN ("postgres://user:pw@host/db").
func redactURL(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***REDACTED***" + dsn[at:]
}
