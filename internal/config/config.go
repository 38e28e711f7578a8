package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key: LISTEN_PORT is read from MAPMARKS_LISTEN_PORT.
const EnvPrefix = "MAPMARKS"

const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ImportFile     string        // categories/bookmarks YAML merged at startup (optional)
	POIFile        string        // POI dataset YAML (optional, empty = no POI lookups)
	Language       string        // BCP 47 tag used for generated labels
	HitRadius      float64       // meters, tap tolerance when resolving a point to a bookmark
	FlushInterval  time.Duration // how often dirty state is written to storage
	ReloadInterval time.Duration // how often ImportFile is merged again (0 = startup only)

	Storage    []string // "redis", "sqlite" or both, in load priority order
	SQLitePath string   // ex: "/data/mapmarks.db"

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts    []string      // optional, restrict access to specific Host headers
	AllowedCIDRS    []string      // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy      bool          // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimitBurst  int           // mutations allowed in a burst per client
	RateLimitRefill time.Duration // one token is added back every RateLimitRefill
}

// env resolves keys against MAPMARKS_* variables and, when
// MAPMARKS_CONFIG_FILE is set, the values of that file.
var env = newEnv()

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

func Load() *Config {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Cannot read .env file: %v", err))
	}

	env = newEnv()
	if file := getenv("CONFIG_FILE", ""); file != "" {
		env.SetConfigFile(file)
		if err := env.ReadInConfig(); err != nil {
			panic(fmt.Sprintf("❌ FATAL: Cannot read config file %s: %v", file, err))
		}
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", true),

		// Data
		ImportFile:     getenv("IMPORT_FILE", ""),
		POIFile:        getenv("POI_FILE", ""),
		Language:       getenv("LANGUAGE", "en"),
		HitRadius:      getenvFloat("HIT_RADIUS", 50),
		FlushInterval:  mustDuration("FLUSH_INTERVAL", 30*time.Second),
		ReloadInterval: mustDuration("RELOAD_INTERVAL", 0),

		// Storage
		Storage:    parseStorage(getenv("STORAGE", StorageSQLite)),
		SQLitePath: getenv("SQLITE_PATH", "/data/mapmarks.db"),

		// Access restrictions
		AllowedHosts:    splitAndTrim(getenv("ALLOWED_HOSTS", "")),
		AllowedCIDRS:    parseAllowedIPs(getenv("ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("TRUST_PROXY", true),
		RateLimitBurst:  getenvInt("RATE_LIMIT_BURST", 20),
		RateLimitRefill: mustDuration("RATE_LIMIT_REFILL", time.Second),
	}

	if cfg.UsesRedis() {
		cfg.RedisAddr = requireEnv("REDIS_ADDR")
		cfg.RedisUser = getenv("REDIS_USERNAME", "default")
		cfg.RedisPasswordRequired = mustBool("REDIS_PASSWORD_REQUIRED", true)
		cfg.RedisPassword = getenv("REDIS_PASSWORD", "")
		cfg.RedisDB = requireEnvInt("REDIS_DB")
		cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
		cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
		cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
		cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
		cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
		cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: MAPMARKS_REDIS_PASSWORD is required when MAPMARKS_REDIS_PASSWORD_REQUIRED=true")
		}
	}

	if cfg.UsesSQLite() && cfg.SQLitePath == "" {
		panic("❌ FATAL: MAPMARKS_SQLITE_PATH must not be empty when sqlite storage is enabled")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (c *Config) UsesRedis() bool  { return slices.Contains(c.Storage, StorageRedis) }
func (c *Config) UsesSQLite() bool { return slices.Contains(c.Storage, StorageSQLite) }

// helpers
func envName(key string) string {
	return EnvPrefix + "_" + key
}

func getenv(key, def string) string {
	if v := env.GetString(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := env.GetString(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", envName(key)))
	}
	return v
}

func requireEnvInt(key string) int {
	v := env.GetString(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", envName(key)))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", envName(key), v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := env.GetString(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := env.GetString(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := env.GetString(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := env.GetString(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseStorage(s string) []string {
	backends := make([]string, 0, 2)
	for _, b := range splitAndTrim(strings.ToLower(s)) {
		if b != StorageRedis && b != StorageSQLite {
			panic(fmt.Sprintf("❌ FATAL: Unknown storage backend %q in %s", b, envName("STORAGE")))
		}
		if !slices.Contains(backends, b) {
			backends = append(backends, b)
		}
	}
	if len(backends) == 0 {
		panic(fmt.Sprintf("❌ FATAL: %s must name at least one backend", envName("STORAGE")))
	}
	return backends
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
