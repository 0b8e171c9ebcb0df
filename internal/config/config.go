package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DatabaseDSN string // postgres DSN, ex: "host=db user=gnezdo dbname=gnezdo sslmode=disable"

	PolicyFile           string        // path to the booking policy yaml
	PolicyReloadInterval time.Duration // interval to reload the policy file (default: 1h)

	WebhookURL       string        // outbound booking-mutation webhook; empty = disabled
	WebhookTimeout   time.Duration // per-delivery timeout (default: 5s)
	WebhookQueueSize int           // buffered events before drops (default: 64)

	// Redis (availability cache)
	RedisAddr     string        // ex: "localhost:6379"
	RedisPassword string        // optional
	RedisDB       int           // Redis DB number
	RedisDT       time.Duration // dial timeout (ex: 5s)
	RedisRT       time.Duration // read timeout (ex: 3s)
	RedisWT       time.Duration // write timeout (ex: 3s)
	CacheTTL      time.Duration // availability snapshot TTL (default: 5m)

	// Tenant access: "token=tenant-id,token2=tenant-id2"
	AuthTokens map[string]string

	TrustProxy        bool // true => trust X-Forwarded-For headers
	RateBurst         int  // per-IP token bucket burst
	RateRefillPerMin  int  // per-IP token refills per minute
	RateLimitDisabled bool // true => skip the rate limit middleware entirely
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("GNEZDO_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("GNEZDO_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("GNEZDO_LOG_LEVEL", "info"),
		PrettyLog: mustBool("GNEZDO_PRETTY_LOG", false),

		// Storage
		DatabaseDSN: requireEnv("GNEZDO_DATABASE_DSN"),

		// Policy
		PolicyFile:           getenv("GNEZDO_POLICY_FILE", "/app/policy.yaml"),
		PolicyReloadInterval: mustDuration("GNEZDO_POLICY_RELOAD_INTERVAL", time.Hour),

		// Webhook
		WebhookURL:       getenv("GNEZDO_WEBHOOK_URL", ""),
		WebhookTimeout:   mustDuration("GNEZDO_WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookQueueSize: getenvInt("GNEZDO_WEBHOOK_QUEUE_SIZE", 64),

		// Redis settings
		RedisAddr:     requireEnv("GNEZDO_REDIS_ADDR"),
		RedisPassword: getenv("GNEZDO_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("GNEZDO_REDIS_DB", 0),
		RedisDT:       mustDuration("GNEZDO_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:       mustDuration("GNEZDO_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:       mustDuration("GNEZDO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		CacheTTL:      mustDuration("GNEZDO_CACHE_TTL", 5*time.Minute),

		// Access
		AuthTokens: parseAuthTokens(requireEnv("GNEZDO_AUTH_TOKENS")),
		TrustProxy: mustBool("GNEZDO_TRUST_PROXY", true),

		// Rate limiting
		RateBurst:         getenvInt("GNEZDO_RATE_BURST", 20),
		RateRefillPerMin:  getenvInt("GNEZDO_RATE_REFILL_PER_MIN", 60),
		RateLimitDisabled: mustBool("GNEZDO_RATE_LIMIT_DISABLED", false),
	}

	if len(cfg.AuthTokens) == 0 {
		panic("FATAL: GNEZDO_AUTH_TOKENS must contain at least one token=tenant pair")
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

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("FATAL: Required environment variable %s is not set", key))
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

// parseAuthTokens parses "token=tenant,token2=tenant2" into a lookup map.
// Malformed pairs panic: a half-configured tenant list must never boot.
func parseAuthTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, tenant, ok := strings.Cut(pair, "=")
		token = strings.TrimSpace(token)
		tenant = strings.TrimSpace(tenant)
		if !ok || token == "" || tenant == "" {
			panic(fmt.Sprintf("FATAL: malformed auth token pair %q", pair))
		}
		tokens[token] = tenant
	}
	return tokens
}
