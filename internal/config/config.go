package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Prefix is prepended to every environment variable read by Load.
const Prefix = "APPSHELF_"

type Config struct {
	ListenPort      string        `validate:"required"` // ex: ":8080"
	ShutdownTimeout time.Duration `validate:"gt=0"`     // ex: 5s

	LogLevel  string `validate:"oneof=debug info warn error"`
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	FeedURL         string        `validate:"required"` // published CSV URL or local path
	FeedTimeout     time.Duration `validate:"gt=0"`     // per-fetch HTTP timeout
	ReloadInterval  time.Duration `validate:"gt=0"`     // periodic feed refresh (default: 1h)
	DefaultPageSize int           `validate:"gte=0"`    // 0 = show everything
	PublicBaseURL   string        `validate:"required,url"`

	CookieName   string `validate:"required"`
	CookieSecure bool

	// Redis
	RedisAddr           string        `validate:"required"` // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           `validate:"gte=0"`
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int           `validate:"gt=0"`
	RedisConnectTimeout time.Duration `validate:"gt=0"`
	RedisRetryInterval  time.Duration `validate:"gt=0"`
	RedisMaxWait        time.Duration `validate:"gtefield=RedisRetryInterval"`
	RedisPingTimeout    time.Duration `validate:"gt=0"`
	RedisWarnThreshold  int           `validate:"gte=0"`

	// Visitor state
	StateTTL    time.Duration `validate:"gt=0"` // idle lifetime of a visitor hash
	SessionIdle time.Duration `validate:"gt=0"` // visitors idle longer are purged by the GC
	GCInterval  time.Duration `validate:"gt=0"`
	PingWindow  time.Duration `validate:"gt=0"` // visit dedup window

	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict /reload to specific IPs or CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // optional, origins allowed to call the API from a browser

	RateLimitBurst  int           `validate:"gt=0"` // stats ping bucket size
	RateLimitRefill time.Duration `validate:"gt=0"` // one token per refill interval
}

// Load reads the configuration from the environment, falling back to the
// YAML file named by APPSHELF_CONFIG_FILE and then to built-in defaults.
// Invalid configuration panics, as the process cannot start without it.
func Load() *Config {
	src, err := newSource(os.Getenv(Prefix + "CONFIG_FILE"))
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	cfg := src.build()
	if err := Validate(cfg); err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid configuration: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (s *source) build() *Config {
	return &Config{
		// Server settings
		ListenPort:      s.getenv("LISTEN_PORT", ":8080"),
		ShutdownTimeout: s.mustDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  s.getenv("LOG_LEVEL", "info"),
		PrettyLog: s.mustBool("PRETTY_LOG", false),

		// Catalog feed
		FeedURL:         s.requireEnv("FEED_URL"),
		FeedTimeout:     s.mustDuration("FEED_TIMEOUT", 15*time.Second),
		ReloadInterval:  s.mustDuration("RELOAD_INTERVAL", time.Hour),
		DefaultPageSize: s.getenvInt("DEFAULT_PAGE_SIZE", 24),
		PublicBaseURL:   s.requireEnv("PUBLIC_BASE_URL"),

		CookieName:   s.getenv("COOKIE_NAME", "appshelf_visitor"),
		CookieSecure: s.mustBool("COOKIE_SECURE", true),

		// Redis settings
		RedisAddr:           s.requireEnv("REDIS_ADDR"),
		RedisUser:           s.getenv("REDIS_USERNAME", ""),
		RedisPassword:       s.getenv("REDIS_PASSWORD", ""),
		RedisDB:             s.getenvInt("REDIS_DB", 0),
		RedisDT:             s.mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             s.mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             s.mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       s.getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: s.mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  s.mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        s.mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    s.mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  s.getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Visitor state
		StateTTL:    s.mustDuration("STATE_TTL", 90*24*time.Hour),
		SessionIdle: s.mustDuration("SESSION_IDLE", 30*24*time.Hour),
		GCInterval:  s.mustDuration("GC_INTERVAL", 24*time.Hour),
		PingWindow:  s.mustDuration("PING_WINDOW", 15*time.Minute),

		// Access restrictions
		AllowedHosts: splitAndTrim(s.getenv("ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(s.getenv("ALLOWED_CIDRS", "")),
		TrustProxy:   s.mustBool("TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(s.getenv("CORS_ORIGINS", "")),

		RateLimitBurst:  s.getenvInt("RATE_LIMIT_BURST", 5),
		RateLimitRefill: s.mustDuration("RATE_LIMIT_REFILL", 2*time.Second),
	}
}

// Validate checks struct constraints and reports every violation by
// environment-style field name.
func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// source resolves a setting from the environment first, then the overlay
// file. Overlay keys are the variable names without prefix, lowercased.
type source struct {
	overlay map[string]string
}

func newSource(file string) (*source, error) {
	s := &source{overlay: map[string]string{}}
	if file == "" {
		return s, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	for k, v := range raw {
		s.overlay[strings.ToLower(k)] = scalar(v)
	}
	return s, nil
}

// scalar flattens a YAML value to the string an env var would hold.
// Sequences become comma-separated lists.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, scalar(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func (s *source) lookup(key string) string {
	if v := os.Getenv(Prefix + key); v != "" {
		return v
	}
	return s.overlay[strings.ToLower(key)]
}

// helpers
func (s *source) getenv(key, def string) string {
	if v := s.lookup(key); v != "" {
		return v
	}
	return def
}

func (s *source) requireEnv(key string) string {
	v := s.lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s%s is not set", Prefix, key))
	}
	return v
}

func (s *source) getenvInt(key string, def int) int {
	if v := s.lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (s *source) mustBool(key string, def bool) bool {
	if v := s.lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func (s *source) mustDuration(key string, def time.Duration) time.Duration {
	if v := s.lookup(key); v != "" {
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
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
