package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration, assembled from the environment.
type Config struct {
	Server       Server
	Redis        RedisConfig
	Kafka        KafkaConfig
	Vision       VisionConfig
	Verification VerificationConfig
	Logging      LoggingConfig
	Sanitizer    SanitizerConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	RegulatedMode bool
	JWTSigningKey string
	JWTIssuer     string
}

// RedisConfig configures the optional Redis backend. An empty URL keeps the
// result store and attempt limiter in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit sink. No brokers means no sink.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// VisionConfig configures the OpenAI-compatible vision model.
type VisionConfig struct {
	Enabled          bool
	BaseURL          string
	APIKey           string
	Model            string
	Timeout          time.Duration
	MaxTokens        int
	FailureThreshold int
	Cooldown         time.Duration
}

type VerificationConfig struct {
	NameMatching  string
	AttemptLimit  int
	AttemptWindow time.Duration
	ResultTTL     time.Duration
	AuditBuffer   int
}

type LoggingConfig struct {
	Level      slog.Level
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// SanitizerConfig points at an optional YAML file of extra OCR confusions.
type SanitizerConfig struct {
	OverridesPath string
}

// FromEnv builds the configuration from environment variables so main stays
// lean. A .env file in the working directory (or DOCVERIFY_ENV_FILE) is loaded
// first without overriding variables that are already set.
func FromEnv() Config {
	envFile := os.Getenv("DOCVERIFY_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:          envString("DOCVERIFY_ADDR", ":8080"),
			RegulatedMode: envBool("REGULATED_MODE", false),
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     envString("JWT_ISSUER", "docverify"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "docverify.audit"),
		},
		Vision: VisionConfig{
			Enabled:          envBool("VISION_ENABLED", true),
			BaseURL:          os.Getenv("VISION_BASE_URL"),
			APIKey:           os.Getenv("VISION_API_KEY"),
			Model:            envString("VISION_MODEL", "gpt-4o-mini"),
			Timeout:          envDuration("VISION_TIMEOUT", 30*time.Second),
			MaxTokens:        envInt("VISION_MAX_TOKENS", 512),
			FailureThreshold: envInt("VISION_BREAKER_FAILURES", 5),
			Cooldown:         envDuration("VISION_BREAKER_COOLDOWN", 30*time.Second),
		},
		Verification: VerificationConfig{
			NameMatching:  envString("NAME_MATCHING", "strict"),
			AttemptLimit:  envInt("VERIFICATION_ATTEMPT_LIMIT", 10),
			AttemptWindow: envDuration("VERIFICATION_ATTEMPT_WINDOW", time.Hour),
			ResultTTL:     envDuration("VERIFICATION_RESULT_TTL", 24*time.Hour),
			AuditBuffer:   envInt("AUDIT_BUFFER", 256),
		},
		Logging: LoggingConfig{
			Level:      envLevel("LOG_LEVEL", slog.LevelInfo),
			Format:     envString("LOG_FORMAT", "json"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 28),
		},
		Sanitizer: SanitizerConfig{
			OverridesPath: os.Getenv("SANITIZER_OVERRIDES"),
		},
	}
}

// VisionConfigured reports whether the vision channel can be called.
func (c Config) VisionConfigured() bool {
	return c.Vision.Enabled && c.Vision.APIKey != ""
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envLevel(key string, def slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return def
	}
	return level
}
