package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures the process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// Evaluator settings. An empty API key selects the built-in mock so the
	// service stays runnable offline.
	GeminiAPIKey string
	GeminiModel  string

	// License verifier settings. An empty base URL selects the built-in mock.
	VerifierBaseURL string
	VerifierSecret  string

	// Report assets
	TemplatePath string
	FontPath     string

	// Concurrent evaluator and render calls across all users
	ConcurrencyLimit int64

	Redis RedisConfig
}

// RedisConfig holds connection settings for the optional Redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          envOr("BANDCHECK_ADDR", ":8080"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("JWT_ISSUER", "bandcheck"),
		JWTAudience:   envOr("JWT_AUDIENCE", "bandcheck-frontend"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),

		VerifierBaseURL: os.Getenv("LICENSE_VERIFIER_URL"),
		VerifierSecret:  os.Getenv("LICENSE_VERIFIER_SECRET"),

		TemplatePath: envOr("REPORT_TEMPLATE_PATH", "assets/template.png"),
		FontPath:     os.Getenv("REPORT_FONT_PATH"),

		ConcurrencyLimit: int64(envInt("ANALYSIS_CONCURRENCY", 8)),

		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
