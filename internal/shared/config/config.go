package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"resume-ats/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string

	LLMProvider       string
	LLMModel          string
	LLMFallbackModels []string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	OpenAINoTempModel []string

	OCRServiceURL string
	OCRAPIKey     string
	OCRTimeout    time.Duration

	AnalysisTimeout time.Duration
	MaxUploadBytes  int64

	RateLimitWindow time.Duration
	RateLimitMax    int

	LayoutLineTolerance float64
	LayoutColumnSpread  float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("S3_SSE_KMS_KEY_ID", ""),
		DatabaseURL:     dbURL,

		LLMProvider:       normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:          getEnv("LLM_MODEL", ""),
		LLMFallbackModels: splitAndTrim(getEnv("LLM_FALLBACK_MODELS", "")),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAINoTempModel: splitAndTrim(getEnv("LLM_NO_TEMP0_MODELS", "")),

		OCRServiceURL: getEnv("OCR_SERVICE_URL", ""),
		OCRAPIKey:     getEnv("OCR_API_KEY", ""),
		OCRTimeout:    getDuration("OCR_TIMEOUT", 20*time.Second),

		AnalysisTimeout: getDuration("ANALYSIS_TIMEOUT", 30*time.Second),
		MaxUploadBytes:  getInt64("MAX_UPLOAD_BYTES", 10<<20),

		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    int(getInt64("RATE_LIMIT_MAX", 100)),

		LayoutLineTolerance: getFloat("LAYOUT_LINE_TOLERANCE", 2),
		LayoutColumnSpread:  getFloat("LAYOUT_COLUMN_SPREAD", 200),
	}
}

// JSONLogs reports whether logs should use the JSON encoder.
func (c Config) JSONLogs() bool {
	return c.Env != "dev" && c.Env != "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	warnInvalid(key, raw, def)
	return def
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "placeholder":
		return "none"
	default:
		return "gemini"
	}
}

func warnInvalid(key, raw string, def any) {
	telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw, "default": def})
}
