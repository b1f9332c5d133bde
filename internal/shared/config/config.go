package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string
	JWTSecret       string

	BlobStoreType    string
	LocalStoreDir    string
	LegacyUploadsDir string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	S3Endpoint       string
	S3AccessKeyID    string
	S3SecretKey      string
	SSEKMSKeyID      string

	AnalyzerProvider string
	AnalyzerModel    string
	AnalyzerTimeout  time.Duration
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	GeminiAPIKey     string

	AMQPURL      string
	AMQPExchange string

	RateLimitRPS           float64
	RateLimitBurst         int
	UploadRateLimitRPS     float64
	UploadRateLimitBurst   int
	AnalysisRateLimitRPS   float64
	AnalysisRateLimitBurst int

	ClassifierRulesFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:             env,
		DatabaseURL:     dbURL,
		JWTSecret:       getEnv("JWT_SECRET", ""),

		BlobStoreType:    normalizeStoreType(getEnv("BLOB_STORE", "local")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),
		LegacyUploadsDir: getEnv("LEGACY_UPLOADS_DIR", ""),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", "resumes/"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:    getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:      getEnv("S3_SECRET_ACCESS_KEY", ""),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),

		AnalyzerProvider: strings.ToLower(getEnv("ANALYZER_PROVIDER", "anthropic")),
		AnalyzerModel:    getEnv("ANALYZER_MODEL", ""),
		AnalyzerTimeout:  getEnvDuration("ANALYZER_TIMEOUT", 90*time.Second),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "resume_matcher"),

		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		UploadRateLimitRPS:     getEnvFloat("UPLOAD_RATE_LIMIT_RPS", 0.2),
		UploadRateLimitBurst:   getEnvInt("UPLOAD_RATE_LIMIT_BURST", 5),
		AnalysisRateLimitRPS:   getEnvFloat("ANALYSIS_RATE_LIMIT_RPS", 0.1),
		AnalysisRateLimitBurst: getEnvInt("ANALYSIS_RATE_LIMIT_BURST", 3),

		ClassifierRulesFile: getEnv("CLASSIFIER_RULES_FILE", ""),
	}
}

// IsDevLike reports whether env permits development fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: %s invalid float %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
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
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "r2":
		return "s3"
	case "postgres", "pg", "db":
		return "postgres"
	case "inline", "base64":
		return "inline"
	default:
		return "local"
	}
}
