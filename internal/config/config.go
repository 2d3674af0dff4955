package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	OpenAIAPIKey  string
	OpenAIModel   string
	ClassifierRPS float64

	// TrustClientVerdicts accepts a client-supplied verdict on post creation
	// instead of scheduling analysis. Off by default.
	TrustClientVerdicts bool

	UploadDir string
	GCSBucket string

	AllowedOrigins []string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:              getEnv("DB_NAME", "veritas"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ClassifierRPS:       getEnvFloat("CLASSIFIER_RPS", 1),
		TrustClientVerdicts: getEnvBool("TRUST_CLIENT_VERDICTS", false),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		GCSBucket:           getEnv("GCS_BUCKET", ""),
		AllowedOrigins:      []string{getEnv("FRONTEND_ORIGIN", "http://localhost:3000")},
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logrus.Warnf("Invalid boolean for %s: %q, using default", key, value)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.Warnf("Invalid number for %s: %q, using default", key, value)
		return fallback
	}
	return parsed
}
