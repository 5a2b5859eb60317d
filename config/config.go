package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every knob the server reads from the environment.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string

	// Source resolver.
	MetadataServiceURL string

	// Extraction pipeline.
	AnalyzerPath    string
	ClipStorageRoot string
	WorkDir         string
	Workers         int
	JobQueueSize    int

	// Lifecycle events. Empty broker disables publishing.
	KafkaBroker string
	KafkaTopic  string

	// Review policy: when true a reviewer's repeat vote on the same
	// submission replaces their previous one instead of accumulating.
	SingleVotePerReviewer bool
}

// Load reads configuration from the environment, honouring a local .env
// file when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseDSN:           getEnv("DATABASE_DSN", "host=localhost user=waldo password=waldo dbname=waldo port=5432 sslmode=disable"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		MetadataServiceURL:    getEnv("METADATA_SERVICE_URL", "http://localhost:9090"),
		AnalyzerPath:          getEnv("ANALYZER_PATH", "analyzer"),
		ClipStorageRoot:       getEnv("CLIP_STORAGE_ROOT", "clips"),
		WorkDir:               getEnv("WORK_DIR", os.TempDir()),
		Workers:               getEnvInt("PIPELINE_WORKERS", 2),
		JobQueueSize:          getEnvInt("PIPELINE_QUEUE_SIZE", 64),
		KafkaBroker:           getEnv("KAFKA_BROKER", ""),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "waldo.submissions"),
		SingleVotePerReviewer: getEnvBool("SINGLE_VOTE_PER_REVIEWER", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
