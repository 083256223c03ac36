package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Development bool
	Port        string

	ClerkSecretKey string

	// Firebase (Firestore, Storage, FCM)
	FirebaseProjectID       string
	FirebaseCredentialsJSON string // base64 encoded service account
	FirebaseCredentialsFile string

	// Object storage
	StorageBackend  string // "firebase" or "s3"
	StorageBucket   string
	S3Endpoint      string
	S3Region        string
	S3AccessKeyID   string
	S3AccessSecret  string
	S3PublicBaseURL string

	// Workout history
	DatabaseURL string

	// Coliseum thumbnails
	ThumbnailAPIURL         string
	ThumbnailBatchSize      int
	ThumbnailBatchDelay     time.Duration
	ThumbnailRescanInterval time.Duration

	NotifyWorkers int

	MetricsUser string
	MetricsPass string

	// Clerk user ids allowed to run thumbnail maintenance
	AdminUserIDs []string
}

// Load reads the configuration from the environment, loading a .env file first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Development: getEnvAsBool("DEVELOPMENT", false),
		Port:        getEnv("PORT", "3333"),

		ClerkSecretKey: getEnv("CLERK_SECRET_KEY", ""),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "./serviceAccountKey.json"),

		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", "firebase")),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3AccessSecret:  getEnv("S3_ACCESS_KEY_SECRET", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		ThumbnailAPIURL:         getEnv("THUMBNAIL_API_URL", ""),
		ThumbnailBatchSize:      getEnvAsInt("THUMBNAIL_BATCH_SIZE", 3),
		ThumbnailBatchDelay:     getEnvAsDuration("THUMBNAIL_BATCH_DELAY", time.Second),
		ThumbnailRescanInterval: getEnvAsDuration("THUMBNAIL_RESCAN_INTERVAL", 30*time.Minute),

		NotifyWorkers: getEnvAsInt("NOTIFY_WORKERS", 5),

		MetricsUser: getEnv("METRICS_USER", ""),
		MetricsPass: getEnv("METRICS_PASS", ""),

		AdminUserIDs: getEnvAsList("ADMIN_USER_IDS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.ClerkSecretKey == "" {
		return fmt.Errorf("CLERK_SECRET_KEY is required")
	}

	if c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	switch c.StorageBackend {
	case "firebase":
	case "s3":
		if c.S3Endpoint == "" || c.S3AccessKeyID == "" || c.S3AccessSecret == "" {
			return fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_ACCESS_KEY_SECRET are required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.StorageBucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}

	if c.ThumbnailBatchSize < 1 {
		return fmt.Errorf("THUMBNAIL_BATCH_SIZE must be positive")
	}

	if c.NotifyWorkers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
