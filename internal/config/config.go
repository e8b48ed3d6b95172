package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPublicKeyPath string

	// Realtime tuning. SessionBuffer is the per-session outbound event queue;
	// events are dropped once it fills (the durable store is the replay path).
	SessionBuffer  int
	WSReadLimit    int64
	WSPingPeriod   time.Duration
	WSWriteTimeout time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Messages      string
	Notifications string
	Profiles      string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Messages:      getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Profiles:      getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "talenthub-attachments"),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		SessionBuffer:  getEnvInt("WS_SESSION_BUFFER", 256),
		WSReadLimit:    int64(getEnvInt("WS_READ_LIMIT", 4096)),
		WSPingPeriod:   time.Duration(getEnvInt("WS_PING_PERIOD_SECONDS", 54)) * time.Second,
		WSWriteTimeout: time.Duration(getEnvInt("WS_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
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
