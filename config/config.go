package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string

	MongoURI     string
	DatabaseName string

	SessionDefaultTTL  time.Duration
	SessionRememberTTL time.Duration
	ResetTokenTTL      time.Duration

	JWTSecret     string
	JWTExpiration time.Duration

	// StorageBackend selects the blob store: "disk", "b2", or "minio".
	StorageBackend string
	UploadsDir     string

	B2ApplicationKeyID string
	B2ApplicationKey   string
	B2BucketName       string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	MaxFileSize int64
	// QuotaBytes is the fixed per-user storage quota (15 GiB equivalent).
	QuotaBytes int64

	JanitorInterval time.Duration
	// TrashRetention is how long trashed items are kept before the janitor
	// purges them; zero disables purging.
	TrashRetention time.Duration

	AllowedOrigins []string
}

var AppConfig *Config

func LoadConfig() {
	AppConfig = &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DATABASE_NAME", "nimbusdrive"),

		SessionDefaultTTL:  parseDuration(getEnv("SESSION_DEFAULT_TTL", "12h")),
		SessionRememberTTL: parseDuration(getEnv("SESSION_REMEMBER_TTL", "720h")),
		ResetTokenTTL:      parseDuration(getEnv("RESET_TOKEN_TTL", "1h")),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration: parseDuration(getEnv("JWT_EXPIRATION", "24h")),

		StorageBackend: getEnv("STORAGE_BACKEND", "disk"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),

		B2ApplicationKeyID: getEnv("B2_APPLICATION_KEY_ID", ""),
		B2ApplicationKey:   getEnv("B2_APPLICATION_KEY", ""),
		B2BucketName:       getEnv("B2_BUCKET_NAME", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "nimbusdrive-files"),
		MinioUseSSL:    parseBool(getEnv("MINIO_USE_SSL", "false")),

		MaxFileSize: parseInt64(getEnv("MAX_FILE_SIZE", "104857600")),
		QuotaBytes:  parseInt64(getEnv("QUOTA_BYTES", "16106127360")),

		JanitorInterval: parseDuration(getEnv("JANITOR_INTERVAL", "1h")),
		TrashRetention:  parseDuration(getEnv("TRASH_RETENTION", "720h")),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	logConfig()
	validateConfig()
}

func logConfig() {
	log.Println("Configuration loaded:")
	log.Printf("  Port: %s", AppConfig.Port)
	log.Printf("  Environment: %s", AppConfig.Env)
	log.Printf("  Database: %s", AppConfig.DatabaseName)
	log.Printf("  MongoDB URI: %s", maskConnectionString(AppConfig.MongoURI))
	log.Printf("  JWT Secret: %s", maskSecret(AppConfig.JWTSecret))
	log.Printf("  Session TTL: %v (remember me: %v)", AppConfig.SessionDefaultTTL, AppConfig.SessionRememberTTL)
	log.Printf("  Storage backend: %s", AppConfig.StorageBackend)
	log.Printf("  Max file size: %d bytes", AppConfig.MaxFileSize)
	log.Printf("  Storage quota: %d bytes", AppConfig.QuotaBytes)
	log.Printf("  Trash retention: %v", AppConfig.TrashRetention)
	log.Printf("  Allowed origins: %v", AppConfig.AllowedOrigins)
}

func validateConfig() {
	switch AppConfig.StorageBackend {
	case "disk":
	case "b2":
		if AppConfig.B2ApplicationKeyID == "" || AppConfig.B2ApplicationKey == "" || AppConfig.B2BucketName == "" {
			log.Fatal("B2 storage backend requires B2_APPLICATION_KEY_ID, B2_APPLICATION_KEY, and B2_BUCKET_NAME")
		}
	case "minio":
		if AppConfig.MinioEndpoint == "" || AppConfig.MinioBucket == "" {
			log.Fatal("MinIO storage backend requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	default:
		log.Fatalf("Unknown storage backend: %s (expected disk, b2, or minio)", AppConfig.StorageBackend)
	}

	if AppConfig.Env != "development" && AppConfig.JWTSecret == "change-me-in-production" {
		log.Fatal("JWT_SECRET must be set outside development")
	}
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[NOT SET]"
	}
	if len(secret) <= 8 {
		return "[HIDDEN]"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

func maskConnectionString(uri string) string {
	if uri == "" {
		return "[NOT SET]"
	}
	if strings.Contains(uri, "@") {
		parts := strings.Split(uri, "@")
		if len(parts) >= 2 {
			return "[CREDENTIALS_HIDDEN]@" + parts[len(parts)-1]
		}
	}
	return uri
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Fatalf("Failed to parse int64: %s", s)
	}
	return i
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("Failed to parse bool: %s", s)
	}
	return b
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Failed to parse duration: %s", s)
	}
	return d
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	var result []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func CreateContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
