package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// Storage relay client (library server side)
	RelayURL string
	// Viewer state
	RedisURL string
	// File logging (optional)
	LogDir      string
	LogMaxFiles int
	// Uploads
	MaxUploadBytes   int64
	StorageTypesFile string
}

// RelayConfig configures the storage relay process.
type RelayConfig struct {
	Port           string
	Environment    string
	Backend        string // r2 | b2 | memory
	MaxUploadBytes int64

	R2Endpoint        string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string
	R2Secure          bool

	B2KeyID          string
	B2ApplicationKey string
	B2Bucket         string

	// PublicURL is prepended to object keys to build the URL returned to callers.
	PublicURL string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		SupabaseURL:      supabaseURL,
		SupabaseKey:      getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:    getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:  jwksURL,
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:      tablePrefix,
		RelayURL:         getEnv("RELAY_URL", "http://localhost:8787"),
		RedisURL:         getEnv("REDIS_URL", ""),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getEnvInt("LOG_MAX_FILES", 10),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		StorageTypesFile: getEnv("STORAGE_TYPES_FILE", ""),
	}
}

// LoadRelay reads the relay configuration from the environment.
func LoadRelay() *RelayConfig {
	return &RelayConfig{
		Port:              getEnv("RELAY_PORT", "8787"),
		Environment:       getEnv("ENVIRONMENT", "dev"),
		Backend:           getEnv("STORAGE_BACKEND", "r2"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:          getEnv("R2_BUCKET", ""),
		R2Secure:          getEnv("R2_SECURE", "true") == "true",
		B2KeyID:           getEnv("B2_KEY_ID", ""),
		B2ApplicationKey:  getEnv("B2_APPLICATION_KEY", ""),
		B2Bucket:          getEnv("B2_BUCKET", ""),
		PublicURL:         getEnv("R2_PUBLIC_URL", ""),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
