package config

import (
	"os"
	"strconv"
	"strings"

	"pdf-to-qr-products/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	UploadPath         string
	UploadBaseURL      string
	ProductsDir        string
	MaxFileSize        int64
	LogLevel           string
	SupabaseURL        string
	SupabaseKey        string
	SupabaseBucket     string
	NonceSecret        string
	NonceLifetimeHours int
	LoginURL           string
	AssetsURL          string
	AllowedOrigins     []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	jwtSecret := getEnvOrDefault("JWT_SECRET", "")

	return &AppConfig{
		// PORT wins over SERVER_PORT so PaaS deployments work unchanged.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:         getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		UploadBaseURL:      strings.TrimRight(getEnvOrDefault("UPLOAD_BASE_URL", "/uploads"), "/"),
		ProductsDir:        getEnvOrDefault("PRODUCTS_DIR", "pdf-to-qr-products"),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", 10*1024*1024), // 10MB default
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseBucket:     getEnvOrDefault("SUPABASE_BUCKET", ""),
		NonceSecret:        getEnvOrDefault("NONCE_SECRET", jwtSecret),
		NonceLifetimeHours: int(getEnvInt64OrDefault("NONCE_LIFETIME_HOURS", 24)),
		LoginURL:           getEnvOrDefault("LOGIN_URL", "/login"),
		AssetsURL:          strings.TrimRight(getEnvOrDefault("ASSETS_URL", "/assets"), "/"),
		AllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload root directory
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetUploadBaseURL returns the public URL the upload root is served under
func (c *AppConfig) GetUploadBaseURL() string {
	return c.UploadBaseURL
}

// GetProductsDir returns the artifact directory name below the upload root
func (c *AppConfig) GetProductsDir() string {
	return c.ProductsDir
}

// GetMaxFileSize returns the maximum accepted request body size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseBucket returns the storage bucket batches are mirrored to
func (c *AppConfig) GetSupabaseBucket() string {
	return c.SupabaseBucket
}

// GetNonceSecret returns the key used to sign anti-forgery tokens
func (c *AppConfig) GetNonceSecret() string {
	return c.NonceSecret
}

// GetNonceLifetimeHours returns how long an anti-forgery token stays valid
func (c *AppConfig) GetNonceLifetimeHours() int {
	return c.NonceLifetimeHours
}

// GetLoginURL returns where anonymous visitors are sent
func (c *AppConfig) GetLoginURL() string {
	return c.LoginURL
}

// GetAssetsURL returns the base URL of the front-end scripts
func (c *AppConfig) GetAssetsURL() string {
	return c.AssetsURL
}

// GetAllowedOrigins returns the CORS origin allow-list
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
