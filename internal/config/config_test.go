package config

import (
	"reflect"
	"testing"
)

const defaultMaxFileSize int64 = 10 * 1024 * 1024

var configKeys = []string{
	"PORT", "SERVER_PORT", "UPLOAD_PATH", "UPLOAD_BASE_URL", "PRODUCTS_DIR",
	"MAX_FILE_SIZE", "LOG_LEVEL", "SUPABASE_URL", "SUPABASE_ANON_KEY",
	"SUPABASE_BUCKET", "JWT_SECRET", "NONCE_SECRET", "NONCE_LIFETIME_HOURS",
	"LOGIN_URL", "ASSETS_URL", "CORS_ALLOWED_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetUploadPath() != "./uploads" {
		t.Fatalf("expected default upload path ./uploads, got %s", cfg.GetUploadPath())
	}
	if cfg.GetUploadBaseURL() != "/uploads" {
		t.Fatalf("expected default upload base url /uploads, got %s", cfg.GetUploadBaseURL())
	}
	if cfg.GetProductsDir() != "pdf-to-qr-products" {
		t.Fatalf("expected default products dir, got %s", cfg.GetProductsDir())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetSupabaseURL() != "" || cfg.GetSupabaseKey() != "" || cfg.GetSupabaseBucket() != "" {
		t.Fatalf("expected supabase settings to default to empty")
	}
	if cfg.GetNonceSecret() != "" {
		t.Fatalf("expected nonce secret to be empty by default, got %s", cfg.GetNonceSecret())
	}
	if cfg.GetNonceLifetimeHours() != 24 {
		t.Fatalf("expected nonce lifetime 24, got %d", cfg.GetNonceLifetimeHours())
	}
	if cfg.GetLoginURL() != "/login" {
		t.Fatalf("expected login url /login, got %s", cfg.GetLoginURL())
	}
	if len(cfg.GetAllowedOrigins()) != 2 {
		t.Fatalf("expected two default origins, got %v", cfg.GetAllowedOrigins())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("UPLOAD_PATH", "/srv/uploads")
	t.Setenv("UPLOAD_BASE_URL", "https://cdn.example.com/uploads/")
	t.Setenv("PRODUCTS_DIR", "qr")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("SUPABASE_BUCKET", "qr-codes")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("NONCE_SECRET", "nonce")
	t.Setenv("NONCE_LIFETIME_HOURS", "2")
	t.Setenv("LOGIN_URL", "https://auth.example.com/login")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetUploadPath() != "/srv/uploads" {
		t.Fatalf("expected upload path /srv/uploads, got %s", cfg.GetUploadPath())
	}
	if cfg.GetUploadBaseURL() != "https://cdn.example.com/uploads" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.GetUploadBaseURL())
	}
	if cfg.GetProductsDir() != "qr" {
		t.Fatalf("expected products dir qr, got %s", cfg.GetProductsDir())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetSupabaseBucket() != "qr-codes" {
		t.Fatalf("expected bucket qr-codes, got %s", cfg.GetSupabaseBucket())
	}
	if cfg.GetNonceSecret() != "nonce" {
		t.Fatalf("expected nonce secret nonce, got %s", cfg.GetNonceSecret())
	}
	if cfg.GetNonceLifetimeHours() != 2 {
		t.Fatalf("expected nonce lifetime 2, got %d", cfg.GetNonceLifetimeHours())
	}
	if cfg.GetLoginURL() != "https://auth.example.com/login" {
		t.Fatalf("unexpected login url %s", cfg.GetLoginURL())
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.GetAllowedOrigins(), want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.GetAllowedOrigins())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("NONCE_LIFETIME_HOURS", "-3")
	t.Setenv("JWT_SECRET", "jwt-only")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetNonceLifetimeHours() != 24 {
		t.Fatalf("expected negative lifetime to fall back to 24, got %d", cfg.GetNonceLifetimeHours())
	}
	if cfg.GetNonceSecret() != "jwt-only" {
		t.Fatalf("expected nonce secret to fall back to JWT_SECRET, got %s", cfg.GetNonceSecret())
	}
}
