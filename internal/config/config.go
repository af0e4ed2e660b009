// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/hitoshi/accountdash/internal/i18n"
)

// placeholderMarkers はサンプル設定のまま残された値を示す文字列。
var placeholderMarkers = []string{"TU_", "tu-", "YOUR_", "your-"}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Provider
	ProviderAPIKey     string
	ProviderAuthDomain string
	ProviderProjectID  string
	ProviderBaseURL    string // 空の場合は本番のIdentity REST API
	ProviderTimeout    time.Duration

	// Session
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// Rate Limit（req/min）
	RateLimitGeneral     int
	RateLimitCredentials int

	// Presentation
	Location        *time.Location
	DefaultLanguage language.Tag

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定、またはプロバイダー設定がサンプル値のままの場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.ProviderAPIKey = required("PROVIDER_API_KEY")
	cfg.ProviderAuthDomain = required("PROVIDER_AUTH_DOMAIN")
	cfg.ProviderProjectID = required("PROVIDER_PROJECT_ID")
	cfg.BaseURL = required("BASE_URL")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if err := checkProviderConfig(cfg); err != nil {
		return nil, err
	}

	// Optional fields with defaults
	cfg.ProviderBaseURL = getEnvString("PROVIDER_BASE_URL", "")
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitCredentials = getEnvInt("RATE_LIMIT_CREDENTIALS", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "")

	loc, err := time.LoadLocation(getEnvString("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.DefaultLanguage = i18n.Default()
	if v := os.Getenv("DEFAULT_LANGUAGE"); v != "" {
		tag, ok := i18n.Parse(v)
		if !ok {
			return nil, fmt.Errorf("invalid DEFAULT_LANGUAGE: %q", v)
		}
		cfg.DefaultLanguage = tag
	}

	return cfg, nil
}

// checkProviderConfig はプロバイダー設定にサンプル値が残っていないかを確認する。
func checkProviderConfig(cfg *Config) error {
	fields := []struct {
		key   string
		value string
	}{
		{"PROVIDER_API_KEY", cfg.ProviderAPIKey},
		{"PROVIDER_AUTH_DOMAIN", cfg.ProviderAuthDomain},
		{"PROVIDER_PROJECT_ID", cfg.ProviderProjectID},
	}

	var placeholders []string
	for _, f := range fields {
		if isPlaceholder(f.value) {
			placeholders = append(placeholders, f.key)
		}
	}
	if len(placeholders) > 0 {
		return fmt.Errorf("provider is not configured, placeholder values found: %v", placeholders)
	}
	return nil
}

func isPlaceholder(v string) bool {
	for _, m := range placeholderMarkers {
		if strings.Contains(v, m) {
			return true
		}
	}
	return false
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
