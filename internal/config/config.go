package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	SessionTokenIssuer string
	SessionTokenSecret string
	SessionTokenTTL    time.Duration

	OTPCodeTTL    time.Duration
	OTPCodeLength int

	// AuthOTPBypassEnabled unlocks a fixed passcode that verifies without a
	// store lookup. Test environments only; Validate refuses it in production.
	AuthOTPBypassEnabled bool
	AuthOTPBypassCode    string

	MailProvider string
	MailFrom     string
	ResendAPIKey string

	PublicMenuBaseURL string

	MenuCacheEnabled bool
	MenuCacheTTL     time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	StorageEnabled   bool
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	CORSAllowedOrigins []string

	ShutdownTimeout          time.Duration
	ShutdownHTTPDrainTimeout time.Duration
	ReadinessProbeTimeout    time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:                  env,
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SessionTokenIssuer:   getEnv("SESSION_TOKEN_ISSUER", "platemenu"),
		SessionTokenSecret:   os.Getenv("SESSION_TOKEN_SECRET"),
		OTPCodeLength:        getEnvInt("OTP_CODE_LENGTH", 6),
		AuthOTPBypassEnabled: getEnvBool("AUTH_OTP_BYPASS_ENABLED", false),
		AuthOTPBypassCode:    os.Getenv("AUTH_OTP_BYPASS_CODE"),
		MailProvider:         strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
		MailFrom:             getEnv("MAIL_FROM", "Platemenu <onboarding@resend.dev>"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		PublicMenuBaseURL:    getEnv("PUBLIC_MENU_BASE_URL", "http://localhost:3000/menu"),
		MenuCacheEnabled:     getEnvBool("MENU_CACHE_ENABLED", false),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		StorageEnabled:       getEnvBool("STORAGE_ENABLED", false),
		StorageEndpoint:      os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:        getEnv("STORAGE_BUCKET", "platemenu-dish-images"),
		StorageUseSSL:        getEnvBool("STORAGE_USE_SSL", false),
		CORSAllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "platemenu"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	var err error
	if cfg.SessionTokenTTL, err = time.ParseDuration(getEnv("SESSION_TOKEN_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("parse SESSION_TOKEN_TTL: %w", err)
	}
	if cfg.OTPCodeTTL, err = time.ParseDuration(getEnv("OTP_CODE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("parse OTP_CODE_TTL: %w", err)
	}
	if cfg.MenuCacheTTL, err = time.ParseDuration(getEnv("MENU_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("parse MENU_CACHE_TTL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "20s")); err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.ShutdownHTTPDrainTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_HTTP_DRAIN_TIMEOUT: %w", err)
	}
	if cfg.ReadinessProbeTimeout, err = time.ParseDuration(getEnv("READINESS_PROBE_TIMEOUT", "2s")); err != nil {
		return nil, fmt.Errorf("parse READINESS_PROBE_TIMEOUT: %w", err)
	}
	if cfg.OTELMetricsExportInterval, err = time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s")); err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.SessionTokenSecret) < 32 {
		errs = append(errs, "SESSION_TOKEN_SECRET must be at least 32 chars")
	}
	if c.SessionTokenTTL <= 0 || c.SessionTokenTTL > 30*24*time.Hour {
		errs = append(errs, "SESSION_TOKEN_TTL must be between 1s and 30d")
	}
	if c.OTPCodeTTL <= 0 || c.OTPCodeTTL > time.Hour {
		errs = append(errs, "OTP_CODE_TTL must be between 1s and 1h")
	}
	if c.OTPCodeLength < 4 || c.OTPCodeLength > 10 {
		errs = append(errs, "OTP_CODE_LENGTH must be between 4 and 10")
	}
	if c.AuthOTPBypassEnabled {
		if isProductionLikeEnv(c.Env) {
			errs = append(errs, "AUTH_OTP_BYPASS_ENABLED is not allowed in production")
		}
		if len(c.AuthOTPBypassCode) < 4 {
			errs = append(errs, "AUTH_OTP_BYPASS_CODE must be at least 4 chars when bypass is enabled")
		}
	}
	switch c.MailProvider {
	case "log":
	case "resend":
		if c.ResendAPIKey == "" {
			errs = append(errs, "RESEND_API_KEY is required when MAIL_PROVIDER=resend")
		}
	default:
		errs = append(errs, "MAIL_PROVIDER must be one of log, resend")
	}
	if c.MenuCacheEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when MENU_CACHE_ENABLED=true")
	}
	if c.MenuCacheEnabled && c.MenuCacheTTL <= 0 {
		errs = append(errs, "MENU_CACHE_TTL must be > 0 when MENU_CACHE_ENABLED=true")
	}
	if c.StorageEnabled {
		if c.StorageEndpoint == "" {
			errs = append(errs, "STORAGE_ENDPOINT is required when STORAGE_ENABLED=true")
		}
		if c.StorageAccessKey == "" || c.StorageSecretKey == "" {
			errs = append(errs, "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENABLED=true")
		}
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isProductionLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
