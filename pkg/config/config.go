package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Band     BandConfig
	Calendar CalendarConfig
	Mail     MailConfig
	Digests  DigestConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BandConfig carries the band identity stamped onto outbound mail and invites.
type BandConfig struct {
	FromName  string
	FromEmail string
	CCAlways  []string
	Timezone  string
}

// CalendarConfig configures the Google Calendar collaborator.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// Labels maps friendly calendar labels to provider calendar IDs,
	// e.g. "Band Calendar=abc123@group.calendar.google.com".
	Labels        map[string]string
	RetryAttempts int
	RetryBase     time.Duration
}

// MailConfig configures the Resend mail transport.
type MailConfig struct {
	APIKey string
}

// DigestConfig controls the weekly schedule digest job.
type DigestConfig struct {
	Enabled    bool
	Spec       string
	To         []string
	WindowDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Band = BandConfig{
		FromName:  v.GetString("BAND_FROM_NAME"),
		FromEmail: v.GetString("BAND_FROM_EMAIL"),
		CCAlways:  splitAndTrim(v.GetString("BAND_CC_ALWAYS")),
		Timezone:  v.GetString("BAND_TIMEZONE"),
	}

	cfg.Calendar = CalendarConfig{
		ClientID:      v.GetString("GOOGLE_CLIENT_ID"),
		ClientSecret:  v.GetString("GOOGLE_CLIENT_SECRET"),
		RefreshToken:  v.GetString("GOOGLE_REFRESH_TOKEN"),
		Labels:        parseLabelMap(v.GetString("CALENDAR_LABELS")),
		RetryAttempts: v.GetInt("CALENDAR_RETRY_ATTEMPTS"),
		RetryBase:     parseDuration(v.GetString("CALENDAR_RETRY_BASE"), time.Second),
	}

	cfg.Mail = MailConfig{
		APIKey: v.GetString("RESEND_API_KEY"),
	}

	cfg.Digests = DigestConfig{
		Enabled:    v.GetBool("ENABLE_DIGESTS"),
		Spec:       v.GetString("DIGEST_SPEC"),
		To:         splitAndTrim(v.GetString("DIGEST_TO")),
		WindowDays: v.GetInt("DIGEST_WINDOW_DAYS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gigdesk")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BAND_FROM_NAME", "GigDesk Scheduling")
	v.SetDefault("BAND_FROM_EMAIL", "no-reply@gigdesk.local")
	v.SetDefault("BAND_CC_ALWAYS", "")
	v.SetDefault("BAND_TIMEZONE", "America/New_York")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REFRESH_TOKEN", "")
	v.SetDefault("CALENDAR_LABELS", "")
	v.SetDefault("CALENDAR_RETRY_ATTEMPTS", 5)
	v.SetDefault("CALENDAR_RETRY_BASE", "1s")

	v.SetDefault("RESEND_API_KEY", "")

	v.SetDefault("ENABLE_DIGESTS", false)
	v.SetDefault("DIGEST_SPEC", "0 8 * * MON")
	v.SetDefault("DIGEST_TO", "")
	v.SetDefault("DIGEST_WINDOW_DAYS", 7)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseLabelMap parses "Label=calendarId,Other=otherId" pairs.
func parseLabelMap(raw string) map[string]string {
	labels := make(map[string]string)
	for _, pair := range splitAndTrim(raw) {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			labels[key] = value
		}
	}
	return labels
}
