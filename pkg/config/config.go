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
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Holidays HolidaysConfig
	Coverage CoverageConfig
	Absences AbsencesConfig
	Cache    CacheConfig
	Sync     SyncConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the single admin credential and token settings.
type AuthConfig struct {
	JWTSecret  string
	Expiration time.Duration
	AdminUser  string
	AdminHash  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// HolidaysConfig drives the OpenHolidays sync and scope matching.
type HolidaysConfig struct {
	CountryCode     string
	SubdivisionCode string
	Language        string
	MatchLocal      bool
	SyncOnStart     bool
	HTTPTimeout     time.Duration
}

// CoverageConfig configures the tracked shift and daily staffing target.
type CoverageConfig struct {
	TrackedShift string
	DailyTarget  int
}

// AbsencesConfig carries tunables for the absence policy engine.
type AbsencesConfig struct {
	AdvanceNoticeDays int
}

// CacheConfig governs week board caching.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SyncConfig tunes the background job queue used for holiday syncs.
type SyncConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:  v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		AdminUser:  v.GetString("ADMIN_USER"),
		AdminHash:  v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Holidays = HolidaysConfig{
		CountryCode:     v.GetString("HOLIDAYS_COUNTRY"),
		SubdivisionCode: v.GetString("HOLIDAYS_SUBDIVISION"),
		Language:        v.GetString("HOLIDAYS_LANGUAGE"),
		MatchLocal:      v.GetBool("HOLIDAYS_MATCH_LOCAL"),
		SyncOnStart:     v.GetBool("HOLIDAYS_SYNC_ON_START"),
		HTTPTimeout:     parseDuration(v.GetString("HOLIDAYS_HTTP_TIMEOUT"), 15*time.Second),
	}

	cfg.Coverage = CoverageConfig{
		TrackedShift: v.GetString("COVERAGE_TRACKED_SHIFT"),
		DailyTarget:  v.GetInt("COVERAGE_DAILY_TARGET"),
	}

	cfg.Absences = AbsencesConfig{
		AdvanceNoticeDays: v.GetInt("ABSENCE_ADVANCE_NOTICE_DAYS"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Sync = SyncConfig{
		Workers:    v.GetInt("SYNC_WORKERS"),
		MaxRetries: v.GetInt("SYNC_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("SYNC_RETRY_DELAY"), 5*time.Second),
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
	v.SetDefault("DB_NAME", "roster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("ADMIN_USER", "admin")
	// bcrypt of "admin", development only
	v.SetDefault("ADMIN_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("HOLIDAYS_COUNTRY", "ES")
	v.SetDefault("HOLIDAYS_SUBDIVISION", "ES-AN")
	v.SetDefault("HOLIDAYS_LANGUAGE", "ES")
	v.SetDefault("HOLIDAYS_MATCH_LOCAL", false)
	v.SetDefault("HOLIDAYS_SYNC_ON_START", true)
	v.SetDefault("HOLIDAYS_HTTP_TIMEOUT", "15s")

	v.SetDefault("COVERAGE_TRACKED_SHIFT", "T")
	v.SetDefault("COVERAGE_DAILY_TARGET", 4)

	v.SetDefault("ABSENCE_ADVANCE_NOTICE_DAYS", 7)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("SYNC_MAX_RETRIES", 3)
	v.SetDefault("SYNC_RETRY_DELAY", "5s")
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
