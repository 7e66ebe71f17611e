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

// Export storage drivers.
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Billing  BillingConfig
	Exports  ExportsConfig
	Admin    AdminBootstrapConfig
	Metrics  MetricsConfig
	Swagger  SwaggerConfig
}

type DatabaseConfig struct {
	URL          string
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

// CacheConfig toggles the Redis backed read cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BillingConfig drives due date evaluation and the optional overdue sweep.
type BillingConfig struct {
	Timezone            string
	OverdueSweepEnabled bool
	OverdueSweepCron    string
}

// Location resolves the billing timezone, falling back to UTC.
func (b BillingConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExportsConfig configures asynchronous ledger exports.
type ExportsConfig struct {
	StorageDriver     string
	StorageDir        string
	S3Bucket          string
	S3Region          string
	S3Prefix          string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	Retention         time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// AdminBootstrapConfig seeds the first administrator account on startup.
type AdminBootstrapConfig struct {
	Email    string
	Password string
	FullName string
}

type MetricsConfig struct {
	Enabled bool
}

type SwaggerConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("APP_ENV")
	cfg.Port = v.GetInt("API_PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
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

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("JWT_REFRESH_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Billing = BillingConfig{
		Timezone:            v.GetString("BILLING_TIMEZONE"),
		OverdueSweepEnabled: v.GetBool("BILLING_OVERDUE_SWEEP_ENABLED"),
		OverdueSweepCron:    v.GetString("BILLING_OVERDUE_SWEEP_CRON"),
	}

	cfg.Exports = ExportsConfig{
		StorageDriver:     strings.ToLower(v.GetString("EXPORT_STORAGE_DRIVER")),
		StorageDir:        v.GetString("EXPORT_STORAGE_PATH"),
		S3Bucket:          v.GetString("EXPORT_S3_BUCKET"),
		S3Region:          v.GetString("EXPORT_S3_REGION"),
		S3Prefix:          v.GetString("EXPORT_S3_PREFIX"),
		SignedURLSecret:   v.GetString("EXPORT_SIGNING_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORT_URL_TTL"), 24*time.Hour),
		Retention:         parseDuration(v.GetString("EXPORT_RETENTION"), 72*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORT_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORT_WORKER_RETRIES"),
	}

	cfg.Admin = AdminBootstrapConfig{
		Email:    v.GetString("ADMIN_BOOTSTRAP_EMAIL"),
		Password: v.GetString("ADMIN_BOOTSTRAP_PASSWORD"),
		FullName: v.GetString("ADMIN_BOOTSTRAP_NAME"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("METRICS_ENABLED")}
	cfg.Swagger = SwaggerConfig{Enabled: v.GetBool("SWAGGER_ENABLED")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "escola")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_REFRESH_EXPIRATION", "168h")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BILLING_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("BILLING_OVERDUE_SWEEP_ENABLED", false)
	v.SetDefault("BILLING_OVERDUE_SWEEP_CRON", "0 3 * * *")

	v.SetDefault("EXPORT_STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("EXPORT_STORAGE_PATH", "./exports")
	v.SetDefault("EXPORT_S3_BUCKET", "")
	v.SetDefault("EXPORT_S3_REGION", "")
	v.SetDefault("EXPORT_S3_PREFIX", "ledger-exports")
	v.SetDefault("EXPORT_SIGNING_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORT_URL_TTL", "24h")
	v.SetDefault("EXPORT_RETENTION", "72h")
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORT_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORT_WORKER_RETRIES", 3)

	v.SetDefault("ADMIN_BOOTSTRAP_EMAIL", "")
	v.SetDefault("ADMIN_BOOTSTRAP_PASSWORD", "")
	v.SetDefault("ADMIN_BOOTSTRAP_NAME", "Administrador")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SWAGGER_ENABLED", true)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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
