package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Merge      MergeConfig
	Enrichment EnrichmentConfig
}

// MergeConfig holds reconciliation thresholds and request limits.
type MergeConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	FinancialTolerance  float64 `mapstructure:"financial_tolerance"`
	DefaultCurrency     string  `mapstructure:"default_currency"`
	MaxDocuments        int     `mapstructure:"max_documents"`
}

// EnrichmentConfig holds company registry lookup settings.
type EnrichmentConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxBodyMB    int64         `mapstructure:"max_body_mb"`
}

// DBConfig holds PostgreSQL connection settings for the company registry.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds report archive settings. An empty Bucket disables archiving.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SHIPMERGE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHIPMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_mb", 16)

	// DB defaults (registry enrichment is off unless enabled)
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "shipmerge")
	v.SetDefault("db.password", "shipmerge_secret")
	v.SetDefault("db.name", "shipmerge_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Merge defaults
	v.SetDefault("merge.similarity_threshold", 0.8)
	v.SetDefault("merge.financial_tolerance", 0.1)
	v.SetDefault("merge.default_currency", "USD")
	v.SetDefault("merge.max_documents", 200)

	// Enrichment defaults
	v.SetDefault("enrichment.concurrency", 4)
	v.SetDefault("enrichment.timeout", "3s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "SHIPMERGE_SERVER_PORT",
		"server.read_timeout":        "SHIPMERGE_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "SHIPMERGE_SERVER_WRITE_TIMEOUT",
		"server.environment":         "SHIPMERGE_SERVER_ENVIRONMENT",
		"server.max_body_mb":         "SHIPMERGE_SERVER_MAX_BODY_MB",
		"db.enabled":                 "SHIPMERGE_DB_ENABLED",
		"db.host":                    "SHIPMERGE_DB_HOST",
		"db.port":                    "SHIPMERGE_DB_PORT",
		"db.user":                    "SHIPMERGE_DB_USER",
		"db.password":                "SHIPMERGE_DB_PASSWORD",
		"db.name":                    "SHIPMERGE_DB_NAME",
		"db.sslmode":                 "SHIPMERGE_DB_SSLMODE",
		"db.max_open":                "SHIPMERGE_DB_MAX_OPEN",
		"db.max_idle":                "SHIPMERGE_DB_MAX_IDLE",
		"s3.region":                  "SHIPMERGE_S3_REGION",
		"s3.bucket":                  "SHIPMERGE_S3_BUCKET",
		"s3.endpoint":                "SHIPMERGE_S3_ENDPOINT",
		"s3.access_key":              "SHIPMERGE_S3_ACCESS_KEY",
		"s3.secret_key":              "SHIPMERGE_S3_SECRET_KEY",
		"s3.presign_expiry":          "SHIPMERGE_S3_PRESIGN_EXPIRY",
		"log.level":                  "SHIPMERGE_LOG_LEVEL",
		"log.format":                 "SHIPMERGE_LOG_FORMAT",
		"cors.allowed_origins":       "SHIPMERGE_CORS_ALLOWED_ORIGINS",
		"merge.similarity_threshold": "SHIPMERGE_MERGE_SIMILARITY_THRESHOLD",
		"merge.financial_tolerance":  "SHIPMERGE_MERGE_FINANCIAL_TOLERANCE",
		"merge.default_currency":     "SHIPMERGE_MERGE_DEFAULT_CURRENCY",
		"merge.max_documents":        "SHIPMERGE_MERGE_MAX_DOCUMENTS",
		"enrichment.concurrency":     "SHIPMERGE_ENRICHMENT_CONCURRENCY",
		"enrichment.timeout":         "SHIPMERGE_ENRICHMENT_TIMEOUT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms that inject PORT win unless SHIPMERGE_SERVER_PORT is set explicitly.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SHIPMERGE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxBodyMB:    v.GetInt64("server.max_body_mb"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Merge = MergeConfig{
		SimilarityThreshold: v.GetFloat64("merge.similarity_threshold"),
		FinancialTolerance:  v.GetFloat64("merge.financial_tolerance"),
		DefaultCurrency:     v.GetString("merge.default_currency"),
		MaxDocuments:        v.GetInt("merge.max_documents"),
	}
	cfg.Enrichment = EnrichmentConfig{
		Concurrency: v.GetInt("enrichment.concurrency"),
		Timeout:     v.GetDuration("enrichment.timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Merge.SimilarityThreshold < 0 || c.Merge.SimilarityThreshold > 1 {
		return fmt.Errorf("merge.similarity_threshold must be within [0, 1], got %v", c.Merge.SimilarityThreshold)
	}
	if c.Merge.FinancialTolerance < 0 {
		return fmt.Errorf("merge.financial_tolerance must not be negative, got %v", c.Merge.FinancialTolerance)
	}
	if c.Merge.MaxDocuments <= 0 {
		return fmt.Errorf("merge.max_documents must be positive, got %d", c.Merge.MaxDocuments)
	}
	if c.Enrichment.Concurrency <= 0 {
		return fmt.Errorf("enrichment.concurrency must be positive, got %d", c.Enrichment.Concurrency)
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
