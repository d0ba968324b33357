package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipmerge/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.DB.Enabled)
	assert.Empty(t, cfg.S3.Bucket)
	assert.Equal(t, 0.8, cfg.Merge.SimilarityThreshold)
	assert.Equal(t, 0.1, cfg.Merge.FinancialTolerance)
	assert.Equal(t, "USD", cfg.Merge.DefaultCurrency)
	assert.Equal(t, 200, cfg.Merge.MaxDocuments)
	assert.Equal(t, 4, cfg.Enrichment.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Enrichment.Timeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SHIPMERGE_SERVER_PORT", ":9090")
	t.Setenv("SHIPMERGE_DB_ENABLED", "true")
	t.Setenv("SHIPMERGE_S3_BUCKET", "shipmerge-reports")
	t.Setenv("SHIPMERGE_MERGE_SIMILARITY_THRESHOLD", "0.85")
	t.Setenv("SHIPMERGE_MERGE_MAX_DOCUMENTS", "50")
	t.Setenv("SHIPMERGE_ENRICHMENT_TIMEOUT", "500ms")
	t.Setenv("SHIPMERGE_CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.True(t, cfg.DB.Enabled)
	assert.Equal(t, "shipmerge-reports", cfg.S3.Bucket)
	assert.Equal(t, 0.85, cfg.Merge.SimilarityThreshold)
	assert.Equal(t, 50, cfg.Merge.MaxDocuments)
	assert.Equal(t, 500*time.Millisecond, cfg.Enrichment.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_RejectsInvalidMergeSettings(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "threshold_above_one", key: "SHIPMERGE_MERGE_SIMILARITY_THRESHOLD", value: "1.5"},
		{name: "negative_tolerance", key: "SHIPMERGE_MERGE_FINANCIAL_TOLERANCE", value: "-1"},
		{name: "zero_max_documents", key: "SHIPMERGE_MERGE_MAX_DOCUMENTS", value: "0"},
		{name: "zero_concurrency", key: "SHIPMERGE_ENRICHMENT_CONCURRENCY", value: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()

			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "registry", SSLMode: "require"}

	assert.Equal(t, "postgres://u:p@db:5433/registry?sslmode=require", db.DSN())
}
