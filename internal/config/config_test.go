package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

database:
  url: "postgres://localhost/bookmarks?sslmode=disable"
  enabled: true

redis:
  addr: "localhost:6380"
  warm_ttl_minutes: 15
  enabled: true

categorizer:
  endpoint: "https://categorize.example.com/v1"
  api_key: "test-api-key"
  timeout_seconds: 45
  small_input_threshold: 6
  max_batch_size: 50
  enabled: true

safety:
  blocklist:
    - casino
    - adult

import:
  max_depth: 5
  only_leaf_folders: true
  min_items_per_folder: 2
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Test server config
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Test database config
	assert.Equal(t, "postgres://localhost/bookmarks?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Database.Enabled)

	// Test redis config
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.Redis.WarmTTLMinutes)

	// Test categorizer config
	assert.Equal(t, "https://categorize.example.com/v1", cfg.Categorizer.Endpoint)
	assert.Equal(t, "test-api-key", cfg.Categorizer.APIKey)
	assert.Equal(t, 45, cfg.Categorizer.TimeoutSeconds)
	assert.Equal(t, 6, cfg.Categorizer.SmallInputThreshold)
	assert.Equal(t, 50, cfg.Categorizer.MaxBatchSize)

	// Test safety config
	assert.Equal(t, []string{"casino", "adult"}, cfg.Safety.Blocklist)

	// Test import config
	assert.Equal(t, 5, cfg.Import.MaxDepth)
	assert.True(t, cfg.Import.OnlyLeafFolders)
	assert.Equal(t, 2, cfg.Import.MinItemsPerFolder)
}

func TestLoadDefaults(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
categorizer:
  api_key: "test-key"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Verify defaults are applied
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30, cfg.Redis.WarmTTLMinutes)
	assert.Equal(t, 20, cfg.Categorizer.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Categorizer.SmallInputThreshold)
	assert.Equal(t, 100, cfg.Categorizer.MaxBatchSize)
	assert.Equal(t, 8, cfg.Import.MaxDepth)
	assert.Equal(t, 300, cfg.Import.RunGuardTTLSeconds)
	assert.Equal(t, "bookmark-sync/runs/", cfg.Archive.S3Prefix)
}

func TestLoadFromEnv(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
categorizer:
  endpoint: "https://file-url.com"
  api_key: "file-key"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Set environment variables
	os.Setenv("CATEGORIZER_API_KEY", "env-key")
	os.Setenv("CATEGORIZER_ENDPOINT", "https://env-url.com")
	os.Setenv("DATABASE_URL", "postgres://env-host/bookmarks")
	os.Setenv("SAFETY_BLOCKLIST", "casino, gambling,")
	defer func() {
		os.Unsetenv("CATEGORIZER_API_KEY")
		os.Unsetenv("CATEGORIZER_ENDPOINT")
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("SAFETY_BLOCKLIST")
	}()

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should override file values
	assert.Equal(t, "env-key", cfg.Categorizer.APIKey)
	assert.Equal(t, "https://env-url.com", cfg.Categorizer.Endpoint)
	assert.True(t, cfg.Categorizer.Enabled, "env API key implies the remote is enabled")
	assert.Equal(t, "postgres://env-host/bookmarks", cfg.Database.URL)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, []string{"casino", "gambling"}, cfg.Safety.Blocklist)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	cfg := CategorizerConfig{TimeoutSeconds: 45}
	assert.Equal(t, 45*1000000000, int(cfg.Timeout().Nanoseconds()))
}

func TestWarmTTL(t *testing.T) {
	cfg := RedisConfig{WarmTTLMinutes: 15}
	assert.Equal(t, int64(15*60*1000000000), cfg.WarmTTL().Nanoseconds())
}
