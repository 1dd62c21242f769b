package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Categorizer CategorizerConfig `yaml:"categorizer"`
	Safety      SafetyConfig      `yaml:"safety"`
	Import      ImportConfig      `yaml:"import"`
	Archive     ArchiveConfig     `yaml:"archive"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds Postgres connection settings for the durable tier
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	Enabled      bool   `yaml:"enabled"`
}

// RedisConfig holds the warm-tier cache and pub/sub settings
type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	WarmTTLMinutes int    `yaml:"warm_ttl_minutes"`
	Enabled        bool   `yaml:"enabled"`
}

// WarmTTL returns the warm-tier TTL as a duration
func (c RedisConfig) WarmTTL() time.Duration {
	return time.Duration(c.WarmTTLMinutes) * time.Minute
}

// CategorizerConfig holds the remote categorization service settings.
// With Enabled false the deterministic offline stub is used instead.
type CategorizerConfig struct {
	Endpoint            string `yaml:"endpoint"`
	APIKey              string `yaml:"api_key"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	SmallInputThreshold int    `yaml:"small_input_threshold"`
	MaxBatchSize        int    `yaml:"max_batch_size"`
	Enabled             bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c CategorizerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SafetyConfig holds the content safety filter settings
type SafetyConfig struct {
	Blocklist []string `yaml:"blocklist"`
}

// ImportConfig holds per-run defaults for the import pipeline
type ImportConfig struct {
	MaxDepth           int  `yaml:"max_depth"`
	OnlyLeafFolders    bool `yaml:"only_leaf_folders"`
	MinItemsPerFolder  int  `yaml:"min_items_per_folder"`
	IncludeRootFolders bool `yaml:"include_root_folders"`
	RunGuardTTLSeconds int  `yaml:"run_guard_ttl_seconds"`
}

// RunGuardTTL returns how long one user's import lock is held at most
func (c ImportConfig) RunGuardTTL() time.Duration {
	return time.Duration(c.RunGuardTTLSeconds) * time.Second
}

// ArchiveConfig holds S3 run-report archival settings
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	S3Region string `yaml:"s3_region"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.WarmTTLMinutes == 0 {
		cfg.Redis.WarmTTLMinutes = 30
	}
	if cfg.Categorizer.TimeoutSeconds == 0 {
		cfg.Categorizer.TimeoutSeconds = 20
	}
	if cfg.Categorizer.SmallInputThreshold == 0 {
		cfg.Categorizer.SmallInputThreshold = 4
	}
	if cfg.Categorizer.MaxBatchSize == 0 {
		cfg.Categorizer.MaxBatchSize = 100
	}
	if cfg.Import.MaxDepth == 0 {
		cfg.Import.MaxDepth = 8
	}
	if cfg.Import.RunGuardTTLSeconds == 0 {
		cfg.Import.RunGuardTTLSeconds = 300
	}
	if cfg.Archive.S3Prefix == "" {
		cfg.Archive.S3Prefix = "bookmark-sync/runs/"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
		if !cfg.Database.Enabled {
			cfg.Database.Enabled = true
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		if !cfg.Redis.Enabled {
			cfg.Redis.Enabled = true
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CATEGORIZER_ENDPOINT"); v != "" {
		cfg.Categorizer.Endpoint = v
	}
	if v := os.Getenv("CATEGORIZER_API_KEY"); v != "" {
		cfg.Categorizer.APIKey = v
		if !cfg.Categorizer.Enabled {
			cfg.Categorizer.Enabled = true
		}
	}
	if v := os.Getenv("SAFETY_BLOCKLIST"); v != "" {
		cfg.Safety.Blocklist = splitList(v)
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
		if !cfg.Archive.Enabled {
			cfg.Archive.Enabled = true
		}
	}
	if v := os.Getenv("ARCHIVE_S3_REGION"); v != "" {
		cfg.Archive.S3Region = v
	}

	return cfg, nil
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
