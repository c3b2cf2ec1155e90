// Package config loads the docsim server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// Config holds the docsim API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Matching  MatchingConfig  `yaml:"matching"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Credits   CreditsConfig   `yaml:"credits"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig selects and configures the document store.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, sqlite (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	SQLitePath       string   `yaml:"sqlite_path"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// MatchingConfig holds similarity settings.
type MatchingConfig struct {
	Algorithm   string   `yaml:"algorithm"` // edit_distance, sequence_ratio, embedding
	Threshold   *float64 `yaml:"threshold"` // nil: the algorithm's canonical threshold
	BatchSize   int      `yaml:"batch_size"`
	Parallelism int      `yaml:"parallelism"`
	DiffContext int      `yaml:"diff_context"`
	TopicsK     int      `yaml:"topics_k"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	Prefix        string `yaml:"prefix"` // prepended to every text, e.g. "passage: "
	TimeoutSec    int    `yaml:"timeout_sec"`
	MaxBatch      int    `yaml:"max_batch"`
	Cache         bool   `yaml:"cache"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"` // 0 = keep forever
}

// CreditsConfig holds the daily upload allowance.
type CreditsConfig struct {
	DailyAllowance int64 `yaml:"daily_allowance"`
}

// AnalyticsConfig holds admin analytics settings.
type AnalyticsConfig struct {
	TopUsers int `yaml:"top_users"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, and validates the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "docsim.db"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Matching.Algorithm == "" {
		c.Matching.Algorithm = string(domsim.Default)
	}
	if c.Matching.BatchSize <= 0 {
		c.Matching.BatchSize = 64
	}
	if c.Matching.Parallelism <= 0 {
		c.Matching.Parallelism = 4
	}
	if c.Matching.DiffContext <= 0 {
		c.Matching.DiffContext = 2
	}
	if c.Matching.TopicsK <= 0 {
		c.Matching.TopicsK = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.MaxBatch <= 0 {
		c.Embedding.MaxBatch = 256
	}
	if c.Credits.DailyAllowance <= 0 {
		c.Credits.DailyAllowance = 20
	}
	if c.Analytics.TopUsers <= 0 {
		c.Analytics.TopUsers = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"sqlite\", got %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	alg, err := domsim.Parse(c.Matching.Algorithm)
	if err != nil {
		return fmt.Errorf("matching.algorithm: %w", err)
	}
	if t := c.Matching.Threshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("matching.threshold must be between 0 and 1, got %v", *t)
	}
	if alg == domsim.Embedding && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when matching.algorithm is %q", alg)
	}
	if c.Embedding.Cache && c.Database.Driver != "redis" {
		return fmt.Errorf("embedding.cache requires the redis driver")
	}
	return nil
}

// ThresholdFor returns the configured threshold or the algorithm's canonical one.
func (m MatchingConfig) ThresholdFor(alg domsim.Algorithm) float64 {
	if m.Threshold != nil {
		return *m.Threshold
	}
	return alg.DefaultThreshold()
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
