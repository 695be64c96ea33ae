package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file created by "finspect init".
const FileName = "finspect.yaml"

// DefaultMaxFileSize is the per-file import limit in bytes.
const DefaultMaxFileSize = 1 << 20

// Config represents the top-level finspect.yaml configuration.
type Config struct {
	Business    BusinessConfig    `yaml:"business"`
	Store       StoreConfig       `yaml:"store"`
	Import      ImportConfig      `yaml:"import"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Logging     LoggingConfig     `yaml:"logging"`
	Chart       ChartConfig       `yaml:"chart"`
	Rules       RulesConfig       `yaml:"rules"`
}

// BusinessConfig names the accounting firm that owns the data directory.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // memory, file, postgres or dynamodb
	Dir         string `yaml:"dir,omitempty"`
	PostgresURL string `yaml:"postgres_url,omitempty"`
	Table       string `yaml:"table,omitempty"`
	Region      string `yaml:"region,omitempty"`
}

// ImportConfig bounds balance-sheet imports.
type ImportConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
	Concurrency int   `yaml:"concurrency"`
}

// AggregationConfig controls the rollup ambiguity policy.
type AggregationConfig struct {
	// StrictAmbiguity fails a rebuild when an account has both a direct link
	// and populated children, instead of preferring the direct link.
	StrictAmbiguity bool `yaml:"strict_ambiguity"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ChartConfig points at a custom chart of accounts. Empty uses the built-in chart.
type ChartConfig struct {
	Path string `yaml:"path,omitempty"`
}

// RulesConfig points at a situation rules file. Empty uses the built-in rules.
type RulesConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Load reads a finspect.yaml file from disk, then applies the .env file
// beside it and environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := LoadEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadEnv loads variables from a .env file without overriding ones already
// set. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from DATABASE_URL, FINSPECT_DYNAMODB_TABLE,
// AWS_REGION and FINSPECT_LOG_LEVEL.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.PostgresURL = v
	}
	if v := os.Getenv("FINSPECT_DYNAMODB_TABLE"); v != "" {
		c.Store.Table = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Store.Region = v
	}
	if v := os.Getenv("FINSPECT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Store: StoreConfig{
			Backend: "file",
			Dir:     "data",
		},
		Import: ImportConfig{
			MaxFileSize: DefaultMaxFileSize,
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
