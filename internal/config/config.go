package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DefaultCount      = 100000
	DefaultBatchSize  = 500
	DefaultOnlineRate = 0.6
	DefaultDBName     = "overlord.db"
)

var (
	ErrInvalidCount      = errors.New("count must be >= 0")
	ErrInvalidOnlineRate = errors.New("online rate must be within [0, 1]")
	ErrInvalidBatchSize  = errors.New("batch size must be positive")
	ErrEmptyDBPath       = errors.New("database path cannot be empty")
)

type Config struct {
	DBPath     string  `json:"db" mapstructure:"db"`
	Count      int     `json:"count" mapstructure:"count"`
	Truncate   bool    `json:"truncate" mapstructure:"truncate"`
	OnlineRate float64 `json:"online_rate" mapstructure:"online_rate"`
	BatchSize  int     `json:"batch_size" mapstructure:"batch_size"`
	Seed       int64   `json:"seed" mapstructure:"seed"`
}

// Load reads the merged viper state (flags, env, config file) into a Config.
func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !viper.IsSet("count") {
		cfg.Count = DefaultCount
	}
	if !viper.IsSet("online_rate") {
		cfg.OnlineRate = DefaultOnlineRate
	}
	if !viper.IsSet("batch_size") {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.DBPath == "" {
		exe, err := os.Executable()
		if err != nil {
			cfg.DBPath = DefaultDBName
		} else {
			cfg.DBPath = DefaultDBPath(filepath.Dir(exe))
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidCount, c.Count)
	}
	if c.OnlineRate < 0 || c.OnlineRate > 1 {
		return fmt.Errorf("%w, got %g", ErrInvalidOnlineRate, c.OnlineRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidBatchSize, c.BatchSize)
	}
	if c.DBPath == "" {
		return ErrEmptyDBPath
	}
	return nil
}

// DefaultDBPath returns <baseDir>/../data/overlord.db when that data directory
// exists, otherwise a bare overlord.db relative to the working directory.
func DefaultDBPath(baseDir string) string {
	dataDir := filepath.Clean(filepath.Join(baseDir, "..", "data"))
	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		return filepath.Join(dataDir, DefaultDBName)
	}
	return DefaultDBName
}

// AbsDBPath returns the absolute form of the configured database path.
func (c *Config) AbsDBPath() (string, error) {
	abs, err := filepath.Abs(c.DBPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path %s: %w", c.DBPath, err)
	}
	return abs, nil
}
