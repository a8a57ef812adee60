package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the superfork configuration file. Every field is
// optional; command-line flags override file values.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Pacing PacingConfig `yaml:"pacing"`
	Retry  RetryConfig  `yaml:"retry"`
}

// GitHubConfig represents GitHub-specific configuration.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// PacingConfig controls the minimum interval between mutating API calls
// and whether read-only calls share it.
type PacingConfig struct {
	MinIntervalSeconds int  `yaml:"min_interval_seconds"`
	PaceReads          bool `yaml:"pace_reads"`
}

// RetryConfig bounds retries of rate-limited API calls.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path.
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".superfork", "config.yaml"), nil
}

// MinInterval returns the configured pacing interval, defaulting to 30s.
func (c *Config) MinInterval() time.Duration {
	if c.Pacing.MinIntervalSeconds > 0 {
		return time.Duration(c.Pacing.MinIntervalSeconds) * time.Second
	}
	return 30 * time.Second
}

// MaxAttempts returns the configured retry bound, defaulting to 3.
func (c *Config) MaxAttempts() int {
	if c.Retry.MaxAttempts > 0 {
		return c.Retry.MaxAttempts
	}
	return 3
}

// ResolveToken finds a GitHub token, in order: the GITHUB_TOKEN environment
// variable, a .env file in the current directory, a .env file in the home
// directory, and finally the config file. A missing token is a fatal
// startup error; no engine work happens without one.
func ResolveToken(cfg *Config) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return resolveToken(cfg, cwd, home)
}

// resolveToken is the lookup with injectable directories for tests.
func resolveToken(cfg *Config, cwd, home string) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	if token := tokenFromDotenv(filepath.Join(cwd, ".env")); token != "" {
		return token, nil
	}
	if home != "" {
		if token := tokenFromDotenv(filepath.Join(home, ".env")); token != "" {
			return token, nil
		}
	}

	if cfg != nil && cfg.GitHub.Token != "" {
		return cfg.GitHub.Token, nil
	}

	return "", fmt.Errorf("no GitHub token found: set GITHUB_TOKEN, add it to a .env file, or configure it in ~/.superfork/config.yaml")
}

// tokenFromDotenv reads GITHUB_TOKEN from a .env file without mutating the
// process environment. A missing or malformed file yields no token.
func tokenFromDotenv(path string) string {
	values, err := godotenv.Read(path)
	if err != nil {
		return ""
	}
	return values["GITHUB_TOKEN"]
}
