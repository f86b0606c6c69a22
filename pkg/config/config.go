package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the tool reads
const EnvPrefix = "RBLXLOCATE_"

// Config holds all configuration options for the instance locator
type Config struct {
	// Roblox session and endpoints
	Roblox RobloxConfig `yaml:"roblox" json:"roblox"`

	// HTTP transport tuning
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Instance search behaviour
	Search SearchConfig `yaml:"search" json:"search"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RobloxConfig holds Roblox-specific configuration
type RobloxConfig struct {
	Security          string `yaml:"security" json:"security"`
	Account           string `yaml:"account" json:"account"`
	UserAgent         string `yaml:"user_agent" json:"user_agent"`
	GamesBaseURL      string `yaml:"games_base_url" json:"games_base_url"`
	ThumbnailsBaseURL string `yaml:"thumbnails_base_url" json:"thumbnails_base_url"`
}

// HTTPConfig holds settings for the shared HTTP session
type HTTPConfig struct {
	// Timeout of 0 means no per-request deadline
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	MaxIdleConns int           `yaml:"max_idle_conns" json:"max_idle_conns"`
}

// SearchConfig holds settings for the headshot lookup and page fan-out
type SearchConfig struct {
	HeadshotSize   string `yaml:"headshot_size" json:"headshot_size"`
	HeadshotFormat string `yaml:"headshot_format" json:"headshot_format"`
	// MaxConcurrentPages of 0 launches every page request at once
	MaxConcurrentPages int `yaml:"max_concurrent_pages" json:"max_concurrent_pages"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerMinute of 0 disables client-side throttling
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Roblox: RobloxConfig{
			UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			GamesBaseURL:      "https://www.roblox.com",
			ThumbnailsBaseURL: "https://thumbnails.roblox.com",
		},
		HTTP: HTTPConfig{
			Timeout:      0,
			MaxIdleConns: 100,
		},
		Search: SearchConfig{
			HeadshotSize:       "48x48",
			HeadshotFormat:     "png",
			MaxConcurrentPages: 0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Retry: RetryConfig{
			Enabled:     false,
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    10 * time.Second,
			Multiplier:  2.0,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := getEnv("SECURITY"); v != "" {
		c.Roblox.Security = v
	}
	if v := getEnv("ACCOUNT"); v != "" {
		c.Roblox.Account = v
	}
	if v := getEnv("USER_AGENT"); v != "" {
		c.Roblox.UserAgent = v
	}
	if v := getEnv("GAMES_BASE_URL"); v != "" {
		c.Roblox.GamesBaseURL = v
	}
	if v := getEnv("THUMBNAILS_BASE_URL"); v != "" {
		c.Roblox.ThumbnailsBaseURL = v
	}

	if v := getEnv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.HTTP.Timeout = d
	}

	if v := getEnv("HEADSHOT_SIZE"); v != "" {
		c.Search.HeadshotSize = v
	}
	if v := getEnv("HEADSHOT_FORMAT"); v != "" {
		c.Search.HeadshotFormat = v
	}
	if v := getEnv("MAX_CONCURRENT_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_CONCURRENT_PAGES: %w", EnvPrefix, err)
		}
		c.Search.MaxConcurrentPages = n
	}

	if v := getEnv("REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREQUESTS_PER_MINUTE: %w", EnvPrefix, err)
		}
		c.RateLimit.RequestsPerMinute = n
	}

	if v := getEnv("RETRY_ENABLED"); v != "" {
		c.Retry.Enabled = strings.ToLower(v) == "true"
	}

	if v := getEnv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getEnv("LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return nil
}

func getEnv(key string) string {
	return os.Getenv(EnvPrefix + key)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations and
// returns the first that exists, or "" when there is none.
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"rblxlocate.yaml",
		".rblxlocate.yaml",
		".rblxlocate.yml",
		filepath.Join(home, ".config", "rblxlocate", "config.yaml"),
		filepath.Join(home, ".config", "rblxlocate", "config.yml"),
		filepath.Join(home, ".rblxlocate.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials are not
// required here: the CLI prompts for a missing security cookie.
func (c *Config) Validate() error {
	var errs []error

	if c.Roblox.GamesBaseURL == "" {
		errs = append(errs, errors.New("games base URL is required"))
	}
	if c.Roblox.ThumbnailsBaseURL == "" {
		errs = append(errs, errors.New("thumbnails base URL is required"))
	}

	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http timeout cannot be negative"))
	}
	if c.HTTP.MaxIdleConns < 0 {
		errs = append(errs, errors.New("max idle connections cannot be negative"))
	}

	if c.Search.HeadshotFormat == "" {
		errs = append(errs, errors.New("headshot format is required"))
	}
	if c.Search.HeadshotSize == "" {
		errs = append(errs, errors.New("headshot size is required"))
	}
	if c.Search.MaxConcurrentPages < 0 {
		errs = append(errs, errors.New("max concurrent pages cannot be negative"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts < 1 {
			errs = append(errs, errors.New("retry max attempts must be at least 1"))
		}
		if c.Retry.Multiplier < 1 {
			errs = append(errs, errors.New("retry multiplier must be at least 1"))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override the loaded values.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["security"].(string); ok && v != "" {
		c.Roblox.Security = v
	}
	if v, ok := flags["account"].(string); ok && v != "" {
		c.Roblox.Account = v
	}
	if v, ok := flags["size"].(string); ok && v != "" {
		c.Search.HeadshotSize = v
	}
	if v, ok := flags["format"].(string); ok && v != "" {
		c.Search.HeadshotFormat = v
	}
	if v, ok := flags["max-concurrent-pages"].(int); ok && v >= 0 {
		c.Search.MaxConcurrentPages = v
	}
	if v, ok := flags["requests-per-minute"].(int); ok && v >= 0 {
		c.RateLimit.RequestsPerMinute = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v >= 0 {
		c.HTTP.Timeout = v
	}
	if v, ok := flags["retry"].(bool); ok {
		c.Retry.Enabled = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are not an error
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".rblxlocate.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
