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

// AccessKeyEnv is the environment variable holding the Unsplash access key
const AccessKeyEnv = "UNSPLASH_ACCESS_KEY"

// Config holds all configuration options for the image fetcher
type Config struct {
	// Unsplash API settings
	Unsplash UnsplashConfig `yaml:"unsplash" json:"unsplash"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Attribution settings
	Attribution AttributionConfig `yaml:"attribution" json:"attribution"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// UnsplashConfig holds Unsplash-specific configuration
type UnsplashConfig struct {
	AccessKey  string        `yaml:"access_key" json:"-"`
	BaseURL    string        `yaml:"base_url" json:"base_url"`
	APIVersion string        `yaml:"api_version" json:"api_version"`
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// RateLimitConfig holds request pacing configuration.
// RequestsPerHour of 0 disables pacing.
type RateLimitConfig struct {
	RequestsPerHour int `yaml:"requests_per_hour" json:"requests_per_hour"`
}

// AttributionConfig controls photographer attribution on saved files
type AttributionConfig struct {
	EmbedEXIF bool `yaml:"embed_exif" json:"embed_exif"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Unsplash: UnsplashConfig{
			BaseURL:    "https://api.unsplash.com",
			APIVersion: "v1",
			UserAgent:  "unsplashfetch/1.0",
			Timeout:    30 * time.Second,
		},
		Output: OutputConfig{
			Directory: "images",
		},
		RateLimit: RateLimitConfig{
			RequestsPerHour: 0,
		},
		Attribution: AttributionConfig{
			EmbedEXIF: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if key := os.Getenv(AccessKeyEnv); key != "" {
		c.Unsplash.AccessKey = key
	}
	if baseURL := os.Getenv("UNSPLASHFETCH_API_URL"); baseURL != "" {
		c.Unsplash.BaseURL = baseURL
	}
	if timeout := os.Getenv("UNSPLASHFETCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid UNSPLASHFETCH_TIMEOUT: %w", err)
		}
		c.Unsplash.Timeout = d
	}

	if outputDir := os.Getenv("UNSPLASHFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if rph := os.Getenv("UNSPLASHFETCH_REQUESTS_PER_HOUR"); rph != "" {
		val, err := strconv.Atoi(rph)
		if err != nil {
			return fmt.Errorf("invalid UNSPLASHFETCH_REQUESTS_PER_HOUR: %w", err)
		}
		c.RateLimit.RequestsPerHour = val
	}

	if embed := os.Getenv("UNSPLASHFETCH_EMBED_EXIF"); embed != "" {
		c.Attribution.EmbedEXIF = strings.ToLower(embed) == "true"
	}

	if logLevel := os.Getenv("UNSPLASHFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".unsplashfetch.yaml",
		".unsplashfetch.yml",
		filepath.Join(home, ".config", "unsplashfetch", "config.yaml"),
		filepath.Join(home, ".config", "unsplashfetch", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// A missing access key is not an error: the API rejects such requests and
// each one is reported as a failed fetch.
func (c *Config) Validate() error {
	var errs []error

	if c.Unsplash.BaseURL == "" {
		errs = append(errs, errors.New("unsplash base URL is required"))
	}
	if c.Unsplash.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.RateLimit.RequestsPerHour < 0 {
		errs = append(errs, errors.New("requests per hour cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.Logging.Level))
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

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if rph, ok := flags["requests-per-hour"].(int); ok && rph >= 0 {
		c.RateLimit.RequestsPerHour = rph
	}
	if embed, ok := flags["embed-exif"].(bool); ok {
		c.Attribution.EmbedEXIF = embed
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

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
