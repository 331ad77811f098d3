// Package config provides configuration loading and validation for the CRM
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application settings. Values may come from a JSON or YAML
// file and are then overlaid by environment variables.
type Config struct {
	Env  string `json:"env,omitempty" yaml:"env,omitempty"`   // dev, local, staging, production
	Port int    `json:"port,omitempty" yaml:"port,omitempty"` // HTTP listen port

	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	// LLM
	LLMProvider       string `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"` // gemini or genai
	APIKey            string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	LLMTimeoutSeconds int    `json:"llm_timeout_seconds,omitempty" yaml:"llm_timeout_seconds,omitempty"`

	// Object storage
	S3Endpoint       string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty"`
	S3PublicEndpoint string `json:"s3_public_endpoint,omitempty" yaml:"s3_public_endpoint,omitempty"`
	S3AccessKey      string `json:"s3_access_key,omitempty" yaml:"s3_access_key,omitempty"`
	S3SecretKey      string `json:"s3_secret_key,omitempty" yaml:"s3_secret_key,omitempty"`
	S3Bucket         string `json:"s3_bucket,omitempty" yaml:"s3_bucket,omitempty"`
	S3UseSSL         bool   `json:"s3_use_ssl,omitempty" yaml:"s3_use_ssl,omitempty"`

	RedisURL  string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`   // session revocation store; empty keeps it in memory
	ChromeBin string `json:"chrome_bin,omitempty" yaml:"chrome_bin,omitempty"` // browser used for PDF exports

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the settings used when neither file nor environment
// provides a value.
func Defaults() Config {
	return Config{
		Env:               "dev",
		Port:              8080,
		LLMProvider:       "gemini",
		LLMTimeoutSeconds: 60,
		S3Bucket:          "crm",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv returns a copy of c with every set environment variable applied on top.
func (c Config) FromEnv() (Config, error) {
	setString(&c.Env, "APP_ENV")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.APIKey, "GEMINI_API_KEY")
	setString(&c.S3Endpoint, "S3_ENDPOINT")
	setString(&c.S3PublicEndpoint, "S3_PUBLIC_ENDPOINT")
	setString(&c.S3AccessKey, "S3_ACCESS_KEY")
	setString(&c.S3SecretKey, "S3_SECRET_KEY")
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.ChromeBin, "CHROME_BIN")

	if err := setInt(&c.Port, "PORT"); err != nil {
		return c, err
	}
	if err := setInt(&c.LLMTimeoutSeconds, "LLM_TIMEOUT"); err != nil {
		return c, err
	}
	if err := setBool(&c.S3UseSSL, "S3_USE_SSL"); err != nil {
		return c, err
	}
	if err := setBool(&c.Verbose, "VERBOSE"); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks that the configuration has valid values. Required
// collaborators are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.LLMTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'llm_timeout_seconds' must be non-negative")
	}
	switch c.LLMProvider {
	case "", "gemini", "genai":
	default:
		return fmt.Errorf("config error: unsupported 'llm_provider' %q (want gemini or genai)", c.LLMProvider)
	}
	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("config error: 's3_access_key' and 's3_secret_key' must be set together")
	}
	return nil
}

// LLMTimeout returns the per-call model timeout.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// StorageEnabled reports whether object storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.Env, defaults.Env)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.S3Endpoint, defaults.S3Endpoint)
	fill(&result.S3PublicEndpoint, defaults.S3PublicEndpoint)
	fill(&result.S3AccessKey, defaults.S3AccessKey)
	fill(&result.S3SecretKey, defaults.S3SecretKey)
	fill(&result.S3Bucket, defaults.S3Bucket)
	fill(&result.RedisURL, defaults.RedisURL)
	fill(&result.ChromeBin, defaults.ChromeBin)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LLMTimeoutSeconds == 0 {
		result.LLMTimeoutSeconds = defaults.LLMTimeoutSeconds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags and env should always win for bools)

	return result
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = b
	return nil
}
