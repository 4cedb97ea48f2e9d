package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

const (
	EnvServerURL = "DRAZE_SERVER_URL"
	EnvLogLevel  = "DRAZE_LOG_LEVEL"

	DefaultPageSize = 10
)

// Config represents the configuration for the draze CLI
type Config struct {
	// ServerURL is the base URL of the marketplace API
	ServerURL string `yaml:"server_url" toml:"server_url" json:"serverUrl"`
	// RequestTimeout bounds every API call, e.g. "30s". Empty means no limit.
	RequestTimeout string `yaml:"request_timeout,omitempty" toml:"request_timeout" json:"requestTimeout,omitempty"`
	// PageSize is the default number of rows per page of list output
	PageSize int `yaml:"page_size,omitempty" toml:"page_size" json:"pageSize,omitempty"`
	// Debounce delays search input, e.g. "500ms"
	Debounce string `yaml:"debounce,omitempty" toml:"debounce" json:"debounce,omitempty"`
	LogLevel string `yaml:"log_level,omitempty" toml:"log_level" json:"logLevel,omitempty"`

	timeout  time.Duration
	debounce time.Duration
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/draze on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "draze", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file. Files ending in .toml
// are read as TOML, everything else as YAML. Values from the environment, including
// a .env file in the working directory, take precedence.
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		if _, err := toml.Decode(string(content), &c); err != nil {
			return fmt.Errorf("unable to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	c.applyEnv()
	if err := c.ValidateConfig(); err != nil {
		return err
	}

	config = &c
	return nil
}

// loadDotEnv reads .env if present; a missing file is not an error.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to load .env: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration as YAML to file with owner-only permissions.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0o700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0o600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks required fields, normalises the server URL and parses the
// durations.
func (cfg *Config) ValidateConfig() error {
	if cfg.ServerURL == "" {
		return errors.New("server_url is required")
	}
	cfg.ServerURL = MorphServer(cfg.ServerURL)
	if strings.ContainsAny(strings.TrimPrefix(strings.TrimPrefix(cfg.ServerURL, "https://"), "http://"), " \t") {
		return errors.New("server_url must not contain spaces")
	}
	if cfg.PageSize < 0 {
		return errors.New("page_size must not be negative")
	}
	var err error
	if cfg.timeout, err = parseDuration("request_timeout", cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.debounce, err = parseDuration("debounce", cfg.Debounce); err != nil {
		return err
	}
	return nil
}

func parseDuration(name, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration such as 30s", name)
	}
	return d, nil
}

// MorphServer ensures the server URL is properly formatted
// Adds http:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	// Remove any trailing slashes
	server = strings.TrimRight(server, "/")

	// Add http:// if no protocol is specified
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

func (cfg *Config) GetRequestTimeout() time.Duration {
	return cfg.timeout
}

func (cfg *Config) GetPageSize() int {
	if cfg.PageSize <= 0 {
		return DefaultPageSize
	}
	return cfg.PageSize
}

func (cfg *Config) GetDebounce() time.Duration {
	return cfg.debounce
}
