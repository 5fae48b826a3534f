package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	API   APIConfig   `mapstructure:"api"`
	Store StoreConfig `mapstructure:"store"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// APIConfig locates the agent backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Key     string `mapstructure:"key"`
}

// StoreConfig selects the persistence backend for the session list.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "sqlite"
	Path    string `mapstructure:"path"`
}

// DefaultsConfig holds default values for various commands
type DefaultsConfig struct {
	MaxMessageChars int `mapstructure:"max_message_chars"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "text",
		Quiet:   false,
		Verbose: false,
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Defaults: DefaultsConfig{
			MaxMessageChars: 8000,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("agentchat")
	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	v.AddConfigPath("/etc/agentchat/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "agentchat"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".agentchat")
	}
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("AGENTCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "AGENTCHAT_FORMAT")
	v.BindEnv("verbose", "AGENTCHAT_VERBOSE")
	v.BindEnv("quiet", "AGENTCHAT_QUIET")
	v.BindEnv("api.base_url", "AGENTCHAT_API_URL")
	v.BindEnv("api.key", "AGENTCHAT_API_KEY")
	v.BindEnv("store.backend", "AGENTCHAT_STORE_BACKEND")
	v.BindEnv("store.path", "AGENTCHAT_STORE_PATH")

	// Set defaults
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("store.backend", cfg.Store.Backend)
	v.SetDefault("defaults.max_message_chars", cfg.Defaults.MaxMessageChars)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
