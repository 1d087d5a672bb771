package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "vensar-drive"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "vensar-drive"))
		paths = append(paths, filepath.Join(homeDir, ".vensar-drive"))
	}

	return paths
}

// DefaultDataDir is where batch history lands when state.data_dir is
// not set.
func DefaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".vensar-drive")
	}
	return ".vensar-drive"
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("cache.list_ttl", 30*time.Second)
	v.SetDefault("cache.tree_ttl", 2*time.Minute)
	v.SetDefault("cache.preview_ttl", 4*time.Minute)
	v.SetDefault("upload.continue_on_error", false)
	v.SetDefault("state.data_dir", DefaultDataDir())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	// VENSAR_BACKEND_TOKEN etc. override file values, so the token can
	// stay out of the config file entirely.
	v.SetEnvPrefix("VENSAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly for env-only
	// configuration to reach Unmarshal.
	for _, key := range []string{"backend.base_url", "backend.token", "scope.service_id", "scope.project_id"} {
		_ = v.BindEnv(key)
	}
	// Short alias for the secret most deployments set.
	_ = v.BindEnv("backend.token", "VENSAR_BACKEND_TOKEN", "VENSAR_TOKEN")

	return v
}

// Load reads and parses a configuration file.
// If path is empty, searches default locations for config.yaml; a
// missing file is fine as long as env vars supply the backend.
func Load(path string) (*Config, error) {
	// A local .env is picked up the way the web dashboard does it;
	// absence is not an error.
	_ = godotenv.Load()

	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if path != "" {
				return nil, domain.ErrConfigNotFound
			}
			// Fall through to env-only configuration.
		} else if os.IsNotExist(err) {
			return nil, domain.ErrConfigNotFound
		} else {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromString parses configuration from a YAML string
func LoadFromString(yamlContent string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
