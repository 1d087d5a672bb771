// Package config loads and validates the client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
)

// Config represents the complete configuration for the drive client
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Scope   ScopeConfig   `mapstructure:"scope"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Upload  UploadConfig  `mapstructure:"upload"`
	State   StateConfig   `mapstructure:"state"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig points the client at the document backend
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScopeConfig pins the client to one service/project subtree
type ScopeConfig struct {
	ServiceID string `mapstructure:"service_id"`
	ProjectID string `mapstructure:"project_id"`
}

// CacheConfig tunes read-cache freshness
type CacheConfig struct {
	ListTTL    time.Duration `mapstructure:"list_ttl"`
	TreeTTL    time.Duration `mapstructure:"tree_ttl"`
	PreviewTTL time.Duration `mapstructure:"preview_ttl"`
}

// UploadConfig tunes batch behavior
type UploadConfig struct {
	// ContinueOnError uploads the rest of a batch past a failure
	// instead of aborting
	ContinueOnError bool `mapstructure:"continue_on_error"`
}

// StateConfig locates local persistence
type StateConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LoggingConfig describes logger output in config-file terms
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"` // "stdout", "stderr", "file"
	File   struct {
		Path       string `mapstructure:"path"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
		MaxBackups int    `mapstructure:"max_backups"`
		Compress   bool   `mapstructure:"compress"`
	} `mapstructure:"file"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("%w: backend.base_url cannot be empty", domain.ErrConfigInvalid)
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("%w: backend.base_url must be an http(s) URL", domain.ErrConfigInvalid)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("%w: backend.timeout cannot be negative", domain.ErrConfigInvalid)
	}
	if c.Cache.ListTTL < 0 || c.Cache.TreeTTL < 0 || c.Cache.PreviewTTL < 0 {
		return fmt.Errorf("%w: cache TTLs cannot be negative", domain.ErrConfigInvalid)
	}
	// A project scope needs both halves; one without the other cannot
	// resolve a project root.
	if (c.Scope.ServiceID == "") != (c.Scope.ProjectID == "") {
		return fmt.Errorf("%w: scope.service_id and scope.project_id must be set together", domain.ErrConfigInvalid)
	}
	if c.Logging.Output == "file" && c.Logging.File.Path == "" {
		return fmt.Errorf("%w: logging.file.path is required for file output", domain.ErrConfigInvalid)
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr", "file":
	default:
		return fmt.Errorf("%w: unknown logging.output: %s", domain.ErrConfigInvalid, c.Logging.Output)
	}
	return nil
}

// DomainScope returns the configured project scope.
func (c *Config) DomainScope() domain.Scope {
	return domain.Scope{ServiceID: c.Scope.ServiceID, ProjectID: c.Scope.ProjectID}
}

// LoggerConfig converts the file-level logging section into the
// logger's own config type.
func (c *Config) LoggerConfig() logger.Config {
	filePath := c.Logging.File.Path
	if filePath != "" {
		filePath = ExpandPath(filePath)
	}
	out := logger.OutputConfig{Type: logger.OutputStdout}
	switch c.Logging.Output {
	case "stderr":
		out.Type = logger.OutputStderr
	case "file":
		out.Type = logger.OutputFile
	}

	return logger.Config{
		Level:   logger.ParseLevel(c.Logging.Level),
		Format:  logger.ParseFormat(c.Logging.Format),
		Outputs: []logger.OutputConfig{out},
		File: logger.FileConfig{
			Enabled:    c.Logging.Output == "file",
			Path:       filePath,
			MaxSizeMB:  c.Logging.File.MaxSizeMB,
			MaxAgeDays: c.Logging.File.MaxAgeDays,
			MaxBackups: c.Logging.File.MaxBackups,
			Compress:   c.Logging.File.Compress,
		},
	}
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
