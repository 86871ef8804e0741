package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateExecution(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dupesweep/config.toml"
		}
		return fmt.Errorf("server.url is required. Set IMMICH_SERVER_URL or edit %s (create with 'dupesweep config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("server.url must include a host")
	}
	if strings.TrimSpace(c.Server.APIKey) == "" {
		return errors.New("server.api_key is required. Set IMMICH_API_KEY or add it to the config file")
	}
	return nil
}

func (c *Config) validateExecution() error {
	if c.Execution.RequestsPerSec <= 0 {
		return errors.New("execution.requests_per_sec must be positive")
	}
	if c.Execution.MaxConcurrent <= 0 {
		return errors.New("execution.max_concurrent must be positive")
	}
	if strings.TrimSpace(c.Execution.BackupDir) == "" {
		return errors.New("execution.backup_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
