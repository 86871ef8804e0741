package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExecution()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	c.Server.APIKey = strings.TrimSpace(c.Server.APIKey)

	// Environment variables override file values so credentials can stay out
	// of the config file entirely.
	if env := strings.TrimSpace(os.Getenv("IMMICH_SERVER_URL")); env != "" {
		c.Server.URL = strings.TrimRight(env, "/")
	}
	if env := strings.TrimSpace(os.Getenv("IMMICH_API_KEY")); env != "" {
		c.Server.APIKey = env
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Execution.BackupDir) == "" {
		c.Execution.BackupDir = defaultBackupDir
	}
	if c.Execution.BackupDir, err = expandPath(c.Execution.BackupDir); err != nil {
		return fmt.Errorf("execution.backup_dir: %w", err)
	}
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeExecution() {
	if c.Execution.RequestsPerSec <= 0 {
		c.Execution.RequestsPerSec = defaultRequestsPerSec
	}
	if c.Execution.MaxConcurrent <= 0 {
		c.Execution.MaxConcurrent = defaultMaxConcurrent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
