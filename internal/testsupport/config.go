package testsupport

import (
	"path/filepath"
	"testing"

	"dupesweep/internal/config"
)

// NewConfig returns a validated config rooted in a per-test temp directory.
// Options mutate the config before validation.
func NewConfig(t *testing.T, opts ...func(*config.Config)) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Server.URL = "http://immich.test"
	cfg.Server.APIKey = "test-api-key"
	cfg.Execution.BackupDir = filepath.Join(root, "backups")
	cfg.Journal.Path = filepath.Join(root, "journal.db")
	cfg.Logging.Dir = filepath.Join(root, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
