package config

const (
	defaultRequestsPerSec = 10
	defaultMaxConcurrent  = 5
	defaultBackupDir      = "~/.local/share/dupesweep/backups"
	defaultJournalPath    = "~/.local/share/dupesweep/journal.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Execution: Execution{
			RequestsPerSec: defaultRequestsPerSec,
			MaxConcurrent:  defaultMaxConcurrent,
			BackupDir:      defaultBackupDir,
			ForceDelete:    false,
			PreserveAlbums: true,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
