package restore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"dupesweep/internal/logging"
	"dupesweep/internal/rategate"
	"dupesweep/internal/services"
	"dupesweep/internal/services/immich"
)

// Uploader is the slice of the Immich client the restorer needs.
type Uploader interface {
	UploadAsset(ctx context.Context, filePath string) (*immich.UploadResult, error)
}

// Summary counts the outcome of a restore pass.
type Summary struct {
	Scanned    int      `json:"scanned"`
	Uploaded   int      `json:"uploaded"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Restorer re-uploads backed-up originals to the server. The server
// deduplicates by checksum, so re-running a restore is harmless.
type Restorer struct {
	uploader Uploader
	gate     *rategate.Gate
	logger   *slog.Logger
	onFile   func(name string)
}

// Option customizes a Restorer.
type Option func(*Restorer)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Restorer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFileHook registers a callback invoked before each upload, for progress
// display.
func WithFileHook(hook func(name string)) Option {
	return func(r *Restorer) {
		if hook != nil {
			r.onFile = hook
		}
	}
}

// New builds a restorer sharing the pipeline's rate gate.
func New(uploader Uploader, gate *rategate.Gate, opts ...Option) (*Restorer, error) {
	if uploader == nil {
		return nil, services.Wrap(services.ErrValidation, "restore", "new", "uploader is nil", nil)
	}
	if gate == nil {
		return nil, services.Wrap(services.ErrValidation, "restore", "new", "rate gate is nil", nil)
	}
	r := &Restorer{
		uploader: uploader,
		gate:     gate,
		logger:   logging.NewNop(),
		onFile:   func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RestoreDir uploads every media file directly inside dir, in name order.
// Per-file failures are counted, not fatal; only an unreadable directory
// aborts the pass.
func (r *Restorer) RestoreDir(ctx context.Context, dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "restore", "restore dir", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !immich.IsMediaFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	summary := &Summary{Scanned: len(files)}
	for _, name := range files {
		r.onFile(name)
		path := filepath.Join(dir, name)

		var result *immich.UploadResult
		err := r.gate.Do(ctx, func(ctx context.Context) error {
			var uploadErr error
			result, uploadErr = r.uploader.UploadAsset(ctx, path)
			return uploadErr
		})
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			r.logger.Warn("upload failed",
				logging.String("file", name),
				logging.Error(err))
			continue
		}

		if result.Duplicate {
			summary.Duplicates++
			r.logger.Debug("already on server",
				logging.String("file", name),
				logging.String(logging.FieldAssetID, result.ID))
			continue
		}
		summary.Uploaded++
		r.logger.Info("restored",
			logging.String("file", name),
			logging.String(logging.FieldAssetID, result.ID))
	}

	return summary, nil
}

// Describe renders a one-line human summary.
func (s *Summary) Describe() string {
	return fmt.Sprintf("%d scanned, %d uploaded, %d already on server, %d failed",
		s.Scanned, s.Uploaded, s.Duplicates, s.Failed)
}

// HasFailures reports whether any upload failed.
func (s *Summary) HasFailures() bool { return s.Failed > 0 }
