package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"dupesweep/internal/logging"
	"dupesweep/internal/rategate"
	"dupesweep/internal/scoring"
	"dupesweep/internal/services"
	"dupesweep/internal/services/immich"
)

// Config controls the execution pipeline. Supplied once at construction and
// immutable for the executor's lifetime.
type Config struct {
	RequestsPerSec int
	MaxConcurrent  int
	BackupDir      string
	ForceDelete    bool
	PreserveAlbums bool
}

// Sink receives each group result as it completes. The run journal implements
// this to persist outcomes.
type Sink interface {
	GroupCompleted(result GroupResult)
}

// Progress receives pipeline progress updates for display.
type Progress interface {
	Start(totalGroups int)
	Status(message string)
	GroupDone()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)     {}
func (nopProgress) Status(string) {}
func (nopProgress) GroupDone()    {}
func (nopProgress) Finish()       {}

// Executor runs the resolution pipeline for analyzed duplicate groups under
// shared rate and concurrency limits.
type Executor struct {
	service  immich.Service
	gate     *rategate.Gate
	config   Config
	logger   *slog.Logger
	progress Progress
	sink     Sink

	// overridable in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes an Executor.
type Option func(*Executor)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress attaches a progress display.
func WithProgress(progress Progress) Option {
	return func(e *Executor) {
		if progress != nil {
			e.progress = progress
		}
	}
}

// WithSink attaches a per-group result sink.
func WithSink(sink Sink) Option {
	return func(e *Executor) {
		e.sink = sink
	}
}

// New builds an executor. The rate gate is created here from the config's
// limits, so an invalid config fails construction rather than the run.
func New(service immich.Service, cfg Config, opts ...Option) (*Executor, error) {
	if service == nil {
		return nil, services.Wrap(services.ErrValidation, "executor", "new", "service is nil", nil)
	}
	if strings.TrimSpace(cfg.BackupDir) == "" {
		return nil, services.Wrap(services.ErrValidation, "executor", "new", "backup directory is not set", nil)
	}
	gate, err := rategate.New(cfg.RequestsPerSec, cfg.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	e := &Executor{
		service:  service,
		gate:     gate,
		config:   cfg,
		logger:   logging.NewNop(),
		progress: nopProgress{},
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ExecuteAll runs the pipeline once per analysis, in input order, and
// accumulates a report. Failure to create the backup directory aborts the
// whole run; nothing can proceed without a backup destination.
func (e *Executor) ExecuteAll(ctx context.Context, analyses []*scoring.DuplicateAnalysis) (*ExecutionReport, error) {
	report := NewReport()
	if len(analyses) == 0 {
		return report, nil
	}

	if err := os.MkdirAll(e.config.BackupDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "executor", "execute all", "create backup directory "+e.config.BackupDir, err)
	}

	e.progress.Start(len(analyses))
	for _, analysis := range analyses {
		e.progress.Status(fmt.Sprintf("group %s (%d losers)", analysis.GroupID, len(analysis.Losers)))
		e.logger.Info("processing group",
			logging.String(logging.FieldGroupID, analysis.GroupID),
			logging.Int("losers", len(analysis.Losers)))

		result := e.executeGroup(ctx, analysis)
		report.AddGroupResult(result)
		if e.sink != nil {
			e.sink.GroupCompleted(result)
		}
		e.progress.GroupDone()
	}
	e.progress.Finish()

	e.logger.Info("execution complete",
		logging.Int("groups", report.TotalGroups),
		logging.Int("downloaded", report.Downloaded),
		logging.Int("deleted", report.Deleted),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped))
	return report, nil
}

// executeGroup drives one group through consolidation, album transfer,
// download, and delete.
func (e *Executor) executeGroup(ctx context.Context, analysis *scoring.DuplicateAnalysis) GroupResult {
	result := GroupResult{
		DuplicateID: analysis.GroupID,
		WinnerID:    analysis.Winner.ID,
	}

	e.progress.Status("consolidating metadata")
	result.Consolidation = e.consolidateMetadata(ctx, analysis)

	if e.config.PreserveAlbums {
		e.progress.Status("transferring album memberships")
		result.AlbumTransfer = e.transferAlbums(ctx, analysis)

		// Never delete an asset whose album membership could not be safely
		// preserved.
		if result.AlbumTransfer.HadFailures {
			skip := Skip(analysis.GroupID, "album transfer failed after retry, skip deletion to preserve album integrity")
			result.DeleteResult = &skip
			e.logger.Warn("skipping group after album transfer failure",
				logging.String(logging.FieldGroupID, analysis.GroupID))
			return result
		}
	}

	for _, loser := range analysis.Losers {
		e.progress.Status("downloading " + loser.FileName)
		result.DownloadResults = append(result.DownloadResults, e.downloadLoser(ctx, loser))
	}

	var downloadedIDs []string
	for _, download := range result.DownloadResults {
		if download.Succeeded() {
			downloadedIDs = append(downloadedIDs, download.ID)
		}
	}

	// Never delete an asset that was not successfully backed up.
	if len(downloadedIDs) == 0 {
		skip := Skip(analysis.GroupID, "no assets were successfully downloaded")
		result.DeleteResult = &skip
		return result
	}

	e.progress.Status(fmt.Sprintf("deleting %d assets", len(downloadedIDs)))
	deleteErr := e.gate.Do(ctx, func(ctx context.Context) error {
		return e.service.DeleteAssets(ctx, downloadedIDs, e.config.ForceDelete)
	})

	var deleteResult OperationResult
	if deleteErr != nil {
		deleteResult = Failure(analysis.GroupID, deleteErr)
		e.logger.Error("batch delete failed",
			logging.String(logging.FieldGroupID, analysis.GroupID),
			logging.Error(deleteErr))
	} else {
		deleteResult = Success(analysis.GroupID, "")
	}
	result.DeleteResult = &deleteResult
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
