package journal

import (
	"context"
	"log/slog"

	"dupesweep/internal/executor"
	"dupesweep/internal/logging"
)

// Recorder adapts the store to the executor's result sink: every completed
// group is persisted immediately, so a crash mid-run loses at most the group
// in flight. Persistence failures are logged and swallowed; the journal must
// never abort the pipeline.
type Recorder struct {
	store  *Store
	runID  string
	logger *slog.Logger
}

var _ executor.Sink = (*Recorder)(nil)

// NewRecorder builds a recorder writing under the given run id.
func NewRecorder(store *Store, runID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{store: store, runID: runID, logger: logger}
}

// GroupCompleted implements executor.Sink.
func (r *Recorder) GroupCompleted(result executor.GroupResult) {
	if err := r.store.RecordGroup(context.Background(), r.runID, result); err != nil {
		r.logger.Warn("journal write failed",
			logging.String(logging.FieldRunID, r.runID),
			logging.String(logging.FieldGroupID, result.DuplicateID),
			logging.Error(err))
	}
}
