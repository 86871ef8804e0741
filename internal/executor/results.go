package executor

// OperationStatus tags the outcome of a single pipeline operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusFailed  OperationStatus = "failed"
	StatusSkipped OperationStatus = "skipped"
)

// OperationResult is the unit of outcome for every per-asset operation. Every
// outcome is data; nothing in the pipeline signals per-asset failure through
// error returns.
type OperationResult struct {
	Status OperationStatus `json:"status"`
	ID     string          `json:"id"`
	Path   string          `json:"path,omitempty"`
	Error  string          `json:"error,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// Succeeded reports whether the operation completed.
func (r OperationResult) Succeeded() bool { return r.Status == StatusSuccess }

// Success builds a successful result. Path is the backup location for
// downloads and empty otherwise.
func Success(id, path string) OperationResult {
	return OperationResult{Status: StatusSuccess, ID: id, Path: path}
}

// Failure builds a failed result carrying the error text.
func Failure(id string, err error) OperationResult {
	return OperationResult{Status: StatusFailed, ID: id, Error: err.Error()}
}

// Skip builds a skipped result with its reason.
func Skip(id, reason string) OperationResult {
	return OperationResult{Status: StatusSkipped, ID: id, Reason: reason}
}

// ConsolidationResult records which metadata fields moved to the winner and
// from which loser. Produced at most once per group.
type ConsolidationResult struct {
	GPSTransferred         bool   `json:"gps_transferred"`
	DatetimeTransferred    bool   `json:"datetime_transferred"`
	DescriptionTransferred bool   `json:"description_transferred"`
	SourceAssetID          string `json:"source_asset_id,omitempty"`
}

// AlbumTransferResult summarizes the album-preservation stage for one group.
type AlbumTransferResult struct {
	AlbumsTransferred int      `json:"albums_transferred"`
	AlbumIDs          []string `json:"album_ids,omitempty"`
	AlbumNames        []string `json:"album_names,omitempty"`
	HadFailures       bool     `json:"had_failures"`
	ErrorSummary      string   `json:"error_summary,omitempty"`
}

// GroupResult details the outcome of one duplicate group.
type GroupResult struct {
	DuplicateID     string               `json:"duplicate_id"`
	WinnerID        string               `json:"winner_id"`
	Consolidation   *ConsolidationResult `json:"consolidation,omitempty"`
	AlbumTransfer   *AlbumTransferResult `json:"album_transfer,omitempty"`
	DownloadResults []OperationResult    `json:"download_results"`
	DeleteResult    *OperationResult     `json:"delete_result,omitempty"`
}

// ExecutionReport is the running total over all processed groups. It is built
// incrementally as groups complete, never recomputed.
type ExecutionReport struct {
	TotalGroups int           `json:"total_groups"`
	Downloaded  int           `json:"downloaded"`
	Deleted     int           `json:"deleted"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Results     []GroupResult `json:"results"`
}

// NewReport returns an empty report.
func NewReport() *ExecutionReport {
	return &ExecutionReport{}
}

// AddGroupResult appends a group result and advances the counters. A
// successful batch delete counts every successfully downloaded loser as
// deleted, since the delete call covers exactly that set.
func (r *ExecutionReport) AddGroupResult(result GroupResult) {
	r.TotalGroups++

	downloadSuccesses := 0
	for _, download := range result.DownloadResults {
		switch download.Status {
		case StatusSuccess:
			r.Downloaded++
			downloadSuccesses++
		case StatusFailed:
			r.Failed++
		case StatusSkipped:
			r.Skipped++
		}
	}

	if result.DeleteResult != nil {
		switch result.DeleteResult.Status {
		case StatusSuccess:
			r.Deleted += downloadSuccesses
		case StatusFailed:
			r.Failed++
		case StatusSkipped:
			r.Skipped++
		}
	}

	r.Results = append(r.Results, result)
}
