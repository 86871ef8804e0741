package executor

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dupesweep/internal/scoring"
	"dupesweep/internal/services/immich"
	"dupesweep/internal/testsupport"
)

func f64Ptr(f float64) *float64 { return &f }
func strPtr(s string) *string   { return &s }

func newTestExecutor(t *testing.T, service immich.Service, mutate func(*Config)) *Executor {
	t.Helper()
	cfg := Config{
		RequestsPerSec: 1000,
		MaxConcurrent:  5,
		BackupDir:      filepath.Join(t.TempDir(), "backups"),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	exec, err := New(service, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Retry sleeps advance a fake clock so album-transfer retries do not
	// stall the test run.
	now := time.Now()
	exec.now = func() time.Time { return now }
	exec.sleep = func(_ context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}
	return exec
}

func analysisWithLosers(groupID, winnerID string, loserIDs ...string) *scoring.DuplicateAnalysis {
	analysis := &scoring.DuplicateAnalysis{
		GroupID: groupID,
		Winner:  scoring.ScoredAsset{ID: winnerID, FileName: winnerID + ".jpg"},
	}
	for _, id := range loserIDs {
		analysis.Losers = append(analysis.Losers, scoring.ScoredAsset{ID: id, FileName: id + ".jpg"})
	}
	return analysis
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(nil, Config{RequestsPerSec: 1, MaxConcurrent: 1, BackupDir: "x"}); err == nil {
		t.Fatal("expected error for nil service")
	}
	if _, err := New(&testsupport.FakeService{}, Config{RequestsPerSec: 1, MaxConcurrent: 1}); err == nil {
		t.Fatal("expected error for empty backup dir")
	}
	if _, err := New(&testsupport.FakeService{}, Config{RequestsPerSec: 0, MaxConcurrent: 1, BackupDir: "x"}); err == nil {
		t.Fatal("expected error for zero rate")
	}
}

func TestExecuteAllEmptyInput(t *testing.T) {
	exec := newTestExecutor(t, &testsupport.FakeService{}, nil)

	report, err := exec.ExecuteAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}
	if report.TotalGroups != 0 || len(report.Results) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestDeleteCoversOnlyDownloadedAssets(t *testing.T) {
	var deletedIDs []string
	var deleteForce bool
	service := &testsupport.FakeService{
		DownloadOriginalFunc: func(_ context.Context, assetID, destPath string) (int64, error) {
			if assetID == "loser-bad" {
				return 0, errors.New("connection reset")
			}
			return 5, os.WriteFile(destPath, []byte("bytes"), 0o644)
		},
		DeleteAssetsFunc: func(_ context.Context, assetIDs []string, force bool) error {
			deletedIDs = assetIDs
			deleteForce = force
			return nil
		},
	}
	exec := newTestExecutor(t, service, func(c *Config) { c.ForceDelete = true })

	analysis := analysisWithLosers("g1", "winner", "loser-ok", "loser-bad")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	if len(deletedIDs) != 1 || deletedIDs[0] != "loser-ok" {
		t.Fatalf("deleted ids = %v, want only the downloaded loser", deletedIDs)
	}
	if !deleteForce {
		t.Fatal("force flag not propagated")
	}

	result := report.Results[0]
	if result.DeleteResult == nil || !result.DeleteResult.Succeeded() {
		t.Fatalf("delete result = %+v", result.DeleteResult)
	}
	if report.Downloaded != 1 || report.Deleted != 1 || report.Failed != 1 {
		t.Fatalf("counters = %+v", report)
	}
}

func TestAllDownloadsFailedSkipsDelete(t *testing.T) {
	service := &testsupport.FakeService{
		DownloadOriginalFunc: func(context.Context, string, string) (int64, error) {
			return 0, errors.New("disk full")
		},
	}
	exec := newTestExecutor(t, service, nil)

	analysis := analysisWithLosers("g1", "winner", "l1", "l2")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	if service.CallCount("DeleteAssets") != 0 {
		t.Fatal("delete must not be called when nothing was backed up")
	}
	result := report.Results[0]
	if result.DeleteResult == nil || result.DeleteResult.Status != StatusSkipped {
		t.Fatalf("delete result = %+v, want skipped", result.DeleteResult)
	}
	if result.DeleteResult.Reason != "no assets were successfully downloaded" {
		t.Fatalf("reason = %q", result.DeleteResult.Reason)
	}
}

func TestAlbumTransferFailureShortCircuitsGroup(t *testing.T) {
	service := &testsupport.FakeService{
		ListAlbumsForAssetFunc: func(context.Context, string) ([]immich.Album, error) {
			return []immich.Album{{ID: "alb-1", AlbumName: "Holidays"}}, nil
		},
		RemoveAssetsFromAlbumFunc: func(context.Context, string, []string) error {
			return errors.New("server error")
		},
	}
	exec := newTestExecutor(t, service, func(c *Config) { c.PreserveAlbums = true })

	analysis := analysisWithLosers("g1", "winner", "l1")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	result := report.Results[0]
	if result.AlbumTransfer == nil || !result.AlbumTransfer.HadFailures {
		t.Fatalf("album transfer = %+v, want failure", result.AlbumTransfer)
	}
	if len(result.DownloadResults) != 0 {
		t.Fatal("no downloads may happen after an album transfer failure")
	}
	if service.CallCount("DownloadOriginal") != 0 || service.CallCount("DeleteAssets") != 0 {
		t.Fatal("destructive calls issued despite album failure")
	}
	if result.DeleteResult == nil || result.DeleteResult.Status != StatusSkipped {
		t.Fatalf("delete result = %+v, want skipped", result.DeleteResult)
	}
	if result.DeleteResult.Reason != "album transfer failed after retry, skip deletion to preserve album integrity" {
		t.Fatalf("reason = %q", result.DeleteResult.Reason)
	}
}

func TestWinnerAlreadyInAlbumIsNotAFailure(t *testing.T) {
	service := &testsupport.FakeService{
		ListAlbumsForAssetFunc: func(context.Context, string) ([]immich.Album, error) {
			return []immich.Album{{ID: "alb-1", AlbumName: "Holidays"}}, nil
		},
		AddAssetsToAlbumFunc: func(context.Context, string, []string) error {
			return &immich.APIError{Status: http.StatusBadRequest, Message: "Assets are duplicates"}
		},
	}
	exec := newTestExecutor(t, service, func(c *Config) { c.PreserveAlbums = true })

	analysis := analysisWithLosers("g1", "winner", "l1")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	result := report.Results[0]
	if result.AlbumTransfer.HadFailures {
		t.Fatalf("duplicate add must count as success: %+v", result.AlbumTransfer)
	}
	if result.AlbumTransfer.AlbumsTransferred != 1 {
		t.Fatalf("albums transferred = %d", result.AlbumTransfer.AlbumsTransferred)
	}
	if result.DeleteResult == nil || !result.DeleteResult.Succeeded() {
		t.Fatalf("pipeline should proceed to deletion: %+v", result.DeleteResult)
	}
}

func TestAlbumUnionDeduplicatesAcrossLosers(t *testing.T) {
	service := &testsupport.FakeService{
		ListAlbumsForAssetFunc: func(_ context.Context, assetID string) ([]immich.Album, error) {
			return []immich.Album{{ID: "alb-shared", AlbumName: "Shared"}}, nil
		},
	}
	exec := newTestExecutor(t, service, func(c *Config) { c.PreserveAlbums = true })

	analysis := analysisWithLosers("g1", "winner", "l1", "l2")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	if got := report.Results[0].AlbumTransfer.AlbumsTransferred; got != 1 {
		t.Fatalf("albums transferred = %d, want deduplicated 1", got)
	}
	if service.CallCount("AddAssetsToAlbum") != 1 {
		t.Fatalf("add calls = %d, want 1", service.CallCount("AddAssetsToAlbum"))
	}
}

func TestConsolidationTransfersMissingGPS(t *testing.T) {
	var update immich.MetadataUpdate
	var updatedID string
	service := &testsupport.FakeService{
		GetAssetFunc: func(_ context.Context, assetID string) (*immich.Asset, error) {
			if assetID == "winner" {
				return &immich.Asset{ID: assetID, ExifInfo: &immich.ExifInfo{
					DateTimeOriginal: strPtr("2024-12-23T10:30:45Z"),
					Description:      strPtr("holiday"),
				}}, nil
			}
			return &immich.Asset{ID: assetID, ExifInfo: &immich.ExifInfo{
				Latitude:  f64Ptr(51.5074),
				Longitude: f64Ptr(-0.1278),
			}}, nil
		},
		UpdateAssetMetadataFunc: func(_ context.Context, assetID string, u immich.MetadataUpdate) error {
			updatedID = assetID
			update = u
			return nil
		},
	}
	exec := newTestExecutor(t, service, nil)

	analysis := analysisWithLosers("g1", "winner", "loser-gps")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	consolidation := report.Results[0].Consolidation
	if consolidation == nil {
		t.Fatal("expected a consolidation result")
	}
	if !consolidation.GPSTransferred || consolidation.DatetimeTransferred || consolidation.DescriptionTransferred {
		t.Fatalf("consolidation = %+v", consolidation)
	}
	if consolidation.SourceAssetID != "loser-gps" {
		t.Fatalf("source = %s", consolidation.SourceAssetID)
	}
	if updatedID != "winner" || update.Latitude == nil || *update.Latitude != 51.5074 {
		t.Fatalf("update = %+v on %s", update, updatedID)
	}
	if update.DateTimeOriginal != nil || update.Description != nil {
		t.Fatalf("fields the winner already has must not be touched: %+v", update)
	}
}

func TestConsolidationFirstFoundWinsPerField(t *testing.T) {
	service := &testsupport.FakeService{
		GetAssetFunc: func(_ context.Context, assetID string) (*immich.Asset, error) {
			switch assetID {
			case "winner":
				return &immich.Asset{ID: assetID}, nil
			case "l1":
				return &immich.Asset{ID: assetID, ExifInfo: &immich.ExifInfo{
					DateTimeOriginal: strPtr("2024-01-01T00:00:00Z"),
				}}, nil
			default: // l2 has everything, but l1 already claimed datetime
				return &immich.Asset{ID: assetID, ExifInfo: &immich.ExifInfo{
					Latitude:         f64Ptr(1),
					Longitude:        f64Ptr(2),
					DateTimeOriginal: strPtr("2030-01-01T00:00:00Z"),
					Description:      strPtr("late"),
				}}, nil
			}
		},
	}
	var update immich.MetadataUpdate
	service.UpdateAssetMetadataFunc = func(_ context.Context, _ string, u immich.MetadataUpdate) error {
		update = u
		return nil
	}
	exec := newTestExecutor(t, service, nil)

	analysis := analysisWithLosers("g1", "winner", "l1", "l2")
	if _, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis}); err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	if update.DateTimeOriginal == nil || *update.DateTimeOriginal != "2024-01-01T00:00:00Z" {
		t.Fatalf("a later loser overrode an earlier match: %+v", update)
	}
	if update.Latitude == nil || *update.Latitude != 1 {
		t.Fatalf("gps should come from l2: %+v", update)
	}
}

func TestConsolidationSkippedWhenWinnerComplete(t *testing.T) {
	service := &testsupport.FakeService{
		GetAssetFunc: func(_ context.Context, assetID string) (*immich.Asset, error) {
			return &immich.Asset{ID: assetID, ExifInfo: &immich.ExifInfo{
				Latitude:         f64Ptr(1),
				Longitude:        f64Ptr(2),
				DateTimeOriginal: strPtr("2024-01-01T00:00:00Z"),
				Description:      strPtr("done"),
			}}, nil
		},
	}
	exec := newTestExecutor(t, service, nil)

	analysis := analysisWithLosers("g1", "winner", "l1", "l2")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	if report.Results[0].Consolidation != nil {
		t.Fatal("complete winner needs no consolidation")
	}
	// Only the winner fetch happens; losers are never scanned.
	if got := service.CallCount("GetAsset"); got != 1 {
		t.Fatalf("GetAsset calls = %d, want 1", got)
	}
	if service.CallCount("UpdateAssetMetadata") != 0 {
		t.Fatal("no update expected")
	}
}

func TestConsolidationFailureNeverBlocksDeletion(t *testing.T) {
	service := &testsupport.FakeService{
		GetAssetFunc: func(context.Context, string) (*immich.Asset, error) {
			return nil, errors.New("timeout")
		},
	}
	exec := newTestExecutor(t, service, nil)

	analysis := analysisWithLosers("g1", "winner", "l1")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	result := report.Results[0]
	if result.Consolidation != nil {
		t.Fatalf("consolidation = %+v, want none", result.Consolidation)
	}
	if result.DeleteResult == nil || !result.DeleteResult.Succeeded() {
		t.Fatalf("deletion must proceed despite consolidation failure: %+v", result.DeleteResult)
	}
}

func TestDownloadPathUsesAssetIDPrefix(t *testing.T) {
	exec := newTestExecutor(t, &testsupport.FakeService{}, nil)

	analysis := analysisWithLosers("g1", "winner", "l1")
	report, err := exec.ExecuteAll(context.Background(), []*scoring.DuplicateAnalysis{analysis})
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	download := report.Results[0].DownloadResults[0]
	if filepath.Base(download.Path) != "l1_l1.jpg" {
		t.Fatalf("backup path = %q", download.Path)
	}
	if _, err := os.Stat(download.Path); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
}

func TestGroupsProcessedInInputOrder(t *testing.T) {
	exec := newTestExecutor(t, &testsupport.FakeService{}, nil)

	analyses := []*scoring.DuplicateAnalysis{
		analysisWithLosers("g1", "w1", "l1"),
		analysisWithLosers("g2", "w2", "l2"),
		analysisWithLosers("g3", "w3", "l3"),
	}
	report, err := exec.ExecuteAll(context.Background(), analyses)
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}

	for i, want := range []string{"g1", "g2", "g3"} {
		if report.Results[i].DuplicateID != want {
			t.Fatalf("result %d = %s, want %s", i, report.Results[i].DuplicateID, want)
		}
	}
}

func TestReportCounters(t *testing.T) {
	report := NewReport()

	deleteOK := Success("g1", "")
	report.AddGroupResult(GroupResult{
		DuplicateID: "g1",
		DownloadResults: []OperationResult{
			Success("a", "/tmp/a"),
			Failure("b", errors.New("nope")),
		},
		DeleteResult: &deleteOK,
	})

	deleteSkip := Skip("g2", "no assets were successfully downloaded")
	report.AddGroupResult(GroupResult{
		DuplicateID:     "g2",
		DownloadResults: []OperationResult{Failure("c", errors.New("nope"))},
		DeleteResult:    &deleteSkip,
	})

	if report.TotalGroups != 2 {
		t.Fatalf("total groups = %d", report.TotalGroups)
	}
	if report.Downloaded != 1 || report.Deleted != 1 {
		t.Fatalf("downloaded = %d, deleted = %d", report.Downloaded, report.Deleted)
	}
	if report.Failed != 2 || report.Skipped != 1 {
		t.Fatalf("failed = %d, skipped = %d", report.Failed, report.Skipped)
	}
}
