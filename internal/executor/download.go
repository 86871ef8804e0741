package executor

import (
	"context"
	"path/filepath"

	"dupesweep/internal/logging"
	"dupesweep/internal/scoring"
)

// downloadLoser streams one loser's original file into the backup directory.
// The asset id prefixes the file name so identically-named originals from
// different assets cannot collide.
func (e *Executor) downloadLoser(ctx context.Context, loser scoring.ScoredAsset) OperationResult {
	destPath := filepath.Join(e.config.BackupDir, loser.ID+"_"+loser.FileName)

	err := e.gate.Do(ctx, func(ctx context.Context) error {
		_, downloadErr := e.service.DownloadOriginal(ctx, loser.ID, destPath)
		return downloadErr
	})
	if err != nil {
		e.logger.Error("backup download failed",
			logging.String(logging.FieldAssetID, loser.ID),
			logging.Error(err))
		return Failure(loser.ID, err)
	}
	return Success(loser.ID, destPath)
}
