package executor

import (
	"context"

	"dupesweep/internal/logging"
	"dupesweep/internal/scoring"
	"dupesweep/internal/services/immich"
)

// consolidateMetadata copies GPS, capture time, and description from losers
// to the winner before the losers disappear. Best-effort: any fetch or update
// failure here is logged and swallowed, never blocking deletion.
func (e *Executor) consolidateMetadata(ctx context.Context, analysis *scoring.DuplicateAnalysis) *ConsolidationResult {
	var winner *immich.Asset
	err := e.gate.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		winner, fetchErr = e.service.GetAsset(ctx, analysis.Winner.ID)
		return fetchErr
	})
	if err != nil {
		e.logger.Debug("no consolidation, winner fetch failed",
			logging.String(logging.FieldAssetID, analysis.Winner.ID),
			logging.Error(err))
		return nil
	}

	exif := winner.ExifInfo
	hasGPS := exif.HasGPS()
	hasDatetime := exif.HasCaptureTime()
	hasDescription := exif != nil && exif.Description != nil

	if hasGPS && hasDatetime && hasDescription {
		return nil
	}

	// First-found wins per field, independently per field. Scanning stops
	// once every missing field has a source.
	var (
		gpsSource, datetimeSource, descriptionSource string
		lat, lon                                     *float64
		datetime, description                        *string
	)

	for _, loser := range analysis.Losers {
		var asset *immich.Asset
		err := e.gate.Do(ctx, func(ctx context.Context) error {
			var fetchErr error
			asset, fetchErr = e.service.GetAsset(ctx, loser.ID)
			return fetchErr
		})
		if err != nil {
			e.logger.Debug("skipping unfetchable loser during consolidation",
				logging.String(logging.FieldAssetID, loser.ID),
				logging.Error(err))
			continue
		}

		loserExif := asset.ExifInfo
		if loserExif != nil {
			if !hasGPS && gpsSource == "" && loserExif.HasGPS() {
				lat, lon = loserExif.Latitude, loserExif.Longitude
				gpsSource = loser.ID
			}
			if !hasDatetime && datetimeSource == "" && loserExif.DateTimeOriginal != nil {
				datetime = loserExif.DateTimeOriginal
				datetimeSource = loser.ID
			}
			if !hasDescription && descriptionSource == "" && loserExif.Description != nil {
				description = loserExif.Description
				descriptionSource = loser.ID
			}
		}

		if (hasGPS || gpsSource != "") && (hasDatetime || datetimeSource != "") && (hasDescription || descriptionSource != "") {
			break
		}
	}

	if gpsSource == "" && datetimeSource == "" && descriptionSource == "" {
		return nil
	}

	update := immich.MetadataUpdate{
		Latitude:         lat,
		Longitude:        lon,
		DateTimeOriginal: datetime,
		Description:      description,
	}
	err = e.gate.Do(ctx, func(ctx context.Context) error {
		return e.service.UpdateAssetMetadata(ctx, analysis.Winner.ID, update)
	})
	if err != nil {
		e.logger.Debug("no consolidation, metadata update failed",
			logging.String(logging.FieldAssetID, analysis.Winner.ID),
			logging.Error(err))
		return nil
	}

	source := gpsSource
	if source == "" {
		source = datetimeSource
	}
	if source == "" {
		source = descriptionSource
	}
	return &ConsolidationResult{
		GPSTransferred:         gpsSource != "",
		DatetimeTransferred:    datetimeSource != "",
		DescriptionTransferred: descriptionSource != "",
		SourceAssetID:          source,
	}
}
