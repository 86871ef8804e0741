package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dupesweep/internal/logging"
	"dupesweep/internal/scoring"
	"dupesweep/internal/services/immich"
)

// transferAlbums moves the losers' album memberships to the winner: the
// winner is added to every album any loser belongs to, then the losers are
// removed. Albums fail or succeed independently; HadFailures flags any album
// still failing after retry.
func (e *Executor) transferAlbums(ctx context.Context, analysis *scoring.DuplicateAnalysis) *AlbumTransferResult {
	result := &AlbumTransferResult{}
	var errorMessages []string

	// Union of every loser's albums, deduplicated by id in first-seen order.
	seen := make(map[string]struct{})
	var albums []immich.Album
	for _, loser := range analysis.Losers {
		var loserAlbums []immich.Album
		err := e.gate.Do(ctx, func(ctx context.Context) error {
			var lookupErr error
			loserAlbums, lookupErr = e.service.ListAlbumsForAsset(ctx, loser.ID)
			return lookupErr
		})
		if err != nil {
			result.HadFailures = true
			errorMessages = append(errorMessages, fmt.Sprintf("list albums for %s: %v", loser.ID, err))
			continue
		}
		for _, album := range loserAlbums {
			if _, ok := seen[album.ID]; ok {
				continue
			}
			seen[album.ID] = struct{}{}
			albums = append(albums, album)
		}
	}

	if len(albums) == 0 {
		if len(errorMessages) > 0 {
			result.ErrorSummary = strings.Join(errorMessages, "; ")
		}
		return result
	}

	loserIDs := analysis.LoserIDs()
	for _, album := range albums {
		if e.transferSingleAlbum(ctx, album.ID, analysis.Winner.ID, loserIDs) {
			result.AlbumsTransferred++
			result.AlbumIDs = append(result.AlbumIDs, album.ID)
			result.AlbumNames = append(result.AlbumNames, album.AlbumName)
			continue
		}
		result.HadFailures = true
		errorMessages = append(errorMessages, fmt.Sprintf("transfer album %q failed after retry", album.AlbumName))
		e.logger.Warn("album transfer failed after retry",
			logging.String(logging.FieldAlbumID, album.ID),
			logging.String(logging.FieldGroupID, analysis.GroupID))
	}

	if len(errorMessages) > 0 {
		result.ErrorSummary = strings.Join(errorMessages, "; ")
	}
	return result
}

// transferSingleAlbum retries one album's transfer with exponential backoff
// until it succeeds or the retry budget runs out.
func (e *Executor) transferSingleAlbum(ctx context.Context, albumID, winnerID string, loserIDs []string) bool {
	return e.withRetry(ctx, func(ctx context.Context) error {
		return e.tryTransferAlbum(ctx, albumID, winnerID, loserIDs)
	})
}

// tryTransferAlbum performs one transfer attempt: add the winner, remove the
// losers. Both calls are rate-gated.
func (e *Executor) tryTransferAlbum(ctx context.Context, albumID, winnerID string, loserIDs []string) error {
	err := e.gate.Do(ctx, func(ctx context.Context) error {
		return e.service.AddAssetsToAlbum(ctx, albumID, []string{winnerID})
	})
	if err != nil && !isAlreadyInAlbum(err) {
		return err
	}

	return e.gate.Do(ctx, func(ctx context.Context) error {
		return e.service.RemoveAssetsFromAlbum(ctx, albumID, loserIDs)
	})
}

// isAlreadyInAlbum reports whether an add failed only because the winner is
// already a member. The server answers 400 with "duplicate" or "already" in
// the body; that is an idempotent no-op, not a failure.
func isAlreadyInAlbum(err error) bool {
	var apiErr *immich.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return false
	}
	message := strings.ToLower(apiErr.Message)
	return strings.Contains(message, "duplicate") || strings.Contains(message, "already")
}
