package scoring

import (
	"sort"

	"dupesweep/internal/services"
	"dupesweep/internal/services/immich"
)

// ScoredAsset pairs an asset's identity with its completeness score.
type ScoredAsset struct {
	ID       string        `json:"id"`
	FileName string        `json:"file_name"`
	Score    MetadataScore `json:"score"`
	FileSize *int64        `json:"file_size,omitempty"`
}

// DuplicateAnalysis is the per-group decision: which asset survives, which
// are deleted, and whether conflicting metadata should block automation.
type DuplicateAnalysis struct {
	GroupID     string             `json:"group_id"`
	Winner      ScoredAsset        `json:"winner"`
	Losers      []ScoredAsset      `json:"losers"`
	Conflicts   []MetadataConflict `json:"conflicts,omitempty"`
	NeedsReview bool               `json:"needs_review"`
}

// Analyze scores every asset in the group, picks the winner, and detects
// metadata conflicts. Ranking is by score total, then file size, then input
// order; the sort is stable so equal assets keep their input order.
func Analyze(group immich.DuplicateGroup) (*DuplicateAnalysis, error) {
	if len(group.Assets) == 0 {
		return nil, services.Wrap(services.ErrValidation, "scoring", "analyze", "group "+group.DuplicateID+" has no assets", nil)
	}

	scored := make([]ScoredAsset, 0, len(group.Assets))
	for _, asset := range group.Assets {
		scored = append(scored, ScoredAsset{
			ID:       asset.ID,
			FileName: asset.OriginalFileName,
			Score:    Score(asset),
			FileSize: fileSize(asset),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score.Total != scored[j].Score.Total {
			return scored[i].Score.Total > scored[j].Score.Total
		}
		return sizeOrZero(scored[i]) > sizeOrZero(scored[j])
	})

	conflicts := DetectConflicts(group.Assets)

	return &DuplicateAnalysis{
		GroupID:     group.DuplicateID,
		Winner:      scored[0],
		Losers:      scored[1:],
		Conflicts:   conflicts,
		NeedsReview: len(conflicts) > 0,
	}, nil
}

// LoserIDs returns the ids of all non-winner assets in ranked order.
func (a *DuplicateAnalysis) LoserIDs() []string {
	ids := make([]string, 0, len(a.Losers))
	for _, loser := range a.Losers {
		ids = append(ids, loser.ID)
	}
	return ids
}

func fileSize(asset immich.Asset) *int64 {
	if asset.ExifInfo == nil {
		return nil
	}
	return asset.ExifInfo.FileSizeInByte
}

func sizeOrZero(sa ScoredAsset) int64 {
	if sa.FileSize == nil {
		return 0
	}
	return *sa.FileSize
}
