package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dupesweep/internal/scoring"
	"dupesweep/internal/services/immich"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var showCropPairs bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score duplicate groups and show winners without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			groups, err := client.ListDuplicateGroups(cmd.Context())
			if err != nil {
				return err
			}

			analyses, err := analyzeGroups(groups)
			if err != nil {
				return err
			}

			if showCropPairs {
				var all []immich.Asset
				for _, group := range groups {
					all = append(all, group.Assets...)
				}
				pairs := scoring.FindCropPairs(all)
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"analyses":   analyses,
						"crop_pairs": pairs,
					})
				}
				printAnalyses(cmd, analyses)
				printCropPairs(cmd, pairs)
				return nil
			}

			if asJSON {
				return writeJSON(cmd, analyses)
			}
			printAnalyses(cmd, analyses)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showCropPairs, "crop-pairs", false, "Also detect iPhone 4:3/16:9 crop pairs")
	return cmd
}

func analyzeGroups(groups []immich.DuplicateGroup) ([]*scoring.DuplicateAnalysis, error) {
	analyses := make([]*scoring.DuplicateAnalysis, 0, len(groups))
	for _, group := range groups {
		analysis, err := scoring.Analyze(group)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

func printAnalyses(cmd *cobra.Command, analyses []*scoring.DuplicateAnalysis) {
	out := cmd.OutOrStdout()
	if len(analyses) == 0 {
		fmt.Fprintln(out, "No duplicate groups found")
		return
	}

	needsReview := 0
	rows := make([][]string, 0, len(analyses))
	for _, analysis := range analyses {
		if analysis.NeedsReview {
			needsReview++
		}
		rows = append(rows, []string{
			analysis.GroupID,
			analysis.Winner.FileName,
			fmt.Sprintf("%d", analysis.Winner.Score.Total),
			fmt.Sprintf("%d", len(analysis.Losers)),
			conflictSummary(analysis),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Group", "Winner", "Score", "Losers", "Conflicts"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d groups analyzed, %d need review\n", len(analyses), needsReview)
}

func conflictSummary(analysis *scoring.DuplicateAnalysis) string {
	if !analysis.NeedsReview {
		return "-"
	}
	fields := make([]string, 0, len(analysis.Conflicts))
	for _, conflict := range analysis.Conflicts {
		fields = append(fields, string(conflict.Field))
	}
	return strings.Join(fields, ", ")
}

func printCropPairs(cmd *cobra.Command, pairs []scoring.CropPair) {
	out := cmd.OutOrStdout()
	if len(pairs) == 0 {
		fmt.Fprintln(out, "No crop pairs detected")
		return
	}

	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{
			pair.Timestamp,
			pair.Camera,
			pair.Keeper.OriginalFileName,
			pair.Crop.OriginalFileName,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Captured", "Camera", "Keeper (4:3)", "Crop (16:9)"},
		rows,
		nil,
	))
	fmt.Fprintf(out, "%d crop pairs detected\n", len(pairs))
}
