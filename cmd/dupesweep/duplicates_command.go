package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupesweep/internal/services/immich"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List duplicate groups reported by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			groups, err := client.ListDuplicateGroups(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, groups)
			}

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No duplicate groups found")
				return nil
			}

			rows := make([][]string, 0, len(groups))
			totalAssets := 0
			for _, group := range groups {
				totalAssets += len(group.Assets)
				rows = append(rows, []string{
					group.DuplicateID,
					fmt.Sprintf("%d", len(group.Assets)),
					firstFileName(group),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Group", "Assets", "Example File"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d groups, %d assets\n", len(groups), totalAssets)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func firstFileName(group immich.DuplicateGroup) string {
	if len(group.Assets) == 0 {
		return ""
	}
	return group.Assets[0].OriginalFileName
}
