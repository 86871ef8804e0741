package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dupesweep/internal/journal"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded resolution runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					finishedLabel(run),
					fmt.Sprintf("%d", run.TotalGroups),
					fmt.Sprintf("%d", run.Deleted),
					fmt.Sprintf("%d", run.Failed),
					fmt.Sprintf("%d", run.Skipped),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Finished", "Groups", "Deleted", "Failed", "Skipped"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.AddCommand(newRunShowCommand(ctx))

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newRunShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-group outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runID := args[0]
			run, err := store.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", runID)
			}
			records, err := store.RunGroups(cmd.Context(), runID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"run":    run,
					"groups": records,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s started %s, %d groups\n",
				run.ID, run.StartedAt.Local().Format(time.DateTime), run.TotalGroups)

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.DuplicateID,
					record.WinnerID,
					deleteLabel(record),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Group", "Winner", "Delete"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func openJournal(ctx *commandContext) (*journal.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("run journal is disabled; enable it under [journal] in the config")
	}
	return journal.Open(cfg.Journal.Path)
}

func finishedLabel(run journal.Run) string {
	if run.FinishedAt == nil {
		return "(in progress)"
	}
	return run.FinishedAt.Local().Format(time.DateTime)
}

func deleteLabel(record journal.GroupRecord) string {
	if record.Result.DeleteResult == nil {
		return "-"
	}
	result := *record.Result.DeleteResult
	switch {
	case result.Reason != "":
		return fmt.Sprintf("%s (%s)", result.Status, result.Reason)
	case result.Error != "":
		return fmt.Sprintf("%s (%s)", result.Status, result.Error)
	default:
		return string(result.Status)
	}
}
