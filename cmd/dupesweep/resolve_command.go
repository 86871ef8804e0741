package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"dupesweep/internal/executor"
	"dupesweep/internal/journal"
	"dupesweep/internal/logging"
	"dupesweep/internal/scoring"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var includeConflicts bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve duplicate groups: consolidate metadata, back up, and delete losers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			logger := ctx.loggerValue()

			// One resolve at a time per backup directory. A second process
			// deleting against the same server would race the pipeline.
			lockPath := filepath.Join(cfg.Execution.BackupDir, ".dupesweep.lock")
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", lockPath, err)
			}
			if !locked {
				return fmt.Errorf("another resolve is already running (lock held at %s)", lockPath)
			}
			defer func() {
				_ = lock.Unlock()
			}()

			groups, err := client.ListDuplicateGroups(cmd.Context())
			if err != nil {
				return err
			}
			analyses, err := analyzeGroups(groups)
			if err != nil {
				return err
			}

			var eligible []*scoring.DuplicateAnalysis
			skippedForReview := 0
			for _, analysis := range analyses {
				if analysis.NeedsReview && !includeConflicts {
					skippedForReview++
					logger.Warn("skipping group with metadata conflicts",
						logging.String(logging.FieldGroupID, analysis.GroupID),
						logging.Int("conflicts", len(analysis.Conflicts)))
					continue
				}
				eligible = append(eligible, analysis)
			}

			execOpts := []executor.Option{executor.WithLogger(logger)}
			if progress := newProgress(); progress != nil {
				execOpts = append(execOpts, executor.WithProgress(progress))
			}

			var store *journal.Store
			var runID string
			if cfg.Journal.Enabled {
				store, err = journal.Open(cfg.Journal.Path)
				if err != nil {
					return fmt.Errorf("open run journal: %w", err)
				}
				defer store.Close()

				runID, err = store.StartRun(cmd.Context())
				if err != nil {
					return fmt.Errorf("start journal run: %w", err)
				}
				execOpts = append(execOpts, executor.WithSink(journal.NewRecorder(store, runID, logger)))
			}

			exec, err := executor.New(client, executor.Config{
				RequestsPerSec: cfg.Execution.RequestsPerSec,
				MaxConcurrent:  cfg.Execution.MaxConcurrent,
				BackupDir:      cfg.Execution.BackupDir,
				ForceDelete:    cfg.Execution.ForceDelete,
				PreserveAlbums: cfg.Execution.PreserveAlbums,
			}, execOpts...)
			if err != nil {
				return err
			}

			report, err := exec.ExecuteAll(cmd.Context(), eligible)
			if err != nil {
				return err
			}

			if store != nil {
				if finishErr := store.FinishRun(cmd.Context(), runID, report); finishErr != nil {
					logger.Warn("finalize journal run failed",
						logging.String(logging.FieldRunID, runID),
						logging.Error(finishErr))
				}
			}

			if asJSON {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Groups processed", fmt.Sprintf("%d", report.TotalGroups)},
				{"Skipped for review", fmt.Sprintf("%d", skippedForReview)},
				{"Backed up", fmt.Sprintf("%d", report.Downloaded)},
				{"Deleted", fmt.Sprintf("%d", report.Deleted)},
				{"Failed", fmt.Sprintf("%d", report.Failed)},
				{"Skipped", fmt.Sprintf("%d", report.Skipped)},
			}
			fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			if runID != "" {
				fmt.Fprintf(out, "Run recorded as %s\n", runID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&includeConflicts, "include-conflicts", false, "Also process groups with metadata conflicts")
	return cmd
}
