package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dupesweep/internal/rategate"
	"dupesweep/internal/restore"
)

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Re-upload backed-up originals to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			source := strings.TrimSpace(dir)
			if source == "" {
				source = cfg.Execution.BackupDir
			}

			gate, err := rategate.New(cfg.Execution.RequestsPerSec, cfg.Execution.MaxConcurrent)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := []restore.Option{restore.WithLogger(ctx.loggerValue())}
			if !asJSON {
				opts = append(opts, restore.WithFileHook(func(name string) {
					fmt.Fprintf(out, "uploading %s\n", name)
				}))
			}

			restorer, err := restore.New(client, gate, opts...)
			if err != nil {
				return err
			}

			summary, err := restorer.RestoreDir(cmd.Context(), source)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, summary)
			}

			fmt.Fprintf(out, "Restore from %s: %s\n", source, summary.Describe())
			for _, msg := range summary.Errors {
				fmt.Fprintf(out, "  error: %s\n", msg)
			}
			if summary.HasFailures() {
				return fmt.Errorf("%d uploads failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to restore from (defaults to the backup directory)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
