package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the Immich server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			if err := client.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}
			cfg := ctx.configValue()
			fmt.Fprintf(cmd.OutOrStdout(), "Server %s is reachable\n", cfg.Server.URL)
			return nil
		},
	}
}
