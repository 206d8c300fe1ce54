package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/launchr/pkg/client"
)

func addRemoteFlags(cmd *cobra.Command, flags *RemoteFlags) {
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", client.DefaultConfig().BaseURL, "daemon URL (e.g. http://host:8080/api)")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
	cmd.Flags().StringVar(&flags.ID, "id", "", "launcher id")
}

func newAPIClient(flags *RemoteFlags) (*client.Client, error) {
	return client.New(client.Config{BaseURL: flags.APIUrl, Timeout: flags.APITimeout})
}

func createStatusCommand() *cobra.Command {
	flags := &RemoteFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show launcher status from a running daemon",
		Long: `Show one launcher (--id) or all launchers of a daemon.

Examples:
  launchr status
  launchr status --id 7f8c... --api-url http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newAPIClient(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.APITimeout)
			defer cancel()
			if flags.ID != "" {
				st, err := c.Status(ctx, flags.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			}
			list, err := c.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	addRemoteFlags(cmd, flags)
	return cmd
}

func createLaunchCommand() *cobra.Command {
	flags := &RemoteFlags{}
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a launcher on a running daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newAPIClient(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.APITimeout)
			defer cancel()
			st, err := c.Launch(ctx, flags.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
	addRemoteFlags(cmd, flags)
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}
	return cmd
}
