package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHeartbeatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Run a foreground heartbeat loop for a deployment",
	}
	cmd.AddCommand(newHeartbeatDeploymentCmd(), newHeartbeatURLCmd())
	return cmd
}

func newHeartbeatDeploymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deployment <deployment-id>",
		Short: "Heartbeat a deployment by id until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid deployment id %q: %w", args[0], err)
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			return runCancelable(cmd.Context(), func(ctx context.Context) error {
				return client.RunHeartbeat(ctx, id)
			})
		},
	}
}

func newHeartbeatURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Resolve a url to a deployment id, then heartbeat it until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			id, err := client.ResolveURL(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("resolve url %q: %w", url, err)
			}

			return runCancelable(cmd.Context(), func(ctx context.Context) error {
				return client.RunHeartbeat(ctx, id)
			})
		},
	}
}
