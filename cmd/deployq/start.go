package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neondatabase/deployq"
)

func newStartCmd() *cobra.Command {
	var (
		env, provider, region, component string
		cellIndex                        int
		version, url, note, concurrency  string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Enqueue a deployment and block until it is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			id, err := client.Enqueue(cmd.Context(), deployq.Location{
				Environment:   env,
				CloudProvider: provider,
				Region:        region,
				CellIndex:     cellIndex,
			}, deployq.Payload{
				Component:      component,
				Version:        version,
				URL:            url,
				Note:           note,
				ConcurrencyKey: concurrency,
			})
			if err != nil {
				return fmt.Errorf("enqueue: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			if err := ciOutput("deployment-id", fmt.Sprint(id)); err != nil {
				return err
			}

			return runCancelable(cmd.Context(), func(ctx context.Context) error {
				return client.WaitUntilStarted(ctx, id)
			})
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "environment name (required)")
	cmd.Flags().StringVar(&provider, "provider", "", "cloud provider (required)")
	cmd.Flags().StringVar(&region, "region", "", "region (required)")
	cmd.Flags().IntVar(&cellIndex, "cell-index", 0, "cell index (required)")
	cmd.Flags().StringVar(&component, "component", "", "component name (required)")
	cmd.Flags().StringVar(&version, "version", "", "version being deployed")
	cmd.Flags().StringVar(&url, "url", "", "url identifying this deployment")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().StringVar(&concurrency, "concurrency-key", "", "deployments sharing a non-empty key may run concurrently")
	for _, f := range []string{"env", "provider", "region", "cell-index", "component"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}
