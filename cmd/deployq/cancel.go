package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel one or more deployments",
	}
	cmd.AddCommand(newCancelDeploymentCmd(), newCancelVersionCmd(), newCancelLocationCmd())
	return cmd
}

func newCancelDeploymentCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "deployment <deployment-id>",
		Short: "Cancel a single deployment by id",
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

			if _, err := client.CancelByID(cmd.Context(), id, note); err != nil {
				return fmt.Errorf("cancel %d: %w", id, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "cancellation note")
	return cmd
}

func newCancelVersionCmd() *cobra.Command {
	var component, version, note string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Cancel every non-terminal deployment matching a component and version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			if dryRun {
				ids, err := client.PreviewCancelByVersion(cmd.Context(), component, version)
				if err != nil {
					return fmt.Errorf("cancel version --dry-run: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ids)
				return nil
			}

			ids, err := client.CancelByVersion(cmd.Context(), component, version, note)
			if err != nil {
				return fmt.Errorf("cancel version: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ids)
			return nil
		},
	}
	cmd.Flags().StringVar(&component, "component", "", "component name (required)")
	cmd.Flags().StringVar(&version, "version", "", "version (required)")
	cmd.Flags().StringVar(&note, "note", "", "cancellation note")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the ids that would be cancelled without mutating anything")
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func newCancelLocationCmd() *cobra.Command {
	var env, provider, region, note string
	var cellIndex int
	var cellSet, dryRun bool
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Cancel every non-terminal deployment matching a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			var cell *int
			if cellSet {
				cell = &cellIndex
			}

			if dryRun {
				ids, err := client.PreviewCancelByLocation(cmd.Context(), env, provider, region, cell)
				if err != nil {
					return fmt.Errorf("cancel location --dry-run: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ids)
				return nil
			}

			ids, err := client.CancelByLocation(cmd.Context(), env, provider, region, cell, note)
			if err != nil {
				return fmt.Errorf("cancel location: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ids)
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "environment name (required)")
	cmd.Flags().StringVar(&provider, "provider", "", "cloud provider (required)")
	cmd.Flags().StringVar(&region, "region", "", "region (required)")
	cmd.Flags().IntVar(&cellIndex, "cell-index", 0, "cell index (omit to match every cell in the region)")
	cmd.Flags().StringVar(&note, "note", "", "cancellation note")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the ids that would be cancelled without mutating anything")
	_ = cmd.MarkFlagRequired("env")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("region")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		cellSet = cmd.Flags().Changed("cell-index")
	}
	return cmd
}
