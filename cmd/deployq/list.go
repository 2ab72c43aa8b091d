package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outliers or cells",
	}
	cmd.AddCommand(newListOutliersCmd(), newListCellsCmd())
	return cmd
}

type outlierJSON struct {
	ID            int64   `json:"id"`
	Environment   string  `json:"environment"`
	CloudProvider string  `json:"cloud_provider"`
	Region        string  `json:"region"`
	CellIndex     int     `json:"cell_index"`
	Component     string  `json:"component"`
	Version       string  `json:"version"`
	ElapsedSec    float64 `json:"elapsed_seconds"`
	MeanSec       float64 `json:"mean_seconds"`
	StdDevSec     float64 `json:"stddev_seconds"`
}

func newListOutliersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outliers",
		Short: "Print running deployments whose elapsed time is anomalously long",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			outliers, err := client.ListOutliers(cmd.Context())
			if err != nil {
				return fmt.Errorf("list outliers: %w", err)
			}

			out := make([]outlierJSON, len(outliers))
			for i, o := range outliers {
				out[i] = outlierJSON{
					ID:            o.ID,
					Environment:   o.Location.Environment,
					CloudProvider: o.Location.CloudProvider,
					Region:        o.Location.Region,
					CellIndex:     o.Location.CellIndex,
					Component:     o.Payload.Component,
					Version:       o.Payload.Version,
					ElapsedSec:    o.Elapsed.Seconds(),
					MeanSec:       o.Mean.Seconds(),
					StdDevSec:     o.StdDev.Seconds(),
				}
			}
			payload, err := json.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return ciOutput("active-outliers", string(payload))
		},
	}
}

type cellJSON struct {
	CloudProvider string `json:"cloud_provider"`
	Region        string `json:"region"`
	CellIndex     int    `json:"cell_index"`
}

func newListCellsCmd() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "cells",
		Short: "Print the distinct cells observed for an environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			cells, err := client.ListCells(cmd.Context(), env)
			if err != nil {
				return fmt.Errorf("list cells: %w", err)
			}

			out := make([]cellJSON, len(cells))
			for i, c := range cells {
				out[i] = cellJSON{CloudProvider: c.CloudProvider, Region: c.Region, CellIndex: c.CellIndex}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", c.CloudProvider, c.Region, c.CellIndex)
			}
			payload, err := json.Marshal(out)
			if err != nil {
				return err
			}
			return ciOutput("cells", string(payload))
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "environment name (required)")
	_ = cmd.MarkFlagRequired("env")
	return cmd
}
