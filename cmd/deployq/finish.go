package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <deployment-id>",
		Short: "Mark a running deployment as finished",
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

			if err := client.MarkFinished(cmd.Context(), id); err != nil {
				return fmt.Errorf("finish %d: %w", id, err)
			}
			return nil
		},
	}
}
