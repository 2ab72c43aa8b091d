package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neondatabase/deployq"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <deployment-id>",
		Short: "Print a single-line summary of a deployment",
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

			d, err := client.Info(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("info %d: %w", id, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatInfo(d))
			return nil
		},
	}
}

// formatInfo renders a deployment as "<id> deployed <component>@<version>:
// (<note>) (<url>)", eliding a parenthesized field entirely when its value
// is empty.
func formatInfo(d deployq.Deployment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d deployed %s@%s:", d.ID, d.Component, d.Version)
	if d.Note != "" {
		fmt.Fprintf(&b, " (%s)", d.Note)
	}
	if d.URL != "" {
		fmt.Fprintf(&b, " (%s)", d.URL)
	}
	return b.String()
}
