package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset ID",
		Short: "Queue a FAILED submission for another delivery attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			if err := c.ResetSubmission(ctx, args[0]); err != nil {
				return fmt.Errorf("reset %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submission %s is READY again.\n", args[0])
			return nil
		},
	}
}
