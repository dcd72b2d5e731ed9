package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newListCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your submissions and their delivery status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			subs, err := c.ListSubmissions(ctx)
			if err != nil {
				return fmt.Errorf("list submissions: %w", err)
			}

			if len(subs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No submissions.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROJECT\tEXPEDITION\tSTATUS\tCREATED\tUPDATED")
			for _, s := range subs {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", s.ID, s.ProjectID, s.ExpeditionCode, s.Status,
					s.CreatedAt.Local().Format(time.DateTime), s.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}
