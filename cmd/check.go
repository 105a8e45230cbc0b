package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and resolve every link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			site, err := svc.Site()
			if err != nil {
				return err
			}
			report, err := svc.Check(cmd.Context(), site)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOCATION\tLINK\tSOURCE\tSTATUS")
			for _, l := range report.Links {
				status, source := "ok", l.Source
				switch {
				case l.Err != nil:
					status = l.Err.Error()
				case l.External:
					source = "(external)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Location, l.Link, source, status)
			}
			for _, as := range report.Assets {
				status := "ok"
				if as.Err != nil {
					status = as.Err.Error()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", as.Location, as.Href, as.File, status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if n := report.Failures(); n > 0 {
				return fmt.Errorf("%d problem(s) found: %w", n, report.Err())
			}
			return nil
		},
	}
}
