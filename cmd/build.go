package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the navigation preview into the output directory",
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
			report, err := svc.BuildPreview(cmd.Context(), site)
			if err != nil {
				return err
			}
			if n := report.Failures(); n > 0 {
				a.log.Warn().Int("failures", n).Msg("preview built with unresolved links, run `road check` for details")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "preview written to %s\n", svc.OutputDir())
			return err
		},
	}
}
