package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awsssrD/road/renderer"
	"github.com/awsssrD/road/siteconfig"
)

func newDumpCommand(a *app) *cobra.Command {
	var (
		format string
		minify bool
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the site configuration",
		Long: `Print the site configuration in a form the site renderer consumes.
json and yaml keep every key at the top level; mjs writes an ES module
with nav, sidebar and socialLinks nested under themeConfig.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := format
			if !cmd.Flags().Changed("format") {
				name = string(a.cfg.SiteFormat())
			}
			f, err := siteconfig.ParseFormat(name)
			if err != nil {
				return err
			}

			site, err := a.cfg.Site()
			if err != nil {
				return err
			}
			if err := siteconfig.Validate(site); err != nil {
				return err
			}
			out, err := siteconfig.Marshal(site, f)
			if err != nil {
				return err
			}
			if minify {
				out, err = minifyDump(out, f)
				if err != nil {
					return err
				}
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(siteconfig.FormatJSON), "output format: json, yaml or mjs")
	cmd.Flags().BoolVar(&minify, "minify", false, "minify json and mjs output")
	return cmd
}

func minifyDump(out []byte, f siteconfig.Format) ([]byte, error) {
	m := renderer.NewMinifier(true)
	switch f {
	case siteconfig.FormatJSON:
		out, err := m.Bytes(renderer.MediaJSON, out)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case siteconfig.FormatModule:
		out, err := m.Bytes(renderer.MediaJavaScript, out)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("--minify is not supported for %s", f)
	}
}
