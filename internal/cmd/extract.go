package cmd

import (
	"github.com/spf13/cobra"
)

func newExtractCmd(c *cli) *cobra.Command {
	var (
		urlOverride string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "extract <url|file>",
		Short: "Print the task IDs of a pull request page",
		Long: `Print the task IDs referenced by a pull request's commits.

Formats:
  text      one line per task with its commit count (default)
  json      {"taskIds": [...], "taskDetails": {...}}
  yaml      the same structure as YAML
  markdown  a summary rendered from output.template

Examples:
  prtasks extract https://github.com/acme/widgets/pull/42
  prtasks extract saved-pr.html --url https://github.com/acme/widgets/pull/42 -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = c.cfg.Output.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := c.openPage(ctx, args[0], urlOverride)
			if err != nil {
				return err
			}
			if err := s.attach(ctx); err != nil {
				return err
			}

			res, err := s.request(ctx)
			if err != nil {
				return err
			}
			return report{source: s.tab.URL, result: res, template: c.cfg.Output.Template}.write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&urlOverride, "url", "", "pull request URL of a saved page (default: its canonical link)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, yaml, markdown (default: output.format)")
	return cmd
}
