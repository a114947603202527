package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/prtasks/internal/pr"
)

func newAPICmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "api <pr-url|owner/repo#number>",
		Short: "List task IDs using the GitHub REST API instead of the page",
		Long: `List the task IDs of a pull request by reading its commits through the
GitHub REST API. Every commit is included, even on pull requests whose page
truncates the commit list.

Authentication uses github.token, falling back to $GITHUB_TOKEN. Set
github.base_url for GitHub Enterprise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = c.cfg.Output.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			ref, err := pr.ParseRef(args[0])
			if err != nil {
				return err
			}

			token := c.cfg.GitHub.Token
			if token == "" {
				token = os.Getenv("GITHUB_TOKEN")
			}

			ctx := cmd.Context()
			client, err := pr.NewClient(ctx, token, c.cfg.GitHub.BaseURL)
			if err != nil {
				return err
			}

			res, err := pr.NewCommitSource(client, c.logger).Tasks(ctx, ref)
			if err != nil {
				return err
			}
			return report{source: ref.String(), result: res, template: c.cfg.Output.Template}.write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, yaml, markdown (default: output.format)")
	return cmd
}
