package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/prtasks/internal/clipboard"
	"github.com/Iron-Ham/prtasks/internal/tui"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newTasksCmd(c *cli) *cobra.Command {
	var urlOverride string

	cmd := &cobra.Command{
		Use:   "tasks <url|file>",
		Short: "Show the task IDs of a pull request interactively",
		Long: `Open an interactive view of the task IDs referenced by a pull request's
commits.

Keys: c/y copy all IDs, r refresh, ↑/↓ scroll, q quit.

When stdout is not a terminal the list is printed as plain text instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openPage(ctx, args[0], urlOverride)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				if err := s.attach(ctx); err != nil {
					return err
				}
				res, err := s.request(ctx)
				if err != nil {
					return err
				}
				return report{source: s.tab.URL, result: res}.writeText(out)
			}

			app := tui.New(tui.Options{
				Context:      ctx,
				Requester:    s.requester,
				Tab:          s.tab,
				Clipboard:    clipboard.New(os.Stderr, c.logger),
				CopyFeedback: c.cfg.TUI.CopyFeedback(),
				Logger:       c.logger,
			})
			_, err = app.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&urlOverride, "url", "", "pull request URL of a saved page (default: its canonical link)")
	return cmd
}
