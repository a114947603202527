package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/prtasks/internal/page"
	"github.com/Iron-Ham/prtasks/internal/watch"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		urlOverride string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "watch <url|file>",
		Short: "Re-extract task IDs whenever the page changes",
		Long: `Watch a pull request page and print its task IDs each time they change.

A saved file is watched for writes; extraction re-runs once the file has been
quiet for watch.debounce_ms. A URL is re-fetched every watch.poll_seconds.
Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = c.cfg.Output.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), args[0], urlOverride, format, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&urlOverride, "url", "", "pull request URL of a saved page (default: its canonical link)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, yaml, markdown (default: output.format)")
	return cmd
}

// runWatch prints the first extraction and then every changed one until ctx ends.
func (c *cli) runWatch(ctx context.Context, target, urlOverride, format string, out, errOut io.Writer) error {
	s, err := c.openPage(ctx, target, urlOverride)
	if err != nil {
		return err
	}
	if err := s.attach(ctx); err != nil {
		return err
	}

	w, err := watch.New(target, page.IsRemote(target), c.cfg.Watch.Debounce(), c.cfg.Watch.PollInterval(), c.logger)
	if err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	w.SetCallback(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	var last string
	emit := func() error {
		s.relocate(ctx)
		res, err := s.request(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Best effort: a broken intermediate state is reported and skipped
			c.logger.Warn("watch extraction failed", "target", target, "error", err.Error())
			fmt.Fprintf(errOut, "extraction failed: %v\n", err)
			return nil
		}

		key := fingerprint(res)
		if key == last {
			c.logger.Debug("tasks unchanged", "target", target)
			return nil
		}
		last = key
		return report{source: s.tab.URL, result: res, template: c.cfg.Output.Template}.write(out, format)
	}

	if err := emit(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := emit(); err != nil {
				return err
			}
		}
	}
}
