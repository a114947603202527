package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/prtasks/internal/config"
	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// cli carries state shared by every command for one invocation.
type cli struct {
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "prtasks [url|file]",
		Short: "List the task IDs referenced by a pull request's commits",
		Long: `prtasks reads a pull request page, finds the task IDs at the start of its
commit messages (ABC-123, ABC123, 123) and lists each unique ID with the
number of commits that reference it.

The page may be a live URL or a saved HTML file. Without a subcommand the
interactive view is opened, exactly like 'prtasks tasks'.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (default is $HOME/.config/prtasks/config.yaml)")

	tasks := newTasksCmd(c)
	rootCmd.Flags().AddFlagSet(tasks.Flags())
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return tasks.RunE(cmd, args)
	}

	rootCmd.AddCommand(
		tasks,
		newExtractCmd(c),
		newWatchCmd(c),
		newAPICmd(c),
		newConfigCmd(c),
		newLogsCmd(c),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// init reads the config file and environment, then opens the logger.
func (c *cli) init() error {
	if err := initConfig(c.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	c.cfg = cfg

	c.logger = logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err := logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level)
		if err != nil {
			return errors.Wrap(err, "failed to open log")
		}
		c.logger = logger
	}
	return nil
}

func (c *cli) close() {
	if c.logger != nil {
		_ = c.logger.Close()
	}
}

func initConfig(cfgFile string) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.SetEnvPrefix("PRTASKS")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PRTASKS_WATCH_DEBOUNCE_MS for watch.debounce_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing default config file is fine; an explicit one must load
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		return errors.Wrapf(err, "failed to read config file %s", cfgFile)
	}
	return nil
}
