package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/prtasks/internal/config"
)

// defaultConfigContent is written by 'config init'.
const defaultConfigContent = `# prtasks configuration

# How pull request pages are located and fetched
page:
  # Glob patterns of hosts whose /<owner>/<repo>/pull/<n> pages qualify
  hosts:
    - github.com
  user_agent: prtasks/1.0
  # Upper bound for a single page fetch
  timeout_seconds: 30
  # Page fetches per second
  requests_per_second: 1

# Interactive view
tui:
  # How long "✓ Copied!" stays visible
  copy_feedback_ms: 2000
  # Wait before resending to a freshly attached extractor
  retry_delay_ms: 500

# 'prtasks watch'
watch:
  # Quiet period after a saved page changes before extraction re-runs
  debounce_ms: 1500
  # How often a URL is re-fetched
  poll_seconds: 30

# 'prtasks api'
github:
  # Personal access token; $GITHUB_TOKEN is used when empty
  token: ""
  # GitHub Enterprise API, e.g. https://github.example.com/api/v3/
  base_url: ""

# Non-interactive output
output:
  # text, json, yaml or markdown
  format: text
  # Go template for the markdown format (fields: .Source .Tasks .IDs)
  # template: ""

# Debug logging to <dir>/prtasks.log
logging:
  enabled: false
  # debug, info, warn or error
  level: info
  # dir defaults to the config directory
`

func newConfigCmd(c *cli) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View prtasks configuration",
		Long: `View prtasks configuration.

Without arguments, displays the current configuration.
Use 'config init' to create a commented config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a default config file",
			Long:  `Create a default config file at ~/.config/prtasks/config.yaml with all available options.`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigInit(cmd)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigPath(cmd)
			},
		},
	)
	return configCmd
}

func runConfigShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if used := activeConfigFile(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintf(out, "# Config file: (none - using defaults)\n")
	}

	settings := viper.AllSettings()
	if gh, ok := settings["github"].(map[string]any); ok {
		if tok, _ := gh["token"].(string); tok != "" {
			gh["token"] = "(set)"
		}
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

func runConfigInit(cmd *cobra.Command) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize prtasks.")
	return nil
}

func runConfigPath(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if used := activeConfigFile(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. --config flag\n")
	fmt.Fprintf(out, "  2. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "\nEnvironment variables: PRTASKS_* (e.g., PRTASKS_WATCH_DEBOUNCE_MS)")
	return nil
}

// activeConfigFile returns the config file viper loaded, or "" when none exists.
func activeConfigFile() string {
	used := viper.ConfigFileUsed()
	if used == "" {
		return ""
	}
	if _, err := os.Stat(used); err != nil {
		return ""
	}
	return used
}
