package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete prtasks configuration
type Config struct {
	Page    PageConfig    `mapstructure:"page"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Watch   WatchConfig   `mapstructure:"watch"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PageConfig controls how pull request pages are located and fetched
type PageConfig struct {
	// Hosts are glob patterns of hosts whose pull request pages qualify
	// (default: ["github.com"])
	Hosts []string `mapstructure:"hosts"`
	// UserAgent is sent with every page fetch
	UserAgent string `mapstructure:"user_agent"`
	// TimeoutSeconds bounds a single page fetch (default: 30)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// RequestsPerSecond limits page fetches (default: 1)
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// CopyFeedbackMs is how long the copy confirmation stays visible (default: 2000)
	CopyFeedbackMs int `mapstructure:"copy_feedback_ms"`
	// RetryDelayMs is the wait between attaching the extractor and resending
	// a request (default: 500)
	RetryDelayMs int `mapstructure:"retry_delay_ms"`
}

// WatchConfig controls the page watcher
type WatchConfig struct {
	// DebounceMs is the quiet period after a page change before extraction
	// re-runs (default: 1500)
	DebounceMs int `mapstructure:"debounce_ms"`
	// PollSeconds is how often remote pages are re-fetched (default: 30)
	PollSeconds int `mapstructure:"poll_seconds"`
}

// GitHubConfig controls the REST API commit source
type GitHubConfig struct {
	// Token authenticates API requests; empty means unauthenticated
	Token string `mapstructure:"token"`
	// BaseURL points at a GitHub Enterprise API; empty means api.github.com
	BaseURL string `mapstructure:"base_url"`
}

// OutputConfig controls non-interactive output
type OutputConfig struct {
	// Format is the default output format: "text", "json", "yaml" or "markdown" (default: "text")
	Format string `mapstructure:"format"`
	// Template overrides the markdown summary template
	Template string `mapstructure:"template"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where prtasks.log is written; empty means the config directory
	Dir string `mapstructure:"dir"`
}

// ResolveDir returns the log directory, defaulting to the config directory.
func (l *LoggingConfig) ResolveDir() string {
	if l.Dir == "" {
		return ConfigDir()
	}
	if l.Dir == "~" || len(l.Dir) > 1 && l.Dir[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, l.Dir[1:])
		}
	}
	return l.Dir
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Hosts:             []string{"github.com"},
			UserAgent:         "prtasks/1.0",
			TimeoutSeconds:    30,
			RequestsPerSecond: 1,
		},
		TUI: TUIConfig{
			CopyFeedbackMs: 2000,
			RetryDelayMs:   500,
		},
		Watch: WatchConfig{
			DebounceMs:  1500,
			PollSeconds: 30,
		},
		GitHub: GitHubConfig{},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
	}
}

// Timeout returns the page fetch timeout as a Duration
func (c *PageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CopyFeedback returns how long the copy confirmation is shown
func (c *TUIConfig) CopyFeedback() time.Duration {
	return time.Duration(c.CopyFeedbackMs) * time.Millisecond
}

// RetryDelay returns the wait before resending to a freshly attached extractor
func (c *TUIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// Debounce returns the watcher quiet period as a Duration
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// PollInterval returns the remote page poll interval as a Duration
func (c *WatchConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Page defaults
	viper.SetDefault("page.hosts", defaults.Page.Hosts)
	viper.SetDefault("page.user_agent", defaults.Page.UserAgent)
	viper.SetDefault("page.timeout_seconds", defaults.Page.TimeoutSeconds)
	viper.SetDefault("page.requests_per_second", defaults.Page.RequestsPerSecond)

	// TUI defaults
	viper.SetDefault("tui.copy_feedback_ms", defaults.TUI.CopyFeedbackMs)
	viper.SetDefault("tui.retry_delay_ms", defaults.TUI.RetryDelayMs)

	// Watch defaults
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	viper.SetDefault("watch.poll_seconds", defaults.Watch.PollSeconds)

	// GitHub defaults
	viper.SetDefault("github.token", defaults.GitHub.Token)
	viper.SetDefault("github.base_url", defaults.GitHub.BaseURL)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.template", defaults.Output.Template)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prtasks")
	}
	// Fall back to ~/.config/prtasks
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prtasks"
	}
	return filepath.Join(home, ".config", "prtasks")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
