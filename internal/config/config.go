package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gardar/formpdf/pkg/assets"
	"github.com/gardar/formpdf/pkg/layout"
	"github.com/gardar/formpdf/pkg/overlay"
	"github.com/gardar/formpdf/pkg/units"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. FORMPDF_LOG_LEVEL.
	EnvPrefix = "FORMPDF"

	DefaultLogLevel = "info"
	DefaultPaper    = "A4"
)

// Config holds the options shared by the formpdf subcommands.
type Config struct {
	ConfigFile string

	LogLevel string

	// Output
	Output      string
	Overwrite   bool
	Interactive bool
	Paper       string

	// Overlay sources, at most one of dir and URL
	TemplatesDir  string
	TemplatesURL  string
	TemplatesPath string

	Force bool // Stamp again over an existing stamp layer
	Debug bool // Outline calibrated positions
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		Paper:         DefaultPaper,
		TemplatesPath: assets.DefaultTemplatePath,
	}
}

// Load defines the shared flags on fs, parses args and merges, in
// increasing priority, defaults, the optional config file, FORMPDF_*
// environment variables and explicit flags.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)
	defineFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	populateFromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("paper", cfg.Paper)
	v.SetDefault("templates-path", cfg.TemplatesPath)
}

func defineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("config", "", "YAML config file")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringP("output", "o", "", "Output PDF path")
	fs.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	fs.Bool("interactive", false, "Embed editable form fields instead of flat text")
	fs.String("paper", cfg.Paper, "Page size (A4, Letter, Legal)")
	fs.String("templates-dir", "", "Directory holding the official PDFs")
	fs.String("templates-url", "", "Base URL serving the official PDFs")
	fs.String("templates-path", cfg.TemplatesPath, "URL path of the official PDFs")
	fs.Bool("force", false, "Stamp again even if the PDF already carries stamped values")
	fs.Bool("debug", false, "Outline calibrated positions and draw stamped values in red")
}

func populateFromViper(v *viper.Viper, cfg *Config) {
	cfg.ConfigFile = v.GetString("config")
	cfg.LogLevel = strings.ToLower(v.GetString("log-level"))
	cfg.Output = v.GetString("output")
	cfg.Overwrite = v.GetBool("overwrite")
	cfg.Interactive = v.GetBool("interactive")
	cfg.Paper = v.GetString("paper")
	cfg.TemplatesDir = v.GetString("templates-dir")
	cfg.TemplatesURL = v.GetString("templates-url")
	cfg.TemplatesPath = v.GetString("templates-path")
	cfg.Force = v.GetBool("force")
	cfg.Debug = v.GetBool("debug")
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, ok := levels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	if _, err := units.Lookup(c.Paper); err != nil {
		return err
	}
	if c.TemplatesDir != "" && c.TemplatesURL != "" {
		return errors.New("templates-dir and templates-url are mutually exclusive")
	}
	if c.TemplatesDir != "" {
		info, err := os.Stat(c.TemplatesDir)
		if err != nil {
			return fmt.Errorf("cannot access templates directory %s: %w", c.TemplatesDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("templates directory %s is not a directory", c.TemplatesDir)
		}
	}
	if c.TemplatesURL != "" {
		u, err := url.Parse(c.TemplatesURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("templates-url must be an absolute http(s) URL, got %q", c.TemplatesURL)
		}
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	return levels[c.LogLevel]
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()}))
}

// Source returns the configured asset source, or nil if none is set.
func (c *Config) Source() assets.Source {
	var src assets.Source
	switch {
	case c.TemplatesDir != "":
		src = assets.DirSource{FS: os.DirFS(c.TemplatesDir)}
	case c.TemplatesURL != "":
		src = assets.HTTPSource{BaseURL: c.TemplatesURL, Path: c.TemplatesPath}
	default:
		return nil
	}
	return assets.NewCachedSource(src)
}

// Layout returns the flow layout settings.
func (c *Config) Layout(log *slog.Logger) layout.Config {
	cfg := layout.DefaultConfig()
	cfg.Paper = c.Paper
	cfg.Logger = log
	return cfg
}

// Mode returns the flow layout mode.
func (c *Config) Mode() layout.Mode {
	if c.Interactive {
		return layout.ModeInteractive
	}
	return layout.ModeFlat
}

// Overlay returns the stamping settings.
func (c *Config) Overlay(log *slog.Logger) overlay.Config {
	cfg := overlay.DefaultConfig()
	cfg.Force = c.Force
	cfg.Debug = c.Debug
	cfg.Logger = log
	return cfg
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{LogLevel: %s, Paper: %s, Interactive: %t, TemplatesDir: %s, TemplatesURL: %s}",
		c.LogLevel, c.Paper, c.Interactive, c.TemplatesDir, c.TemplatesURL)
}
