package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Source kinds for the general inbox.
const (
	SourceKindBackend = "backend"
	SourceKindIMAP    = "imap"
)

// BackendConfig holds the two endpoints of the categorization backend.
type BackendConfig struct {
	// EmailsURL receives a POST with an empty JSON object.
	EmailsURL string `mapstructure:"emails_url" yaml:"emails_url"`

	// AnalysisURL receives a GET and answers with the categorized inbox.
	AnalysisURL string `mapstructure:"analysis_url" yaml:"analysis_url"`

	// TimeoutSec bounds a single request. Analysis runs an LLM pass on the
	// server side, so the default is generous.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// IMAPConfig holds the settings of the direct IMAP inbox source.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// SourceConfig selects where the general inbox is loaded from.
type SourceConfig struct {
	// Kind is "backend" (default) or "imap".
	Kind  string     `mapstructure:"kind" yaml:"kind"`
	Limit int        `mapstructure:"limit" yaml:"limit"`
	IMAP  IMAPConfig `mapstructure:"imap" yaml:"imap"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Locale        string `mapstructure:"locale" yaml:"locale"`
	MarkdownStyle string `mapstructure:"markdown_style" yaml:"markdown_style"`
}

// LogConfig controls the file logger. The TUI owns stdout, so logs never
// go to the terminal.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Source  SourceConfig  `mapstructure:"source" yaml:"source"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/mailai, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailai")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailai/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			EmailsURL:   "http://localhost:8000/emails",
			AnalysisURL: "http://localhost:8000/analyse",
			TimeoutSec:  120,
		},
		Source: SourceConfig{
			Kind:  SourceKindBackend,
			Limit: 20,
			IMAP: IMAPConfig{
				Port: "993",
				TLS:  true,
			},
		},
		Display: DisplayConfig{
			Locale:        "es",
			MarkdownStyle: "dark",
		},
		Log: LogConfig{
			Path:  filepath.Join(ConfigDir(), "mailai.log"),
			Level: "info",
		},
	}
}

// setDefaults mirrors DefaultAppConfig into v so missing keys resolve.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("backend.emails_url", d.Backend.EmailsURL)
	v.SetDefault("backend.analysis_url", d.Backend.AnalysisURL)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)
	v.SetDefault("source.kind", d.Source.Kind)
	v.SetDefault("source.limit", d.Source.Limit)
	v.SetDefault("source.imap.host", "")
	v.SetDefault("source.imap.port", d.Source.IMAP.Port)
	v.SetDefault("source.imap.username", "")
	v.SetDefault("source.imap.tls", d.Source.IMAP.TLS)
	v.SetDefault("display.locale", d.Display.Locale)
	v.SetDefault("display.markdown_style", d.Display.MarkdownStyle)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with MAILAI_ override file values
// (MAILAI_BACKEND_EMAILS_URL, ...). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("mailai")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the fields the application cannot run without.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Backend.AnalysisURL) == "" {
		return fmt.Errorf("backend.analysis_url is required")
	}

	switch c.Source.Kind {
	case SourceKindBackend:
		if strings.TrimSpace(c.Backend.EmailsURL) == "" {
			return fmt.Errorf("backend.emails_url is required")
		}
	case SourceKindIMAP:
		if c.Source.IMAP.Host == "" || c.Source.IMAP.Username == "" {
			return fmt.Errorf("source.imap.host and source.imap.username are required")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}

	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = DefaultAppConfig().Backend.TimeoutSec
	}
	if c.Source.Limit <= 0 {
		c.Source.Limit = DefaultAppConfig().Source.Limit
	}

	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
