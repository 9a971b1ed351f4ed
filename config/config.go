package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Message error policies
const (
	// Abort the rest of the account run on the first message that cannot be converted
	OnErrorAbort = "abort"
	// Skip messages which cannot be decoded, send malformed ones with an empty body
	OnErrorSkip = "skip"
)

// DefaultWindowDays is how far to go in past when searching for messages
const DefaultWindowDays = 7

// Config describes the available configuration layout
type Config struct {
	TaskInbox            string `yaml:"task_inbox"`
	WindowDays           int    `yaml:"window_days"`
	OnMessageError       string `yaml:"on_message_error"`
	SkipUndecodableParts bool   `yaml:"skip_undecodable_parts"`
	Journal              string
	LogLevel             string `yaml:"log_level"`

	SMTP     SMTP
	Accounts []Account
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file '%s': %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration, applies defaults and validates it
func Parse(data []byte) (*Config, error) {
	cfg := Config{}
	err := yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.WindowDays == 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.OnMessageError == "" {
		cfg.OnMessageError = OnErrorAbort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Journal != "" {
		cfg.Journal = ExpandPath(cfg.Journal)
	}

	// Set default ports
	if cfg.SMTP.Port == 0 {
		switch {
		case cfg.SMTP.UseTLS:
			cfg.SMTP.Port = 465
		case cfg.SMTP.UseStartTLS:
			cfg.SMTP.Port = 587
		default:
			cfg.SMTP.Port = 25
		}
	}
	for k := range cfg.Accounts {
		if cfg.Accounts[k].Port == 0 {
			cfg.Accounts[k].Port = 143
			if cfg.Accounts[k].UseTLS {
				cfg.Accounts[k].Port = 993
			}
		}
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	var errs []error
	if cfg.TaskInbox == "" {
		errs = append(errs, errors.New("task_inbox not configured"))
	}
	if cfg.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("window_days must be positive, got %d", cfg.WindowDays))
	}
	if cfg.OnMessageError != OnErrorAbort && cfg.OnMessageError != OnErrorSkip {
		errs = append(errs, fmt.Errorf("on_message_error must be %q or %q, got %q", OnErrorAbort, OnErrorSkip, cfg.OnMessageError))
	}
	if cfg.SMTP.Server == "" {
		errs = append(errs, errors.New("smtp server address not configured"))
	}
	if cfg.SMTP.Sender() == "" {
		errs = append(errs, errors.New("smtp username or from address not configured"))
	}
	if len(cfg.Accounts) == 0 {
		errs = append(errs, errors.New("no accounts configured"))
	}

	names := make(map[string]bool, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		name := a.String()
		if names[name] {
			errs = append(errs, fmt.Errorf("duplicate account %q", name))
		}
		names[name] = true
	}
	return errors.Join(errs...)
}

// Since returns the date before which messages are not considered
func (cfg *Config) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -cfg.WindowDays)
}

// ExpandPath expands a leading ~ or environment variables in a path setting
// and returns it as a clean absolute path
func ExpandPath(inPath string) string {
	if inPath == "~" || strings.HasPrefix(inPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			inPath = home + inPath[1:]
		}
	}
	inPath = os.ExpandEnv(inPath)

	if filepath.IsAbs(inPath) {
		return filepath.Clean(inPath)
	}

	p, err := filepath.Abs(inPath)
	if err == nil {
		return filepath.Clean(p)
	}
	return inPath
}
