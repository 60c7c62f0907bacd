// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath      = "config/config.yaml"
	DefaultTokenFile = ".token"
)

// FsFactory returns the filesystem config and token files are read from.
var FsFactory = func() afero.Fs { return afero.NewOsFs() }

type Config struct {
	Prefix            string         `yaml:"prefix" env:"BOT_PREFIX"`
	Owners            []string       `yaml:"owners" env:"BOT_OWNERS" envSeparator:","`
	RespondToMentions bool           `yaml:"respond_to_mentions" env:"BOT_RESPOND_TO_MENTIONS"`
	Commands          CommandsConfig `yaml:"commands" envPrefix:"COMMANDS_"`
	Logging           LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Workers           int            `yaml:"workers" env:"BOT_WORKERS"`
	StoragePath       string         `yaml:"storage_path" env:"STORAGE_PATH"`
	MetricsAddr       string         `yaml:"metrics_addr" env:"METRICS_ADDR"`

	// Source is the file the config was read from, empty when only
	// defaults and environment were used.
	Source string `yaml:"-"`
}

type CommandsConfig struct {
	Disabled        []string      `yaml:"disabled" env:"DISABLED" envSeparator:","`
	Cooldown        int           `yaml:"cooldown" env:"COOLDOWN"` // seconds, 0 disables
	CaseInsensitive bool          `yaml:"case_insensitive" env:"CASE_INSENSITIVE"`
	Timeout         time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	FileLogging bool   `yaml:"file_logging" env:"FILE"`
	FilePath    string `yaml:"file_path" env:"FILE_PATH"`
	MaxSizeMB   int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups  int    `yaml:"max_backups" env:"MAX_BACKUPS"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Prefix:            "!",
		RespondToMentions: true,
		Commands: CommandsConfig{
			Cooldown:        3,
			CaseInsensitive: true,
			Timeout:         30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			FilePath:   "logs/bot.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Workers:     64,
		StoragePath: "datastore.json",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (a
// missing file is not an error), then environment overrides. path falls
// back to KURUMI_CONFIG and then DefaultPath.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("KURUMI_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	raw, err := afero.ReadFile(FsFactory(), path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.Source = path
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Owners = trimAll(c.Owners, false)
	c.Commands.Disabled = trimAll(c.Commands.Disabled, true)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.Prefix) == "" {
		result = multierror.Append(result, errors.New("prefix must not be empty"))
	}
	if c.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Commands.Cooldown < 0 {
		result = multierror.Append(result, fmt.Errorf("commands.cooldown must not be negative, got %d", c.Commands.Cooldown))
	}
	if c.Commands.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("commands.timeout must be positive, got %s", c.Commands.Timeout))
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("logging.level: %w", err))
	}
	if c.Logging.FileLogging && c.Logging.FilePath == "" {
		result = multierror.Append(result, errors.New("logging.file_path is required when file_logging is on"))
	}
	if c.StoragePath == "" {
		result = multierror.Append(result, errors.New("storage_path must not be empty"))
	}

	return result.ErrorOrNil()
}

// SetLogLevel overrides logging.level, rejecting a level zerolog does not know.
func (c *Config) SetLogLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	c.Logging.Level = level
	return nil
}

// IsOwner reports whether userID is a configured owner.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// IsDisabled reports whether the command name is disabled.
func (c *Config) IsDisabled(name string) bool {
	name = strings.ToLower(name)
	for _, d := range c.Commands.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// CooldownInterval is the configured cooldown as a duration.
func (c *Config) CooldownInterval() time.Duration {
	return time.Duration(c.Commands.Cooldown) * time.Second
}

// LoadToken returns DISCORD_TOKEN, falling back to the trimmed contents of
// the .token file.
func LoadToken() (string, error) {
	if tok := strings.TrimSpace(os.Getenv("DISCORD_TOKEN")); tok != "" {
		return tok, nil
	}

	raw, err := afero.ReadFile(FsFactory(), DefaultTokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.New("DISCORD_TOKEN is not set and no .token file was found")
		}
		return "", fmt.Errorf("failed to read %s: %w", DefaultTokenFile, err)
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", fmt.Errorf("%s is empty", DefaultTokenFile)
	}
	return tok, nil
}

func trimAll(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
