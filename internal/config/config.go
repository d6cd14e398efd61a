package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/protonfetch/protonfetch/internal/fork"
)

// Config holds the settings shared by all protonfetch commands.
type Config struct {
	// DefaultFork is the fork used when --fork is not given.
	DefaultFork string `yaml:"default_fork"`
	// ExtractDir is where builds are unpacked and links are maintained.
	// This is normally Steam's compatibilitytools.d directory.
	ExtractDir string `yaml:"extract_dir"`
	// DownloadDir is where release archives are stored before extraction.
	DownloadDir string `yaml:"download_dir"`
	// Timeout bounds every network call.
	Timeout time.Duration `yaml:"timeout"`
	// GitHubToken optionally authenticates API requests to raise rate
	// limits. The GITHUB_TOKEN environment variable takes precedence.
	GitHubToken string `yaml:"github_token,omitempty"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	// DefaultConfigFilename is the settings file name under the user
	// config directory.
	DefaultConfigFilename = "protonfetch-settings.yaml"

	// DefaultTimeout bounds network calls when the settings file does not
	// override it.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is used when persisting the settings file.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// DefaultPath returns the settings file location under the user config
// directory, falling back to the working directory when it is unknown.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFilename
	}

	return filepath.Join(base, "protonfetch", DefaultConfigFilename)
}

// Default returns a configuration populated with defaults for this user.
func Default() *Config {
	cfg := &Config{
		DefaultFork: string(fork.GEProton),
		Timeout:     DefaultTimeout,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg.ExtractDir = filepath.Join(home, ".steam", "root", "compatibilitytools.d")
	cfg.DownloadDir = filepath.Join(home, ".cache", "protonfetch")

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file is not an error; defaults are returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrInit loads configuration and seeds the settings file with defaults
// when it does not exist yet.
func LoadOrInit(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	return Load(path)
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// Restrict permissions: the file may carry an API token.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults for optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if _, err := fork.ByID(cfg.DefaultFork); err != nil {
		return fmt.Errorf("default fork: %w", err)
	}

	if cfg.ExtractDir == "" {
		return errors.New("extract directory must be provided")
	}

	if cfg.DownloadDir == "" {
		return errors.New("download directory must be provided")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
