package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
}

// Scan contains directory traversal settings.
type Scan struct {
	Extensions     []string `toml:"extensions"`
	FollowSymlinks bool     `toml:"follow_symlinks"`
	SkipHidden     bool     `toml:"skip_hidden"`
}

// Lyrics contains configuration for the remote lyrics provider and matching.
type Lyrics struct {
	BaseURL                  string  `toml:"base_url"`
	UserAgent                string  `toml:"user_agent"`
	RequestTimeoutSeconds    int     `toml:"request_timeout_seconds"`
	DurationToleranceSeconds float64 `toml:"duration_tolerance_seconds"`
	MinSimilarity            float64 `toml:"min_similarity"`
	MinIntervalMs            int     `toml:"min_interval_ms"`
	FallbackSearch           bool    `toml:"fallback_search"`
}

// Retry describes the bounded retry policy applied to provider calls.
type Retry struct {
	MaxAttempts      int     `toml:"max_attempts"`
	InitialBackoffMs int     `toml:"initial_backoff_ms"`
	MaxBackoffMs     int     `toml:"max_backoff_ms"`
	Multiplier       float64 `toml:"multiplier"`
}

// Sidecar contains configuration for lyrics file output.
type Sidecar struct {
	// Mode is either "overwrite" (always write fresh lyrics) or
	// "skip-existing" (leave non-empty sidecars untouched).
	Mode string `toml:"mode"`
}

// Pipeline contains orchestration settings.
type Pipeline struct {
	Workers int `toml:"workers"`
}

// Media contains external media tool settings.
type Media struct {
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lrcsync.
//
// Configuration sections by subsystem:
//   - Paths: log directory
//   - Scan: extension allow-list and symlink policy
//   - Lyrics: provider endpoint, request timeout, and matching thresholds
//   - Retry: bounded retry policy for provider calls
//   - Sidecar: overwrite or skip-existing output mode
//   - Pipeline: lookup worker count
//   - Media: ffprobe binary used for durations
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Scan     Scan     `toml:"scan"`
	Lyrics   Lyrics   `toml:"lyrics"`
	Retry    Retry    `toml:"retry"`
	Sidecar  Sidecar  `toml:"sidecar"`
	Pipeline Pipeline `toml:"pipeline"`
	Media    Media    `toml:"media"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	xdg.Reload()
	return expandPath(filepath.Join(xdg.ConfigHome, defaultApplicationDirName, defaultConfigFileName))
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	} else if path != "" {
		return nil, "", false, fmt.Errorf("config file %q not found", resolvedPath)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigFileName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory when one is configured.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// LogFilePath returns the log file path, or "" when file logging is disabled.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, defaultLogFileName)
}

// LockDir returns the directory holding per-root run locks.
func (c *Config) LockDir() string {
	xdg.Reload()
	if runtimeDir := strings.TrimSpace(xdg.RuntimeDir); runtimeDir != "" {
		if info, err := os.Stat(runtimeDir); err == nil && info.IsDir() {
			return filepath.Join(runtimeDir, defaultApplicationDirName, defaultLockDirName)
		}
	}
	return filepath.Join(os.TempDir(), defaultApplicationDirName, defaultLockDirName)
}

// RequestTimeout returns the per-request provider timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Lyrics.RequestTimeoutSeconds) * time.Second
}

// DurationTolerance returns the matching tolerance window.
func (c *Config) DurationTolerance() time.Duration {
	return time.Duration(c.Lyrics.DurationToleranceSeconds * float64(time.Second))
}

// MinInterval returns the minimum spacing between provider calls.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Lyrics.MinIntervalMs) * time.Millisecond
}

// InitialBackoff returns the delay before the first retry.
func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.Retry.InitialBackoffMs) * time.Millisecond
}

// MaxBackoff returns the cap applied to exponential backoff delays.
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.Retry.MaxBackoffMs) * time.Millisecond
}

// SkipExisting reports whether the sidecar writer runs in idempotent mode.
func (c *Config) SkipExisting() bool {
	return c.Sidecar.Mode == SidecarModeSkipExisting
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultLogDir() string {
	xdg.Reload()
	return filepath.Join(xdg.StateHome, defaultApplicationDirName, "logs")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), defaultSampleConfigPermission); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
