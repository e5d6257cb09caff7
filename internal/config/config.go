// Package config loads the optional YAML configuration for doc2pdf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrEmptyPath      = errors.New("config path cannot be empty")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxBackendLength     = 10 // "browser"
	MaxDurationLength    = 32
	MaxPageSizeLength    = 10 // "letter", "a4", "legal"
	MaxOrientationLength = 10 // "portrait", "landscape"
)

// Margin bounds in inches, mirrored from the library's PageSettings.
const (
	minMargin = 0.25
	maxMargin = 3.0
)

// appDirName is the directory under os.UserConfigDir holding the default config.
const appDirName = "go-doc2pdf"

// Config holds all configuration for a conversion.
type Config struct {
	Backend string        `yaml:"backend"` // "auto", "office", "browser" (default: "auto")
	Timeout string        `yaml:"timeout"` // Go duration; empty = no timeout
	Office  OfficeConfig  `yaml:"office"`
	Browser BrowserConfig `yaml:"browser"`
	Page    PageConfig    `yaml:"page"`
}

// OfficeConfig defines the LibreOffice backend.
type OfficeConfig struct {
	Binary string `yaml:"binary"` // Empty = search PATH for soffice/libreoffice
}

// BrowserConfig defines the headless Chrome backend.
type BrowserConfig struct {
	Binary    string `yaml:"binary"` // Empty = ROD_BROWSER_BIN or rod-managed Chromium
	NoSandbox bool   `yaml:"noSandbox"`
}

// PageConfig defines page settings for browser-rendered PDFs.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "letter")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
}

// DefaultConfig returns a configuration that reproduces the built-in defaults.
func DefaultConfig() *Config {
	return &Config{Backend: "auto"}
}

// TimeoutDuration parses Timeout. Zero means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks field lengths and enumerated values.
// Called automatically by Load, but available for callers that build a Config.
func (c *Config) Validate() error {
	if err := validateFieldLength("backend", c.Backend, MaxBackendLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Backend) {
	case "", "auto", "office", "browser":
	default:
		return fmt.Errorf("%w: backend %q (must be auto, office, or browser)", ErrInvalidValue, c.Backend)
	}

	if err := validateFieldLength("timeout", c.Timeout, MaxDurationLength); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if err := validateFieldLength("office.binary", c.Office.Binary, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.binary", c.Browser.Binary, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Page.Size) {
	case "", "letter", "a4", "legal":
	default:
		return fmt.Errorf("%w: page.size %q (must be letter, a4, or legal)", ErrInvalidValue, c.Page.Size)
	}

	if err := validateFieldLength("page.orientation", c.Page.Orientation, MaxOrientationLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Page.Orientation) {
	case "", "portrait", "landscape":
	default:
		return fmt.Errorf("%w: page.orientation %q (must be portrait or landscape)", ErrInvalidValue, c.Page.Orientation)
	}

	if c.Page.Margin != 0 && (c.Page.Margin < minMargin || c.Page.Margin > maxMargin) {
		return fmt.Errorf("%w: page.margin %.2f (must be between %.2f and %.2f)", ErrInvalidValue, c.Page.Margin, minMargin, maxMargin)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Load reads the config file at path. A missing file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads the per-user config if one exists.
// Returns DefaultConfig and an empty path when none is found.
func LoadDefault() (*Config, string, error) {
	for _, path := range DefaultPaths() {
		if !fileExists(path) {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return DefaultConfig(), "", nil
}

// DefaultPaths lists the per-user config locations in search order.
func DefaultPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(dir, appDirName, "config.yaml"),
		filepath.Join(dir, appDirName, "config.yml"),
	}
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
