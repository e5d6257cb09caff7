package doc2pdf

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backend names the engine a conversion is delegated to.
type Backend string

// Supported backends.
const (
	BackendAuto    Backend = "auto"    // pick by input extension
	BackendOffice  Backend = "office"  // LibreOffice headless
	BackendBrowser Backend = "browser" // headless Chrome
)

// ParseBackend converts a backend name to a Backend (case-insensitive).
// An empty name selects BackendAuto.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendOffice, BackendBrowser:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q (must be auto, office, or browser)", ErrUnsupportedBackend, name)
	}
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures the page layout of browser-rendered PDFs.
// Office documents carry their own layout and ignore it.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	backend       Backend
	timeout       time.Duration // zero means no timeout
	officeBinary  string
	browserBinary string
	noSandbox     bool
	page          *PageSettings
	logger        *slog.Logger
}

// WithBackend forces a backend instead of choosing by extension.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		s.cfg.backend = b
	}
}

// WithTimeout bounds each conversion.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("doc2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithOfficeBinary sets the LibreOffice executable (name or path).
func WithOfficeBinary(path string) Option {
	return func(s *Service) {
		s.cfg.officeBinary = path
	}
}

// WithBrowserBinary sets the Chrome/Chromium executable.
// When empty, ROD_BROWSER_BIN or rod's managed browser is used.
func WithBrowserBinary(path string, noSandbox bool) Option {
	return func(s *Service) {
		s.cfg.browserBinary = path
		s.cfg.noSandbox = noSandbox
	}
}

// WithPage sets the page layout for browser-rendered PDFs.
func WithPage(p *PageSettings) Option {
	return func(s *Service) {
		s.cfg.page = p
	}
}

// WithLogger sets the logger for diagnostic output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.cfg.logger = l
		}
	}
}
