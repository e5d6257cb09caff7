package doc2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// Converter converts the document at inputPath into a PDF at outputPath.
// A non-nil error is a *ConversionError.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}

// Compile-time interface check.
var _ Converter = (*Service)(nil)

// documentConverter renders one document to PDF bytes.
type documentConverter interface {
	ToPDF(ctx context.Context, inputPath string) ([]byte, error)
}

// Extensions routed to the browser backend in auto mode.
var (
	htmlExtensions     = map[string]bool{".html": true, ".htm": true, ".xhtml": true}
	markdownExtensions = map[string]bool{".md": true, ".markdown": true}
)

// Service validates paths, delegates rendering to a backend and writes the result.
type Service struct {
	cfg      serviceConfig
	office   documentConverter
	html     documentConverter
	markdown documentConverter
	renderer pdfRenderer
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithBackend, WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			backend: BackendAuto,
			logger:  slog.New(slog.DiscardHandler),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.renderer == nil {
		s.renderer = newRodRenderer(s.cfg.browserBinary, s.cfg.noSandbox, s.cfg.logger)
	}
	if s.office == nil {
		s.office = newOfficeConverter(s.cfg.officeBinary, s.cfg.logger)
	}
	if s.html == nil {
		s.html = &htmlFileConverter{renderer: s.renderer, page: s.cfg.page}
	}
	if s.markdown == nil {
		s.markdown = &markdownConverter{
			html:     newGoldmarkConverter(),
			renderer: s.renderer,
			page:     s.cfg.page,
		}
	}

	return s
}

// Convert converts inputPath to a PDF written at outputPath.
// On failure nothing is written at outputPath; an existing file there is
// replaced only on success.
func (s *Service) Convert(ctx context.Context, inputPath, outputPath string) error {
	if err := validateInputFile(inputPath); err != nil {
		return &ConversionError{Op: OpReadInput, Path: inputPath, Err: err}
	}
	if err := validateOutputPath(outputPath); err != nil {
		return &ConversionError{Op: OpWriteOutput, Path: outputPath, Err: err}
	}

	backend, err := s.selectBackend(inputPath)
	if err != nil {
		return &ConversionError{Op: OpConvert, Path: inputPath, Err: err}
	}

	if s.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.timeout)
		defer cancel()
	}

	s.cfg.logger.Info("converting", "input", inputPath, "output", outputPath, "backend", s.cfg.backend)
	pdf, err := backend.ToPDF(ctx, inputPath)
	if err != nil {
		return newConversionError(OpConvert, inputPath, err)
	}
	if len(pdf) == 0 {
		return &ConversionError{Op: OpConvert, Path: inputPath, Err: ErrEmptyPDF}
	}

	if err := fileutil.WriteFileAtomic(outputPath, pdf); err != nil {
		return &ConversionError{Op: OpWriteOutput, Path: outputPath, Err: fmt.Errorf("%w: %v", ErrWriteOutput, err)}
	}

	s.cfg.logger.Info("converted", "output", outputPath, "bytes", len(pdf))
	return nil
}

// Close releases the browser if one was launched.
func (s *Service) Close() error {
	if s.renderer != nil {
		return s.renderer.Close()
	}
	return nil
}

// selectBackend picks the converter for inputPath.
func (s *Service) selectBackend(inputPath string) (documentConverter, error) {
	ext := strings.ToLower(filepath.Ext(inputPath))

	switch s.cfg.backend {
	case BackendOffice:
		return s.office, nil
	case BackendBrowser:
		if markdownExtensions[ext] {
			return s.markdown, nil
		}
		return s.html, nil
	case BackendAuto, "":
		switch {
		case markdownExtensions[ext]:
			return s.markdown, nil
		case htmlExtensions[ext]:
			return s.html, nil
		default:
			return s.office, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, s.cfg.backend)
	}
}

// validateInputFile checks the input is an existing, non-empty regular file.
func validateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrInputNotFound
		}
		return err
	}
	if info.IsDir() {
		return ErrInputIsDir
	}
	if info.Size() == 0 {
		return ErrEmptyInput
	}
	return nil
}

// validateOutputPath checks the output's parent is an existing directory.
// The directory is never created.
func validateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrOutputDir)
	}
	if err := fileutil.RequireDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrOutputDir, path)
	}
	return nil
}

// htmlFileConverter renders an HTML file as-is in the browser.
type htmlFileConverter struct {
	renderer pdfRenderer
	page     *PageSettings
}

func (c *htmlFileConverter) ToPDF(ctx context.Context, inputPath string) ([]byte, error) {
	if err := c.page.Validate(); err != nil {
		return nil, err
	}
	return c.renderer.RenderFromFile(ctx, inputPath, c.page)
}

// markdownConverter renders Markdown to HTML, then HTML to PDF in the browser.
type markdownConverter struct {
	html     htmlConverter
	renderer pdfRenderer
	page     *PageSettings
}

func (c *markdownConverter) ToPDF(ctx context.Context, inputPath string) ([]byte, error) {
	if err := c.page.Validate(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(inputPath) // #nosec G304 -- input path is user-provided
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}

	baseURL, err := fileURL(filepath.Dir(inputPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	htmlContent, err := c.html.ToHTML(ctx, content, strings.TrimSuffix(baseURL, "/")+"/", fileutil.TrimExt(inputPath))
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, c.page)
}
