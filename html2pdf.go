package doc2pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// Paper dimensions in inches, portrait.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// rodRenderer implements pdfRenderer using go-rod.
// Chromium is downloaded on first run only when no browser is configured or installed.
type rodRenderer struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	bin       string
	noSandbox bool
	logger    *slog.Logger

	getenv   func(string) string
	lookPath func() (string, bool)
	download func() (string, error)
}

func newRodRenderer(bin string, noSandbox bool, logger *slog.Logger) *rodRenderer {
	r := &rodRenderer{
		bin:       bin,
		noSandbox: noSandbox,
		logger:    logger,
		getenv:    os.Getenv,
		lookPath:  launcher.LookPath,
	}
	r.download = func() (string, error) {
		b := launcher.NewBrowser()
		// rod's default downloader logger prints progress on stdout.
		b.Logger = slogPrinter{logger: r.logger}
		return b.Get()
	}
	return r
}

// slogPrinter adapts rod's Println logger to slog at debug level.
type slogPrinter struct {
	logger *slog.Logger
}

func (p slogPrinter) Println(v ...any) {
	p.logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)), "component", "browser-download")
}

// resolveBin picks the browser executable: configured binary, ROD_BROWSER_BIN,
// a Chrome or Chromium found on the system, then a downloaded Chromium.
func (r *rodRenderer) resolveBin() (string, error) {
	if r.bin != "" {
		return r.bin, nil
	}
	if bin := r.getenv("ROD_BROWSER_BIN"); bin != "" {
		return bin, nil
	}
	if bin, ok := r.lookPath(); ok {
		return bin, nil
	}

	r.logger.Info("no browser found, downloading Chromium")
	bin, err := r.download()
	if err != nil {
		return "", fmt.Errorf("%w: downloading browser: %v", ErrBrowserConnect, err)
	}
	return bin, nil
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	bin, err := r.resolveBin()
	if err != nil {
		return err
	}
	l := launcher.New().Bin(bin)

	// Sandboxing fails inside most containers and CI runners.
	if r.noSandbox || r.getenv("ROD_NO_SANDBOX") == "1" || r.getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	r.logger.Debug("launching browser", "bin", bin)
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		l.Kill()
		r.launcher = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	target, err := fileURL(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	p, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = p.Close() }()

	if err := p.WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := p.PDF(buildPDFOptions(page))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF from page settings.
// A nil page uses DefaultPageSettings.
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	if page == nil {
		page = DefaultPageSettings()
	}

	dims, ok := paperSizes[strings.ToLower(page.Size)]
	if !ok {
		dims = paperSizes[PageSizeLetter]
	}
	width, height := dims[0], dims[1]
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		width, height = height, width
	}

	margin := page.Margin
	if margin == 0 {
		margin = DefaultMargin
	}

	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(margin),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}
}

// fileURL returns the file:// URL for a local path.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path // Windows drive letters
	}
	return u.String(), nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
