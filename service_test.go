package doc2pdf

// Notes:
// - Service.Convert is tested with fake backends and a fake renderer; real
//   LibreOffice and Chrome runs live in service_integration_test.go.
// - selectBackend: we check which fake is called per extension and backend.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fakes
// ---------------------------------------------------------------------------

// fakeBackend implements documentConverter with canned output.
type fakeBackend struct {
	pdf    []byte
	err    error
	called []string
	wait   bool // block until the context is done
}

func (f *fakeBackend) ToPDF(ctx context.Context, inputPath string) ([]byte, error) {
	f.called = append(f.called, inputPath)
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.pdf, f.err
}

// fakeRenderer implements pdfRenderer without a browser.
type fakeRenderer struct {
	pdf        []byte
	err        error
	calledWith string
	calledPage *PageSettings
	html       string
	closed     bool
}

func (f *fakeRenderer) RenderFromFile(_ context.Context, filePath string, page *PageSettings) ([]byte, error) {
	f.calledWith = filePath
	f.calledPage = page
	if data, err := os.ReadFile(filePath); err == nil { // #nosec G304 -- test path
		f.html = string(data)
	}
	return f.pdf, f.err
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func withOffice(c documentConverter) Option   { return func(s *Service) { s.office = c } }
func withHTML(c documentConverter) Option     { return func(s *Service) { s.html = c } }
func withMarkdown(c documentConverter) Option { return func(s *Service) { s.markdown = c } }
func withRenderer(r pdfRenderer) Option       { return func(s *Service) { s.renderer = r } }

// writeInput creates a non-empty input file and returns its path.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

var fakePDF = []byte("%PDF-1.7 fake")

// ---------------------------------------------------------------------------
// TestService_Convert - Happy path and overwrite
// ---------------------------------------------------------------------------

func TestService_Convert_WritesOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "report.docx", "PK fake docx")
	out := filepath.Join(dir, "report.pdf")
	office := &fakeBackend{pdf: fakePDF}

	s := New(withOffice(office), withRenderer(&fakeRenderer{}))

	require.NoError(t, s.Convert(context.Background(), in, out))

	got, err := os.ReadFile(out) // #nosec G304 -- test path
	require.NoError(t, err)
	assert.Equal(t, fakePDF, got)
	assert.Equal(t, []string{in}, office.called)
}

func TestService_Convert_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "report.docx", "PK fake docx")
	out := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o600))

	s := New(withOffice(&fakeBackend{pdf: fakePDF}), withRenderer(&fakeRenderer{}))

	for range 2 {
		require.NoError(t, s.Convert(context.Background(), in, out))
	}

	got, err := os.ReadFile(out) // #nosec G304 -- test path
	require.NoError(t, err)
	assert.Equal(t, fakePDF, got)
}

// ---------------------------------------------------------------------------
// TestService_Convert_Failures - Typed failure results
// ---------------------------------------------------------------------------

func TestService_Convert_Failures(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("backend exploded")

	tests := []struct {
		name    string
		setup      func(t *testing.T, dir string) (in, out string)
		backend    *fakeBackend
		wantOp     string
		wantErr    error
		skipAsRoot bool // mode bits are not enforced for root or on Windows
	}{
		{
			name: "missing input",
			setup: func(_ *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "missing.docx"), filepath.Join(dir, "out.pdf")
			},
			backend: &fakeBackend{pdf: fakePDF},
			wantOp:  OpReadInput,
			wantErr: ErrInputNotFound,
		},
		{
			name: "input is directory",
			setup: func(t *testing.T, dir string) (string, string) {
				sub := filepath.Join(dir, "folder.docx")
				require.NoError(t, os.Mkdir(sub, 0o750))
				return sub, filepath.Join(dir, "out.pdf")
			},
			backend: &fakeBackend{pdf: fakePDF},
			wantOp:  OpReadInput,
			wantErr: ErrInputIsDir,
		},
		{
			name: "empty input",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeInput(t, dir, "empty.docx", ""), filepath.Join(dir, "out.pdf")
			},
			backend: &fakeBackend{pdf: fakePDF},
			wantOp:  OpReadInput,
			wantErr: ErrEmptyInput,
		},
		{
			name: "missing output directory",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeInput(t, dir, "a.docx", "x"), filepath.Join(dir, "nope", "out.pdf")
			},
			backend: &fakeBackend{pdf: fakePDF},
			wantOp:  OpWriteOutput,
			wantErr: ErrOutputDir,
		},
		{
			name: "output parent is a file",
			setup: func(t *testing.T, dir string) (string, string) {
				in := writeInput(t, dir, "a.docx", "x")
				return in, filepath.Join(in, "out.pdf")
			},
			backend: &fakeBackend{pdf: fakePDF},
			wantOp:  OpWriteOutput,
			wantErr: ErrOutputDir,
		},
		{
			name: "output is a directory",
			setup: func(t *testing.T, dir string) (string, string) {
				out := filepath.Join(dir, "out.pdf")
				require.NoError(t, os.Mkdir(out, 0o750))
				return writeInput(t, dir, "a.docx", "x"), out
			},
			backend: &fakeBackend{pdf: fakePDF},
			wantOp:  OpWriteOutput,
			wantErr: ErrOutputDir,
		},
		{
			name: "output directory not writable",
			setup: func(t *testing.T, dir string) (string, string) {
				in := writeInput(t, dir, "a.docx", "x")
				ro := filepath.Join(dir, "readonly")
				require.NoError(t, os.Mkdir(ro, 0o750))
				require.NoError(t, os.Chmod(ro, 0o555)) // #nosec G302 -- test fixture
				t.Cleanup(func() { _ = os.Chmod(ro, 0o750) })
				return in, filepath.Join(ro, "out.pdf")
			},
			backend:    &fakeBackend{pdf: fakePDF},
			wantOp:     OpWriteOutput,
			wantErr:    ErrWriteOutput,
			skipAsRoot: true,
		},
		{
			name: "backend error",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeInput(t, dir, "a.docx", "x"), filepath.Join(dir, "out.pdf")
			},
			backend: &fakeBackend{err: backendErr},
			wantOp:  OpConvert,
			wantErr: backendErr,
		},
		{
			name: "backend returns nothing",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeInput(t, dir, "a.docx", "x"), filepath.Join(dir, "out.pdf")
			},
			backend: &fakeBackend{},
			wantOp:  OpConvert,
			wantErr: ErrEmptyPDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.skipAsRoot && (runtime.GOOS == "windows" || os.Getuid() == 0) {
				t.Skip("directory permissions are not enforced here")
			}

			dir := t.TempDir()
			in, out := tt.setup(t, dir)
			s := New(withOffice(tt.backend), withRenderer(&fakeRenderer{}))

			err := s.Convert(context.Background(), in, out)

			var ce *ConversionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantOp, ce.Op)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotEmpty(t, err.Error())

			if info, statErr := os.Stat(out); statErr == nil {
				assert.True(t, info.IsDir(), "failed conversion must not create %s", out)
			}
			if errors.Is(tt.wantErr, ErrWriteOutput) {
				entries, readErr := os.ReadDir(filepath.Dir(out))
				require.NoError(t, readErr)
				assert.Empty(t, entries, "no temp file may be left behind")
			}
		})
	}
}

func TestService_Convert_ValidationSkipsBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	office := &fakeBackend{pdf: fakePDF}
	s := New(withOffice(office), withRenderer(&fakeRenderer{}))

	err := s.Convert(context.Background(), filepath.Join(dir, "missing.docx"), filepath.Join(dir, "out.pdf"))

	require.Error(t, err)
	assert.Empty(t, office.called)
}

func TestService_Convert_Timeout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "slow.docx", "x")
	out := filepath.Join(dir, "slow.pdf")

	s := New(
		WithTimeout(20*time.Millisecond),
		withOffice(&fakeBackend{wait: true}),
		withRenderer(&fakeRenderer{}),
	)

	err := s.Convert(context.Background(), in, out)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestService_Convert_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "a.docx", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(withOffice(&fakeBackend{wait: true}), withRenderer(&fakeRenderer{}))

	err := s.Convert(ctx, in, filepath.Join(dir, "a.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// TestService_SelectBackend - Routing by extension and backend
// ---------------------------------------------------------------------------

func TestService_SelectBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend Backend
		file    string
		want    string
	}{
		{"auto docx", BackendAuto, "a.docx", "office"},
		{"auto doc", BackendAuto, "a.doc", "office"},
		{"auto odt", BackendAuto, "a.odt", "office"},
		{"auto no extension", BackendAuto, "README", "office"},
		{"auto html", BackendAuto, "a.html", "html"},
		{"auto htm uppercase", BackendAuto, "A.HTM", "html"},
		{"auto xhtml", BackendAuto, "a.xhtml", "html"},
		{"auto markdown", BackendAuto, "a.md", "markdown"},
		{"auto markdown long", BackendAuto, "a.markdown", "markdown"},
		{"office forces html", BackendOffice, "a.html", "office"},
		{"browser docx", BackendBrowser, "a.docx", "html"},
		{"browser markdown", BackendBrowser, "a.md", "markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			office, html, md := &fakeBackend{pdf: fakePDF}, &fakeBackend{pdf: fakePDF}, &fakeBackend{pdf: fakePDF}
			s := New(WithBackend(tt.backend), withOffice(office), withHTML(html), withMarkdown(md), withRenderer(&fakeRenderer{}))

			got, err := s.selectBackend(tt.file)
			require.NoError(t, err)

			byName := map[string]documentConverter{"office": office, "html": html, "markdown": md}
			assert.Same(t, byName[tt.want], got)
		})
	}
}

func TestService_SelectBackend_Unknown(t *testing.T) {
	t.Parallel()

	s := New(WithBackend("pandoc"), withRenderer(&fakeRenderer{}))

	_, err := s.selectBackend("a.docx")
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

// ---------------------------------------------------------------------------
// TestHTMLFileConverter / TestMarkdownConverter - Browser front-ends
// ---------------------------------------------------------------------------

func TestHTMLFileConverter_RendersInputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "page.html", "<p>hi</p>")
	r := &fakeRenderer{pdf: fakePDF}
	page := DefaultPageSettings()

	got, err := (&htmlFileConverter{renderer: r, page: page}).ToPDF(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, fakePDF, got)
	assert.Equal(t, in, r.calledWith)
	assert.Same(t, page, r.calledPage)
}

func TestHTMLFileConverter_InvalidPage(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{pdf: fakePDF}
	c := &htmlFileConverter{renderer: r, page: &PageSettings{Size: "a9", Orientation: "portrait", Margin: 1}}

	_, err := c.ToPDF(context.Background(), "ignored.html")

	assert.ErrorIs(t, err, ErrInvalidPageSize)
	assert.Empty(t, r.calledWith)
}

func TestMarkdownConverter_RendersGeneratedHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "notes.md", "# Title\n\nSome *text*.\n")
	r := &fakeRenderer{pdf: fakePDF}
	c := &markdownConverter{html: newGoldmarkConverter(), renderer: r}

	got, err := c.ToPDF(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, fakePDF, got)
	assert.NotEqual(t, in, r.calledWith, "renderer should receive the generated HTML file")
	assert.Contains(t, r.html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, r.html, "<title>notes</title>")
	assert.True(t, strings.Contains(r.html, `<base href="file://`), "base href missing in %q", r.html)

	_, statErr := os.Stat(r.calledWith)
	assert.True(t, os.IsNotExist(statErr), "temp HTML should be removed after rendering")
}

func TestMarkdownConverter_RendererError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeInput(t, dir, "notes.md", "text")
	c := &markdownConverter{html: newGoldmarkConverter(), renderer: &fakeRenderer{err: ErrBrowserConnect}}

	_, err := c.ToPDF(context.Background(), in)
	assert.ErrorIs(t, err, ErrBrowserConnect)
}

// ---------------------------------------------------------------------------
// TestService_Close - Renderer release
// ---------------------------------------------------------------------------

func TestService_Close(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	s := New(withRenderer(r))

	require.NoError(t, s.Close())
	assert.True(t, r.closed)
}
