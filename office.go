package doc2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/process"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
// The child runs in its own process group, which is killed on cancellation.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary is resolved from config or PATH
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := process.KillProcessGroup(cmd.Process.Pid); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		err = ctxErr
	}
	return stdout.String(), stderr.String(), err
}

// officeCandidates are tried in order when no binary is configured.
var officeCandidates = []string{"soffice", "libreoffice"}

// officeBundlePaths are install locations that are usually not on PATH.
var officeBundlePaths = map[string][]string{
	"darwin":  {"/Applications/LibreOffice.app/Contents/MacOS/soffice"},
	"windows": {`C:\Program Files\LibreOffice\program\soffice.exe`},
}

// officeConverter converts documents to PDF by invoking LibreOffice headless.
type officeConverter struct {
	Runner   CommandRunner
	binary   string
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

func newOfficeConverter(binary string, logger *slog.Logger) *officeConverter {
	return &officeConverter{
		Runner:   &ExecRunner{},
		binary:   binary,
		lookPath: exec.LookPath,
		logger:   logger,
	}
}

// resolveBinary finds the LibreOffice executable.
func (c *officeConverter) resolveBinary() (string, error) {
	if c.binary != "" {
		path, err := c.lookPath(c.binary)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrOfficeNotFound, c.binary, err)
		}
		return path, nil
	}

	for _, name := range officeCandidates {
		if path, err := c.lookPath(name); err == nil {
			return path, nil
		}
	}
	for _, path := range officeBundlePaths[runtime.GOOS] {
		if fileutil.FileExists(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrOfficeNotFound, strings.Join(officeCandidates, ", "))
}

// ToPDF converts the document at inputPath and returns the PDF bytes.
// LibreOffice writes into a scratch directory with a private user profile,
// so it does not collide with a desktop instance that may already be running.
func (c *officeConverter) ToPDF(ctx context.Context, inputPath string) ([]byte, error) {
	bin, err := c.resolveBinary()
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "doc2pdf-office-*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	outDir := filepath.Join(workDir, "out")
	profile, err := fileURL(filepath.Join(workDir, "profile"))
	if err != nil {
		return nil, fmt.Errorf("building profile URL: %w", err)
	}

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, fmt.Errorf("resolving input path: %w", err)
	}

	args := []string{
		"--headless",
		"--norestore",
		"--nolockcheck",
		"-env:UserInstallation=" + profile,
		"--convert-to", "pdf",
		"--outdir", outDir,
		absInput,
	}

	c.logger.Debug("running LibreOffice", "bin", bin, "args", args)
	stdout, stderr, err := c.Runner.Run(ctx, bin, args...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v%s", ErrOfficeConversion, err, formatOutput(stderr, stdout))
	}

	pdfPath := filepath.Join(outDir, fileutil.TrimExt(absInput)+".pdf")
	data, err := os.ReadFile(pdfPath) // #nosec G304 -- path built inside our scratch directory
	if err != nil {
		if os.IsNotExist(err) {
			// soffice exits 0 for formats it cannot import.
			return nil, fmt.Errorf("%w: no PDF produced%s", ErrOfficeConversion, formatOutput(stderr, stdout))
		}
		return nil, fmt.Errorf("reading converted PDF: %w", err)
	}

	return data, nil
}

// formatOutput renders captured process output for inclusion in an error.
func formatOutput(stderr, stdout string) string {
	var b strings.Builder
	if s := strings.TrimSpace(stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	if s := strings.TrimSpace(stdout); s != "" {
		b.WriteString("\nOutput: ")
		b.WriteString(s)
	}
	return b.String()
}
