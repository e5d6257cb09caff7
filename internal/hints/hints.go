// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a known CI environment variable is set.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForOfficeNotFound suggests how to make LibreOffice available.
func ForOfficeNotFound() string {
	var install string
	switch runtime.GOOS {
	case "darwin":
		install = "install LibreOffice (brew install --cask libreoffice)"
	case "windows":
		install = "install LibreOffice from libreoffice.org"
	default:
		install = "install LibreOffice (e.g. apt install libreoffice-writer)"
	}
	return formatHints([]string{install, "or set DOC2PDF_SOFFICE to the soffice binary"})
}

// ForOfficeConversion returns hints for documents LibreOffice rejected.
func ForOfficeConversion() string {
	return format("check the file opens in LibreOffice and is not password-protected")
}

// ForTimeout returns a hint about increasing timeout for slow conversions.
// There is no default timeout, so a deadline always comes from
// DOC2PDF_TIMEOUT or the config file's timeout key.
func ForTimeout() string {
	return format("for large documents, raise DOC2PDF_TIMEOUT or timeout in the config file")
}

// ForConfigNotFound returns hints for a config file that does not exist.
func ForConfigNotFound(path string) string {
	return format("create " + path + " or unset DOC2PDF_CONFIG")
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
