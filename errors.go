package doc2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Input and output validation errors.
	ErrInputNotFound = errors.New("input file not found")
	ErrInputIsDir    = errors.New("input path is a directory")
	ErrEmptyInput    = errors.New("input file is empty")
	ErrOutputDir     = errors.New("output directory not usable")
	ErrWriteOutput   = errors.New("failed to write PDF file")
	ErrEmptyPDF      = errors.New("conversion completed but no PDF was produced")

	// Backend selection errors.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// Office backend errors.
	ErrOfficeNotFound   = errors.New("LibreOffice executable not found")
	ErrOfficeConversion = errors.New("LibreOffice conversion failed")

	// Browser backend errors.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
)

// Conversion stages reported in ConversionError.Op.
const (
	OpReadInput   = "reading input"
	OpConvert     = "converting"
	OpWriteOutput = "writing output"
)

// ConversionError is the failure result of a conversion.
// It records the stage that failed and the path involved.
type ConversionError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// newConversionError wraps err unless it is already a *ConversionError.
func newConversionError(op, path string, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{Op: op, Path: path, Err: err}
}
