// Package doc2pdf converts a document file to PDF by delegating to an
// external engine.
//
// # Quick Start
//
//	svc := doc2pdf.New()
//	defer svc.Close()
//
//	if err := svc.Convert(ctx, "report.docx", "report.pdf"); err != nil {
//	    var ce *doc2pdf.ConversionError
//	    if errors.As(err, &ce) {
//	        log.Printf("failed while %s: %v", ce.Op, ce.Err)
//	    }
//	}
//
// # Backends
//
// The backend is chosen from the input extension unless forced with
// WithBackend:
//
//   - .md, .markdown: rendered with goldmark, printed by headless Chrome
//   - .html, .htm, .xhtml: printed by headless Chrome (go-rod)
//   - anything else: LibreOffice in headless mode (Word, ODF, RTF, ...)
//
// LibreOffice is located on PATH (soffice, libreoffice) or set with
// WithOfficeBinary. Chrome comes from WithBrowserBinary, ROD_BROWSER_BIN or
// a local Chrome/Chromium install; only when none is found does rod download
// Chromium, with its progress sent to the logger.
//
// # Output
//
// The PDF is written to a temporary file beside the output path and renamed
// into place, so a failed conversion leaves no partial file. The output
// directory must already exist.
//
// No timeout is applied unless WithTimeout is given; cancel the context to
// abort a conversion. The LibreOffice process group is killed on
// cancellation.
package doc2pdf
