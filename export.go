package scriptura

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/scriptura/scriptura/internal/fileutil"
)

// Exporter hands the canonical document to an external pagination renderer
// and writes the final artifact. The renderer's pagination algorithm is
// not this package's concern.
type Exporter interface {
	Export(ctx context.Context, doc *CanonicalDocument, outPath string) error
	Close() error
}

// A4 page dimensions in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// rodExporter renders the canonical document to PDF using headless Chrome
// via go-rod. Rod downloads Chromium on first run if not found.
type rodExporter struct {
	browser *rod.Browser
	timeout time.Duration
}

// Compile-time interface check.
var _ Exporter = (*rodExporter)(nil)

func newRodExporter(timeout time.Duration) *rodExporter {
	return &rodExporter{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodExporter) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Export writes the document to a temp file, opens it in headless Chrome,
// waits for pagination to settle and prints it to PDF.
func (r *rodExporter) Export(ctx context.Context, doc *CanonicalDocument, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.ensureBrowser(); err != nil {
		return err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(doc.HTML, "html")
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	// Let the pagination polyfill finish splitting pages before printing.
	if err := page.Timeout(timeout).WaitIdle(timeout); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(paperWidthInches),
		PaperHeight:       floatPtr(paperHeightInches),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBytes, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return fileutil.WriteFile(outPath, string(pdfBytes))
}

// Close releases browser resources.
func (r *rodExporter) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
