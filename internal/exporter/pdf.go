package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrChromeNotFound is returned when no Chrome or Chromium binary is available
var ErrChromeNotFound = errors.New("chrome executable not found")

// chromeCandidates are looked up on PATH when no explicit binary is configured
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// FindChrome resolves the browser binary. An explicit path must exist; an
// empty one falls back to a PATH search.
func FindChrome(explicit string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrChromeNotFound, explicit)
		}
		return path, nil
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrChromeNotFound
}

// PDFRenderer prints HTML documents to PDF with headless Chrome
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPDFRenderer creates a renderer. chromePath may be empty to search PATH.
func NewPDFRenderer(chromePath string, timeout time.Duration, logger *slog.Logger) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{
		chromePath: chromePath,
		timeout:    timeout,
		logger:     logger.With(slog.String("component", "pdf_renderer")),
	}
}

// Available reports whether a browser binary can be found
func (r *PDFRenderer) Available() error {
	_, err := FindChrome(r.chromePath)
	return err
}

// Render loads html into a blank page and prints it on A4 paper
func (r *PDFRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	execPath, err := FindChrome(r.chromePath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}

	r.logger.DebugContext(ctx, "pdf rendered",
		slog.Int("bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)))
	return pdf, nil
}
