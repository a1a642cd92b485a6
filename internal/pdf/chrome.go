package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go-pos-report/internal/report"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// A4 in inches, as Chrome expects.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// ChromeConfig contains configuration for the chromedp renderer
type ChromeConfig struct {
	// RemoteURL is the DevTools websocket of a running Chrome. Empty launches a local headless one.
	RemoteURL string
	Timeout   time.Duration
	// NoSandbox is required when running as root in containers.
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromeRenderer prints the report HTML to PDF through the Chrome DevTools Protocol.
type ChromeRenderer struct {
	opts        Options
	cfg         ChromeConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeRenderer prepares the browser allocator. The browser itself starts on first use.
func NewChromeRenderer(opts Options, cfg ChromeConfig) *ChromeRenderer {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromeRenderer{opts: opts, cfg: cfg, logger: logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		flags = append(flags, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), flags...)
	return r
}

// Render prints the summary. PrintToPDF only returns once Chrome has finished the document.
func (r *ChromeRenderer) Render(ctx context.Context, s report.Summary) ([]byte, error) {
	html, err := RenderHTML(BuildContent(s, r.opts))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// stop the browser task when the caller's deadline passes
	go func() {
		<-ctx.Done()
		browserCancel()
	}()

	start := time.Now()
	var pdfData []byte
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
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(0.7).
				WithMarginBottom(0.7).
				WithMarginLeft(0.7).
				WithMarginRight(0.7).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("chrome rendering aborted after %v: %w", time.Since(start), ctx.Err())
		}
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("chrome produced an empty pdf")
	}

	r.logger.Debug("PDF rendered",
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))
	return pdfData, nil
}

// Close releases the browser allocator.
func (r *ChromeRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// The table header repeats on every printed page and rows are never split.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; }
h1 { font-size: 20pt; text-align: center; }
p.fact { font-size: 14pt; margin: 4pt 0; }
h2 { font-size: 16pt; margin-top: 18pt; }
table { border-collapse: collapse; font-size: 12pt; }
thead { display: table-header-group; }
tr { page-break-inside: avoid; break-inside: avoid; }
th, td { padding: 3pt 0; }
th { border-bottom: 1px solid #000; }
.name { width: 300pt; text-align: left; }
.qty { width: 100pt; text-align: right; }
</style></head>
<body>
<h1>{{.Title}}</h1>
{{range .Facts}}<p class="fact">{{.}}</p>
{{end}}<h2>{{.TableTitle}}</h2>
<table>
<thead><tr><th class="name">{{.Header.Product}}</th><th class="qty">{{.Header.Quantity}}</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td class="name">{{.Product}}</td><td class="qty">{{.Quantity}}</td></tr>
{{end}}</tbody>
</table>
</body></html>
`))

// RenderHTML produces the printable HTML page for c.
func RenderHTML(c Content) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}
