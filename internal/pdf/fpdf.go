package pdf

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"go-pos-report/internal/report"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points, A4 portrait.
const (
	pageMargin = 50.0
	nameColX   = 50.0
	nameColW   = 300.0
	qtyColX    = 350.0
	qtyColW    = 100.0
	rowHeight  = 18.0
	cellPad    = 4.0
)

const fontFamily = "report"

// DejaVu Sans Condensed covers Turkish letters and the lira sign.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var defaultFont []byte

// FPDFConfig tunes the pure-Go renderer.
type FPDFConfig struct {
	// FontPath replaces the embedded DejaVu font with another TrueType font.
	FontPath string
	Compress bool
}

// FPDFRenderer draws the report with go-pdf/fpdf into memory.
type FPDFRenderer struct {
	opts Options
	cfg  FPDFConfig
	font []byte
}

// NewFPDFRenderer loads the configured font once so a bad path fails at startup.
func NewFPDFRenderer(opts Options, cfg FPDFConfig) (*FPDFRenderer, error) {
	r := &FPDFRenderer{opts: opts, cfg: cfg, font: defaultFont}
	if cfg.FontPath != "" {
		font, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, fmt.Errorf("load report font: %w", err)
		}
		r.font = font
	}
	return r, nil
}

// Render returns the complete PDF. Nothing is returned unless the document was finalized.
func (r *FPDFRenderer) Render(ctx context.Context, s report.Summary) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.write(&buf, BuildContent(s, r.opts)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *FPDFRenderer) write(w io.Writer, c Content) error {
	if err := r.draw(c).Output(w); err != nil {
		return fmt.Errorf("finalize pdf: %w", err)
	}
	return nil
}

func (r *FPDFRenderer) draw(c Content) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetCompression(r.cfg.Compress)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(false, pageMargin)
	doc.SetCreator("go-pos-report", false)
	doc.SetTitle(c.Title, true)

	doc.AddUTF8FontFromBytes(fontFamily, "", r.font)
	doc.AddPage()

	doc.SetFont(fontFamily, "", 20)
	doc.CellFormat(0, 26, c.Title, "", 1, "C", false, 0, "")
	doc.Ln(12)

	doc.SetFont(fontFamily, "", 14)
	for _, fact := range c.Facts {
		doc.CellFormat(0, 20, fact, "", 1, "L", false, 0, "")
	}
	doc.Ln(12)

	doc.SetFont(fontFamily, "", 16)
	doc.CellFormat(0, 22, c.TableTitle, "", 1, "L", false, 0, "")
	doc.Ln(6)

	// Rows never straddle a page; every page of the table starts with the header.
	doc.SetFont(fontFamily, "", 12)
	_, pageH := doc.GetPageSize()
	limit := pageH - pageMargin
	if doc.GetY()+2*rowHeight > limit {
		doc.AddPage()
	}
	tableRow(doc, c.Header, "B")
	for _, row := range c.Rows {
		if doc.GetY()+rowHeight > limit {
			doc.AddPage()
			tableRow(doc, c.Header, "B")
		}
		tableRow(doc, row, "")
	}

	return doc
}

func tableRow(doc *fpdf.Fpdf, row Row, border string) {
	doc.SetX(nameColX)
	doc.CellFormat(nameColW, rowHeight, fit(doc, row.Product, nameColW-cellPad), border, 0, "L", false, 0, "")
	doc.SetX(qtyColX)
	doc.CellFormat(qtyColW, rowHeight, row.Quantity, border, 1, "R", false, 0, "")
}

// fit shortens s so it stays inside its column.
func fit(doc *fpdf.Fpdf, s string, width float64) string {
	if doc.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && doc.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
