package report

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf/v2"
)

// ContentType of rendered reports
const ContentType = "application/pdf"

const fontFamily = "Helvetica"

// metrics measures text with the font RenderPDF draws with. Fpdf keeps the
// current font as state, so access is serialised.
var metrics = struct {
	sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}{pdf: gofpdf.New("P", "mm", "A4", "")}

func init() {
	metrics.tr = metrics.pdf.UnicodeTranslatorFromDescriptor("")
}

// TextWidth returns the printed width of text in millimetres
func TextWidth(text string, size float64, bold bool) float64 {
	metrics.Lock()
	defer metrics.Unlock()

	metrics.pdf.SetFont(fontFamily, fontStyle(bold), size)
	return metrics.pdf.GetStringWidth(metrics.tr(text))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// RenderPDF draws doc onto A4 pages
func RenderPDF(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("thermoinsights", true)

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		pdf.AddPage()

		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		b := page.Border
		pdf.Rect(b.X, b.Y, b.W, b.H, "D")

		pdf.SetLineWidth(0.3)
		for _, r := range page.Rules {
			pdf.Line(r.X1, r.Y1, r.X2, r.Y2)
		}

		for _, blk := range page.Blocks {
			pdf.SetFont(fontFamily, fontStyle(blk.Bold), blk.Size)

			txt := tr(blk.Text)
			x := blk.X
			switch blk.Align {
			case AlignCenter:
				x -= pdf.GetStringWidth(txt) / 2
			case AlignRight:
				x -= pdf.GetStringWidth(txt)
			}
			pdf.Text(x, blk.Y, txt)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
