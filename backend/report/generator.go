// Package report lays out the analysis report as fixed-position blocks on
// A4 pages and renders it to PDF.
package report

import (
	"fmt"
	"strings"

	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/model"
)

// Page geometry in millimetres
const (
	PageWidth  = 210.0
	PageHeight = 297.0

	borderInset   = 10.0
	contentLeft   = 20.0
	contentRight  = PageWidth - contentLeft
	fieldIndent   = 25.0
	maxWrapWidth  = contentRight - fieldIndent
	lineStep      = 8.0
	wrapStep      = 6.0
	sectionGap    = 14.0
	continuationY = 25.0
	footerY       = PageHeight - 12.0
	bodyBottom    = footerY - 10.0
)

// Font sizes in points
const (
	titleSize   = 20.0
	headingSize = 14.0
	textSize    = 11.0
	wrapSize    = 10.0
	footerSize  = 9.0
)

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type BlockKind string

const (
	KindTitle   BlockKind = "title"
	KindHeading BlockKind = "heading"
	KindField   BlockKind = "field"
	KindText    BlockKind = "text"
	KindFooter  BlockKind = "footer"
)

// Block is one line of text anchored at X (left edge, center or right edge
// depending on Align) and baseline Y
type Block struct {
	Kind  BlockKind
	X, Y  float64
	Text  string
	Size  float64
	Bold  bool
	Align Align
}

type Rule struct {
	X1, Y1, X2, Y2 float64
}

type Rect struct {
	X, Y, W, H float64
}

// Page holds everything drawn on one sheet
type Page struct {
	Number int
	Border Rect
	Rules  []Rule
	Blocks []Block
}

// Document is a finished, read-only report layout
type Document struct {
	Title string
	Pages []Page
}

// Lines returns the text of every block in drawing order
func (d *Document) Lines() []string {
	var out []string
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			out = append(out, b.Text)
		}
	}
	return out
}

// Layout carries the configurable parts of the report. WrapWidth is the
// line width in millimetres for wrapped text; zero or anything wider than
// the printable area means the full printable width.
type Layout struct {
	Title     string
	Footer    string
	WrapWidth float64
}

func (l Layout) wrapWidth() float64 {
	if l.WrapWidth <= 0 || l.WrapWidth > maxWrapWidth {
		return maxWrapWidth
	}
	return l.WrapWidth
}

// NewLayout builds a Layout from the report configuration
func NewLayout(cfg *config.ReportConfig) Layout {
	return Layout{
		Title:     cfg.Title,
		Footer:    cfg.Footer,
		WrapWidth: cfg.WrapWidthMM,
	}
}

// Generate lays out the report for one analysis. It only reads its inputs.
func Generate(meta model.PatientMetadata, result *model.AnalysisResult, layout Layout) *Document {
	if result == nil {
		result = &model.AnalysisResult{}
	}

	doc := &Document{Title: layout.Title}
	c := &cursor{doc: doc}
	c.newPage()

	c.page().Blocks = append(c.page().Blocks, Block{
		Kind: KindTitle, X: PageWidth / 2, Y: 25, Text: layout.Title,
		Size: titleSize, Bold: true, Align: AlignCenter,
	})
	c.page().Rules = append(c.page().Rules, Rule{X1: contentLeft, Y1: 30, X2: contentRight, Y2: 30})

	c.y = 42
	c.heading("Patient Details")
	for _, f := range model.PatientFields {
		c.line(KindField, fmt.Sprintf("%s: %s", f.Label, orNA(meta.Get(f.Key))))
	}

	c.y += sectionGap - lineStep
	c.heading("Analysis Results")
	c.line(KindField, "Mean Intensity: "+result.MeanIntensity.Fixed(2))
	c.line(KindField, "Mean Temperature: "+result.MeanTemperature.Fixed(2))
	c.line(KindField, "Number of Regions: "+result.NumRegions.String())
	c.line(KindField, "Cold: "+result.Conditions.Cold.String())
	c.line(KindField, "Hot: "+result.Conditions.Hot.String())
	c.line(KindField, "Normal: "+result.Conditions.Normal.String())
	c.wrapped("Implications: "+result.Implications.String(), layout.wrapWidth())

	c.y += sectionGap - wrapStep
	c.heading("Detailed Analysis")
	c.wrapped(result.Narrative.String(), layout.wrapWidth())

	total := len(doc.Pages)
	for i := range doc.Pages {
		p := &doc.Pages[i]
		p.Blocks = append(p.Blocks,
			Block{Kind: KindFooter, X: PageWidth / 2, Y: footerY, Text: layout.Footer, Size: footerSize, Align: AlignCenter},
			Block{Kind: KindFooter, X: contentRight, Y: footerY, Text: fmt.Sprintf("Page %d of %d", p.Number, total), Size: footerSize, Align: AlignRight},
		)
	}
	return doc
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.NotAvailable
	}
	return s
}

// cursor places blocks top to bottom and opens a new page when the body
// area is full
type cursor struct {
	doc *Document
	y   float64
}

func (c *cursor) page() *Page {
	return &c.doc.Pages[len(c.doc.Pages)-1]
}

func (c *cursor) newPage() {
	c.doc.Pages = append(c.doc.Pages, Page{
		Number: len(c.doc.Pages) + 1,
		Border: Rect{X: borderInset, Y: borderInset, W: PageWidth - 2*borderInset, H: PageHeight - 2*borderInset},
	})
	c.y = continuationY
}

func (c *cursor) ensure(step float64) {
	if c.y+step > bodyBottom {
		c.newPage()
	}
}

func (c *cursor) heading(text string) {
	c.ensure(lineStep + wrapStep)
	c.page().Blocks = append(c.page().Blocks, Block{
		Kind: KindHeading, X: contentLeft, Y: c.y, Text: text, Size: headingSize, Bold: true, Align: AlignLeft,
	})
	c.y += lineStep + 2
}

func (c *cursor) line(kind BlockKind, text string) {
	c.ensure(lineStep)
	c.page().Blocks = append(c.page().Blocks, Block{
		Kind: kind, X: fieldIndent, Y: c.y, Text: text, Size: textSize, Align: AlignLeft,
	})
	c.y += lineStep
}

func (c *cursor) wrapped(text string, width float64) {
	for _, l := range Wrap(text, width, wrapSize) {
		c.ensure(wrapStep)
		c.page().Blocks = append(c.page().Blocks, Block{
			Kind: KindText, X: fieldIndent, Y: c.y, Text: l, Size: wrapSize, Align: AlignLeft,
		})
		c.y += wrapStep
	}
}
