package document

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/evidenceledger/noticegen/internal/fonts"
	"github.com/evidenceledger/noticegen/internal/notice"
)

const (
	fontFamily = fonts.Family
	titleSize  = 18.0
	bodySize   = 12.0
	footerSize = 8.0
)

// run is a block measured at its font: the wrapped lines and the vertical
// space they need on the page.
type run struct {
	lines  []string
	style  string
	size   float64
	lineH  float64
	align  Align
	before float64
	after  float64
	gap    float64 // spacer height, no text
}

func (r run) height() float64 {
	if r.gap > 0 {
		return r.gap
	}
	return r.before + float64(len(r.lines))*r.lineH + r.after
}

// flow places blocks on the pages of pdf, starting new pages as needed.
// Automatic page breaking must be disabled on pdf and the faces of fontFamily
// must be registered.
type flow struct {
	pdf      *fpdf.Fpdf
	left     float64
	top      float64
	bottom   float64 // lowest usable y coordinate
	contentW float64
}

func newFlow(pdf *fpdf.Fpdf, margin float64) *flow {
	pageW, pageH := pdf.GetPageSize()
	return &flow{
		pdf:      pdf,
		left:     margin,
		top:      margin,
		bottom:   pageH - margin,
		contentW: pageW - 2*margin,
	}
}

func (f *flow) pageHeight() float64 {
	return f.bottom - f.top
}

func (f *flow) remaining() float64 {
	return f.bottom - f.pdf.GetY()
}

// measure wraps the text of b at its font. The PDF font is left set to the block font.
func (f *flow) measure(b Block) (run, error) {
	switch b := b.(type) {
	case Heading:
		size, style := bodySize, ""
		if b.Title {
			size = titleSize
		}
		if b.Bold {
			style = "B"
		}
		return f.wrap(b.Text, style, size, alignOr(b.Align, AlignStart), size*0.2, size*0.2)
	case KeyValue:
		return f.wrap(b.Text(), "", bodySize, alignOr(b.Align, AlignStart), 0, bodySize*0.1)
	case Paragraph:
		style := ""
		if b.Bold {
			style = "B"
		}
		return f.wrap(b.Text, style, bodySize, AlignStart, 0, bodySize*0.3)
	case Spacer:
		return run{gap: b.Height}, nil
	default:
		return run{}, fmt.Errorf("unsupported block type %T", b)
	}
}

// whitespace has no glyph of its own in the typeface
var whitespace = strings.NewReplacer("\r", "", "\t", " ")

// wrap fails for text the typeface cannot draw, which would otherwise come
// out as blank boxes.
func (f *flow) wrap(text, style string, size float64, align Align, before, after float64) (run, error) {
	missing, err := fonts.Unsupported(text)
	if err != nil {
		return run{}, err
	}
	if len(missing) > 0 {
		return run{}, fmt.Errorf("%w: %q", notice.ErrUnprintableText, string(missing))
	}

	f.pdf.SetFont(fontFamily, style, size)
	if f.pdf.Err() {
		return run{}, f.pdf.Error()
	}

	lines := f.pdf.SplitText(whitespace.Replace(text), f.contentW)
	if len(lines) == 0 {
		lines = []string{""}
	}

	return run{
		lines:  lines,
		style:  style,
		size:   size,
		lineH:  size * 0.5,
		align:  align,
		before: before,
		after:  after,
	}, nil
}

// place draws one measured block. A block that fits on an empty page is kept
// together; a longer one is split across pages at line boundaries.
func (f *flow) place(r run) {
	if r.gap > 0 {
		if r.gap > f.remaining() {
			// A gap at the top of a fresh page is not drawn.
			f.newPage()
			return
		}
		f.pdf.Ln(r.gap)
		return
	}

	if r.height() > f.remaining() && r.height() <= f.pageHeight() {
		f.newPage()
	}

	f.pdf.SetFont(fontFamily, r.style, r.size)
	if r.before > 0 && r.before <= f.remaining() {
		f.pdf.Ln(r.before)
	}

	for _, line := range r.lines {
		if r.lineH > f.remaining() {
			f.newPage()
			f.pdf.SetFont(fontFamily, r.style, r.size)
		}
		f.pdf.SetX(f.left)
		f.pdf.CellFormat(f.contentW, r.lineH, line, "", 1, string(r.align), false, 0, "")
	}

	if r.after > 0 && r.after <= f.remaining() {
		f.pdf.Ln(r.after)
	}
}

// keepWithNext starts a new page before r when r would end a page and the
// first line of next would open the following one.
func (f *flow) keepWithNext(r, next run) {
	if next.gap > 0 {
		return
	}

	// next is kept together itself when it fits on a page
	need := next.height()
	if need > f.pageHeight() {
		need = next.before + next.lineH
	}
	need += r.height()

	if need > f.remaining() && need <= f.pageHeight() {
		f.newPage()
	}
}

func (f *flow) newPage() {
	f.pdf.AddPage()
	f.pdf.SetXY(f.left, f.top)
}

// footer prints "Page N of M" centred in the bottom margin.
func (f *flow) footer() {
	f.pdf.SetFont(fontFamily, "", footerSize)
	f.pdf.SetTextColor(128, 128, 128)
	f.pdf.SetXY(f.left, f.bottom+f.top/4)
	text := fmt.Sprintf("Page %d of {nb}", f.pdf.PageNo())
	f.pdf.CellFormat(f.contentW, footerSize*0.5, text, "", 0, string(AlignCenter), false, 0, "")
	f.pdf.SetTextColor(0, 0, 0)
}

func alignOr(a, def Align) Align {
	if a == "" {
		return def
	}
	return a
}
