// Package document lays out a sequence of blocks onto A4 pages and produces a PDF.
//
// A document is an ordered list of blocks: headings, "Label: value" lines,
// paragraphs and vertical spacers. Blocks flow from the top of the first page;
// when a block does not fit in the space left on a page it moves to a new page,
// and a block taller than a whole page is split line by line. The order of the
// blocks is always preserved.
package document

// Align is the horizontal alignment of a line of text.
type Align string

const (
	AlignStart  Align = "L"
	AlignCenter Align = "C"
	AlignEnd    Align = "R"
)

// Block is one layout primitive. The concrete types are Heading, KeyValue,
// Paragraph and Spacer.
type Block interface {
	isBlock()
}

// Heading is a single- or multi-line title. Title headings use the larger
// document title font size.
type Heading struct {
	Text  string
	Align Align
	Bold  bool
	Title bool
}

// KeyValue renders as "Label: value".
type KeyValue struct {
	Label string
	Value string
	Align Align
}

// Text returns the rendered form of the line.
func (kv KeyValue) Text() string {
	return kv.Label + ": " + kv.Value
}

// Paragraph is flowing body text.
type Paragraph struct {
	Text string
	Bold bool
}

// Spacer is a vertical gap in millimetres.
type Spacer struct {
	Height float64
}

func (Heading) isBlock()   {}
func (KeyValue) isBlock()  {}
func (Paragraph) isBlock() {}
func (Spacer) isBlock()    {}
