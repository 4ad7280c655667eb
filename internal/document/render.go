package document

import (
	"bytes"
	"errors"
	"time"

	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/evidenceledger/noticegen/internal/fonts"
	"github.com/evidenceledger/noticegen/internal/notice"
	"github.com/go-pdf/fpdf"
)

// ErrRenderFailure is returned when the PDF output could not be produced.
var ErrRenderFailure = errors.New("document render failure")

// RenderedDocument is a finished PDF held in memory.
type RenderedDocument struct {
	Bytes []byte
	Pages int
}

// Renderer turns notices into PDF documents. It holds no per-document state
// and is safe for concurrent use.
type Renderer struct {
	now         func() time.Time
	margin      float64
	compression bool
	author      string
	creator     string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the source of the issue date and the PDF creation date.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithMargin sets the page margin in millimetres, applied to all sides.
func WithMargin(mm float64) Option {
	return func(r *Renderer) {
		if mm > 0 {
			r.margin = mm
		}
	}
}

// WithCompression enables or disables compression of page content streams.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compression = on
	}
}

// WithAuthor sets the author recorded in the PDF properties.
func WithAuthor(author string) Option {
	return func(r *Renderer) {
		r.author = author
	}
}

// New creates a renderer. By default it uses the wall clock, 20mm margins and
// compressed output.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		now:         time.Now,
		margin:      20,
		compression: true,
		creator:     "noticegen",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the notice for fs. The catalog entry is resolved from the
// notice type so the title always matches what was charged for.
// Empty fields render as empty values; only an output failure is an error.
func (r *Renderer) Render(fs notice.FieldSet) (*RenderedDocument, error) {
	meta, err := notice.Lookup(fs.Type)
	if err != nil {
		return nil, err
	}

	now := r.now()
	return r.RenderBlocks(meta.Name, Compose(meta, fs, now), now)
}

// RenderBlocks lays out an arbitrary block sequence. Either the complete
// document is returned or an error wrapping ErrRenderFailure.
// Text with characters the typeface cannot draw also wraps notice.ErrUnprintableText.
func (r *Renderer) RenderBlocks(title string, blocks []Block, created time.Time) (*RenderedDocument, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(r.margin, r.margin, r.margin)
	pdf.SetAutoPageBreak(false, r.margin)
	pdf.SetCompression(r.compression)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.AliasNbPages("")
	pdf.AddUTF8FontFromBytes(fonts.Family, "", fonts.Regular)
	pdf.AddUTF8FontFromBytes(fonts.Family, "B", fonts.Bold)

	pdf.SetTitle(title, true)
	pdf.SetSubject(DocumentTitle, true)
	pdf.SetCreator(r.creator, true)
	if r.author != "" {
		pdf.SetAuthor(r.author, true)
	}

	f := newFlow(pdf, r.margin)
	pdf.SetFooterFunc(f.footer)
	f.newPage()

	runs := make([]run, len(blocks))
	for i, b := range blocks {
		m, err := f.measure(b)
		if err != nil {
			return nil, errl.Errorf("%w: block %d: %w", ErrRenderFailure, i, err)
		}
		runs[i] = m
	}

	for i, m := range runs {
		// A heading never ends a page on its own
		if _, ok := blocks[i].(Heading); ok && i+1 < len(runs) {
			f.keepWithNext(m, runs[i+1])
		}
		f.place(m)
	}

	if pdf.Err() {
		return nil, errl.Errorf("%w: %w", ErrRenderFailure, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errl.Errorf("%w: %w", ErrRenderFailure, err)
	}

	return &RenderedDocument{
		Bytes: buf.Bytes(),
		Pages: pdf.PageNo(),
	}, nil
}
