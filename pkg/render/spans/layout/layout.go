// Package layout places chunks, span boxes and arcs on a canvas.
//
// [Build] runs the row engine over an ordered [annotation.Document]: chunks
// are laid out left to right and wrapped into rows at sentence starts or
// when the canvas width is exceeded, spans of a chunk are stacked with a
// first-fit reservation scheme, and arcs are routed at jump heights that
// clear every span between their endpoints. The result is a [Model] in
// absolute canvas coordinates.
//
// The layout state is also written back into the document (rows, boxes,
// arc lines), so a document must not be shared between concurrent passes.
//
// # Usage
//
//	doc := annotation.Build(src, coll, sink)
//	model := layout.Build(doc, cfg,
//	    layout.WithCollection(coll),
//	    layout.WithFonts(set),
//	    layout.WithSink(sink),
//	)
package layout

import (
	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/collection"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/fonts"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/render/spans/nesting"
	"github.com/matzehuels/spantower/pkg/render/spans/ordering"
)

// Option configures a layout pass.
type Option func(*engine)

// WithCollection sets the type configuration used for labels, colors and
// arrowheads. Without it the built-in default collection is used.
func WithCollection(c *collection.Collection) Option { return func(e *engine) { e.coll = c } }

// WithFonts sets the text measurers. The default is [fonts.FixedSet].
func WithFonts(f fonts.Set) Option { return func(e *engine) { e.fonts = f } }

// WithSink sets where data warnings found during layout are posted.
func WithSink(s messages.Sink) Option { return func(e *engine) { e.sink = s } }

// WithoutOrdering skips the ordering stage, for documents that were
// already ordered with [ordering.Order].
func WithoutOrdering() Option { return func(e *engine) { e.ordered = true } }

type engine struct {
	doc     *annotation.Document
	cfg     config.Config
	k       config.Constants
	coll    *collection.Collection
	fonts   fonts.Set
	sink    messages.Sink
	ordered bool

	textM, spanM, arcM, sentM fonts.Metrics

	textWidths   []float64
	arcWidths    map[string]float64
	maxTextWidth float64
	canvasWidth  float64
	canvasHeight float64

	spanHeights []float64
	markedRows  []markedRow
	tiers       map[*annotation.Span]nesting.Tier
}

// markedRow is a text highlight interval on one row, before translation.
type markedRow struct {
	row      *annotation.Row
	from, to float64
	kind     string
}

func newEngine(doc *annotation.Document, cfg config.Config, opts ...Option) *engine {
	e := &engine{doc: doc, cfg: cfg, k: cfg.Constants}
	for _, opt := range opts {
		opt(e)
	}
	if e.coll == nil {
		e.coll = collection.Default()
	}
	if e.fonts.Text == nil || e.fonts.Spans == nil || e.fonts.Arcs == nil || e.fonts.SentNos == nil {
		e.fonts = fonts.FixedSet()
	}
	if e.sink == nil {
		e.sink = messages.Discard
	}
	e.textM = e.fonts.Text.Metrics()
	e.spanM = e.fonts.Spans.Metrics()
	e.arcM = e.fonts.Arcs.Metrics()
	e.sentM = e.fonts.SentNos.Metrics()
	e.arcWidths = make(map[string]float64)
	e.tiers = make(map[*annotation.Span]nesting.Tier)
	e.canvasWidth = cfg.CanvasWidth
	return e
}

// Build lays out doc and returns the resulting model. Unless
// [WithoutOrdering] is given, the spans are ordered first. A document
// without chunks yields an empty model of the configured canvas width.
func Build(doc *annotation.Document, cfg config.Config, opts ...Option) *Model {
	e := newEngine(doc, cfg, opts...)
	e.reset()
	if len(doc.Chunks) == 0 {
		doc.CanvasWidth = e.canvasWidth
		return &Model{CanvasWidth: e.canvasWidth}
	}
	if !e.ordered {
		ordering.Order(doc, e.coll, cfg.Abbrevs)
	}

	e.measure()
	e.layoutRows()
	e.layoutArcs()
	e.positionRows()
	e.finish()
	return e.snapshot()
}

// reset clears the layout state a previous pass left in the document.
func (e *engine) reset() {
	d := e.doc
	d.Rows = nil
	d.TextHighlights = nil
	d.SentenceLinks = nil
	d.Arrows = make(map[string]annotation.Arrow)
	d.MaxTextWidth = 0
	d.CanvasWidth = 0
	d.CanvasHeight = 0
	for _, c := range d.Chunks {
		c.Row = nil
		c.TextX = 0
		c.Right = 0
	}
}

func (e *engine) rowStart() float64 {
	return e.cfg.Margin.X + e.k.SentNumMargin + e.k.RowPadding
}

func (e *engine) arcLabels(originType, arcType string) []string {
	if labels := e.coll.ArcLabels(originType, arcType); len(labels) > 0 {
		return labels
	}
	return []string{arcType}
}

func (e *engine) arcWidth(label string) float64 {
	w, ok := e.arcWidths[label]
	if !ok {
		w = e.fonts.Arcs.Width(label)
		e.arcWidths[label] = w
	}
	return w
}
