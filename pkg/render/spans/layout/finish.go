package layout

import (
	"strconv"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/render/spans/nesting"
)

// Row background classes.
const (
	bgHighlight = "backgroundHighlight"
	bgPrefix    = "background"
)

// positionRows stacks the rows vertically and picks their backgrounds.
func (e *engine) positionRows() {
	d := e.doc
	k := e.k
	m := e.cfg.Margin

	y := m.Y
	currentSent := 0
	for _, row := range d.Rows {
		for _, c := range row.Chunks {
			for _, s := range c.Spans {
				row.MaxSpanHeight = max(row.MaxSpanHeight, s.Height)
			}
		}
		if row.Sentence > 0 {
			currentSent = row.Sentence
		}

		h := max(row.MaxArcHeight+k.ArcRowPadding, row.MaxSpanHeight+k.SpanRowPadding)
		if row.HasAnnotations {
			h += k.RowSpacing + k.AnnotatedRowPadding
		} else {
			h -= k.EmptyRowShrink
		}
		h += k.RowPadding
		row.Height = h
		row.Y = y

		switch {
		case d.MarkedSent[currentSent]:
			row.BgClass = bgHighlight
		case e.cfg.Striped():
			row.BgClass = bgPrefix + strconv.Itoa(row.BackgroundIndex)
		default:
			row.BgClass = bgPrefix + "0"
		}

		y += h + e.textM.Height
		row.YT = y
		row.TextY = y - k.RowPadding
		y += m.Y
	}
	e.canvasHeight = y + m.Y
}

// finish computes nesting highlights and text highlights, moves boxes and
// arc lines to absolute coordinates and sizes the canvas.
func (e *engine) finish() {
	d := e.doc
	k := e.k
	m := e.cfg.Margin

	for _, c := range d.Chunks {
		for _, s := range nesting.Analyze(c) {
			tier := nesting.TierOf(s)
			e.tiers[s] = tier
			yShrink := float64(tier) * k.NestingAdjustYStep
			xShrink := float64(tier) * k.NestingAdjustXStep
			s.HighlightPos = annotation.Box{
				X: c.TextX + s.Curly.From + xShrink,
				Y: c.Row.TextY + e.textM.Y + yShrink + k.YStartTweak,
				W: s.Curly.To - s.Curly.From - 2*xShrink,
				H: e.textM.Height - 2*yShrink - k.YStartTweak,
			}
		}
	}

	pad := k.HighlightTextPadding
	for _, mr := range e.markedRows {
		d.TextHighlights = append(d.TextHighlights, annotation.TextHighlight{
			Box: annotation.Box{
				X: mr.from - pad,
				Y: mr.row.TextY - e.spanM.Height,
				W: mr.to - mr.from + 2*pad,
				H: e.spanM.Height + 2*pad,
			},
			Kind: mr.kind,
		})
	}

	for _, s := range d.Spans() {
		if s.Chunk == nil || s.Chunk.Row == nil {
			continue
		}
		xt, yt := s.Chunk.TextX, s.Chunk.Row.YT
		s.Box.X += xt
		s.Box.Y += yt
		s.PlainBox.X += xt
		s.PlainBox.Y += yt
		s.Curly.From += xt
		s.Curly.To += xt
		s.Curly.X += xt
		s.TextY += yt
	}

	for _, row := range d.Rows {
		yt := row.YT
		for _, line := range row.Lines {
			line.Height += yt
			line.TextBox.Y += yt
			for i := range line.Sides {
				line.Sides[i].Y0 += yt
				line.Sides[i].Y3 += yt
			}
		}

		if row.Sentence == 0 {
			continue
		}
		row.SentComment = d.SentComment[row.Sentence]
		link := annotation.SentenceLink{
			Sentence: row.Sentence,
			X:        k.SentNumMargin - m.X,
			Y:        row.TextY,
		}
		if row.SentComment != nil {
			link.HasBox = true
			link.BoxX = link.X - e.fonts.SentNos.Width(strconv.Itoa(row.Sentence))
			link.BoxY = row.TextY - e.sentM.Height
			link.BgClass = "shadow_" + row.SentComment.Kind
		}
		d.SentenceLinks = append(d.SentenceLinks, link)
	}

	e.canvasWidth = max(e.canvasWidth, e.maxTextWidth+k.SentNumMargin+2*m.X+1)
	d.MaxTextWidth = e.maxTextWidth
	d.CanvasWidth = e.canvasWidth
	d.CanvasHeight = e.canvasHeight
}
