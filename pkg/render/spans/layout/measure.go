package layout

import (
	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/messages"
)

// spaceWidths are the advances of the whitespace runes that separate chunks.
// They do not depend on the text font.
var spaceWidths = map[rune]float64{
	' ':      4,
	'\u00a0': 4,
	'\u200b': 0,
	'\u3000': 8,
	'\n':     4,
}

func spaceWidth(s string) float64 {
	var w float64
	for _, r := range s {
		w += spaceWidths[r]
	}
	return w
}

// measure records the text width of every chunk, the curly extent of every
// span relative to its chunk, the pixel offsets of marked text boundaries
// and the label width of every tower.
func (e *engine) measure() {
	e.textWidths = make([]float64, len(e.doc.Chunks))
	for i, c := range e.doc.Chunks {
		w := e.fonts.Text.Width(c.Text)
		e.textWidths[i] = w
		e.maxTextWidth = max(e.maxTextWidth, w)

		runes := []rune(c.Text)
		for _, s := range c.Spans {
			e.measureCurly(s, c, runes)
		}
		for _, m := range c.MarkedTextStart {
			m.Offset = e.markOffset(runes, m)
		}
		for _, m := range c.MarkedTextEnd {
			m.Offset = e.markOffset(runes, m)
		}
	}

	for _, s := range e.doc.Spans() {
		s.Width = e.fonts.Spans.Width(s.GlyphedLabelText)
	}
	for _, tower := range e.doc.Towers {
		var w float64
		for _, s := range tower {
			w = max(w, s.Width)
		}
		for _, s := range tower {
			s.Width = w
		}
	}

	for _, a := range e.doc.Arcs {
		for _, label := range e.arcLabels(a.OriginSpan.Type, a.Type) {
			e.arcWidth(label)
		}
	}
}

func (e *engine) prefixWidth(runes []rune, n int) float64 {
	n = max(0, min(n, len(runes)))
	return e.fonts.Text.Width(string(runes[:n]))
}

func (e *engine) measureCurly(s *annotation.Span, c *annotation.Chunk, runes []rune) {
	first := s.From - c.From
	if first < 0 {
		e.sink.Post(messages.Warningf(errors.ErrCodeOffsetRange,
			"span %s [%d, %d] (%s) is not contained in its chunk [%d, %d]; leading characters are dropped",
			s.ID, s.From, s.To, s.Text, c.From, c.To))
		first = 0
	}
	from := e.prefixWidth(runes, first)
	to := from
	if last := s.To - c.From - 1; last >= 0 {
		to = e.prefixWidth(runes, last+1)
	}
	s.Curly = annotation.Curly{From: from, To: to}
}

// markOffset measures a marked text boundary. Boundaries after the first
// character sit one pixel right of the preceding glyph.
func (e *engine) markOffset(runes []rune, m *annotation.TextMark) float64 {
	if m.Char <= 0 {
		m.Char = 0
		return 0
	}
	return e.prefixWidth(runes, m.Char) + 1
}
