package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/spantower/pkg/annotation"
)

// snapshot copies the layout state of the document into a Model.
func (e *engine) snapshot() *Model {
	d := e.doc
	model := &Model{
		CanvasWidth:  d.CanvasWidth,
		CanvasHeight: d.CanvasHeight,
		Rows:         make([]Row, 0, len(d.Rows)),
	}

	for _, r := range d.Rows {
		row := Row{
			Index:    r.Index,
			Y:        r.Y,
			YT:       r.YT,
			TextY:    r.TextY,
			Height:   r.Height,
			Sentence: r.Sentence,
			BgClass:  r.BgClass,
			Chunks:   make([]Chunk, 0, len(r.Chunks)),
		}
		for _, c := range r.Chunks {
			row.Chunks = append(row.Chunks, Chunk{
				Index:     c.Index,
				Text:      c.Text,
				From:      c.From,
				To:        c.To,
				X:         c.TextX,
				Y:         r.TextY,
				NextSpace: c.NextSpace,
			})
		}
		for _, l := range r.Lines {
			row.Lines = append(row.Lines, Line{
				Arc:         l.Arc.ID,
				Origin:      l.Arc.Origin,
				Target:      l.Arc.Target,
				Type:        l.Arc.Type,
				Label:       l.Label,
				Subscript:   l.Subscript,
				From:        l.From,
				To:          l.To,
				Height:      l.Height,
				JumpHeight:  l.Arc.JumpHeight,
				Color:       l.Color,
				DashArray:   l.DashArray,
				TextBox:     l.TextBox,
				TextStart:   l.TextStart,
				TextEnd:     l.TextEnd,
				Sides:       l.Sides,
				UFO:         l.UFO,
				Equiv:       l.Arc.Equiv,
				Marked:      l.Arc.Marked,
				ShadowClass: l.Arc.ShadowClass,
			})
		}
		model.Rows = append(model.Rows, row)
	}

	for _, s := range d.SortedSpans {
		if s.Chunk == nil || s.Chunk.Row == nil {
			continue
		}
		model.Spans = append(model.Spans, e.snapshotSpan(s))
	}

	for _, h := range d.TextHighlights {
		model.TextHighlights = append(model.TextHighlights, Highlight{Box: h.Box, Kind: h.Kind})
	}
	for _, l := range d.SentenceLinks {
		link := SentenceLink{
			Sentence: l.Sentence,
			X:        l.X,
			Y:        l.Y,
			HasBox:   l.HasBox,
			BoxX:     l.BoxX,
			BoxY:     l.BoxY,
			BgClass:  l.BgClass,
		}
		if c := d.SentComment[l.Sentence]; c != nil {
			link.Comment = c.Text
		}
		model.SentenceLinks = append(model.SentenceLinks, link)
	}
	for _, spec := range slices.Sorted(maps.Keys(d.Arrows)) {
		a := d.Arrows[spec]
		model.Arrows = append(model.Arrows, Arrow{ID: a.ID, Spec: spec, Type: a.Type, Size: a.Size, Color: a.Color})
	}
	return model
}

func (e *engine) snapshotSpan(s *annotation.Span) Span {
	colors := e.spanColors(s.Type)
	out := Span{
		ID:          s.ID,
		Type:        s.Type,
		Label:       s.GlyphedLabelText,
		Text:        s.Text,
		Chunk:       s.Chunk.Index,
		Row:         s.Chunk.Row.Index,
		Tower:       s.TowerID,
		LineIndex:   s.LineIndex,
		Box:         s.Box,
		PlainBox:    s.PlainBox,
		Curly:       s.Curly,
		DrawCurly:   s.DrawCurly,
		TextY:       s.TextY,
		Height:      s.Height,
		Highlight:   s.HighlightPos,
		Tier:        int(e.tiers[s]),
		BgColor:     colors.bg,
		LightColor:  colors.light,
		FgColor:     colors.fg,
		BorderColor: colors.border,
		DashArray:   s.DashArray,
		ShadowClass: s.ShadowClass,
		Marked:      s.Marked,
		Cue:         s.Cue,
		Warning:     s.Warning,
		Comment:     s.Comment,
		Attributes:  s.AttributeText,
	}
	if s.DrawCurly {
		out.CurlyColor = colors.curly
	}
	return out
}
