package layout

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/spantower/pkg/annotation"
)

func snap(v float64) float64 { return math.Trunc(v) + 0.5 }

func (e *engine) setSpanHeight(i int, h float64) {
	if i >= len(e.spanHeights) {
		e.spanHeights = append(e.spanHeights, make([]float64, i+1-len(e.spanHeights))...)
	}
	e.spanHeights[i] = h
}

// layoutRows places span boxes within their chunks and chunks within rows.
// Chunk x positions are relative to the canvas; box positions stay relative
// to their chunk and row until [engine.finish] translates them.
func (e *engine) layoutRows() {
	d := e.doc
	m := e.cfg.Margin
	k := e.k
	rowStart := e.rowStart()

	currentX := rowStart
	sentenceToggle := 0
	sentenceNumber := 1
	rowIndex := 0
	row := &annotation.Row{Index: rowIndex, Sentence: sentenceNumber}
	open := make(map[int]*annotation.TextMark)
	e.spanHeights = nil
	e.markedRows = nil

	for ci, chunk := range d.Chunks {
		var levels []reservation
		var hasLeft, hasRight, hasInternal, hasAnnotations bool
		chunkFrom, chunkTo := math.Inf(1), 0.0
		var spacing, spacingRowBreak float64
		spacingChunk := 0

		// leftArc widens the gap before the chunk so the shortest label of
		// an arc to an already placed span fits.
		leftArc := func(other *annotation.Span, originType, arcType string, bx float64) {
			oc := other.Chunk
			if oc == nil || oc.Row == nil {
				hasRight = true
				return
			}
			labels := e.arcLabels(originType, arcType)
			border := rowStart
			if oc.Row.Index == rowIndex {
				border = oc.TextX + other.Right
			}
			labelNo := 0
			if e.cfg.Abbrevs {
				labelNo = len(labels) - 1
			}
			smallest := e.arcWidth(labels[labelNo]) + 2*k.MinArcSlant
			if gap := smallest - (currentX + bx - border); !hasLeft || spacing < gap {
				spacing = gap
				spacingChunk = oc.Index + 1
			}
			if gap := smallest - bx; !hasLeft || spacingRowBreak < gap {
				spacingRowBreak = gap
			}
			hasLeft = true
		}

		for _, span := range chunk.Spans {
			var spanHeight float64
			y := -e.textM.Height - e.cfg.CurlyHeight
			x := (span.Curly.From + span.Curly.To) / 2

			yy := y + e.spanM.Y + k.BoxTextMarginY
			hh := e.spanM.Height - 2*k.BoxTextMarginY
			ww := span.Width
			xx := x - ww/2

			bx := xx - m.X
			by := yy - m.Y
			bw := ww + 2*m.X
			bh := hh + 2*m.Y
			if e.cfg.RoundCoordinates {
				x = snap(x)
				bx = snap(bx)
			}
			span.Curly.X = x

			if span.Marked != "" {
				chunkFrom = min(chunkFrom, bx-k.MarkedSpanSize)
				chunkTo = max(chunkTo, bx+bw+k.MarkedSpanSize)
				spanHeight = max(spanHeight, bh+2*k.MarkedSpanSize)
			}
			if span.ShadowClass != "" {
				chunkFrom = min(chunkFrom, bx-k.RectShadowSize)
				chunkTo = max(chunkTo, bx+bw+k.RectShadowSize)
				spanHeight = max(spanHeight, bh+2*k.RectShadowSize)
			}
			span.Box = annotation.Box{X: bx, Y: by, W: bw, H: bh}
			span.PlainBox = annotation.Box{X: xx, Y: yy, W: ww, H: hh}
			span.Right = bx + bw
			if span.Marked == "" && span.ShadowClass == "" {
				chunkFrom = min(chunkFrom, bx)
				chunkTo = max(chunkTo, bx+bw)
				spanHeight = max(spanHeight, bh)
			}

			span.YAdjust = e.reserve(span, bx, bw, bh, &levels)
			span.Box.Y -= span.YAdjust

			// Spans are sorted so heights grow within a tower.
			span.Height = span.YAdjust + hh + 3*m.Y + e.cfg.CurlyHeight + e.cfg.ArcSpacing
			e.setSpanHeight(span.LineIndex*2, span.Height)
			span.TextY = -e.textM.Height - e.cfg.CurlyHeight - span.YAdjust

			if span.DrawCurly {
				chunkFrom = min(chunkFrom, span.Curly.From)
				chunkTo = max(chunkTo, span.Curly.To)
				spanHeight = max(spanHeight, e.cfg.CurlyHeight)
			}

			for _, arc := range span.Incoming {
				origin := arc.OriginSpan
				if origin.Chunk != nil && origin.Chunk.Index == chunk.Index {
					hasInternal = true
				}
				leftArc(origin, origin.Type, arc.Type, bx)
			}
			for _, arc := range span.Outgoing {
				leftArc(arc.TargetSpan, span.Type, arc.Type, bx)
			}

			if span.YAdjust != 0 {
				spanHeight += span.YAdjust
			} else {
				spanHeight += e.cfg.CurlyHeight
			}
			hasAnnotations = true
		}

		chunk.Right = chunkTo
		textWidth := e.textWidths[ci]
		boxX := -min(chunkFrom, 0)
		boxWidth := max(textWidth, chunkTo) - min(0, chunkFrom)
		if spacing > 0 {
			currentX += spacing
		}
		var rightBorder float64
		switch {
		case hasRight:
			rightBorder = k.ArcHorizontalSpacing
		case hasInternal:
			rightBorder = k.ArcSlant
		}

		lastX := currentX
		lastRow := row

		if chunk.Sentence > 0 {
			for sentenceNumber < chunk.Sentence {
				sentenceNumber++
				d.Rows = append(d.Rows, row)
				sentenceToggle = 1 - sentenceToggle
				rowIndex++
				row = &annotation.Row{Index: rowIndex, BackgroundIndex: sentenceToggle}
			}
			sentenceToggle = 1 - sentenceToggle
		}

		overflow := currentX+boxWidth+rightBorder >= e.canvasWidth-2*m.X && len(row.Chunks) > 0
		if chunk.Sentence > 0 || overflow {
			currentX = rowStart
			switch {
			case hasLeft:
				currentX += k.ArcHorizontalSpacing
				e.maxTextWidth = max(e.maxTextWidth, textWidth+k.ArcHorizontalSpacing)
			case hasInternal:
				currentX += k.ArcSlant
			}
			if spacingRowBreak > 0 {
				currentX += spacingRowBreak
				spacing = 0
			}
			d.Rows = append(d.Rows, row)
			rowIndex++
			row = &annotation.Row{Index: rowIndex, BackgroundIndex: sentenceToggle}
		}

		// Highlights still open at a row break end on the previous row.
		if row != lastRow {
			for _, id := range slices.Sorted(maps.Keys(open)) {
				mark := open[id]
				if mark.Offset != lastX {
					e.markedRows = append(e.markedRows, markedRow{lastRow, mark.Offset, lastX + boxX, mark.Kind})
				}
				mark.Offset = currentX
			}
		}
		for _, mark := range chunk.MarkedTextStart {
			mark.Offset += currentX + boxX
			open[mark.ID] = mark
		}
		for _, mark := range chunk.MarkedTextEnd {
			mark.Offset += currentX + boxX
			start, ok := open[mark.ID]
			if !ok {
				continue
			}
			delete(open, mark.ID)
			e.markedRows = append(e.markedRows, markedRow{row, start.Offset, mark.Offset, start.Kind})
		}

		if hasAnnotations {
			row.HasAnnotations = true
		}
		if chunk.Sentence > 0 {
			sentenceNumber++
			row.Sentence = sentenceNumber
		}

		// Center the chunks between the arc endpoint and this chunk in the
		// gap that was opened.
		if spacing > 0 && len(row.Chunks) > 0 {
			spacing /= 2
			for i := max(spacingChunk, row.Chunks[0].Index); i < chunk.Index; i++ {
				d.Chunks[i].TextX += spacing
			}
		}

		row.Chunks = append(row.Chunks, chunk)
		chunk.Row = row
		chunk.TextX = currentX + boxX
		currentX += spaceWidth(chunk.NextSpace) + boxWidth
	}
	d.Rows = append(d.Rows, row)
}
