package layout

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/collection"
)

const arrowNone = "none"

// jumpHeights seeds the height table and records how high every arc has to
// jump to clear the spans between its endpoints.
func (e *engine) jumpHeights() {
	maxLine := -1
	for _, s := range e.doc.Spans() {
		maxLine = max(maxLine, s.LineIndex)
	}
	if n := 2 * (maxLine + 1); len(e.spanHeights) < n {
		e.spanHeights = append(e.spanHeights, make([]float64, n-len(e.spanHeights))...)
	}
	for i, h := range e.spanHeights {
		if h < e.cfg.ArcStartHeight {
			e.spanHeights[i] = e.cfg.ArcStartHeight
		}
	}

	for _, a := range e.doc.Arcs {
		a.JumpHeight = 0
		from, to := a.OriginSpan, a.TargetSpan
		if from.LineIndex > to.LineIndex {
			from, to = to, from
		}
		lo, hi := from.LineIndex+1, to.LineIndex-1
		if sameChunk(from, to) {
			lo, hi = from.LineIndex, to.LineIndex
		}
		for i := lo; i <= hi; i++ {
			a.JumpHeight = max(a.JumpHeight, e.spanHeights[i*2])
		}
	}
}

func sameChunk(a, b *annotation.Span) bool {
	return a.Chunk != nil && b.Chunk != nil && a.Chunk.Index == b.Chunk.Index
}

// arcLess orders arcs so that those with the least to clear are routed
// first and therefore lowest.
func arcLess(a, b *annotation.Arc) bool {
	if a.JumpHeight != b.JumpHeight {
		return a.JumpHeight < b.JumpHeight
	}
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	ha := a.OriginSpan.Height + a.TargetSpan.Height
	hb := b.OriginSpan.Height + b.TargetSpan.Height
	if ha != hb {
		return ha < hb
	}
	return a.OriginSpan.Height < b.OriginSpan.Height
}

// layoutArcs routes every arc and emits one line per row it crosses.
func (e *engine) layoutArcs() {
	e.jumpHeights()

	arcs := slices.Clone(e.doc.Arcs)
	sort.SliceStable(arcs, func(i, j int) bool { return arcLess(arcs[i], arcs[j]) })
	for _, a := range arcs {
		if a.OriginSpan.Chunk == nil || a.TargetSpan.Chunk == nil ||
			a.OriginSpan.Chunk.Row == nil || a.TargetSpan.Chunk.Row == nil {
			continue
		}
		e.routeArc(a)
	}
}

func (e *engine) routeArc(a *annotation.Arc) {
	d := e.doc
	k := e.k
	m := e.cfg.Margin
	origin, target := a.OriginSpan, a.TargetSpan
	_, num := collection.SplitNumber(a.Type)

	leftToRight := origin.LineIndex < target.LineIndex
	left, right := target, origin
	if leftToRight {
		left, right = origin, target
	}

	desc, _ := e.coll.ArcDesc(origin.Type, a.Type)
	color := e.coll.ArcColor(origin.Type, a.Type)
	hashless := strings.ReplaceAll(color, "#", "")
	myHead := e.coll.ArrowHead(origin.Type, a.Type)
	head := myHead
	if head == "" {
		head = collection.DefaultArrowHead
	}
	if _, ok := d.Arrows[head+","+hashless]; !ok {
		e.makeArrow(head + "," + hashless)
	}

	leftX, rightX := left.Chunk.TextX, right.Chunk.TextX
	leftRow, rightRow := left.Chunk.Row.Index, right.Chunk.Row.Index

	lo, hi := left.LineIndex*2+1, right.LineIndex*2-1
	if sameChunk(left, right) {
		lo, hi = left.LineIndex*2, right.LineIndex*2
	}
	var height float64
	for i := lo; i <= hi; i++ {
		height = max(height, e.spanHeights[i])
	}
	height += e.cfg.ArcSpacing
	for i := lo; i <= hi; i++ {
		e.spanHeights[i] = max(e.spanHeights[i], height)
	}
	height += 0.5

	ufo := sameChunk(origin, target)
	reverse := false
	if ufo {
		reverse = leftX+left.Box.X+left.Box.W/2 < rightX+right.Box.X+right.Box.W/2
	}
	ufoMod := 1.0
	if ufo {
		ufoMod = 0.5
		if reverse {
			ufoMod = -0.5
		}
	}

	symHead := arrowNone
	if desc.Symmetric && myHead != "" {
		symHead = myHead
	}
	lSpec, rSpec := symHead, head
	if !leftToRight {
		lSpec, rSpec = head, symHead
	}
	lArrow := e.arrowID(lSpec + "," + hashless)
	rArrow := e.arrowID(rSpec + "," + hashless)

	labels := e.coll.ArcLabels(origin.Type, a.Type)
	for ri := leftRow; ri <= rightRow; ri++ {
		row := d.Rows[ri]
		row.HasAnnotations = true

		from := k.SentNumMargin
		if ri == leftRow {
			from = leftX + left.Box.X
			if !reverse {
				from += left.Box.W
			}
		}
		to := e.canvasWidth - 2*m.Y
		if ri == rightRow {
			to = rightX + right.Box.X
			if reverse {
				to += right.Box.W
			}
		}

		label := e.coll.ArcDisplayForm(origin.Type, a.Type)
		if e.cfg.Abbrevs && len(labels) > 0 {
			maxLength := (to - from) - k.ArcSlant
			for i := 1; e.arcWidth(label) > maxLength && i < len(labels); i++ {
				label = labels[i]
			}
		}

		line := &annotation.ArcLine{
			Arc:       a,
			From:      from,
			To:        to,
			Height:    -height,
			Color:     color,
			DashArray: desc.DashArray,
			Label:     label,
			UFO:       ufo,
		}
		if num != "" {
			line.Label, _ = collection.SplitNumber(label)
			line.Subscript = num
		}

		w := e.arcWidth(label)
		line.TextBox = annotation.Box{X: (from + to - w) / 2, Y: -height - e.arcM.Height/2, W: w, H: e.arcM.Height}
		if e.cfg.RoundCoordinates {
			height = snap(height)
		}

		textStart := line.TextBox.X - k.ArcTextMargin
		textEnd := line.TextBox.X + w + k.ArcTextMargin
		if from > to {
			textStart, textEnd = textEnd, textStart
		}
		line.TextStart, line.TextEnd = textStart, textEnd

		lCorner := from + ufoMod*k.ArcSlant
		rCorner := to - ufoMod*k.ArcSlant
		var lControl, rControl float64
		if ufo {
			lControl = lCorner + 2*ufoMod*k.ReverseArcControlX
			rControl = rCorner - 2*ufoMod*k.ReverseArcControlX
		} else {
			lCorner = min(lCorner, textStart)
			rCorner = max(rCorner, textEnd)
			lControl = k.SmoothArcSteepness*from + (1-k.SmoothArcSteepness)*lCorner
			rControl = k.SmoothArcSteepness*to + (1-k.SmoothArcSteepness)*rCorner
		}

		lTextY := left.Box.Y + m.Y
		if leftToRight || a.Equiv {
			lTextY = left.Box.Y + left.Box.H/2
		}
		rTextY := right.Box.Y + right.Box.H/2
		if leftToRight && !a.Equiv {
			rTextY = right.Box.Y + m.Y
		}

		line.Sides = [2]annotation.ArcSide{
			{X0: textStart, X1: lCorner, X2: lControl, X3: from, Y0: -height, Y3: lTextY, EdgeRow: ri == leftRow, Arrow: lArrow},
			{X0: textEnd, X1: rCorner, X2: rControl, X3: to, Y0: -height, Y3: rTextY, EdgeRow: ri == rightRow, Arrow: rArrow},
		}
		row.MaxArcHeight = max(row.MaxArcHeight, height)
		row.Lines = append(row.Lines, line)
	}
}

// makeArrow registers the arrowhead for a "type,size,color" spec and
// returns its marker id. Type "none" has no marker.
func (e *engine) makeArrow(spec string) string {
	parts := strings.Split(spec, ",")
	if parts[0] == arrowNone {
		return ""
	}
	var size, color string
	if len(parts) > 1 {
		size = parts[1]
	}
	if len(parts) > 2 {
		color = parts[2]
	}
	if color == "" {
		color, size = size, "5"
	}
	sz, err := strconv.ParseFloat(size, 64)
	if err != nil {
		sz = 5
	}
	id := "arrow_" + strings.ReplaceAll(spec, ",", "_")
	e.doc.Arrows[spec] = annotation.Arrow{ID: id, Type: parts[0], Size: sz, Color: hashColor(color)}
	return id
}

func (e *engine) arrowID(spec string) string {
	return e.doc.Arrows[spec].ID
}
