package layout

import "github.com/matzehuels/spantower/pkg/annotation"

// reservation is one level of the span stack of a chunk. Slots of one level
// never overlap horizontally.
type reservation struct {
	height float64
	curly  bool
	slots  []slot
}

type slot struct {
	from, to float64
	height   float64
}

func (s slot) overlaps(o slot) bool {
	return s.from < o.to && o.from < s.to
}

// reserve places a span box of width w and height h at x and returns its
// vertical offset above the text. The box goes into the lowest level it does
// not overlap; if every level overlaps, a new level is opened above them.
func (e *engine) reserve(span *annotation.Span, x, w, h float64, levels *[]reservation) float64 {
	s := slot{from: x, to: x + w, height: h}
	if span.DrawCurly {
		s.height += e.cfg.CurlyHeight
	}

	var height float64
	if len(*levels) > 0 {
		for i := range *levels {
			r := &(*levels)[i]
			height = r.height
			free := true
			for _, o := range r.slots {
				if o.overlaps(s) {
					free = false
					break
				}
			}
			if free {
				if !r.curly && span.DrawCurly {
					r.height += e.cfg.CurlyHeight
				}
				r.slots = append(r.slots, s)
				return r.height
			}
		}
		height += s.height + e.cfg.BoxSpacing
	}
	*levels = append(*levels, reservation{height: height, curly: span.DrawCurly, slots: []slot{s}})
	return height
}
