// Package nesting measures how spans of one chunk nest inside each other.
//
// Two sweeps run over the spans of a chunk: left to right by start offset
// and right to left by end offset, longer spans first on ties. Each sweep
// keeps the spans that are still open. A span's depth is the number of open
// spans when it is reached; every open span it meets gains one height. The
// effective values are the maxima of both sweeps, which keeps crossing
// brackets tolerable without exact containment checks.
package nesting

import (
	"sort"

	"github.com/matzehuels/spantower/pkg/annotation"
)

// Tier is the visual size class derived from nesting.
type Tier int

const (
	// Grow marks purely nesting spans.
	Grow Tier = -1
	// Normal is the default tier.
	Normal Tier = 0
	// Shrink marks purely nested spans.
	Shrink Tier = 1
)

// TierOf classifies a span after [Analyze]. Depth 1 does not shrink.
func TierOf(s *annotation.Span) Tier {
	switch {
	case s.NestingDepth > 1 && s.NestingHeight == 0:
		return Shrink
	case s.NestingDepth == 0 && s.NestingHeight > 0:
		return Grow
	}
	return Normal
}

// Analyze computes the nesting depth and height of every span in c and
// returns the spans ordered by nesting height, highest first.
func Analyze(c *annotation.Chunk) []*annotation.Span {
	n := len(c.Spans)
	if n == 0 {
		return nil
	}
	order := make([]*annotation.Span, n)
	for i := range c.Spans {
		order[i] = c.Spans[n-1-i]
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.From != b.From {
			return a.From < b.From
		}
		return a.Len() > b.Len()
	})
	var open []*annotation.Span
	for _, cur := range order {
		cur.NestingHeightLR, cur.NestingDepthLR = 0, 0
		open = sweep(open, func(o *annotation.Span) bool {
			if o.To > cur.From {
				o.NestingHeightLR++
				return true
			}
			return false
		})
		cur.NestingDepthLR = len(open)
		open = append(open, cur)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.To != b.To {
			return a.To > b.To
		}
		return a.Len() > b.Len()
	})
	open = open[:0]
	for _, cur := range order {
		cur.NestingHeightRL, cur.NestingDepthRL = 0, 0
		open = sweep(open, func(o *annotation.Span) bool {
			if o.From < cur.To {
				o.NestingHeightRL++
				return true
			}
			return false
		})
		cur.NestingDepthRL = len(open)
		open = append(open, cur)
	}

	for _, s := range order {
		s.NestingHeight = max(s.NestingHeightLR, s.NestingHeightRL)
		s.NestingDepth = max(s.NestingDepthLR, s.NestingDepthRL)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].NestingHeight > order[j].NestingHeight
	})
	return order
}

// sweep keeps the spans for which keep returns true.
func sweep(open []*annotation.Span, keep func(*annotation.Span) bool) []*annotation.Span {
	still := open[:0]
	for _, o := range open {
		if keep(o) {
			still = append(still, o)
		}
	}
	return still
}

// AnalyzeAll runs [Analyze] on every chunk of doc.
func AnalyzeAll(doc *annotation.Document) map[int][]*annotation.Span {
	out := make(map[int][]*annotation.Span, len(doc.Chunks))
	for _, c := range doc.Chunks {
		if order := Analyze(c); order != nil {
			out[c.Index] = order
		}
	}
	return out
}
