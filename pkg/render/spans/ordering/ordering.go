// Package ordering decides the vertical stacking order of spans.
//
// Spans sharing a chunk are sorted with [Less]; the sort runs twice so that
// spans whose order depends on the order of their arc partners can settle.
// Dependencies of higher order are left unresolved. Spans covering exactly
// the same interval form a tower, and the first span of each tower draws the
// curly brace.
package ordering

import (
	"sort"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/collection"
)

// Passes is the number of refinement rounds before the final sort.
const Passes = 2

// Less reports whether a is stacked below b: lower average arc distance
// first, then fewer arcs, then wider spans (narrower ones when neither span
// has arcs), then lower refed index sum, then type name.
func Less(a, b *annotation.Span) bool {
	if a.AvgDist != b.AvgDist {
		return a.AvgDist < b.AvgDist
	}
	if a.NumArcs != b.NumArcs {
		return a.NumArcs < b.NumArcs
	}
	diff := a.Len() - b.Len()
	if a.NumArcs == 0 && b.NumArcs == 0 {
		diff = -diff
	}
	if diff != 0 {
		return diff > 0
	}
	if a.RefedIndexSum != b.RefedIndexSum {
		return a.RefedIndexSum < b.RefedIndexSum
	}
	return a.Type < b.Type
}

func sortChunk(c *annotation.Chunk) {
	sort.SliceStable(c.Spans, func(i, j int) bool { return Less(c.Spans[i], c.Spans[j]) })
}

// Order runs every ordering stage on doc: tower ids, the refined per-chunk
// sort, towers and curly flags, labels and line indices.
func Order(doc *annotation.Document, coll *collection.Collection, abbrevs bool) {
	AssignTowerIDs(doc)
	Refine(doc)
	BuildTowers(doc)
	Labels(doc, coll, abbrevs)
	LineIndices(doc)
}

// AssignTowerIDs re-sorts doc.SortedSpans by interval midpoint and numbers
// the towers. It also derives every span's average arc distance.
func AssignTowerIDs(doc *annotation.Document) {
	spans := doc.SortedSpans
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].From+spans[i].To < spans[j].From+spans[j].To
	})

	towerID := -1
	var last *annotation.Span
	for _, s := range spans {
		if last == nil || last.From != s.From || last.To != s.To {
			towerID++
		}
		s.TowerID = towerID
		s.AvgDist = 0
		if s.NumArcs > 0 {
			s.AvgDist = float64(s.TotalDist) / float64(s.NumArcs)
		}
		last = s
	}
	doc.Towers = make([][]*annotation.Span, towerID+1)
}

// Refine sorts every chunk Passes times. After each pass a span's
// RefedIndexSum becomes the sum of the stacking indices of the spans at the
// other end of its arcs.
func Refine(doc *annotation.Document) {
	refine(doc, Passes)
}

func refine(doc *annotation.Document, passes int) {
	for range passes {
		for _, c := range doc.Chunks {
			sortChunk(c)
			for i, s := range c.Spans {
				s.IndexNumber = i
				s.RefedIndexSum = 0
			}
		}
		for _, arc := range doc.Arcs {
			arc.OriginSpan.RefedIndexSum += arc.TargetSpan.IndexNumber
			arc.TargetSpan.RefedIndexSum += arc.OriginSpan.IndexNumber
		}
	}
}

// BuildTowers applies the final sort and collects spans into doc.Towers in
// stacking order. The first span of a tower draws its curly brace.
func BuildTowers(doc *annotation.Document) {
	for _, c := range doc.Chunks {
		sortChunk(c)
		for _, s := range c.Spans {
			if s.TowerID >= len(doc.Towers) {
				continue
			}
			s.DrawCurly = len(doc.Towers[s.TowerID]) == 0
			doc.Towers[s.TowerID] = append(doc.Towers[s.TowerID], s)
		}
	}
}

// LineIndices numbers distinct intervals in midpoint order and records the
// first and last index per chunk. Chunks without spans keep -1.
func LineIndices(doc *annotation.Document) {
	for _, c := range doc.Chunks {
		c.FirstSpanIndex, c.LastSpanIndex = -1, -1
	}
	lineIndex := -1
	var last *annotation.Span
	for _, s := range doc.SortedSpans {
		if last == nil || last.From != s.From || last.To != s.To {
			lineIndex++
		}
		s.LineIndex = lineIndex
		if s.Chunk != nil {
			if s.Chunk.FirstSpanIndex < 0 {
				s.Chunk.FirstSpanIndex = lineIndex
			}
			s.Chunk.LastSpanIndex = lineIndex
		}
		last = s
	}
}
