// Package diff compares two layout snapshots.
//
// A re-render does not need to redraw everything: [Compare] reports which
// span boxes, chunks, arc segments and rows were added, removed or moved
// between two [layout.Model] values, so a drawing surface can animate the
// transition. Elements are matched by id:
//
//   - spans by span id
//   - chunks by chunk index
//   - arc segments by arc id and segment number ("E1/0#1" is the second row
//     of the first role arc of E1)
//   - rows by row index
//
// The comparison never looks at the annotation graph; both inputs are
// immutable snapshots.
package diff

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
)

// Kind is the kind of a change.
type Kind string

const (
	Added   Kind = "added"
	Removed Kind = "removed"
	Moved   Kind = "moved"
)

// Element is the kind of geometric element a change refers to.
type Element string

const (
	ElementSpan  Element = "span"
	ElementChunk Element = "chunk"
	ElementArc   Element = "arc"
	ElementRow   Element = "row"
)

// Change is one added, removed or moved element. From is the geometry in
// the previous snapshot and To in the next; the missing side is zero.
type Change struct {
	Element Element        `json:"element"`
	ID      string         `json:"id"`
	Kind    Kind           `json:"kind"`
	From    annotation.Box `json:"from"`
	To      annotation.Box `json:"to"`
}

// Changes groups the changes by element kind. Each group is sorted by id.
type Changes struct {
	Spans  []Change `json:"spans,omitempty"`
	Chunks []Change `json:"chunks,omitempty"`
	Arcs   []Change `json:"arcs,omitempty"`
	Rows   []Change `json:"rows,omitempty"`
}

// Len returns the total number of changes.
func (c Changes) Len() int {
	return len(c.Spans) + len(c.Chunks) + len(c.Arcs) + len(c.Rows)
}

// Empty reports whether the snapshots are geometrically identical.
func (c Changes) Empty() bool { return c.Len() == 0 }

// Count returns the number of changes of kind k across all groups.
func (c Changes) Count(k Kind) int {
	n := 0
	for _, group := range [][]Change{c.Spans, c.Chunks, c.Arcs, c.Rows} {
		for _, ch := range group {
			if ch.Kind == k {
				n++
			}
		}
	}
	return n
}

// String summarizes the changes, e.g. "+2 -0 ~5 (spans 3, chunks 1, arcs 3, rows 0)".
func (c Changes) String() string {
	return fmt.Sprintf("+%d -%d ~%d (spans %d, chunks %d, arcs %d, rows %d)",
		c.Count(Added), c.Count(Removed), c.Count(Moved),
		len(c.Spans), len(c.Chunks), len(c.Arcs), len(c.Rows))
}

// Compare returns the changes that turn prev into next. A nil snapshot has
// no elements.
func Compare(prev, next *layout.Model) Changes {
	return Changes{
		Spans:  compare(ElementSpan, spanBoxes(prev), spanBoxes(next)),
		Chunks: compare(ElementChunk, chunkBoxes(prev), chunkBoxes(next)),
		Arcs:   compare(ElementArc, arcBoxes(prev), arcBoxes(next)),
		Rows:   compare(ElementRow, rowBoxes(prev), rowBoxes(next)),
	}
}

func compare(el Element, prev, next map[string]annotation.Box) []Change {
	var out []Change
	for id, from := range prev {
		to, ok := next[id]
		switch {
		case !ok:
			out = append(out, Change{Element: el, ID: id, Kind: Removed, From: from})
		case to != from:
			out = append(out, Change{Element: el, ID: id, Kind: Moved, From: from, To: to})
		}
	}
	for id, to := range next {
		if _, ok := prev[id]; !ok {
			out = append(out, Change{Element: el, ID: id, Kind: Added, To: to})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func spanBoxes(m *layout.Model) map[string]annotation.Box {
	out := make(map[string]annotation.Box)
	if m == nil {
		return out
	}
	for _, s := range m.Spans {
		out[s.ID] = s.Box
	}
	return out
}

func chunkBoxes(m *layout.Model) map[string]annotation.Box {
	out := make(map[string]annotation.Box)
	if m == nil {
		return out
	}
	for _, r := range m.Rows {
		for _, c := range r.Chunks {
			out[strconv.Itoa(c.Index)] = annotation.Box{X: c.X, Y: c.Y}
		}
	}
	return out
}

func arcBoxes(m *layout.Model) map[string]annotation.Box {
	out := make(map[string]annotation.Box)
	if m == nil {
		return out
	}
	segment := make(map[string]int)
	for _, r := range m.Rows {
		for _, l := range r.Lines {
			n := segment[l.Arc]
			segment[l.Arc] = n + 1
			out[l.Arc+"#"+strconv.Itoa(n)] = annotation.Box{X: l.From, Y: l.Height, W: l.To - l.From}
		}
	}
	return out
}

func rowBoxes(m *layout.Model) map[string]annotation.Box {
	out := make(map[string]annotation.Box)
	if m == nil {
		return out
	}
	for _, r := range m.Rows {
		out[strconv.Itoa(r.Index)] = annotation.Box{Y: r.Y, W: m.CanvasWidth, H: r.Height}
	}
	return out
}
