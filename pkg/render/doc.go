// Package render groups the visualizations of an annotation document.
//
// # Overview
//
// This package tree turns an annotation graph into geometry and diagrams:
//
//   - Span layout (in [spans] subpackages): text rows with span boxes and arcs
//   - Node-link diagrams (in [nodelink] subpackage): the bare graph via Graphviz
//
// # Span Layout
//
// The [spans] subpackages order spans into towers, measure nesting, lay out
// rows and arcs, and diff two layout snapshots:
//
//   - [spans/ordering]: span stacking, towers and labels
//   - [spans/nesting]: nesting depth and height
//   - [spans/layout]: row and arc geometry
//   - [spans/diff]: snapshot comparison
//
// # Node-Link Diagrams
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [spans]: github.com/matzehuels/spantower/pkg/render/spans
// [spans/ordering]: github.com/matzehuels/spantower/pkg/render/spans/ordering
// [spans/nesting]: github.com/matzehuels/spantower/pkg/render/spans/nesting
// [spans/layout]: github.com/matzehuels/spantower/pkg/render/spans/layout
// [spans/diff]: github.com/matzehuels/spantower/pkg/render/spans/diff
// [nodelink]: github.com/matzehuels/spantower/pkg/render/nodelink
package render
