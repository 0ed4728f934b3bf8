// Package nodelink renders the annotation graph as a node-link diagram.
//
// # Overview
//
// The span layout shows annotations on top of the text. For debugging data
// it often helps to see the bare graph instead: every span is a node,
// every arc an edge. This package produces that view with Graphviz.
//
// # Usage
//
// Convert a document to DOT, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{Collection: coll})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include offsets, tower and attributes
//   - Collection: colors nodes and edges like the span layout does
//
// # DOT Format
//
// Nodes are laid out left to right in text order (rankdir=LR). Equivalence
// arcs are drawn dashed and undirected, relation arcs use their configured
// color and dash pattern.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
