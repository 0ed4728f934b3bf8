// Package spans provides the span-and-arc visualization engine.
//
// # Overview
//
// Annotated text is drawn as rows of text chunks with the annotated spans as
// labelled boxes above the text and the relations between them as arcs. This
// package tree implements the stages that turn an [annotation.Document] into
// a geometric layout:
//
//  1. Ordering ([ordering]): stack spans of a chunk, group identical intervals into towers, pick labels.
//  2. Nesting ([nesting]): measure how deeply spans of a chunk nest inside each other.
//  3. Layout ([layout]): break chunks into rows, place boxes and route arcs.
//  4. Diff ([diff]): compare two layout snapshots for incremental re-rendering.
//
// # Rendering Pipeline
//
//	doc := annotation.Build(src, coll, sink)
//	model := layout.Build(doc, cfg, layout.WithCollection(coll), layout.WithSink(sink))
//	changes := diff.Compare(prev, model)
//
// [layout.Build] runs ordering and nesting itself; call [ordering.Order]
// directly only to inspect towers and labels without a layout.
//
// [annotation.Document]: github.com/matzehuels/spantower/pkg/annotation.Document
// [ordering]: github.com/matzehuels/spantower/pkg/render/spans/ordering
// [nesting]: github.com/matzehuels/spantower/pkg/render/spans/nesting
// [layout]: github.com/matzehuels/spantower/pkg/render/spans/layout
// [diff]: github.com/matzehuels/spantower/pkg/render/spans/diff
package spans
