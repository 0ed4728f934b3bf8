// Package pkg provides the core libraries for Spantower annotation layout.
//
// # Overview
//
// Spantower turns annotated text into geometry: the text is broken into word
// chunks and wrapped into rows, annotated spans are stacked as boxes above
// the words they cover, and relations are routed as arcs between the boxes.
// The result is a renderer-agnostic layout model. The pkg directory is
// organized into four areas:
//
//  1. Input - [source] payload decoding, [collection] and [config]
//  2. Domain - [annotation] graph construction and [render] layout
//  3. Orchestration - [pipeline], [session], [cache]
//  4. Support - [errors], [messages], [fonts], [io], [observability]
//
// # Architecture
//
// The data flow of one layout pass:
//
//	JSON payload
//	     ↓
//	[source] package (decode, tokens, sentences)
//	     ↓
//	[annotation] package (spans, arcs, chunks; data problems become messages)
//	     ↓
//	[render/spans/ordering] + [render/spans/layout] (towers, rows, arcs)
//	     ↓
//	layout.Model (JSON)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{Path: "doc.json"})
//	if err != nil {
//	    return err
//	}
//	for _, m := range res.Messages {
//	    fmt.Println(m)
//	}
//	return io.WriteModelFile("doc.layout.json", res.Model)
//
// Lower-level, without caching:
//
//	src, _ := source.Decode(data)
//	src.Prepare()
//	var msgs messages.Collector
//	doc := annotation.Build(src, collection.Default(), &msgs)
//	model := layout.Build(doc, config.Default(), layout.WithSink(&msgs))
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/render/spans/...       # Layout engine
//	go test -run Example                 # Examples only
//
// [source]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/source
// [collection]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/collection
// [config]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/config
// [annotation]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/annotation
// [render]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/render
// [render/spans/ordering]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/render/spans/ordering
// [render/spans/layout]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/render/spans/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/errors
// [messages]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/messages
// [fonts]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/fonts
// [io]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/spantower/pkg/observability
package pkg
