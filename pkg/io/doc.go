// Package io reads document payloads and writes layout models.
//
// # Documents
//
// A document payload is the JSON object understood by [source.Decode]:
//
//	{
//	  "text": "John gave Mary a book.",
//	  "entities": [["T1", "Person", 0, 4], ["T2", "Person", 10, 14]],
//	  "triggers": [["T3", "Give", 5, 9]],
//	  "events": [["E1", "T3", [["Giver", "T1"], ["Recipient", "T2"]]]]
//	}
//
// Use [ReadDocumentFile] to read a payload from a path, or [ReadDocument]
// to read from any io.Reader. The returned document is decoded but not
// prepared; the pipeline prepares it before building the annotation graph.
//
// # Models
//
// A [layout.Model] is written as indented JSON with [WriteModel] or
// [WriteModelFile]. [MarshalModel] and [UnmarshalModel] produce and parse
// the compact form stored in caches. Marshalling is deterministic: the same
// model always yields the same bytes.
//
// [source.Decode]: github.com/matzehuels/spantower/pkg/source.Decode
// [layout.Model]: github.com/matzehuels/spantower/pkg/render/spans/layout.Model
package io
