package annotation

import (
	"reflect"
	"testing"

	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/source"
)

const giveJSON = `{
	"text": "John gave Mary a book.",
	"entities": [["T1", "Person", 0, 4], ["T2", "Person", 10, 14]],
	"triggers": [["T3", "Give", 5, 9]],
	"events": [["E1", "T3", [["Giver", "T1"], ["Recipient", "T2"]]]]
}`

func build(t *testing.T, payload string) (*Document, *messages.Collector) {
	t.Helper()
	src, err := source.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	src.Prepare()
	var c messages.Collector
	return Build(src, nil, &c), &c
}

func TestBuildGive(t *testing.T) {
	doc, msgs := build(t, giveJSON)

	if n := len(msgs.Messages()); n != 0 {
		t.Errorf("messages = %v, want none", msgs.Messages())
	}
	if got := len(doc.Chunks); got != 5 {
		t.Fatalf("chunks = %d, want 5", got)
	}
	if got := len(doc.Arcs); got != 2 {
		t.Fatalf("arcs = %d, want 2", got)
	}
	for _, arc := range doc.Arcs {
		if arc.Dist < 1 {
			t.Errorf("arc %s->%s dist = %d, want >= 1", arc.Origin, arc.Target, arc.Dist)
		}
		if arc.Origin != "E1" {
			t.Errorf("arc origin = %s, want E1", arc.Origin)
		}
	}

	ev, ok := doc.Span("E1")
	if !ok {
		t.Fatal("event span E1 missing")
	}
	if ev.GeneralType != GeneralTrigger || ev.Type != "Give" || ev.From != 5 || ev.To != 9 {
		t.Errorf("E1 = %s %s [%d,%d)", ev.GeneralType, ev.Type, ev.From, ev.To)
	}
	if ev.Text != "gave" {
		t.Errorf("E1.Text = %q, want gave", ev.Text)
	}
	if len(ev.Outgoing) != 2 || ev.NumArcs != 2 || ev.TotalDist != 2 {
		t.Errorf("E1 outgoing=%d numArcs=%d totalDist=%d", len(ev.Outgoing), ev.NumArcs, ev.TotalDist)
	}
	if _, ok := doc.Span("T3"); ok {
		t.Error("trigger template should not be a span")
	}

	john, _ := doc.Span("T1")
	if john.Chunk.Index != 0 || len(john.Incoming) != 1 {
		t.Errorf("T1 chunk=%d incoming=%d", john.Chunk.Index, len(john.Incoming))
	}
}

func TestBuildIdempotent(t *testing.T) {
	a, _ := build(t, giveJSON)
	b, _ := build(t, giveJSON)

	shape := func(d *Document) []any {
		var out []any
		for _, s := range d.Spans() {
			out = append(out, s.ID, s.Type, s.From, s.To, s.Chunk.Index, s.TotalDist, s.NumArcs)
		}
		for _, arc := range d.Arcs {
			out = append(out, arc.Origin, arc.Target, arc.Type, arc.Dist)
		}
		for _, c := range d.Chunks {
			out = append(out, c.Index, c.From, c.To, c.Text, c.Space, len(c.Spans))
		}
		return out
	}
	if !reflect.DeepEqual(shape(a), shape(b)) {
		t.Error("two builds of the same input differ")
	}
}

func TestChunkInvariants(t *testing.T) {
	doc, _ := build(t, `{
		"text": "New York is  big. Really big.",
		"entities": [["T1", "City", 0, 8], ["T2", "Size", 13, 16], ["T3", "Phrase", 13, 24]]
	}`)

	want := []string{"New York", "is", "big. Really", "big."}
	var got []string
	for _, c := range doc.Chunks {
		got = append(got, c.Text)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chunks = %q, want %q", got, want)
	}

	prevTo := 0
	for i, c := range doc.Chunks {
		if c.Index != i {
			t.Errorf("chunk %d index = %d", i, c.Index)
		}
		if c.From > c.To {
			t.Errorf("chunk %d from %d > to %d", i, c.From, c.To)
		}
		if c.From < prevTo {
			t.Errorf("chunk %d overlaps its predecessor", i)
		}
		prevTo = c.To
		for _, s := range c.Spans {
			if s.To > c.To || s.Chunk != c {
				t.Errorf("span %s not contained by chunk %d", s.ID, i)
			}
		}
	}
	if doc.Chunks[2].Space != " \u00a0" {
		t.Errorf("space before big = %q", doc.Chunks[2].Space)
	}
	if doc.Chunks[1].NextSpace != doc.Chunks[2].Space {
		t.Error("NextSpace does not match the following chunk's Space")
	}
}

func TestSentences(t *testing.T) {
	doc, _ := build(t, `{"text": "One.\n\nTwo.\nThree.", "entities": [["T1", "X", 0, 4]]}`)
	var got []int
	for _, c := range doc.Chunks {
		got = append(got, c.Sentence)
	}
	if want := []int{0, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("sentences = %v, want %v", got, want)
	}
}

func TestReferenceErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    errors.Code
	}{
		{"missing trigger", `{"text": "a b", "events": [["E1", "T9", []]]}`, errors.ErrCodeDataReference},
		{"missing role target", `{"text": "a b", "entities": [["T1", "X", 0, 1]], "relations": [["R1", "Rel", "T1", "T9"]]}`, errors.ErrCodeDataReference},
		{"missing attribute span", `{"text": "a b", "attributes": [["A1", "Negation", "T9"]]}`, errors.ErrCodeDataReference},
		{"missing modification span", `{"text": "a b", "modifications": [["M1", "Negation", "T9"]]}`, errors.ErrCodeDataReference},
		{"missing comment target", `{"text": "a b", "comments": [["T9", "Note", "hi"]]}`, errors.ErrCodeDataReference},
		{"span out of range", `{"text": "a b", "entities": [["T1", "X", 2, 40]]}`, errors.ErrCodeOffsetRange},
		{"unknown attribute", `{"text": "a b", "entities": [["T1", "X", 0, 1]], "attributes": [["A1", "Odd", "T1"]]}`, errors.ErrCodeAttributeType},
		{"short equivalence", `{"text": "a b", "entities": [["T1", "X", 0, 1]], "equivs": [["*", "Equiv", "T1", "T9"]]}`, errors.ErrCodeData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msgs := build(t, tt.payload)
			if !msgs.HasCode(tt.code) {
				t.Errorf("messages = %v, want code %s", msgs.Messages(), tt.code)
			}
		})
	}
}

func TestRelationDroppedTarget(t *testing.T) {
	doc, _ := build(t, `{"text": "a b", "entities": [["T1", "X", 0, 1]], "relations": [["R1", "Rel", "T1", "T9"]]}`)
	if len(doc.Arcs) != 0 {
		t.Errorf("arcs = %d, want 0", len(doc.Arcs))
	}
}

func TestEquivChain(t *testing.T) {
	doc, _ := build(t, `{
		"text": "a b c",
		"entities": [["T1", "X", 0, 1], ["T2", "X", 2, 3], ["T3", "X", 4, 5]],
		"equivs": [["*", "Equiv", "T3", "T1", "T2", "T9"]]
	}`)
	if len(doc.Arcs) != 2 {
		t.Fatalf("arcs = %d, want 2", len(doc.Arcs))
	}
	wantPairs := [][2]string{{"T1", "T2"}, {"T2", "T3"}}
	for i, arc := range doc.Arcs {
		if !arc.Equiv || arc.Origin != wantPairs[i][0] || arc.Target != wantPairs[i][1] {
			t.Errorf("arc %d = %s->%s equiv=%v, want %v", i, arc.Origin, arc.Target, arc.Equiv, wantPairs[i])
		}
	}
	ed, ok := doc.EventDesc("*0*2")
	if !ok {
		t.Fatal("event descriptor *0*2 missing")
	}
	if !reflect.DeepEqual(ed.LeftSpans, []string{"T1", "T2"}) || !reflect.DeepEqual(ed.RightSpans, []string{"T3"}) {
		t.Errorf("left=%v right=%v", ed.LeftSpans, ed.RightSpans)
	}
	if ed.EquivArc != doc.Arcs[1] {
		t.Error("EquivArc not linked")
	}
}

func TestComments(t *testing.T) {
	doc, _ := build(t, `{
		"text": "a b",
		"entities": [["T1", "X", 0, 1]],
		"triggers": [["T2", "Ev", 2, 3]],
		"events": [["E1", "T2", []], ["E2", "T2", []]],
		"comments": [
			["T1", "Warning", "first"],
			["T1", "Unconfirmed", "second"],
			["T2", "AnnotatorNotes", "note"],
			[["sent", 0], "Note", "s1"],
			[["sent", 0], "Note", "s2"]
		]
	}`)

	t1, _ := doc.Span("T1")
	if t1.Comment == nil || t1.Comment.Text != "first\nsecond" {
		t.Fatalf("T1 comment = %+v", t1.Comment)
	}
	if t1.ShadowClass != "Warning" {
		t.Errorf("T1 shadow = %q, want Warning", t1.ShadowClass)
	}
	for _, id := range []string{"E1", "E2"} {
		s, _ := doc.Span(id)
		if s.AnnotatorNotes != "note" || s.ShadowClass != AnnotatorNotes {
			t.Errorf("%s notes=%q shadow=%q", id, s.AnnotatorNotes, s.ShadowClass)
		}
	}
	if c := doc.SentComment[0]; c == nil || c.Text != "s1\ns2" {
		t.Errorf("sentence comment = %+v", c)
	}
}

func TestCommentPriority(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{"", -1},
		{"Note", 0},
		{"Unconfirmed", 0},
		{"Incomplete", 1},
		{"Warning", 2},
		{"Error", 3},
		{"AnnotatorNotes", 4},
	}
	for _, tt := range tests {
		if got := priority(tt.kind); got != tt.want {
			t.Errorf("priority(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	s := newSpan("T1", "X", 0, 3, GeneralTrigger)
	s.Attributes["Negation"] = "true"
	s.Comment = &Comment{Kind: "Note", Text: "x"}
	c := s.Clone("E1")
	c.Attributes["Speculation"] = "true"
	c.Outgoing = append(c.Outgoing, &Arc{})

	if c.ID != "E1" || c.Type != "X" || c.From != 0 || c.To != 3 {
		t.Errorf("clone = %+v", c)
	}
	if len(s.Attributes) != 1 || len(s.Outgoing) != 0 {
		t.Error("clone shares containers with the original")
	}
	if c.Comment != nil {
		t.Error("clone should not carry the comment")
	}
}

func TestAttributesAndModifications(t *testing.T) {
	doc, _ := build(t, `{
		"text": "not here",
		"entities": [["T1", "X", 4, 8], ["T2", "Cue", 0, 3]],
		"attributes": [["A1", "Negation", "T1", true, "T2"], ["A2", "Level", "T1", "High"]],
		"modifications": [["M1", "Speculation", "T1"]]
	}`)
	t1, _ := doc.Span("T1")
	if !reflect.DeepEqual(t1.AttributeOrder, []string{"Negation", "Level"}) {
		t.Errorf("attribute order = %v", t1.AttributeOrder)
	}
	if !reflect.DeepEqual(t1.AttributeText, []string{"Negation", "Level: High"}) {
		t.Errorf("attribute text = %v", t1.AttributeText)
	}
	if !t1.Flags["Speculation"] {
		t.Error("modification flag not set")
	}
	if t2, _ := doc.Span("T2"); t2.Cue != CueClass {
		t.Errorf("cue = %q, want %s", t2.Cue, CueClass)
	}
}

func TestMarks(t *testing.T) {
	doc, msgs := build(t, `{
		"text": "John gave Mary a book.",
		"entities": [["T1", "Person", 0, 4], ["T2", "Person", 10, 14]],
		"relations": [["R1", "Knows", "T1", "T2"]],
		"marks": {
			"focus": [["T1"]],
			"match": [["0", "7"], ["R1"]],
			"edited": [["sent", "1"]]
		}
	}`)
	t1, _ := doc.Span("T1")
	if t1.Marked != "focus" {
		t.Errorf("T1 marked = %q, want focus", t1.Marked)
	}
	if doc.Arcs[0].Marked != "match" {
		t.Errorf("relation arc marked = %q, want match", doc.Arcs[0].Marked)
	}
	if !doc.MarkedSent[1] {
		t.Error("sentence 1 not marked")
	}

	start := doc.Chunks[0].MarkedTextStart
	end := doc.Chunks[1].MarkedTextEnd
	if len(start) != 1 || start[0].Char != 0 || !start[0].Start {
		t.Errorf("marked start = %+v", start)
	}
	if len(end) != 1 || end[0].Char != 2 {
		t.Errorf("marked end = %+v", end)
	}
	if n := len(msgs.Messages()); n != 0 {
		t.Errorf("messages = %v", msgs.Messages())
	}
}

func TestBuildEmpty(t *testing.T) {
	doc, _ := build(t, `{"text": ""}`)
	if len(doc.Chunks) != 0 || len(doc.Arcs) != 0 || len(doc.Spans()) != 0 {
		t.Errorf("empty document produced %d chunks, %d arcs", len(doc.Chunks), len(doc.Arcs))
	}
}

func TestMarkedTextPastLastChunk(t *testing.T) {
	doc, msgs := build(t, `{
		"text": "John gave Mary a book.   ",
		"marks": {"match": [["0", "24"], ["5", "9"]]}
	}`)

	if got := msgs.Count(messages.SeverityError); got != 1 {
		t.Errorf("errors = %d, want 1 (%v)", got, msgs.Messages())
	}
	starts := 0
	for _, c := range doc.Chunks {
		starts += len(c.MarkedTextStart)
	}
	if starts != 2 {
		t.Errorf("marked starts = %d, want 2", starts)
	}
	if got := len(doc.Chunks[1].MarkedTextStart); got != 1 {
		t.Fatalf("chunk 1 marked starts = %d, want 1", got)
	}
	if got := doc.Chunks[1].MarkedTextStart[0].Char; got != 0 {
		t.Errorf("chunk 1 start char = %d, want 0", got)
	}
	last := doc.Chunks[len(doc.Chunks)-1]
	if got := len(last.MarkedTextEnd); got != 1 {
		t.Errorf("last chunk marked ends = %d, want 1", got)
	}
	if got := len(doc.Chunks[1].MarkedTextEnd); got != 1 {
		t.Errorf("chunk 1 marked ends = %d, want 1", got)
	}
}
