// Package source decodes annotated document payloads.
//
// A payload is a JSON object holding the document text and its annotation
// records as positional tuples:
//
//	{
//	  "text": "John gave Mary a book.",
//	  "entities": [["T1", "Person", 0, 4], ["T2", "Person", 10, 14]],
//	  "triggers": [["T3", "Give", 5, 9]],
//	  "events":   [["E1", "T3", [["Giver", "T1"], ["Recipient", "T2"]]]]
//	}
//
// All offsets count Unicode code points, not bytes. [Decode] parses a
// payload, [Document.Prepare] fills in default token and sentence offsets and
// normalizes them the way the layout engine expects.
package source

// NBSP is the no-break space substituted into runs of spaces.
const NBSP = ' '

// Offset is a half-open [from, to) code point interval.
type Offset [2]int

// From returns the start of the interval.
func (o Offset) From() int { return o[0] }

// To returns the end of the interval.
func (o Offset) To() int { return o[1] }

// TextBound is an entity or trigger record: [id, type, from, to].
type TextBound struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Role is one argument of an event.
type Role struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// Event is an event record: [id, triggerId, [[role, targetId], ...]].
type Event struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger"`
	Roles   []Role `json:"roles"`
}

// Relation is a binary relation record: [id, type, originId, targetId].
type Relation struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Origin string `json:"origin"`
	Target string `json:"target"`
}

// Equiv is an equivalence set record: [marker, type, spanId...].
type Equiv struct {
	Marker string   `json:"marker"`
	Type   string   `json:"type"`
	Spans  []string `json:"spans"`
}

// Attribute is an attribute record: [id, name, spanId, value, cueSpanId?].
// Bool is set when the value was given as JSON true.
type Attribute struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Span  string `json:"span"`
	Value string `json:"value"`
	Bool  bool   `json:"bool,omitempty"`
	Cue   string `json:"cue,omitempty"`
}

// Modification is a flag record: [id, flagName, spanId].
type Modification struct {
	ID   string `json:"id"`
	Flag string `json:"flag"`
	Span string `json:"span"`
}

// CommentTarget is an annotation id or, with IsSentence set, a sentence number.
type CommentTarget struct {
	ID         string `json:"id,omitempty"`
	Sentence   int    `json:"sentence,omitempty"`
	IsSentence bool   `json:"is_sentence,omitempty"`
}

// Comment is a comment record: [target, kind, text].
type Comment struct {
	Target CommentTarget `json:"target"`
	Kind   string        `json:"kind"`
	Text   string        `json:"text"`
}

// Mark kinds, in the order they are applied.
const (
	MarkEdited     = "edited"
	MarkFocus      = "focus"
	MarkMatchFocus = "matchfocus"
	MarkMatch      = "match"
)

// MarkKinds lists the mark kinds in application order.
var MarkKinds = []string{MarkEdited, MarkFocus, MarkMatchFocus, MarkMatch}

// Mark selects something to highlight. Its shape decides what:
//
//	["sent", "3"]           sentence 3
//	["equiv", type, spanId] the equivalence arcs of the set holding spanId
//	["12", "20"]            the text range [12, 20)
//	[spanId]                a span, or all event spans of a trigger id
//	[spanId, type, target]  the arc of that type from spanId to target
type Mark []string

// Marks maps a mark kind to its marks.
type Marks map[string][]Mark

// Document is a decoded payload.
type Document struct {
	Text            string         `json:"text"`
	Entities        []TextBound    `json:"entities"`
	Triggers        []TextBound    `json:"triggers"`
	Events          []Event        `json:"events"`
	Relations       []Relation     `json:"relations"`
	Equivs          []Equiv        `json:"equivs"`
	Attributes      []Attribute    `json:"attributes"`
	Modifications   []Modification `json:"modifications"`
	Comments        []Comment      `json:"comments"`
	TokenOffsets    []Offset       `json:"token_offsets"`
	SentenceOffsets []Offset       `json:"sentence_offsets"`
	SentenceCount   int            `json:"sentence_count"`
	MTime           float64        `json:"mtime,omitempty"`
	Marks           Marks          `json:"marks,omitempty"`
}

// TextBounds returns entities followed by triggers.
func (d *Document) TextBounds() []TextBound {
	out := make([]TextBound, 0, len(d.Entities)+len(d.Triggers))
	out = append(out, d.Entities...)
	return append(out, d.Triggers...)
}

// Empty reports whether the document has neither text nor annotations.
func (d *Document) Empty() bool {
	return d.Text == "" && len(d.Entities) == 0 && len(d.Triggers) == 0
}
