// Package annotation builds the annotation graph of a document.
//
// [Build] turns a decoded payload into a [Document]: spans for entities and
// event triggers, event descriptors for events, relations and equivalence
// chains, arcs connecting spans, and the chunks the text is broken into.
// Reference problems in the payload never abort the build; they are posted
// to a [messages.Sink] and the offending record is skipped.
//
// The Document also carries the fields the layout stages fill in (towers,
// rows, boxes, arc lines). It is rebuilt from scratch for every layout pass
// and must not be read by other goroutines while a pass is running.
package annotation

import "github.com/matzehuels/spantower/pkg/source"

// General types of spans.
const (
	GeneralEntity  = "entity"
	GeneralTrigger = "trigger"
)

// Event descriptor classes.
const (
	ClassEvent    = "event"
	ClassEquiv    = "equiv"
	ClassRelation = "relation"
)

// Comment is a comment attached to a span, an event descriptor or a sentence.
type Comment struct {
	Kind string `json:"kind" bson:"kind"`
	Text string `json:"text" bson:"text"`
}

// Box is an axis-aligned rectangle.
type Box struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// Curly is the horizontal extent of the brace under a tower.
type Curly struct {
	From float64 `json:"from" bson:"from"`
	To   float64 `json:"to" bson:"to"`
	X    float64 `json:"x" bson:"x"`
}

// Span is an annotated interval [From, To) of the document text.
type Span struct {
	ID          string
	Type        string
	From        int
	To          int
	GeneralType string

	TotalDist int
	NumArcs   int
	AvgDist   float64

	Chunk    *Chunk
	Incoming []*Arc
	Outgoing []*Arc

	// Attributes maps attribute names to values; AttributeOrder keeps the
	// order in which they were attached.
	Attributes     map[string]string
	AttributeOrder []string
	AttributeText  []string
	AttributeCues  map[string]string
	Flags          map[string]bool

	Comment        *Comment
	AnnotatorNotes string
	ShadowClass    string
	Cue            string
	Marked         string
	DashArray      string

	// Text is the covered text.
	Text string

	TowerID       int
	LineIndex     int
	IndexNumber   int
	RefedIndexSum int
	DrawCurly     bool

	LabelText        string
	GlyphedLabelText string
	Warning          bool

	NestingDepth    int
	NestingHeight   int
	NestingDepthLR  int
	NestingHeightLR int
	NestingDepthRL  int
	NestingHeightRL int

	Width        float64
	Curly        Curly
	Box          Box
	PlainBox     Box
	Right        float64
	YAdjust      float64
	Height       float64
	TextY        float64
	HighlightPos Box
}

func newSpan(id, typ string, from, to int, generalType string) *Span {
	s := &Span{ID: id, Type: typ, From: from, To: to, GeneralType: generalType}
	s.initContainers()
	return s
}

func (s *Span) initContainers() {
	s.Incoming = nil
	s.Outgoing = nil
	s.Attributes = make(map[string]string)
	s.AttributeOrder = nil
	s.AttributeText = nil
	s.AttributeCues = make(map[string]string)
	s.Flags = make(map[string]bool)
}

// Clone returns a copy of the span under a new id. Scalar fields are copied;
// arc lists, attributes and flags start out empty and are never shared with
// the original.
func (s *Span) Clone(id string) *Span {
	c := *s
	c.ID = id
	c.Comment = nil
	c.initContainers()
	return &c
}

// Len returns the number of characters covered.
func (s *Span) Len() int { return s.To - s.From }

// Arcs returns the number of incoming and outgoing arcs.
func (s *Span) Arcs() int { return len(s.Incoming) + len(s.Outgoing) }

// EventDesc describes the arcs leaving one span. Events, relations and
// equivalence chain links are all expressed this way.
type EventDesc struct {
	// Key is the id the descriptor is registered under; ID is the id of the
	// origin span.
	Key       string
	ID        string
	TriggerID string
	Roles     []source.Role
	Class     string

	LeftSpans  []string
	RightSpans []string

	Comment        *Comment
	AnnotatorNotes string
	ShadowClass    string

	EquivArc *Arc
}

// Arc connects two spans. ID is the event descriptor key followed by the
// role index, e.g. "E1/0".
type Arc struct {
	ID     string
	Origin string
	Target string

	OriginSpan *Span
	TargetSpan *Span

	Dist         int
	Type         string
	ShadowClass  string
	JumpHeight   float64
	Equiv        bool
	Relation     bool
	EventDescKey string
	Marked       string
}

// TextMark is one end of a marked text range within a chunk.
type TextMark struct {
	ID     int
	Start  bool
	Char   int
	Offset float64
	Kind   string
}

// Chunk is a run of text not split by any span boundary.
type Chunk struct {
	Index     int
	Text      string
	From      int
	To        int
	Space     string
	NextSpace string
	Spans     []*Span
	Sentence  int

	MarkedTextStart []*TextMark
	MarkedTextEnd   []*TextMark

	FirstSpanIndex int
	LastSpanIndex  int

	Row   *Row
	TextX float64
	Right float64
}

// ArcSide is one half of an arc line, from the label to an endpoint.
type ArcSide struct {
	X0      float64 `json:"x0" bson:"x0"`
	X1      float64 `json:"x1" bson:"x1"`
	X2      float64 `json:"x2" bson:"x2"`
	X3      float64 `json:"x3" bson:"x3"`
	Y0      float64 `json:"y0" bson:"y0"`
	Y3      float64 `json:"y3" bson:"y3"`
	EdgeRow bool    `json:"edge_row" bson:"edge_row"`
	Arrow   string  `json:"arrow,omitempty" bson:"arrow,omitempty"`
}

// ArcLine is the segment of an arc drawn on one row.
type ArcLine struct {
	Arc       *Arc
	From      float64
	To        float64
	Height    float64
	Color     string
	DashArray string
	Label     string
	Subscript string
	TextBox   Box
	TextStart float64
	TextEnd   float64
	Sides     [2]ArcSide
	UFO       bool
}

// Row is one line of the layout.
type Row struct {
	Index           int
	Chunks          []*Chunk
	HasAnnotations  bool
	MaxArcHeight    float64
	MaxSpanHeight   float64
	Lines           []*ArcLine
	Sentence        int
	BackgroundIndex int
	BgClass         string
	Height          float64
	Y               float64
	YT              float64
	TextY           float64
	SentComment     *Comment
}

// TextHighlight is a marked text rectangle on one row.
type TextHighlight struct {
	Box
	Kind string
}

// SentenceLink positions the number of a sentence in the left margin.
type SentenceLink struct {
	Sentence int
	X        float64
	Y        float64
	HasBox   bool
	BoxX     float64
	BoxY     float64
	BgClass  string
}

// Arrow is a parsed arrowhead spec "type,size,color".
type Arrow struct {
	ID    string
	Type  string
	Size  float64
	Color string
}

// Document is the annotation graph of one document plus its layout state.
type Document struct {
	Text          string
	SentenceCount int
	MTime         float64

	spans      map[string]*Span
	spanOrder  []*Span
	eventDescs map[string]*EventDesc
	eventOrder []*EventDesc

	Chunks []*Chunk
	Arcs   []*Arc

	// SortedSpans holds all spans sorted by (from, to) after the build and
	// by midpoint once towers are assigned.
	SortedSpans []*Span
	Towers      [][]*Span

	SentComment map[int]*Comment
	MarkedSent  map[int]bool

	Rows           []*Row
	TextHighlights []TextHighlight
	SentenceLinks  []SentenceLink
	Arrows         map[string]Arrow

	MaxTextWidth float64
	CanvasWidth  float64
	CanvasHeight float64

	runes    []rune
	markedAt []markedRange
}

type markedRange struct {
	from, to int
	kind     string
}

func newDocument(text string) *Document {
	return &Document{
		Text:        text,
		spans:       make(map[string]*Span),
		eventDescs:  make(map[string]*EventDesc),
		SentComment: make(map[int]*Comment),
		MarkedSent:  make(map[int]bool),
		Arrows:      make(map[string]Arrow),
		runes:       []rune(text),
	}
}

// Span returns the span with the given id.
func (d *Document) Span(id string) (*Span, bool) {
	s, ok := d.spans[id]
	return s, ok
}

// Spans returns all spans in the order they were created.
func (d *Document) Spans() []*Span {
	return d.spanOrder
}

// EventDesc returns the event descriptor registered under key.
func (d *Document) EventDesc(key string) (*EventDesc, bool) {
	e, ok := d.eventDescs[key]
	return e, ok
}

// EventDescs returns all event descriptors in the order they were created.
func (d *Document) EventDescs() []*EventDesc {
	return d.eventOrder
}

// Substring returns the text between two code point offsets, clamped to the text.
func (d *Document) Substring(from, to int) string {
	n := len(d.runes)
	from = max(0, min(from, n))
	to = max(from, min(to, n))
	return string(d.runes[from:to])
}

// TextLen returns the number of code points of the text.
func (d *Document) TextLen() int { return len(d.runes) }

func (d *Document) addSpan(s *Span) {
	if _, exists := d.spans[s.ID]; !exists {
		d.spanOrder = append(d.spanOrder, s)
	} else {
		for i, old := range d.spanOrder {
			if old.ID == s.ID {
				d.spanOrder[i] = s
				break
			}
		}
	}
	d.spans[s.ID] = s
}

func (d *Document) addEventDesc(e *EventDesc) {
	if _, exists := d.eventDescs[e.Key]; !exists {
		d.eventOrder = append(d.eventOrder, e)
	} else {
		for i, old := range d.eventOrder {
			if old.Key == e.Key {
				d.eventOrder[i] = e
				break
			}
		}
	}
	d.eventDescs[e.Key] = e
}
