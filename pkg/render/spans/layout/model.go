package layout

import "github.com/matzehuels/spantower/pkg/annotation"

// Model is the renderer-agnostic result of a layout pass. All coordinates
// are absolute canvas pixels. A Model never references the annotation
// graph it was computed from and can be serialized as JSON or BSON.
type Model struct {
	CanvasWidth    float64        `json:"canvas_width" bson:"canvas_width"`
	CanvasHeight   float64        `json:"canvas_height" bson:"canvas_height"`
	Rows           []Row          `json:"rows" bson:"rows"`
	Spans          []Span         `json:"spans" bson:"spans"`
	TextHighlights []Highlight    `json:"text_highlights,omitempty" bson:"text_highlights,omitempty"`
	SentenceLinks  []SentenceLink `json:"sentence_links,omitempty" bson:"sentence_links,omitempty"`
	Arrows         []Arrow        `json:"arrows,omitempty" bson:"arrows,omitempty"`
}

// Row is one line of text with the arc segments drawn above it.
type Row struct {
	Index    int     `json:"index" bson:"index"`
	Y        float64 `json:"y" bson:"y"`
	YT       float64 `json:"yt" bson:"yt"`
	TextY    float64 `json:"text_y" bson:"text_y"`
	Height   float64 `json:"height" bson:"height"`
	Sentence int     `json:"sentence,omitempty" bson:"sentence,omitempty"`
	BgClass  string  `json:"bg_class" bson:"bg_class"`
	Chunks   []Chunk `json:"chunks" bson:"chunks"`
	Lines    []Line  `json:"lines,omitempty" bson:"lines,omitempty"`
}

// Chunk is a placed run of text. X is the left edge of the text.
type Chunk struct {
	Index     int     `json:"index" bson:"index"`
	Text      string  `json:"text" bson:"text"`
	From      int     `json:"from" bson:"from"`
	To        int     `json:"to" bson:"to"`
	X         float64 `json:"x" bson:"x"`
	Y         float64 `json:"y" bson:"y"`
	NextSpace string  `json:"next_space,omitempty" bson:"next_space,omitempty"`
}

// Span is a placed span box with its label and curly brace.
type Span struct {
	ID          string              `json:"id" bson:"id"`
	Type        string              `json:"type" bson:"type"`
	Label       string              `json:"label" bson:"label"`
	Text        string              `json:"text" bson:"text"`
	Chunk       int                 `json:"chunk" bson:"chunk"`
	Row         int                 `json:"row" bson:"row"`
	Tower       int                 `json:"tower" bson:"tower"`
	LineIndex   int                 `json:"line_index" bson:"line_index"`
	Box         annotation.Box      `json:"box" bson:"box"`
	PlainBox    annotation.Box      `json:"plain_box" bson:"plain_box"`
	Curly       annotation.Curly    `json:"curly" bson:"curly"`
	DrawCurly   bool                `json:"draw_curly,omitempty" bson:"draw_curly,omitempty"`
	CurlyColor  string              `json:"curly_color,omitempty" bson:"curly_color,omitempty"`
	TextY       float64             `json:"text_y" bson:"text_y"`
	Height      float64             `json:"height" bson:"height"`
	Highlight   annotation.Box      `json:"highlight" bson:"highlight"`
	Tier        int                 `json:"tier,omitempty" bson:"tier,omitempty"`
	BgColor     string              `json:"bg_color" bson:"bg_color"`
	LightColor  string              `json:"light_color" bson:"light_color"`
	FgColor     string              `json:"fg_color" bson:"fg_color"`
	BorderColor string              `json:"border_color" bson:"border_color"`
	DashArray   string              `json:"dash_array,omitempty" bson:"dash_array,omitempty"`
	ShadowClass string              `json:"shadow_class,omitempty" bson:"shadow_class,omitempty"`
	Marked      string              `json:"marked,omitempty" bson:"marked,omitempty"`
	Cue         string              `json:"cue,omitempty" bson:"cue,omitempty"`
	Warning     bool                `json:"warning,omitempty" bson:"warning,omitempty"`
	Comment     *annotation.Comment `json:"comment,omitempty" bson:"comment,omitempty"`
	Attributes  []string            `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Line is the segment of an arc drawn on one row. Height is the y of the
// horizontal part of the arc.
type Line struct {
	Arc         string                `json:"arc" bson:"arc"`
	Origin      string                `json:"origin" bson:"origin"`
	Target      string                `json:"target" bson:"target"`
	Type        string                `json:"type" bson:"type"`
	Label       string                `json:"label" bson:"label"`
	Subscript   string                `json:"subscript,omitempty" bson:"subscript,omitempty"`
	From        float64               `json:"from" bson:"from"`
	To          float64               `json:"to" bson:"to"`
	Height      float64               `json:"height" bson:"height"`
	JumpHeight  float64               `json:"jump_height" bson:"jump_height"`
	Color       string                `json:"color" bson:"color"`
	DashArray   string                `json:"dash_array,omitempty" bson:"dash_array,omitempty"`
	TextBox     annotation.Box        `json:"text_box" bson:"text_box"`
	TextStart   float64               `json:"text_start" bson:"text_start"`
	TextEnd     float64               `json:"text_end" bson:"text_end"`
	Sides       [2]annotation.ArcSide `json:"sides" bson:"sides"`
	UFO         bool                  `json:"ufo,omitempty" bson:"ufo,omitempty"`
	Equiv       bool                  `json:"equiv,omitempty" bson:"equiv,omitempty"`
	Marked      string                `json:"marked,omitempty" bson:"marked,omitempty"`
	ShadowClass string                `json:"shadow_class,omitempty" bson:"shadow_class,omitempty"`
}

// Highlight is a marked text rectangle.
type Highlight struct {
	annotation.Box `bson:",inline"`
	Kind           string `json:"kind" bson:"kind"`
}

// SentenceLink positions a sentence number in the left margin. The box
// fields are set only for sentences with a comment.
type SentenceLink struct {
	Sentence int     `json:"sentence" bson:"sentence"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	HasBox   bool    `json:"has_box,omitempty" bson:"has_box,omitempty"`
	BoxX     float64 `json:"box_x,omitempty" bson:"box_x,omitempty"`
	BoxY     float64 `json:"box_y,omitempty" bson:"box_y,omitempty"`
	BgClass  string  `json:"bg_class,omitempty" bson:"bg_class,omitempty"`
	Comment  string  `json:"comment,omitempty" bson:"comment,omitempty"`
}

// Arrow is an arrowhead marker referenced by arc sides.
type Arrow struct {
	ID    string  `json:"id" bson:"id"`
	Spec  string  `json:"spec" bson:"spec"`
	Type  string  `json:"type" bson:"type"`
	Size  float64 `json:"size" bson:"size"`
	Color string  `json:"color" bson:"color"`
}

// SpanByID returns the placed span with the given id.
func (m *Model) SpanByID(id string) (Span, bool) {
	for _, s := range m.Spans {
		if s.ID == id {
			return s, true
		}
	}
	return Span{}, false
}

// Lines returns the arc segments of all rows in row order.
func (m *Model) Lines() []Line {
	var out []Line
	for _, r := range m.Rows {
		out = append(out, r.Lines...)
	}
	return out
}
