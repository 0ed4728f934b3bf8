package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/source"
)

const giveJSON = `{
	"text": "John gave Mary a book.",
	"entities": [["T1", "Person", 0, 4], ["T2", "Person", 10, 14]],
	"triggers": [["T3", "Give", 5, 9]],
	"events": [["E1", "T3", [["Giver", "T1"], ["Recipient", "T2"]]]]
}`

func buildDoc(t *testing.T, payload string) *annotation.Document {
	t.Helper()
	src, err := source.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	src.Prepare()
	return annotation.Build(src, nil, messages.Discard)
}

func layout(t *testing.T, payload string) (*annotation.Document, *Model) {
	t.Helper()
	doc := buildDoc(t, payload)
	return doc, Build(doc, config.Default())
}

func TestBuildGive(t *testing.T) {
	doc, model := layout(t, giveJSON)

	if len(model.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(model.Rows))
	}
	row := model.Rows[0]
	if len(row.Chunks) != len(doc.Chunks) {
		t.Errorf("row chunks = %d, want %d", len(row.Chunks), len(doc.Chunks))
	}
	if row.Sentence != 1 {
		t.Errorf("row sentence = %d, want 1", row.Sentence)
	}
	if len(model.Spans) != 3 {
		t.Fatalf("spans = %d, want 3", len(model.Spans))
	}
	for _, s := range model.Spans {
		if s.Row != 0 {
			t.Errorf("span %s row = %d, want 0", s.ID, s.Row)
		}
		if bottom := s.Box.Y + s.Box.H; bottom >= row.TextY {
			t.Errorf("span %s box bottom %v not above text baseline %v", s.ID, bottom, row.TextY)
		}
		if s.Curly.From >= s.Curly.To {
			t.Errorf("span %s curly = %+v", s.ID, s.Curly)
		}
	}

	if len(row.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(row.Lines))
	}
	for _, l := range row.Lines {
		origin, _ := model.SpanByID(l.Origin)
		target, _ := model.SpanByID(l.Target)
		if l.Height > origin.Box.Y || l.Height > target.Box.Y {
			t.Errorf("line %s at %v below endpoint boxes %v, %v", l.Arc, l.Height, origin.Box.Y, target.Box.Y)
		}
		if !l.Sides[0].EdgeRow || !l.Sides[1].EdgeRow {
			t.Errorf("line %s single-row sides should be edge rows", l.Arc)
		}
		if l.UFO {
			t.Errorf("line %s between chunks flagged as loop", l.Arc)
		}
	}

	giver := row.Lines[0]
	if giver.Type != "Giver" {
		giver = row.Lines[1]
	}
	// E1 points left at T1: the arrowhead is on the left side.
	if giver.Sides[0].Arrow == "" || giver.Sides[1].Arrow != "" {
		t.Errorf("Giver arrows = %q, %q", giver.Sides[0].Arrow, giver.Sides[1].Arrow)
	}
	if len(model.Arrows) != 1 || model.Arrows[0].Spec != "triangle,5,000000" {
		t.Errorf("arrows = %+v", model.Arrows)
	}
	if model.Arrows[0].Color != "#000000" || model.Arrows[0].Size != 5 {
		t.Errorf("arrow = %+v", model.Arrows[0])
	}

	if model.CanvasWidth != config.DefaultCanvasWidth {
		t.Errorf("CanvasWidth = %v, want %v", model.CanvasWidth, config.DefaultCanvasWidth)
	}
	if model.CanvasHeight <= row.YT {
		t.Errorf("CanvasHeight = %v, want > %v", model.CanvasHeight, row.YT)
	}
}

func TestRowWrap(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 300))
	_, model := layout(t, `{"text": "`+text+`"}`)

	if len(model.Rows) < 2 {
		t.Fatalf("rows = %d, want a wrapped layout", len(model.Rows))
	}
	cfg := config.Default()
	limit := cfg.CanvasWidth - 2*cfg.Margin.X
	next := 0
	for _, row := range model.Rows {
		if len(row.Chunks) == 0 {
			t.Errorf("row %d is empty", row.Index)
		}
		for i, c := range row.Chunks {
			if c.Index != next {
				t.Errorf("chunk index = %d, want %d", c.Index, next)
			}
			next++
			right := c.X + 7*float64(len(c.Text))
			if i > 0 && right >= limit {
				t.Errorf("row %d chunk %d ends at %v, past %v", row.Index, c.Index, right, limit)
			}
		}
	}
	if next != 300 {
		t.Errorf("placed %d chunks, want 300", next)
	}
	for i := 1; i < len(model.Rows); i++ {
		if model.Rows[i].Y <= model.Rows[i-1].Y {
			t.Errorf("row %d y = %v, not below %v", i, model.Rows[i].Y, model.Rows[i-1].Y)
		}
	}
}

func TestSentenceRows(t *testing.T) {
	_, model := layout(t, `{"text": "One two.\nThree.\n\nFour."}`)

	tests := []struct {
		sentence int
		chunks   int
		bg       string
	}{
		{1, 2, "background0"},
		{2, 1, "background1"},
		{0, 0, "background0"},
		{4, 1, "background1"},
	}
	if len(model.Rows) != len(tests) {
		t.Fatalf("rows = %d, want %d", len(model.Rows), len(tests))
	}
	for i, tt := range tests {
		row := model.Rows[i]
		if row.Sentence != tt.sentence || len(row.Chunks) != tt.chunks || row.BgClass != tt.bg {
			t.Errorf("row %d = sentence %d, %d chunks, %s; want %d, %d, %s",
				i, row.Sentence, len(row.Chunks), row.BgClass, tt.sentence, tt.chunks, tt.bg)
		}
	}
	if len(model.SentenceLinks) != 3 {
		t.Errorf("sentence links = %d, want 3", len(model.SentenceLinks))
	}
}

func TestJumpHeights(t *testing.T) {
	_, model := layout(t, `{
		"text": "alpha beta gamma",
		"entities": [["T1", "X", 0, 5], ["T2", "X", 6, 10], ["T3", "X", 11, 16]],
		"relations": [["R1", "Near", "T1", "T2"], ["R2", "Far", "T1", "T3"]]
	}`)
	cfg := config.Default()

	lines := model.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	row := model.Rows[0]
	byType := map[string]Line{}
	for _, l := range lines {
		byType[l.Type] = l
		height := row.YT - l.Height - 0.5
		if height < l.JumpHeight+cfg.ArcSpacing {
			t.Errorf("%s height %v does not clear jump %v", l.Type, height, l.JumpHeight)
		}
	}
	if near, far := byType["Near"], byType["Far"]; far.Height >= near.Height {
		t.Errorf("Far arc at %v should be above Near arc at %v", far.Height, near.Height)
	}
	if far := byType["Far"]; far.JumpHeight <= cfg.ArcStartHeight {
		t.Errorf("Far jump = %v, want above the start height", far.JumpHeight)
	}
}

func TestArcLess(t *testing.T) {
	low := &annotation.Span{Height: 10}
	mid := &annotation.Span{Height: 20}
	high := &annotation.Span{Height: 30}

	tests := []struct {
		name string
		a, b *annotation.Arc
		want bool
	}{
		{"lower jump first", &annotation.Arc{JumpHeight: 5, Dist: 3, OriginSpan: high, TargetSpan: high},
			&annotation.Arc{JumpHeight: 10, Dist: 1, OriginSpan: low, TargetSpan: low}, true},
		{"shorter distance first", &annotation.Arc{Dist: 1, OriginSpan: high, TargetSpan: high},
			&annotation.Arc{Dist: 2, OriginSpan: low, TargetSpan: low}, true},
		{"smaller summed height first", &annotation.Arc{Dist: 1, OriginSpan: low, TargetSpan: mid},
			&annotation.Arc{Dist: 1, OriginSpan: mid, TargetSpan: mid}, true},
		{"larger summed height later", &annotation.Arc{Dist: 1, OriginSpan: high, TargetSpan: mid},
			&annotation.Arc{Dist: 1, OriginSpan: low, TargetSpan: low}, false},
		{"lower origin first", &annotation.Arc{Dist: 1, OriginSpan: low, TargetSpan: high},
			&annotation.Arc{Dist: 1, OriginSpan: high, TargetSpan: low}, true},
		{"equal arcs keep order", &annotation.Arc{Dist: 1, OriginSpan: mid, TargetSpan: mid},
			&annotation.Arc{Dist: 1, OriginSpan: mid, TargetSpan: mid}, false},
	}
	for _, tt := range tests {
		if got := arcLess(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: arcLess() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestArcHeightsFollowRank(t *testing.T) {
	doc, model := layout(t, `{
		"text": "alpha beta",
		"entities": [["T1", "X", 0, 5], ["T2", "X", 6, 10]],
		"relations": [["R1", "A", "T1", "T2"], ["R2", "B", "T1", "T2"], ["R3", "C", "T2", "T1"]]
	}`)

	heights := map[string]float64{}
	for _, l := range model.Lines() {
		heights[l.Type] = l.Height
	}
	if len(heights) != 3 {
		t.Fatalf("lines = %v, want 3 arc types", heights)
	}
	// Equal keys keep document order; each later arc sits above the one before.
	for i := 1; i < len(doc.Arcs); i++ {
		prev, cur := doc.Arcs[i-1].Type, doc.Arcs[i].Type
		if heights[cur] >= heights[prev] {
			t.Errorf("%s at %v, want above %s at %v", cur, heights[cur], prev, heights[prev])
		}
	}
}

func TestLeftArcSpacingCentersChunks(t *testing.T) {
	const entities = `"text": "a b c d",
		"entities": [["T1", "X", 0, 1], ["T2", "X", 6, 7]]`
	_, plain := layout(t, `{`+entities+`}`)
	_, spaced := layout(t, `{`+entities+`,
		"relations": [["R1", "AVeryLongRelationLabel", "T1", "T2"]]
	}`)

	if len(plain.Rows) != 1 || len(spaced.Rows) != 1 {
		t.Fatalf("rows = %d, %d, want 1, 1", len(plain.Rows), len(spaced.Rows))
	}
	shift := func(i int) float64 {
		return spaced.Rows[0].Chunks[i].X - plain.Rows[0].Chunks[i].X
	}
	gap := shift(3)
	if gap <= 0 {
		t.Fatalf("chunk 3 shift = %v, want a widened gap", gap)
	}
	// The chunks between the arc's origin and the spaced chunk move by half
	// the gap; the origin chunk stays put.
	tests := []struct {
		chunk int
		want  float64
	}{
		{0, 0},
		{1, gap / 2},
		{2, gap / 2},
	}
	for _, tt := range tests {
		if got := shift(tt.chunk); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("chunk %d shift = %v, want %v", tt.chunk, got, tt.want)
		}
	}
}

func TestTextHighlight(t *testing.T) {
	_, model := layout(t, `{
		"text": "aaa bbb ccc",
		"marks": {"match": [["4", "7"]]}
	}`)
	if len(model.TextHighlights) != 1 {
		t.Fatalf("highlights = %d, want 1", len(model.TextHighlights))
	}
	h := model.TextHighlights[0]
	// "bbb" starts at 24 + 21 + 4; the end mark sits one pixel past the glyphs.
	if h.X != 47 || h.W != 26 || h.Kind != "match" {
		t.Errorf("highlight = %+v, want x=47 w=26 match", h)
	}
	if want := model.Rows[0].TextY - 12; h.Y != want {
		t.Errorf("highlight y = %v, want %v", h.Y, want)
	}
}

func TestUFOArc(t *testing.T) {
	_, model := layout(t, `{
		"text": "New York",
		"entities": [["T1", "City", 0, 8], ["T2", "State", 4, 8]],
		"relations": [["R1", "Part", "T2", "T1"]]
	}`)
	lines := model.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if !lines[0].UFO {
		t.Error("arc inside one chunk should be a loop")
	}
}

func TestBuildEmpty(t *testing.T) {
	_, model := layout(t, `{"text": ""}`)
	if len(model.Rows) != 0 || len(model.Spans) != 0 {
		t.Errorf("empty document = %d rows, %d spans", len(model.Rows), len(model.Spans))
	}
	if model.CanvasWidth != config.DefaultCanvasWidth {
		t.Errorf("CanvasWidth = %v, want %v", model.CanvasWidth, config.DefaultCanvasWidth)
	}
}

func TestBuildRepeatable(t *testing.T) {
	doc := buildDoc(t, giveJSON)
	first := Build(doc, config.Default())
	second := Build(doc, config.Default())
	if len(first.Spans) != len(second.Spans) {
		t.Fatalf("span count changed: %d, %d", len(first.Spans), len(second.Spans))
	}
	for i := range first.Spans {
		if first.Spans[i].Box != second.Spans[i].Box {
			t.Errorf("span %s box = %+v, then %+v", first.Spans[i].ID, first.Spans[i].Box, second.Spans[i].Box)
		}
	}
	if first.CanvasHeight != second.CanvasHeight {
		t.Errorf("CanvasHeight = %v, then %v", first.CanvasHeight, second.CanvasHeight)
	}
}
