package collection

import (
	"path/filepath"
	"reflect"
	"testing"
)

func loadNews(t *testing.T) *Collection {
	t.Helper()
	c, err := Load(filepath.Join("testdata", "news.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return c
}

func TestSpanLabels(t *testing.T) {
	c := loadNews(t)

	tests := []struct {
		typ     string
		labels  []string
		display string
	}{
		{"Person", []string{"Person", "Per", "P"}, "Person"},
		{"Company", []string{"Company", "Co"}, "Company"},
		{"Unknown", nil, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := c.SpanLabels(tt.typ); !reflect.DeepEqual(got, tt.labels) {
				t.Errorf("SpanLabels(%q) = %v, want %v", tt.typ, got, tt.labels)
			}
			if got := c.SpanDisplayForm(tt.typ); got != tt.display {
				t.Errorf("SpanDisplayForm(%q) = %q, want %q", tt.typ, got, tt.display)
			}
		})
	}
}

func TestSpanColors(t *testing.T) {
	c := loadNews(t)
	bg, fg, border := c.SpanColors("Person")
	if bg != "#ffccaa" || fg != "#000000" || border != "#000000" {
		t.Errorf("SpanColors(Person) = %s %s %s", bg, fg, border)
	}
	bg, _, _ = c.SpanColors("Unknown")
	if bg != "#ffffff" {
		t.Errorf("SpanColors(Unknown) bg = %s, want #ffffff", bg)
	}
}

func TestArcDesc(t *testing.T) {
	c := loadNews(t)

	tests := []struct {
		name      string
		origin    string
		arc       string
		wantOK    bool
		labels    []string
		color     string
		symmetric bool
	}{
		{"span arc", "Give", "Giver", true, []string{"Giver", "Gvr"}, "", false},
		{"numbered arc", "Give", "Theme2", true, []string{"Theme", "Th"}, "#0000ff", false},
		{"relation only", "Person", "Equiv", true, nil, "", true},
		{"merged with relation", "Person", "Alias", true, []string{"Alias", "Al"}, "#888888", false},
		{"unknown", "Give", "Location", false, nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := c.ArcDesc(tt.origin, tt.arc)
			if ok != tt.wantOK {
				t.Fatalf("ArcDesc ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(d.Labels, tt.labels) {
				t.Errorf("Labels = %v, want %v", d.Labels, tt.labels)
			}
			if d.Color != tt.color {
				t.Errorf("Color = %q, want %q", d.Color, tt.color)
			}
			if d.Symmetric != tt.symmetric {
				t.Errorf("Symmetric = %v, want %v", d.Symmetric, tt.symmetric)
			}
		})
	}

	if got := c.ArcDisplayForm("Give", "Location"); got != "Location" {
		t.Errorf("ArcDisplayForm(unknown) = %q, want Location", got)
	}
	if got := c.ArrowHead("Person", "Equiv"); got != "none" {
		t.Errorf("ArrowHead(Equiv) = %q, want none", got)
	}
	if got := c.ArcColor("Give", "Giver"); got != "#000000" {
		t.Errorf("ArcColor(Giver) = %q, want #000000", got)
	}
}

func TestAttribute(t *testing.T) {
	c := loadNews(t)

	neg, ok := c.Attribute("Negation")
	if !ok {
		t.Fatal("Attribute(Negation) not found")
	}
	if b, ok := neg.Bool(); !ok || b != "Negation" {
		t.Errorf("Bool() = %q, %v, want Negation, true", b, ok)
	}
	if v, ok := neg.Value("true"); !ok || v.Glyph != "[NEG]" {
		t.Errorf("boolean Value(true) = %+v, %v", v, ok)
	}

	unc, _ := c.Attribute("Uncertain")
	if _, ok := unc.Bool(); ok {
		t.Error("multi-valued attribute reported as boolean")
	}
	if v, ok := unc.Value("Low"); !ok || v.Position != GlyphLeft {
		t.Errorf("Value(Low) = %+v, %v", v, ok)
	}
	if _, ok := unc.Value("Medium"); ok {
		t.Error("Value(Medium) should not exist")
	}

	hidden, _ := c.Attribute("Hidden")
	if got := hidden.DisplayName(); got != "Hidden event" {
		t.Errorf("DisplayName() = %q", got)
	}
	if v, _ := hidden.Value("yes"); v.HasVisual() {
		t.Error("value without glyph should have no visual")
	}

	if _, ok := c.Attribute("Missing"); ok {
		t.Error("Attribute(Missing) should not exist")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "entities: [\n"},
		{"unnamed entity", "entities:\n  - labels: [X]\n"},
		{"unnamed child", "entities:\n  - type: A\n    children:\n      - labels: [X]\n"},
		{"unnamed arc", "events:\n  - type: E\n    arcs:\n      - labels: [X]\n"},
		{"attribute without values", "entity_attributes:\n  - type: A\n"},
		{"bad glyph position", "entity_attributes:\n  - type: A\n    values:\n      - name: x\n        position: top\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}
}

func TestSplitNumber(t *testing.T) {
	tests := []struct{ in, base, num string }{
		{"Theme2", "Theme", "2"},
		{"Theme", "Theme", ""},
		{"Arg12", "Arg", "12"},
		{"", "", ""},
	}
	for _, tt := range tests {
		base, num := SplitNumber(tt.in)
		if base != tt.base || num != tt.num {
			t.Errorf("SplitNumber(%q) = %q, %q, want %q, %q", tt.in, base, num, tt.base, tt.num)
		}
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if got := c.SpanDisplayForm("Person"); got != "Person" {
		t.Errorf("SpanDisplayForm = %q, want Person", got)
	}
	if got := c.ArrowHead("Person", "Rel"); got != "" {
		t.Errorf("ArrowHead = %q, want empty", got)
	}
}
