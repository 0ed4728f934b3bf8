package source

import (
	"reflect"
	"testing"

	"github.com/matzehuels/spantower/pkg/errors"
)

const givePayload = `{
	"text": "John gave Mary a book.",
	"entities": [["T1", "Person", 0, 4], ["T2", "Person", 10, 14]],
	"triggers": [["T3", "Give", 5, 9]],
	"events": [["E1", "T3", [["Giver", "T1"], ["Recipient", "T2"]]]],
	"relations": [["R1", "Alias", "T1", "T2"]],
	"equivs": [["*", "Equiv", "T1", "T2"]],
	"attributes": [["A1", "Negation", "E1", true], ["A2", "Uncertain", "T1", "Low", "T2"]],
	"modifications": [["M1", "Speculation", "E1"]],
	"comments": [["T1", "AnnotatorNotes", "checked"], [["sent", 1], "Warning", "odd"]],
	"mtime": 1700000000.5,
	"marks": {"focus": [["T1"], ["sent", 1], [0, 4]]}
}`

func TestDecode(t *testing.T) {
	d, err := Decode([]byte(givePayload))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if d.Text != "John gave Mary a book." {
		t.Errorf("Text = %q", d.Text)
	}
	wantEntities := []TextBound{{"T1", "Person", 0, 4}, {"T2", "Person", 10, 14}}
	if !reflect.DeepEqual(d.Entities, wantEntities) {
		t.Errorf("Entities = %+v, want %+v", d.Entities, wantEntities)
	}
	if len(d.Triggers) != 1 || d.Triggers[0].Type != "Give" {
		t.Errorf("Triggers = %+v", d.Triggers)
	}
	wantRoles := []Role{{"Giver", "T1"}, {"Recipient", "T2"}}
	if len(d.Events) != 1 || !reflect.DeepEqual(d.Events[0].Roles, wantRoles) {
		t.Errorf("Events = %+v", d.Events)
	}
	if d.Relations[0] != (Relation{"R1", "Alias", "T1", "T2"}) {
		t.Errorf("Relations[0] = %+v", d.Relations[0])
	}
	if !reflect.DeepEqual(d.Equivs[0].Spans, []string{"T1", "T2"}) {
		t.Errorf("Equivs[0] = %+v", d.Equivs[0])
	}
	if a := d.Attributes[0]; !a.Bool || a.Value != "true" {
		t.Errorf("Attributes[0] = %+v, want boolean", a)
	}
	if a := d.Attributes[1]; a.Bool || a.Value != "Low" || a.Cue != "T2" {
		t.Errorf("Attributes[1] = %+v", a)
	}
	if d.Modifications[0].Flag != "Speculation" {
		t.Errorf("Modifications[0] = %+v", d.Modifications[0])
	}
	if c := d.Comments[1]; !c.Target.IsSentence || c.Target.Sentence != 1 || c.Kind != "Warning" {
		t.Errorf("Comments[1] = %+v", c)
	}
	if d.MTime != 1700000000.5 {
		t.Errorf("MTime = %v", d.MTime)
	}
	wantMarks := []Mark{{"T1"}, {"sent", "1"}, {"0", "4"}}
	if !reflect.DeepEqual(d.Marks[MarkFocus], wantMarks) {
		t.Errorf("Marks[focus] = %v, want %v", d.Marks[MarkFocus], wantMarks)
	}
}

func TestDecodeFragments(t *testing.T) {
	d, err := Decode([]byte(`{"text": "a b c", "entities": [["T1", "X", [[0, 1], [4, 5]]]]}`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got := d.Entities[0]; got.From != 0 || got.To != 5 {
		t.Errorf("fragmented entity = %+v, want [0, 5)", got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"text": `},
		{"not object", `[1, 2]`},
		{"entities not array", `{"entities": 3}`},
		{"short entity", `{"entities": [["T1", "X"]]}`},
		{"non-integer offset", `{"entities": [["T1", "X", "a", 3]]}`},
		{"bad role", `{"events": [["E1", "T1", [["Giver"]]]]}`},
		{"bad comment target", `{"comments": [[["doc", 1], "Note", "x"]]}`},
		{"bad token offsets", `{"token_offsets": [[0]]}`},
		{"marks not object", `{"marks": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []Offset
	}{
		{"", nil},
		{"   ", nil},
		{"John gave Mary a book.", []Offset{{0, 4}, {5, 9}, {10, 14}, {15, 16}, {17, 22}}},
		{" naïve  café\n", []Offset{{1, 6}, {8, 12}}},
	}
	for _, tt := range tests {
		if got := Tokenize(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		text string
		want []Offset
	}{
		{"", nil},
		{"One.", []Offset{{0, 4}}},
		{"One.\nTwo.", []Offset{{0, 4}, {5, 9}}},
		{"One.\n\n  \nTwo.\n", []Offset{{0, 4}, {9, 13}}},
	}
	for _, tt := range tests {
		if got := SplitSentences(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitSentences(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestMergeSentences(t *testing.T) {
	sentences := []Offset{{0, 10}, {11, 20}, {21, 30}}

	tests := []struct {
		name   string
		bounds []TextBound
		want   []Offset
	}{
		{"inside", []TextBound{{From: 2, To: 8}}, sentences},
		{"crossing", []TextBound{{From: 8, To: 12}}, []Offset{{0, 20}, {21, 30}}},
		{"crossing two", []TextBound{{From: 8, To: 25}}, []Offset{{0, 30}}},
		{"past the end", []TextBound{{From: 25, To: 40}}, sentences},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSentences(sentences, tt.bounds)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeSentences() = %v, want %v", got, tt.want)
			}
		})
	}
	if sentences[0] != (Offset{0, 10}) || len(sentences) != 3 {
		t.Error("MergeSentences modified its input")
	}
}

func TestPrepare(t *testing.T) {
	d := &Document{
		Text:     "Dr.  Smith\nleft.",
		Entities: []TextBound{{ID: "T1", Type: "Person", From: 0, To: 10}},
	}
	d.Prepare()

	if d.Text != "Dr. \u00a0Smith\nleft." {
		t.Errorf("Text = %q", d.Text)
	}
	wantTokens := []Offset{{0, 3}, {5, 10}, {11, 16}}
	if !reflect.DeepEqual(d.TokenOffsets, wantTokens) {
		t.Errorf("TokenOffsets = %v, want %v", d.TokenOffsets, wantTokens)
	}
	wantSentences := []Offset{{0, 10}, {11, 16}}
	if !reflect.DeepEqual(d.SentenceOffsets, wantSentences) {
		t.Errorf("SentenceOffsets = %v, want %v", d.SentenceOffsets, wantSentences)
	}
	if d.SentenceCount != 2 {
		t.Errorf("SentenceCount = %d, want 2", d.SentenceCount)
	}

	before := *d
	d.Prepare()
	if !reflect.DeepEqual(*d, before) {
		t.Error("Prepare is not idempotent")
	}
}
