package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/source"
)

func buildDoc(t *testing.T, payload string) *annotation.Document {
	t.Helper()
	src, err := source.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	src.Prepare()
	return annotation.Build(src, nil, messages.Discard)
}

func TestToDOT(t *testing.T) {
	doc := buildDoc(t, `{
		"text": "John met Mary.",
		"entities": [["T1", "Person", 0, 4], ["T2", "Person", 9, 13]],
		"relations": [["R1", "Knows", "T1", "T2"]],
		"equivs": [["*", "Equiv", "T1", "T2"]]
	}`)

	dot := ToDOT(doc, Options{})
	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"T1" [label="Person\nJohn"`,
		`"T1" -> "T2" [label="Knows"`,
		`"T1" -> "T2" [label="Equiv", color="#000000", fontcolor="#000000", style=dashed, dir=none]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	detailed := ToDOT(doc, Options{Detailed: true})
	if !strings.Contains(detailed, `[0, 4)`) {
		t.Errorf("detailed DOT missing offsets:\n%s", detailed)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox(no viewBox) = %s", got)
	}
}
