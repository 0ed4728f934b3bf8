package source

import (
	"strings"
	"unicode"
)

// Prepare normalizes the document in place so that it can be laid out:
// runs of two spaces become a space and a no-break space, missing token
// and sentence offsets are derived from the text, and sentences crossed by
// an annotation are merged. Prepare is idempotent.
func (d *Document) Prepare() {
	d.Text = NormalizeSpaces(d.Text)
	if d.TokenOffsets == nil {
		d.TokenOffsets = Tokenize(d.Text)
	}
	if d.SentenceOffsets == nil {
		d.SentenceOffsets = SplitSentences(d.Text)
	}
	d.SentenceOffsets = MergeSentences(d.SentenceOffsets, d.TextBounds())
	if d.SentenceCount == 0 {
		d.SentenceCount = len(d.SentenceOffsets)
	}
}

// NormalizeSpaces replaces every pair of spaces with a space and a no-break
// space. The number of code points does not change, so offsets stay valid.
func NormalizeSpaces(text string) string {
	return strings.ReplaceAll(text, "  ", " "+string(NBSP))
}

// Tokenize returns the maximal runs of non-whitespace.
func Tokenize(text string) []Offset {
	var out []Offset
	start := -1
	i := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, Offset{start, i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i++
	}
	if start >= 0 {
		out = append(out, Offset{start, i})
	}
	return out
}

// SplitSentences treats every non-blank line as a sentence.
func SplitSentences(text string) []Offset {
	var out []Offset
	lineStart := 0
	blank := true
	i := 0
	for _, r := range text {
		if r == '\n' {
			if !blank {
				out = append(out, Offset{lineStart, i})
			}
			lineStart, blank = i+1, true
		} else if !unicode.IsSpace(r) {
			blank = false
		}
		i++
	}
	if !blank {
		out = append(out, Offset{lineStart, i})
	}
	return out
}

// MergeSentences joins a sentence with its successor whenever an annotation
// starts inside it and ends beyond its end. The input slice is not modified.
func MergeSentences(sentences []Offset, bounds []TextBound) []Offset {
	out := append([]Offset(nil), sentences...)
	for _, tb := range bounds {
		for i := 0; i < len(out)-1; {
			if tb.From < out[i].To() && tb.To > out[i].To() {
				out[i] = Offset{out[i].From(), out[i+1].To()}
				out = append(out[:i+1], out[i+2:]...)
			} else {
				i++
			}
		}
	}
	return out
}
