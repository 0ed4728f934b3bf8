package ordering

import (
	"unicode/utf8"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/collection"
)

// abbrevRatio relates span length in characters to the longest label shown
// without abbreviation.
const abbrevRatio = 0.8

// WarningGlyph is appended to labels of spans with unrecognized attributes.
const WarningGlyph = "#"

// Labels chooses the label of every span and decorates it with attribute
// glyphs.
func Labels(doc *annotation.Document, coll *collection.Collection, abbrevs bool) {
	if coll == nil {
		coll = collection.Default()
	}
	for _, s := range doc.Spans() {
		s.LabelText = Abbreviate(coll.SpanDisplayForm(s.Type), coll.SpanLabels(s.Type), s.Len(), abbrevs)
		s.GlyphedLabelText, s.Warning = Glyphs(s, coll)
	}
}

// Abbreviate walks labels from the first abbreviation on while the current
// label is longer than spanLen/0.8 characters.
func Abbreviate(display string, labels []string, spanLen int, enabled bool) string {
	if !enabled || len(labels) == 0 {
		return display
	}
	maxLength := float64(spanLen) / abbrevRatio
	text := display
	for i := 1; i < len(labels) && float64(utf8.RuneCountInString(text)) > maxLength; i++ {
		text = labels[i]
	}
	return text
}

// Glyphs returns the span label with the glyphs of its attribute values and
// reports whether any attribute could not be shown.
func Glyphs(s *annotation.Span, coll *collection.Collection) (string, bool) {
	var prefix, postfix string
	warning := false
	for _, name := range s.AttributeOrder {
		attr, ok := coll.Attribute(name)
		if !ok {
			warning = true
			continue
		}
		val, ok := attr.Value(s.Attributes[name])
		if !ok || !val.HasVisual() {
			warning = true
			continue
		}
		if val.Glyph == "" {
			continue
		}
		if val.Position == collection.GlyphLeft {
			prefix = val.Glyph + prefix
		} else {
			postfix += val.Glyph
		}
	}

	text := s.LabelText
	if prefix != "" {
		text = prefix + " " + text
	}
	if postfix != "" {
		text += " " + postfix
	}
	if warning {
		text += " " + WarningGlyph
	}
	return text, warning
}
