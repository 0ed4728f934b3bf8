// Package fonts measures text for the layout engine.
//
// The engine never rasterizes text; it only needs the advance width of
// strings and the height and baseline offset of a font. [Face] provides
// these from a real font (the embedded Go Regular font or any TrueType file),
// [Fixed] from a constant character width, which keeps geometry tests
// independent of font rendering.
package fonts

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Metrics are the vertical measurements of a font, in pixels.
// Y is the offset of the top of the text box relative to the baseline and
// is negative for fonts drawn above the baseline.
type Metrics struct {
	Height float64 `json:"height"`
	Y      float64 `json:"y"`
}

// Measurer measures text.
type Measurer interface {
	Width(text string) float64
	Metrics() Metrics
}

// Set holds one measurer per text role: document text, span labels, arc
// labels and sentence numbers.
type Set struct {
	Text    Measurer
	Spans   Measurer
	Arcs    Measurer
	SentNos Measurer
}

// Font kinds accepted by [NewSet].
const (
	KindGo    = "go"
	KindFixed = "fixed"
)

// Point sizes of the text roles.
const (
	TextSize    = 13
	SpanSize    = 10
	ArcSize     = 9
	SentNumSize = 10
)

// NewSet builds a measurer set. kind is "go" for the embedded Go Regular
// font, "fixed" for fixed-width measurement, or the path of a TrueType file.
func NewSet(kind string) (Set, error) {
	switch kind {
	case "", KindGo:
		return faceSet(NewGoRegular)
	case KindFixed:
		return FixedSet(), nil
	default:
		if !strings.HasSuffix(strings.ToLower(kind), ".ttf") {
			return Set{}, fmt.Errorf("unknown font %q", kind)
		}
		return faceSet(func(points float64) (*Face, error) {
			return LoadFace(kind, points)
		})
	}
}

func faceSet(open func(points float64) (*Face, error)) (Set, error) {
	var s Set
	for _, f := range []struct {
		dst    *Measurer
		points float64
	}{
		{&s.Text, TextSize},
		{&s.Spans, SpanSize},
		{&s.Arcs, ArcSize},
		{&s.SentNos, SentNumSize},
	} {
		face, err := open(f.points)
		if err != nil {
			return Set{}, err
		}
		*f.dst = face
	}
	return s, nil
}

// FixedSet returns a set of fixed-width measurers.
func FixedSet() Set {
	return Set{
		Text:    Fixed{CharWidth: 7, Height: 15, Y: -12},
		Spans:   Fixed{CharWidth: 6, Height: 12, Y: -10},
		Arcs:    Fixed{CharWidth: 5, Height: 11, Y: -9},
		SentNos: Fixed{CharWidth: 6, Height: 12, Y: -10},
	}
}

// Fixed measures every rune with the same width.
type Fixed struct {
	CharWidth float64
	Height    float64
	Y         float64
}

// Width returns the rune count times CharWidth.
func (f Fixed) Width(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * f.CharWidth
}

// Metrics returns the configured height and offset.
func (f Fixed) Metrics() Metrics {
	return Metrics{Height: f.Height, Y: f.Y}
}
