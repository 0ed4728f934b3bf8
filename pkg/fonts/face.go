package fonts

import (
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Face measures text with a real font. Widths are cached per string.
// A Face is safe for concurrent use.
type Face struct {
	mu      sync.Mutex
	dc      *gg.Context
	metrics Metrics
	widths  map[string]float64
}

// NewGoRegular returns a face for the embedded Go Regular font.
func NewGoRegular(points float64) (*Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("open go regular: %w", err)
	}
	return NewFace(face), nil
}

// LoadFace opens a TrueType font file.
func LoadFace(path string, points float64) (*Face, error) {
	face, err := gg.LoadFontFace(path, points)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	return NewFace(face), nil
}

// NewFace wraps an opened font face.
func NewFace(face font.Face) *Face {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	return &Face{
		dc:      dc,
		metrics: Metrics{Height: ascent + descent, Y: -ascent},
		widths:  make(map[string]float64),
	}
}

// Width returns the advance width of text in pixels.
func (f *Face) Width(text string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.widths[text]; ok {
		return w
	}
	w, _ := f.dc.MeasureString(text)
	f.widths[text] = w
	return w
}

// Metrics returns the height and baseline offset of the face.
func (f *Face) Metrics() Metrics {
	return f.metrics
}
