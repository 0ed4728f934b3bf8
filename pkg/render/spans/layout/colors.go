package layout

import colorful "github.com/lucasb-eyer/go-colorful"

// Lightness adjustments of the span background color.
const (
	curlyLightness  = -0.6
	lightLightness  = 0.8
	borderLightness = -0.6
)

// borderDarken is the border color value that derives the border from the
// background.
const borderDarken = "darken"

// adjustLightness moves the HSL lightness of a hex color towards black for
// negative amounts and towards white for positive ones. Colors that do not
// parse are returned unchanged.
func adjustLightness(hex string, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	h, s, l := c.Hsl()
	if amount < 0 {
		l *= 1 + amount
	} else {
		l = 1 - (1-l)*(1-amount)
	}
	return colorful.Hsl(h, s, l).Clamped().Hex()
}

// hashColor restores the '#' of a hex color taken from an arrow spec.
func hashColor(s string) string {
	if _, err := colorful.Hex("#" + s); err == nil {
		return "#" + s
	}
	return s
}

type spanColors struct {
	bg, light, fg, border, curly string
}

func (e *engine) spanColors(typ string) spanColors {
	bg, fg, border := e.coll.SpanColors(typ)
	if border == borderDarken {
		border = adjustLightness(bg, borderLightness)
	}
	return spanColors{
		bg:     bg,
		light:  adjustLightness(bg, lightLightness),
		fg:     fg,
		border: border,
		curly:  adjustLightness(bg, curlyLightness),
	}
}
