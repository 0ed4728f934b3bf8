package config

// Density presets.
const (
	DensityDense    = "dense"
	DensityStandard = "standard"
	DensitySpacious = "spacious"
)

type preset struct {
	margin         Margin
	boxSpacing     float64
	curlyHeight    float64
	arcSpacing     float64
	arcStartHeight float64
}

var presets = map[string]preset{
	DensityDense:    {Margin{1, 0}, 1, 1, 7, 18},
	DensityStandard: {Margin{2, 1}, 1, 4, 9, 19},
	DensitySpacious: {Margin{2, 1}, 3, 6, 12, 23},
}

// Densities returns the preset names, densest first.
func Densities() []string {
	return []string{DensityDense, DensityStandard, DensitySpacious}
}

// ApplyDensity overwrites the spacing fields with the named preset.
// It returns false and leaves c untouched for an unknown name.
func (c *Config) ApplyDensity(name string) bool {
	p, ok := presets[name]
	if !ok {
		return false
	}
	c.Density = name
	c.Margin = p.margin
	c.BoxSpacing = p.boxSpacing
	c.CurlyHeight = p.curlyHeight
	c.ArcSpacing = p.arcSpacing
	c.ArcStartHeight = p.arcStartHeight
	return true
}
