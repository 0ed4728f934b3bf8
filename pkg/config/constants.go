package config

import validation "github.com/go-ozzo/ozzo-validation/v4"

// Constants are the tuning values of the row and arc geometry.
// Defaults reproduce the classic look; they are empirical and are kept
// configurable rather than derived.
type Constants struct {
	RowSpacing           float64 `toml:"row_spacing" json:"row_spacing"`
	RowPadding           float64 `toml:"row_padding" json:"row_padding"`
	ArcRowPadding        float64 `toml:"arc_row_padding" json:"arc_row_padding"`
	SpanRowPadding       float64 `toml:"span_row_padding" json:"span_row_padding"`
	AnnotatedRowPadding  float64 `toml:"annotated_row_padding" json:"annotated_row_padding"`
	EmptyRowShrink       float64 `toml:"empty_row_shrink" json:"empty_row_shrink"`
	SentNumMargin        float64 `toml:"sent_num_margin" json:"sent_num_margin"`
	MarkedSpanSize       float64 `toml:"marked_span_size" json:"marked_span_size"`
	RectShadowSize       float64 `toml:"rect_shadow_size" json:"rect_shadow_size"`
	MinArcSlant          float64 `toml:"min_arc_slant" json:"min_arc_slant"`
	ArcSlant             float64 `toml:"arc_slant" json:"arc_slant"`
	ArcHorizontalSpacing float64 `toml:"arc_horizontal_spacing" json:"arc_horizontal_spacing"`
	ArcTextMargin        float64 `toml:"arc_text_margin" json:"arc_text_margin"`
	BoxTextMarginY       float64 `toml:"box_text_margin_y" json:"box_text_margin_y"`
	SmoothArcSteepness   float64 `toml:"smooth_arc_steepness" json:"smooth_arc_steepness"`
	ReverseArcControlX   float64 `toml:"reverse_arc_control_x" json:"reverse_arc_control_x"`
	NestingAdjustXStep   float64 `toml:"nesting_adjust_x_step" json:"nesting_adjust_x_step"`
	NestingAdjustYStep   float64 `toml:"nesting_adjust_y_step" json:"nesting_adjust_y_step"`
	YStartTweak          float64 `toml:"y_start_tweak" json:"y_start_tweak"`
	HighlightTextPadding float64 `toml:"highlight_text_padding" json:"highlight_text_padding"`
}

// DefaultConstants returns the stock tuning values.
func DefaultConstants() Constants {
	return Constants{
		RowSpacing:           -5,
		RowPadding:           2,
		ArcRowPadding:        5,
		SpanRowPadding:       1.5,
		AnnotatedRowPadding:  1.5,
		EmptyRowShrink:       5,
		SentNumMargin:        20,
		MarkedSpanSize:       6,
		RectShadowSize:       3,
		MinArcSlant:          8,
		ArcSlant:             15,
		ArcHorizontalSpacing: 10,
		ArcTextMargin:        1,
		BoxTextMarginY:       1.5,
		SmoothArcSteepness:   0.5,
		ReverseArcControlX:   5,
		NestingAdjustXStep:   1,
		NestingAdjustYStep:   2,
		YStartTweak:          1,
		HighlightTextPadding: 2,
	}
}

// Validate rejects negative sizes. RowSpacing may be negative.
func (k Constants) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.SentNumMargin, validation.Min(0.0)),
		validation.Field(&k.MarkedSpanSize, validation.Min(0.0)),
		validation.Field(&k.RectShadowSize, validation.Min(0.0)),
		validation.Field(&k.MinArcSlant, validation.Min(0.0)),
		validation.Field(&k.ArcSlant, validation.Min(0.0)),
		validation.Field(&k.ArcHorizontalSpacing, validation.Min(0.0)),
		validation.Field(&k.SmoothArcSteepness, validation.Min(0.0), validation.Max(1.0)),
	)
}
