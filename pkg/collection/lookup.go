package collection

// SpanType returns the configuration of a span type.
func (c *Collection) SpanType(typ string) (*SpanType, bool) {
	c.index()
	t, ok := c.spans[typ]
	return t, ok
}

// SpanLabels returns the labels of a span type, longest form first.
// It returns nil for unconfigured types.
func (c *Collection) SpanLabels(typ string) []string {
	if t, ok := c.SpanType(typ); ok && len(t.Labels) > 0 {
		return t.Labels
	}
	return nil
}

// SpanDisplayForm returns the primary label of a span type, or the type itself.
func (c *Collection) SpanDisplayForm(typ string) string {
	if labels := c.SpanLabels(typ); len(labels) > 0 {
		return labels[0]
	}
	return typ
}

// SpanColors returns the background, foreground and border colors of a span
// type, falling back to the collection defaults and then to white on black.
func (c *Collection) SpanColors(typ string) (bg, fg, border string) {
	bg, fg, border = c.Defaults.BgColor, c.Defaults.FgColor, c.Defaults.BorderColor
	if t, ok := c.SpanType(typ); ok {
		bg = firstNonEmpty(t.BgColor, bg)
		fg = firstNonEmpty(t.FgColor, fg)
		border = firstNonEmpty(t.BorderColor, border)
	}
	return firstNonEmpty(bg, "#ffffff"), firstNonEmpty(fg, "#000000"), firstNonEmpty(border, "#000000")
}

// Relation returns a relation type by name.
func (c *Collection) Relation(typ string) (*ArcType, bool) {
	c.index()
	r, ok := c.relations[typ]
	return r, ok
}

func (c *Collection) spanArc(originType, arcType string) (*ArcType, bool) {
	t, ok := c.SpanType(originType)
	if !ok {
		return nil, false
	}
	for i := range t.Arcs {
		if t.Arcs[i].Type == arcType {
			return &t.Arcs[i], true
		}
	}
	return nil, false
}

// ArcDesc resolves the description of an arc leaving a span of originType.
// The origin type's arcs are searched for the full arc type, then for the
// type without its numeric suffix; relation types with either name are
// merged over the result.
func (c *Collection) ArcDesc(originType, arcType string) (ArcType, bool) {
	base, _ := SplitNumber(arcType)

	var desc ArcType
	found := false
	if a, ok := c.spanArc(originType, arcType); ok {
		desc, found = *a, true
	} else if base != arcType {
		if a, ok := c.spanArc(originType, base); ok {
			desc, found = *a, true
		}
	}

	rel, ok := c.Relation(arcType)
	if !ok {
		rel, ok = c.Relation(base)
	}
	if ok {
		if !found {
			desc = *rel
		} else {
			desc.Labels = firstNonEmptySlice(rel.Labels, desc.Labels)
			desc.Color = firstNonEmpty(rel.Color, desc.Color)
			desc.ArrowHead = firstNonEmpty(rel.ArrowHead, desc.ArrowHead)
			desc.DashArray = firstNonEmpty(rel.DashArray, desc.DashArray)
			desc.Symmetric = desc.Symmetric || rel.Symmetric
		}
		found = true
	}
	return desc, found
}

// ArcLabels returns the labels of an arc type leaving originType, or nil.
func (c *Collection) ArcLabels(originType, arcType string) []string {
	if d, ok := c.ArcDesc(originType, arcType); ok && len(d.Labels) > 0 {
		return d.Labels
	}
	return nil
}

// ArcDisplayForm returns the primary label of an arc, or its type.
func (c *Collection) ArcDisplayForm(originType, arcType string) string {
	if labels := c.ArcLabels(originType, arcType); len(labels) > 0 {
		return labels[0]
	}
	return arcType
}

// ArcColor returns the stroke color of an arc.
func (c *Collection) ArcColor(originType, arcType string) string {
	if d, ok := c.ArcDesc(originType, arcType); ok && d.Color != "" {
		return d.Color
	}
	return firstNonEmpty(c.Defaults.ArcColor, "#000000")
}

// ArrowHead returns the configured arrowhead of an arc, or "" if neither
// the arc nor the collection defaults name one.
func (c *Collection) ArrowHead(originType, arcType string) string {
	if d, ok := c.ArcDesc(originType, arcType); ok && d.ArrowHead != "" {
		return d.ArrowHead
	}
	return c.Defaults.ArrowHead
}

// Attribute finds an attribute type, preferring event attributes.
func (c *Collection) Attribute(name string) (*AttributeType, bool) {
	c.index()
	if a, ok := c.evtAttrs[name]; ok {
		return a, true
	}
	a, ok := c.entAttrs[name]
	return a, ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptySlice(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
