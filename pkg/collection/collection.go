// Package collection describes the annotation types of a document collection.
//
// A [Collection] tells the layout engine how to label spans and arcs, which
// attribute values exist and which glyphs they contribute to span labels.
// Collections are written in YAML:
//
//	entities:
//	  - type: Person
//	    labels: [Person, Per, P]
//	    bg_color: "#ffccaa"
//	events:
//	  - type: Give
//	    arcs:
//	      - type: Giver
//	        labels: [Giver, Gvr]
//	relations:
//	  - type: Equiv
//	    symmetric: true
//	    dash_array: "3,3"
//	event_attributes:
//	  - type: Negation
//	    values:
//	      - name: Negation
//	        glyph: "[NEG]"
//
// Types not present in the collection are still drawn; the type name doubles
// as the label.
package collection

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Glyph positions.
const (
	GlyphLeft  = "left"
	GlyphRight = "right"
)

// DefaultArrowHead is drawn at the target end of arcs without an explicit arrowhead.
const DefaultArrowHead = "triangle,5"

// SpanType describes an entity or event type.
type SpanType struct {
	Type        string     `yaml:"type" json:"type"`
	Labels      []string   `yaml:"labels,omitempty" json:"labels,omitempty"`
	BgColor     string     `yaml:"bg_color,omitempty" json:"bg_color,omitempty"`
	FgColor     string     `yaml:"fg_color,omitempty" json:"fg_color,omitempty"`
	BorderColor string     `yaml:"border_color,omitempty" json:"border_color,omitempty"`
	Arcs        []ArcType  `yaml:"arcs,omitempty" json:"arcs,omitempty"`
	Children    []SpanType `yaml:"children,omitempty" json:"children,omitempty"`
}

// ArcType describes an event role or a relation.
type ArcType struct {
	Type      string   `yaml:"type" json:"type"`
	Labels    []string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Color     string   `yaml:"color,omitempty" json:"color,omitempty"`
	ArrowHead string   `yaml:"arrow_head,omitempty" json:"arrow_head,omitempty"`
	DashArray string   `yaml:"dash_array,omitempty" json:"dash_array,omitempty"`
	Symmetric bool     `yaml:"symmetric,omitempty" json:"symmetric,omitempty"`
}

// AttributeType describes a span attribute and its possible values.
// An attribute type with exactly one value is boolean.
type AttributeType struct {
	Type   string           `yaml:"type" json:"type"`
	Name   string           `yaml:"name,omitempty" json:"name,omitempty"`
	Values []AttributeValue `yaml:"values" json:"values"`
}

// AttributeValue is one value of an attribute type. A value without a glyph
// has no visual presentation.
type AttributeValue struct {
	Name      string `yaml:"name" json:"name"`
	Glyph     string `yaml:"glyph,omitempty" json:"glyph,omitempty"`
	Position  string `yaml:"position,omitempty" json:"position,omitempty"`
	DashArray string `yaml:"dash_array,omitempty" json:"dash_array,omitempty"`
}

// Defaults are applied to types that leave a visual property empty.
type Defaults struct {
	BgColor     string `yaml:"bg_color,omitempty" json:"bg_color,omitempty"`
	FgColor     string `yaml:"fg_color,omitempty" json:"fg_color,omitempty"`
	BorderColor string `yaml:"border_color,omitempty" json:"border_color,omitempty"`
	ArcColor    string `yaml:"arc_color,omitempty" json:"arc_color,omitempty"`
	ArrowHead   string `yaml:"arrow_head,omitempty" json:"arrow_head,omitempty"`
}

// Collection is the type configuration of a document collection.
// It is read-only once loaded and safe for concurrent use.
type Collection struct {
	Name             string          `yaml:"name,omitempty" json:"name,omitempty"`
	Entities         []SpanType      `yaml:"entities" json:"entities"`
	Events           []SpanType      `yaml:"events" json:"events"`
	Relations        []ArcType       `yaml:"relations" json:"relations"`
	EntityAttributes []AttributeType `yaml:"entity_attributes" json:"entity_attributes"`
	EventAttributes  []AttributeType `yaml:"event_attributes" json:"event_attributes"`
	Defaults         Defaults        `yaml:"defaults" json:"defaults"`

	once      sync.Once
	spans     map[string]*SpanType
	relations map[string]*ArcType
	entAttrs  map[string]*AttributeType
	evtAttrs  map[string]*AttributeType
}

// Load reads a YAML collection file.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates YAML collection data.
func Parse(data []byte) (*Collection, error) {
	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &c, nil
}

// Validate checks that every type is named and glyph positions are known.
func (c *Collection) Validate() error {
	for _, group := range [][]SpanType{c.Entities, c.Events} {
		if err := validateSpanTypes(group); err != nil {
			return err
		}
	}
	for i := range c.Relations {
		if err := c.Relations[i].Validate(); err != nil {
			return fmt.Errorf("relation %d: %w", i, err)
		}
	}
	for _, group := range [][]AttributeType{c.EntityAttributes, c.EventAttributes} {
		for i := range group {
			if err := group[i].Validate(); err != nil {
				return fmt.Errorf("attribute %q: %w", group[i].Type, err)
			}
		}
	}
	return nil
}

func validateSpanTypes(types []SpanType) error {
	for i := range types {
		t := &types[i]
		if err := validation.ValidateStruct(t,
			validation.Field(&t.Type, validation.Required),
		); err != nil {
			return fmt.Errorf("span type %d: %w", i, err)
		}
		for j := range t.Arcs {
			if err := t.Arcs[j].Validate(); err != nil {
				return fmt.Errorf("span type %q arc %d: %w", t.Type, j, err)
			}
		}
		if err := validateSpanTypes(t.Children); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks an arc type.
func (a *ArcType) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Type, validation.Required),
	)
}

// Validate checks an attribute type and its values.
func (a *AttributeType) Validate() error {
	if err := validation.ValidateStruct(a,
		validation.Field(&a.Type, validation.Required),
		validation.Field(&a.Values, validation.Required),
	); err != nil {
		return err
	}
	for i := range a.Values {
		v := &a.Values[i]
		if err := validation.ValidateStruct(v,
			validation.Field(&v.Name, validation.Required),
			validation.Field(&v.Position, validation.In(GlyphLeft, GlyphRight)),
		); err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
	}
	return nil
}

// Bool returns the single value name of a boolean attribute type.
func (a *AttributeType) Bool() (string, bool) {
	if len(a.Values) != 1 {
		return "", false
	}
	return a.Values[0].Name, true
}

// DisplayName returns Name, falling back to Type.
func (a *AttributeType) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Type
}

// Value looks up a value by name. Boolean attribute types resolve every
// value to their single value.
func (a *AttributeType) Value(name string) (AttributeValue, bool) {
	if b, ok := a.Bool(); ok {
		name = b
	}
	for _, v := range a.Values {
		if v.Name == name {
			return v, true
		}
	}
	return AttributeValue{}, false
}

// HasVisual reports whether the value changes the drawing of a span.
func (v AttributeValue) HasVisual() bool {
	return v.Glyph != "" || v.DashArray != ""
}

func (c *Collection) index() {
	c.once.Do(func() {
		c.spans = make(map[string]*SpanType)
		c.relations = make(map[string]*ArcType)
		c.entAttrs = make(map[string]*AttributeType)
		c.evtAttrs = make(map[string]*AttributeType)

		var walk func([]SpanType)
		walk = func(types []SpanType) {
			for i := range types {
				c.spans[types[i].Type] = &types[i]
				walk(types[i].Children)
			}
		}
		walk(c.Entities)
		walk(c.Events)
		for i := range c.Relations {
			c.relations[c.Relations[i].Type] = &c.Relations[i]
		}
		for i := range c.EntityAttributes {
			c.entAttrs[c.EntityAttributes[i].Type] = &c.EntityAttributes[i]
		}
		for i := range c.EventAttributes {
			c.evtAttrs[c.EventAttributes[i].Type] = &c.EventAttributes[i]
		}
	})
}

var trailingNumber = regexp.MustCompile(`^(.*?)(\d*)$`)

// SplitNumber splits a trailing decimal suffix off a type or label:
// "Theme2" yields ("Theme", "2").
func SplitNumber(s string) (base, num string) {
	m := trailingNumber.FindStringSubmatch(s)
	return m[1], m[2]
}
