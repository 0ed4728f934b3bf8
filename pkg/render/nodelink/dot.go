package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/collection"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes offsets, tower ids and attributes in node labels.
	// When false, only the span type and text are shown.
	Detailed bool
	// Collection provides node and edge colors. Nil uses the default collection.
	Collection *collection.Collection
}

// ToDOT converts the annotation graph of doc to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(doc *annotation.Document, opts Options) string {
	coll := opts.Collection
	if coll == nil {
		coll = collection.Default()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	spans := doc.SortedSpans
	if spans == nil {
		spans = doc.Spans()
	}
	for _, s := range spans {
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(nodeAttrs(s, coll, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, a := range doc.Arcs {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", a.Origin, a.Target, strings.Join(edgeAttrs(a, coll), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s *annotation.Span, detailed bool) string {
	label := s.Type + "\n" + s.Text
	if !detailed {
		return label
	}
	parts := []string{fmt.Sprintf("[%d, %d)", s.From, s.To), "tower: " + strconv.Itoa(s.TowerID)}
	parts = append(parts, s.AttributeText...)
	if s.Comment != nil {
		parts = append(parts, s.Comment.Kind+": "+s.Comment.Text)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func nodeAttrs(s *annotation.Span, coll *collection.Collection, detailed bool) []string {
	bg, fg, border := coll.SpanColors(s.Type)
	if border == "darken" {
		border = fg
	}
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(s, detailed)),
		fmt.Sprintf("fillcolor=%q", bg),
		fmt.Sprintf("fontcolor=%q", fg),
		fmt.Sprintf("color=%q", border),
	}
	if s.DashArray != "" || s.Warning {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func edgeAttrs(a *annotation.Arc, coll *collection.Collection) []string {
	originType := ""
	if a.OriginSpan != nil {
		originType = a.OriginSpan.Type
	}
	desc, _ := coll.ArcDesc(originType, a.Type)
	color := coll.ArcColor(originType, a.Type)
	attrs := []string{
		fmt.Sprintf("label=%q", coll.ArcDisplayForm(originType, a.Type)),
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("fontcolor=%q", color),
	}
	switch {
	case a.Equiv:
		attrs = append(attrs, "style=dashed", "dir=none")
	case desc.Symmetric:
		attrs = append(attrs, "dir=both")
	}
	if !a.Equiv && desc.DashArray != "" {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
