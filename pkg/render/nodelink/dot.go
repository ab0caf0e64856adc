package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/observability"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/styles"
)

// ExportDPI is the resolution of raster exports.
const ExportDPI = 300

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatDOT = "dot"
)

// Formats lists the supported output formats.
func Formats() []string { return []string{FormatPNG, FormatSVG, FormatDOT} }

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node type to node labels and the edge type to edge
	// labels. When false, nodes show their name only.
	Detailed bool
}

// ToDOT converts the view to Graphviz DOT with every node at its layout
// position (in points). Nodes without a position are left for Graphviz to
// place. The result renders with the nop engine.
func (v *View) ToDOT(opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  splines=true;\n")
	fmt.Fprintf(&buf, "  node [fixedsize=true, width=%.3f, height=%.3f, fontsize=9, fontname=\"Helvetica\", color=\"#343A40\", penwidth=1.2];\n",
		2*layout.NodeRadius/72, 2*layout.NodeRadius/72)
	buf.WriteString("  edge [arrowsize=0.7, fontsize=8, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, n := range v.Graph.Nodes() {
		attrs := v.nodeAttrs(n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	hl, highlighted := v.Highlighted()
	for _, e := range v.Graph.Edges() {
		s := styles.Edge(e.Type)
		if highlighted && e.Key() == hl {
			s = styles.Highlighted(s)
		}
		attrs := []string{
			fmt.Sprintf("style=%q", s.Style),
			fmt.Sprintf("color=%q", s.Color),
			fmt.Sprintf("penwidth=%.1f", s.Width),
			fmt.Sprintf("tooltip=%q", e.Key().String()),
		}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Type))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (v *View) nodeAttrs(n graph.Node, detailed bool) []string {
	s := styles.Node(v.Palette, n.Type)
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("shape=%s", s.Shape),
		fmt.Sprintf("style=%q", s.Style),
		fmt.Sprintf("fillcolor=%q", s.FillColor),
	}
	if p, ok := v.Layout.Position(n.ID); ok {
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f\"", p.X, p.Y))
	}
	if n.Description != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Description))
	}
	return attrs
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Label()
	}
	parts := []string{n.Label(), string(n.Type)}
	for _, k := range slices.Sorted(maps.Keys(n.Properties)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Properties[k]))
	}
	return strings.Join(parts, "\n")
}

// viewport returns the Graphviz viewport attribute for the camera: the view
// size in points, the zoom, and the layout point at the center of the view.
func (v *View) viewport() string {
	c := v.Camera
	center := c.ToWorld(c.Width/2, c.Height/2)
	return fmt.Sprintf("%.2f,%.2f,%.4f,%.2f,%.2f", c.Width, c.Height, c.Scale, center.X, center.Y)
}

// withGraphAttrs inserts graph attributes right after the opening brace.
func withGraphAttrs(dot string, attrs ...string) string {
	i := strings.Index(dot, "{\n")
	if i < 0 {
		return dot
	}
	var b strings.Builder
	b.WriteString(dot[:i+2])
	for _, a := range attrs {
		b.WriteString("  " + a + ";\n")
	}
	b.WriteString(dot[i+2:])
	return b.String()
}

// Render writes the view in the given format to w. PNG output is the
// current camera view at [ExportDPI]; SVG output is the whole drawing; DOT
// output is the positioned source.
func (v *View) Render(ctx context.Context, format string, opts Options, w io.Writer) (err error) {
	start := time.Now()
	var n int
	defer func() {
		observability.Render().OnExport(ctx, format, n, time.Since(start), err)
	}()

	var out []byte
	switch format {
	case FormatPNG:
		out, err = v.RenderPNG(ctx, opts)
	case FormatSVG:
		out, err = v.RenderSVG(ctx, opts)
	case FormatDOT:
		out = []byte(v.ToDOT(opts))
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown output format %q (available: %v)", format, Formats())
	}
	if err != nil {
		return err
	}
	n, err = w.Write(out)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", format)
	}
	return nil
}

// RenderPNG rasterizes the current camera view at [ExportDPI].
func (v *View) RenderPNG(ctx context.Context, opts Options) ([]byte, error) {
	dot := withGraphAttrs(v.ToDOT(opts),
		fmt.Sprintf("dpi=%d", ExportDPI),
		fmt.Sprintf("viewport=%q", v.viewport()),
	)
	return renderDOT(ctx, dot, graphviz.PNG)
}

// RenderSVG renders the whole drawing as SVG.
func (v *View) RenderSVG(ctx context.Context, opts Options) ([]byte, error) {
	svg, err := renderDOT(ctx, v.ToDOT(opts), graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
