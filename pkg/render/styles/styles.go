// Package styles maps graph types to visual attributes.
//
// Node types select a Graphviz shape and a fill color from the active
// [Palette]; edge types select a line style. The four palettes and their
// colors are fixed:
//
//	            file     docker   router   switch   server   database
//	default     #FF6B9D  #4ECDC4  #95E1D3  #C77DFF  #FFD93D  #FF8C42
//	dark        #E63946  #457B9D  #2A9D8F  #9B59B6  #F4A261  #E76F51
//	pastel      #FFB3BA  #BAE1FF  #BAFFC9  #E0BBE4  #FFFFBA  #FFDFBA
//	vibrant     #FF006E  #00B4D8  #06FFA5  #9D4EDD  #FFBE0B  #FF5400
package styles

import (
	"slices"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
)

// Palette names.
const (
	Default = "default"
	Dark    = "dark"
	Pastel  = "pastel"
	Vibrant = "vibrant"
)

// FallbackColor fills nodes whose type has no palette entry.
const FallbackColor = "#ADB5BD"

// Palette assigns a fill color to each node type.
type Palette struct {
	Name   string
	Colors map[graph.NodeType]string
}

// Color returns the fill color for t.
func (p Palette) Color(t graph.NodeType) string {
	if c, ok := p.Colors[t]; ok {
		return c
	}
	return FallbackColor
}

func palette(name string, colors ...string) Palette {
	m := make(map[graph.NodeType]string, len(colors))
	for i, c := range colors {
		m[graph.NodeTypes[i]] = c
	}
	return Palette{Name: name, Colors: m}
}

var palettes = []Palette{
	palette(Default, "#FF6B9D", "#4ECDC4", "#95E1D3", "#C77DFF", "#FFD93D", "#FF8C42"),
	palette(Dark, "#E63946", "#457B9D", "#2A9D8F", "#9B59B6", "#F4A261", "#E76F51"),
	palette(Pastel, "#FFB3BA", "#BAE1FF", "#BAFFC9", "#E0BBE4", "#FFFFBA", "#FFDFBA"),
	palette(Vibrant, "#FF006E", "#00B4D8", "#06FFA5", "#9D4EDD", "#FFBE0B", "#FF5400"),
}

// Names returns the palette names in menu order.
func Names() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the named palette. An empty name selects the default.
func Lookup(name string) (Palette, error) {
	if name == "" {
		name = Default
	}
	i := slices.IndexFunc(palettes, func(p Palette) bool { return p.Name == name })
	if i < 0 {
		return Palette{}, errs.New(errs.ErrCodeInvalidStyle, "unknown color scheme %q (available: %v)", name, Names())
	}
	return palettes[i], nil
}

// MustLookup is like Lookup but panics on unknown names. For package-level
// defaults only.
func MustLookup(name string) Palette {
	p, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return p
}

// =============================================================================
// Nodes
// =============================================================================

// NodeStyle holds the Graphviz attributes of a node.
type NodeStyle struct {
	Shape     string
	Style     string
	FillColor string
}

var shapes = map[graph.NodeType]NodeStyle{
	graph.NodeFile:            {Shape: "box", Style: "filled"},
	graph.NodeDockerContainer: {Shape: "circle", Style: "filled"},
	graph.NodeRouter:          {Shape: "diamond", Style: "filled"},
	graph.NodeSwitch:          {Shape: "diamond", Style: "filled"},
	graph.NodeServer:          {Shape: "box", Style: "rounded,filled"},
	graph.NodeDatabase:        {Shape: "cylinder", Style: "filled"},
}

// Node returns the style of a node of type t under palette p.
func Node(p Palette, t graph.NodeType) NodeStyle {
	s, ok := shapes[t]
	if !ok {
		s = NodeStyle{Shape: "ellipse", Style: "filled"}
	}
	s.FillColor = p.Color(t)
	return s
}

// =============================================================================
// Edges
// =============================================================================

// Edge colors and widths.
const (
	EdgeColor      = "#495057"
	EdgeMutedColor = "#868E96"
	HighlightColor = "#E63946"
	EdgeWidth      = 1.8
	HighlightWidth = 3.0
)

// EdgeStyle holds the Graphviz attributes of an edge.
type EdgeStyle struct {
	Style string // solid, dashed, dotted, bold, or a comma-separated mix
	Color string
	Width float64
}

var lines = map[string]EdgeStyle{
	graph.EdgeDependsOn:     {Style: "solid", Color: EdgeColor, Width: EdgeWidth},
	graph.EdgeCalls:         {Style: "dashed", Color: EdgeColor, Width: EdgeWidth},
	graph.EdgeConnectsTo:    {Style: "dotted", Color: EdgeColor, Width: EdgeWidth},
	graph.EdgeSendsTo:       {Style: "bold", Color: EdgeColor, Width: EdgeWidth},
	graph.EdgeUses:          {Style: "solid", Color: EdgeMutedColor, Width: EdgeWidth},
	graph.EdgeProvides:      {Style: "dashed", Color: EdgeMutedColor, Width: EdgeWidth},
	graph.EdgeRoutesThrough: {Style: "bold,dotted", Color: EdgeColor, Width: EdgeWidth},
}

var genericLine = EdgeStyle{Style: "solid", Color: EdgeMutedColor, Width: EdgeWidth}

// Edge returns the line style for an edge type. Unknown types get a plain
// gray line.
func Edge(edgeType string) EdgeStyle {
	if s, ok := lines[edgeType]; ok {
		return s
	}
	return genericLine
}

// Highlighted returns s recolored and widened for the selected edge.
func Highlighted(s EdgeStyle) EdgeStyle {
	s.Color = HighlightColor
	s.Width = HighlightWidth
	return s
}
