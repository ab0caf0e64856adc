// Package nodelink draws an infrastructure graph as a node-link diagram.
//
// # Overview
//
// A [View] combines a graph, its layout, a camera and a palette. It answers
// the questions an interactive front end asks (which node is under the
// pointer, what is known about a node, which edge is highlighted) and
// renders the drawing through Graphviz.
//
// # Usage
//
//	v := nodelink.NewView(g, l, &cam, styles.MustLookup(styles.Default))
//	if id, ok := v.NodeAt(x, y); ok {
//		d, _ := v.Detail(id)
//		fmt.Println(d.Node.Name, len(d.Dependencies))
//	}
//	_ = v.Highlight(graph.EdgeKey{Source: "web", Target: "db", Type: "depends_on"})
//	png, err := v.RenderPNG(ctx, nodelink.Options{})
//
// # DOT Format
//
// [View.ToDOT] emits a digraph with every placed node pinned at its layout
// position in points, shaped and colored by node type, and every edge styled
// by edge type. Rendering uses the Graphviz nop engine, so the drawing
// matches the layout exactly.
//
// # Export
//
// [View.RenderPNG] renders what the camera sees at 300 DPI using the
// Graphviz viewport attribute. [View.RenderSVG] renders the whole drawing.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering; no external Graphviz installation is needed.
package nodelink
