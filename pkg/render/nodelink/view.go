package nodelink

import (
	"math"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/render/camera"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/styles"
)

// View is everything needed to draw one project: the graph, where its nodes
// are, the camera looking at them, the active palette and the highlighted
// edge.
type View struct {
	Graph   *graph.Graph
	Layout  *layout.Layout
	Camera  *camera.Camera
	Palette styles.Palette

	highlight *graph.EdgeKey
}

// NewView bundles the parts of a view. The caller keeps ownership of each
// part; register the view with g.Subscribe to keep the highlight valid
// across edits.
func NewView(g *graph.Graph, l *layout.Layout, cam *camera.Camera, p styles.Palette) *View {
	return &View{Graph: g, Layout: l, Camera: cam, Palette: p}
}

// NodeAt returns the node drawn at screen position (x, y). When nodes
// overlap the one drawn last wins.
func (v *View) NodeAt(x, y float64) (string, bool) {
	p := v.Camera.ToWorld(x, y)
	ids := v.Graph.NodeIDs()
	for i := len(ids) - 1; i >= 0; i-- {
		pos, ok := v.Layout.Position(ids[i])
		if !ok {
			continue
		}
		if math.Hypot(p.X-pos.X, p.Y-pos.Y) <= layout.NodeRadius {
			return ids[i], true
		}
	}
	return "", false
}

// Detail describes a node and its surroundings.
type Detail struct {
	Node         graph.Node
	Position     layout.Position
	Placed       bool
	Color        string
	Dependencies []graph.Edge // Outgoing
	Dependents   []graph.Edge // Incoming
}

// Detail returns the node with the given id and its incident edges.
func (v *View) Detail(id string) (Detail, error) {
	n, ok := v.Graph.Node(id)
	if !ok {
		return Detail{}, errs.Wrap(errs.ErrCodeNotFound, graph.ErrNodeNotFound, "node %q", id)
	}
	pos, placed := v.Layout.Position(id)
	return Detail{
		Node:         n,
		Position:     pos,
		Placed:       placed,
		Color:        v.Palette.Color(n.Type),
		Dependencies: v.Graph.Dependencies(id),
		Dependents:   v.Graph.Dependents(id),
	}, nil
}

// Highlight marks the edge with the given key. Only one edge is highlighted
// at a time.
func (v *View) Highlight(key graph.EdgeKey) error {
	if _, ok := v.Graph.Edge(key); !ok {
		return errs.Wrap(errs.ErrCodeNotFound, graph.ErrEdgeNotFound, "edge %s", key)
	}
	v.highlight = &key
	return nil
}

// Highlighted returns the highlighted edge key.
func (v *View) Highlighted() (graph.EdgeKey, bool) {
	if v.highlight == nil {
		return graph.EdgeKey{}, false
	}
	return *v.highlight, true
}

// ClearHighlight removes the edge highlight.
func (v *View) ClearHighlight() {
	v.highlight = nil
}

// GraphChanged follows the highlighted edge through updates and renames
// and drops it when the edge disappears.
func (v *View) GraphChanged(c graph.Change) {
	if v.highlight == nil {
		return
	}
	h := *v.highlight
	switch c.Kind {
	case graph.EdgeUpdated:
		if c.OldEdge.Key() == h {
			h = c.Edge.Key()
		}
	case graph.NodeRenamed:
		if h.Source == c.OldID {
			h.Source = c.NodeID
		}
		if h.Target == c.OldID {
			h.Target = c.NodeID
		}
	}
	if _, ok := v.Graph.Edge(h); !ok {
		v.highlight = nil
		return
	}
	v.highlight = &h
}
