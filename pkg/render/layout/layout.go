// Package layout keeps the 2D position of every node in a graph.
//
// Positions are in points (1/72 inch) with the y axis pointing up, the
// coordinate system Graphviz uses. Nodes without a position are placed by an
// [Engine] on the next [Layout.Sync]; nodes the user dragged are pinned and
// stay where they were dropped until [Layout.Unpin] or [Layout.Reset].
//
// A Layout subscribes to its graph through [graph.Listener] so that removed
// nodes lose their positions and renamed nodes keep them.
package layout

import (
	"context"
	"maps"
	"math"
	"time"

	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/observability"
)

// NodeRadius is the half-size of a drawn node in points. Renderers draw
// nodes at this size and hit-testing uses it.
const NodeRadius = 27.0

// Point is a location in layout coordinates.
type Point struct {
	X, Y float64
}

// Position is where a node is drawn. Pinned positions are never moved by
// the engine.
type Position struct {
	X, Y   float64
	Pinned bool
}

// Point returns the position without the pin flag.
func (p Position) Point() Point { return Point{X: p.X, Y: p.Y} }

// Rect is an axis-aligned rectangle in layout coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Layout maps node ids to positions.
type Layout struct {
	engine    Engine
	positions map[string]Position
}

// New creates an empty layout placed by engine.
func New(engine Engine) *Layout {
	return &Layout{engine: engine, positions: make(map[string]Position)}
}

// Engine returns the placement engine.
func (l *Layout) Engine() Engine { return l.engine }

// SetEngine switches the placement engine. Unpinned positions are dropped so
// the next Sync places them with the new engine.
func (l *Layout) SetEngine(e Engine) {
	l.engine = e
	l.Relayout()
}

// Position returns the position of id.
func (l *Layout) Position(id string) (Position, bool) {
	p, ok := l.positions[id]
	return p, ok
}

// Positions returns a copy of all positions.
func (l *Layout) Positions() map[string]Position {
	return maps.Clone(l.positions)
}

// Len returns the number of positioned nodes.
func (l *Layout) Len() int { return len(l.positions) }

// Sync places every node of g that has no position yet. Nodes already
// positioned are handed to the engine as fixed so the drawing does not jump.
// Positions of ids no longer in g are dropped.
func (l *Layout) Sync(ctx context.Context, g *graph.Graph) (err error) {
	for id := range l.positions {
		if !g.HasNode(id) {
			delete(l.positions, id)
		}
	}
	missing := 0
	for _, id := range g.NodeIDs() {
		if _, ok := l.positions[id]; !ok {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		observability.Render().OnLayout(ctx, l.engine.Name(), g.NodeCount(), time.Since(start), err)
	}()

	fixed := make(map[string]Point, len(l.positions))
	for id, p := range l.positions {
		fixed[id] = p.Point()
	}
	placed, err := l.engine.Place(ctx, g, fixed)
	if err != nil {
		return err
	}
	for _, id := range g.NodeIDs() {
		if _, ok := l.positions[id]; ok {
			continue
		}
		p, ok := placed[id]
		if !ok || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			p = Point{}
		}
		l.positions[id] = Position{X: p.X, Y: p.Y}
	}
	return nil
}

// Drag moves id to (x, y) and pins it there.
func (l *Layout) Drag(id string, x, y float64) {
	l.positions[id] = Position{X: x, Y: y, Pinned: true}
}

// Unpin releases a dragged node so the next Sync places it again. It
// reports whether id was pinned.
func (l *Layout) Unpin(id string) bool {
	p, ok := l.positions[id]
	if !ok || !p.Pinned {
		return false
	}
	delete(l.positions, id)
	return true
}

// Relayout drops every unpinned position.
func (l *Layout) Relayout() {
	maps.DeleteFunc(l.positions, func(_ string, p Position) bool { return !p.Pinned })
}

// Reset drops every position, pinned or not.
func (l *Layout) Reset() {
	clear(l.positions)
}

// Bounds returns the rectangle enclosing every drawn node, or false when the
// layout is empty.
func (l *Layout) Bounds() (Rect, bool) {
	if len(l.positions) == 0 {
		return Rect{}, false
	}
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range l.positions {
		r.MinX = math.Min(r.MinX, p.X-NodeRadius)
		r.MinY = math.Min(r.MinY, p.Y-NodeRadius)
		r.MaxX = math.Max(r.MaxX, p.X+NodeRadius)
		r.MaxY = math.Max(r.MaxY, p.Y+NodeRadius)
	}
	return r, true
}

// GraphChanged keeps positions consistent with node removals and renames.
func (l *Layout) GraphChanged(c graph.Change) {
	switch c.Kind {
	case graph.NodeRemoved:
		delete(l.positions, c.NodeID)
	case graph.NodeRenamed:
		if p, ok := l.positions[c.OldID]; ok {
			delete(l.positions, c.OldID)
			l.positions[c.NodeID] = p
		}
	case graph.Reset:
		l.Reset()
	}
}
