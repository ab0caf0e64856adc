package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/render/camera"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/nodelink"
	"github.com/matzehuels/infragraph/pkg/render/styles"
)

func canvasView(t *testing.T) *nodelink.View {
	t.Helper()
	g := graph.New()
	for _, n := range []graph.Node{
		{ID: "web", Type: graph.NodeServer, Name: "Web"},
		{ID: "db", Type: graph.NodeDatabase, Name: "Postgres"},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(graph.Edge{Source: "web", Target: "db", Type: graph.EdgeDependsOn}); err != nil {
		t.Fatal(err)
	}
	eng, err := layout.NewEngine(layout.DefaultEngine)
	if err != nil {
		t.Fatal(err)
	}
	l := layout.New(eng)
	l.Drag("web", -200, 0)
	l.Drag("db", 200, 0)
	cam := camera.New(800, 600)
	return nodelink.NewView(g, l, &cam, styles.MustLookup(styles.Default))
}

func TestDrawView(t *testing.T) {
	v := canvasView(t)
	c := drawView(v, 80, 30)

	// web at screen (200, 300) -> cell (20, 15); db at (600, 300) -> (60, 15)
	rows := strings.Split(c.plain(), "\n")
	if len(rows) != 30 {
		t.Fatalf("canvas has %d rows, want 30", len(rows))
	}
	row := []rune(rows[15])
	if row[20] != glyphPinned || row[60] != glyphPinned {
		t.Errorf("row 15 = %q, want pinned glyphs at 20 and 60", rows[15])
	}
	if !strings.Contains(rows[15], "Web") || !strings.Contains(rows[15], "Postgres") {
		t.Errorf("row 15 = %q, want labels", rows[15])
	}
	if row[40] != glyphEdge {
		t.Errorf("cell (40, 15) = %q, want edge glyph", row[40])
	}

	if id, ok := c.nodeAt(20, 15); !ok || id != "web" {
		t.Errorf("nodeAt(20, 15) = %q, %v; want web", id, ok)
	}
	if id, ok := c.nodeAt(63, 15); !ok || id != "db" {
		t.Errorf("nodeAt on label = %q, %v; want db", id, ok)
	}
	if _, ok := c.nodeAt(5, 5); ok {
		t.Error("nodeAt on empty cell found a node")
	}

	x, y := c.screenPoint(v, 20, 15)
	if x != 205 || y != 310 {
		t.Errorf("screenPoint(20, 15) = %v, %v; want 205, 310", x, y)
	}
}

func TestDrawViewHighlightAndClip(t *testing.T) {
	v := canvasView(t)
	if err := v.Highlight(graph.EdgeKey{Source: "web", Target: "db", Type: graph.EdgeDependsOn}); err != nil {
		t.Fatal(err)
	}
	v.Camera.Pan(300, 0) // db moves to screen x=900, off the canvas

	c := drawView(v, 80, 30)
	rows := strings.Split(c.plain(), "\n")
	if !strings.ContainsRune(rows[15], glyphMarked) {
		t.Errorf("row 15 = %q, want highlighted edge", rows[15])
	}
	if _, ok := c.nodeAt(90, 15); ok {
		t.Error("node outside the canvas is hittable")
	}
	if got := len(strings.Split(c.String(), "\n")); got != 30 {
		t.Errorf("String() has %d lines, want 30", got)
	}
}

func TestNewCanvasMinimumSize(t *testing.T) {
	c := newCanvas(0, -3)
	if c.cols != 1 || c.rows != 1 {
		t.Errorf("newCanvas(0, -3) = %dx%d, want 1x1", c.cols, c.rows)
	}
}
