package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
)

// Engine names.
const (
	EngineFDP   = "fdp"
	EngineNeato = "neato"
	EngineSFDP  = "sfdp"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineFDP

const pointsPerInch = 72.0

// Engine computes positions for the nodes of a graph.
type Engine interface {
	// Name returns the engine identifier.
	Name() string
	// Place returns a position for every node of g. Nodes in fixed must end
	// up at the given points.
	Place(ctx context.Context, g *graph.Graph, fixed map[string]Point) (map[string]Point, error)
}

var graphvizLayouts = map[string]graphviz.Layout{
	EngineFDP:   graphviz.FDP,
	EngineNeato: graphviz.NEATO,
	EngineSFDP:  graphviz.SFDP,
}

// Engines lists the available engine names.
func Engines() []string {
	return []string{EngineFDP, EngineNeato, EngineSFDP}
}

// NewEngine returns the Graphviz force-directed engine with the given name.
// An empty name selects [DefaultEngine].
func NewEngine(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	l, ok := graphvizLayouts[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown layout engine %q (available: %v)", name, Engines())
	}
	return &graphvizEngine{name: name, layout: l}, nil
}

// graphvizEngine runs a Graphviz layout in-process and reads the result
// back in the "plain" output format.
type graphvizEngine struct {
	name   string
	layout graphviz.Layout
}

func (e *graphvizEngine) Name() string { return e.name }

func (e *graphvizEngine) Place(ctx context.Context, g *graph.Graph, fixed map[string]Point) (map[string]Point, error) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return map[string]Point{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dot := layoutDOT(g, ids, fixed)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(e.layout)

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("%s layout: %w", e.name, err)
	}
	placed, err := readPlain(buf.Bytes(), ids)
	if err != nil {
		return nil, fmt.Errorf("%s layout: %w", e.name, err)
	}
	anchor(placed, ids, fixed)
	return placed, nil
}

// layoutDOT writes g as an undirected graph with nodes named n<index>, so
// that arbitrary ids never need quoting in the output. Fixed nodes carry a
// pinned pos in inches.
func layoutDOT(g *graph.Graph, ids []string, fixed map[string]Point) string {
	index := make(map[string]int, len(ids))
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=false;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, width=%.3f, height=%.3f, label=\"\"];\n",
		2*NodeRadius/pointsPerInch, 2*NodeRadius/pointsPerInch)

	for i, id := range ids {
		index[id] = i
		if p, ok := fixed[id]; ok {
			fmt.Fprintf(&buf, "  n%d [pos=\"%.4f,%.4f!\", pin=true];\n", i, p.X/pointsPerInch, p.Y/pointsPerInch)
			continue
		}
		fmt.Fprintf(&buf, "  n%d;\n", i)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", index[e.Source], index[e.Target])
	}
	buf.WriteString("}\n")
	return buf.String()
}

// readPlain extracts node centers from Graphviz "plain" output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//
// Coordinates are in inches and converted to points.
func readPlain(out []byte, ids []string) (map[string]Point, error) {
	placed := make(map[string]Point, len(ids))
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != "node" {
			continue
		}
		i, err := strconv.Atoi(strings.TrimPrefix(fields[1], "n"))
		if err != nil || i < 0 || i >= len(ids) {
			return nil, fmt.Errorf("unexpected node %q in output", fields[1])
		}
		x, errX := strconv.ParseFloat(fields[2], 64)
		y, errY := strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("bad position for %s: %s,%s", fields[1], fields[2], fields[3])
		}
		placed[ids[i]] = Point{X: x * pointsPerInch, Y: y * pointsPerInch}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return placed, nil
}

// anchor shifts placed so the first fixed node lands exactly on its pin,
// then snaps every fixed node to its point. Engines may translate the
// drawing or ignore pins.
func anchor(placed map[string]Point, ids []string, fixed map[string]Point) {
	if len(fixed) == 0 {
		return
	}
	for _, id := range ids {
		want, ok := fixed[id]
		if !ok {
			continue
		}
		got, ok := placed[id]
		if !ok {
			break
		}
		dx, dy := want.X-got.X, want.Y-got.Y
		for k, p := range placed {
			placed[k] = Point{X: p.X + dx, Y: p.Y + dy}
		}
		break
	}
	for id, p := range fixed {
		placed[id] = p
	}
}
