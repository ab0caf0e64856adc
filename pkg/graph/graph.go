package graph

import (
	"errors"
	"slices"

	errs "github.com/matzehuels/infragraph/pkg/errors"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.RenameNode]
	// when the node ID is empty or contains control characters.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrInvalidNodeType is returned by [Graph.AddNode] and [Graph.UpdateNode]
	// when the node type is not one of [NodeTypes].
	ErrInvalidNodeType = errors.New("invalid node type")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] and [Graph.RenameNode]
	// when a node with the same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrNodeNotFound is returned when an operation names a node that does
	// not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownSource is returned by [Graph.AddEdge] and [Graph.UpdateEdge]
	// when the source node does not exist.
	ErrUnknownSource = errors.New("unknown source node")

	// ErrUnknownTarget is returned by [Graph.AddEdge] and [Graph.UpdateEdge]
	// when the target node does not exist.
	ErrUnknownTarget = errors.New("unknown target node")

	// ErrInvalidEdgeType is returned when an edge has an empty type.
	ErrInvalidEdgeType = errors.New("edge type must not be empty")

	// ErrDuplicateEdge is returned when an edge with the same source, target
	// and type already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrEdgeNotFound is returned when no edge matches the given key.
	ErrEdgeNotFound = errors.New("edge not found")
)

// Graph is an insertion-ordered set of typed nodes and typed, directed edges.
//
// Every edge endpoint refers to an existing node, node IDs are unique, and at
// most one edge exists per (source, target, type). Failed operations leave the
// graph unchanged and return an *errors.Error whose Cause is one of the
// package sentinels, so callers can match on either.
//
// The zero value is not usable - use New. Graph is not safe for concurrent use.
type Graph struct {
	order   []string
	nodes   map[string]*Node
	edges   []Edge
	edgeSet map[EdgeKey]struct{}

	subs    []subscription
	nextSub int
	onPanic func(any)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edgeSet: make(map[EdgeKey]struct{}),
	}
}

// =============================================================================
// Node Operations
// =============================================================================

// AddNode appends n to the graph.
//
// Errors: ErrInvalidNodeID (INVALID_INPUT), ErrInvalidNodeType
// (INVALID_INPUT), ErrDuplicateNodeID (DUPLICATE_ID).
func (g *Graph) AddNode(n Node) error {
	if err := errs.ValidateID(n.ID); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidNodeID, "%s", errs.UserMessage(err))
	}
	if !n.Type.Valid() {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidNodeType, "node %q has type %q", n.ID, n.Type)
	}
	if _, exists := g.nodes[n.ID]; exists {
		return errs.Wrap(errs.ErrCodeDuplicateID, ErrDuplicateNodeID, "node %q already exists", n.ID)
	}
	n = n.clone()
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	g.notify(Change{Kind: NodeAdded, NodeID: n.ID})
	return nil
}

// RemoveNode deletes the node and every edge incident to it. One EdgeRemoved
// change is emitted per cascaded edge, then NodeRemoved.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return notFound(id)
	}

	var removed []Edge
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		if e.Touches(id) {
			removed = append(removed, e)
			return true
		}
		return false
	})
	for _, e := range removed {
		delete(g.edgeSet, e.Key())
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })

	for _, e := range removed {
		g.notify(Change{Kind: EdgeRemoved, Edge: e})
	}
	g.notify(Change{Kind: NodeRemoved, NodeID: id})
	return nil
}

// UpdateNode replaces the type, name, description and properties of the node
// with n.ID. The node keeps its position in the insertion order.
func (g *Graph) UpdateNode(n Node) error {
	cur, ok := g.nodes[n.ID]
	if !ok {
		return notFound(n.ID)
	}
	if !n.Type.Valid() {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidNodeType, "node %q has type %q", n.ID, n.Type)
	}
	*cur = n.clone()
	g.notify(Change{Kind: NodeUpdated, NodeID: n.ID})
	return nil
}

// RenameNode changes a node's ID, rewriting the endpoints of its edges. The
// node keeps its position in the insertion order.
func (g *Graph) RenameNode(oldID, newID string) error {
	n, ok := g.nodes[oldID]
	if !ok {
		return notFound(oldID)
	}
	if oldID == newID {
		return nil
	}
	if err := errs.ValidateID(newID); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidNodeID, "%s", errs.UserMessage(err))
	}
	if _, exists := g.nodes[newID]; exists {
		return errs.Wrap(errs.ErrCodeDuplicateID, ErrDuplicateNodeID, "node %q already exists", newID)
	}

	// Renaming can only collide on keys involving newID, which cannot exist yet.
	n.ID = newID
	delete(g.nodes, oldID)
	g.nodes[newID] = n
	g.order[slices.Index(g.order, oldID)] = newID

	for i, e := range g.edges {
		if !e.Touches(oldID) {
			continue
		}
		delete(g.edgeSet, e.Key())
		if e.Source == oldID {
			e.Source = newID
		}
		if e.Target == oldID {
			e.Target = newID
		}
		g.edges[i] = e
		g.edgeSet[e.Key()] = struct{}{}
	}

	g.notify(Change{Kind: NodeRenamed, NodeID: newID, OldID: oldID})
	return nil
}

// =============================================================================
// Edge Operations
// =============================================================================

// AddEdge appends e to the graph. Self-loops are allowed.
//
// Errors: ErrUnknownSource / ErrUnknownTarget (NOT_FOUND), ErrInvalidEdgeType
// (INVALID_INPUT), ErrDuplicateEdge (DUPLICATE_ID).
func (g *Graph) AddEdge(e Edge) error {
	if err := g.checkEdge(e, nil); err != nil {
		return err
	}
	g.edges = append(g.edges, e)
	g.edgeSet[e.Key()] = struct{}{}
	g.notify(Change{Kind: EdgeAdded, Edge: e})
	return nil
}

// RemoveEdge deletes the edge identified by (source, target, edgeType).
func (g *Graph) RemoveEdge(source, target, edgeType string) error {
	key := EdgeKey{Source: source, Target: target, Type: edgeType}
	i := g.edgeIndex(key)
	if i < 0 {
		return edgeNotFound(key)
	}
	e := g.edges[i]
	g.edges = slices.Delete(g.edges, i, i+1)
	delete(g.edgeSet, key)
	g.notify(Change{Kind: EdgeRemoved, Edge: e})
	return nil
}

// UpdateEdge replaces the edge identified by key with e, keeping its position
// in the insertion order. e may change any field, including the endpoints and
// type, subject to the same checks as [Graph.AddEdge].
func (g *Graph) UpdateEdge(key EdgeKey, e Edge) error {
	i := g.edgeIndex(key)
	if i < 0 {
		return edgeNotFound(key)
	}
	if err := g.checkEdge(e, &key); err != nil {
		return err
	}
	old := g.edges[i]
	g.edges[i] = e
	delete(g.edgeSet, key)
	g.edgeSet[e.Key()] = struct{}{}
	g.notify(Change{Kind: EdgeUpdated, Edge: e, OldEdge: old})
	return nil
}

// checkEdge validates e for insertion. replacing names an existing key that
// e is about to replace, and so does not count as a duplicate.
func (g *Graph) checkEdge(e Edge, replacing *EdgeKey) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return errs.Wrap(errs.ErrCodeNotFound, ErrUnknownSource, "edge source %q does not exist", e.Source)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return errs.Wrap(errs.ErrCodeNotFound, ErrUnknownTarget, "edge target %q does not exist", e.Target)
	}
	if e.Type == "" {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidEdgeType, "edge %s -> %s", e.Source, e.Target)
	}
	if replacing != nil && *replacing == e.Key() {
		return nil
	}
	if _, exists := g.edgeSet[e.Key()]; exists {
		return errs.Wrap(errs.ErrCodeDuplicateID, ErrDuplicateEdge, "edge %s already exists", e.Key())
	}
	return nil
}

func (g *Graph) edgeIndex(key EdgeKey) int {
	if _, ok := g.edgeSet[key]; !ok {
		return -1
	}
	return slices.IndexFunc(g.edges, func(e Edge) bool { return e.Key() == key })
}

// Replace swaps the contents of g for those of other, keeping g's listeners,
// and emits a single Reset change. other must not be used afterwards.
func (g *Graph) Replace(other *Graph) {
	g.order = other.order
	g.nodes = other.nodes
	g.edges = other.edges
	g.edgeSet = other.edgeSet
	g.notify(Change{Kind: Reset})
}

// =============================================================================
// Queries
// =============================================================================

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id].clone()
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string {
	return slices.Clone(g.order)
}

// Edge returns the edge with the given key.
func (g *Graph) Edge(key EdgeKey) (Edge, bool) {
	i := g.edgeIndex(key)
	if i < 0 {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IncidentEdges returns the edges with id as source or target, in insertion order.
func (g *Graph) IncidentEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// Dependencies returns the outgoing edges of id: the objects id relies on.
func (g *Graph) Dependencies(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Dependents returns the incoming edges of id: the objects relying on id.
func (g *Graph) Dependents(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// CountByType returns the number of nodes of each type.
func (g *Graph) CountByType() map[NodeType]int {
	out := make(map[NodeType]int, len(NodeTypes))
	for _, n := range g.nodes {
		out[n.Type]++
	}
	return out
}

// Equal reports whether g and o hold the same nodes and edges in the same
// order. Listeners are not compared.
func (g *Graph) Equal(o *Graph) bool {
	if g.NodeCount() != o.NodeCount() || g.EdgeCount() != o.EdgeCount() {
		return false
	}
	for i, id := range g.order {
		if o.order[i] != id || !g.nodes[id].Equal(*o.nodes[id]) {
			return false
		}
	}
	return slices.Equal(g.edges, o.edges)
}

// Clone returns a deep copy of g without listeners.
func (g *Graph) Clone() *Graph {
	c := New()
	c.order = slices.Clone(g.order)
	for id, n := range g.nodes {
		cp := n.clone()
		c.nodes[id] = &cp
	}
	c.edges = slices.Clone(g.edges)
	for k := range g.edgeSet {
		c.edgeSet[k] = struct{}{}
	}
	return c
}

func notFound(id string) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrNodeNotFound, "node %q", id)
}

func edgeNotFound(key EdgeKey) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrEdgeNotFound, "%s", key)
}
