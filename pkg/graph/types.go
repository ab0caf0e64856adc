package graph

import (
	"maps"
	"slices"
)

// =============================================================================
// Node Types
// =============================================================================

// NodeType classifies an infrastructure object. The set is closed: values
// outside it are rejected by [Graph.AddNode] and by project loading.
type NodeType string

// Node types.
const (
	NodeFile            NodeType = "file"
	NodeDockerContainer NodeType = "docker_container"
	NodeRouter          NodeType = "router"
	NodeSwitch          NodeType = "switch"
	NodeServer          NodeType = "server"
	NodeDatabase        NodeType = "database"
)

// NodeTypes lists every valid node type in display order.
var NodeTypes = []NodeType{
	NodeFile,
	NodeDockerContainer,
	NodeRouter,
	NodeSwitch,
	NodeServer,
	NodeDatabase,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	return slices.Contains(NodeTypes, t)
}

// ParseNodeType converts s to a NodeType, reporting whether it is known.
func ParseNodeType(s string) (NodeType, bool) {
	t := NodeType(s)
	return t, t.Valid()
}

// =============================================================================
// Edge Types
// =============================================================================

// Default edge types. Edge types are an open set: any non-empty string is
// accepted and preserved, these are the ones importers emit and renderers
// style explicitly.
const (
	EdgeCalls         = "calls"
	EdgeDependsOn     = "depends_on"
	EdgeConnectsTo    = "connects_to"
	EdgeSendsTo       = "sends_to"
	EdgeUses          = "uses"
	EdgeProvides      = "provides"
	EdgeRoutesThrough = "routes_through"
)

// EdgeTypes lists the default edge types offered by editors.
var EdgeTypes = []string{
	EdgeCalls,
	EdgeDependsOn,
	EdgeConnectsTo,
	EdgeSendsTo,
	EdgeUses,
	EdgeProvides,
	EdgeRoutesThrough,
}

// =============================================================================
// Node, Edge
// =============================================================================

// Properties holds importer-supplied facts about a node (image, namespace,
// resource path). Keys and values are plain strings so they persist verbatim.
type Properties map[string]string

// Node is an infrastructure object.
//
// ID is the stable, graph-unique key. Name is the display label and
// Description optional free text.
type Node struct {
	ID          string
	Type        NodeType
	Name        string
	Description string
	Properties  Properties
}

// Label returns Name, falling back to ID when Name is empty.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Equal reports whether two nodes have identical fields. A nil and an empty
// Properties map compare equal.
func (n Node) Equal(o Node) bool {
	return n.ID == o.ID &&
		n.Type == o.Type &&
		n.Name == o.Name &&
		n.Description == o.Description &&
		maps.Equal(n.Properties, o.Properties)
}

func (n Node) clone() Node {
	if n.Properties != nil {
		n.Properties = maps.Clone(n.Properties)
	}
	return n
}

// Edge is a typed, directed relationship from Source to Target.
type Edge struct {
	Source      string
	Target      string
	Type        string
	Description string
}

// EdgeKey identifies an edge within a graph. At most one edge exists per key.
type EdgeKey struct {
	Source string
	Target string
	Type   string
}

// Key returns the identity of e.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Type: e.Type}
}

// String formats the key as "source -[type]-> target".
func (k EdgeKey) String() string {
	return k.Source + " -[" + k.Type + "]-> " + k.Target
}

// Touches reports whether id is either endpoint of the edge.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
