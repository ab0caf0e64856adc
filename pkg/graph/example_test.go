package graph_test

import (
	"fmt"

	"github.com/matzehuels/infragraph/pkg/graph"
)

func ExampleGraph_RemoveNode() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "web", Type: graph.NodeDockerContainer, Name: "Web"})
	_ = g.AddNode(graph.Node{ID: "db", Type: graph.NodeDatabase, Name: "Postgres"})
	_ = g.AddEdge(graph.Edge{Source: "web", Target: "db", Type: graph.EdgeDependsOn})

	g.Subscribe(graph.ListenerFunc(func(c graph.Change) {
		fmt.Println("event:", c.Kind)
	}))

	// Removing a node also removes every edge that touches it.
	if err := g.RemoveNode("db"); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("nodes:", g.NodeIDs(), "edges:", g.EdgeCount())
	// Output:
	// event: edge_removed
	// event: node_removed
	// nodes: [web] edges: 0
}

func ExampleGraph_Dependencies() {
	g := graph.New()
	for _, id := range []string{"lb", "app", "cache"} {
		_ = g.AddNode(graph.Node{ID: id, Type: graph.NodeServer})
	}
	_ = g.AddEdge(graph.Edge{Source: "lb", Target: "app", Type: graph.EdgeRoutesThrough})
	_ = g.AddEdge(graph.Edge{Source: "app", Target: "cache", Type: graph.EdgeCalls})

	for _, e := range g.Dependencies("app") {
		fmt.Println("app depends on", e.Target, "via", e.Type)
	}
	for _, e := range g.Dependents("app") {
		fmt.Println(e.Source, "relies on app via", e.Type)
	}
	// Output:
	// app depends on cache via calls
	// lb relies on app via routes_through
}
