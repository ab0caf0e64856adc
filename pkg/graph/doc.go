// Package graph provides the in-memory model for infrastructure dependency graphs.
//
// A [Graph] holds typed nodes ([Node]) and typed, directed edges ([Edge]).
// Both are kept in insertion order, which is the order importers emit them,
// the order persistence writes them and the order the workbench lists them.
//
// # Node Types
//
// Node types form a closed set:
//
//	graph.NodeFile            // "file"
//	graph.NodeDockerContainer // "docker_container"
//	graph.NodeRouter          // "router"
//	graph.NodeSwitch          // "switch"
//	graph.NodeServer          // "server"
//	graph.NodeDatabase        // "database"
//
// # Edge Types
//
// Edge types are open strings. [EdgeTypes] lists the defaults (calls,
// depends_on, connects_to, ...), but any non-empty type is stored verbatim.
// An edge is identified by its [EdgeKey]: source, target and type.
//
// # Invariants
//
//   - Node IDs are unique and non-empty.
//   - Every edge endpoint refers to an existing node.
//   - At most one edge exists per (source, target, type).
//   - Removing a node removes all edges incident to it.
//   - A failed operation leaves the graph unchanged.
//
// # Errors
//
// Operations return *errors.Error values from pkg/errors with codes
// DUPLICATE_ID, NOT_FOUND or INVALID_INPUT. The Cause is a sentinel from this
// package, so both forms of matching work:
//
//	err := g.AddEdge(graph.Edge{Source: "web", Target: "ghost", Type: "calls"})
//	errors.Is(err, graph.ErrUnknownTarget)      // true
//	errs.Is(err, errs.ErrCodeNotFound)          // true
//
// # Change Notification
//
// [Graph.Subscribe] registers a [Listener] that receives a [Change] after each
// successful mutation. Delivery is synchronous, in registration order, and
// fire-and-forget: a listener cannot veto or fail a mutation, and a panicking
// listener is recovered (see [Graph.SetPanicHandler]).
//
// The layout in pkg/render/layout and the session's unsaved-changes tracker
// are the two listeners used by the application.
package graph
