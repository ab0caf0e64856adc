package graph

import (
	"errors"
	"slices"
	"testing"

	errs "github.com/matzehuels/infragraph/pkg/errors"
)

func buildGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, n := range []Node{
		{ID: "web", Type: NodeDockerContainer, Name: "Web"},
		{ID: "api", Type: NodeServer, Name: "API"},
		{ID: "db", Type: NodeDatabase, Name: "DB"},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range []Edge{
		{Source: "web", Target: "api", Type: EdgeCalls},
		{Source: "api", Target: "db", Type: EdgeDependsOn},
		{Source: "web", Target: "db", Type: EdgeConnectsTo},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.Key(), err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		sentinel error
		code     errs.Code
	}{
		{"valid", Node{ID: "cache", Type: NodeDatabase, Name: "Redis"}, nil, ""},
		{"duplicate", Node{ID: "web", Type: NodeServer}, ErrDuplicateNodeID, errs.ErrCodeDuplicateID},
		{"empty id", Node{ID: "", Type: NodeServer}, ErrInvalidNodeID, errs.ErrCodeInvalidInput},
		{"bad type", Node{ID: "x", Type: "mainframe"}, ErrInvalidNodeType, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t)
			before := g.Clone()

			err := g.AddNode(tt.node)
			if tt.sentinel == nil {
				if err != nil {
					t.Fatalf("AddNode() error = %v", err)
				}
				if got := g.NodeIDs()[g.NodeCount()-1]; got != tt.node.ID {
					t.Errorf("last node = %q, want %q", got, tt.node.ID)
				}
				return
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.sentinel)
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), tt.code)
			}
			if !g.Equal(before) {
				t.Error("graph changed after failed AddNode")
			}
		})
	}
}

func TestAddNodeCopiesProperties(t *testing.T) {
	g := New()
	props := Properties{"image": "nginx"}
	if err := g.AddNode(Node{ID: "web", Type: NodeDockerContainer, Properties: props}); err != nil {
		t.Fatal(err)
	}
	props["image"] = "changed"

	n, _ := g.Node("web")
	if n.Properties["image"] != "nginx" {
		t.Errorf("image = %q, want nginx", n.Properties["image"])
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := buildGraph(t)

	var changes []Change
	g.Subscribe(ListenerFunc(func(c Change) { changes = append(changes, c) }))

	if err := g.RemoveNode("db"); err != nil {
		t.Fatalf("RemoveNode() error = %v", err)
	}

	if g.HasNode("db") {
		t.Error("db still present")
	}
	want := []Edge{{Source: "web", Target: "api", Type: EdgeCalls}}
	if !slices.Equal(g.Edges(), want) {
		t.Errorf("Edges() = %v, want %v", g.Edges(), want)
	}
	for _, e := range g.Edges() {
		if e.Touches("db") {
			t.Errorf("edge %s still references removed node", e.Key())
		}
	}

	kinds := make([]ChangeKind, len(changes))
	for i, c := range changes {
		kinds[i] = c.Kind
	}
	wantKinds := []ChangeKind{EdgeRemoved, EdgeRemoved, NodeRemoved}
	if !slices.Equal(kinds, wantKinds) {
		t.Errorf("change kinds = %v, want %v", kinds, wantKinds)
	}
}

func TestRemoveNodeNotFound(t *testing.T) {
	g := buildGraph(t)
	err := g.RemoveNode("ghost")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("RemoveNode() error = %v, want %v", err, ErrNodeNotFound)
	}
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeNotFound)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("counts = %d/%d, want 3/3", g.NodeCount(), g.EdgeCount())
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name     string
		edge     Edge
		sentinel error
		code     errs.Code
	}{
		{"valid", Edge{Source: "db", Target: "web", Type: "replicates_to"}, nil, ""},
		{"self loop", Edge{Source: "api", Target: "api", Type: EdgeCalls}, nil, ""},
		{"same pair other type", Edge{Source: "web", Target: "api", Type: EdgeDependsOn}, nil, ""},
		{"missing source", Edge{Source: "ghost", Target: "db", Type: EdgeCalls}, ErrUnknownSource, errs.ErrCodeNotFound},
		{"missing target", Edge{Source: "web", Target: "ghost", Type: EdgeCalls}, ErrUnknownTarget, errs.ErrCodeNotFound},
		{"duplicate", Edge{Source: "web", Target: "api", Type: EdgeCalls}, ErrDuplicateEdge, errs.ErrCodeDuplicateID},
		{"empty type", Edge{Source: "web", Target: "api"}, ErrInvalidEdgeType, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t)
			before := g.Clone()

			err := g.AddEdge(tt.edge)
			if tt.sentinel == nil {
				if err != nil {
					t.Fatalf("AddEdge() error = %v", err)
				}
				if _, ok := g.Edge(tt.edge.Key()); !ok {
					t.Errorf("edge %s not found after AddEdge", tt.edge.Key())
				}
				return
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.sentinel)
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), tt.code)
			}
			if !g.Equal(before) {
				t.Error("graph changed after failed AddEdge")
			}
		})
	}
}

func TestRemoveEdge(t *testing.T) {
	g := buildGraph(t)

	if err := g.RemoveEdge("web", "api", EdgeCalls); err != nil {
		t.Fatalf("RemoveEdge() error = %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}

	err := g.RemoveEdge("web", "api", EdgeCalls)
	if !errors.Is(err, ErrEdgeNotFound) || !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("second RemoveEdge() error = %v, want NOT_FOUND", err)
	}

	// Type is part of the identity.
	err = g.RemoveEdge("api", "db", EdgeCalls)
	if !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("RemoveEdge(wrong type) error = %v, want %v", err, ErrEdgeNotFound)
	}
}

func TestUpdateNodePreservesOrder(t *testing.T) {
	g := buildGraph(t)

	err := g.UpdateNode(Node{ID: "api", Type: NodeRouter, Name: "Gateway", Description: "edge"})
	if err != nil {
		t.Fatalf("UpdateNode() error = %v", err)
	}

	if got, want := g.NodeIDs(), []string{"web", "api", "db"}; !slices.Equal(got, want) {
		t.Errorf("NodeIDs() = %v, want %v", got, want)
	}
	n, _ := g.Node("api")
	if n.Type != NodeRouter || n.Name != "Gateway" || n.Description != "edge" {
		t.Errorf("Node(api) = %+v", n)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}

	if err := g.UpdateNode(Node{ID: "ghost", Type: NodeFile}); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("UpdateNode(ghost) error = %v, want NOT_FOUND", err)
	}
	if err := g.UpdateNode(Node{ID: "api", Type: "blob"}); !errors.Is(err, ErrInvalidNodeType) {
		t.Errorf("UpdateNode(bad type) error = %v, want %v", err, ErrInvalidNodeType)
	}
}

func TestRenameNode(t *testing.T) {
	g := buildGraph(t)

	if err := g.RenameNode("api", "backend"); err != nil {
		t.Fatalf("RenameNode() error = %v", err)
	}
	if got, want := g.NodeIDs(), []string{"web", "backend", "db"}; !slices.Equal(got, want) {
		t.Errorf("NodeIDs() = %v, want %v", got, want)
	}
	for _, key := range []EdgeKey{
		{Source: "web", Target: "backend", Type: EdgeCalls},
		{Source: "backend", Target: "db", Type: EdgeDependsOn},
	} {
		if _, ok := g.Edge(key); !ok {
			t.Errorf("edge %s missing after rename", key)
		}
	}
	if len(g.IncidentEdges("api")) != 0 {
		t.Error("edges still reference old id")
	}

	if err := g.RenameNode("web", "db"); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("RenameNode(to existing) error = %v, want %v", err, ErrDuplicateNodeID)
	}
	if err := g.RenameNode("ghost", "x"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("RenameNode(ghost) error = %v, want %v", err, ErrNodeNotFound)
	}
}

func TestUpdateEdge(t *testing.T) {
	g := buildGraph(t)
	key := EdgeKey{Source: "api", Target: "db", Type: EdgeDependsOn}

	updated := Edge{Source: "api", Target: "db", Type: EdgeDependsOn, Description: "primary store"}
	if err := g.UpdateEdge(key, updated); err != nil {
		t.Fatalf("UpdateEdge(same key) error = %v", err)
	}
	if e, _ := g.Edge(key); e.Description != "primary store" {
		t.Errorf("Description = %q, want %q", e.Description, "primary store")
	}

	retyped := Edge{Source: "api", Target: "db", Type: EdgeCalls}
	if err := g.UpdateEdge(key, retyped); err != nil {
		t.Fatalf("UpdateEdge(retype) error = %v", err)
	}
	if got := g.Edges()[1]; got != retyped {
		t.Errorf("Edges()[1] = %+v, want %+v (position preserved)", got, retyped)
	}

	clash := Edge{Source: "web", Target: "api", Type: EdgeCalls}
	if err := g.UpdateEdge(retyped.Key(), clash); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("UpdateEdge(clash) error = %v, want %v", err, ErrDuplicateEdge)
	}
	if err := g.UpdateEdge(key, retyped); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("UpdateEdge(stale key) error = %v, want NOT_FOUND", err)
	}
	dangling := Edge{Source: "api", Target: "ghost", Type: EdgeCalls}
	if err := g.UpdateEdge(retyped.Key(), dangling); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("UpdateEdge(dangling) error = %v, want %v", err, ErrUnknownTarget)
	}
}

func TestDependenciesAndDependents(t *testing.T) {
	g := buildGraph(t)

	deps := g.Dependencies("web")
	if len(deps) != 2 || deps[0].Target != "api" || deps[1].Target != "db" {
		t.Errorf("Dependencies(web) = %v", deps)
	}
	dependents := g.Dependents("db")
	if len(dependents) != 2 || dependents[0].Source != "api" || dependents[1].Source != "web" {
		t.Errorf("Dependents(db) = %v", dependents)
	}
	if len(g.Dependents("web")) != 0 {
		t.Errorf("Dependents(web) = %v, want none", g.Dependents("web"))
	}
}

func TestSubscribe(t *testing.T) {
	g := New()

	var first, second []ChangeKind
	unsubFirst := g.Subscribe(ListenerFunc(func(c Change) { first = append(first, c.Kind) }))
	g.Subscribe(ListenerFunc(func(c Change) { second = append(second, c.Kind) }))

	_ = g.AddNode(Node{ID: "a", Type: NodeFile})
	unsubFirst()
	unsubFirst()
	_ = g.AddNode(Node{ID: "b", Type: NodeFile})
	_ = g.AddNode(Node{ID: "a", Type: NodeFile}) // duplicate, no event

	if !slices.Equal(first, []ChangeKind{NodeAdded}) {
		t.Errorf("first listener got %v, want [node_added]", first)
	}
	if !slices.Equal(second, []ChangeKind{NodeAdded, NodeAdded}) {
		t.Errorf("second listener got %v, want two node_added", second)
	}
}

func TestPanickingListenerDoesNotFailMutation(t *testing.T) {
	g := New()

	var recovered []any
	g.SetPanicHandler(func(r any) { recovered = append(recovered, r) })
	g.Subscribe(ListenerFunc(func(Change) { panic("boom") }))
	called := false
	g.Subscribe(ListenerFunc(func(Change) { called = true }))

	if err := g.AddNode(Node{ID: "a", Type: NodeServer}); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if !g.HasNode("a") {
		t.Error("node not added")
	}
	if !called {
		t.Error("second listener not called after first panicked")
	}
	if len(recovered) != 1 || recovered[0] != "boom" {
		t.Errorf("recovered = %v, want [boom]", recovered)
	}
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	g := New()
	calls := 0
	var unsub func()
	unsub = g.Subscribe(ListenerFunc(func(Change) {
		calls++
		unsub()
	}))

	_ = g.AddNode(Node{ID: "a", Type: NodeFile})
	_ = g.AddNode(Node{ID: "b", Type: NodeFile})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestReplaceKeepsListeners(t *testing.T) {
	g := buildGraph(t)
	var kinds []ChangeKind
	g.Subscribe(ListenerFunc(func(c Change) { kinds = append(kinds, c.Kind) }))

	other := New()
	_ = other.AddNode(Node{ID: "solo", Type: NodeSwitch})
	g.Replace(other)

	if g.NodeCount() != 1 || !g.HasNode("solo") {
		t.Errorf("NodeIDs() = %v, want [solo]", g.NodeIDs())
	}
	_ = g.AddNode(Node{ID: "b", Type: NodeFile})
	if !slices.Equal(kinds, []ChangeKind{Reset, NodeAdded}) {
		t.Errorf("kinds = %v, want [reset node_added]", kinds)
	}
}

func TestEqualAndClone(t *testing.T) {
	g := buildGraph(t)
	c := g.Clone()
	if !g.Equal(c) {
		t.Fatal("clone not equal to original")
	}

	_ = c.UpdateNode(Node{ID: "web", Type: NodeDockerContainer, Name: "Web", Properties: Properties{"k": "v"}})
	if g.Equal(c) {
		t.Error("Equal() = true after changing clone properties")
	}

	reordered := New()
	for _, id := range []string{"api", "web", "db"} {
		n, _ := g.Node(id)
		_ = reordered.AddNode(n)
	}
	for _, e := range g.Edges() {
		_ = reordered.AddEdge(e)
	}
	if g.Equal(reordered) {
		t.Error("Equal() = true for different node order")
	}
}

func TestNodeTypeValid(t *testing.T) {
	for _, nt := range NodeTypes {
		if !nt.Valid() {
			t.Errorf("%s.Valid() = false", nt)
		}
	}
	if _, ok := ParseNodeType("Server"); ok {
		t.Error("ParseNodeType(Server) ok = true, want false (case sensitive)")
	}
	if nt, ok := ParseNodeType("switch"); !ok || nt != NodeSwitch {
		t.Errorf("ParseNodeType(switch) = %v, %v", nt, ok)
	}
}
