package graph

import (
	"fmt"
	"slices"
)

// ChangeKind identifies the mutation that produced a [Change].
type ChangeKind int

const (
	NodeAdded ChangeKind = iota
	NodeRemoved
	NodeUpdated
	NodeRenamed
	EdgeAdded
	EdgeRemoved
	EdgeUpdated
	// Reset is emitted when the whole graph is replaced, for example after a
	// project is loaded into an existing session.
	Reset
)

var changeKindNames = map[ChangeKind]string{
	NodeAdded:   "node_added",
	NodeRemoved: "node_removed",
	NodeUpdated: "node_updated",
	NodeRenamed: "node_renamed",
	EdgeAdded:   "edge_added",
	EdgeRemoved: "edge_removed",
	EdgeUpdated: "edge_updated",
	Reset:       "reset",
}

func (k ChangeKind) String() string {
	if s, ok := changeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change describes one successful mutation.
//
// NodeID is set for node changes (the new id for NodeRenamed, with the old one
// in OldID). Edge is set for edge changes; for EdgeUpdated, OldEdge holds the
// previous value.
type Change struct {
	Kind    ChangeKind
	NodeID  string
	OldID   string
	Edge    Edge
	OldEdge Edge
}

// Listener observes graph mutations. Listeners run synchronously, after the
// mutation is applied, in registration order.
type Listener interface {
	GraphChanged(Change)
}

// ListenerFunc adapts a function to the [Listener] interface.
type ListenerFunc func(Change)

// GraphChanged calls f(c).
func (f ListenerFunc) GraphChanged(c Change) { f(c) }

type subscription struct {
	id int
	l  Listener
}

// Subscribe registers l and returns a function that unregisters it. Calling
// the returned function more than once is harmless.
func (g *Graph) Subscribe(l Listener) (unsubscribe func()) {
	g.nextSub++
	id := g.nextSub
	g.subs = append(g.subs, subscription{id: id, l: l})
	return func() {
		g.subs = slices.DeleteFunc(g.subs, func(s subscription) bool { return s.id == id })
	}
}

// SetPanicHandler installs fn to receive values recovered from panicking
// listeners. Without a handler such panics are dropped.
func (g *Graph) SetPanicHandler(fn func(recovered any)) {
	g.onPanic = fn
}

func (g *Graph) notify(c Change) {
	// Snapshot so listeners may unsubscribe themselves while being notified.
	for _, s := range slices.Clone(g.subs) {
		g.deliver(s.l, c)
	}
}

func (g *Graph) deliver(l Listener, c Change) {
	defer func() {
		if r := recover(); r != nil && g.onPanic != nil {
			g.onPanic(r)
		}
	}()
	l.GraphChanged(c)
}
