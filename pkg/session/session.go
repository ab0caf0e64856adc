// Package session holds the state of one open project and the set of open
// projects.
//
// A [Session] owns a graph, its layout, a camera and a view. Sessions share
// no mutable state, so a front end can keep any number of them open side by
// side. The [Manager] tracks the open sessions and which one is active.
//
// # Usage
//
//	m := session.NewManager(session.Options{Scheme: "dark"})
//	s, _ := m.New()                               // empty project
//	_ = s.Graph.AddNode(graph.Node{ID: "web", Type: graph.NodeServer, Name: "web"})
//	_ = s.Refresh(ctx)                            // place new nodes
//	_ = s.SaveAs(ctx, "infra.json")
//
// Every successful graph mutation marks the session dirty; saving clears
// the flag. [Manager.Close] refuses to drop a dirty session unless forced.
package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	infraio "github.com/matzehuels/infragraph/pkg/io"
	"github.com/matzehuels/infragraph/pkg/observability"
	"github.com/matzehuels/infragraph/pkg/render/camera"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/render/nodelink"
	"github.com/matzehuels/infragraph/pkg/render/styles"
)

// Options configures new sessions.
type Options struct {
	Scheme string  // Palette name, default "default"
	Engine string  // Layout engine, default "fdp"
	Width  float64 // View width in screen units
	Height float64 // View height in screen units

	// ListenerPanic receives values recovered from panicking graph listeners.
	ListenerPanic func(recovered any)
}

// Session is one open project.
type Session struct {
	ID        string
	CreatedAt time.Time

	Graph  *graph.Graph
	Layout *layout.Layout
	Camera camera.Camera
	View   *nodelink.View

	title string
	path  string
	dirty bool

	unsubscribe []func()
}

// New creates a session around g. A nil g starts an empty project.
func New(opts Options, g *graph.Graph) (*Session, error) {
	palette, err := styles.Lookup(opts.Scheme)
	if err != nil {
		return nil, err
	}
	engine, err := layout.NewEngine(opts.Engine)
	if err != nil {
		return nil, err
	}
	if g == nil {
		g = graph.New()
	}
	if opts.ListenerPanic != nil {
		g.SetPanicHandler(opts.ListenerPanic)
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Graph:     g,
		Layout:    layout.New(engine),
		Camera:    camera.New(opts.Width, opts.Height),
	}
	s.View = nodelink.NewView(g, s.Layout, &s.Camera, palette)
	s.unsubscribe = []func(){
		g.Subscribe(s.Layout),
		g.Subscribe(s.View),
		g.Subscribe(s),
	}
	return s, nil
}

// GraphChanged marks the session dirty.
func (s *Session) GraphChanged(c graph.Change) {
	s.dirty = true
	observability.Project().OnEdit(context.Background(), c.Kind.String())
}

// Title returns the window title: "Project: <file>" for saved projects,
// the import title for imported ones, "Untitled" otherwise. Unsaved
// changes add a trailing '*'.
func (s *Session) Title() string {
	t := "Untitled"
	switch {
	case s.path != "":
		t = "Project: " + filepath.Base(s.path)
	case s.title != "":
		t = s.title
	}
	if s.dirty {
		t += " *"
	}
	return t
}

// Path returns the project file, or "" for a project never saved.
func (s *Session) Path() string { return s.path }

// Dirty reports whether the graph changed since it was last loaded or saved.
func (s *Session) Dirty() bool { return s.dirty }

// Scheme returns the active palette name.
func (s *Session) Scheme() string { return s.View.Palette.Name }

// SetScheme switches the palette.
func (s *Session) SetScheme(name string) error {
	p, err := styles.Lookup(name)
	if err != nil {
		return err
	}
	s.View.Palette = p
	return nil
}

// SetEngine switches the layout engine. Unpinned nodes are placed again on
// the next Refresh.
func (s *Session) SetEngine(name string) error {
	e, err := layout.NewEngine(name)
	if err != nil {
		return err
	}
	s.Layout.SetEngine(e)
	return nil
}

// Refresh places nodes that have no position yet.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Layout.Sync(ctx, s.Graph)
}

// ResetView places missing nodes and fits the camera to the drawing.
func (s *Session) ResetView(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if b, ok := s.Layout.Bounds(); ok {
		s.Camera.Fit(b)
	}
	return nil
}

// Save writes the project to its file. A project that was never saved has
// no file; use SaveAs.
func (s *Session) Save(ctx context.Context) error {
	if s.path == "" {
		return errs.New(errs.ErrCodeInvalidPath, "project has no file name yet")
	}
	return s.SaveAs(ctx, s.path)
}

// SaveAs writes the project to path and makes path the project file. On
// failure the session is unchanged.
func (s *Session) SaveAs(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() {
		observability.Project().OnSave(ctx, s.Graph.NodeCount(), s.Graph.EdgeCount(), time.Since(start), err)
	}()

	if err := errs.ValidateFilePath(path); err != nil {
		return err
	}
	if err := infraio.ExportProject(s.Graph, path); err != nil {
		return err
	}
	s.path = path
	s.dirty = false
	return nil
}

// Export renders the view to path in the given format (png, svg or dot).
func (s *Session) Export(ctx context.Context, path, format string, opts nodelink.Options) error {
	if err := errs.ValidateFilePath(path); err != nil {
		return err
	}
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.View.Render(ctx, format, opts, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// Close detaches the session from its graph.
func (s *Session) Close() {
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
}

// load reads a project file into a new session.
func load(ctx context.Context, opts Options, path string) (s *Session, err error) {
	start := time.Now()
	var nodes, edges int
	defer func() {
		observability.Project().OnLoad(ctx, nodes, edges, time.Since(start), err)
	}()

	if err := errs.ValidateFilePath(path); err != nil {
		return nil, err
	}
	g, err := infraio.ImportProject(path)
	if err != nil {
		return nil, err
	}
	nodes, edges = g.NodeCount(), g.EdgeCount()
	s, err = New(opts, g)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}
