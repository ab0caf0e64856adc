package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/importers/compose"
	"github.com/matzehuels/infragraph/pkg/render/nodelink"
)

func addNodes(t *testing.T, s *Session, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := s.Graph.AddNode(graph.Node{ID: id, Type: graph.NodeServer, Name: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
}

func TestNewSession(t *testing.T) {
	s, err := New(Options{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.ID == "" {
		t.Error("ID is empty")
	}
	if s.Title() != "Untitled" {
		t.Errorf("Title() = %q, want Untitled", s.Title())
	}
	if s.Dirty() {
		t.Error("new session is dirty")
	}
	if s.Scheme() != "default" {
		t.Errorf("Scheme() = %q, want default", s.Scheme())
	}

	if _, err := New(Options{Scheme: "neon"}, nil); !errs.Is(err, errs.ErrCodeInvalidStyle) {
		t.Errorf("New(neon) code = %s, want INVALID_STYLE", errs.GetCode(err))
	}
	if _, err := New(Options{Engine: "dot"}, nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("New(engine dot) code = %s, want INVALID_INPUT", errs.GetCode(err))
	}
}

func TestEditsMarkDirty(t *testing.T) {
	s, _ := New(Options{}, nil)
	addNodes(t, s, "web")
	if !s.Dirty() {
		t.Error("Dirty() = false after AddNode")
	}
	if !strings.HasSuffix(s.Title(), "*") {
		t.Errorf("Title() = %q, want trailing *", s.Title())
	}
}

func TestCameraDoesNotMarkDirty(t *testing.T) {
	s, _ := New(Options{}, nil)
	s.Camera.Zoom(2)
	s.Camera.Pan(10, 10)
	if err := s.SetScheme("vibrant"); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("view changes marked the project dirty")
	}
}

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "infra.json")

	s, _ := New(Options{}, nil)
	addNodes(t, s, "web", "db")
	if err := s.Graph.AddEdge(graph.Edge{Source: "web", Target: "db", Type: graph.EdgeDependsOn}); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("Save() without path code = %s, want INVALID_PATH", errs.GetCode(err))
	}
	if err := s.SaveAs(ctx, path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if s.Dirty() || s.Path() != path || s.Title() != "Project: infra.json" {
		t.Errorf("after SaveAs: dirty=%v path=%q title=%q", s.Dirty(), s.Path(), s.Title())
	}

	loaded, err := load(ctx, Options{}, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Graph.Equal(s.Graph) {
		t.Error("loaded graph differs from saved graph")
	}
	if loaded.Dirty() {
		t.Error("loaded session is dirty")
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Options{}, nil)
	addNodes(t, s, "web")

	err := s.SaveAs(ctx, filepath.Join(t.TempDir(), "missing", "infra.json"))
	if !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("SaveAs code = %s, want IO_ERROR", errs.GetCode(err))
	}
	if !s.Dirty() || s.Path() != "" {
		t.Errorf("failed save changed state: dirty=%v path=%q", s.Dirty(), s.Path())
	}
}

func TestLoadFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"objects": [{"id": "x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := load(ctx, Options{}, bad); !errs.Is(err, errs.ErrCodeSchema) {
		t.Errorf("load(bad) code = %s, want SCHEMA_ERROR", errs.GetCode(err))
	}
	if _, err := load(ctx, Options{}, filepath.Join(dir, "nope.json")); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("load(missing) code = %s, want IO_ERROR", errs.GetCode(err))
	}
}

func TestResetViewFitsDrawing(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Options{Width: 400, Height: 300}, nil)
	addNodes(t, s, "a", "b", "c")
	s.Layout.Drag("a", 0, 0)
	s.Layout.Drag("b", 1000, 0)
	s.Layout.Drag("c", 500, 500)

	if err := s.ResetView(ctx); err != nil {
		t.Fatalf("ResetView: %v", err)
	}
	b, _ := s.Layout.Bounds()
	v := s.Camera.Visible()
	if v.MinX > b.MinX || v.MaxX < b.MaxX || v.MinY > b.MinY || v.MaxY < b.MaxY {
		t.Errorf("visible %+v does not contain bounds %+v", v, b)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Options{}, nil)
	addNodes(t, s, "web", "db")

	path := filepath.Join(t.TempDir(), "graph.dot")
	if err := s.Export(ctx, path, nodelink.FormatDOT, nodelink.Options{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"web" [label="web"`) {
		t.Errorf("exported DOT missing node:\n%s", data)
	}
	if s.Layout.Len() != 2 {
		t.Errorf("Export did not place nodes: %d positioned", s.Layout.Len())
	}
}

func TestCloseDetachesListeners(t *testing.T) {
	s, _ := New(Options{}, nil)
	s.Close()
	addNodes(t, s, "web")
	if s.Dirty() {
		t.Error("closed session still listens to its graph")
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	m := NewManager(Options{})

	if _, err := m.Active(); !errs.Is(err, errs.ErrCodeSessionNotFound) {
		t.Errorf("Active() on empty manager code = %s", errs.GetCode(err))
	}

	first, err := m.New()
	if err != nil {
		t.Fatal(err)
	}
	second, _ := m.New()
	if a, _ := m.Active(); a != second {
		t.Error("new session is not active")
	}

	if s, err := m.Switch("1"); err != nil || s != first {
		t.Errorf("Switch(1) = %v, %v", s, err)
	}
	if s, err := m.Switch(second.ID[:8]); err != nil || s != second {
		t.Errorf("Switch(id prefix) = %v, %v", s, err)
	}
	if _, err := m.Switch("7"); !errs.Is(err, errs.ErrCodeSessionNotFound) {
		t.Errorf("Switch(7) code = %s", errs.GetCode(err))
	}

	addNodes(t, second, "web")
	if got := m.Unsaved(); len(got) != 1 || got[0] != second {
		t.Errorf("Unsaved() = %v, want [second]", got)
	}
	if err := m.Close("", false); !errs.Is(err, errs.ErrCodeUnsavedChanges) {
		t.Errorf("Close(dirty) code = %s, want UNSAVED_CHANGES", errs.GetCode(err))
	}

	path := filepath.Join(t.TempDir(), "web.json")
	if err := m.SaveAs(ctx, path); err != nil {
		t.Fatal(err)
	}
	if err := m.Close("", false); err != nil {
		t.Fatalf("Close(saved): %v", err)
	}
	if a, _ := m.Active(); a != first || m.Len() != 1 {
		t.Errorf("after close active=%v len=%d, want first and 1", a, m.Len())
	}

	opened, err := m.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	again, err := m.Open(ctx, path)
	if err != nil || again != opened || m.Len() != 2 {
		t.Errorf("re-opening a file created a new session")
	}
	if opened.Layout.Len() != 1 {
		t.Errorf("opened project not laid out")
	}
}

func TestManagerImport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "docker-compose.yml")
	doc := "services:\n  web:\n    image: nginx\n    depends_on: [db]\n  db:\n    image: postgres\n"
	if err := os.WriteFile(file, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(Options{})
	s, res, err := m.Import(ctx, file, compose.New())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Graph.NodeCount() != 2 || s.Graph.EdgeCount() != 1 {
		t.Errorf("imported %d nodes, %d edges", res.Graph.NodeCount(), s.Graph.EdgeCount())
	}
	if s.Title() != "Import: docker-compose.yml *" {
		t.Errorf("Title() = %q", s.Title())
	}
	if s.Layout.Len() != 2 {
		t.Errorf("imported project not laid out")
	}

	empty := filepath.Join(dir, "compose.yaml")
	if err := os.WriteFile(empty, []byte("volumes: {}\nservices: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Import(ctx, empty, compose.New()); !errs.Is(err, errs.ErrCodeParse) {
		t.Errorf("Import(empty) code = %s, want PARSE_ERROR", errs.GetCode(err))
	}
	if m.Len() != 1 {
		t.Errorf("failed import opened a session")
	}
}

func TestRecentStore(t *testing.T) {
	r, err := NewRecentStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := r.List(); len(got) != 0 {
		t.Errorf("List() on new store = %v", got)
	}
	for i := 0; i < MaxRecent+2; i++ {
		if err := r.Add(filepath.Join("/tmp", strings.Repeat("p", i+1)+".json")); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Add("/tmp/p.json"); err != nil {
		t.Fatal(err)
	}
	got := r.List()
	if len(got) != MaxRecent {
		t.Fatalf("len(List()) = %d, want %d", len(got), MaxRecent)
	}
	if got[0] != "/tmp/p.json" {
		t.Errorf("List()[0] = %s, want /tmp/p.json", got[0])
	}
}

func TestListenerPanicHandler(t *testing.T) {
	var recovered []any
	s, err := New(Options{ListenerPanic: func(v any) { recovered = append(recovered, v) }}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Graph.Subscribe(graph.ListenerFunc(func(graph.Change) { panic("boom") }))

	addNodes(t, s, "web")
	if len(recovered) != 1 || recovered[0] != "boom" {
		t.Errorf("recovered = %v, want [boom]", recovered)
	}
	if !s.Graph.HasNode("web") || !s.Dirty() {
		t.Error("panicking listener affected the mutation")
	}
}

func TestManagerAttachFailureClosesSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(Options{})
	s, _ := New(Options{}, nil)
	addNodes(t, s, "web")
	s.dirty = false

	if err := m.attach(ctx, s); !errors.Is(err, context.Canceled) {
		t.Fatalf("attach error = %v, want context.Canceled", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after failed attach, want 0", m.Len())
	}
	addNodes(t, s, "db")
	if s.Dirty() {
		t.Error("session that failed to attach still listens to its graph")
	}
}
