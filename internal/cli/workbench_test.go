package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/importers"
	"github.com/matzehuels/infragraph/pkg/importers/compose"
	"github.com/matzehuels/infragraph/pkg/render/layout"
	"github.com/matzehuels/infragraph/pkg/session"
)

func newTestWorkbench(t *testing.T) (*Workbench, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	mgr := session.NewManager(session.Options{})
	if _, err := mgr.New(); err != nil {
		t.Fatal(err)
	}
	wb := newWorkbench(mgr, []importers.Importer{compose.New()}, newLogger(&out, log.InfoLevel), &out)
	return wb, &out
}

func mustExec(t *testing.T, wb *Workbench, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := wb.Exec(context.Background(), line); err != nil {
			t.Fatalf("Exec(%q): %v", line, err)
		}
	}
}

func activeGraph(t *testing.T, wb *Workbench) *graph.Graph {
	t.Helper()
	s, err := wb.Manager().Active()
	if err != nil {
		t.Fatal(err)
	}
	return s.Graph
}

func TestWorkbenchEditing(t *testing.T) {
	wb, _ := newTestWorkbench(t)
	mustExec(t, wb,
		"# comment lines are ignored",
		"add-node web --type docker_container --name Web -p image=nginx",
		`add-node --name "Main DB" -t database`,
		"add-node lb -t router",
		"add-edge web Main_DB",
		"add-edge lb web -t routes_through",
	)

	g := activeGraph(t, wb)
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("graph has %d nodes, %d edges; want 3, 2", g.NodeCount(), g.EdgeCount())
	}
	n, _ := g.Node("web")
	if n.Type != graph.NodeDockerContainer || n.Properties["image"] != "nginx" {
		t.Errorf("web = %+v", n)
	}
	if db, ok := g.Node("Main_DB"); !ok || db.Name != "Main DB" {
		t.Errorf("derived id node = %+v, %v", db, ok)
	}

	mustExec(t, wb,
		"edit-node web --name Frontend --unset image -p port=80",
		"rename-node Main_DB db",
		"edit-edge web db depends_on --type calls -d queries",
	)
	n, _ = g.Node("web")
	if n.Name != "Frontend" || n.Type != graph.NodeDockerContainer || n.Properties["port"] != "80" || n.Properties["image"] != "" {
		t.Errorf("after edit web = %+v", n)
	}
	if _, ok := g.Edge(graph.EdgeKey{Source: "web", Target: "db", Type: graph.EdgeCalls}); !ok {
		t.Error("edited edge not found")
	}

	mustExec(t, wb, "rm-node web")
	if g.NodeCount() != 2 || g.EdgeCount() != 0 {
		t.Errorf("after rm-node: %d nodes, %d edges; want 2, 0", g.NodeCount(), g.EdgeCount())
	}
}

func TestWorkbenchErrors(t *testing.T) {
	wb, _ := newTestWorkbench(t)
	mustExec(t, wb, "add-node web")

	tests := []struct {
		line string
		code errs.Code
	}{
		{"add-node web", errs.ErrCodeDuplicateID},
		{"add-node x --type mainframe", errs.ErrCodeInvalidInput},
		{"add-node", errs.ErrCodeInvalidInput},
		{"add-edge web nope", errs.ErrCodeNotFound},
		{"rm-node nope", errs.ErrCodeNotFound},
		{"rm-edge web web uses", errs.ErrCodeNotFound},
		{"edit-node nope -n x", errs.ErrCodeNotFound},
		{"edit-node web -p novalue", errs.ErrCodeInvalidInput},
		{"drag nope 1 2", errs.ErrCodeNotFound},
		{"zoom big", errs.ErrCodeInvalidInput},
		{"scheme neon", errs.ErrCodeInvalidStyle},
		{"highlight web web uses", errs.ErrCodeNotFound},
		{"save", errs.ErrCodeInvalidPath},
		{"switch 9", errs.ErrCodeSessionNotFound},
		{`info "open`, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := wb.Exec(context.Background(), tt.line)
			if !errs.Is(err, tt.code) {
				t.Errorf("Exec(%q) code = %s, want %s (err: %v)", tt.line, errs.GetCode(err), tt.code, err)
			}
		})
	}

	if err := wb.Exec(context.Background(), "frobnicate"); err == nil {
		t.Error("unknown command succeeded")
	}
	if g := activeGraph(t, wb); g.NodeCount() != 1 {
		t.Errorf("failed commands changed the graph: %d nodes", g.NodeCount())
	}
}

func TestWorkbenchView(t *testing.T) {
	wb, out := newTestWorkbench(t)
	mustExec(t, wb,
		"add-node web", "add-node db -t database", "add-edge web db",
		"drag web -100 0", "drag db 100 0",
		"reset-view", "zoom 2", "pan -10 5", "scheme dark", "engine neato",
		"highlight web db depends_on",
	)
	s, _ := wb.Manager().Active()
	if s.Scheme() != "dark" || s.Layout.Engine().Name() != "neato" {
		t.Errorf("scheme %q, engine %q", s.Scheme(), s.Layout.Engine().Name())
	}
	if key, ok := s.View.Highlighted(); !ok || key.Target != "db" {
		t.Errorf("Highlighted() = %v, %v", key, ok)
	}
	if pos, _ := s.Layout.Position("web"); !pos.Pinned || pos.X != -100 {
		t.Errorf("web position = %+v, want pinned at -100,0", pos)
	}

	out.Reset()
	x, y := s.Camera.ToScreen(mustPosition(t, s, "db"))
	mustExec(t, wb, "pick "+ftoa(x)+" "+ftoa(y))
	if !strings.Contains(out.String(), "db") || !strings.Contains(out.String(), "Used by") {
		t.Errorf("pick output = %q", out.String())
	}

	mustExec(t, wb, "unpin web", "highlight --clear")
	if pos, ok := s.Layout.Position("web"); !ok || pos.Pinned {
		t.Errorf("web after unpin = %+v, %v; want placed and unpinned", pos, ok)
	}
	if _, ok := s.View.Highlighted(); ok {
		t.Error("highlight not cleared")
	}
	if s.Dirty() != true {
		t.Error("edits did not mark the project dirty")
	}
}

func TestWorkbenchProjects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	project := filepath.Join(dir, "infra.json")
	composeFile := filepath.Join(dir, "docker-compose.yml")
	if err := os.WriteFile(composeFile, []byte("services:\n  web:\n    image: nginx\n    depends_on: [db]\n  db:\n    image: postgres\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	wb, out := newTestWorkbench(t)
	mustExec(t, wb, "add-node web", "save-as "+project)

	mustExec(t, wb, "import auto "+composeFile)
	if wb.Manager().Len() != 2 || activeGraph(t, wb).NodeCount() != 2 {
		t.Fatalf("import opened %d projects", wb.Manager().Len())
	}

	if err := wb.Exec(ctx, "quit"); !errs.Is(err, errs.ErrCodeUnsavedChanges) || wb.Done() {
		t.Errorf("quit with unsaved import: err = %v, done = %v", err, wb.Done())
	}
	if err := wb.Exec(ctx, "close"); !errs.Is(err, errs.ErrCodeUnsavedChanges) {
		t.Errorf("close dirty code = %s", errs.GetCode(err))
	}

	out.Reset()
	mustExec(t, wb, "windows")
	if !strings.Contains(out.String(), "Project: infra.json") || !strings.Contains(out.String(), "Import: docker-compose.yml *") {
		t.Errorf("windows output = %q", out.String())
	}

	export := filepath.Join(dir, "import.dot")
	mustExec(t, wb, "export "+export, "close --force", "switch 1", "open "+project)
	if data, err := os.ReadFile(export); err != nil || !strings.Contains(string(data), "digraph") {
		t.Errorf("export wrote %q, %v", data, err)
	}
	if wb.Manager().Len() != 1 {
		t.Errorf("re-opening an open project created a new one: %d open", wb.Manager().Len())
	}

	mustExec(t, wb, "new", "quit")
	if !wb.Done() {
		t.Error("quit without unsaved changes did not finish")
	}
}

func TestRunScript(t *testing.T) {
	wb, out := newTestWorkbench(t)
	script := "add-node web\nadd-node web\nadd-node db\nquit --force\nadd-node never\n"
	if err := runScript(context.Background(), wb, strings.NewReader(script)); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if g := activeGraph(t, wb); g.NodeCount() != 2 {
		t.Errorf("script produced %d nodes, want 2", g.NodeCount())
	}
	if !strings.Contains(out.String(), "Duplicate ID") {
		t.Errorf("script output missing error: %q", out.String())
	}
}

func mustPosition(t *testing.T, s *session.Session, id string) layout.Point {
	t.Helper()
	pos, ok := s.Layout.Position(id)
	if !ok {
		t.Fatalf("%s has no position", id)
	}
	return pos.Point()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
