package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Import hooks
	i := NoopImportHooks{}
	i.OnImportStart(ctx, "compose")
	i.OnImportComplete(ctx, "compose", ImportStats{Nodes: 3, Edges: 2, Warnings: 1}, time.Second, nil)

	// Project hooks
	p := NoopProjectHooks{}
	p.OnLoad(ctx, 10, 12, time.Millisecond, nil)
	p.OnSave(ctx, 10, 12, time.Millisecond, nil)
	p.OnEdit(ctx, "node_added")

	// Render hooks
	r := NoopRenderHooks{}
	r.OnLayout(ctx, "fdp", 10, time.Second, nil)
	r.OnExport(ctx, "png", 4096, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Import().(NoopImportHooks); !ok {
		t.Error("Import() should return NoopImportHooks by default")
	}
	if _, ok := Project().(NoopProjectHooks); !ok {
		t.Error("Project() should return NoopProjectHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}

	// Set custom hooks
	customImport := &testImportHooks{}
	SetImportHooks(customImport)
	if Import() != customImport {
		t.Error("SetImportHooks should set custom hooks")
	}

	customProject := &testProjectHooks{}
	SetProjectHooks(customProject)
	if Project() != customProject {
		t.Error("SetProjectHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Import().(NoopImportHooks); !ok {
		t.Error("Reset() should restore NoopImportHooks")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testImportHooks{}
	SetImportHooks(custom)

	// Setting nil should be ignored
	SetImportHooks(nil)

	if Import() != custom {
		t.Error("SetImportHooks(nil) should be ignored")
	}

	Reset()
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testImportHooks{}
	SetImportHooks(h)

	Import().OnImportComplete(context.Background(), "kubernetes", ImportStats{Nodes: 4}, time.Millisecond, nil)
	if h.completed != 1 || h.lastFormat != "kubernetes" {
		t.Errorf("completed = %d, lastFormat = %q, want 1, kubernetes", h.completed, h.lastFormat)
	}
}

// Test implementations
type testImportHooks struct {
	NoopImportHooks
	completed  int
	lastFormat string
}

func (h *testImportHooks) OnImportComplete(_ context.Context, format string, _ ImportStats, _ time.Duration, _ error) {
	h.completed++
	h.lastFormat = format
}

type testProjectHooks struct {
	NoopProjectHooks
	n int
}

type testRenderHooks struct {
	NoopRenderHooks
	n int
}
