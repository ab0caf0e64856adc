// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about imports, project load/save, layout and export.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The command line registers the Prometheus textfile sink from
// pkg/observability/promfile when a metrics file is configured.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    sink := promfile.New()
//	    sink.Register()
//	    defer sink.WriteTo("/var/lib/node_exporter/infragraph.prom")
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Import().OnImportStart(ctx, "compose")
//	// ... parse ...
//	observability.Import().OnImportComplete(ctx, "compose", stats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Import Hooks
// =============================================================================

// ImportStats summarizes the graph produced by an import.
type ImportStats struct {
	Nodes    int
	Edges    int
	Warnings int
}

// ImportHooks receives events from the import adapters.
type ImportHooks interface {
	OnImportStart(ctx context.Context, format string)
	OnImportComplete(ctx context.Context, format string, stats ImportStats, duration time.Duration, err error)
}

// =============================================================================
// Project Hooks
// =============================================================================

// ProjectHooks receives events from project persistence.
type ProjectHooks interface {
	// OnLoad records a project file read.
	OnLoad(ctx context.Context, nodes, edges int, duration time.Duration, err error)

	// OnSave records a project file write.
	OnSave(ctx context.Context, nodes, edges int, duration time.Duration, err error)

	// OnEdit records a graph mutation by kind ("node_added", "edge_removed", ...).
	OnEdit(ctx context.Context, kind string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from layout and export.
type RenderHooks interface {
	// OnLayout records a force-directed layout run.
	OnLayout(ctx context.Context, engine string, nodes int, duration time.Duration, err error)

	// OnExport records a raster or vector export.
	OnExport(ctx context.Context, format string, bytes int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopImportHooks is a no-op implementation of ImportHooks.
type NoopImportHooks struct{}

func (NoopImportHooks) OnImportStart(context.Context, string) {}
func (NoopImportHooks) OnImportComplete(context.Context, string, ImportStats, time.Duration, error) {
}

// NoopProjectHooks is a no-op implementation of ProjectHooks.
type NoopProjectHooks struct{}

func (NoopProjectHooks) OnLoad(context.Context, int, int, time.Duration, error) {}
func (NoopProjectHooks) OnSave(context.Context, int, int, time.Duration, error) {}
func (NoopProjectHooks) OnEdit(context.Context, string)                         {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnLayout(context.Context, string, int, time.Duration, error) {}
func (NoopRenderHooks) OnExport(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	importHooks  ImportHooks  = NoopImportHooks{}
	projectHooks ProjectHooks = NoopProjectHooks{}
	renderHooks  RenderHooks  = NoopRenderHooks{}
	hooksMu      sync.RWMutex
)

// SetImportHooks registers custom import hooks.
// This should be called once at application startup before any imports.
func SetImportHooks(h ImportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		importHooks = h
	}
}

// SetProjectHooks registers custom project hooks.
func SetProjectHooks(h ProjectHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		projectHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Import returns the registered import hooks.
func Import() ImportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return importHooks
}

// Project returns the registered project hooks.
func Project() ProjectHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return projectHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	importHooks = NoopImportHooks{}
	projectHooks = NoopProjectHooks{}
	renderHooks = NoopRenderHooks{}
}
