// Package pkg holds the libraries behind the infragraph command.
//
// # Overview
//
// Infragraph models infrastructure as a directed graph of typed objects
// (files, containers, routers, switches, servers, databases) joined by typed
// relationships, and draws it as a node-link diagram. The packages split into
// four areas:
//
//  1. [graph] - the dependency graph, its invariants and change listeners
//  2. [importers] - Docker Compose, Kubernetes and Godot adapters
//  3. [io] - the JSON project format
//  4. [render] - layout, camera, palettes and image export
//
// [session] ties one graph to its layout, camera and view and tracks the set
// of open projects. [errors] defines the error codes shared by all of them.
//
// # Data Flow
//
//	compose.yml / manifests / project.godot
//	         ↓
//	    [importers] (parse into a graph)
//	         ↓
//	    [graph] (edit, validate, notify listeners)
//	         ↓
//	    [render/layout] (positions, drag pins)
//	         ↓
//	    [render/nodelink] (DOT → PNG/SVG through the camera)
//
// Projects round-trip through [io] as
// {"objects": [...], "relationships": [...]}.
//
// # Quick Start
//
//	m := session.NewManager(session.Options{})
//	s, res, err := m.Import(ctx, "docker-compose.yml", compose.New())
//	if err != nil {
//	    return err
//	}
//	for _, w := range res.Warnings {
//	    log.Warn(w.Message, "entry", w.Entry)
//	}
//	_ = s.SaveAs(ctx, "infra.json")
//	_ = s.Export(ctx, "infra.png", nodelink.FormatPNG, nodelink.Options{})
//
// # Observability
//
// [observability] exposes hooks for import, load and save events. The
// command line backs them with Prometheus collectors written to a textfile
// when metrics_file is configured.
//
// [graph]: github.com/matzehuels/infragraph/pkg/graph
// [importers]: github.com/matzehuels/infragraph/pkg/importers
// [io]: github.com/matzehuels/infragraph/pkg/io
// [render]: github.com/matzehuels/infragraph/pkg/render
// [render/layout]: github.com/matzehuels/infragraph/pkg/render/layout
// [render/nodelink]: github.com/matzehuels/infragraph/pkg/render/nodelink
// [session]: github.com/matzehuels/infragraph/pkg/session
// [errors]: github.com/matzehuels/infragraph/pkg/errors
// [observability]: github.com/matzehuels/infragraph/pkg/observability
package pkg
